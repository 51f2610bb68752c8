// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the send workflow over HTTP: start a send, read the
// live transfer status, and list the session history. It is the service
// stand-in for the original browser UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/dispatcher"
	"github.com/hyperbridge/messenger/registry"
	"github.com/hyperbridge/messenger/types"
	"github.com/hyperbridge/messenger/wallet"
	"github.com/hyperbridge/messenger/workflow"
)

const (
	SendPath    = "/v1/messages"
	ConnectPath = "/v1/connect"
	StatusPath  = "/v1/status"
	HistoryPath = "/v1/history"
	ChainsPath  = "/v1/chains"

	// A send can legitimately take the full confirmation wait plus the
	// whole polling budget.
	sendRequestTimeout = 5 * time.Minute
)

type SendMessageRequest struct {
	SourceChainID      uint64 `json:"source-chain-id"`
	DestinationChainID uint64 `json:"destination-chain-id"`
	Message            string `json:"message"`
}

type SendMessageResponse struct {
	Status     types.TransferStatus `json:"status"`
	StatusText string               `json:"statusText"`
	Notice     *types.ModalNotice   `json:"notice,omitempty"`
	Record     *HistoryEntry        `json:"record,omitempty"`
}

// HistoryEntry is a MessageRecord enriched with explorer links.
type HistoryEntry struct {
	types.MessageRecord
	SourceTxURL      string `json:"sourceTxUrl,omitempty"`
	DestinationTxURL string `json:"destinationTxUrl,omitempty"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type ConnectResponse struct {
	Address string `json:"address"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterHandlers installs every API route on the default mux.
func RegisterHandlers(logger *zap.Logger, sender *workflow.Sender, reg *registry.Registry) {
	http.Handle(SendPath, sendHandler(logger, sender, reg))
	http.Handle(ConnectPath, connectHandler(logger, sender))
	http.Handle(StatusPath, statusHandler(logger, sender))
	http.Handle(HistoryPath, historyHandler(logger, sender, reg))
	http.Handle(ChainsPath, chainsHandler(logger, reg))
}

func writeJSONError(logger *zap.Logger, w http.ResponseWriter, httpStatusCode int, errorMsg string) {
	resp, err := json.Marshal(ErrorResponse{Error: errorMsg})
	if err != nil {
		msg := "Error marshalling JSON error response"
		logger.Error(msg, zap.Error(err))
		resp = []byte(msg)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	if _, err = w.Write(resp); err != nil {
		logger.Error("Error writing error response", zap.Error(err))
	}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, payload any) {
	resp, err := json.Marshal(payload)
	if err != nil {
		msg := "Failed to marshal response"
		logger.Error(msg, zap.Error(err))
		writeJSONError(logger, w, http.StatusInternalServerError, msg)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(resp); err != nil {
		logger.Error("Error writing response", zap.Error(err))
	}
}

func sendHandler(logger *zap.Logger, sender *workflow.Sender, reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(logger, w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			msg := "Could not decode request body"
			logger.Warn(msg, zap.Error(err))
			writeJSONError(logger, w, http.StatusBadRequest, msg)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), sendRequestTimeout)
		defer cancel()

		outcome, err := sender.Send(ctx, req.SourceChainID, req.DestinationChainID, req.Message)
		switch {
		case errors.Is(err, workflow.ErrSendInFlight):
			writeJSONError(logger, w, http.StatusConflict, err.Error())
			return
		case errors.Is(err, dispatcher.ErrInvalidInput), errors.Is(err, workflow.ErrUnknownChain):
			writeJSONError(logger, w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			logger.Warn("Send failed", zap.Error(err))
			writeJSON(logger, w, sendResponse(outcome, reg))
			return
		}
		writeJSON(logger, w, sendResponse(outcome, reg))
	})
}

func sendResponse(outcome workflow.Outcome, reg *registry.Registry) SendMessageResponse {
	resp := SendMessageResponse{
		Status:     outcome.Status,
		StatusText: outcome.Status.Message(),
		Notice:     outcome.Notice,
	}
	if outcome.Record != nil {
		entry := historyEntry(*outcome.Record, reg)
		resp.Record = &entry
	}
	return resp
}

// connectHandler runs the wallet-connect step, the service counterpart of
// the original connect button. Deployments without wallet endpoints stay in
// simulation mode and answer 503 here.
func connectHandler(logger *zap.Logger, sender *workflow.Sender) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(logger, w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		addr, err := sender.Connect(r.Context())
		switch {
		case errors.Is(err, wallet.ErrNoWalletDetected):
			writeJSONError(logger, w, http.StatusServiceUnavailable, err.Error())
			return
		case err != nil:
			logger.Warn("Wallet connection failed", zap.Error(err))
			writeJSONError(logger, w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(logger, w, ConnectResponse{Address: addr})
	})
}

func statusHandler(logger *zap.Logger, sender *workflow.Sender) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(logger, w, http.StatusMethodNotAllowed, "GET only")
			return
		}
		writeJSON(logger, w, sender.Status().Snapshot())
	})
}

func historyHandler(logger *zap.Logger, sender *workflow.Sender, reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(logger, w, http.StatusMethodNotAllowed, "GET only")
			return
		}
		records := sender.History().List()
		entries := make([]HistoryEntry, 0, len(records))
		for _, record := range records {
			entries = append(entries, historyEntry(record, reg))
		}
		writeJSON(logger, w, HistoryResponse{Entries: entries})
	})
}

func historyEntry(record types.MessageRecord, reg *registry.Registry) HistoryEntry {
	entry := HistoryEntry{MessageRecord: record}
	if !record.Simulated {
		entry.SourceTxURL = reg.ExplorerTxURL(record.SourceChain.ID, record.SourceTxHash)
		entry.DestinationTxURL = reg.ExplorerTxURL(record.DestinationChain.ID, record.DestinationTxHash)
	}
	return entry
}

func chainsHandler(logger *zap.Logger, reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(logger, w, http.StatusMethodNotAllowed, "GET only")
			return
		}
		writeJSON(logger, w, reg.List())
	})
}
