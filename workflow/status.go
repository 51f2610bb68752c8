// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workflow

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hyperbridge/messenger/types"
)

// StatusSnapshot is the externally visible state of the current (or most
// recent) send: the explicit state container replacing the original's
// ambient UI globals.
type StatusSnapshot struct {
	WalletAddress     string               `json:"walletAddress,omitempty"`
	Status            types.TransferStatus `json:"status"`
	StatusText        string               `json:"statusText"`
	SourceTxHash      string               `json:"sourceTxHash,omitempty"`
	MessageID         string               `json:"messageId,omitempty"`
	DestinationTxHash string               `json:"destinationTxHash,omitempty"`
	ReceivedText      string               `json:"receivedText,omitempty"`
}

// StatusStore holds the live transfer status. The workflow is the single
// writer; readers get copies.
type StatusStore struct {
	lock sync.RWMutex
	snap StatusSnapshot
}

func NewStatusStore() *StatusStore {
	return &StatusStore{
		snap: StatusSnapshot{
			Status:     types.TransferStatus{State: types.StateIdle},
			StatusText: types.TransferStatus{State: types.StateIdle}.Message(),
		},
	}
}

// Reset clears per-send fields at the start of a new send, keeping the
// wallet address.
func (s *StatusStore) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	wallet := s.snap.WalletAddress
	s.snap = StatusSnapshot{WalletAddress: wallet}
}

func (s *StatusStore) SetWallet(addr common.Address) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snap.WalletAddress = addr.Hex()
}

func (s *StatusStore) SetStatus(status types.TransferStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snap.Status = status
	s.snap.StatusText = status.Message()
}

func (s *StatusStore) SetSourceTx(hash common.Hash) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snap.SourceTxHash = hash.Hex()
}

func (s *StatusStore) SetMessageID(id common.Hash) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snap.MessageID = id.Hex()
}

func (s *StatusStore) SetDelivered(destTx common.Hash, receivedText string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snap.DestinationTxHash = destTx.Hex()
	s.snap.ReceivedText = receivedText
}

// Snapshot returns a copy of the current state.
func (s *StatusStore) Snapshot() StatusSnapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snap
}

// State returns just the current transfer state.
func (s *StatusStore) State() types.TransferState {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snap.Status.State
}
