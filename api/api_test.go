// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/clients"
	"github.com/hyperbridge/messenger/dispatcher"
	"github.com/hyperbridge/messenger/history"
	"github.com/hyperbridge/messenger/registry"
	"github.com/hyperbridge/messenger/simulate"
	"github.com/hyperbridge/messenger/types"
	"github.com/hyperbridge/messenger/wallet"
	"github.com/hyperbridge/messenger/watcher"
	"github.com/hyperbridge/messenger/workflow"
)

var (
	apiChainA = types.Chain{
		Name:              "Ethereum Sepolia",
		ID:                11155111,
		Domain:            11155111,
		Mailbox:           common.HexToAddress("0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766"),
		RPCURL:            "http://chain-a",
		ExplorerURLPrefix: "https://sepolia.etherscan.io/tx/",
	}
	apiChainB = types.Chain{
		Name:              "Base Sepolia",
		ID:                84532,
		Domain:            84532,
		Mailbox:           common.HexToAddress("0x6966b0E55883d49BFB24539356a2f8A673E02039"),
		RPCURL:            "http://chain-b",
		ExplorerURLPrefix: "https://sepolia.basescan.org/tx/",
	}
)

type idleClient struct{}

func (idleClient) BlockNumber(context.Context) (uint64, error) { return 0, nil }
func (idleClient) FilterLogs(context.Context, ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return nil, nil
}
func (idleClient) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}
func (idleClient) TransactionReceipt(context.Context, common.Hash) (*ethtypes.Receipt, error) {
	return nil, nil
}
func (idleClient) Close() {}

type walletedProvider struct{}

func (walletedProvider) RequestAccounts(context.Context) ([]string, error) {
	return []string{"0x8ba1f109551bD432803012645Ac136ddd64DBA72"}, nil
}
func (walletedProvider) ChainID(context.Context) (uint64, error) { return apiChainA.ID, nil }
func (walletedProvider) SwitchChain(context.Context, uint64) error {
	return nil
}
func (walletedProvider) SendTransaction(context.Context, wallet.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

func newTestSender(t *testing.T) (*workflow.Sender, *registry.Registry) {
	t.Helper()
	return newTestSenderWithProvider(t, nil)
}

func newTestSenderWithProvider(t *testing.T, provider wallet.Provider) (*workflow.Sender, *registry.Registry) {
	t.Helper()
	logger := zap.NewNop()
	reg, err := registry.New(apiChainA, apiChainB)
	require.NoError(t, err)

	gateway := wallet.NewGateway(logger, provider, time.Millisecond)
	pool := clients.NewPoolWithDialer(logger, time.Minute, func(context.Context, string) (clients.Client, error) {
		return idleClient{}, nil
	})
	disp := dispatcher.New(logger, gateway, time.Second, dispatcher.GasPaymentConfig{})
	watch := watcher.New(logger, watcher.Config{Attempts: 2, Interval: time.Millisecond, LookbackBlocks: 500})
	sim := simulate.New(logger, time.Millisecond)
	metrics := workflow.NewMetrics(prometheus.NewRegistry())

	sender := workflow.NewSender(logger, reg, gateway, pool, disp, watch, sim, history.NewLog(), metrics)
	return sender, reg
}

func postSend(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, SendPath, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSendHandlerSimulatedSend(t *testing.T) {
	require := require.New(t)
	sender, reg := newTestSender(t)
	handler := sendHandler(zap.NewNop(), sender, reg)

	rec := postSend(t, handler, `{"source-chain-id":11155111,"destination-chain-id":84532,"message":"hello"}`)
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("application/json", rec.Header().Get("Content-Type"))

	var resp SendMessageResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(types.StateSimulatedDelivered, resp.Status.State)
	require.NotNil(resp.Notice)
	require.Equal(types.NoticeSimulation, resp.Notice.Kind)
	require.NotNil(resp.Record)
	require.True(resp.Record.Simulated)
	// Simulated transfers never link to an explorer.
	require.Empty(resp.Record.SourceTxURL)
	require.Empty(resp.Record.DestinationTxURL)
}

func TestSendHandlerMethodNotAllowed(t *testing.T) {
	sender, reg := newTestSender(t)
	handler := sendHandler(zap.NewNop(), sender, reg)

	req := httptest.NewRequest(http.MethodGet, SendPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSendHandlerMalformedBody(t *testing.T) {
	sender, reg := newTestSender(t)
	handler := sendHandler(zap.NewNop(), sender, reg)

	rec := postSend(t, handler, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendHandlerUnknownChain(t *testing.T) {
	sender, reg := newTestSender(t)
	handler := sendHandler(zap.NewNop(), sender, reg)

	rec := postSend(t, handler, `{"source-chain-id":42,"destination-chain-id":84532,"message":"hello"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendHandlerEmptyMessage(t *testing.T) {
	sender, reg := newTestSender(t)
	handler := sendHandler(zap.NewNop(), sender, reg)

	rec := postSend(t, handler, `{"source-chain-id":11155111,"destination-chain-id":84532,"message":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectHandler(t *testing.T) {
	require := require.New(t)
	sender, _ := newTestSenderWithProvider(t, walletedProvider{})
	handler := connectHandler(zap.NewNop(), sender)

	req := httptest.NewRequest(http.MethodPost, ConnectPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var resp ConnectResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal("0x8ba1f109551bD432803012645Ac136ddd64DBA72", resp.Address)
	// Once connected, sends leave simulation mode.
	require.Equal(resp.Address, sender.Status().Snapshot().WalletAddress)
}

func TestConnectHandlerWithoutWallet(t *testing.T) {
	sender, _ := newTestSender(t)
	handler := connectHandler(zap.NewNop(), sender)

	req := httptest.NewRequest(http.MethodPost, ConnectPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConnectHandlerMethodNotAllowed(t *testing.T) {
	sender, _ := newTestSender(t)
	handler := connectHandler(zap.NewNop(), sender)

	req := httptest.NewRequest(http.MethodGet, ConnectPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	require := require.New(t)
	sender, _ := newTestSender(t)
	handler := statusHandler(zap.NewNop(), sender)

	req := httptest.NewRequest(http.MethodGet, StatusPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var snap workflow.StatusSnapshot
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(types.StateIdle, snap.Status.State)
}

func TestHistoryHandlerAddsExplorerLinks(t *testing.T) {
	require := require.New(t)
	sender, reg := newTestSender(t)
	sender.History().Record(types.MessageRecord{
		MessageID:         common.HexToHash("0x01"),
		PayloadText:       "hello",
		SourceTxHash:      common.HexToHash("0xaa"),
		DestinationTxHash: common.HexToHash("0xbb"),
		CreatedAt:         time.Now(),
		SourceChain:       apiChainA.Summary(),
		DestinationChain:  apiChainB.Summary(),
	})
	handler := historyHandler(zap.NewNop(), sender, reg)

	req := httptest.NewRequest(http.MethodGet, HistoryPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var resp HistoryResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(resp.Entries, 1)
	entry := resp.Entries[0]
	require.Equal("hello", entry.PayloadText)
	require.Equal(apiChainA.ExplorerURLPrefix+entry.SourceTxHash.Hex(), entry.SourceTxURL)
	require.Equal(apiChainB.ExplorerURLPrefix+entry.DestinationTxHash.Hex(), entry.DestinationTxURL)
}

func TestChainsHandler(t *testing.T) {
	require := require.New(t)
	_, reg := newTestSender(t)
	handler := chainsHandler(zap.NewNop(), reg)

	req := httptest.NewRequest(http.MethodGet, ChainsPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(http.StatusOK, rec.Code)

	var chains []types.Chain
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &chains))
	require.Len(chains, 2)
	// Listed in ascending chain-id order.
	require.Equal(apiChainB.ID, chains[0].ID)
	require.Equal(apiChainA.ID, chains[1].ID)
}
