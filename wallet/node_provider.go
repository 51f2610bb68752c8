// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// NodeProvider implements Provider against nodes that manage their own
// accounts (eth_accounts / eth_sendTransaction), one endpoint per chain.
// "Switching networks" selects among the configured endpoints, the closest
// server-side equivalent of a browser wallet changing its active chain.
type NodeProvider struct {
	logger    *zap.Logger
	endpoints map[uint64]string

	mu     sync.Mutex
	active uint64
	client *rpc.Client
}

// NewNodeProvider builds a provider over the given chain-id to RPC-URL table.
// The initial active chain is picked on first use.
func NewNodeProvider(logger *zap.Logger, endpoints map[uint64]string) *NodeProvider {
	cp := make(map[uint64]string, len(endpoints))
	for id, url := range endpoints {
		cp[id] = url
	}
	return &NodeProvider{logger: logger, endpoints: cp}
}

func (p *NodeProvider) activeClient(ctx context.Context) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	for id := range p.endpoints {
		if err := p.switchLocked(ctx, id); err != nil {
			return nil, err
		}
		return p.client, nil
	}
	return nil, fmt.Errorf("%w: no wallet endpoints configured", ErrProviderUnavailable)
}

func (p *NodeProvider) switchLocked(ctx context.Context, chainID uint64) error {
	url, ok := p.endpoints[chainID]
	if !ok {
		return &ProviderError{
			Code:    CodeUnrecognizedChain,
			Message: fmt.Sprintf("chain %d has no wallet endpoint", chainID),
		}
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return fmt.Errorf("dial wallet endpoint for chain %d: %w", chainID, err)
	}
	if p.client != nil {
		p.client.Close()
	}
	p.client = client
	p.active = chainID
	p.logger.Debug("Wallet endpoint selected",
		zap.Uint64("chainID", chainID),
		zap.String("endpoint", url),
	)
	return nil
}

func (p *NodeProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

func (p *NodeProvider) ChainID(ctx context.Context) (uint64, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return 0, err
	}
	var id hexutil.Big
	if err := client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	return id.ToInt().Uint64(), nil
}

func (p *NodeProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == chainID && p.client != nil {
		return nil
	}
	return p.switchLocked(ctx, chainID)
}

func (p *NodeProvider) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	client, err := p.activeClient(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	arg := map[string]any{
		"from": tx.From,
		"to":   tx.To,
		"data": hexutil.Bytes(tx.Data),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(tx.Value)
	}
	var hash common.Hash
	if err := client.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash, nil
}

// Close releases the active endpoint connection.
func (p *NodeProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
