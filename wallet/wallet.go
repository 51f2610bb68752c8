// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet abstracts the user's wallet: requesting the active account,
// ensuring the wallet is on the right network, and submitting wallet-signed
// transactions. The Provider interface mirrors the EIP-1193 request surface
// so gateways work the same against a browser wallet bridge or a node that
// manages its own accounts.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/types"
)

// Provider error codes surfaced by EIP-1193 wallets.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

var (
	ErrNoWalletDetected    = errors.New("no wallet provider detected")
	ErrNoAccounts          = errors.New("wallet returned no accounts")
	ErrUserRejected        = errors.New("wallet request rejected by user")
	ErrChainNotRegistered  = errors.New("chain not registered with wallet")
	ErrSwitchRejected      = errors.New("wallet network switch rejected")
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
)

// ProviderError carries the wallet's numeric error code alongside its text.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// TxRequest is a wallet-signed transaction submission, the eth_sendTransaction
// shape: the provider owns the key, fills in nonce and gas, and broadcasts.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Provider is the injected wallet surface this system consumes.
type Provider interface {
	// RequestAccounts prompts for account access and returns the accounts
	// the user exposed, active account first.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID returns the wallet's active network id.
	ChainID(ctx context.Context) (uint64, error)

	// SwitchChain asks the wallet to change its active network. Providers
	// report unknown chains with a ProviderError carrying code 4902.
	SwitchChain(ctx context.Context, chainID uint64) error

	// SendTransaction signs and broadcasts tx, returning its hash.
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
}

// Gateway wraps a Provider with the connect and ensure-network steps of the
// send workflow. It keeps no state beyond the last connected address; the
// wallet session itself is ambient and outside this system's control.
type Gateway struct {
	provider    Provider
	logger      *zap.Logger
	settleDelay time.Duration

	address   common.Address
	connected bool
}

// DefaultSettleDelay is how long EnsureNetwork waits after a successful
// switch, tolerating providers that update their active network
// asynchronously.
const DefaultSettleDelay = time.Second

// NewGateway returns a gateway over the given provider. A nil provider is
// legal and makes Connect fail with ErrNoWalletDetected, which the workflow
// uses to select the simulation fallback.
func NewGateway(logger *zap.Logger, provider Provider, settleDelay time.Duration) *Gateway {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Gateway{
		provider:    provider,
		logger:      logger,
		settleDelay: settleDelay,
	}
}

// Connect requests account access and returns the active account in its
// EIP-55 checksummed form.
func (g *Gateway) Connect(ctx context.Context) (common.Address, error) {
	if g.provider == nil {
		return common.Address{}, ErrNoWalletDetected
	}
	accounts, err := g.provider.RequestAccounts(ctx)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Code == CodeUserRejected {
			return common.Address{}, fmt.Errorf("%w: %s", ErrUserRejected, perr.Message)
		}
		return common.Address{}, fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccounts
	}
	if !common.IsHexAddress(accounts[0]) {
		return common.Address{}, fmt.Errorf("wallet returned malformed account %q", accounts[0])
	}

	// HexToAddress+Hex yields the canonical checksummed form.
	g.address = common.HexToAddress(accounts[0])
	g.connected = true
	g.logger.Info("Wallet connected", zap.String("address", g.address.Hex()))
	return g.address, nil
}

// Connected reports whether Connect has succeeded on this gateway.
func (g *Gateway) Connected() bool {
	return g.connected
}

// Address returns the last connected account.
func (g *Gateway) Address() common.Address {
	return g.address
}

// EnsureNetwork makes the wallet's active network match the target chain,
// requesting a switch when it differs and waiting the settle delay after a
// successful switch.
func (g *Gateway) EnsureNetwork(ctx context.Context, target types.Chain) error {
	if g.provider == nil {
		return ErrNoWalletDetected
	}
	current, err := g.provider.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read wallet network id: %w", err)
	}
	if current == target.ID {
		return nil
	}

	g.logger.Info("Requesting wallet network switch",
		zap.Uint64("from", current),
		zap.Uint64("to", target.ID),
		zap.String("chain", target.Name),
	)
	if err := g.provider.SwitchChain(ctx, target.ID); err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Code == CodeUnrecognizedChain {
			return fmt.Errorf("%w: add %s to the wallet first", ErrChainNotRegistered, target.Name)
		}
		return fmt.Errorf("%w: %s", ErrSwitchRejected, err)
	}

	// Give asynchronous providers time to finish applying the switch.
	select {
	case <-time.After(g.settleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// SendTransaction forwards a wallet-signed submission to the provider.
func (g *Gateway) SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error) {
	if g.provider == nil {
		return common.Hash{}, ErrNoWalletDetected
	}
	return g.provider.SendTransaction(ctx, tx)
}
