// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clients pools the read-only RPC clients the watcher and dispatcher
// use, one per chain, with TTL-based redialing and single-flight dials.
package clients

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperbridge/messenger/types"
)

// ErrNoRPCConfigured is returned when a chain record carries no endpoint.
var ErrNoRPCConfigured = errors.New("no RPC endpoint configured for chain")

// Client is the read-path subset of ethclient.Client the messenger needs,
// kept as an interface for mocking.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	Close()
}

// DialFunc dials a chain RPC endpoint.
type DialFunc func(ctx context.Context, url string) (Client, error)

func defaultDial(ctx context.Context, url string) (Client, error) {
	return ethclient.DialContext(ctx, url)
}

type poolEntry struct {
	client    Client
	timestamp time.Time
}

// Pool caches dialed clients per chain id. Entries older than the TTL are
// redialed; concurrent dials for the same chain are deduplicated.
type Pool struct {
	logger  *zap.Logger
	dial    DialFunc
	ttl     time.Duration
	lock    sync.RWMutex
	data    map[uint64]poolEntry
	sfGroup singleflight.Group
}

// DefaultClientTTL is how long a dialed client is reused before redialing.
const DefaultClientTTL = 5 * time.Minute

// NewPool returns a pool dialing real ethclient connections.
func NewPool(logger *zap.Logger, ttl time.Duration) *Pool {
	return NewPoolWithDialer(logger, ttl, defaultDial)
}

// NewPoolWithDialer returns a pool using the given dialer; tests inject
// mock clients through it.
func NewPoolWithDialer(logger *zap.Logger, ttl time.Duration, dial DialFunc) *Pool {
	if ttl <= 0 {
		ttl = DefaultClientTTL
	}
	return &Pool{
		logger: logger,
		dial:   dial,
		ttl:    ttl,
		data:   make(map[uint64]poolEntry),
	}
}

// ForChain returns a ready client for the chain, dialing if the cached one
// is missing or stale. Concurrent callers for the same chain share one dial.
func (p *Pool) ForChain(ctx context.Context, chain types.Chain) (Client, error) {
	if chain.RPCURL == "" {
		return nil, fmt.Errorf("%w: chain id %d", ErrNoRPCConfigured, chain.ID)
	}

	p.lock.RLock()
	entry, exists := p.data[chain.ID]
	p.lock.RUnlock()
	if exists && time.Since(entry.timestamp) < p.ttl {
		return entry.client, nil
	}

	key := strconv.FormatUint(chain.ID, 10)
	v, err, _ := p.sfGroup.Do(key, func() (interface{}, error) {
		client, dialErr := p.dial(ctx, chain.RPCURL)
		if dialErr != nil {
			return nil, fmt.Errorf("dial %s: %w", chain.Name, dialErr)
		}
		p.lock.Lock()
		if old, ok := p.data[chain.ID]; ok {
			old.client.Close()
		}
		p.data[chain.ID] = poolEntry{client: client, timestamp: time.Now()}
		p.lock.Unlock()
		p.logger.Debug("Dialed chain endpoint",
			zap.Uint64("chainID", chain.ID),
			zap.String("endpoint", chain.RPCURL),
		)
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

// Close releases every pooled client.
func (p *Pool) Close() {
	p.lock.Lock()
	defer p.lock.Unlock()
	for id, entry := range p.data {
		entry.client.Close()
		delete(p.data, id)
	}
}
