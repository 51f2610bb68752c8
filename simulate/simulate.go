// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simulate synthesizes a plausible-looking transfer when no wallet
// is connected, so the send flow can be demonstrated without touching any
// chain. Its randomness source is local to this package and must never be
// shared with code producing real identifiers.
package simulate

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/types"
)

// DefaultDelay stands in for the source-confirmation plus relay latency of
// a real transfer.
const DefaultDelay = 3 * time.Second

// Simulator produces simulated MessageRecords.
type Simulator struct {
	logger *zap.Logger
	delay  time.Duration
	now    func() time.Time

	rngLock sync.Mutex
	rng     *rand.Rand
}

// New returns a simulator with its own demo-only randomness source.
func New(logger *zap.Logger, delay time.Duration) *Simulator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Simulator{
		logger: logger,
		delay:  delay,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// randomHash generates a demo 32-byte identifier. Not cryptographic, by
// construction: these values must look real without ever being real.
func (s *Simulator) randomHash() common.Hash {
	s.rngLock.Lock()
	defer s.rngLock.Unlock()
	var h common.Hash
	for i := range h {
		h[i] = byte(s.rng.Intn(256))
	}
	return h
}

// Run simulates one transfer for the request, waiting the configured delay
// before reporting delivery. The returned record carries distinct random
// identifiers for the source tx, the message, and the destination tx.
func (s *Simulator) Run(ctx context.Context, req types.DispatchRequest) (types.MessageRecord, error) {
	s.logger.Info("Simulating message send (no wallet connected)",
		zap.String("sourceChain", req.SourceChain.Name),
		zap.String("destinationChain", req.DestinationChain.Name),
	)

	record := types.MessageRecord{
		MessageID:        s.randomHash(),
		SourceTxHash:     s.randomHash(),
		PayloadText:      string(req.Payload),
		SourceChain:      req.SourceChain.Summary(),
		DestinationChain: req.DestinationChain.Summary(),
		Simulated:        true,
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return types.MessageRecord{}, ctx.Err()
	}

	record.DestinationTxHash = s.randomHash()
	record.CreatedAt = s.now()
	return record, nil
}
