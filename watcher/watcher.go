// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package watcher polls the destination chain's mailbox for the Process
// event matching a dispatched message. Polling is bounded by a fixed
// attempt budget; exhausting it is a reportable outcome, not an error.
package watcher

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/clients"
	"github.com/hyperbridge/messenger/mailbox"
	"github.com/hyperbridge/messenger/types"
	"github.com/hyperbridge/messenger/utils"
)

const (
	DefaultAttempts       = 24
	DefaultInterval       = 5 * time.Second
	DefaultLookbackBlocks = 500
)

// Config bounds one watch: Attempts polls spaced Interval apart, each
// scanning the last LookbackBlocks blocks.
type Config struct {
	Attempts       int
	Interval       time.Duration
	LookbackBlocks uint64
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.LookbackBlocks == 0 {
		c.LookbackBlocks = DefaultLookbackBlocks
	}
	return c
}

// Params identifies the delivery to wait for. A zero MessageID means the
// identifier is unknown and matching falls back to recipient + payload.
type Params struct {
	MessageID        common.Hash
	Recipient        common.Hash
	ExpectedPayload  []byte
	SourceChain      types.Chain
	DestinationChain types.Chain
	SourceTxHash     common.Hash
	DispatchBlock    uint64
}

// Result is the terminal outcome of a watch. Delivered false with a nil
// error means the attempt budget ran out. Elapsed is the polling time
// covered by the spent attempts.
type Result struct {
	Delivered         bool
	DestinationTxHash common.Hash
	Attempts          int
	Elapsed           time.Duration
}

type Watcher struct {
	logger *zap.Logger
	cfg    Config
}

func New(logger *zap.Logger, cfg Config) *Watcher {
	return &Watcher{logger: logger, cfg: cfg.withDefaults()}
}

// Watch polls for the matching Process event. A fresh watch must be started
// per send; a watch runs to completion or exhaustion and is not restartable.
//
// Loopback (same source and destination chain) short-circuits: no external
// relayer exists for self-delivery, so the source transaction hash is
// reported as the destination hash without any polling. client may be nil
// in that case.
func (w *Watcher) Watch(
	ctx context.Context,
	client clients.Client,
	p Params,
	onAttempt func(attempt int, elapsed time.Duration),
) (Result, error) {
	if p.SourceChain.ID == p.DestinationChain.ID {
		w.logger.Info("Loopback delivery, skipping destination polling",
			zap.Uint64("chainID", p.SourceChain.ID),
			zap.String("txHash", p.SourceTxHash.Hex()),
		)
		return Result{Delivered: true, DestinationTxHash: p.SourceTxHash}, nil
	}

	for attempt := 1; attempt <= w.cfg.Attempts; attempt++ {
		elapsed := time.Duration(attempt) * w.cfg.Interval
		if onAttempt != nil {
			onAttempt(attempt, elapsed)
		}

		event, err := w.queryOnce(ctx, client, p)
		if err != nil {
			// Transient query failures consume the attempt; the budget is
			// the only retry mechanism.
			w.logger.Warn("Delivery event query failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else if event != nil {
			w.logger.Info("Message delivered on destination chain",
				zap.String("messageId", event.MessageID.Hex()),
				zap.String("txHash", event.TxHash.Hex()),
				zap.Int("attempts", attempt),
			)
			return Result{
				Delivered:         true,
				DestinationTxHash: event.TxHash,
				Attempts:          attempt,
				Elapsed:           elapsed,
			}, nil
		}

		if attempt == w.cfg.Attempts {
			break
		}
		select {
		case <-time.After(w.cfg.Interval):
		case <-ctx.Done():
			return Result{Attempts: attempt}, ctx.Err()
		}
	}

	w.logger.Info("Delivery polling exhausted",
		zap.Int("attempts", w.cfg.Attempts),
		zap.String("destinationChain", p.DestinationChain.Name),
	)
	return Result{
		Attempts: w.cfg.Attempts,
		Elapsed:  time.Duration(w.cfg.Attempts) * w.cfg.Interval,
	}, nil
}

func (w *Watcher) queryOnce(ctx context.Context, client clients.Client, p Params) (*types.MailboxEvent, error) {
	callCtx, cancel := context.WithTimeout(ctx, utils.DefaultRPCTimeout)
	defer cancel()

	latest, err := client.BlockNumber(callCtx)
	if err != nil {
		return nil, err
	}
	fromBlock := uint64(0)
	if latest > w.cfg.LookbackBlocks {
		fromBlock = latest - w.cfg.LookbackBlocks
	}
	// Never scan behind the dispatch block; nothing earlier can match.
	if p.DispatchBlock > fromBlock {
		fromBlock = p.DispatchBlock
	}

	topics := [][]common.Hash{
		{mailbox.ProcessTopic},
		nil,
		{mailbox.DomainTopic(p.SourceChain.Domain)},
		{mailbox.DomainTopic(p.DestinationChain.Domain)},
	}
	if p.MessageID != (common.Hash{}) {
		topics[1] = []common.Hash{p.MessageID}
	}

	logs, err := client.FilterLogs(callCtx, ethereum.FilterQuery{
		Addresses: []common.Address{p.DestinationChain.Mailbox},
		Topics:    topics,
		FromBlock: new(big.Int).SetUint64(fromBlock),
	})
	if err != nil {
		return nil, err
	}

	for _, log := range logs {
		event, err := mailbox.ParseEvent(log)
		if err != nil {
			w.logger.Debug("Skipping unparseable mailbox log", zap.Error(err))
			continue
		}
		if w.matches(event, p) {
			return event, nil
		}
	}
	return nil, nil
}

// matches accepts an event iff its recipient identifier matches
// case-insensitively, its payload equals the expected payload exactly, and,
// when the message id is known, the event identifier matches it.
func (w *Watcher) matches(event *types.MailboxEvent, p Params) bool {
	if !strings.EqualFold(event.Recipient.Hex(), p.Recipient.Hex()) {
		return false
	}
	if !bytes.Equal(event.Payload, p.ExpectedPayload) {
		return false
	}
	if p.MessageID != (common.Hash{}) && event.MessageID != p.MessageID {
		return false
	}
	return true
}
