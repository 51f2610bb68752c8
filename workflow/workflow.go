// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package workflow runs the send-and-confirm state machine: ensure the
// wallet network, dispatch on the source mailbox, poll the destination for
// delivery, and record terminal successes in the session history. All
// failures are caught here and converted to a terminal status plus a
// user-facing notice; nothing escapes as a panic.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/clients"
	"github.com/hyperbridge/messenger/dispatcher"
	"github.com/hyperbridge/messenger/history"
	"github.com/hyperbridge/messenger/mailbox"
	"github.com/hyperbridge/messenger/registry"
	"github.com/hyperbridge/messenger/simulate"
	"github.com/hyperbridge/messenger/types"
	"github.com/hyperbridge/messenger/wallet"
	"github.com/hyperbridge/messenger/watcher"
)

var (
	// ErrSendInFlight guards against overlapping sends: the reference UI
	// let a second send clobber the first's state, which this rejects.
	ErrSendInFlight = errors.New("a send is already in flight")

	ErrUnknownChain = errors.New("invalid chain selection")
)

// Outcome is the terminal result of one send. Record is nil unless the
// transfer fully resolved (delivered, loopback, or simulated); a timed-out
// send keeps its partial progress in Status but records nothing.
type Outcome struct {
	Status types.TransferStatus
	Notice *types.ModalNotice
	Record *types.MessageRecord
}

type Sender struct {
	logger     *zap.Logger
	registry   *registry.Registry
	gateway    *wallet.Gateway
	pool       *clients.Pool
	dispatcher *dispatcher.Dispatcher
	watcher    *watcher.Watcher
	simulator  *simulate.Simulator
	log        *history.Log
	metrics    *Metrics
	status     *StatusStore

	inFlight atomic.Bool
}

func NewSender(
	logger *zap.Logger,
	reg *registry.Registry,
	gateway *wallet.Gateway,
	pool *clients.Pool,
	disp *dispatcher.Dispatcher,
	watch *watcher.Watcher,
	sim *simulate.Simulator,
	log *history.Log,
	metrics *Metrics,
) *Sender {
	return &Sender{
		logger:     logger,
		registry:   reg,
		gateway:    gateway,
		pool:       pool,
		dispatcher: disp,
		watcher:    watch,
		simulator:  sim,
		log:        log,
		metrics:    metrics,
		status:     NewStatusStore(),
	}
}

// Status exposes the live status store for the API layer.
func (s *Sender) Status() *StatusStore {
	return s.status
}

// History exposes the session history for the API layer.
func (s *Sender) History() *history.Log {
	return s.log
}

// Connect runs the wallet-connect step and records the address in the
// status store.
func (s *Sender) Connect(ctx context.Context) (string, error) {
	s.status.SetStatus(types.TransferStatus{State: types.StateWalletConnecting})
	addr, err := s.gateway.Connect(ctx)
	if err != nil {
		s.status.SetStatus(types.TransferStatus{
			State:  types.StateFailed,
			Reason: fmt.Sprintf("wallet connection failed: %s", err),
		})
		return "", err
	}
	s.status.SetWallet(addr)
	s.status.SetStatus(types.TransferStatus{State: types.StateIdle})
	return addr.Hex(), nil
}

// Send runs one complete send-and-confirm workflow. Exactly one send may be
// in flight; a second invocation fails with ErrSendInFlight until the first
// reaches a terminal state.
func (s *Sender) Send(ctx context.Context, sourceID, destID uint64, text string) (Outcome, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrSendInFlight
	}
	defer s.inFlight.Store(false)

	s.status.Reset()
	labels := []string{strconv.FormatUint(sourceID, 10), strconv.FormatUint(destID, 10)}
	s.metrics.sendsBegunCount.WithLabelValues(labels...).Inc()

	outcome, err := s.send(ctx, sourceID, destID, text, labels)
	s.status.SetStatus(outcome.Status)
	return outcome, err
}

func (s *Sender) send(ctx context.Context, sourceID, destID uint64, text string, labels []string) (Outcome, error) {
	if text == "" {
		return s.fail(labels, "empty message", fmt.Errorf("%w: empty message", dispatcher.ErrInvalidInput))
	}
	source, ok := s.registry.Lookup(sourceID)
	if !ok {
		return s.fail(labels, "unknown source chain", fmt.Errorf("%w: source %d", ErrUnknownChain, sourceID))
	}
	dest, ok := s.registry.Lookup(destID)
	if !ok {
		return s.fail(labels, "unknown destination chain", fmt.Errorf("%w: destination %d", ErrUnknownChain, destID))
	}

	req := types.DispatchRequest{
		SourceChain:      source,
		DestinationChain: dest,
		SenderAddress:    s.gateway.Address(),
		Payload:          []byte(text),
	}

	if !s.gateway.Connected() {
		return s.simulated(ctx, req, labels)
	}

	s.status.SetStatus(types.TransferStatus{State: types.StateNetworkSwitching})
	if err := s.gateway.EnsureNetwork(ctx, source); err != nil {
		return s.fail(labels, "network-switch", fmt.Errorf("switch to %s: %w", source.Name, err))
	}

	sourceClient, err := s.pool.ForChain(ctx, source)
	if err != nil {
		return s.fail(labels, "source-rpc", err)
	}

	dispatched, err := s.dispatcher.Dispatch(ctx, sourceClient, req, s.status.SetStatus)
	if err != nil {
		return s.fail(labels, "dispatch", err)
	}
	s.status.SetSourceTx(dispatched.SourceTxHash)
	s.status.SetMessageID(dispatched.MessageID)
	dispatchedAt := time.Now()

	// Loopback needs no destination client; the watcher short-circuits.
	var destClient clients.Client
	if source.ID != dest.ID {
		destClient, err = s.pool.ForChain(ctx, dest)
		if err != nil {
			return s.fail(labels, "destination-rpc", err)
		}
	}

	result, err := s.watcher.Watch(ctx, destClient, watcher.Params{
		MessageID:        dispatched.MessageID,
		Recipient:        mailbox.RecipientIdentifier(req.SenderAddress),
		ExpectedPayload:  req.Payload,
		SourceChain:      source,
		DestinationChain: dest,
		SourceTxHash:     dispatched.SourceTxHash,
		DispatchBlock:    dispatched.BlockNumber,
	}, func(attempt int, elapsed time.Duration) {
		s.status.SetStatus(types.TransferStatus{
			State:   types.StatePollingDestination,
			Attempt: attempt,
			Elapsed: elapsed,
		})
	})
	if err != nil {
		return s.fail(labels, "watch", err)
	}

	if !result.Delivered {
		s.metrics.timedOutCount.WithLabelValues(labels...).Inc()
		// Partial progress stays visible in the status fields, but a
		// timed-out transfer is never recorded into history.
		return Outcome{Status: types.TransferStatus{
			State:   types.StateTimedOut,
			Attempt: result.Attempts,
			Elapsed: result.Elapsed,
		}}, nil
	}

	s.status.SetDelivered(result.DestinationTxHash, text)
	record := types.MessageRecord{
		MessageID:         dispatched.MessageID,
		PayloadText:       text,
		SourceTxHash:      dispatched.SourceTxHash,
		DestinationTxHash: result.DestinationTxHash,
		CreatedAt:         time.Now(),
		SourceChain:       source.Summary(),
		DestinationChain:  dest.Summary(),
	}
	s.log.Record(record)
	s.metrics.deliveredCount.WithLabelValues(labels...).Inc()
	s.metrics.deliveryLatencySecond.WithLabelValues(labels...).Set(time.Since(dispatchedAt).Seconds())

	outcome := Outcome{
		Status: types.TransferStatus{State: types.StateDelivered},
		Record: &record,
	}
	if source.ID == dest.ID {
		outcome.Notice = &types.ModalNotice{
			Kind:    types.NoticeSameChainLoopback,
			Details: fmt.Sprintf("Source and destination are both %s; the message was self-delivered in the dispatch transaction.", source.Name),
		}
	}
	return outcome, nil
}

func (s *Sender) simulated(ctx context.Context, req types.DispatchRequest, labels []string) (Outcome, error) {
	s.status.SetStatus(types.TransferStatus{State: types.StateSubmitting})
	record, err := s.simulator.Run(ctx, req)
	if err != nil {
		return s.fail(labels, "simulation", err)
	}
	s.status.SetSourceTx(record.SourceTxHash)
	s.status.SetMessageID(record.MessageID)
	s.status.SetDelivered(record.DestinationTxHash, record.PayloadText)
	s.log.Record(record)
	s.metrics.simulatedCount.WithLabelValues(labels...).Inc()

	return Outcome{
		Status: types.TransferStatus{State: types.StateSimulatedDelivered},
		Notice: &types.ModalNotice{
			Kind:    types.NoticeSimulation,
			Details: types.SimulationDisclosure,
		},
		Record: &record,
	}, nil
}

func (s *Sender) fail(labels []string, reason string, err error) (Outcome, error) {
	s.logger.Warn("Send workflow failed",
		zap.String("reason", reason),
		zap.Error(err),
	)
	s.metrics.failedCount.WithLabelValues(labels[0], labels[1], reason).Inc()
	return Outcome{
		Status: types.TransferStatus{State: types.StateFailed, Reason: err.Error()},
		Notice: &types.ModalNotice{Kind: types.NoticePlainText, Details: err.Error()},
	}, err
}
