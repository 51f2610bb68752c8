// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTerminalStates(t *testing.T) {
	require := require.New(t)
	for _, s := range []TransferState{StateIdle, StateDelivered, StateSimulatedDelivered, StateFailed, StateTimedOut} {
		require.True(s.Terminal(), s.String())
	}
	for _, s := range []TransferState{StateWalletConnecting, StateNetworkSwitching, StateSubmitting, StateAwaitingSourceConfirmation, StatePollingDestination} {
		require.False(s.Terminal(), s.String())
	}
}

func TestStatusMessages(t *testing.T) {
	require := require.New(t)
	require.Equal("Ready to send.", TransferStatus{State: StateIdle}.Message())
	require.Equal("Sending message...", TransferStatus{State: StateSubmitting}.Message())
	require.Equal(
		"Message sent! Waiting for confirmation on source chain...",
		TransferStatus{State: StateAwaitingSourceConfirmation}.Message(),
	)
	require.Equal(
		"Waiting for message on destination chain... (15s)",
		TransferStatus{State: StatePollingDestination, Attempt: 3, Elapsed: 15 * time.Second}.Message(),
	)
}

func TestTimedOutMessageReflectsPollingBudget(t *testing.T) {
	require := require.New(t)
	require.Equal(
		"Message not found on destination chain after 2m0s. It might be delayed or an issue occurred.",
		TransferStatus{State: StateTimedOut, Attempt: 24, Elapsed: 2 * time.Minute}.Message(),
	)
	require.Equal(
		"Message not found on destination chain after 36s. It might be delayed or an issue occurred.",
		TransferStatus{State: StateTimedOut, Attempt: 12, Elapsed: 36 * time.Second}.Message(),
	)
	// No elapsed information, no made-up number.
	require.Equal(
		"Message not found on destination chain. It might be delayed or an issue occurred.",
		TransferStatus{State: StateTimedOut}.Message(),
	)
}

func TestStateNames(t *testing.T) {
	require := require.New(t)
	require.Equal("polling-destination", StatePollingDestination.String())
	require.Equal("unknown-99", TransferState(99).String())
}
