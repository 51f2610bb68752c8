// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"
	"time"
)

// TransferState enumerates the phases of one send-and-confirm workflow run.
type TransferState int

const (
	StateIdle TransferState = iota
	StateWalletConnecting
	StateNetworkSwitching
	StateSubmitting
	StateAwaitingSourceConfirmation
	StatePollingDestination
	StateDelivered
	StateSimulatedDelivered
	StateFailed
	StateTimedOut
)

var transferStateNames = map[TransferState]string{
	StateIdle:                       "idle",
	StateWalletConnecting:           "wallet-connecting",
	StateNetworkSwitching:           "network-switching",
	StateSubmitting:                 "submitting",
	StateAwaitingSourceConfirmation: "awaiting-source-confirmation",
	StatePollingDestination:         "polling-destination",
	StateDelivered:                  "delivered",
	StateSimulatedDelivered:         "simulated-delivered",
	StateFailed:                     "failed",
	StateTimedOut:                   "timed-out",
}

func (s TransferState) String() string {
	if name, ok := transferStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown-%d", int(s))
}

// Terminal reports whether a new send may begin from this state.
func (s TransferState) Terminal() bool {
	switch s {
	case StateIdle, StateDelivered, StateSimulatedDelivered, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// TransferStatus is the transient state attached to the in-flight request.
// Exactly one is live per user-initiated send.
type TransferStatus struct {
	State   TransferState `json:"state"`
	Attempt int           `json:"attempt,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}

// Message renders the user-facing status line for the current state.
func (t TransferStatus) Message() string {
	switch t.State {
	case StateIdle:
		return "Ready to send."
	case StateWalletConnecting:
		return "Connecting wallet..."
	case StateNetworkSwitching:
		return "Switching wallet network..."
	case StateSubmitting:
		return "Sending message..."
	case StateAwaitingSourceConfirmation:
		return "Message sent! Waiting for confirmation on source chain..."
	case StatePollingDestination:
		return fmt.Sprintf("Waiting for message on destination chain... (%ds)", int(t.Elapsed.Seconds()))
	case StateDelivered:
		return "Message received on destination chain!"
	case StateSimulatedDelivered:
		return "Simulated message received on destination chain!"
	case StateFailed:
		return fmt.Sprintf("Error: %s", t.Reason)
	case StateTimedOut:
		if t.Elapsed > 0 {
			return fmt.Sprintf("Message not found on destination chain after %s. It might be delayed or an issue occurred.", t.Elapsed)
		}
		return "Message not found on destination chain. It might be delayed or an issue occurred."
	}
	return t.State.String()
}
