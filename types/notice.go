// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

// NoticeKind tags the dialog variants the UI layer renders. The core never
// builds markup; it hands one of these to the presentation layer.
type NoticeKind int

const (
	NoticePlainText NoticeKind = iota
	NoticeSameChainLoopback
	NoticeCrossChainWarning
	NoticeSimulation
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSameChainLoopback:
		return "same-chain-loopback"
	case NoticeCrossChainWarning:
		return "cross-chain-warning"
	case NoticeSimulation:
		return "simulation"
	}
	return "plain-text"
}

// ModalNotice is a tagged user-facing disclosure produced by the workflow.
type ModalNotice struct {
	Kind    NoticeKind `json:"kind"`
	Details string     `json:"details"`
}

// SimulationDisclosure is shown whenever the no-wallet fallback runs, so
// simulated identifiers are never mistaken for real ones.
const SimulationDisclosure = "Simulation mode: No wallet connected. " +
	"The transaction hashes and message ID shown below are random and will " +
	"NOT be found on any real network."
