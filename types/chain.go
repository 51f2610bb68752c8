// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the data model shared by the messenger components:
// chain configuration records, dispatch requests, transfer statuses, session
// history entries, and decoded mailbox events.
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Chain is the immutable configuration record for a known test network.
// Domain is the protocol-level routing identifier, distinct from (but in
// practice numerically equal to) the EVM chain id.
type Chain struct {
	Name              string         `json:"name"`
	ID                uint64         `json:"chainId"`
	Domain            uint32         `json:"domain"`
	Mailbox           common.Address `json:"mailbox"`
	Receiver          common.Address `json:"receiver"`
	GasPayer          common.Address `json:"gasPayer"`
	RPCURL            string         `json:"rpcUrl"`
	ExplorerURLPrefix string         `json:"explorerUrlPrefix"`
}

// ChainSummary is the display subset of a Chain carried in history entries.
type ChainSummary struct {
	Name string `json:"name"`
	ID   uint64 `json:"chainId"`
}

func (c Chain) Summary() ChainSummary {
	return ChainSummary{Name: c.Name, ID: c.ID}
}

// DispatchRequest describes one attempt to send a message. Loopback
// (SourceChain.ID == DestinationChain.ID) is legal and handled explicitly.
type DispatchRequest struct {
	SourceChain      Chain
	DestinationChain Chain
	SenderAddress    common.Address
	Payload          []byte
}
