// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// MailboxEvent is a decoded Dispatch or Process event. Both carry the same
// field shape: identifier, origin, destination, recipient, payload, caller.
type MailboxEvent struct {
	MessageID   common.Hash
	Origin      uint32
	Destination uint32
	Recipient   common.Hash
	Payload     []byte
	Caller      common.Address

	// Log provenance.
	TxHash      common.Hash
	BlockNumber uint64
}
