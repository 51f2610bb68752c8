// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// MessageRecord is one completed (or simulated) transfer as kept in the
// session history. Records are immutable once appended and are created only
// at terminal success: real delivery, loopback self-delivery, or simulation.
type MessageRecord struct {
	MessageID         common.Hash  `json:"messageId"`
	PayloadText       string       `json:"payloadText"`
	SourceTxHash      common.Hash  `json:"sourceTxHash"`
	DestinationTxHash common.Hash  `json:"destinationTxHash"`
	CreatedAt         time.Time    `json:"createdAt"`
	SourceChain       ChainSummary `json:"sourceChain"`
	DestinationChain  ChainSummary `json:"destinationChain"`
	Simulated         bool         `json:"simulated"`
}
