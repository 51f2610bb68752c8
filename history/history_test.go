// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package history

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hyperbridge/messenger/types"
)

func record(i int) types.MessageRecord {
	return types.MessageRecord{
		MessageID:   common.BigToHash(common.Big1),
		PayloadText: fmt.Sprintf("message-%d", i),
	}
}

func TestRecordPrepends(t *testing.T) {
	require := require.New(t)
	log := NewLog()

	for i := 0; i < 5; i++ {
		log.Record(record(i))
	}

	entries := log.List()
	require.Len(entries, 5)
	// Most recent first.
	for i, entry := range entries {
		require.Equal(fmt.Sprintf("message-%d", 4-i), entry.PayloadText)
	}
}

func TestNoDeduplication(t *testing.T) {
	log := NewLog()
	log.Record(record(0))
	log.Record(record(0))
	require.Equal(t, 2, log.Len())
}

func TestListReturnsSnapshot(t *testing.T) {
	require := require.New(t)
	log := NewLog()
	log.Record(record(0))

	snapshot := log.List()
	snapshot[0].PayloadText = "mutated"

	require.Equal("message-0", log.List()[0].PayloadText)
}

func TestPriorEntriesUnchangedByLaterRecords(t *testing.T) {
	require := require.New(t)
	log := NewLog()
	log.Record(record(0))
	before := log.List()[0]

	log.Record(record(1))
	require.Equal(before, log.List()[1])
}
