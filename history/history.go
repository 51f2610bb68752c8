// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package history keeps the session-scoped log of completed transfers.
// The log is append-only, most-recent-first, and intentionally unbounded:
// it lives only as long as the process and is never persisted.
package history

import (
	"sync"

	"github.com/hyperbridge/messenger/types"
)

// Log is the in-memory session history. Entries are never mutated or
// removed after Record; repeated sends produce repeated entries.
type Log struct {
	lock    sync.RWMutex
	entries []types.MessageRecord
}

func NewLog() *Log {
	return &Log{}
}

// Record prepends the entry to the log.
func (l *Log) Record(entry types.MessageRecord) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.entries = append([]types.MessageRecord{entry}, l.entries...)
}

// List returns a snapshot of the log, most recent first.
func (l *Log) List() []types.MessageRecord {
	l.lock.RLock()
	defer l.lock.RUnlock()
	out := make([]types.MessageRecord, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded transfers.
func (l *Log) Len() int {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return len(l.entries)
}
