// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultRPCTimeout bounds a single JSON-RPC call against a chain endpoint.
const DefaultRPCTimeout = 10 * time.Second

// WithRetriesTimeout uses an exponential backoff to run the operation until
// it succeeds or the timeout limit has been reached.
func WithRetriesTimeout(
	logger *zap.Logger,
	operation backoff.Operation,
	timeout time.Duration,
	msg string,
) error {
	expBackOff := backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(timeout),
	)
	notify := func(err error, duration time.Duration) {
		logger.Warn("operation failed, retrying...",
			zap.String("operation", msg),
			zap.Duration("nextAttemptIn", duration),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(operation, expBackOff, notify)
}
