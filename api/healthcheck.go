// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http"

	"github.com/alexliesenfeld/health"
)

// HandleHealthCheckRequest installs /health on the default mux.
func HandleHealthCheckRequest(checkFunc func(context.Context) error) {
	healthChecker := health.NewChecker(
		health.WithCheck(health.Check{
			Name:  "messenger-health",
			Check: checkFunc,
		}),
	)

	http.Handle("/health", health.NewHandler(healthChecker))
}
