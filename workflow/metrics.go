// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	sendsBegunCount       *prometheus.CounterVec
	deliveredCount        *prometheus.CounterVec
	simulatedCount        *prometheus.CounterVec
	timedOutCount         *prometheus.CounterVec
	failedCount           *prometheus.CounterVec
	deliveryLatencySecond *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		sendsBegunCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sends_begun_count",
				Help: "Number of send workflows started",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		deliveredCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_delivered_count",
				Help: "Number of messages confirmed delivered on the destination chain",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		simulatedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_simulated_count",
				Help: "Number of simulated transfers (no wallet connected)",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		timedOutCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delivery_polls_timed_out_count",
				Help: "Number of sends whose destination polling exhausted its attempt budget",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
		failedCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sends_failed_count",
				Help: "Number of send workflows that failed before delivery",
			},
			[]string{"source_chain_id", "destination_chain_id", "failure_reason"},
		),
		deliveryLatencySecond: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "delivery_latency_seconds",
				Help: "Wall-clock seconds from dispatch submission to delivery confirmation",
			},
			[]string{"source_chain_id", "destination_chain_id"},
		),
	}

	registerer.MustRegister(m.sendsBegunCount)
	registerer.MustRegister(m.deliveredCount)
	registerer.MustRegister(m.simulatedCount)
	registerer.MustRegister(m.timedOutCount)
	registerer.MustRegister(m.failedCount)
	registerer.MustRegister(m.deliveryLatencySecond)

	return &m
}
