// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey               = "log-level"
	APIPortKey                = "api-port"
	MetricsPortKey            = "metrics-port"
	PollAttemptsKey           = "poll-attempts"
	PollIntervalSecondsKey    = "poll-interval-seconds"
	LookbackBlocksKey         = "lookback-blocks"
	ConfirmTimeoutSecondsKey  = "confirm-timeout-seconds"
	SettleDelaySecondsKey     = "settle-delay-seconds"
	SimulationDelaySecondsKey = "simulation-delay-seconds"
	GasPaymentEnabledKey      = "gas-payment-enabled"
	GasPaymentGasLimitKey     = "gas-payment-gas-limit"
	WalletRPCURLsKey          = "wallet-rpc-urls"
	ChainsKey                 = "chains"
)
