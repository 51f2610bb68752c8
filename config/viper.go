// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildFlagSet declares every top-level key as a command line flag.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("messenger", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "Path to a JSON config file")
	fs.String(LogLevelKey, defaultLogLevel, "Log level (debug, info, warn, error)")
	fs.Uint16(APIPortKey, defaultAPIPort, "HTTP API listen port")
	fs.Uint16(MetricsPortKey, defaultMetricsPort, "Prometheus metrics listen port")
	fs.Int(PollAttemptsKey, defaultPollAttempts, "Destination polling attempt budget")
	fs.Int(PollIntervalSecondsKey, defaultPollIntervalSeconds, "Seconds between destination polls")
	fs.Uint64(LookbackBlocksKey, defaultLookbackBlocks, "Recent-block window scanned per poll")
	fs.Int(ConfirmTimeoutSecondsKey, defaultConfirmTimeoutSeconds, "Seconds to wait for source confirmation")
	fs.Int(SettleDelaySecondsKey, defaultSettleDelaySeconds, "Seconds to wait after a wallet network switch")
	fs.Int(SimulationDelaySecondsKey, defaultSimulationDelaySeconds, "Artificial delay of the simulation fallback")
	fs.Bool(GasPaymentEnabledKey, false, "Quote and pay interchain gas after dispatch")
	fs.Uint64(GasPaymentGasLimitKey, defaultGasPaymentGasLimit, "Destination gas amount covered by the gas payment")
	fs.StringToString(WalletRPCURLsKey, nil, "Chain-id to wallet RPC endpoint table")
	return fs
}

// BuildViper binds flags and environment variables and reads the config
// file when one is set. All config keys may be provided via config file or
// environment variable; flags take precedence.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens
	// are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if filename := configFilePath(v); filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func configFilePath(v *viper.Viper) string {
	if v.IsSet(ConfigFileKey) {
		if filename := v.GetString(ConfigFileKey); filename != "" {
			return filename
		}
	}
	return os.Getenv(ConfigFileEnvKey)
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(APIPortKey, defaultAPIPort)
	v.SetDefault(MetricsPortKey, defaultMetricsPort)
	v.SetDefault(PollAttemptsKey, defaultPollAttempts)
	v.SetDefault(PollIntervalSecondsKey, defaultPollIntervalSeconds)
	v.SetDefault(LookbackBlocksKey, defaultLookbackBlocks)
	v.SetDefault(ConfirmTimeoutSecondsKey, defaultConfirmTimeoutSeconds)
	v.SetDefault(SettleDelaySecondsKey, defaultSettleDelaySeconds)
	v.SetDefault(SimulationDelaySecondsKey, defaultSimulationDelaySeconds)
	v.SetDefault(GasPaymentGasLimitKey, defaultGasPaymentGasLimit)
}

// BuildConfig constructs the messenger config using Viper.
// The following precedence order is used. Each item takes precedence over
// the item below it:
//  1. Flags
//  2. Config file
//
// Returns the Config
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}
