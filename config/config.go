// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config builds the messenger configuration from flags, an optional
// JSON config file, and environment variables, in that precedence order.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hyperbridge/messenger/types"
)

const (
	defaultLogLevel               = "info"
	defaultAPIPort                = 8080
	defaultMetricsPort            = 9090
	defaultPollAttempts           = 24
	defaultPollIntervalSeconds    = 5
	defaultLookbackBlocks         = 500
	defaultConfirmTimeoutSeconds  = 90
	defaultSettleDelaySeconds     = 1
	defaultSimulationDelaySeconds = 3
	defaultGasPaymentGasLimit     = 350_000 // upper bound for a simple receive
)

// ChainConfig is a chain table entry as written in the config file. It
// overlays or extends the built-in registry.
type ChainConfig struct {
	Name              string `mapstructure:"name" json:"name"`
	ChainID           uint64 `mapstructure:"chain-id" json:"chain-id"`
	Domain            uint32 `mapstructure:"domain" json:"domain"`
	Mailbox           string `mapstructure:"mailbox" json:"mailbox"`
	Receiver          string `mapstructure:"receiver" json:"receiver"`
	GasPayer          string `mapstructure:"gas-payer" json:"gas-payer"`
	RPCURL            string `mapstructure:"rpc-url" json:"rpc-url"`
	ExplorerURLPrefix string `mapstructure:"explorer-url-prefix" json:"explorer-url-prefix"`
}

func (c ChainConfig) ToChain() (types.Chain, error) {
	if c.ChainID == 0 {
		return types.Chain{}, fmt.Errorf("chain %q: missing chain-id", c.Name)
	}
	if !common.IsHexAddress(c.Mailbox) {
		return types.Chain{}, fmt.Errorf("chain %q: malformed mailbox address %q", c.Name, c.Mailbox)
	}
	domain := c.Domain
	if domain == 0 {
		domain = uint32(c.ChainID)
	}
	chain := types.Chain{
		Name:              c.Name,
		ID:                c.ChainID,
		Domain:            domain,
		Mailbox:           common.HexToAddress(c.Mailbox),
		RPCURL:            c.RPCURL,
		ExplorerURLPrefix: c.ExplorerURLPrefix,
	}
	if c.Receiver != "" {
		if !common.IsHexAddress(c.Receiver) {
			return types.Chain{}, fmt.Errorf("chain %q: malformed receiver address %q", c.Name, c.Receiver)
		}
		chain.Receiver = common.HexToAddress(c.Receiver)
	}
	if c.GasPayer != "" {
		if !common.IsHexAddress(c.GasPayer) {
			return types.Chain{}, fmt.Errorf("chain %q: malformed gas-payer address %q", c.Name, c.GasPayer)
		}
		chain.GasPayer = common.HexToAddress(c.GasPayer)
	}
	return chain, nil
}

// Config is the top-level messenger configuration.
type Config struct {
	LogLevel               string            `mapstructure:"log-level"`
	APIPort                uint16            `mapstructure:"api-port"`
	MetricsPort            uint16            `mapstructure:"metrics-port"`
	PollAttempts           int               `mapstructure:"poll-attempts"`
	PollIntervalSeconds    int               `mapstructure:"poll-interval-seconds"`
	LookbackBlocks         uint64            `mapstructure:"lookback-blocks"`
	ConfirmTimeoutSeconds  int               `mapstructure:"confirm-timeout-seconds"`
	SettleDelaySeconds     int               `mapstructure:"settle-delay-seconds"`
	SimulationDelaySeconds int               `mapstructure:"simulation-delay-seconds"`
	GasPaymentEnabled      bool              `mapstructure:"gas-payment-enabled"`
	GasPaymentGasLimit     uint64            `mapstructure:"gas-payment-gas-limit"`
	WalletRPCURLs          map[string]string `mapstructure:"wallet-rpc-urls"`
	Chains                 []ChainConfig     `mapstructure:"chains"`
}

// Validate checks field ranges and the chain overlay entries.
func (c *Config) Validate() error {
	if c.PollAttempts <= 0 {
		return fmt.Errorf("%s must be positive", PollAttemptsKey)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("%s must be positive", PollIntervalSecondsKey)
	}
	if c.ConfirmTimeoutSeconds <= 0 {
		return fmt.Errorf("%s must be positive", ConfirmTimeoutSecondsKey)
	}
	if _, err := c.ChainOverlays(); err != nil {
		return err
	}
	if _, err := c.WalletEndpoints(); err != nil {
		return err
	}
	return nil
}

// ChainOverlays converts the configured chain entries.
func (c *Config) ChainOverlays() ([]types.Chain, error) {
	chains := make([]types.Chain, 0, len(c.Chains))
	for _, cc := range c.Chains {
		chain, err := cc.ToChain()
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

// WalletEndpoints parses the wallet-rpc-urls table into chain-id form.
func (c *Config) WalletEndpoints() (map[uint64]string, error) {
	out := make(map[uint64]string, len(c.WalletRPCURLs))
	for key, url := range c.WalletRPCURLs {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad chain id key %q", WalletRPCURLsKey, key)
		}
		out[id] = url
	}
	return out, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySeconds) * time.Second
}

func (c *Config) SimulationDelay() time.Duration {
	return time.Duration(c.SimulationDelaySeconds) * time.Second
}
