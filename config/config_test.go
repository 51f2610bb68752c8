// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func buildFromArgs(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := BuildFlagSet()
	require.NoError(t, fs.Parse(args))
	v, err := BuildViper(fs)
	require.NoError(t, err)
	return NewConfig(v)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	require := require.New(t)
	cfg, err := buildFromArgs(t)
	require.NoError(err)
	require.Equal("info", cfg.LogLevel)
	require.Equal(uint16(8080), cfg.APIPort)
	require.Equal(uint16(9090), cfg.MetricsPort)
	require.Equal(24, cfg.PollAttempts)
	require.Equal(5, cfg.PollIntervalSeconds)
	require.Equal(uint64(500), cfg.LookbackBlocks)
	require.Equal(90, cfg.ConfirmTimeoutSeconds)
	require.Equal(1, cfg.SettleDelaySeconds)
	require.Equal(3, cfg.SimulationDelaySeconds)
	require.False(cfg.GasPaymentEnabled)
	require.Equal(uint64(350_000), cfg.GasPaymentGasLimit)
	require.Empty(cfg.Chains)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	require := require.New(t)
	path := writeConfigFile(t, `{
		"log-level": "debug",
		"poll-attempts": 10,
		"gas-payment-enabled": true,
		"chains": [{
			"name": "Local Devnet",
			"chain-id": 1337,
			"mailbox": "0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766",
			"rpc-url": "http://localhost:8545"
		}]
	}`)

	cfg, err := buildFromArgs(t, "--config-file", path)
	require.NoError(err)
	require.Equal("debug", cfg.LogLevel)
	require.Equal(10, cfg.PollAttempts)
	require.True(cfg.GasPaymentEnabled)

	chains, err := cfg.ChainOverlays()
	require.NoError(err)
	require.Len(chains, 1)
	require.Equal(uint64(1337), chains[0].ID)
	// Domain falls back to the chain id when unset.
	require.Equal(uint32(1337), chains[0].Domain)
	require.Equal(common.HexToAddress("0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766"), chains[0].Mailbox)
}

func TestFlagsTakePrecedenceOverConfigFile(t *testing.T) {
	require := require.New(t)
	path := writeConfigFile(t, `{"poll-attempts": 10}`)

	cfg, err := buildFromArgs(t, "--config-file", path, "--poll-attempts", "7")
	require.NoError(err)
	require.Equal(7, cfg.PollAttempts)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	base := Config{
		PollAttempts:          24,
		PollIntervalSeconds:   5,
		ConfirmTimeoutSeconds: 90,
	}

	cfg := base
	cfg.PollAttempts = 0
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.PollIntervalSeconds = -1
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.ConfirmTimeoutSeconds = 0
	require.Error(t, cfg.Validate())
}

func TestChainConfigToChain(t *testing.T) {
	require := require.New(t)

	_, err := ChainConfig{Name: "no-id", Mailbox: "0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766"}.ToChain()
	require.ErrorContains(err, "missing chain-id")

	_, err = ChainConfig{Name: "bad-mailbox", ChainID: 1, Mailbox: "not-an-address"}.ToChain()
	require.ErrorContains(err, "malformed mailbox address")

	_, err = ChainConfig{
		Name:     "bad-receiver",
		ChainID:  1,
		Mailbox:  "0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766",
		Receiver: "nope",
	}.ToChain()
	require.ErrorContains(err, "malformed receiver address")

	chain, err := ChainConfig{
		Name:     "full",
		ChainID:  84532,
		Domain:   7,
		Mailbox:  "0xfFAEF09B3cd11D9b20d1a19bECca54EEC2884766",
		Receiver: "0x6966b0E55883d49BFB24539356a2f8A673E02039",
		GasPayer: "0x931dFd53A3378352f9EA6bfAB6D5f2b9FB168A74",
		RPCURL:   "https://sepolia.base.org",
	}.ToChain()
	require.NoError(err)
	require.Equal(uint32(7), chain.Domain)
	require.Equal(common.HexToAddress("0x6966b0E55883d49BFB24539356a2f8A673E02039"), chain.Receiver)
	require.Equal(common.HexToAddress("0x931dFd53A3378352f9EA6bfAB6D5f2b9FB168A74"), chain.GasPayer)
}

func TestWalletEndpoints(t *testing.T) {
	require := require.New(t)

	cfg := Config{WalletRPCURLs: map[string]string{
		"11155111": "https://rpc.sepolia.org",
		"84532":    "https://sepolia.base.org",
	}}
	endpoints, err := cfg.WalletEndpoints()
	require.NoError(err)
	require.Equal("https://rpc.sepolia.org", endpoints[11155111])
	require.Equal("https://sepolia.base.org", endpoints[84532])

	cfg = Config{WalletRPCURLs: map[string]string{"sepolia": "https://rpc.sepolia.org"}}
	_, err = cfg.WalletEndpoints()
	require.ErrorContains(err, fmt.Sprintf("%s: bad chain id key", WalletRPCURLsKey))
}

func TestDurationHelpers(t *testing.T) {
	require := require.New(t)
	cfg := Config{
		PollIntervalSeconds:    5,
		ConfirmTimeoutSeconds:  90,
		SettleDelaySeconds:     1,
		SimulationDelaySeconds: 3,
	}
	require.Equal("5s", cfg.PollInterval().String())
	require.Equal("1m30s", cfg.ConfirmTimeout().String())
	require.Equal("1s", cfg.SettleDelay().String())
	require.Equal("3s", cfg.SimulationDelay().String())
}
