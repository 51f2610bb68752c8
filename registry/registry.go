// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry holds the static table of known chains. The table is
// loaded once at process start and never mutated afterwards.
package registry

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hyperbridge/messenger/types"
)

// Built-in testnet chains. Receiver addresses on Arbitrum and Base Sepolia
// are placeholders until the receiver contract is deployed there.
var defaultChains = []types.Chain{
	{
		Name:              "Ethereum Sepolia",
		ID:                11155111,
		Domain:            11155111,
		Mailbox:           common.HexToAddress("0xcc737a94fecaec165abcf12ded095bb13f037685"),
		Receiver:          common.HexToAddress("0xc0DeD9245bCc36acB6aBF2c8d2719c5E02c78353"),
		GasPayer:          common.HexToAddress("0xe9e1cf1442e37bebf6ce102a7cb22bd556a9321f"),
		RPCURL:            "https://ethereum-sepolia-rpc.publicnode.com",
		ExplorerURLPrefix: "https://sepolia.etherscan.io/tx/",
	},
	{
		Name:              "Arbitrum Sepolia",
		ID:                421614,
		Domain:            421614,
		Mailbox:           common.HexToAddress("0x598face78a4302f11e3de0bee1894da0b2cb71f8"),
		Receiver:          common.HexToAddress("0x000000000000000000000000000000000000dead"),
		GasPayer:          common.HexToAddress("0x53c52406d23c092e330a529d590ec96eace6cf5b"),
		RPCURL:            "https://sepolia-rollup.arbitrum.io/rpc",
		ExplorerURLPrefix: "https://sepolia.arbiscan.io/tx/",
	},
	{
		Name:              "Base Sepolia",
		ID:                84532,
		Domain:            84532,
		Mailbox:           common.HexToAddress("0x6966b0E55883d49BFB24539356a2f8A673E02039"),
		Receiver:          common.HexToAddress("0x000000000000000000000000000000000000dead"),
		GasPayer:          common.HexToAddress("0x0000000000000000000000000000000000000000"),
		RPCURL:            "https://sepolia.base.org",
		ExplorerURLPrefix: "https://sepolia.basescan.org/tx/",
	},
}

// Registry is an immutable chain table keyed by chain id.
type Registry struct {
	chains map[uint64]types.Chain
	order  []uint64
}

// NewDefault returns a registry with the built-in testnet chains.
func NewDefault() *Registry {
	r, err := New(defaultChains...)
	if err != nil {
		// The built-in table is checked by tests; duplicate ids cannot occur.
		panic(err)
	}
	return r
}

// New builds a registry from the given chains. Chain ids must be unique.
func New(chains ...types.Chain) (*Registry, error) {
	r := &Registry{chains: make(map[uint64]types.Chain, len(chains))}
	for _, c := range chains {
		if _, ok := r.chains[c.ID]; ok {
			return nil, fmt.Errorf("duplicate chain id %d", c.ID)
		}
		r.chains[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r, nil
}

// Merge returns a new registry with the given chains overlaid on top of r.
// An overlay chain with a known id replaces the built-in record.
func (r *Registry) Merge(chains ...types.Chain) (*Registry, error) {
	merged := make(map[uint64]types.Chain, len(r.chains)+len(chains))
	for id, c := range r.chains {
		merged[id] = c
	}
	for _, c := range chains {
		merged[c.ID] = c
	}
	all := make([]types.Chain, 0, len(merged))
	for _, c := range merged {
		all = append(all, c)
	}
	return New(all...)
}

// Lookup returns the chain record for id. The returned value is a copy;
// callers cannot modify the registry through it.
func (r *Registry) Lookup(id uint64) (types.Chain, bool) {
	c, ok := r.chains[id]
	return c, ok
}

// List returns all known chains ordered by chain id.
func (r *Registry) List() []types.Chain {
	out := make([]types.Chain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.chains[id])
	}
	return out
}

// ExplorerTxURL joins a chain's explorer prefix with a transaction hash.
// Returns "" when the chain is unknown or has no explorer configured.
func (r *Registry) ExplorerTxURL(id uint64, txHash common.Hash) string {
	c, ok := r.chains[id]
	if !ok || c.ExplorerURLPrefix == "" {
		return ""
	}
	return c.ExplorerURLPrefix + txHash.Hex()
}
