// Package explorer maps chain names to block-explorer address pages.
package explorer

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Explorer base URLs for the built-in chains
const (
	EtherscanBase   = "https://etherscan.io/address/"
	PolygonscanBase = "https://polygonscan.com/address/"
)

// Link is a resolved explorer link for one address
type Link struct {
	Href  string
	Known bool // chain had an explicit entry; false when the fallback was used
}

// Registry resolves explorer base URLs by exact chain name
type Registry struct {
	bases map[string]string
	// Fallback is used for chains without an entry. Empty means no link.
	Fallback string
}

// NewRegistry returns the default registry: Ethereum and Polygon, with
// unknown chains falling back to the Polygon explorer
func NewRegistry() *Registry {
	return &Registry{
		bases: map[string]string{
			"Ethereum": EtherscanBase,
			"Polygon":  PolygonscanBase,
		},
		Fallback: PolygonscanBase,
	}
}

// Set registers or replaces the base URL for a chain
func (r *Registry) Set(chain, base string) {
	if r.bases == nil {
		r.bases = make(map[string]string)
	}
	r.bases[chain] = base
}

// Base returns the base URL for a chain and whether the chain is registered
func (r *Registry) Base(chain string) (string, bool) {
	base, ok := r.bases[chain]
	if ok {
		return base, true
	}
	return r.Fallback, false
}

// Resolve builds the explorer link for an address on a chain. Href is empty
// when the chain is unknown and no fallback is configured.
func (r *Registry) Resolve(chain, address string) Link {
	base, known := r.Base(chain)
	if base == "" {
		return Link{Known: known}
	}
	return Link{Href: base + "0x" + address, Known: known}
}

// Chains returns the registered chain names in sorted order
func (r *Registry) Chains() []string {
	names := make([]string, 0, len(r.bases))
	for name := range r.bases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateAddress reports whether address (without 0x) is a 20-byte hex
// EVM address
func ValidateAddress(address string) bool {
	return common.IsHexAddress("0x" + address)
}
