package model

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeKind classifies how a wallet differs between two trees
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeGrew
	ChangeShrunk
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeGrew:
		return "grew"
	case ChangeShrunk:
		return "shrunk"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Change describes one wallet whose value differs between two trees
type Change struct {
	Chain   string     `json:"chain"`
	Address string     `json:"address"`
	Kind    ChangeKind `json:"kind"`
	Prev    float64    `json:"prev"`
	Curr    float64    `json:"curr"`
}

// Delta returns the value change
func (c Change) Delta() float64 {
	return c.Curr - c.Prev
}

// Diff compares the leaves of two trees, matching them by chain and address.
// Leaves that occur more than once are summed. Neither tree is modified.
// The result is ordered by chain, then address.
func Diff(previous, current *Node) []Change {
	prev := leafValues(previous)
	curr := leafValues(current)

	var changes []Change
	for key, v := range curr {
		p, existed := prev[key]
		c := Change{Chain: key.chain, Address: key.address, Prev: p, Curr: v}
		switch {
		case !existed:
			c.Kind = ChangeAdded
		case v > p:
			c.Kind = ChangeGrew
		case v < p:
			c.Kind = ChangeShrunk
		default:
			continue
		}
		changes = append(changes, c)
	}
	for key, p := range prev {
		if _, ok := curr[key]; !ok {
			changes = append(changes, Change{Chain: key.chain, Address: key.address, Kind: ChangeRemoved, Prev: p})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Chain != changes[j].Chain {
			return changes[i].Chain < changes[j].Chain
		}
		return changes[i].Address < changes[j].Address
	})
	return changes
}

// SummarizeChanges counts changes by kind, e.g. "1 added, 2 grew". It
// returns "no changes" for an empty list.
func SummarizeChanges(changes []Change) string {
	if len(changes) == 0 {
		return "no changes"
	}
	var counts [4]int
	for _, c := range changes {
		counts[c.Kind]++
	}
	var parts []string
	for kind, n := range counts {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, ChangeKind(kind)))
		}
	}
	return strings.Join(parts, ", ")
}

type leafKey struct {
	chain   string
	address string
}

func leafValues(root *Node) map[leafKey]float64 {
	values := make(map[leafKey]float64)
	for _, leaf := range Leaves(root) {
		values[leafKey{leaf.Chain, strings.ToLower(leaf.Address)}] += leaf.Value
	}
	return values
}
