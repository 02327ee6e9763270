// Copyright 2024 The GoDex Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dex

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// StringPool holds every decoded string_data_item, indexed the way
// string_ids orders them, plus a hash-bucketed reverse index so a
// caller resolving a name (a class descriptor while building a type
// hierarchy, say) does not have to scan the whole table.
type StringPool struct {
	values  []string
	byHash  map[uint64][]uint32
}

func newStringPool(n int) *StringPool {
	return &StringPool{
		values: make([]string, 0, n),
		byHash: make(map[uint64][]uint32, n),
	}
}

// add appends s as the next string_ids entry and returns its index.
func (p *StringPool) add(s string) uint32 {
	idx := uint32(len(p.values))
	p.values = append(p.values, s)
	h := xxhash.Sum64String(s)
	p.byHash[h] = append(p.byHash[h], idx)
	return idx
}

// Get returns the string at idx.
func (p *StringPool) Get(idx uint32) (string, error) {
	if idx >= uint32(len(p.values)) {
		return "", fmt.Errorf("%w: %d", ErrUnknownStringIndex, idx)
	}
	return p.values[idx], nil
}

// Len returns the number of strings in the pool.
func (p *StringPool) Len() int { return len(p.values) }

// Lookup returns the string_ids index of s, and whether it was found.
// Matching against every same-hash candidate guards against xxhash
// collisions rather than trusting the hash alone.
func (p *StringPool) Lookup(s string) (uint32, bool) {
	h := xxhash.Sum64String(s)
	for _, idx := range p.byHash[h] {
		if p.values[idx] == s {
			return idx, true
		}
	}
	return 0, false
}
