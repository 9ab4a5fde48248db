// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hethom

import (
	"math/rand"
	"sort"
	"strconv"

	farm "github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

// Action selects how samples are picked.
type Action string

const (
	// Random picks up to Opts.N het and N hom samples per variant.
	Random Action = "rnd"
	// All picks every het and hom sample.
	All Action = "all"
)

// Opts controls Sampler and Run.
type Opts struct {
	Action Action
	// N is the number of het and of hom samples picked per variant by Random.
	N int
	// Seed makes the random selection reproducible.
	Seed int64
	// EmitID adds the ID column to the output.
	EmitID bool
}

// DefaultOpts are the default options. The seed is fixed; callers that want a
// different selection on each run must set it.
var DefaultOpts = Opts{
	Action: Random,
	N:      5,
}

// Validate checks the options.
func (o Opts) Validate() error {
	switch o.Action {
	case Random:
		if o.N < 0 {
			return errors.Errorf("hethom: negative sample count %d", o.N)
		}
	case All:
	default:
		return errors.Errorf("hethom: unknown action %q, want %q or %q", o.Action, Random, All)
	}
	return nil
}

// Sampler picks het and hom samples from variants.
type Sampler struct {
	opts Opts
}

// NewSampler creates a sampler.
func NewSampler(opts Opts) (*Sampler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{opts: opts}, nil
}

// Select returns the indexes of the picked het and hom samples, in sample
// order. With the Random action, the selection for a variant depends only on
// the seed and the variant's CHROM, POS, REF and ALT, not on the other
// variants of the file.
func (s *Sampler) Select(v *Variant) (hets, homs []int) {
	hets, homs = Partition(v)
	if s.opts.Action == All {
		return hets, homs
	}
	if len(hets) <= s.opts.N && len(homs) <= s.opts.N {
		return hets, homs
	}
	r := rand.New(rand.NewSource(s.variantSeed(v)))
	return reservoir(r, hets, s.opts.N), reservoir(r, homs, s.opts.N)
}

func (s *Sampler) variantSeed(v *Variant) int64 {
	key := make([]byte, 0, 64)
	key = append(key, v.Chrom...)
	key = append(key, 0)
	key = strconv.AppendInt(key, int64(v.Pos), 10)
	key = append(key, 0)
	key = append(key, v.Ref...)
	for _, alt := range v.Alts {
		key = append(key, 0)
		key = append(key, alt...)
	}
	return int64(farm.Hash64WithSeed(key, uint64(s.opts.Seed)))
}

// reservoir picks n elements of items uniformly at random, returned sorted.
func reservoir(r *rand.Rand, items []int, n int) []int {
	if len(items) <= n {
		return items
	}
	picked := make([]int, n)
	copy(picked, items[:n])
	for i := n; i < len(items); i++ {
		if j := r.Intn(i + 1); j < n {
			picked[j] = items[i]
		}
	}
	sort.Ints(picked)
	return picked
}
