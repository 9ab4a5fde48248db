// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package summarize classifies alignment records into paired and split reads
// and collects them, with their supplementary alignments, into a Tree.
package summarize

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/alignment"
	"github.com/grailbio/triage/encoding/alnreader"
)

// Summarizer accumulates the summary of one pass over an alignment file.
// Thread compatible.
type Summarizer struct {
	opts     Opts
	tree     Tree
	counters Counters
}

// NewSummarizer creates an empty summarizer.
func NewSummarizer(opts Opts) *Summarizer {
	return &Summarizer{opts: opts}
}

// Add classifies r, updates the counters and adds r to the tree. Add does not
// retain r.
//
// A non-nil error reports the parts of r that could not be parsed and were
// left out of the tree: either the whole record, if its own CIGAR is invalid,
// or the malformed records of its SA tag. The record is counted regardless.
func (s *Summarizer) Add(r *sam.Record) error {
	v := Classify(r, s.opts)
	switch v.Exclusion {
	case QCFail:
		s.counters.QCFail++
		return nil
	case Unmapped:
		s.counters.Unmapped++
		return nil
	case Duplicate:
		s.counters.Duplicate++
		return nil
	case BadMapQ:
		s.counters.BadMapQ++
		return nil
	}
	s.counters.Total++
	if v.Paired {
		s.counters.Paired++
	}
	if v.Split {
		s.counters.Split++
		s.counters.SplitSupplementary += len(alignment.SplitSA(v.SA))
	}
	if !v.Paired && !v.Split {
		return nil
	}

	primary, err := alignment.FromRecord(r)
	if err != nil {
		return errors.E(err, "read", string(append([]byte(nil), r.Name...)))
	}
	if v.Paired {
		s.tree.Add(Paired, primary)
	}
	if !v.Split {
		return nil
	}
	s.tree.Add(Split, primary)
	partners, errs := alignment.DecomposeSA(v.SA, primary.Name)
	for _, a := range partners {
		s.tree.Add(Split, a)
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.E(errs[0], fmt.Sprintf("(%d more malformed SA records)", len(errs)-1))
	}
}

// Tree returns the tree built so far.
func (s *Summarizer) Tree() *Tree {
	return &s.tree
}

// Counters returns the counters accumulated so far.
func (s *Summarizer) Counters() Counters {
	return s.counters
}

// Run reads every record of r and returns the resulting summary. Records are
// returned to sam's free pool after they are added. Fields that cannot be
// parsed are logged and left out of the tree; the rest of the record is still
// summarized. A read error or the cancellation of ctx aborts the run. Run does
// not close r.
func Run(ctx context.Context, r alnreader.Reader, opts Opts) (*Summarizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := NewSummarizer(opts)
	nMalformed := 0
	for r.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := r.Record()
		if err := s.Add(rec); err != nil {
			log.Error.Printf("%v", err)
			nMalformed++
		}
		sam.PutInFreePool(rec)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if nMalformed > 0 {
		log.Printf("%d records with malformed fields", nMalformed)
	}
	log.Debug.Printf("summary: %v", s.counters)
	return s, nil
}
