// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package alignment defines the minimal alignment record emitted by the
// summarizer, and the decomposition of SA aux tags into such records.
package alignment

import (
	"encoding/json"
	"fmt"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/cigar"
)

// Simple is the minimal description of one alignment: where it lies on the
// reference and on which strand. It holds no references into the decoder's
// buffers.
type Simple struct {
	// Name is the query (read) name.
	Name string
	// Chr is the reference name.
	Chr string
	// Start is 0-based, inclusive.
	Start int
	// End is exclusive; End = Start + cigar.ReferenceSpan.
	End int
	// Forward is true iff the alignment is on the forward strand.
	Forward bool
}

// String returns "chr_start_end_strand", where strand is 1 for forward.
func (s Simple) String() string {
	strand := 0
	if s.Forward {
		strand = 1
	}
	return fmt.Sprintf("%s_%d_%d_%d", s.Chr, s.Start, s.End, strand)
}

type simpleJSON struct {
	Chr       string `json:"chr"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	IsReverse bool   `json:"is_reverse"`
}

// MarshalJSON renders s as {"chr","start","end","is_reverse"}. The query name
// is not included; it is the key under which the record is stored.
func (s Simple) MarshalJSON() ([]byte, error) {
	return json.Marshal(simpleJSON{
		Chr:       s.Chr,
		Start:     s.Start,
		End:       s.End,
		IsReverse: !s.Forward,
	})
}

// FromRecord copies the location of r into a Simple. The end coordinate is
// computed with cigar.ReferenceSpan, so it may differ from r.End() for
// alignments containing '=' ops.
//
// The name is copied: the BAM decoder points r.Name into a buffer that the
// next Read reuses.
func FromRecord(r *sam.Record) (Simple, error) {
	tokens, err := cigar.FromSAM(r.Cigar)
	if err != nil {
		return Simple{}, err
	}
	chr := "*"
	if r.Ref != nil {
		chr = r.Ref.Name()
	}
	return Simple{
		Name:    string(append([]byte(nil), r.Name...)),
		Chr:     chr,
		Start:   r.Pos,
		End:     r.Pos + cigar.ReferenceSpan(tokens),
		Forward: r.Flags&sam.Reverse == 0,
	}, nil
}
