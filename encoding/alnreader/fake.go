// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alnreader

import (
	"github.com/grailbio/hts/sam"
)

// fakeReader is only for unittests. It yields the given records.
type fakeReader struct {
	header *sam.Header
	recs   []*sam.Record
	rec    *sam.Record
	closed bool
}

// NewFakeReader creates a Reader that returns "header" in response to a
// Header() call, and yields recs in order. The records are handed out as is,
// so callers that return them to sam's free pool must pass fresh copies.
func NewFakeReader(header *sam.Header, recs []*sam.Record) Reader {
	return &fakeReader{header: header, recs: recs}
}

// Header implements the Reader interface.
func (r *fakeReader) Header() *sam.Header { return r.header }

// Scan implements the Reader interface.
func (r *fakeReader) Scan() bool {
	if r.closed {
		panic("Scan called after Close")
	}
	if len(r.recs) == 0 {
		r.rec = nil
		return false
	}
	r.rec = r.recs[0]
	r.recs = r.recs[1:]
	return true
}

// Record implements the Reader interface.
func (r *fakeReader) Record() *sam.Record { return r.rec }

// Err implements the Reader interface.
func (r *fakeReader) Err() error { return nil }

// Close implements the Reader interface.
func (r *fakeReader) Close() error {
	if r.closed {
		panic("Close called twice")
	}
	r.closed = true
	return nil
}
