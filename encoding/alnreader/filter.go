// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alnreader

import (
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

type filterReader struct {
	Reader
	keep     func(*sam.Record) bool
	nDropped int
}

// NewFilterReader creates a Reader that yields the records of r for which keep
// returns true. The other records are returned to sam's free pool. Closing
// the result closes r.
func NewFilterReader(r Reader, keep func(*sam.Record) bool) Reader {
	return &filterReader{Reader: r, keep: keep}
}

// Scan implements the Reader interface.
func (r *filterReader) Scan() bool {
	for r.Reader.Scan() {
		if r.keep(r.Reader.Record()) {
			return true
		}
		sam.PutInFreePool(r.Reader.Record())
		r.nDropped++
	}
	return false
}

// Close implements the Reader interface.
func (r *filterReader) Close() error {
	vlog.VI(1).Infof("filter: dropped %d records", r.nDropped)
	return r.Reader.Close()
}
