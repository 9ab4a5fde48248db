// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alnreader

import (
	"strings"

	"github.com/grailbio/hts/sam"
)

// Reader iterates over the records of an alignment file in file order, in a
// single pass. Thread compatible.
type Reader interface {
	// Header returns the header of the file. The caller must not modify it.
	Header() *sam.Header

	// Scan advances the reader to the next record. It returns false when the
	// input is exhausted or an error occurred; the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record. This must be called only after a call
	// to Scan() returns true. The caller owns the record; it may hand it back
	// with sam.PutInFreePool once it has copied out what it needs.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encountered during iteration, or nil if no error
	// occurred. An io.EOF error is translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err(), or
	// the error encountered while releasing the input.
	Close() error
}

// FileType represents the format of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// SAM text, optionally gzip or bgzip compressed.
	SAM
	// BAM file
	BAM
	// CRAM file. Recognized so that it can be rejected with a clear error.
	CRAM
)

// String returns the lowercase name of the file type.
func (t FileType) String() string {
	switch t {
	case SAM:
		return "sam"
	case BAM:
		return "bam"
	case CRAM:
		return "cram"
	}
	return "unknown"
}

// ParseFileType parses the file type string. "bam" returns alnreader.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch strings.ToLower(name) {
	case "sam":
		return SAM
	case "bam":
		return BAM
	case "cram":
		return CRAM
	default:
		return Unknown
	}
}

// GuessFileType returns the file type from the pathname. It returns Unknown
// if the suffix is not recognized, in which case Open sniffs the contents.
func GuessFileType(path string) FileType {
	switch {
	case strings.HasSuffix(path, ".bam"):
		return BAM
	case strings.HasSuffix(path, ".cram"):
		return CRAM
	case strings.HasSuffix(path, ".sam"), strings.HasSuffix(path, ".sam.gz"):
		return SAM
	}
	return Unknown
}

type errorReader struct {
	err error
}

func (r *errorReader) Header() *sam.Header { return nil }
func (r *errorReader) Scan() bool          { return false }
func (r *errorReader) Record() *sam.Record { panic("shall not be called") }
func (r *errorReader) Err() error          { return r.err }
func (r *errorReader) Close() error        { return r.err }

// NewErrorReader creates a Reader that yields no record and returns "err" in
// Err and Close.
func NewErrorReader(err error) Reader {
	return &errorReader{err: err}
}
