// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/cigar"
)

// SATag is the aux tag listing the supplementary alignments of a read.
var SATag = sam.NewTag("SA")

const (
	saPrefix   = "SA:Z:"
	saNumField = 6
)

// SAEntry is one record of an SA tag: "rname,pos,strand,CIGAR,mapQ,NM".
type SAEntry struct {
	Chr string
	// Pos is the value of the pos field as written in the tag.
	Pos     int
	Forward bool
	Cigar   cigar.Tokens
	MapQ    int
	NM      int
}

// SATagValue returns the value of r's SA tag, or "" if r has none.
func SATagValue(r *sam.Record) string {
	aux := r.AuxFields.Get(SATag)
	if aux == nil {
		return ""
	}
	s, ok := aux.Value().(string)
	if !ok {
		return ""
	}
	return s
}

// SplitSA splits an SA tag value into its records. The value may carry an
// "SA:Z:" prefix. Empty records, including the one after the customary
// trailing ';', are dropped. The returned strings are not validated.
func SplitSA(value string) []string {
	value = strings.TrimPrefix(value, saPrefix)
	var recs []string
	for _, rec := range strings.Split(value, ";") {
		if rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}

// ParseSAEntry parses a single SA record, e.g. "chr2,1000,+,50M,60,2".
func ParseSAEntry(rec string) (SAEntry, error) {
	fields := strings.Split(rec, ",")
	if len(fields) != saNumField {
		return SAEntry{}, errors.E(errors.Invalid, "SA record", strconv.Quote(rec),
			"has", strconv.Itoa(len(fields)), "fields, want", strconv.Itoa(saNumField))
	}
	var (
		e   = SAEntry{Chr: fields[0], Forward: fields[2] == "+"}
		err error
	)
	if e.Pos, err = strconv.Atoi(fields[1]); err != nil {
		return SAEntry{}, errors.E(errors.Invalid, err, "SA record", strconv.Quote(rec), "position")
	}
	if e.Cigar, err = cigar.Tokenize(fields[3]); err != nil {
		return SAEntry{}, errors.E(err, "SA record", strconv.Quote(rec))
	}
	if e.MapQ, err = strconv.Atoi(fields[4]); err != nil {
		return SAEntry{}, errors.E(errors.Invalid, err, "SA record", strconv.Quote(rec), "mapq")
	}
	if e.NM, err = strconv.Atoi(fields[5]); err != nil {
		return SAEntry{}, errors.E(errors.Invalid, err, "SA record", strconv.Quote(rec), "edit distance")
	}
	return e, nil
}

// Simple converts e into a Simple for the read named name.
//
// The tag position is 1-based; it is used as the 0-based start without
// adjustment.
func (e SAEntry) Simple(name string) Simple {
	return Simple{
		Name:    name,
		Chr:     e.Chr,
		Start:   e.Pos,
		End:     e.Pos + cigar.ReferenceSpan(e.Cigar),
		Forward: e.Forward,
	}
}

// DecomposeSA converts every record of an SA tag value into a Simple, in tag
// order. Malformed records are skipped; one error is returned for each of
// them.
func DecomposeSA(value, name string) ([]Simple, []error) {
	var (
		alns []Simple
		errs []error
	)
	for _, rec := range SplitSA(value) {
		e, err := ParseSAEntry(rec)
		if err != nil {
			errs = append(errs, errors.E(err, "read", name))
			continue
		}
		alns = append(alns, e.Simple(name))
	}
	return alns, errs
}
