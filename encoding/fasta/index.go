// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fasta reads and generates FASTA index (*.fai) files.  See
// http://www.htslib.org/doc/faidx.html.  The index is used to check that an
// alignment file was produced against a given reference, without reading the
// reference sequences themselves.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// IndexEntry is one line of a .fai file.
type IndexEntry struct {
	// Name is the sequence name, up to the first space of the '>' line.
	Name string
	// Length is the number of bases in the sequence.
	Length int64
	// Offset is the byte offset of the first base.
	Offset int64
	// LineBases is the number of bases per line.
	LineBases int64
	// LineWidth is the number of bytes per line, newline included.
	LineWidth int64
}

// GenerateIndex generates an index (*.fai) from FASTA.
//
// The index format is defined by "samtool faidx"
// (http://www.htslib.org/doc/faidx.html).
func GenerateIndex(out io.Writer, in io.Reader) error {
	entries, err := scanIndex(in)
	if err != nil {
		return err
	}
	w := tsv.NewWriter(out)
	for _, e := range entries {
		w.WriteString(e.Name)
		w.WriteInt64(e.Length)
		w.WriteInt64(e.Offset)
		w.WriteInt64(e.LineBases)
		w.WriteInt64(e.LineWidth)
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

// scanIndex computes index entries by reading the whole FASTA file.
func scanIndex(in io.Reader) ([]IndexEntry, error) {
	var (
		r       = bufio.NewReader(in)
		entries []IndexEntry
		cur     IndexEntry
		cumByte int64
		started bool
	)
	for {
		fullLine, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF
		cumByte += int64(len(fullLine))
		line := bytes.TrimRight(fullLine, "\r\n")
		switch {
		case len(line) == 0:
		case line[0] == '>': // Start a new sequence.
			if cur.LineWidth != 0 {
				if cur.Name == "" {
					return nil, errors.E(errors.Invalid, "malformed FASTA file")
				}
				entries = append(entries, cur)
			}
			cur = IndexEntry{Name: strings.Split(string(line[1:]), " ")[0], Offset: cumByte}
			started = true
		default:
			if !started {
				return nil, errors.E(errors.Invalid, "malformed FASTA file: sequence before the first '>' line")
			}
			if cur.LineWidth == 0 {
				cur.LineWidth = int64(len(fullLine))
				cur.LineBases = int64(len(line))
			}
			cur.Length += int64(len(line))
		}
		if eof {
			break
		}
	}
	if cumByte == 0 {
		return nil, errors.E(errors.Invalid, "empty FASTA file")
	}
	if started {
		entries = append(entries, cur)
	}
	return entries, nil
}

// ReadIndex parses a .fai file.
func ReadIndex(in io.Reader) ([]IndexEntry, error) {
	r := tsv.NewReader(in)
	var entries []IndexEntry
	for {
		var e IndexEntry
		if err := r.Read(&e); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err, "read FASTA index")
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReferenceLengths maps each sequence name in the index to its length.
func ReferenceLengths(entries []IndexEntry) map[string]int64 {
	m := make(map[string]int64, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Length
	}
	return m
}

// LoadIndex reads the index of the FASTA file at fastaPath. It reads
// fastaPath + ".fai" if it exists, and otherwise scans the FASTA file itself.
func LoadIndex(ctx context.Context, fastaPath string) (entries []IndexEntry, err error) {
	faiPath := fastaPath + ".fai"
	in, err := file.Open(ctx, faiPath)
	if err == nil {
		defer file.CloseAndReport(ctx, in, &err)
		return ReadIndex(in.Reader(ctx))
	}
	log.Debug.Printf("%s: %v; indexing %s", faiPath, err, fastaPath)
	if in, err = file.Open(ctx, fastaPath); err != nil {
		return nil, errors.E(err, "open reference", fastaPath)
	}
	defer file.CloseAndReport(ctx, in, &err)
	return scanIndex(in.Reader(ctx))
}
