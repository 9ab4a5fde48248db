// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package interval

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// NewSetFromBED reads the first three columns of a BED file. Header,
// "track" and "browser" lines are skipped. BED intervals are 0-based and
// half-open, like Entry.
func NewSetFromBED(in io.Reader) (*Set, error) {
	s := NewSet()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 3 {
			return nil, errors.E(errors.Invalid, "BED line", strconv.Itoa(lineNo), "has fewer than 3 columns")
		}
		start, err := strconv.Atoi(cols[1])
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "BED line", strconv.Itoa(lineNo))
		}
		end, err := strconv.Atoi(cols[2])
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "BED line", strconv.Itoa(lineNo))
		}
		if err := s.Add(Entry{cols[0], start, end}); err != nil {
			return nil, errors.E(errors.Invalid, err, "BED line", strconv.Itoa(lineNo))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSetFromBEDPath is a wrapper for NewSetFromBED that takes a path instead
// of an io.Reader. Paths ending in ".gz" are decompressed.
func NewSetFromBEDPath(ctx context.Context, path string) (s *Set, err error) {
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open BED", path)
	}
	defer file.CloseAndReport(ctx, infile, &err)
	var reader io.Reader = infile.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, errors.E(err, "open BED", path)
		}
		defer gz.Close()
		reader = gz
	}
	if s, err = NewSetFromBED(reader); err != nil {
		return nil, errors.E(err, path)
	}
	return s, nil
}
