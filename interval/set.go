// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package interval implements unions of genomic intervals, as read from BED
// files or region strings. Overlapping and adjacent intervals are merged.
package interval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/llrb"
)

// maxPos is the end of a region that names only a chromosome.
const maxPos = 1<<31 - 1

// Entry represents a single interval, with 0-based, half-open coordinates.
type Entry struct {
	ChrName string
	Start0  int
	End     int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s:%d-%d", e.ChrName, e.Start0+1, e.End)
}

// span is a disjoint interval of one chromosome, keyed by its start.
type span struct {
	start, end int
}

// Compare compares two span objects for use in llrb.
func (s span) Compare(c2 llrb.Comparable) int {
	return s.start - c2.(span).start
}

// Set is a union of intervals. The zero value is not usable; call NewSet.
type Set struct {
	byChr map[string]*llrb.Tree
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{byChr: map[string]*llrb.Tree{}}
}

// Add merges e into the set.
func (s *Set) Add(e Entry) error {
	if e.Start0 < 0 || e.End < e.Start0 {
		return fmt.Errorf("interval.Add: invalid coordinate pair [%d, %d) on %s", e.Start0, e.End, e.ChrName)
	}
	t := s.byChr[e.ChrName]
	if t == nil {
		t = &llrb.Tree{}
		s.byChr[e.ChrName] = t
	}
	if e.Start0 == e.End {
		// An empty interval only registers the chromosome.
		return nil
	}
	n := span{e.Start0, e.End}
	for {
		c := t.Floor(span{start: n.end})
		if c == nil {
			break
		}
		prev := c.(span)
		if prev.end < n.start {
			break
		}
		t.Delete(prev)
		if prev.start < n.start {
			n.start = prev.start
		}
		if prev.end > n.end {
			n.end = prev.end
		}
	}
	t.Insert(n)
	return nil
}

// Overlaps reports whether [start, end) on chr intersects the set. An empty
// query [pos, pos) is treated as the single position pos.
func (s *Set) Overlaps(chr string, start, end int) bool {
	t := s.byChr[chr]
	if t == nil {
		return false
	}
	if end <= start {
		end = start + 1
	}
	c := t.Floor(span{start: end - 1})
	return c != nil && c.(span).end > start
}

// Entries returns the merged intervals, sorted by position within each
// chromosome. Chromosomes are sorted by name.
func (s *Set) Entries() []Entry {
	chrs := make([]string, 0, len(s.byChr))
	for chr := range s.byChr {
		chrs = append(chrs, chr)
	}
	sort.Strings(chrs)
	var entries []Entry
	for _, chr := range chrs {
		s.byChr[chr].Do(func(c llrb.Comparable) bool {
			sp := c.(span)
			entries = append(entries, Entry{chr, sp.start, sp.end})
			return false
		})
	}
	return entries
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries. The whole contig is
// returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		return Entry{region, 0, maxPos}, nil
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID in %q", region)
		return
	}
	result.ChrName = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int
		if pos1, err = strconv.Atoi(rangeStr); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0, result.End = pos1-1, pos1
		return
	}
	var start1, end int
	if start1, err = strconv.Atoi(rangeStr[:dashPos]); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr[:dashPos])
		return
	}
	if end, err = strconv.Atoi(rangeStr[dashPos+1:]); err != nil {
		return
	}
	if end < start1 {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0, result.End = start1-1, end
	return
}

// NewSetFromRegions parses a list of region strings separated by spaces or
// semicolons, e.g. "chr1:1000-2000;chr2".
func NewSetFromRegions(regions string) (*Set, error) {
	s := NewSet()
	for _, region := range strings.FieldsFunc(regions, func(r rune) bool { return r == ';' || r == ' ' }) {
		e, err := ParseRegionString(region)
		if err != nil {
			return nil, err
		}
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}
