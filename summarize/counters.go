// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package summarize

import "fmt"

// Counters reports how the records of a run were accounted for.
type Counters struct {
	// Total is the number of records that passed every exclusion, whether or
	// not they matched a category.
	Total int
	// QCFail, Unmapped, Duplicate and BadMapQ count the excluded records. A
	// record is counted by the first exclusion it hits.
	QCFail    int
	Unmapped  int
	Duplicate int
	BadMapQ   int
	// Paired and Split count the records that matched each category.
	Paired int
	Split  int
	// SplitSupplementary is the number of records in the SA tags of split
	// reads, including those that failed to parse.
	SplitSupplementary int
}

// String renders the counters on one line, e.g.
// "cnt: 10 qc: 0 unmap: 1 dup: 2 mapq: 0 paired: 7 split: 1 split_sa: 2".
func (c Counters) String() string {
	return fmt.Sprintf("cnt: %d qc: %d unmap: %d dup: %d mapq: %d paired: %d split: %d split_sa: %d",
		c.Total, c.QCFail, c.Unmapped, c.Duplicate, c.BadMapQ, c.Paired, c.Split, c.SplitSupplementary)
}

// Excluded returns the number of records dropped by an exclusion.
func (c Counters) Excluded() int {
	return c.QCFail + c.Unmapped + c.Duplicate + c.BadMapQ
}
