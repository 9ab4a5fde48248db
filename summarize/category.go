// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package summarize

// Category is a group of the summary tree. A record may belong to several
// categories.
type Category int

const (
	// Paired holds primary alignments of paired reads.
	Paired Category = iota
	// Split holds primary alignments carrying an SA tag, followed by the
	// alignments decomposed from the tag.
	Split
	// NumCategories is the number of categories.
	NumCategories
)

// String returns the JSON key of the category.
func (c Category) String() string {
	switch c {
	case Paired:
		return "paired"
	case Split:
		return "split"
	}
	return "unknown"
}
