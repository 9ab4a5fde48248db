// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package summarize

import (
	"bytes"
	"encoding/json"

	"github.com/grailbio/triage/alignment"
)

// group is one category of the tree.
type group struct {
	// names lists the query names in the order they were first added.
	names []string
	alns  map[string][]alignment.Simple
}

// Tree maps each category to query names, and each query name to the
// alignments added for it, in append order. The zero value is an empty tree.
type Tree struct {
	groups [NumCategories]group
}

// Add appends a to the list of a.Name in category c. Nothing is deduplicated.
func (t *Tree) Add(c Category, a alignment.Simple) {
	g := &t.groups[c]
	if g.alns == nil {
		g.alns = map[string][]alignment.Simple{}
	}
	list, ok := g.alns[a.Name]
	if !ok {
		g.names = append(g.names, a.Name)
	}
	g.alns[a.Name] = append(list, a)
}

// Get returns the alignments of the query name in category c.
func (t *Tree) Get(c Category, name string) []alignment.Simple {
	return t.groups[c].alns[name]
}

// Names returns the query names of category c in first-insertion order. The
// caller must not modify the result.
func (t *Tree) Names(c Category) []string {
	return t.groups[c].names
}

// Len returns the number of alignments in category c.
func (t *Tree) Len(c Category) int {
	n := 0
	for _, list := range t.groups[c].alns {
		n += len(list)
	}
	return n
}

// MarshalJSON renders the tree as
//
//   {"paired":{"name":[{"chr":..,"start":..,"end":..,"is_reverse":..},..],..},"split":{..}}
//
// Both categories are always present. Query names appear in first-insertion
// order, which encoding/json cannot produce from a map.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for c := Category(0); c < NumCategories; c++ {
		if c > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, c.String()); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		g := &t.groups[c]
		for i, name := range g.names {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, name); err != nil {
				return nil, err
			}
			data, err := json.Marshal(g.alns[name])
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte(':')
	return nil
}
