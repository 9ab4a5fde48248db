// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cigar tokenizes CIGAR strings and computes the reference span of an
// alignment from its tokens.
//
// A CIGAR string is a sequence of <length><op> pairs, for example "10S141M".
// The tokenizer is a pure function; it keeps no state between calls.
package cigar

import (
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Op is a single CIGAR operation letter.
type Op byte

// CIGAR operations, as defined by the SAM spec.
const (
	Match     Op = 'M'
	Insertion Op = 'I'
	Deletion  Op = 'D'
	Skipped   Op = 'N'
	SoftClip  Op = 'S'
	HardClip  Op = 'H'
	Padding   Op = 'P'
	SeqMatch  Op = '='
	Mismatch  Op = 'X'
)

// maxLen is the largest op length representable in a BAM CIGAR op.
const maxLen = 1<<28 - 1

// Valid reports whether op is one of MIDNSHP=X.
func (op Op) Valid() bool {
	switch op {
	case Match, Insertion, Deletion, Skipped, SoftClip, HardClip, Padding, SeqMatch, Mismatch:
		return true
	}
	return false
}

// ConsumesReference reports whether op counts towards ReferenceSpan. Only
// M, D, N and X do; '=' is not counted.
func (op Op) ConsumesReference() bool {
	switch op {
	case Match, Deletion, Skipped, Mismatch:
		return true
	}
	return false
}

// String returns the op letter.
func (op Op) String() string { return string(op) }

// Token is one <length><op> pair.
type Token struct {
	Len int
	Op  Op
}

// String returns the token in CIGAR notation, e.g. "10M".
func (t Token) String() string { return strconv.Itoa(t.Len) + string(t.Op) }

// Tokens is an ordered sequence of CIGAR tokens.
type Tokens []Token

// String renders the tokens back into a CIGAR string. For any s accepted by
// Tokenize, Tokenize(s).String() == s, modulo leading zeros in lengths.
func (ts Tokens) String() string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(strconv.Itoa(t.Len))
		b.WriteByte(byte(t.Op))
	}
	return b.String()
}

// Tokenize parses a CIGAR string into tokens. It returns an error of kind
// errors.Invalid if s is empty, if an op letter appears where a length is
// expected, if a length is not followed by a recognized op letter, or if a
// length overflows.
func Tokenize(s string) (Tokens, error) {
	if len(s) == 0 {
		return nil, errors.E(errors.Invalid, "cigar: empty string")
	}
	// Every token takes at least two bytes.
	tokens := make(Tokens, 0, len(s)/2)
	n, digits := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			if n > maxLen {
				return nil, errors.E(errors.Invalid, "cigar: length overflow in", strconv.Quote(s))
			}
			digits++
			continue
		}
		if digits == 0 {
			return nil, errors.E(errors.Invalid, "cigar:", strconv.Quote(s),
				"expected a length at offset", strconv.Itoa(i))
		}
		op := Op(c)
		if !op.Valid() {
			return nil, errors.E(errors.Invalid, "cigar:", strconv.Quote(s),
				"unknown operation", strconv.Quote(string(c)), "at offset", strconv.Itoa(i))
		}
		tokens = append(tokens, Token{Len: n, Op: op})
		n, digits = 0, 0
	}
	if digits != 0 {
		return nil, errors.E(errors.Invalid, "cigar:", strconv.Quote(s), "ends with a dangling length")
	}
	return tokens, nil
}

// ReferenceSpan returns the sum of lengths of the reference-consuming tokens
// (M, D, N, X).
func ReferenceSpan(ts Tokens) int {
	span := 0
	for _, t := range ts {
		if t.Op.ConsumesReference() {
			span += t.Len
		}
	}
	return span
}

var samOps = [...]Op{
	sam.CigarMatch:       Match,
	sam.CigarInsertion:   Insertion,
	sam.CigarDeletion:    Deletion,
	sam.CigarSkipped:     Skipped,
	sam.CigarSoftClipped: SoftClip,
	sam.CigarHardClipped: HardClip,
	sam.CigarPadded:      Padding,
	sam.CigarEqual:       SeqMatch,
	sam.CigarMismatch:    Mismatch,
}

// FromSAM converts a decoded sam.Cigar into tokens. It fails on ops outside
// MIDNSHP=X, such as the 'B' (back) op.
func FromSAM(c sam.Cigar) (Tokens, error) {
	tokens := make(Tokens, len(c))
	for i, co := range c {
		t := co.Type()
		if int(t) >= len(samOps) {
			return nil, errors.E(errors.Invalid, "cigar: unsupported operation", t.String(), "in", c.String())
		}
		tokens[i] = Token{Len: co.Len(), Op: samOps[t]}
	}
	return tokens, nil
}
