// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cigar_test

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/cigar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want cigar.Tokens
	}{
		{"151M", cigar.Tokens{{151, cigar.Match}}},
		{"10S141M", cigar.Tokens{{10, cigar.SoftClip}, {141, cigar.Match}}},
		{"5M1I5M", cigar.Tokens{{5, cigar.Match}, {1, cigar.Insertion}, {5, cigar.Match}}},
		{"3H2P4=1X0N2D", cigar.Tokens{
			{3, cigar.HardClip}, {2, cigar.Padding}, {4, cigar.SeqMatch},
			{1, cigar.Mismatch}, {0, cigar.Skipped}, {2, cigar.Deletion}}},
	}
	for _, test := range tests {
		got, err := cigar.Tokenize(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"151M", "10S141M", "5M1I5M", "10M2D10M", "1=1X1=", "20H30M1000N40M5S", "0M", "1P1M",
	} {
		tokens, err := cigar.Tokenize(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, tokens.String())
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, s := range []string{
		"",           // empty
		"10",         // dangling length
		"M10",        // op before length
		"10M5",       // trailing digits
		"10Q",        // unknown op
		"10MM",       // op with no length
		"5M 5M",      // stray space
		"999999999M", // overflow
	} {
		tokens, err := cigar.Tokenize(s)
		assert.Nil(t, tokens, s)
		assert.True(t, errors.Is(errors.Invalid, err), "%q: %v", s, err)
	}
}

func TestReferenceSpan(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"151M", 151},
		{"10S141M", 141},
		{"5M1I5M", 10},
		{"10M2D10M", 22},
		{"10M100N10M", 120},
		{"5M1X5M", 11},
		// '=' does not count towards the span.
		{"5=", 0},
		{"10H5P3S", 0},
	}
	for _, test := range tests {
		tokens, err := cigar.Tokenize(test.in)
		require.NoError(t, err)
		assert.Equal(t, test.want, cigar.ReferenceSpan(tokens), test.in)
	}
	assert.Equal(t, 0, cigar.ReferenceSpan(nil))
}

func TestFromSAM(t *testing.T) {
	c := sam.Cigar{
		sam.NewCigarOp(sam.CigarSoftClipped, 10),
		sam.NewCigarOp(sam.CigarMatch, 100),
		sam.NewCigarOp(sam.CigarDeletion, 3),
		sam.NewCigarOp(sam.CigarEqual, 7),
	}
	tokens, err := cigar.FromSAM(c)
	require.NoError(t, err)
	assert.Equal(t, "10S100M3D7=", tokens.String())
	assert.Equal(t, 103, cigar.ReferenceSpan(tokens))

	_, err = cigar.FromSAM(sam.Cigar{sam.NewCigarOp(sam.CigarBack, 2)})
	assert.True(t, errors.Is(errors.Invalid, err))

	tokens, err = cigar.FromSAM(nil)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
