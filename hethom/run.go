// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package hethom

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Stats summarizes a Run.
type Stats struct {
	Variants int
	// Hets and Homs count the het and hom calls seen, before sampling.
	Hets int
	Homs int
}

// Run reads the VCF from in and writes one TSV line per variant to out:
//
//   #CHROM POS [ID] REF ALT HETS HOMS
//
// HETS and HOMS are comma-separated sample IDs, or "." if there is none.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Opts) (Stats, error) {
	var stats Stats
	sampler, err := NewSampler(opts)
	if err != nil {
		return stats, err
	}
	r, err := NewReader(in)
	if err != nil {
		return stats, err
	}
	samples := r.Header().Samples
	log.Debug.Printf("hethom: %s input with %d samples", r.Header().Version, len(samples))

	w := tsv.NewWriter(out)
	cols := []string{"#CHROM", "POS", "ID", "REF", "ALT", "HETS", "HOMS"}
	if !opts.EmitID {
		cols = append(cols[:2], cols[3:]...)
	}
	for _, c := range cols {
		w.WriteString(c)
	}
	if err := w.EndLine(); err != nil {
		return stats, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		v, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Variants++
		hets, homs := Partition(v)
		stats.Hets += len(hets)
		stats.Homs += len(homs)
		hets, homs = sampler.Select(v)

		w.WriteString(v.Chrom)
		w.WriteString(strconv.Itoa(v.Pos))
		if opts.EmitID {
			w.WriteString(v.ID)
		}
		w.WriteString(v.Ref)
		w.WriteString(v.Alt())
		w.WriteString(joinSamples(samples, hets))
		w.WriteString(joinSamples(samples, homs))
		if err := w.EndLine(); err != nil {
			return stats, errors.Wrap(err, "hethom: write")
		}
	}
	if err := w.Flush(); err != nil {
		return stats, errors.Wrap(err, "hethom: write")
	}
	log.Printf("hethom: %d variants, %d het calls, %d hom calls", stats.Variants, stats.Hets, stats.Homs)
	return stats, nil
}

func joinSamples(samples []string, idxs []int) string {
	if len(idxs) == 0 {
		return "."
	}
	ids := make([]string, len(idxs))
	for i, idx := range idxs {
		ids[i] = samples[idx]
	}
	return strings.Join(ids, ",")
}
