// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/triage/encoding/alnreader"
	"github.com/grailbio/triage/interval"
	"github.com/grailbio/triage/summarize"
	"v.io/x/lib/cmdline"
)

type summarizeFlags struct {
	ref         *string
	bed         *string
	regions     *string
	out         *string
	format      *string
	parallelism *int
	minMapQ     *int
	maxMapQ     *int
}

func newCmdSummarize() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "summarize",
		Short: "Summarize the split and paired reads of a SAM or BAM file",
		Long: `
Summarize reads a SAM, gzipped SAM or BAM file, or stdin if path is "-" or
omitted, and writes a JSON document grouping the primary alignments of paired
reads, and of split reads together with the alignments listed in their SA tag,
by query name. Read counters are printed on stderr.`,
		ArgsName: "[path]",
	}
	flags := summarizeFlags{
		ref:         cmd.Flags.String("ref", "", "Reference FASTA. If set, the alignment header is checked against its index"),
		bed:         cmd.Flags.String("bed", "", "BED file. If set, only reads overlapping its intervals are summarized; this xor -regions"),
		regions:     cmd.Flags.String("regions", "", `Semicolon-separated regions, e.g. "chr1:1000-2000;chr2". If set, only reads overlapping them are summarized; this xor -bed`),
		out:         cmd.Flags.String("out", "-", `Output JSON path. "-" means stdout. A ".gz" suffix compresses the output`),
		format:      cmd.Flags.String("format", "", `Input format, "sam" or "bam". By default, guessed from the path suffix, then from the contents`),
		parallelism: cmd.Flags.Int("parallelism", 0, "Number of BAM decompression goroutines; 0 = runtime.NumCPU()"),
		minMapQ:     cmd.Flags.Int("min-mapq", summarize.DefaultOpts.MinMapQ, "Reads with MAPQ below this value are skipped"),
		maxMapQ:     cmd.Flags.Int("max-mapq", summarize.DefaultOpts.MaxMapQ, "Reads with MAPQ above this value are skipped"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		path, err := inputPath("summarize", argv)
		if err != nil {
			return err
		}
		return summarizeAlignments(vcontext.Background(), path, flags, env.Stderr)
	})
	return cmd
}

func summarizeAlignments(ctx context.Context, path string, flags summarizeFlags, stderr io.Writer) error {
	ropts := alnreader.Opts{Reference: *flags.ref, Parallelism: *flags.parallelism}
	if *flags.format != "" {
		if ropts.Format = alnreader.ParseFileType(*flags.format); ropts.Format == alnreader.Unknown {
			return fmt.Errorf("unknown input format \"%s\"", *flags.format)
		}
	}
	opts := summarize.Opts{MinMapQ: *flags.minMapQ, MaxMapQ: *flags.maxMapQ}
	if err := opts.Validate(); err != nil {
		return err
	}
	regions, err := loadRegions(ctx, *flags.bed, *flags.regions)
	if err != nil {
		return err
	}
	r, err := alnreader.Open(ctx, path, ropts)
	if err != nil {
		return err
	}
	if regions != nil {
		r = alnreader.NewFilterReader(r, func(rec *sam.Record) bool {
			return rec.Ref != nil && regions.Overlaps(rec.Ref.Name(), rec.Pos, rec.End())
		})
	}
	s, err := summarize.Run(ctx, r, opts)
	if e := r.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(stderr, "%v\n", s.Counters()); err != nil {
		return err
	}
	if err := summarize.WriteJSON(ctx, *flags.out, s.Tree()); err != nil {
		return err
	}
	log.Debug.Printf("%s: wrote %d paired and %d split alignments to %s",
		path, s.Tree().Len(summarize.Paired), s.Tree().Len(summarize.Split), *flags.out)
	return nil
}

// loadRegions returns nil if neither bedPath nor regions is set.
func loadRegions(ctx context.Context, bedPath, regions string) (*interval.Set, error) {
	switch {
	case bedPath != "" && regions != "":
		return nil, fmt.Errorf("-bed and -regions are mutually exclusive")
	case bedPath != "":
		return interval.NewSetFromBEDPath(ctx, bedPath)
	case regions != "":
		return interval.NewSetFromRegions(regions)
	}
	return nil, nil
}
