// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/triage/hethom"
	"v.io/x/lib/cmdline"
)

type hethomFlags struct {
	action *string
	n      *int
	seed   *int64
	emitID *bool
	out    *string
}

func newCmdHethom() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "hethom",
		Short: "Pick heterozygous and homozygous-alt samples of each variant of a VCF file",
		Long: `
Hethom reads a VCF file, plain or gzipped, or stdin if path is "-" or omitted.
For each variant, it writes the CHROM, POS, optionally ID, REF and first ALT
columns, followed by the comma-separated IDs of the selected het and hom
samples.`,
		ArgsName: "[path]",
	}
	flags := hethomFlags{
		action: cmd.Flags.String("action", string(hethom.DefaultOpts.Action), `"rnd" picks up to -n het and -n hom samples at random; "all" picks all of them`),
		n:      cmd.Flags.Int("n", hethom.DefaultOpts.N, "Number of het and of hom samples to pick per variant"),
		seed:   cmd.Flags.Int64("seed", 0, "Random seed. If 0, a seed is derived from the current time and logged"),
		emitID: cmd.Flags.Bool("id", false, "Emit the ID column"),
		out:    cmd.Flags.String("out", "-", `Output TSV path. "-" means stdout`),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		path, err := inputPath("hethom", argv)
		if err != nil {
			return err
		}
		return selectHetHom(vcontext.Background(), path, flags)
	})
	return cmd
}

func selectHetHom(ctx context.Context, path string, flags hethomFlags) (err error) {
	opts := hethom.Opts{
		Action: hethom.Action(*flags.action),
		N:      *flags.n,
		Seed:   *flags.seed,
		EmitID: *flags.emitID,
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
		log.Printf("hethom: using seed %d", opts.Seed)
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if path != "-" {
		var f file.File
		if f, err = file.Open(ctx, path); err != nil {
			return errors.E(err, "open", path)
		}
		defer file.CloseAndReport(ctx, f, &err)
		in = f.Reader(ctx)
	}
	var out io.Writer = os.Stdout
	if *flags.out != "-" {
		var f file.File
		if f, err = file.Create(ctx, *flags.out); err != nil {
			return errors.E(err, "create", *flags.out)
		}
		defer file.CloseAndReport(ctx, f, &err)
		out = f.Writer(ctx)
	}
	_, err = hethom.Run(ctx, in, out, opts)
	return err
}
