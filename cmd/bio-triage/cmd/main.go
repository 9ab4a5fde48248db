// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

// Version is reported by the version subcommand.
var Version = "0.3.0"

func newCmdVersion() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "version",
		Short: "Print the version of bio-triage",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("version takes no argument, but got %v", argv)
		}
		_, err := fmt.Fprintf(env.Stdout, "Version: %s\n", Version)
		return err
	})
	return cmd
}

func newRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-triage",
		Short:    "Lightweight triage of alignment and variant files",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdSummarize(),
			newCmdHethom(),
			newCmdVersion(),
		},
	}
}

// Run parses args, which exclude the program name, runs the selected
// subcommand and returns the process exit code.
func Run(args []string) int {
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	return cmdline.ExitCode(cmdline.ParseAndRun(newRoot(), env, args), env.Stderr)
}

// inputPath returns the only positional argument, or "-" if there is none.
func inputPath(name string, argv []string) (string, error) {
	switch len(argv) {
	case 0:
		return "-", nil
	case 1:
		return argv[0], nil
	}
	return "", fmt.Errorf("%s takes at most one pathname argument, but got %v", name, argv)
}
