// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The macroscope command expands the macros of a mac crate and
// reports the names it cannot resolve.
// With no subcommand and no arguments, it starts a read-expand-print
// loop (REPL).
package main // import "go.macroscope.dev/cmd/macroscope"

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// errDiagnostics is returned by a command that printed diagnostics.
var errDiagnostics = errors.New("diagnostics reported")

func main() {
	os.Exit(doMain(os.Args[1:]))
}

func doMain(args []string) int {
	log.SetPrefix("macroscope: ")
	log.SetFlags(0)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if err != errDiagnostics {
			log.Print(err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := new(options)
	root := &cobra.Command{
		Use:           "macroscope",
		Short:         "Expand mac macros and resolve their names",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, opts)
		},
	}
	opts.register(root)
	root.AddCommand(
		newCheckCmd(opts),
		newExpandCmd(opts),
		newREPLCmd(opts),
		newWatchCmd(opts),
	)
	return root
}
