// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.macroscope.dev/repl"
)

func newREPLCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Expand items read from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, opts)
		},
	}
}

func runREPL(cmd *cobra.Command, opts *options) error {
	cfg, xopts, err := opts.load(cmd, "")
	if err != nil {
		return err
	}
	s, err := repl.NewSession(cfg.Crate, xopts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome to macroscope (crate %s)\n", cfg.Crate)
	return repl.REPL(s, opts.printer(cmd, cfg))
}
