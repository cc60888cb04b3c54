// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/internal/config"
	"go.macroscope.dev/internal/report"
	"go.macroscope.dev/syntax"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check file",
		Short: "Expand a crate and report unresolved macro names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, xopts, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			p := opts.printer(cmd, cfg)
			res, err := check(cfg, xopts, args[0])
			if err != nil {
				return err
			}
			return printResult(p, opts, res, false)
		},
	}
}

func newExpandCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand file",
		Short: "Print a crate with every macro invocation expanded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, xopts, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			p := opts.printer(cmd, cfg)
			res, err := check(cfg, xopts, args[0])
			if err != nil {
				return err
			}
			return printResult(p, opts, res, true)
		},
	}
}

// A checked crate.
type checked struct {
	file *syntax.File
	*expand.Result
}

func check(cfg *config.Config, xopts *expand.Options, filename string) (*checked, error) {
	f, err := syntax.Parse(filename, nil)
	if err != nil {
		return nil, err
	}
	res, err := expand.Check(cfg.Crate, f, xopts)
	if err != nil {
		return nil, err
	}
	return &checked{f, res}, nil
}

func printResult(p *report.Printer, opts *options, res *checked, expanded bool) error {
	if expanded {
		if err := p.Expanded(res.file.Items); err != nil {
			return err
		}
	}
	if opts.verbose {
		if err := p.Resolutions(res.Expander.Resolutions()); err != nil {
			return err
		}
	}
	if len(res.Errors) == 0 {
		return nil
	}
	if err := p.Errors(res.Errors); err != nil {
		return err
	}
	return errDiagnostics
}
