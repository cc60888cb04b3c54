// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/internal/config"
	"go.macroscope.dev/internal/logging"
	"go.macroscope.dev/internal/report"
	"go.macroscope.dev/resolve"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	crate      string
	externs    []string
	features   []string
	json       bool
	verbose    bool
	logLevel   string
	logJSON    bool

	// dialect flags
	allowExternMacros bool
	recursionLimit    int
}

func (o *options) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "read options from the YAML file `path`")
	flags.StringVar(&o.crate, "crate", "", "name of the local crate (default: the file name)")
	flags.StringArrayVar(&o.externs, "extern", nil, "make the crate in `file` available as `name` (name=file)")
	flags.StringSliceVar(&o.features, "feature", nil, "enable a crate feature")
	flags.BoolVar(&o.json, "json", false, "print diagnostics as JSON")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "print what each invocation resolved to")
	flags.StringVar(&o.logLevel, "log-level", logging.WARN, "expansion trace level (DEBUG, INFO, WARN, ERROR)")
	flags.BoolVar(&o.logJSON, "log-json", false, "write the expansion trace as JSON")

	// non-standard dialect flags
	flags.BoolVar(&o.allowExternMacros, "extern-macros", resolve.AllowExternMacros, "resolve macros by path in every crate")
	flags.IntVar(&o.recursionLimit, "recursion-limit", expand.RecursionLimit, "maximum nesting depth of expansions")
}

// load builds the configuration of a run on filename, which may be
// empty, from the config file and the flags, which take precedence.
func (o *options) load(cmd *cobra.Command, filename string) (*config.Config, *expand.Options, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, nil, err
		}
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("crate"):
		cfg.Crate = o.crate
	case o.configPath == "" && filename != "":
		cfg.Crate = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	for _, extern := range o.externs {
		name, path, ok := strings.Cut(extern, "=")
		if !ok || name == "" || path == "" {
			return nil, nil, fmt.Errorf("invalid --extern %q, want name=file", extern)
		}
		cfg.AddExtern(name, path)
	}
	cfg.Features = append(cfg.Features, o.features...)
	if flags.Changed("json") {
		cfg.Output = config.Text
		if o.json {
			cfg.Output = config.JSON
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = o.logJSON
	}
	if flags.Changed("extern-macros") {
		cfg.AllowExternMacros = o.allowExternMacros
	}
	if flags.Changed("recursion-limit") {
		cfg.RecursionLimit = o.recursionLimit
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg.Apply()

	externs, err := cfg.LoadExterns()
	if err != nil {
		return nil, nil, err
	}
	xopts := cfg.Options(externs)
	xopts.Logger = logging.New(cfg.Log.Level, cfg.Log.JSON, cmd.ErrOrStderr())
	return cfg, xopts, nil
}

func (o *options) printer(cmd *cobra.Command, cfg *config.Config) *report.Printer {
	return report.New(cmd.OutOrStdout(), cfg.Output == config.JSON)
}
