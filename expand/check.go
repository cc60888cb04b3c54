// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

import (
	"log/slog"
	"sort"

	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

// Options configures Check.
type Options struct {
	// Externs holds the crates that extern crate items may name.
	Externs map[string]*syntax.File

	// Features are enabled in addition to the crate's own.
	Features []string

	// Logger receives expansion traces; nil discards them.
	Logger *slog.Logger
}

// A Result holds the outcome of checking one crate.
type Result struct {
	Resolver *resolve.Resolver
	Expander *Expander
	Errors   resolve.ErrorList // sorted by position
}

// Setup returns a resolver for the named crate, with the given
// features and opts.Externs loaded and the builtin extensions
// registered, and an expander that uses it.
func Setup(crateName string, features []string, opts *Options) (*resolve.Resolver, *Expander, error) {
	if opts == nil {
		opts = new(Options)
	}
	r := resolve.New(crateName, append(append([]string(nil), features...), opts.Features...)...)

	names := make([]string, 0, len(opts.Externs))
	for name := range opts.Externs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.AddExternCrate(name, opts.Externs[name]); err != nil {
			return nil, nil, err
		}
	}

	RegisterBuiltins(r)
	return r, New(r, opts.Logger), nil
}

// Check expands and resolves the crate f with the builtin extensions
// registered, then finalizes resolution. The crate is modified in place.
func Check(crateName string, f *syntax.File, opts *Options) (*Result, error) {
	r, x, err := Setup(crateName, f.Features, opts)
	if err != nil {
		return nil, err
	}
	x.ExpandCrate(f)
	r.Finalize()

	errs := append(append(resolve.ErrorList(nil), x.Errors()...), r.Errors()...)
	errs.Sort()
	return &Result{Resolver: r, Expander: x, Errors: errs}, nil
}
