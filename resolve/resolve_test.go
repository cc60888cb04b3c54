// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/internal/chunkedfile"
	"go.macroscope.dev/macrotest"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

func TestResolve(t *testing.T) {
	lib, err := syntax.Parse(macrotest.DataFile("resolve", "testdata/util.mac"), nil)
	require.NoError(t, err)
	externs := map[string]*syntax.File{"util": lib}

	filename := macrotest.DataFile("resolve", "testdata/resolve.mac")
	for _, chunk := range chunkedfile.Read(filename, t) {
		f, err := syntax.Parse(filename, chunk.Source)
		if err != nil {
			t.Error(err)
			continue
		}
		res, err := expand.Check("test", f, &expand.Options{Externs: externs})
		require.NoError(t, err)
		for _, e := range res.Errors {
			chunk.GotError(int(e.Pos.Line), e.Msg)
		}
		chunk.Done()
	}
}

func TestLegacyLexicalAmbiguity(t *testing.T) {
	lib, err := syntax.Parse(macrotest.DataFile("resolve", "testdata/util.mac"), nil)
	require.NoError(t, err)
	opts := &expand.Options{Externs: map[string]*syntax.File{"util": lib}}

	check := func(src string) resolve.ErrorList {
		f, err := syntax.Parse("a.mac", src)
		require.NoError(t, err)
		res, err := expand.Check("test", f, opts)
		require.NoError(t, err)
		return res.Errors
	}
	notes := func(e resolve.Error) []string {
		var out []string
		for _, n := range e.Notes {
			out = append(out, n.Pos.String()+": "+n.Msg)
		}
		return out
	}

	// A macro_rules! in a block against a macro of the enclosing module.
	errs := check(`#![feature(use_extern_macros)]
macro m {}
fn f {
	macro_rules! m {}
	m!();
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, "a.mac:5:2: `m` is ambiguous", errs[0].Error())
	assert.Equal(t, []string{
		"a.mac:4:2: `m` could resolve to the macro defined here",
		"a.mac:2:7: `m` could also resolve to the macro imported here",
	}, notes(errs[0]))

	// A #[macro_use] import against a macro of the module.
	errs = check(`#![feature(use_extern_macros)]
#[macro_use] extern crate util;
macro helper {}
helper!();
`)
	require.Len(t, errs, 1)
	assert.Equal(t, "a.mac:4:1: `helper` is ambiguous", errs[0].Error())
	assert.Equal(t, []string{
		"a.mac:2:14: `helper` could resolve to the macro imported here",
		"a.mac:3:7: `helper` could also resolve to the macro imported here",
	}, notes(errs[0]))

	// Both name the same macro.
	errs = check(`#![feature(use_extern_macros)]
#[macro_use] extern crate util;
use util::helper;
helper!();
`)
	assert.Empty(t, errs)
}
