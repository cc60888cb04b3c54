// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.macroscope.dev/expand"
	"go.macroscope.dev/internal/logging"
	"go.macroscope.dev/macrotest"
	"go.macroscope.dev/resolve"
	"go.macroscope.dev/syntax"
)

func check(t *testing.T, src string) (*syntax.File, *expand.Result) {
	t.Helper()
	f, err := syntax.Parse("test.mac", src)
	require.NoError(t, err)
	res, err := expand.Check("test", f, nil)
	require.NoError(t, err)
	return f, res
}

func TestExpandGolden(t *testing.T) {
	for _, test := range []struct {
		name, src, want string
	}{
		{
			name: "items",
			src: `
macro_rules! pair { fn first {} fn second {} }
mod a { pair!(); }
`,
			want: `
macro_rules! pair {
	fn first {}
	fn second {}
}
mod a {
	fn first {}
	fn second {}
}
`,
		},
		{
			name: "nested",
			src: `
macro_rules! inner { const I = 1; }
macro_rules! outer { inner!(); fn o {} }
outer!();
`,
			want: `
macro_rules! inner {
	const I = 1;
}
macro_rules! outer {
	inner!();
	fn o {}
}
const I = 1;
fn o {}
`,
		},
		{
			name: "expression",
			src: `
macro_rules! three { 3; }
macro_rules! indirect { three!(); }
const A = three!();
const B = indirect!();
const C = line!();
`,
			want: `
macro_rules! three {
	3;
}
macro_rules! indirect {
	three!();
}
const A = 3;
const B = 3;
const C = 6;
`,
		},
		{
			name: "builtins",
			src: `
println!("hello, {}", world);
#[test] fn t {}
#[derive_marker] #[inline] fn d {}
`,
			want: `
#[inline]
fn d {}
`,
		},
		{
			name: "unresolved expands to nothing",
			src:  "fn f { missing!(); }",
			want: "fn f {}",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			f, res := check(t, test.src)
			if test.name == "unresolved expands to nothing" {
				require.Len(t, res.Errors, 1)
			} else {
				require.Empty(t, res.Errors)
			}
			macrotest.CheckGolden(t, test.name, test.want, syntax.Format(f.Items, true))
		})
	}
}

func TestHygieneMarks(t *testing.T) {
	f, res := check(t, `
macro_rules! gen { mod m {} }
mod a { gen!(); }
mod b { gen!(); }
`)
	require.Empty(t, res.Errors)

	var marks []syntax.Mark
	for _, name := range []string{"a", "b"} {
		mod := f.Items[1+len(marks)].(*syntax.ModItem)
		require.Equal(t, name, mod.Name.Name)
		call := mod.Items[0].(*syntax.MacroCall)
		require.Len(t, call.Expansion, 1)
		inner := call.Expansion[0].(*syntax.ModItem)
		assert.Equal(t, call.Mark, inner.Name.Ctxt, "expanded names carry the invocation's mark")
		assert.False(t, call.Mark.IsRoot())
		marks = append(marks, call.Mark)
	}
	assert.NotEqual(t, marks[0], marks[1])

	// The template itself is untouched.
	tmpl := f.Items[0].(*syntax.MacroRules).Body[0].(*syntax.ModItem)
	assert.True(t, tmpl.Name.Ctxt.IsRoot())
}

func TestResolutions(t *testing.T) {
	_, res := check(t, `
macro_rules! m {}
m!();
println!();
nope!();
`)
	require.Len(t, res.Errors, 1)
	var got []string
	for _, r := range res.Expander.Resolutions() {
		name := "<unresolved>"
		if r.Macro != nil {
			name = r.Macro.Name
			if r.Macro.IsBuiltin() {
				name += " (builtin)"
			}
		}
		got = append(got, r.Path+" => "+name)
	}
	assert.Equal(t, []string{"m => m", "println => println (builtin)", "nope => <unresolved>"}, got)
}

func TestRecursionLimit(t *testing.T) {
	defer func(saved int) { expand.RecursionLimit = saved }(expand.RecursionLimit)
	expand.RecursionLimit = 3

	_, res := check(t, "macro_rules! r { r!(); }\nr!();")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "recursion limit reached while expanding the macro `r`", res.Errors[0].Msg)
	assert.Len(t, res.Expander.Resolutions(), 4, "depths 0 through 3")
}

func TestImportsUnblockExpansion(t *testing.T) {
	_, res := check(t, `
mod a { macro m { fn from_m {} } }
use a::m;
m!();
`)
	require.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Expander.Rounds(), "one undetermined round, then one after imports")
	assert.NotNil(t, res.Resolver.GraphRoot().Lookup("from_m", resolve.ValueNS))
}

func TestForcedRound(t *testing.T) {
	_, res := check(t, "a!();\nb!();")
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "macro undefined: 'a!'", res.Errors[0].Msg)
	assert.Equal(t, "macro undefined: 'b!'", res.Errors[1].Msg)
	assert.Equal(t, 2, res.Expander.Rounds())
}

func TestExternCrate(t *testing.T) {
	lib, err := syntax.Parse("lib.mac", "#[macro_export] macro_rules! shout { fn loud {} }")
	require.NoError(t, err)
	f, err := syntax.Parse("test.mac", "#[macro_use] extern crate lib;\nshout!();")
	require.NoError(t, err)

	res, err := expand.Check("test", f, &expand.Options{Externs: map[string]*syntax.File{"lib": lib}})
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	assert.Equal(t, "extern crate lib;\nfn loud {}\n", syntax.Format(f.Items, true)[len("#[macro_use]\n"):])

	_, err = expand.Check("lib", f, &expand.Options{Externs: map[string]*syntax.File{"lib": lib}})
	assert.Error(t, err, "crate cannot link itself")
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	f, err := syntax.Parse("test.mac", "macro_rules! m {}\nm!();")
	require.NoError(t, err)
	_, err = expand.Check("test", f, &expand.Options{Logger: logging.New("debug", false, &buf)})
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=round"), out)
	assert.True(t, strings.Contains(out, "macro=m"), out)
}
