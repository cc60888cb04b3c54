// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// parseCall parses a single macro invocation item.
func parseCall(t *testing.T, src string) *syntax.MacroCall {
	t.Helper()
	f, err := syntax.Parse("test.mac", src)
	require.NoError(t, err)
	require.Len(t, f.Items, 1)
	call, ok := f.Items[0].(*syntax.MacroCall)
	require.True(t, ok, "not a macro call: %s", src)
	return call
}

func bang(name string) *ext.Extension { return &ext.Extension{Kind: ext.Bang, Name: name} }

func TestResolveMacroRejectsPaths(t *testing.T) {
	for _, test := range []struct {
		src, wantMsg, wantHelp string
	}{
		{`m<T>!()`, "type parameters are not allowed on macros", ""},
		{`a<T>::m!()`, "type parameters are not allowed on modules", ""},
		{`a::m!()`, "non-ident macro paths are experimental", "add #![feature(use_extern_macros)] to the crate attributes to enable"},
		{`::m!()`, "non-ident macro paths are experimental", "add #![feature(use_extern_macros)] to the crate attributes to enable"},
	} {
		r := New("test")
		call := parseCall(t, test.src)
		x, err := r.ResolveMacro(syntax.RootMark, call.Path, false)
		assert.Nil(t, x, test.src)
		assert.Equal(t, ext.Determined, err, test.src)
		if assert.Len(t, r.errors, 1, test.src) {
			assert.Equal(t, test.wantMsg, r.errors[0].Msg)
			assert.Equal(t, test.wantHelp, r.errors[0].Help)
			assert.Equal(t, syntax.Start(call.Path), r.errors[0].Pos)
		}
	}
}

func TestResolveMacroFeatureEnablesPaths(t *testing.T) {
	r := New("test", FeatureExternMacros)
	require.True(t, r.UseExternMacros())
	call := parseCall(t, `a::m!()`)

	_, err := r.ResolveMacro(syntax.RootMark, call.Path, false)
	assert.Equal(t, ext.Determined, err, "no module a")
	assert.Empty(t, r.errors, "path failures are reported by Finalize")
	require.Len(t, r.graphRoot.macroResolutions, 1)

	r.Finalize()
	require.Len(t, r.errors, 1)
	assert.Equal(t, "failed to resolve. Use of undeclared type or module `a`", r.errors[0].Msg)
}

func TestAllowExternMacros(t *testing.T) {
	defer func(saved bool) { AllowExternMacros = saved }(AllowExternMacros)
	AllowExternMacros = true
	assert.True(t, New("test").UseExternMacros())
}

func TestResolveMacroUndefined(t *testing.T) {
	for _, test := range []struct {
		name, wantHelp string
	}{
		{"prinlt", "did you mean `print!`?"},
		{"xyz", "have you added the macro-visibility annotation on the module/import?"},
	} {
		r := New("test")
		r.AddExt("println", bang("println"))
		r.AddExt("print", bang("print"))
		call := parseCall(t, test.name+"!()")

		_, err := r.ResolveMacro(syntax.RootMark, call.Path, false)
		assert.Equal(t, ext.Undetermined, err)
		assert.Empty(t, r.errors)

		_, err = r.ResolveMacro(syntax.RootMark, call.Path, true)
		assert.Equal(t, ext.Determined, err)
		if assert.Len(t, r.errors, 1) {
			assert.Equal(t, "macro undefined: '"+test.name+"!'", r.errors[0].Msg)
			assert.Equal(t, test.wantHelp, r.errors[0].Help)
		}
	}
}

func TestResolveMacroBuiltin(t *testing.T) {
	r := New("test")
	want := bang("println")
	r.AddExt("println", want)
	x, err := r.ResolveMacro(syntax.RootMark, parseCall(t, `println!("hi")`).Path, false)
	require.NoError(t, err)
	assert.Same(t, want, x)
	assert.Empty(t, r.graphRoot.legacyMacroResolutions)
}

func TestNearest(t *testing.T) {
	candidates := []string{"concat", "line", "print", "println", "stringify"}
	for _, test := range []struct{ x, want string }{
		{"prinlt", "print"},
		{"printn", "print"},
		{"PRINT_LN", "println"},
		{"strngify", "stringify"},
		{"xyz", ""},
		{"", ""},
	} {
		assert.Equal(t, test.want, nearest(test.x, candidates), "nearest(%q)", test.x)
	}
}

func TestLevenshtein(t *testing.T) {
	for _, test := range []struct {
		x, y string
		want int
	}{
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"", "abc", 3},
		{"println", "println", 0},
		{"prinln", "println", 1},
	} {
		assert.Equal(t, test.want, levenshtein(test.x, test.y, 10), "levenshtein(%q, %q)", test.x, test.y)
	}

	// Past max the result is only a bound.
	assert.Greater(t, levenshtein("abc", "xyz", 0), 0)
}

func TestFindAttrInvoc(t *testing.T) {
	r := New("test")
	r.AddExt("test", &ext.Extension{Kind: ext.MultiModifier, Name: "test"})
	r.AddExt("println", bang("println"))

	f, err := syntax.Parse("test.mac", "#[inline] #[println] #[test] #[cold] fn f {}")
	require.NoError(t, err)
	attrs := f.Items[0].Attributes()

	attr := r.FindAttrInvoc(attrs)
	require.NotNil(t, attr)
	assert.Equal(t, "test", attr.Name.Name)
	var names []string
	for _, a := range *attrs {
		names = append(names, a.Name.Name)
	}
	assert.Equal(t, []string{"inline", "println", "cold"}, names)
	assert.Nil(t, r.FindAttrInvoc(attrs))
	assert.NotContains(t, r.MacroNames(), "test", "attribute macros are not suggested")
}

func TestEliminateCrateVar(t *testing.T) {
	lib, err := syntax.Parse("lib.mac", "mod inner { macro m {} }")
	require.NoError(t, err)

	r := New("test")
	require.NoError(t, r.AddExternCrate("util", lib))
	assert.Error(t, r.AddExternCrate("util", lib))

	external, local := syntax.FreshMark(), syntax.FreshMark()
	r.expansionCrates[external] = 1
	r.expansionCrates[local] = LocalCrate

	for _, test := range []struct {
		src  string
		ctxt syntax.Mark
		want string
	}{
		{`$crate::inner::m!()`, external, "::util::inner::m"},
		{`$crate::inner::m!()`, local, "::inner::m"},
		{`$crate::inner::m!()`, syntax.RootMark, "::inner::m"},
		{`$crate!()`, external, "$crate"},
		{`inner::m!()`, external, "inner::m"},
	} {
		call := parseCall(t, test.src)
		for _, seg := range call.Path.Segments {
			seg.Name.Ctxt = test.ctxt
		}
		r.EliminateCrateVar(call)
		assert.Equal(t, test.want, call.Path.String(), "%s with context %s", test.src, test.ctxt)
	}
}

func TestEliminateCrateVarSkipsTemplates(t *testing.T) {
	f, err := syntax.Parse("test.mac", "mod a { use $crate::x; macro_rules! m { $crate::n!(); } }")
	require.NoError(t, err)
	r := New("test")
	r.EliminateCrateVar(f.Items[0])

	mod := f.Items[0].(*syntax.ModItem)
	assert.Equal(t, "::x", mod.Items[0].(*syntax.UseItem).Path.String())
	body := mod.Items[1].(*syntax.MacroRules).Body
	assert.Equal(t, "$crate::n", body[0].(*syntax.MacroCall).Path.String())
}

func TestExternCrateExports(t *testing.T) {
	lib, err := syntax.Parse("lib.mac", `
#[macro_export] macro_rules! helper {}
macro_rules! hidden {}
mod inner { macro deep {} }
`)
	require.NoError(t, err)

	r := New("test")
	require.NoError(t, r.AddExternCrate("util", lib))
	util := r.externs["util"]
	assert.NotNil(t, util.Lookup("helper", MacroNS))
	assert.Nil(t, util.Lookup("hidden", MacroNS))
	inner := util.Lookup("inner", TypeNS).Module()
	require.NotNil(t, inner)
	deep := inner.Lookup("deep", MacroNS)
	require.NotNil(t, deep)
	assert.Equal(t, DefID{1, 3}, deep.Def().ID)
	assert.False(t, inner.IsLocal())
	assert.NotContains(t, r.Modules(), inner)
}
