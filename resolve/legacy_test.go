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

var testFile = "test.mac"

func pos(line int32) syntax.Position { return syntax.MakePosition(&testFile, line, 1) }

func rules(name string, line int32) *syntax.MacroRules {
	return &syntax.MacroRules{Pos: pos(line), Name: &syntax.Ident{NamePos: pos(line), Name: name}}
}

// invoke registers an invocation called from s and returns it with
// the scope that follows it.
func invoke(r *Resolver, s LegacyScope) (*Invocation, LegacyScope) {
	mark := syntax.FreshMark()
	inv := r.registerInvocation(mark, r.graphRoot, CrateDefIndex, false)
	r.cells[inv.legacyScope] = s
	return inv, LegacyScope{ExpansionScope, r.invocationIndex[mark]}
}

// callSite returns the scope at the start of inv's expansion.
func callSite(r *Resolver, inv *Invocation) LegacyScope {
	return LegacyScope{CallSiteScope, r.invocationIndex[inv.Mark]}
}

func rootScope(r *Resolver) LegacyScope { return LegacyScope{CallSiteScope, 0} }

func TestLegacyScopeDirect(t *testing.T) {
	r := New("test")
	s := r.AddMacro(rootScope(r), rules("m", 1), false)
	s = r.AddMacro(s, rules("n", 2), false)

	b, ok := r.resolveLegacyScope(r.newCell(s), "m", false).(*LegacyBinding)
	require.True(t, ok)
	assert.Equal(t, pos(1), b.Pos)
	assert.Empty(t, r.disallowedShadowing)
	assert.Empty(t, r.timeTravel)

	assert.Nil(t, r.resolveLegacyScope(r.newCell(s), "absent", false))
}

func TestLegacyScopeBuiltinFallback(t *testing.T) {
	r := New("test")
	r.AddExt("println", &ext.Extension{Kind: ext.Bang, Name: "println"})
	b, ok := r.resolveLegacyScope(r.newCell(rootScope(r)), "println", false).(*NameBinding)
	require.True(t, ok)
	assert.Equal(t, BuiltinMacrosCrate, b.Def().ID.Crate)
}

func TestLegacyScopeExpandedBinding(t *testing.T) {
	for _, test := range []struct {
		name            string
		outer           bool
		useExternMacros bool
		recordUsed      bool
		wantRecorded    bool
		wantErr         bool
	}{
		{"shadows outer", true, false, false, true, true},
		{"nothing to shadow", false, false, false, true, false},
		{"modern macros enabled", true, true, false, false, false},
		{"modern macros enabled, final", true, true, true, true, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := New("test")
			r.useExternMacros = test.useExternMacros
			s := rootScope(r)
			if test.outer {
				s = r.AddMacro(s, rules("m", 1), false)
			}
			inv, after := invoke(r, s)
			// The expansion of inv defines m.
			r.cells[inv.expansion] = r.AddMacro(callSite(r, inv), rules("m", 5), false)

			b, ok := r.resolveLegacyScope(r.newCell(after), "m", test.recordUsed).(*LegacyBinding)
			require.True(t, ok)
			assert.Equal(t, pos(5), b.Pos)
			assert.Equal(t, test.wantRecorded, len(r.disallowedShadowing) == 1)

			r.reportShadowingErrors()
			if test.wantErr {
				require.Len(t, r.errors, 1)
				assert.Equal(t, "`m` is already in scope", r.errors[0].Msg)
				assert.Equal(t, pos(5), r.errors[0].Pos)
				assert.Contains(t, r.errors[0].Notes[0].Msg, "may not shadow existing macros")
			} else {
				assert.Empty(t, r.errors)
			}
		})
	}
}

func TestLegacyScopeCallSiteSaturates(t *testing.T) {
	r := New("test")
	s := r.AddMacro(rootScope(r), rules("m", 1), false)
	inv, _ := invoke(r, s)

	// A lookup from inside inv's expansion leaves it through its call
	// site without having entered it; the binding is at depth zero.
	b := r.resolveLegacyScope(r.newCell(callSite(r, inv)), "m", false)
	require.NotNil(t, b)
	assert.Empty(t, r.disallowedShadowing)
}

func TestLegacyScopeNestedDepth(t *testing.T) {
	r := New("test")
	outer, after := invoke(r, rootScope(r))
	// outer's expansion contains an invocation whose expansion defines m,
	// followed by a lookup at the end of outer's expansion.
	inner, innerAfter := invoke(r, callSite(r, outer))
	r.cells[inner.expansion] = r.AddMacro(callSite(r, inner), rules("m", 3), false)
	r.cells[outer.expansion] = innerAfter

	r.resolveLegacyScope(r.newCell(innerAfter), "m", false)
	assert.Len(t, r.disallowedShadowing, 1, "depth 1 inside outer")

	r.disallowedShadowing = nil
	r.resolveLegacyScope(r.newCell(after), "m", false)
	assert.Len(t, r.disallowedShadowing, 1, "depth 2 after outer")
}

func TestLegacyScopePathCompression(t *testing.T) {
	r := New("test")
	s := r.AddMacro(rootScope(r), rules("m", 1), false)
	inv, after := invoke(r, s)
	// The expansion produced no bindings.
	r.cells[inv.expansion] = callSite(r, inv)

	c := r.newCell(after)
	b := r.resolveLegacyScope(c, "m", false)
	require.NotNil(t, b)
	assert.Equal(t, s, r.cells[c], "position should now skip the empty expansion")
	assert.Empty(t, r.disallowedShadowing)
	assert.Empty(t, r.timeTravel)
}

func TestLegacyScopeTimeTravel(t *testing.T) {
	r := New("test")
	s := r.AddMacro(rootScope(r), rules("m", 1), false)
	inv, after := invoke(r, s)

	// inv is not yet expanded: the lookup sees the outer m.
	c := r.newCell(after)
	b, ok := r.resolveLegacyScope(c, "m", false).(*LegacyBinding)
	require.True(t, ok)
	assert.Equal(t, pos(1), b.Pos)
	require.Len(t, r.timeTravel, 1)
	assert.Equal(t, c, r.timeTravel[0].scope)

	// Its expansion then defines m, so the earlier answer was wrong.
	r.cells[inv.expansion] = r.AddMacro(callSite(r, inv), rules("m", 7), false)
	r.reportShadowingErrors()
	require.Len(t, r.errors, 1)
	assert.Equal(t, "`m` is already in scope", r.errors[0].Msg)
	assert.Equal(t, pos(7), r.errors[0].Pos)
}

func TestLegacyScopeNoTimeTravelWhenUnbound(t *testing.T) {
	r := New("test")
	_, after := invoke(r, rootScope(r))
	assert.Nil(t, r.resolveLegacyScope(r.newCell(after), "m", false))
	assert.Empty(t, r.timeTravel)
}

func TestShadowingReportedOnce(t *testing.T) {
	r := New("test")
	s := r.AddMacro(rootScope(r), rules("m", 1), false)
	inv, after := invoke(r, s)
	r.cells[inv.expansion] = r.AddMacro(callSite(r, inv), rules("m", 5), false)
	for i := 0; i < 3; i++ {
		r.resolveLegacyScope(r.newCell(after), "m", false)
	}
	require.Len(t, r.disallowedShadowing, 3)
	r.reportShadowingErrors()
	assert.Len(t, r.errors, 1)
}

func TestAddMacroNamedMacroRules(t *testing.T) {
	r := New("test")
	r.AddMacro(rootScope(r), rules("macro_rules", 4), false)
	require.Len(t, r.errors, 1)
	assert.Equal(t, "user-defined macros may not be named `macro_rules`", r.errors[0].Msg)
}

func TestAddMacroExport(t *testing.T) {
	r := New("test")
	r.AddMacro(rootScope(r), rules("m", 1), true)
	r.AddMacro(rootScope(r), rules("n", 2), false)
	exports := r.MacroExports()
	require.Len(t, exports, 1)
	assert.Equal(t, "m", exports[0].Name)
	assert.Equal(t, DefMacro, exports[0].Def.Kind)
	assert.Equal(t, "m", r.definitions.Path(exports[0].Def.ID.Index))
}

func TestContinueScope(t *testing.T) {
	r := New("test")

	// The first input defines m.
	first := r.ContinueScope(syntax.RootMark)
	inv := r.Invocation(first)
	s := r.AddMacro(r.CallSiteScope(inv), rules("m", 1), false)
	r.cells[inv.expansion] = s
	assert.Equal(t, LegacyScope{BindingScope, 0}, r.ExpansionScope(inv))

	// A later input sees m as if written after it, not as expanded.
	second := r.ContinueScope(first)
	next := r.Invocation(second)
	assert.Equal(t, s, r.CallSiteScope(next))
	b, ok := r.resolveLegacyScope(next.legacyScope, "m", false).(*LegacyBinding)
	require.True(t, ok)
	assert.Equal(t, pos(1), b.Pos)
	assert.Empty(t, r.disallowedShadowing)

	// An input that follows one not yet expanded links to its expansion.
	third := r.ContinueScope(second)
	pending := r.ContinueScope(third)
	_, j := r.invocation(third)
	assert.Equal(t, LegacyScope{ExpansionScope, j}, r.CallSiteScope(r.Invocation(pending)))
}

func TestErrorsSince(t *testing.T) {
	r := New("test")
	r.errorf(pos(2), "second")
	r.errorf(pos(1), "first")
	assert.Equal(t, []string{"test.mac:1:1: first", "test.mac:2:1: second"}, errorStrings(r.Errors()))
	assert.Equal(t, []string{"test.mac:1:1: first"}, errorStrings(r.ErrorsSince(1)))
	assert.Nil(t, r.ErrorsSince(2))
}

func errorStrings(errs ErrorList) []string {
	var s []string
	for _, e := range errs {
		s = append(s, e.Error())
	}
	return s
}
