// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

func TestDefCollector(t *testing.T) {
	f, err := syntax.Parse("test.mac", `
mod a {
	fn f { { g!(); } }
	const N = 1;
	const M = m!();
	macro_rules! ignored { fn hidden {} }
	macro d {}
	n!();
}
`)
	require.NoError(t, err)

	marks := make(map[string]syntax.Mark)
	for _, item := range f.Items {
		syntax.Walk(item, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.MacroRules:
				return false
			case *syntax.MacroCall:
				n.Mark = syntax.FreshMark()
				marks[n.Path.String()] = n.Mark
			}
			return true
		})
	}

	defs := newDefinitions()
	var invocations []MacroInvocationData
	c := &DefCollector{
		definitions: defs,
		parent:      CrateDefIndex,
		visitMacroInvoc: func(data MacroInvocationData) {
			invocations = append(invocations, data)
		},
	}
	c.visitExpansion(&ext.Expansion{Kind: ext.Items, Items: f.Items}, false)

	var paths []string
	for i := 1; i < defs.Len(); i++ {
		paths = append(paths, defs.Path(DefIndex(i)))
	}
	want := []string{"a", "a::f", "a::N", "a::N::{{initializer}}", "a::M", "a::d"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("definitions mismatch (-want +got):\n%s", diff)
	}

	wantInvocations := []MacroInvocationData{
		{Mark: marks["g"], DefIndex: 2},
		{Mark: marks["m"], DefIndex: 5, ConstInteger: true},
		{Mark: marks["n"], DefIndex: 1},
	}
	if diff := cmp.Diff(wantInvocations, invocations); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}

	mod := f.Items[0].(*syntax.ModItem)
	if index, ok := defs.Lookup(mod.Items[0]); !ok || defs.Path(index) != "a::f" {
		t.Errorf("Lookup(fn f) = %d, %t", index, ok)
	}
	if _, ok := defs.Lookup(mod.Items[3]); ok {
		t.Errorf("macro_rules! has a definition")
	}
}

func TestDefCollectorExpression(t *testing.T) {
	lit := &syntax.Literal{Raw: "7", Value: 7}
	call := &syntax.MacroCall{Path: &syntax.Path{}, Mark: syntax.FreshMark()}

	for _, test := range []struct {
		x            syntax.Expr
		constInteger bool
		wantDefs     int
		wantInvoc    bool
	}{
		{lit, true, 1, false},
		{lit, false, 0, false},
		{call, true, 0, true},
		{call, false, 0, true},
	} {
		defs := newDefinitions()
		var got []MacroInvocationData
		c := &DefCollector{definitions: defs, visitMacroInvoc: func(d MacroInvocationData) { got = append(got, d) }}
		c.visitExpansion(&ext.Expansion{Kind: ext.Expr, Expr: test.x}, test.constInteger)
		if defs.Len()-1 != test.wantDefs {
			t.Errorf("%T const=%t: got %d definitions, want %d", test.x, test.constInteger, defs.Len()-1, test.wantDefs)
		}
		if (len(got) == 1) != test.wantInvoc {
			t.Errorf("%T const=%t: got invocations %v", test.x, test.constInteger, got)
		} else if test.wantInvoc && got[0].ConstInteger != test.constInteger {
			t.Errorf("%T const=%t: ConstInteger = %t", test.x, test.constInteger, got[0].ConstInteger)
		}
	}
}
