// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

import (
	"sort"
	"strconv"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// Builtins returns the extensions provided by the compiler.
//
// The formatting macros expand to nothing; line!() expands to the line
// number of its invocation. The #[test] attribute removes the item it
// annotates, and #[derive_marker] keeps it.
func Builtins() map[string]*ext.Extension {
	nothing := func(*syntax.MacroCall) ([]syntax.Item, error) { return nil, nil }
	builtins := make(map[string]*ext.Extension)
	for _, name := range []string{"concat", "format", "print", "println", "stringify"} {
		builtins[name] = &ext.Extension{Kind: ext.Bang, Name: name, Expand: nothing}
	}
	builtins["line"] = &ext.Extension{Kind: ext.Bang, Name: "line", Expand: line}
	builtins["test"] = &ext.Extension{Kind: ext.MultiModifier, Name: "test", Expand: nothing}
	builtins["derive_marker"] = &ext.Extension{
		Kind: ext.MultiDecorator,
		Name: "derive_marker",
		Expand: func(call *syntax.MacroCall) ([]syntax.Item, error) {
			return []syntax.Item{call.Target}, nil
		},
	}
	return builtins
}

// RegisterBuiltins registers the builtin extensions with r, in name
// order.
func RegisterBuiltins(r ext.Resolver) {
	builtins := Builtins()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.AddExt(name, builtins[name])
	}
}

func line(call *syntax.MacroCall) ([]syntax.Item, error) {
	pos := syntax.Start(call)
	n := int64(pos.Line)
	lit := &syntax.Literal{TokenPos: pos, Raw: strconv.FormatInt(n, 10), Value: n}
	return []syntax.Item{&syntax.ExprItem{X: lit, Semi: pos}}, nil
}
