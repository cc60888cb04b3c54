// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
//
// Macro template bodies are walked, as are the expansions recorded on
// invocations by the expander.
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkItems(n.Items, f)

	case *ModItem:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)
		walkItems(n.Items, f)

	case *FnItem:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)
		Walk(n.Body, f)

	case *Block:
		walkAttrs(n.Attrs, f)
		walkItems(n.Items, f)

	case *MacroRules:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)
		walkItems(n.Body, f)

	case *MacroDef:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)
		walkItems(n.Body, f)

	case *UseItem:
		walkAttrs(n.Attrs, f)
		Walk(n.Path, f)
		if n.Rename != nil {
			Walk(n.Rename, f)
		}

	case *ExternCrate:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)

	case *ConstItem:
		walkAttrs(n.Attrs, f)
		Walk(n.Name, f)
		Walk(n.Value, f)

	case *ExprItem:
		walkAttrs(n.Attrs, f)
		Walk(n.X, f)

	case *MacroCall:
		walkAttrs(n.Attrs, f)
		if n.Attr != nil {
			Walk(n.Attr, f)
			Walk(n.Target, f)
		} else {
			Walk(n.Path, f)
		}
		walkItems(n.Expansion, f)

	case *Attr:
		Walk(n.Name, f)

	case *Path:
		for _, seg := range n.Segments {
			Walk(seg, f)
		}

	case *PathSegment:
		Walk(n.Name, f)
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *Ident, *Literal:
		// no-op
	}

	f(nil)
}

func walkItems(items []Item, f func(Node) bool) {
	for _, item := range items {
		Walk(item, f)
	}
}

func walkAttrs(attrs []*Attr, f func(Node) bool) {
	for _, attr := range attrs {
		Walk(attr, f)
	}
}
