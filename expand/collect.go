// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

import (
	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// collectItems gives every invocation within items a fresh mark and
// queues it for expansion. An item annotated with an attribute macro
// is replaced in items by the invocation of that attribute.
// Macro templates are not searched.
func (x *Expander) collectItems(items []syntax.Item, depth int) {
	for i, item := range items {
		if attr := x.resolver.FindAttrInvoc(item.Attributes()); attr != nil {
			call := &syntax.MacroCall{
				Path:   &syntax.Path{Segments: []*syntax.PathSegment{{Name: attr.Name}}},
				Attr:   attr,
				Target: item,
			}
			items[i] = call
			x.queue(call, ext.Items, depth)
			continue
		}

		switch item := item.(type) {
		case *syntax.ModItem:
			x.collectItems(item.Items, depth)
		case *syntax.FnItem:
			x.collectItems(item.Body.Items, depth)
		case *syntax.Block:
			x.collectItems(item.Items, depth)
		case *syntax.ConstItem:
			x.collectExpr(item.Value, depth)
		case *syntax.ExprItem:
			x.errorf(syntax.Start(item), "expected item, found expression")
		case *syntax.MacroCall:
			x.queue(item, ext.Items, depth)
		}
	}
}

// collectExpr queues an invocation in expression position.
func (x *Expander) collectExpr(e syntax.Expr, depth int) {
	if call, ok := e.(*syntax.MacroCall); ok {
		x.queue(call, ext.Expr, depth)
	}
}

func (x *Expander) queue(call *syntax.MacroCall, kind ext.ExpansionKind, depth int) {
	call.Mark = syntax.FreshMark()
	x.pending = append(x.pending, &invocation{call: call, kind: kind, depth: depth})
}
