// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expand

// This file instantiates macro templates. Each instantiation is a deep
// copy of the template whose identifiers carry the invocation's mark.

import "go.macroscope.dev/syntax"

func cloneItems(items []syntax.Item, mark syntax.Mark) []syntax.Item {
	if items == nil {
		return nil
	}
	out := make([]syntax.Item, len(items))
	for i, item := range items {
		out[i] = cloneItem(item, mark)
	}
	return out
}

func cloneAttrs(attrs []*syntax.Attr, mark syntax.Mark) syntax.ItemAttrs {
	var out syntax.ItemAttrs
	for _, attr := range attrs {
		out.Attrs = append(out.Attrs, &syntax.Attr{Hash: attr.Hash, Name: cloneIdent(attr.Name, mark), Rbrack: attr.Rbrack})
	}
	return out
}

func cloneItem(item syntax.Item, mark syntax.Mark) syntax.Item {
	switch item := item.(type) {
	case *syntax.ModItem:
		return &syntax.ModItem{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Mod:       item.Mod,
			Name:      cloneIdent(item.Name, mark),
			Items:     cloneItems(item.Items, mark),
			Rbrace:    item.Rbrace,
		}
	case *syntax.FnItem:
		return &syntax.FnItem{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Fn:        item.Fn,
			Name:      cloneIdent(item.Name, mark),
			Body:      cloneItem(item.Body, mark).(*syntax.Block),
		}
	case *syntax.Block:
		return &syntax.Block{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Lbrace:    item.Lbrace,
			Items:     cloneItems(item.Items, mark),
			Rbrace:    item.Rbrace,
		}
	case *syntax.MacroRules:
		return &syntax.MacroRules{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Pos:       item.Pos,
			Name:      cloneIdent(item.Name, mark),
			Body:      cloneItems(item.Body, mark),
			Rbrace:    item.Rbrace,
		}
	case *syntax.MacroDef:
		return &syntax.MacroDef{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Macro:     item.Macro,
			Name:      cloneIdent(item.Name, mark),
			Body:      cloneItems(item.Body, mark),
			Rbrace:    item.Rbrace,
		}
	case *syntax.UseItem:
		x := &syntax.UseItem{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Use:       item.Use,
			Path:      clonePath(item.Path, mark),
			Semi:      item.Semi,
		}
		if item.Rename != nil {
			x.Rename = cloneIdent(item.Rename, mark)
		}
		return x
	case *syntax.ExternCrate:
		return &syntax.ExternCrate{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Extern:    item.Extern,
			Name:      cloneIdent(item.Name, mark),
			Semi:      item.Semi,
		}
	case *syntax.ConstItem:
		return &syntax.ConstItem{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			Const:     item.Const,
			Name:      cloneIdent(item.Name, mark),
			Value:     cloneExpr(item.Value, mark),
			Semi:      item.Semi,
		}
	case *syntax.ExprItem:
		return &syntax.ExprItem{
			ItemAttrs: cloneAttrs(item.Attrs, mark),
			X:         cloneExpr(item.X, mark),
			Semi:      item.Semi,
		}
	case *syntax.MacroCall:
		return cloneCall(item, mark)
	}
	panic("unexpected item")
}

func cloneExpr(x syntax.Expr, mark syntax.Mark) syntax.Expr {
	switch x := x.(type) {
	case *syntax.Literal:
		lit := *x
		return &lit
	case *syntax.MacroCall:
		return cloneCall(x, mark)
	}
	panic("unexpected expression")
}

// cloneCall copies an unexpanded invocation. Templates never contain
// attribute invocations, which the expander creates.
func cloneCall(call *syntax.MacroCall, mark syntax.Mark) *syntax.MacroCall {
	return &syntax.MacroCall{
		ItemAttrs: cloneAttrs(call.Attrs, mark),
		Path:      clonePath(call.Path, mark),
		Bang:      call.Bang,
		Lparen:    call.Lparen,
		Args:      call.Args,
		Rparen:    call.Rparen,
	}
}

func clonePath(path *syntax.Path, mark syntax.Mark) *syntax.Path {
	x := &syntax.Path{Global: path.Global, Lead: path.Lead}
	for _, seg := range path.Segments {
		s := &syntax.PathSegment{Name: cloneIdent(seg.Name, mark), Lt: seg.Lt, Gt: seg.Gt}
		for _, arg := range seg.Args {
			s.Args = append(s.Args, cloneIdent(arg, mark))
		}
		x.Segments = append(x.Segments, s)
	}
	return x
}

func cloneIdent(id *syntax.Ident, mark syntax.Mark) *syntax.Ident {
	return &syntax.Ident{NamePos: id.NamePos, Name: id.Name, Ctxt: mark}
}
