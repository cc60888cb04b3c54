// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

// This file builds the reduced module graph from each expansion:
// modules, bindings, imports and the legacy scope chain.

import (
	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// VisitExpansion records the definitions, modules and nested
// invocations of the expansion of mark, and sets the invocation's
// expansion position to the legacy scope in effect after it.
func (r *Resolver) VisitExpansion(mark syntax.Mark, x *ext.Expansion) {
	inv, index := r.invocation(mark)
	r.collectDefIDs(inv, x)

	m := inv.Module
	delete(m.unresolvedInvocations, mark)

	b := &graphBuilder{
		r:           r,
		module:      m,
		legacyScope: LegacyScope{CallSiteScope, index},
		expansion:   mark,
	}
	switch x.Kind {
	case ext.Items:
		b.items(x.Items)
	case ext.Expr:
		if x.Expr != nil {
			b.expr(x.Expr)
		}
	}
	r.cells[inv.expansion] = b.legacyScope
}

// collectDefIDs assigns definition indices within an expansion and
// registers the invocations it contains.
func (r *Resolver) collectDefIDs(inv *Invocation, x *ext.Expansion) {
	c := &DefCollector{
		definitions: r.definitions,
		parent:      inv.DefIndex,
		visitMacroInvoc: func(data MacroInvocationData) {
			if _, ok := r.invocationIndex[data.Mark]; !ok {
				// The module is set by the graph builder.
				r.registerInvocation(data.Mark, r.graphRoot, data.DefIndex, data.ConstInteger)
			}
		},
	}
	c.visitExpansion(x, inv.ConstInteger)
}

type graphBuilder struct {
	r           *Resolver
	module      *Module
	legacyScope LegacyScope
	expansion   syntax.Mark
}

func (b *graphBuilder) items(items []syntax.Item) {
	for _, item := range items {
		b.item(item)
	}
}

func (b *graphBuilder) defID(n syntax.Node) DefID {
	index, ok := b.r.definitions.Lookup(n)
	if !ok {
		panic("internal error: item has no definition")
	}
	return DefID{LocalCrate, index}
}

func (b *graphBuilder) define(name *syntax.Ident, ns Namespace, binding *NameBinding) {
	binding.Pos = name.NamePos
	binding.Expansion = b.expansion
	b.r.define(b.module, name.Name, ns, binding)
}

func (b *graphBuilder) item(item syntax.Item) {
	r := b.r
	switch item := item.(type) {
	case *syntax.ModItem:
		id := b.defID(item)
		child := r.newModule(DefModule, item.Name.Name, b.module, LocalCrate, id)
		b.define(item.Name, TypeNS, &NameBinding{kind: moduleBinding, module: child})

		parent, scope := b.module, b.legacyScope
		b.module = child
		b.items(item.Items)
		b.module = parent
		// Macros defined in a #[macro_use] module remain in scope after it.
		if !syntax.HasAttr(item, "macro_use") {
			b.legacyScope = scope
		}

	case *syntax.FnItem:
		id := b.defID(item)
		b.define(item.Name, ValueNS, &NameBinding{kind: defBinding, def: Def{DefFn, id}})
		b.block(item.Body.Items)

	case *syntax.Block:
		b.block(item.Items)

	case *syntax.MacroRules:
		b.legacyScope = r.AddMacro(b.legacyScope, item, syntax.HasAttr(item, "macro_export"))

	case *syntax.MacroDef:
		id := b.defID(item)
		r.macroMap[id] = ext.CompileMacro(item)
		r.macroNames[item.Name.Name] = true
		b.define(item.Name, MacroNS, &NameBinding{kind: defBinding, def: Def{DefMacro, id}})

	case *syntax.UseItem:
		r.addImport(b.module, item, b.expansion)

	case *syntax.ExternCrate:
		r.addExternCrateItem(b.module, item, b.expansion)

	case *syntax.ConstItem:
		id := b.defID(item)
		b.define(item.Name, ValueNS, &NameBinding{kind: defBinding, def: Def{DefConst, id}})
		b.expr(item.Value)

	case *syntax.ExprItem:
		b.expr(item.X)

	case *syntax.MacroCall:
		b.invocation(item.Mark)
	}
}

// block builds an anonymous module. Textually scoped macros never
// escape a block.
func (b *graphBuilder) block(items []syntax.Item) {
	parent, scope := b.module, b.legacyScope
	b.module = b.r.newModule(BlockModule, "", parent, LocalCrate, DefID{})
	b.items(items)
	b.module, b.legacyScope = parent, scope
}

func (b *graphBuilder) expr(x syntax.Expr) {
	if call, ok := x.(*syntax.MacroCall); ok {
		b.invocation(call.Mark)
	}
}

// invocation places an unexpanded invocation in the current module and
// scope. Items that follow it see its eventual expansion.
func (b *graphBuilder) invocation(mark syntax.Mark) {
	inv, index := b.r.invocation(mark)
	inv.Module = b.module
	b.r.cells[inv.legacyScope] = b.legacyScope
	b.module.unresolvedInvocations[mark] = true
	b.legacyScope = LegacyScope{ExpansionScope, index}
}
