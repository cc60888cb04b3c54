// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// AddExternCrate makes a compiled crate available to extern crate
// items. Only the crate's modules and macros are loaded: macro
// definitions, and macro_rules! annotated #[macro_export], which are
// exported from the crate root.
func (r *Resolver) AddExternCrate(name string, f *syntax.File) error {
	if _, ok := r.externs[name]; ok || name == r.crateName {
		return fmt.Errorf("crate %s already loaded", name)
	}
	crate := CrateNum(len(r.crates))
	root := r.newModule(DefModule, name, nil, crate, DefID{crate, CrateDefIndex})
	r.crates = append(r.crates, root)
	r.externs[name] = root

	l := &crateLoader{r: r, root: root, next: CrateDefIndex + 1}
	l.items(root, f.Items)
	return nil
}

type crateLoader struct {
	r    *Resolver
	root *Module
	next DefIndex
}

func (l *crateLoader) defID() DefID {
	id := DefID{l.root.Crate, l.next}
	l.next++
	return id
}

func (l *crateLoader) defineMacro(m *Module, name *syntax.Ident, x *ext.Extension) *NameBinding {
	id := l.defID()
	l.r.macroMap[id] = x
	b := &NameBinding{kind: defBinding, def: Def{DefMacro, id}, Pos: name.NamePos}
	l.r.define(m, name.Name, MacroNS, b)
	return b
}

func (l *crateLoader) items(m *Module, items []syntax.Item) {
	for _, item := range items {
		switch item := item.(type) {
		case *syntax.ModItem:
			child := l.r.newModule(DefModule, item.Name.Name, m, m.Crate, l.defID())
			l.r.define(m, item.Name.Name, TypeNS, &NameBinding{kind: moduleBinding, module: child, Pos: item.Name.NamePos})
			l.items(child, item.Items)

		case *syntax.MacroDef:
			l.defineMacro(m, item.Name, ext.CompileMacro(item))

		case *syntax.MacroRules:
			if syntax.HasAttr(item, "macro_export") {
				b := l.defineMacro(l.root, item.Name, ext.Compile(item))
				l.r.crateExports[l.root.Crate] = append(l.r.crateExports[l.root.Crate], b)
			}
		}
	}
}

// addExternCrateItem binds an extern crate item in module m.
// With #[macro_use], the crate's exported macros become visible
// everywhere, as builtins are.
func (r *Resolver) addExternCrateItem(m *Module, item *syntax.ExternCrate, expansion syntax.Mark) {
	name := item.Name.Name
	root, ok := r.externs[name]
	if !ok {
		r.errorf(item.Name.NamePos, "can't find crate for `%s`", name)
		return
	}
	r.define(m, name, TypeNS, &NameBinding{
		kind:      moduleBinding,
		module:    root,
		Pos:       item.Name.NamePos,
		Expansion: expansion,
	})
	if !syntax.HasAttr(item, "macro_use") {
		return
	}
	for _, b := range r.crateExports[root.Crate] {
		name := r.macroMap[b.Def().ID].Name
		r.builtinMacros[name] = &NameBinding{
			kind:     importBinding,
			imported: b,
			Pos:      item.Extern,
			Vis:      PrivateExternal,
		}
		r.macroNames[name] = true
	}
}
