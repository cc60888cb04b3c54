// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

var _ ext.Resolver = (*Resolver)(nil)

// AddMacro defines a macro_rules! macro on top of the legacy scope s
// and returns the new chain position. If export is set the macro is
// also recorded as an export of the crate.
func (r *Resolver) AddMacro(s LegacyScope, def *syntax.MacroRules, export bool) LegacyScope {
	name := def.Name.Name
	if name == "macro_rules" {
		r.errorf(def.Pos, "user-defined macros may not be named `macro_rules`")
	}
	b := &LegacyBinding{Name: name, Ext: ext.Compile(def), Pos: def.Pos}
	s = r.addLegacyBinding(s, b)
	r.macroNames[name] = true

	if export {
		index := r.definitions.create(CrateDefIndex, DefPathData{MacroDefPath, name}, nil)
		r.macroExports = append(r.macroExports, Export{name, Def{DefMacro, DefID{LocalCrate, index}}})
	}
	return s
}

// AddExt registers a builtin extension under name.
func (r *Resolver) AddExt(name string, x *ext.Extension) {
	if x.Kind == ext.Bang {
		r.macroNames[name] = true
	}
	id := DefID{BuiltinMacrosCrate, r.nextBuiltin}
	r.nextBuiltin++
	r.macroMap[id] = x
	r.builtinMacros[name] = &NameBinding{
		kind: defBinding,
		def:  Def{DefMacro, id},
		Vis:  PrivateExternal,
	}
}

// FindAttrInvoc removes from attrs and returns the first attribute
// that names a builtin attribute extension, or nil if there is none.
func (r *Resolver) FindAttrInvoc(attrs *[]*syntax.Attr) *syntax.Attr {
	for i, attr := range *attrs {
		b, ok := r.builtinMacros[attr.Name.Name]
		if !ok {
			continue
		}
		if x := r.getMacro(b.Def()); x.Kind.IsAttr() {
			*attrs = append((*attrs)[:i:i], (*attrs)[i+1:]...)
			return attr
		}
	}
	return nil
}

func (r *Resolver) getMacro(def Def) *ext.Extension {
	x, ok := r.macroMap[def.ID]
	if !ok || def.Kind != DefMacro {
		panic(fmt.Sprintf("internal error: %s %s is not a macro", def.Kind, def.ID))
	}
	return x
}

// ResolveMacro returns the extension denoted by path at the invocation
// with the given mark.
//
// A single-segment path is looked up first among textually scoped
// macros and then in the enclosing block and module scopes. Longer
// paths, and paths beginning with ::, require modern macro resolution.
// Unless force is set, a query that could be answered differently by
// later expansion returns ext.Undetermined. A failed query returns
// ext.Determined; its diagnostic, if any, has been reported.
func (r *Resolver) ResolveMacro(scope syntax.Mark, path *syntax.Path, force bool) (*ext.Extension, error) {
	pos := syntax.Start(path)
	last := len(path.Segments) - 1
	for _, seg := range path.Segments {
		if len(seg.Args) > 0 {
			what := "module"
			if len(path.Segments[last].Args) > 0 {
				what = "macro"
			}
			r.errorf(pos, "type parameters are not allowed on %ss", what)
			return nil, ext.Determined
		}
	}

	inv, _ := r.invocation(scope)
	m := inv.Module

	if len(path.Segments) > 1 || path.Global {
		if !r.useExternMacros {
			r.report(Error{
				Pos:  pos,
				Msg:  "non-ident macro paths are experimental",
				Help: fmt.Sprintf("add #![feature(%s)] to the crate attributes to enable", FeatureExternMacros),
			})
			return nil, ext.Determined
		}

		idents := make([]*syntax.Ident, len(path.Segments))
		for i, seg := range path.Segments {
			idents[i] = seg.Name
		}
		pathScope := Lexical
		if path.Global {
			pathScope = Global
		}

		var x *ext.Extension
		var err error
		switch res := r.resolvePath(m, idents, pathScope, MacroNS, nil); res.Kind {
		case NonModule:
			x = r.getMacro(res.Def)
			r.expansionCrates[scope] = res.Def.ID.Crate
		case ModuleResult:
			panic("internal error: macro path resolved to a module")
		case Indeterminate:
			if !force {
				return nil, ext.Undetermined
			}
			err = ext.Determined
		case Failed:
			err = ext.Determined
		}
		m.macroResolutions = append(m.macroResolutions, deferredPath{idents, pathScope, pos})
		return x, err
	}

	name := path.Segments[0].Name.Name
	var x *ext.Extension
	switch b := r.resolveLegacyScope(inv.legacyScope, name, false).(type) {
	case *LegacyBinding:
		x = b.Ext
		r.expansionCrates[scope] = LocalCrate
	case *NameBinding:
		def := b.Def()
		x = r.getMacro(def)
		r.expansionCrates[scope] = def.ID.Crate
	case nil:
		binding, err := r.resolveLexicalMacroPathSegment(m, name, MacroNS, nil)
		switch {
		case err == nil:
			def := binding.Def()
			x = r.getMacro(def)
			r.expansionCrates[scope] = def.ID.Crate
		case err == ext.Undetermined && !force:
			return nil, ext.Undetermined
		default:
			e := Error{Pos: pos, Msg: fmt.Sprintf("macro undefined: '%s!'", name)}
			r.suggestMacroName(name, &e)
			r.report(e)
			return nil, ext.Determined
		}
	}

	if r.useExternMacros {
		m.legacyMacroResolutions = append(m.legacyMacroResolutions, deferredLegacy{scope, name, pos})
	}
	return x, nil
}

// EliminateCrateVar rewrites each path within item that begins with
// $crate into a global path naming the crate in which the macro that
// produced the path was defined.
func (r *Resolver) EliminateCrateVar(item syntax.Item) {
	syntax.Walk(item, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.MacroRules, *syntax.MacroDef:
			return false // templates are rewritten when instantiated
		case *syntax.Path:
			r.eliminateCrateVar(n)
		}
		return true
	})
}

func (r *Resolver) eliminateCrateVar(path *syntax.Path) {
	ident := path.Segments[0].Name
	if ident.Name != "$crate" || len(path.Segments) < 2 {
		return
	}
	path.Global = true
	path.Lead = ident.NamePos
	if root := r.resolveCrateVar(ident.Ctxt); root.IsLocal() {
		path.Segments = path.Segments[1:]
	} else {
		path.Segments[0] = &syntax.PathSegment{
			Name: &syntax.Ident{NamePos: ident.NamePos, Name: root.Name},
		}
	}
}

// resolveCrateVar returns the root of the crate that defined the macro
// whose expansion introduced syntax with context ctxt.
func (r *Resolver) resolveCrateVar(ctxt syntax.Mark) *Module {
	if crate, ok := r.expansionCrates[ctxt]; ok {
		return r.crateRoot(crate)
	}
	return r.graphRoot
}
