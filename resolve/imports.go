// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"strings"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// An importDirective is a use item awaiting resolution.
// Import paths are relative to the crate root.
type importDirective struct {
	module    *Module
	path      []*syntax.Ident
	name      string // the name bound
	pos       syntax.Position
	expansion syntax.Mark
}

func (d *importDirective) String() string {
	names := make([]string, len(d.path))
	for i, ident := range d.path {
		names[i] = ident.Name
	}
	return strings.Join(names, "::")
}

func (r *Resolver) addImport(m *Module, item *syntax.UseItem, expansion syntax.Mark) {
	d := &importDirective{
		module:    m,
		name:      item.Binds().Name,
		pos:       item.Use,
		expansion: expansion,
	}
	for _, seg := range item.Path.Segments {
		d.path = append(d.path, seg.Name)
	}
	r.imports = append(r.imports, d)
	for _, ns := range namespaces {
		m.pendingImports[bindingKey{d.name, ns}]++
	}
}

// ResolveImports resolves as many pending imports as it can,
// repeating until no further import can be settled.
// It reports whether any import was resolved.
func (r *Resolver) ResolveImports() bool {
	progress := false
	for {
		var pending []*importDirective
		for _, d := range r.imports {
			if !r.resolveImport(d, false) {
				pending = append(pending, d)
			}
		}
		changed := len(pending) < len(r.imports)
		r.imports = pending
		if !changed {
			return progress
		}
		progress = true
	}
}

// finalizeImports settles every remaining import, reporting those that
// cannot be resolved.
func (r *Resolver) finalizeImports() {
	r.ResolveImports()
	for _, d := range r.imports {
		r.resolveImport(d, true)
	}
	r.imports = nil
}

// resolveImport tries to resolve one import and reports whether it is
// settled, successfully or not. If final is set it always is.
func (r *Resolver) resolveImport(d *importDirective, final bool) bool {
	var recordUsed *syntax.Position
	if final {
		recordUsed = &d.pos
	}

	last := d.path[len(d.path)-1].Name
	target := r.graphRoot
	if prefix := d.path[:len(d.path)-1]; len(prefix) > 0 {
		switch res := r.resolvePath(d.module, prefix, Global, TypeNS, recordUsed); res.Kind {
		case Indeterminate:
			return false
		case Failed:
			r.errorf(d.pos, "unresolved import `%s`. %s", d, res.Msg)
			r.settleImport(d)
			return true
		case NonModule:
			r.errorf(d.pos, "unresolved import `%s`. Not a module `%s`", d, prefix[len(prefix)-1].Name)
			r.settleImport(d)
			return true
		case ModuleResult:
			target = res.Module
		}
	}

	var found [len(namespaces)]*NameBinding
	for _, ns := range namespaces {
		if target == d.module && last == d.name {
			// An import cannot see itself.
			continue
		}
		b, err := r.resolveNameInModule(target, last, ns, false, recordUsed)
		if err == ext.Undetermined {
			return false
		}
		found[ns] = b
	}

	bound := false
	for ns, b := range found {
		if b == nil || b.Vis == PrivateExternal {
			continue
		}
		bound = true
		r.define(d.module, d.name, Namespace(ns), &NameBinding{
			kind:      importBinding,
			imported:  b,
			Pos:       d.pos,
			Expansion: d.expansion,
		})
	}
	if !bound {
		in := "the crate root"
		if len(d.path) > 1 {
			in = "`" + d.path[len(d.path)-2].Name + "`"
		}
		r.errorf(d.pos, "unresolved import `%s`. There is no `%s` in %s", d, last, in)
	}
	r.settleImport(d)
	return true
}

func (r *Resolver) settleImport(d *importDirective) {
	for _, ns := range namespaces {
		d.module.pendingImports[bindingKey{d.name, ns}]--
	}
}
