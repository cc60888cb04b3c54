// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"fmt"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// A PathScope says where the first segment of a path is looked up.
type PathScope uint8

const (
	Lexical PathScope = iota // enclosing scopes of the current module
	Global                   // the crate root (a leading ::)
)

// A PathResultKind classifies the outcome of path resolution.
type PathResultKind uint8

const (
	NonModule PathResultKind = iota
	ModuleResult
	Indeterminate
	Failed
)

// A PathResult is the outcome of resolving a multi-segment path.
type PathResult struct {
	Kind   PathResultKind
	Def    Def     // NonModule
	Module *Module // ModuleResult
	Msg    string  // Failed
}

func failed(format string, args ...interface{}) PathResult {
	return PathResult{Kind: Failed, Msg: fmt.Sprintf(format, args...)}
}

// resolvePath resolves path from module m. Every segment but the last
// must denote a module; the last is looked up in namespace ns.
func (r *Resolver) resolvePath(m *Module, path []*syntax.Ident, scope PathScope, ns Namespace, recordUsed *syntax.Position) PathResult {
	var cur *Module
	if scope == Global {
		cur = r.crateRoot(m.Crate)
	}
	for i, ident := range path {
		isLast := i == len(path)-1
		segNS := TypeNS
		if isLast {
			segNS = ns
		}
		name := ident.Name

		switch {
		case i == 0 && scope != Global && name == "self":
			cur = m.defModule()
			if isLast && ns != TypeNS {
				return failed("`%s` is not a macro", name)
			}
			continue
		case name == "super" && (i == 0 || path[i-1].Name == "super" || path[i-1].Name == "self"):
			if cur == nil {
				cur = m.defModule()
			}
			if cur.Parent == nil {
				return failed("There are too many initial `super`s.")
			}
			cur = cur.Parent.defModule()
			if isLast && ns != TypeNS {
				return failed("`%s` is not a macro", name)
			}
			continue
		}

		var binding *NameBinding
		var err error
		if cur == nil {
			binding, err = r.resolveIdentInLexicalScope(m, name, segNS, recordUsed)
		} else {
			binding, err = r.resolveNameInModule(cur, name, segNS, false, recordUsed)
		}
		switch err {
		case ext.Undetermined:
			return PathResult{Kind: Indeterminate}
		case ext.Determined:
			switch {
			case i == 0 && scope == Global:
				return failed("Could not find `%s` in the crate root", name)
			case i == 0:
				return failed("Use of undeclared type or module `%s`", name)
			}
			return failed("Could not find `%s` in `%s`", name, path[i-1].Name)
		}

		if module := binding.Module(); module != nil && segNS == TypeNS {
			if isLast {
				return PathResult{Kind: ModuleResult, Module: module}
			}
			cur = module
			continue
		}
		if !isLast {
			return failed("Not a module `%s`", name)
		}
		return PathResult{Kind: NonModule, Def: binding.Def()}
	}
	if cur == nil {
		cur = m.defModule()
	}
	return PathResult{Kind: ModuleResult, Module: cur}
}

// resolveIdentInLexicalScope looks up the first segment of a relative
// path in the block scopes enclosing m, out to the nearest named module.
func (r *Resolver) resolveIdentInLexicalScope(m *Module, name string, ns Namespace, recordUsed *syntax.Position) (*NameBinding, error) {
	for {
		binding, err := r.resolveNameInModule(m, name, ns, false, recordUsed)
		if err != ext.Determined {
			return binding, err
		}
		if m.Kind == DefModule {
			return nil, ext.Determined
		}
		m = m.Parent
	}
}
