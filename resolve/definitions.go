// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import (
	"strings"

	"go.macroscope.dev/ext"
	"go.macroscope.dev/syntax"
)

// A DefIndex identifies a definition within the local crate.
type DefIndex uint32

// CrateDefIndex is the index of the crate root.
const CrateDefIndex DefIndex = 0

// A DefPathKind classifies one component of a definition path.
type DefPathKind uint8

const (
	CrateRoot DefPathKind = iota
	TypeNs                // modules
	ValueNs               // functions and constants
	MacroDefPath          // exported or path-addressable macros
	Initializer           // the integer in a constant position
)

// DefPathData is one component of a definition path.
type DefPathData struct {
	Kind DefPathKind
	Name string // empty for CrateRoot and Initializer
}

func (d DefPathData) String() string {
	switch d.Kind {
	case CrateRoot:
		return "{{root}}"
	case Initializer:
		return "{{initializer}}"
	}
	return d.Name
}

// A DefKey locates a definition relative to its parent.
type DefKey struct {
	Parent DefIndex // meaningless for the crate root
	Data   DefPathData
}

// Definitions is the table of local definitions, in creation order.
type Definitions struct {
	keys  []DefKey
	nodes map[syntax.Node]DefIndex
}

func newDefinitions() *Definitions {
	d := &Definitions{nodes: make(map[syntax.Node]DefIndex)}
	d.keys = append(d.keys, DefKey{Data: DefPathData{Kind: CrateRoot}})
	return d
}

func (d *Definitions) create(parent DefIndex, data DefPathData, node syntax.Node) DefIndex {
	index := DefIndex(len(d.keys))
	d.keys = append(d.keys, DefKey{Parent: parent, Data: data})
	if node != nil {
		d.nodes[node] = index
	}
	return index
}

// Len returns the number of definitions, including the crate root.
func (d *Definitions) Len() int { return len(d.keys) }

// Key returns the key of definition i.
func (d *Definitions) Key(i DefIndex) DefKey { return d.keys[i] }

// Lookup returns the definition created for a syntax node.
func (d *Definitions) Lookup(n syntax.Node) (DefIndex, bool) {
	i, ok := d.nodes[n]
	return i, ok
}

// Path returns the path of definition i from the crate root,
// such as "a::f::{{initializer}}".
func (d *Definitions) Path(i DefIndex) string {
	var parts []string
	for i != CrateDefIndex {
		key := d.keys[i]
		parts = append(parts, key.Data.String())
		i = key.Parent
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, "::")
}

// MacroInvocationData describes an invocation found by the
// DefCollector.
type MacroInvocationData struct {
	Mark         syntax.Mark
	DefIndex     DefIndex // enclosing definition
	ConstInteger bool     // invocation is a constant-integer position
}

// A DefCollector assigns definition indices to the definitions of an
// expansion and reports the invocations it contains.
type DefCollector struct {
	definitions     *Definitions
	parent          DefIndex
	visitMacroInvoc func(MacroInvocationData)
}

func (c *DefCollector) withParent(parent DefIndex, f func()) {
	saved := c.parent
	c.parent = parent
	f()
	c.parent = saved
}

func (c *DefCollector) create(data DefPathData, node syntax.Node) DefIndex {
	return c.definitions.create(c.parent, data, node)
}

func (c *DefCollector) visitMacroInvocation(mark syntax.Mark, constInteger bool) {
	if c.visitMacroInvoc != nil {
		c.visitMacroInvoc(MacroInvocationData{Mark: mark, DefIndex: c.parent, ConstInteger: constInteger})
	}
}

func (c *DefCollector) visitExpansion(x *ext.Expansion, constInteger bool) {
	switch x.Kind {
	case ext.Items:
		c.visitItems(x.Items)
	case ext.Expr:
		if x.Expr == nil {
			break
		}
		if constInteger {
			c.visitConstInteger(x.Expr)
		} else {
			c.visitExpr(x.Expr)
		}
	}
}

func (c *DefCollector) visitItems(items []syntax.Item) {
	for _, item := range items {
		c.visitItem(item)
	}
}

func (c *DefCollector) visitItem(item syntax.Item) {
	switch item := item.(type) {
	case *syntax.ModItem:
		index := c.create(DefPathData{TypeNs, item.Name.Name}, item)
		c.withParent(index, func() { c.visitItems(item.Items) })

	case *syntax.FnItem:
		index := c.create(DefPathData{ValueNs, item.Name.Name}, item)
		c.withParent(index, func() { c.visitItems(item.Body.Items) })

	case *syntax.Block:
		c.visitItems(item.Items)

	case *syntax.MacroDef:
		c.create(DefPathData{MacroDefPath, item.Name.Name}, item)

	case *syntax.ConstItem:
		index := c.create(DefPathData{ValueNs, item.Name.Name}, item)
		c.withParent(index, func() { c.visitConstInteger(item.Value) })

	case *syntax.ExprItem:
		c.visitExpr(item.X)

	case *syntax.MacroCall:
		c.visitMacroInvocation(item.Mark, false)

	case *syntax.MacroRules, *syntax.UseItem, *syntax.ExternCrate:
		// no definitions
	}
}

// visitConstInteger visits an expression in constant-integer position.
func (c *DefCollector) visitConstInteger(x syntax.Expr) {
	switch x := x.(type) {
	case *syntax.MacroCall:
		c.visitMacroInvocation(x.Mark, true)
	default:
		c.create(DefPathData{Kind: Initializer}, x)
	}
}

func (c *DefCollector) visitExpr(x syntax.Expr) {
	if call, ok := x.(*syntax.MacroCall); ok {
		c.visitMacroInvocation(call.Mark, false)
	}
}
