// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a parser and abstract syntax tree for mac
// files, a small item language with hygienic macros.
package syntax

// A Node is a node in a syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a mac file, the root of one crate.
type File struct {
	Path     string
	Features []string // names enabled by #![feature(...)]
	Items    []Item
}

func (x *File) Span() (start, end Position) {
	if len(x.Items) == 0 {
		return
	}
	start, _ = x.Items[0].Span()
	_, end = x.Items[len(x.Items)-1].Span()
	return start, end
}

// HasFeature reports whether the crate enables the named feature.
func (x *File) HasFeature(name string) bool {
	for _, f := range x.Features {
		if f == name {
			return true
		}
	}
	return false
}

// An Item is a declaration or macro invocation.
type Item interface {
	Node
	Attributes() *[]*Attr
	item()
}

func (*Block) item()       {}
func (*ConstItem) item()   {}
func (*ExprItem) item()    {}
func (*ExternCrate) item() {}
func (*FnItem) item()      {}
func (*MacroCall) item()   {}
func (*MacroDef) item()    {}
func (*MacroRules) item()  {}
func (*ModItem) item()     {}
func (*UseItem) item()     {}

// An Attr is an outer attribute: #[name].
type Attr struct {
	Hash   Position
	Name   *Ident
	Rbrack Position
}

func (x *Attr) Span() (start, end Position) {
	return x.Hash, x.Rbrack.add("]")
}

// ItemAttrs holds the attributes written before an item.
type ItemAttrs struct {
	Attrs []*Attr
}

// Attributes returns the item's attribute list for in-place editing.
func (a *ItemAttrs) Attributes() *[]*Attr { return &a.Attrs }

// HasAttr reports whether an attribute with the given name is present.
func HasAttr(item Item, name string) bool {
	for _, attr := range *item.Attributes() {
		if attr.Name.Name == name {
			return true
		}
	}
	return false
}

// A ModItem is a named module: mod Name { Items }.
type ModItem struct {
	ItemAttrs
	Mod    Position
	Name   *Ident
	Items  []Item
	Rbrace Position
}

func (x *ModItem) Span() (start, end Position) {
	return x.Mod, x.Rbrace.add("}")
}

// A FnItem is a function whose body is a block: fn Name { Items }.
type FnItem struct {
	ItemAttrs
	Fn   Position
	Name *Ident
	Body *Block
}

func (x *FnItem) Span() (start, end Position) {
	_, end = x.Body.Span()
	return x.Fn, end
}

// A Block is an anonymous scope: { Items }.
type Block struct {
	ItemAttrs
	Lbrace Position
	Items  []Item
	Rbrace Position
}

func (x *Block) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A MacroRules is a textually scoped macro definition:
// macro_rules! Name { Body }.
//
// The body is a template of items; there are no matchers.
type MacroRules struct {
	ItemAttrs
	Pos    Position // position of macro_rules
	Name   *Ident
	Body   []Item
	Rbrace Position
}

func (x *MacroRules) Span() (start, end Position) {
	return x.Pos, x.Rbrace.add("}")
}

// A MacroDef is a path-addressable macro definition: macro Name { Body }.
type MacroDef struct {
	ItemAttrs
	Macro  Position
	Name   *Ident
	Body   []Item
	Rbrace Position
}

func (x *MacroDef) Span() (start, end Position) {
	return x.Macro, x.Rbrace.add("}")
}

// A UseItem imports a name: use Path [as Rename];
type UseItem struct {
	ItemAttrs
	Use    Position
	Path   *Path
	Rename *Ident // optional
	Semi   Position
}

func (x *UseItem) Span() (start, end Position) {
	return x.Use, x.Semi.add(";")
}

// Binds returns the name the import introduces.
func (x *UseItem) Binds() *Ident {
	if x.Rename != nil {
		return x.Rename
	}
	return x.Path.Segments[len(x.Path.Segments)-1].Name
}

// An ExternCrate links another crate: extern crate Name;
type ExternCrate struct {
	ItemAttrs
	Extern Position
	Name   *Ident
	Semi   Position
}

func (x *ExternCrate) Span() (start, end Position) {
	return x.Extern, x.Semi.add(";")
}

// A ConstItem is a named constant: const Name = Value;
// Value is a constant-integer position.
type ConstItem struct {
	ItemAttrs
	Const Position
	Name  *Ident
	Value Expr
	Semi  Position
}

func (x *ConstItem) Span() (start, end Position) {
	return x.Const, x.Semi.add(";")
}

// An ExprItem is an expression written where an item is expected.
// It is meaningful only as the body of a macro expanded in
// expression position.
type ExprItem struct {
	ItemAttrs
	X    Expr
	Semi Position
}

func (x *ExprItem) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Semi.add(";")
}

// A MacroCall is a macro invocation: Path!(Args).
// It may appear as an item or as an expression.
//
// The expander also uses MacroCall to represent the invocation of an
// attribute macro; in that case Attr and Target are set and Args is empty.
type MacroCall struct {
	ItemAttrs
	Path   *Path
	Bang   Position
	Lparen Position
	Args   string // uninterpreted argument text
	Rparen Position

	Attr   *Attr // attribute invocations only
	Target Item  // attribute invocations only

	// set by expander:
	Mark      Mark   // hygiene mark of this invocation
	Expansion []Item // result of expansion
}

func (x *MacroCall) Span() (start, end Position) {
	if x.Attr != nil {
		start, _ = x.Attr.Span()
		_, end = x.Target.Span()
		return start, end
	}
	start, _ = x.Path.Span()
	return start, x.Rparen.add(")")
}

// An Expr is an expression.
type Expr interface {
	Node
	expr()
}

func (*Literal) expr()   {}
func (*MacroCall) expr() {}

// A Literal is an integer literal.
type Literal struct {
	TokenPos Position
	Raw      string
	Value    int64
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// A Path is a sequence of segments: [::]a::b::c.
type Path struct {
	Global   bool // leading ::
	Lead     Position
	Segments []*PathSegment
}

func (x *Path) Span() (start, end Position) {
	start = x.Lead
	if !x.Global {
		start, _ = x.Segments[0].Span()
	}
	_, end = x.Segments[len(x.Segments)-1].Span()
	return start, end
}

func (x *Path) String() string {
	var s string
	if x.Global {
		s = "::"
	}
	for i, seg := range x.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg.Name.Name
	}
	return s
}

// A PathSegment is one component of a path, with optional
// generic parameters: name<A, B>.
type PathSegment struct {
	Name *Ident
	Lt   Position
	Args []*Ident
	Gt   Position
}

func (x *PathSegment) Span() (start, end Position) {
	start, end = x.Name.Span()
	if len(x.Args) > 0 {
		end = x.Gt.add(">")
	}
	return start, end
}

// An Ident represents an identifier.
type Ident struct {
	NamePos Position
	Name    string
	Ctxt    Mark // hygiene mark of the expansion that introduced it
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}
