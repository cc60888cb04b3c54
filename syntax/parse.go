// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser for mac files.
//
// Grammar:
//
//	File       = {'#' '!' '[' feature '(' IDENT {',' IDENT} ')' ']'} {Item} .
//	Item       = {'#' '[' IDENT ']'} ItemBody .
//	ItemBody   = 'mod' IDENT '{' {Item} '}'
//	           | 'fn' IDENT Block
//	           | Block
//	           | 'macro_rules' '!' IDENT '{' {Item} '}'
//	           | 'macro' IDENT '{' {Item} '}'
//	           | 'use' Path ['as' IDENT] ';'
//	           | 'extern' 'crate' IDENT ';'
//	           | 'const' IDENT '=' Expr ';'
//	           | INT ';'
//	           | Path '!' '(' tokens ')' [';'] .
//	Block      = '{' {Item} '}' .
//	Expr       = INT | Path '!' '(' tokens ')' .
//	Path       = ['::'] Segment {'::' Segment} .
//	Segment    = IDENT ['<' IDENT {',' IDENT} '>'] .

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string
// or []byte.
// If src == nil, Parse parses the file specified by filename.
func Parse(filename string, src interface{}) (f *File, err error) {
	in, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	defer p.in.recover(&err)

	p.nextToken() // read first lookahead token
	f = p.parseFile()
	if f != nil {
		f.Path = filename
	}
	return f, nil
}

type parser struct {
	in     *scanner
	tok    Token
	tokval tokenValue
}

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	oldpos := p.tokval.pos
	p.tok = p.in.nextToken(&p.tokval)
	return oldpos
}

// consume consumes a token of the specified type and returns its position.
func (p *parser) consume(t Token) Position {
	if p.tok != t {
		p.in.errorf(p.tokval.pos, "got %#v, want %#v", p.tok, t)
	}
	return p.nextToken()
}

func (p *parser) parseFile() *File {
	f := new(File)
	for p.tok == HASH {
		// Only inner attributes are allowed before the first item.
		hash := p.tokval.pos
		p.nextToken()
		if p.tok != BANG {
			f.Items = append(f.Items, p.parseItemAfterHash(hash))
			break
		}
		p.nextToken()
		p.consume(LBRACK)
		name := p.parseIdent()
		if name.Name != "feature" {
			p.in.errorf(name.NamePos, "unknown crate attribute `%s`", name.Name)
		}
		p.consume(LPAREN)
		for p.tok != RPAREN {
			f.Features = append(f.Features, p.parseIdent().Name)
			if p.tok != COMMA {
				break
			}
			p.nextToken()
		}
		p.consume(RPAREN)
		p.consume(RBRACK)
	}
	for p.tok != EOF {
		f.Items = append(f.Items, p.parseItem())
	}
	return f
}

// parseItems parses items up to the closing brace, which it consumes.
func (p *parser) parseItems() ([]Item, Position) {
	var items []Item
	for p.tok != RBRACE {
		if p.tok == EOF {
			p.in.error(p.tokval.pos, "unexpected end of file, want '}'")
		}
		items = append(items, p.parseItem())
	}
	return items, p.nextToken()
}

func (p *parser) parseItem() Item {
	if p.tok == HASH {
		hash := p.nextToken()
		return p.parseItemAfterHash(hash)
	}
	return p.parseItemBody(nil)
}

// parseItemAfterHash parses an item whose first attribute's '#' has
// already been consumed.
func (p *parser) parseItemAfterHash(hash Position) Item {
	var attrs []*Attr
	for {
		p.consume(LBRACK)
		name := p.parseIdent()
		rbrack := p.consume(RBRACK)
		attrs = append(attrs, &Attr{Hash: hash, Name: name, Rbrack: rbrack})
		if p.tok != HASH {
			break
		}
		hash = p.nextToken()
	}
	return p.parseItemBody(attrs)
}

func (p *parser) parseItemBody(attrs []*Attr) Item {
	switch p.tok {
	case MOD:
		mod := p.nextToken()
		name := p.parseIdent()
		p.consume(LBRACE)
		items, rbrace := p.parseItems()
		return &ModItem{ItemAttrs{attrs}, mod, name, items, rbrace}

	case FN:
		fn := p.nextToken()
		name := p.parseIdent()
		body := p.parseBlock(nil)
		return &FnItem{ItemAttrs{attrs}, fn, name, body}

	case LBRACE:
		return p.parseBlock(attrs)

	case MACRO:
		macro := p.nextToken()
		name := p.parseIdent()
		p.consume(LBRACE)
		body, rbrace := p.parseItems()
		return &MacroDef{ItemAttrs{attrs}, macro, name, body, rbrace}

	case USE:
		use := p.nextToken()
		path := p.parsePath()
		var rename *Ident
		if p.tok == AS {
			p.nextToken()
			rename = p.parseIdent()
		}
		semi := p.consume(SEMI)
		return &UseItem{ItemAttrs{attrs}, use, path, rename, semi}

	case EXTERN:
		extern := p.nextToken()
		p.consume(CRATE)
		name := p.parseIdent()
		semi := p.consume(SEMI)
		return &ExternCrate{ItemAttrs{attrs}, extern, name, semi}

	case CONST:
		konst := p.nextToken()
		name := p.parseIdent()
		p.consume(EQ)
		value := p.parseExpr()
		semi := p.consume(SEMI)
		return &ConstItem{ItemAttrs{attrs}, konst, name, value, semi}

	case INT:
		lit := p.parseLiteral()
		semi := p.consume(SEMI)
		return &ExprItem{ItemAttrs{attrs}, lit, semi}

	case IDENT, COLONCOLON:
		path := p.parsePath()
		bang := p.consume(BANG)
		if p.tok == IDENT && !path.Global && len(path.Segments) == 1 &&
			path.Segments[0].Name.Name == "macro_rules" && len(path.Segments[0].Args) == 0 {
			name := p.parseIdent()
			p.consume(LBRACE)
			body, rbrace := p.parseItems()
			return &MacroRules{ItemAttrs{attrs}, path.Segments[0].Name.NamePos, name, body, rbrace}
		}
		call := p.parseMacroArgs(path, bang)
		call.Attrs = attrs
		if p.tok == SEMI {
			p.nextToken()
		}
		return call
	}
	p.in.errorf(p.tokval.pos, "got %#v, want item", p.tok)
	panic("unreachable")
}

func (p *parser) parseBlock(attrs []*Attr) *Block {
	lbrace := p.consume(LBRACE)
	items, rbrace := p.parseItems()
	return &Block{ItemAttrs{attrs}, lbrace, items, rbrace}
}

// parseMacroArgs parses the parenthesized token tree after the '!'
// of an invocation and records its text uninterpreted.
func (p *parser) parseMacroArgs(path *Path, bang Position) *MacroCall {
	if p.tok != LPAREN {
		p.in.errorf(p.tokval.pos, "got %#v, want '(' after macro path", p.tok)
	}
	lparen := p.tokval.pos
	start := p.tokval.off + 1
	var stack []Token
	for {
		switch p.tok {
		case EOF:
			p.in.error(lparen, "unclosed macro invocation")
		case LPAREN:
			stack = append(stack, RPAREN)
		case LBRACK:
			stack = append(stack, RBRACK)
		case LBRACE:
			stack = append(stack, RBRACE)
		case RPAREN, RBRACK, RBRACE:
			if want := stack[len(stack)-1]; p.tok != want {
				p.in.errorf(p.tokval.pos, "got %#v, want %#v", p.tok, want)
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			break
		}
		p.nextToken()
	}
	args := string(p.in.src[start:p.tokval.off])
	rparen := p.nextToken()
	return &MacroCall{Path: path, Bang: bang, Lparen: lparen, Args: args, Rparen: rparen}
}

func (p *parser) parseExpr() Expr {
	switch p.tok {
	case INT:
		return p.parseLiteral()
	case IDENT, COLONCOLON:
		path := p.parsePath()
		bang := p.consume(BANG)
		return p.parseMacroArgs(path, bang)
	}
	p.in.errorf(p.tokval.pos, "got %#v, want expression", p.tok)
	panic("unreachable")
}

func (p *parser) parseLiteral() *Literal {
	lit := &Literal{TokenPos: p.tokval.pos, Raw: p.tokval.raw, Value: p.tokval.int}
	p.nextToken()
	return lit
}

func (p *parser) parsePath() *Path {
	path := new(Path)
	if p.tok == COLONCOLON {
		path.Global = true
		path.Lead = p.nextToken()
	}
	for {
		seg := &PathSegment{Name: p.parseIdent()}
		if p.tok == LT {
			seg.Lt = p.nextToken()
			for {
				seg.Args = append(seg.Args, p.parseIdent())
				if p.tok != COMMA {
					break
				}
				p.nextToken()
			}
			seg.Gt = p.consume(GT)
		}
		path.Segments = append(path.Segments, seg)
		if p.tok != COLONCOLON {
			break
		}
		p.nextToken()
	}
	return path
}

func (p *parser) parseIdent() *Ident {
	if p.tok != IDENT {
		p.in.errorf(p.tokval.pos, "got %#v, want identifier", p.tok)
	}
	id := &Ident{NamePos: p.tokval.pos, Name: p.tokval.raw}
	p.nextToken()
	return id
}
