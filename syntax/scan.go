// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// A lexical scanner for mac files.

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Token represents a lexical token.
type Token int8

const (
	ILLEGAL Token = iota
	EOF

	// Tokens with values
	IDENT  // x
	INT    // 123
	STRING // "foo"

	// Punctuation
	LPAREN     // (
	RPAREN     // )
	LBRACK     // [
	RBRACK     // ]
	LBRACE     // {
	RBRACE     // }
	SEMI       // ;
	COMMA      // ,
	COLON      // :
	COLONCOLON // ::
	BANG       // !
	HASH       // #
	LT         // <
	GT         // >
	EQ         // =
	OTHER      // any other punctuation, meaningful only inside macro arguments

	// Keywords
	AS
	CONST
	CRATE
	EXTERN
	FN
	MACRO
	MOD
	USE

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= LPAREN && tok <= OTHER {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL:    "illegal token",
	EOF:        "end of file",
	IDENT:      "identifier",
	INT:        "int literal",
	STRING:     "string literal",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACK:     "[",
	RBRACK:     "]",
	LBRACE:     "{",
	RBRACE:     "}",
	SEMI:       ";",
	COMMA:      ",",
	COLON:      ":",
	COLONCOLON: "::",
	BANG:       "!",
	HASH:       "#",
	LT:         "<",
	GT:         ">",
	EQ:         "=",
	OTHER:      "punctuation",
	AS:         "as",
	CONST:      "const",
	CRATE:      "crate",
	EXTERN:     "extern",
	FN:         "fn",
	MACRO:      "macro",
	MOD:        "mod",
	USE:        "use",
}

var keywordToken = map[string]Token{
	"as":     AS,
	"const":  CONST,
	"crate":  CRATE,
	"extern": EXTERN,
	"fn":     FN,
	"macro":  MACRO,
	"mod":    MOD,
	"use":    USE,
}

// A Position describes the location of a rune of input.
type Position struct {
	file *string // filename (indirect for compactness)
	Line int32   // 1-based line number; 0 if line unknown
	Col  int32   // 1-based column (rune) number; 0 if column unknown
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.file != nil }

// Filename returns the name of the file containing this position.
func (p Position) Filename() string {
	if p.file != nil {
		return *p.file
	}
	return "<invalid>"
}

// MakePosition returns position with the specified components.
func MakePosition(file *string, line, col int32) Position { return Position{file, line, col} }

// add returns the position at the end of s, assuming it starts at p.
func (p Position) add(s string) Position {
	if n := strings.Count(s, "\n"); n > 0 {
		p.Line += int32(n)
		s = s[strings.LastIndex(s, "\n")+1:]
		p.Col = 1
	}
	p.Col += int32(utf8.RuneCountInString(s))
	return p
}

func (p Position) String() string {
	file := p.Filename()
	if p.Line > 0 {
		if p.Col > 0 {
			return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
		}
		return fmt.Sprintf("%s:%d", file, p.Line)
	}
	return file
}

// Before reports whether p precedes q in the same file.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// An Error describes the nature and position of a scanner or parser error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// A tokenValue holds the value of a token that has one.
type tokenValue struct {
	raw    string   // raw text of token
	int    int64    // decoded int
	string string   // decoded string
	pos    Position // start position of token
	off    int      // byte offset of token
}

// A scanner represents a single input file being parsed.
type scanner struct {
	rest []byte // rest of input
	src  []byte // complete input
	pos  Position
}

func newScanner(filename string, src interface{}) (*scanner, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	return &scanner{
		rest: data,
		src:  data,
		pos:  MakePosition(&filename, 1, 1),
	}, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case nil:
		return os.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// error aborts the scan by panicking with an Error.
func (sc *scanner) error(pos Position, s string) {
	panic(Error{pos, s})
}

func (sc *scanner) errorf(pos Position, format string, args ...interface{}) {
	sc.error(pos, fmt.Sprintf(format, args...))
}

func (sc *scanner) recover(err *error) {
	switch e := recover().(type) {
	case nil:
		// no panic
	case Error:
		*err = e
	default:
		panic(e)
	}
}

// offset returns the byte offset of the next unread rune.
func (sc *scanner) offset() int { return len(sc.src) - len(sc.rest) }

func (sc *scanner) peekRune() rune {
	if len(sc.rest) == 0 {
		return 0
	}
	if b := sc.rest[0]; b < utf8.RuneSelf {
		return rune(b)
	}
	r, _ := utf8.DecodeRune(sc.rest)
	return r
}

func (sc *scanner) readRune() rune {
	if len(sc.rest) == 0 {
		sc.error(sc.pos, "internal scanner error: readRune at EOF")
	}
	r, n := utf8.DecodeRune(sc.rest)
	sc.rest = sc.rest[n:]
	if r == '\n' {
		sc.pos.Line++
		sc.pos.Col = 1
	} else {
		sc.pos.Col++
	}
	return r
}

func isIdentStart(r rune) bool {
	return 'a' <= r && r <= 'z' ||
		'A' <= r && r <= 'Z' ||
		r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isIdent(r rune) bool {
	return isdigit(r) || isIdentStart(r)
}

func isdigit(r rune) bool { return '0' <= r && r <= '9' }

// nextToken is called by the parser to obtain the next input token.
// It returns the token value and sets val to the data associated with
// the token.
func (sc *scanner) nextToken(val *tokenValue) Token {
	// skip spaces and comments
	for {
		c := sc.peekRune()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			sc.readRune()
			continue
		case c == '/' && len(sc.rest) > 1 && sc.rest[1] == '/':
			for c := sc.peekRune(); c != '\n' && c != 0; c = sc.peekRune() {
				sc.readRune()
			}
			continue
		}
		break
	}

	start := sc.offset()
	val.pos = sc.pos
	val.off = start
	val.raw = ""
	c := sc.peekRune()
	if c == 0 {
		return EOF
	}

	// identifiers, keywords, and $crate
	if isIdentStart(c) || c == '$' {
		sc.readRune()
		if c == '$' && !isIdentStart(sc.peekRune()) {
			sc.error(val.pos, "expected identifier after '$'")
		}
		for isIdent(sc.peekRune()) {
			sc.readRune()
		}
		val.raw = string(sc.src[start:sc.offset()])
		if c == '$' && val.raw != "$crate" {
			sc.errorf(val.pos, "unknown macro variable `%s`", val.raw)
		}
		if k, ok := keywordToken[val.raw]; ok {
			return k
		}
		return IDENT
	}

	if isdigit(c) {
		for isdigit(sc.peekRune()) {
			sc.readRune()
		}
		val.raw = string(sc.src[start:sc.offset()])
		i, err := strconv.ParseInt(val.raw, 10, 64)
		if err != nil {
			sc.errorf(val.pos, "invalid int literal %s", val.raw)
		}
		val.int = i
		return INT
	}

	if c == '"' {
		sc.readRune()
		for {
			switch sc.peekRune() {
			case 0, '\n':
				sc.error(val.pos, "unexpected newline in string")
			case '\\':
				sc.readRune()
				if sc.peekRune() != 0 {
					sc.readRune()
				}
				continue
			case '"':
				sc.readRune()
			default:
				sc.readRune()
				continue
			}
			break
		}
		val.raw = string(sc.src[start:sc.offset()])
		s, err := strconv.Unquote(val.raw)
		if err != nil {
			sc.errorf(val.pos, "invalid string literal %s", val.raw)
		}
		val.string = s
		return STRING
	}

	sc.readRune()
	var tok Token
	switch c {
	case '(':
		tok = LPAREN
	case ')':
		tok = RPAREN
	case '[':
		tok = LBRACK
	case ']':
		tok = RBRACK
	case '{':
		tok = LBRACE
	case '}':
		tok = RBRACE
	case ';':
		tok = SEMI
	case ',':
		tok = COMMA
	case ':':
		tok = COLON
		if sc.peekRune() == ':' {
			sc.readRune()
			tok = COLONCOLON
		}
	case '!':
		tok = BANG
	case '#':
		tok = HASH
	case '<':
		tok = LT
	case '>':
		tok = GT
	case '=':
		tok = EQ
	case '+', '-', '*', '/', '%', '&', '|', '^', '.', '?', '@', '~':
		tok = OTHER
	default:
		sc.errorf(val.pos, "unexpected input character %q", c)
	}
	val.raw = string(sc.src[start:sc.offset()])
	return tok
}
