// Package parser turns nested CSS source text into a block tree. It is a
// single left-to-right character scan: nine characters are structural, the
// rest accumulate into the current token buffer. The first violation aborts
// the parse, there is no recovery.
package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cssn/ast"
)

// Error is a parse failure with the 1-based position the scan stopped at.
type Error struct {
	Msg    string
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("parsing error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// valueContext says how text between ':' and ';' is interpreted. Keeping it
// as one enum (instead of a pair of booleans) makes "key set twice" and
// "verbatim value" mutually exclusive by construction.
type valueContext int

const (
	ctxNone     valueContext = iota // not inside a declaration
	ctxValue                        // regular declaration value
	ctxVerbatim                     // custom property value, delimiters are literal
)

// Parser parses nested CSS into an ast.Tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new parser. A nil logger is replaced with a no-op one.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("parser")}
}

// state is one parse call's worth of mutable state.
type state struct {
	buf       []rune       // current token accumulator
	stack     []*ast.Block // open blocks, innermost last
	selectors []string     // comma-separated selector fragments before '{'
	tree      *ast.Tree

	valueCtx valueContext
	property string // pending declaration name, empty when valueCtx == ctxNone

	inString bool // inside a double-quoted string literal
	atRule   bool // current selector fragment is an at-rule prelude
	nested   bool // current selector fragment references the parent via '&'
	parens   int  // parenthesis nesting depth

	line, col int
}

func (s *state) fail(msg string) error {
	return &Error{Msg: msg, Line: s.line, Column: s.col}
}

func (s *state) text() string {
	return strings.TrimSpace(string(s.buf))
}

func (s *state) reset() {
	s.buf = s.buf[:0]
}

func (s *state) top() *ast.Block {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Parse scans src and returns the block tree.
func (p *Parser) Parse(src string) (*ast.Tree, error) {
	s := &state{tree: &ast.Tree{}, line: 1}

	for _, r := range src {
		if r == '\n' {
			s.line++
			s.col = 0
			s.buf = append(s.buf, r)
			continue
		}
		s.col++

		var err error
		switch r {
		case '{':
			err = s.openBlock()
		case '}':
			err = s.closeBlock()
		case ';':
			err = s.endDeclaration()
		case ':':
			err = s.startDeclarationValue()
		case ',':
			err = s.nextSelector()
		case '&':
			s.ampersand()
		case '@':
			s.atSign()
		case '"':
			s.quote()
		case '(':
			s.openParen()
		case ')':
			s.closeParen()
		default:
			s.buf = append(s.buf, r)
		}
		if err != nil {
			return nil, err
		}
	}

	if n := len(s.stack); n > 0 {
		blk := s.top()
		return nil, &Error{
			Msg:    fmt.Sprintf("unclosed block %q", strings.Join(blk.Selectors, ",")),
			Line:   s.line,
			Column: s.col,
		}
	}

	p.log.Debug("Parsed stylesheet", zap.Int("blocks", len(s.tree.Blocks)), zap.Int("lines", s.line))
	return s.tree, nil
}

// openBlock handles '{': the buffer holds the last (or only) selector of the
// block being opened.
func (s *state) openBlock() error {
	sel := s.text()
	if sel == "" {
		return s.fail("missing selector before '{'")
	}

	sels := make([]string, 0, len(s.selectors)+1)
	sels = append(sels, s.selectors...)
	sels = append(sels, sel)
	if len(sels) > 1 {
		for _, cand := range sels {
			if strings.HasPrefix(cand, "@") {
				return s.fail("at-rule cannot be grouped with other selectors")
			}
		}
	}

	blk := &ast.Block{
		Selectors: sels,
		Loc:       &ast.Location{Start: ast.Position{Line: s.line, Column: s.col}},
	}
	if parent := s.top(); parent != nil {
		parent.AppendChild(blk)
	} else {
		s.tree.Append(blk)
	}
	s.stack = append(s.stack, blk)

	s.selectors = nil
	s.nested = false
	s.atRule = false
	s.reset()
	return nil
}

// closeBlock handles '}'.
func (s *state) closeBlock() error {
	if len(s.stack) == 0 {
		return s.fail("unexpected '}' with no open block")
	}
	if s.property != "" {
		return s.fail(fmt.Sprintf("declaration %q not terminated before '}'", s.property))
	}

	blk := s.top()
	blk.Loc.End = &ast.Position{Line: s.line, Column: s.col}
	s.stack = s.stack[:len(s.stack)-1]
	s.reset()
	return nil
}

// endDeclaration handles ';'. Inside a string literal the semicolon is plain
// text; everywhere else it terminates the pending declaration.
func (s *state) endDeclaration() error {
	if s.inString {
		s.buf = append(s.buf, ';')
		return nil
	}

	value := s.text()
	switch {
	case len(s.stack) == 0:
		return s.fail("declaration outside of any block")
	case s.property == "" || value == "":
		return s.fail("malformed declaration before ';'")
	}

	blk := s.top()
	blk.Properties = append(blk.Properties, ast.Property{Name: s.property, Value: value})

	s.property = ""
	s.valueCtx = ctxNone
	s.atRule = false
	s.nested = false
	s.reset()
	return nil
}

// startDeclarationValue handles ':'. The colon is literal text inside at-rule
// preludes, string literals, nested-selector fragments, custom property
// values and outside any block.
func (s *state) startDeclarationValue() error {
	if s.atRule || s.inString || s.nested || len(s.stack) == 0 || s.valueCtx == ctxVerbatim {
		s.buf = append(s.buf, ':')
		return nil
	}
	if s.property != "" {
		return s.fail(fmt.Sprintf("unexpected ':' inside value of %q", s.property))
	}

	s.property = s.text()
	if strings.HasPrefix(s.property, "!") {
		s.valueCtx = ctxVerbatim
	} else {
		s.valueCtx = ctxValue
	}
	s.reset()
	return nil
}

// nextSelector handles ','. Commas are literal inside string literals,
// declaration values and parenthesised expressions.
func (s *state) nextSelector() error {
	if s.inString || s.valueCtx != ctxNone || s.parens > 0 {
		s.buf = append(s.buf, ',')
		return nil
	}

	sel := s.text()
	if sel == "" {
		return s.fail("missing selector before ','")
	}
	s.selectors = append(s.selectors, sel)
	s.reset()
	return nil
}

func (s *state) ampersand() {
	s.buf = append(s.buf, '&')
	if s.valueCtx != ctxVerbatim && !s.inString {
		s.nested = true
	}
}

func (s *state) atSign() {
	s.buf = append(s.buf, '@')
	if s.valueCtx != ctxVerbatim {
		s.atRule = true
	}
}

// quote handles '"'. Entering a string literal is unconditional; leaving it
// requires the quote to not be escaped with a backslash.
func (s *state) quote() {
	if s.valueCtx == ctxVerbatim {
		s.buf = append(s.buf, '"')
		return
	}
	if !s.inString {
		s.inString = true
	} else if len(s.buf) == 0 || s.buf[len(s.buf)-1] != '\\' {
		s.inString = false
	}
	s.buf = append(s.buf, '"')
}

func (s *state) openParen() {
	s.buf = append(s.buf, '(')
	if s.valueCtx != ctxVerbatim && !s.inString {
		s.parens++
	}
}

func (s *state) closeParen() {
	s.buf = append(s.buf, ')')
	if s.valueCtx != ctxVerbatim && !s.inString && s.parens > 0 {
		s.parens--
	}
}
