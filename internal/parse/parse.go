// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package parse tokenizes fragment templates into literal runs and
// reference markers.
package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// A Token is one element of a parsed template: a run of literal text, a
// positional marker or a named marker.
type Token interface {
	// String returns the token in the form compared by tests and printed
	// in debug output.
	String() string
}

// Literal is a run of template text emitted verbatim. Escaped braces have
// already been collapsed to single braces.
type Literal struct {
	Text string
}

func (l *Literal) String() string {
	return "Literal[" + l.Text + "]"
}

// Positional is a "{}" marker. Index is the marker's position among the
// positional markers of the template, counting from zero.
type Positional struct {
	Index int
}

func (p *Positional) String() string {
	return fmt.Sprintf("Positional[%d]", p.Index)
}

// Named is a "{name}" marker.
type Named struct {
	Name string
}

func (n *Named) String() string {
	return "Named[" + n.Name + "]"
}

// SyntaxError reports a malformed template.
type SyntaxError struct {
	// Line and Col locate the offending part of the template, counting
	// from one.
	Line, Col int
	// multiline records whether the template spans several lines. Line
	// only appears in the message when it does.
	multiline bool
	reason    string
}

func (e *SyntaxError) Error() string {
	if e.multiline {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.reason)
	}
	return fmt.Sprintf("column %d: %s", e.Col, e.reason)
}

// ParsedTemplate is the immutable result of parsing a template. It is safe
// to share between goroutines and between the fragments built from it.
type ParsedTemplate struct {
	tokens      []Token
	positionals int
}

// Tokens returns the template's tokens in order. The returned slice must
// not be modified.
func (pt *ParsedTemplate) Tokens() []Token {
	return pt.tokens
}

// Positionals returns the number of positional markers in the template.
func (pt *ParsedTemplate) Positionals() int {
	return pt.positionals
}

// String returns a representation of the parsed template, e.g.
// "[Literal[id = ] Positional[0] Literal[ AND name = ] Named[name]]".
func (pt *ParsedTemplate) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, t := range pt.tokens {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteString("]")
	return sb.String()
}

func NewParser() *Parser {
	return &Parser{}
}

type Parser struct {
	input string
	pos   int
	// nextPos is start of the next char.
	nextPos int
	// char is the rune starting at pos. char is set to 0 when pos reaches
	// the end of input.
	char rune
	// lineNum is the number of the current line of the input.
	lineNum int
	// lineStart is the position of the first char of the current line in
	// the input.
	lineStart int
	// lit accumulates the current literal run, with escaped braces
	// already collapsed.
	lit strings.Builder
	// tokens are the output of the parser. Tokens are added as they are
	// parsed.
	tokens      []Token
	positionals int
}

// Parse takes a fragment template and returns a ParsedTemplate. The
// template grammar is literal text in which "{}" is a positional marker,
// "{name}" is a named marker and "{{" and "}}" are escaped braces.
func (p *Parser) Parse(input string) (pt *ParsedTemplate, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot parse template: %w", err)
		}
	}()

	p.init(input)

	for p.pos < len(p.input) {
		switch p.char {
		case '{':
			if err := p.parseMarker(); err != nil {
				return nil, err
			}
		case '}':
			line, col := p.lineNum, p.colNum()
			p.advanceChar()
			if !p.skipChar('}') {
				return nil, p.errorAt(line, col, "single '}' is not allowed; use '}}' for a literal brace")
			}
			p.lit.WriteByte('}')
		default:
			p.lit.WriteRune(p.char)
			p.advanceChar()
		}
	}

	p.flushLiteral()
	return &ParsedTemplate{tokens: p.tokens, positionals: p.positionals}, nil
}

// parseMarker parses the marker starting at the current '{', or collapses
// an escaped '{{' into the current literal run.
func (p *Parser) parseMarker() error {
	line, col := p.lineNum, p.colNum()
	p.advanceChar()

	if p.skipChar('{') {
		p.lit.WriteByte('{')
		return nil
	}
	if p.skipChar('}') {
		p.flushLiteral()
		p.tokens = append(p.tokens, &Positional{Index: p.positionals})
		p.positionals++
		return nil
	}

	name, ok := p.skipName()
	if !ok {
		if p.pos >= len(p.input) {
			return p.errorAt(line, col, "missing closing '}' in marker")
		}
		return p.errorAt(p.lineNum, p.colNum(), fmt.Sprintf("invalid marker name starting with %q", p.char))
	}
	if p.pos >= len(p.input) {
		return p.errorAt(line, col, "missing closing '}' in marker")
	}
	if !p.skipChar('}') {
		return p.errorAt(p.lineNum, p.colNum(), fmt.Sprintf("invalid character %q in marker name", p.char))
	}

	p.flushLiteral()
	p.tokens = append(p.tokens, &Named{Name: name})
	return nil
}

// init resets the state of the parser and sets the input string.
func (p *Parser) init(input string) {
	p.input = input
	p.pos = 0
	p.nextPos = 0
	p.char = 0
	p.lineNum = 1
	p.lineStart = 0
	p.lit.Reset()
	p.tokens = []Token{}
	p.positionals = 0
	p.advanceChar()
}

// colNum calculates the current column number taking into account line
// breaks.
func (p *Parser) colNum() int {
	return p.pos - p.lineStart + 1
}

// advanceChar moves the parser to the next character in the input. It also
// takes care of updating the line number if it encounters line breaks.
func (p *Parser) advanceChar() bool {
	if p.nextPos >= len(p.input) {
		p.char = 0
		p.pos = p.nextPos
		return false
	}
	if p.char == '\n' {
		p.lineStart = p.nextPos
		p.lineNum++
	}
	var size int
	p.char, size = utf8.DecodeRuneInString(p.input[p.nextPos:])
	p.pos = p.nextPos
	p.nextPos += size
	return true
}

// skipChar jumps over the current char if it matches the char passed as a
// parameter. Returns true in that case, false otherwise.
func (p *Parser) skipChar(c rune) bool {
	if p.pos < len(p.input) && p.char == c {
		p.advanceChar()
		return true
	}
	return false
}

// skipName advances the parser over a marker name and returns it. A name
// starts with an ASCII letter or underscore followed by ASCII letters,
// digits and underscores. If the parser does not start on an initial name
// char it returns false and the parser is left unchanged.
func (p *Parser) skipName() (string, bool) {
	if p.pos >= len(p.input) || !isInitialNameChar(p.char) {
		return "", false
	}
	mark := p.pos
	p.advanceChar()
	for p.pos < len(p.input) && isNameChar(p.char) {
		p.advanceChar()
	}
	return p.input[mark:p.pos], true
}

// flushLiteral emits the accumulated literal run, if any, as a token.
func (p *Parser) flushLiteral() {
	if p.lit.Len() == 0 {
		return
	}
	p.tokens = append(p.tokens, &Literal{Text: p.lit.String()})
	p.lit.Reset()
}

// errorAt builds a SyntaxError carrying line and column information.
func (p *Parser) errorAt(line, col int, reason string) error {
	return &SyntaxError{
		Line:      line,
		Col:       col,
		multiline: strings.ContainsRune(p.input, '\n'),
		reason:    reason,
	}
}

// isNameChar returns true if the given char can be part of a marker name.
func isNameChar(c rune) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// isInitialNameChar returns true if the given char can appear at the start
// of a marker name.
func isInitialNameChar(c rune) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
