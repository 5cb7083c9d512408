// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sn

import (
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// Lexer transforms a byte stream into a restartable sequence of Token
// values with indentation brackets synthesised. It is not thread-safe.
type Lexer struct {
	arena    *Arena
	src      []byte
	filename string
	pos      int
	line     int

	atLineStart bool
	indents     []int
	pendingDedents int

	done bool
}

// NewLexer primes an indentation stack containing [0] and takes ownership
// of the observation of source, which the caller has already duplicated
// into arena.
func NewLexer(arena *Arena, source string, filename string) *Lexer {
	return &Lexer{
		arena:       arena,
		src:         []byte(source),
		filename:    filename,
		line:        1,
		atLineStart: true,
		indents:     []int{0},
	}
}

func (l *Lexer) tok(kind TokenKind, lexeme string, line int) Token {
	return Token{Kind: kind, Start: l.arena.DupString(lexeme), Line: line, Filename: l.filename}
}

func (l *Lexer) errTok(lexeme string, line int) Token {
	glog.V(2).Infof("%s:%d: lexical error near %q", l.filename, line, lexeme)
	return l.tok(TOKEN_ERROR, lexeme, line)
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

// NextToken returns the next Token; successive calls after EOF keep
// yielding EOF.
func (l *Lexer) NextToken() Token {
	if l.pendingDedents > 0 {
		l.pendingDedents--
		return l.tok(TOKEN_DEDENT, "", l.line)
	}

	if l.atLineStart {
		if t, ok := l.scanIndentation(); ok {
			return t
		}
	}

	l.skipBlankAndComments()

	if l.pos >= len(l.src) {
		return l.handleEOF()
	}

	startLine := l.line
	c := l.peekByte()

	switch {
	case c == '\n':
		l.advance()
		l.atLineStart = true
		return l.tok(TOKEN_NEWLINE, "\n", startLine)
	case isIdentStart(c):
		return l.scanIdentOrKeyword(startLine)
	case isDigit(c):
		return l.scanNumber(startLine)
	case c == '"':
		return l.scanString(startLine)
	case c == '\'':
		return l.scanChar(startLine)
	case c == '$' && l.peekByteAt(1) == '"':
		return l.scanInterpString(startLine)
	default:
		return l.scanOperator(startLine)
	}
}

// scanIndentation runs once at the start of each logical line: it counts
// leading spaces/tabs (one tab == one column) and emits
// INDENT/DEDENT tokens as required. Blank lines and comment-only lines do
// not alter indentation.
func (l *Lexer) scanIndentation() (Token, bool) {
	save := l.pos
	col := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' {
			col++
			l.pos++
			continue
		}
		break
	}
	// Blank line or comment-only line: don't touch the indent stack.
	if l.pos >= len(l.src) || l.src[l.pos] == '\n' || (l.src[l.pos] == '/' && l.peekByteAt(1) == '/') || (l.src[l.pos] == '/' && l.peekByteAt(1) == '*' && l.restOfLineIsCommentOnly()) {
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.atLineStart = true
			// leave the real newline handling to the main switch
			l.pos = save
			col = 0
			// fallthrough: re-scan spaces quickly without reassigning col use
			for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
				l.pos++
			}
		}
		l.atLineStart = false
		return Token{}, false
	}

	l.atLineStart = false
	top := l.indents[len(l.indents)-1]
	if col > top {
		l.indents = append(l.indents, col)
		return l.tok(TOKEN_INDENT, "", l.line), true
	}
	if col < top {
		count := 0
		for len(l.indents) > 0 && l.indents[len(l.indents)-1] > col {
			l.indents = l.indents[:len(l.indents)-1]
			count++
		}
		if len(l.indents) == 0 || l.indents[len(l.indents)-1] != col {
			return l.errTok("bad indentation", l.line), true
		}
		l.pendingDedents = count - 1
		return l.tok(TOKEN_DEDENT, "", l.line), true
	}
	return Token{}, false
}

// restOfLineIsCommentOnly reports whether the rest of the current line
// holds only whitespace and comments, so the line carries no code and
// must not alter the indentation stack. A block comment that runs past
// end-of-line counts as code for indentation purposes.
func (l *Lexer) restOfLineIsCommentOnly() bool {
	i := l.pos
	for i < len(l.src) && l.src[i] != '\n' {
		c := l.src[i]
		if c == ' ' || c == '\t' || c == '\r' {
			i++
			continue
		}
		if c == '/' && i+1 < len(l.src) && l.src[i+1] == '/' {
			return true
		}
		if c == '/' && i+1 < len(l.src) && l.src[i+1] == '*' {
			j := i + 2
			for j+1 < len(l.src) && l.src[j] != '\n' {
				if l.src[j] == '*' && l.src[j+1] == '/' {
					break
				}
				j++
			}
			if j+1 >= len(l.src) || l.src[j] != '*' || l.src[j+1] != '/' {
				return false
			}
			i = j + 2
			continue
		}
		return false
	}
	return true
}

func (l *Lexer) skipBlankAndComments() {
	for l.pos < len(l.src) {
		c := l.peekByte()
		if c == ' ' || c == '\t' || c == '\r' {
			l.pos++
			continue
		}
		if c == '/' && l.peekByteAt(1) == '*' {
			l.skipBlockComment()
			continue
		}
		break
	}
}

func (l *Lexer) skipBlockComment() {
	startLine := l.line
	l.pos += 2
	for {
		if l.pos >= len(l.src) {
			glog.Errorf("%s:%d: unterminated block comment", l.filename, startLine)
			return
		}
		if l.peekByte() == '*' && l.peekByteAt(1) == '/' {
			l.pos += 2
			return
		}
		l.advance()
	}
}

func (l *Lexer) handleEOF() Token {
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return l.tok(TOKEN_DEDENT, "", l.line)
	}
	l.done = true
	return l.tok(TOKEN_EOF, "", l.line)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *Lexer) scanIdentOrKeyword(line int) Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if kw, ok := keywords[text]; ok {
		t := l.tok(kw, text, line)
		if kw == TOKEN_TRUE || kw == TOKEN_FALSE {
			t.Kind = TOKEN_BOOL
			t.Literal.BoolValue = kw == TOKEN_TRUE
		}
		return t
	}
	return l.tok(TOKEN_IDENT, text, line)
}

// scanNumber handles decimal and 0x-hex integers, suffix-driven integer
// kind selection (L/U/U32/I32/b), and floating point with optional f
// suffix.
func (l *Lexer) scanNumber(line int) Token {
	start := l.pos
	isFloat := false
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[start:l.pos])
		v, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return l.errTok(text, line)
		}
		t := l.tok(TOKEN_INT, text, line)
		t.Literal.IntValue = v
		return t
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	numText := string(l.src[start:l.pos])

	if isFloat {
		kind := TOKEN_DOUBLE
		if l.peekByte() == 'f' {
			l.pos++
			kind = TOKEN_FLOAT
		}
		v, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			return l.errTok(numText, line)
		}
		t := l.tok(kind, string(l.src[start:l.pos]), line)
		t.Literal.DoubleValue = v
		return t
	}

	kind := TOKEN_INT
	switch {
	case l.peekByte() == 'L':
		l.pos++
		kind = TOKEN_LONG
	case l.peekByte() == 'U' && l.peekByteAt(1) == '3' && l.peekByteAt(2) == '2':
		l.pos += 3
		kind = TOKEN_UINT32
	case l.peekByte() == 'U':
		l.pos++
		kind = TOKEN_UINT
	case l.peekByte() == 'I' && l.peekByteAt(1) == '3' && l.peekByteAt(2) == '2':
		l.pos += 3
		kind = TOKEN_INT32
	case l.peekByte() == 'b':
		l.pos++
		kind = TOKEN_BYTE
	}
	v, err := strconv.ParseInt(numText, 10, 64)
	if err != nil {
		return l.errTok(numText, line)
	}
	t := l.tok(kind, string(l.src[start:l.pos]), line)
	t.Literal.IntValue = v
	return t
}

func (l *Lexer) scanString(line int) Token {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return l.errTok("unterminated string", line)
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\n' {
			return l.errTok("unterminated string", line)
		}
		if c == '\\' {
			l.pos++
			esc, ok := decodeEscape(l.src, &l.pos)
			if !ok {
				return l.errTok("bad escape", line)
			}
			sb.WriteByte(esc)
			continue
		}
		sb.WriteByte(c)
		l.pos++
	}
	t := l.tok(TOKEN_STRING, string(l.src[start:l.pos]), line)
	t.Literal.StringValue = sb.String()
	return t
}

// scanInterpString captures a $"..." body verbatim (including its escapes
// and nested {expr:fmt} regions) for a second lexing/parsing pass.
func (l *Lexer) scanInterpString(line int) Token {
	start := l.pos
	l.pos += 2 // `$"`
	depth := 0
	for {
		if l.pos >= len(l.src) {
			return l.errTok("unterminated interpolated string", line)
		}
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == '{' {
			if l.peekByteAt(1) == '{' {
				l.pos += 2
				continue
			}
			depth++
			l.pos++
			continue
		}
		if c == '}' {
			if depth > 0 {
				depth--
				l.pos++
				continue
			}
		}
		if c == '"' && depth == 0 {
			l.pos++
			break
		}
		if c == '\n' && depth == 0 {
			return l.errTok("unterminated interpolated string", line)
		}
		l.pos++
	}
	t := l.tok(TOKEN_INTERP_STRING, string(l.src[start:l.pos]), line)
	t.Literal.StringValue = string(l.src[start+2 : l.pos-1])
	return t
}

func (l *Lexer) scanChar(line int) Token {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) {
		return l.errTok("unterminated char", line)
	}
	var v byte
	if l.src[l.pos] == '\\' {
		l.pos++
		esc, ok := decodeEscape(l.src, &l.pos)
		if !ok {
			return l.errTok("bad escape", line)
		}
		v = esc
	} else {
		v = l.src[l.pos]
		l.pos++
	}
	if l.pos >= len(l.src) || l.src[l.pos] != '\'' {
		return l.errTok("unterminated char", line)
	}
	l.pos++
	t := l.tok(TOKEN_CHAR, string(l.src[start:l.pos]), line)
	t.Literal.CharValue = v
	return t
}

func decodeEscape(src []byte, pos *int) (byte, bool) {
	if *pos >= len(src) {
		return 0, false
	}
	c := src[*pos]
	*pos++
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '0':
		return 0, true
	default:
		return c, true
	}
}

type opEntry struct {
	text string
	kind TokenKind
}

// Longest-match-first table for punctuation/multi-character operators.
var operatorTable = []opEntry{
	{"<<=", TOKEN_SHL_EQ}, {">>=", TOKEN_SHR_EQ}, {"...", TOKEN_SPREAD},
	{"==", TOKEN_EQ}, {"!=", TOKEN_NE}, {"<=", TOKEN_LE}, {">=", TOKEN_GE},
	{"<<", TOKEN_SHL}, {">>", TOKEN_SHR},
	{"+=", TOKEN_PLUS_EQ}, {"-=", TOKEN_MINUS_EQ}, {"*=", TOKEN_STAR_EQ},
	{"/=", TOKEN_SLASH_EQ}, {"%=", TOKEN_PERCENT_EQ}, {"&=", TOKEN_AMP_EQ},
	{"|=", TOKEN_PIPE_EQ}, {"^=", TOKEN_CARET_EQ},
	{"++", TOKEN_INC}, {"--", TOKEN_DEC}, {"=>", TOKEN_ARROW}, {"..", TOKEN_RANGE},
	{"(", TOKEN_LPAREN}, {")", TOKEN_RPAREN}, {"{", TOKEN_LBRACE}, {"}", TOKEN_RBRACE},
	{"[", TOKEN_LBRACKET}, {"]", TOKEN_RBRACKET}, {",", TOKEN_COMMA}, {".", TOKEN_DOT},
	{":", TOKEN_COLON}, {";", TOKEN_SEMICOLON},
	{"+", TOKEN_PLUS}, {"-", TOKEN_MINUS}, {"*", TOKEN_STAR}, {"/", TOKEN_SLASH},
	{"%", TOKEN_PERCENT}, {"&", TOKEN_AMP}, {"|", TOKEN_PIPE}, {"^", TOKEN_CARET},
	{"~", TOKEN_TILDE}, {"!", TOKEN_BANG}, {"=", TOKEN_ASSIGN}, {"<", TOKEN_LT}, {">", TOKEN_GT},
}

func (l *Lexer) scanOperator(line int) Token {
	if l.peekByte() == '/' && l.peekByteAt(1) == '/' {
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return l.tok(TOKEN_COMMENT, string(l.src[start:l.pos]), line)
	}
	if l.peekByte() == '#' {
		return l.scanPragmaKeyword(line)
	}
	for _, e := range operatorTable {
		if l.matchAt(e.text) {
			l.pos += len(e.text)
			return l.tok(e.kind, e.text, line)
		}
	}
	c := l.peekByte()
	if c < 0x20 || c > 0x7e {
		l.pos++
		return l.errTok(string(c), line)
	}
	l.pos++
	return l.errTok(string(c), line)
}

func (l *Lexer) matchAt(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *Lexer) scanPragmaKeyword(line int) Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	if text == "#pragma" {
		return l.tok(TOKEN_PRAGMA, text, line)
	}
	return l.errTok(text, line)
}

// RestOfLine returns everything from the current position up to (but not
// including) the next '\n' or EOF, trimmed of surrounding whitespace, and
// advances the cursor past it. The newline itself is left untouched so the
// next NextToken() call still produces the NEWLINE/EOF the parser expects.
// This is the verbatim/WYSIWYG capture pragma payloads need: ordinary
// tokenisation would choke on `<math.h>` or misquote a
// `"c_name"` alias, so pragmas bypass the token stream entirely for their
// value.
func (l *Lexer) RestOfLine() string {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	return strings.TrimSpace(string(l.src[start:l.pos]))
}
