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
	"fmt"

	"github.com/golang/glog"
)

// statementStartKinds is consulted by synchronize() to find the next safe
// restart point after a parse error.
var statementStartKinds = map[TokenKind]bool{
	TOKEN_FN:       true,
	TOKEN_VAR:      true,
	TOKEN_IF:       true,
	TOKEN_WHILE:    true,
	TOKEN_FOR:      true,
	TOKEN_RETURN:   true,
	TOKEN_IMPORT:   true,
	TOKEN_NATIVE:   true,
	TOKEN_STRUCT:   true,
	TOKEN_DEDENT:   true,
	TOKEN_EOF:      true,
	TOKEN_NEWLINE:  true,
}

// canStartExpression reports whether k can begin an expression, used to
// tell an expression-bodied native function (`native fn f(): int => 42`)
// apart from one with an indented block body.
func canStartExpression(k TokenKind) bool {
	switch k {
	case TOKEN_NEWLINE, TOKEN_INDENT, TOKEN_DEDENT, TOKEN_EOF:
		return false
	}
	return !statementStartKinds[k] || k == TOKEN_FN
}

// Parser is recursive-descent, token-stream-driven state. It owns
// references to the arena, the lexer, and the symbol table, current and
// previous tokens, panic/error flags, a current #pragma pack alignment,
// a pending_alias slot for the next native declaration, pending leading
// comments, the native-function depth, and a pointer to the active
// ImportContext.
type Parser struct {
	arena  *Arena
	lexer  *Lexer
	symtab *SymbolTable

	current, previous Token
	peeked            *Token

	panicMode bool
	hadError  bool
	firstErr  *CompileError

	packAlignment int // 0 (unset) or 1, set by #pragma pack(1)/pack()
	pendingAlias  string

	pendingComments []string

	inNativeFunction int

	continuationIndentDepth int

	importCtx *ImportContext

	filename string
}

// newParserState constructs a Parser over source text already positioned
// at the start of filename's token stream. Shared by Parse and by the
// interpolated-string sub-parser.
func newParserState(arena *Arena, symtab *SymbolTable, source, filename string, importCtx *ImportContext) *Parser {
	p := &Parser{
		arena:     arena,
		lexer:     NewLexer(arena, source, filename),
		symtab:    symtab,
		importCtx: importCtx,
		filename:  filename,
	}
	p.advance()
	return p
}

// Parse consumes filename's token stream (after reading source) and
// produces a Module, resolving imports as they're encountered. This is
// the parser's single public entry point.
func Parse(arena *Arena, symtab *SymbolTable, source, filename string, importCtx *ImportContext) (*Module, error) {
	p := newParserState(arena, symtab, source, filename, importCtx)
	mod := NewModule(filename)

	for !p.check(TOKEN_EOF) {
		if p.match(TOKEN_NEWLINE) {
			continue
		}
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			mod.Append(stmt)
			if importStmt, ok := stmt.(*ImportStmt); ok {
				if err := p.resolveImport(mod, len(mod.Stmts)-1, importStmt); err != nil {
					return nil, err
				}
			}
		}
	}

	if p.hadError {
		if p.firstErr != nil {
			return nil, p.firstErr
		}
		return nil, newErr(KindSyntactic, filename, 0, "parse failed with errors")
	}
	return mod, nil
}

// --- token stream plumbing -------------------------------------------------

func (p *Parser) advance() {
	p.previous = p.current
	if p.peeked != nil {
		p.current = *p.peeked
		p.peeked = nil
		return
	}
	for {
		tok := p.lexer.NextToken()
		if tok.Kind == TOKEN_COMMENT {
			p.pendingComments = append(p.pendingComments, tok.Lexeme())
			continue
		}
		if tok.Kind == TOKEN_ERROR {
			p.errorAtToken(tok, "lexical error: %s", tok.Lexeme())
			continue
		}
		p.current = tok
		break
	}
}

func (p *Parser) check(k TokenKind) bool { return p.current.Kind == k }

func (p *Parser) match(k TokenKind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k TokenKind, msg string) (Token, bool) {
	if p.check(k) {
		t := p.current
		p.advance()
		return t, true
	}
	p.errorAtCurrent(msg)
	return Token{}, false
}

// takeLeadingComments returns and clears any comments collected since the
// last statement, for attaching to the statement about to be built.
func (p *Parser) takeLeadingComments() []string {
	if len(p.pendingComments) == 0 {
		return nil
	}
	c := p.pendingComments
	p.pendingComments = nil
	return c
}

// skipLayout consumes NEWLINE/INDENT/DEDENT tokens, used where layout is
// insignificant: inside a struct literal's braces, line breaks after the
// opening '{' or a comma carry no block structure.
func (p *Parser) skipLayout() {
	for p.check(TOKEN_NEWLINE) || p.check(TOKEN_INDENT) || p.check(TOKEN_DEDENT) {
		p.advance()
	}
}

// --- error handling & recovery ---------------------------------------------

func (p *Parser) errorAtCurrent(format string, args ...interface{}) {
	p.errorAtToken(p.current, format, args...)
}

func (p *Parser) errorAtToken(tok Token, format string, args ...interface{}) {
	p.errorAtTokenKind(tok, KindSyntactic, format, args...)
}

// errorAtTokenKind is errorAtToken with an explicit Kind, used by callers
// (e.g. parser_pragma.go) whose errors belong to a more specific taxonomy
// bucket than the generic syntactic default.
func (p *Parser) errorAtTokenKind(tok Token, kind Kind, format string, args ...interface{}) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	msg := fmt.Sprintf(format, args...)
	if p.firstErr == nil {
		p.firstErr = newErr(kind, tok.Filename, tok.Line, "%s", msg)
	}
	glog.Errorf("%s:%d: %s", tok.Filename, tok.Line, msg)
}

// synchronize consumes tokens until a statement-start token is found,
// clearing panic mode.
func (p *Parser) synchronize() {
	p.panicMode = false
	for !p.check(TOKEN_EOF) {
		if statementStartKinds[p.current.Kind] {
			return
		}
		p.advance()
	}
}
