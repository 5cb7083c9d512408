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

// parser_control.go parses the control-flow statement forms: if/while/for/
// for-each/lock/return, all of which share the `=>`-introduced body grammar
// implemented by blockStmt in parser_decl.go.

func (p *Parser) ifStmt() Stmt {
	tok := p.current
	p.advance() // 'if'
	cond := p.expression()
	then := p.blockStmt()

	var elseBranch Stmt
	if p.check(TOKEN_NEWLINE) {
		// Look past a single newline for a same-indent 'else'; the lexer
		// does not emit INDENT/DEDENT around the newline since 'else'
		// sits at the same column as 'if'.
		save := p.current
		p.advance()
		if p.check(TOKEN_ELSE) {
			elseBranch = p.elseClause()
		} else {
			p.pushback(save)
		}
	} else if p.check(TOKEN_ELSE) {
		elseBranch = p.elseClause()
	}

	return &IfStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) elseClause() Stmt {
	p.advance() // 'else'
	if p.check(TOKEN_IF) {
		return p.ifStmt()
	}
	return p.blockStmt()
}

// pushback restores saved as the current token, stashing the token that
// was current into the parser's one-slot lookahead buffer so the next
// advance() re-delivers it instead of pulling from the lexer. Used by
// ifStmt's else-detection and by the postfix-chain continuation wrap.
func (p *Parser) pushback(saved Token) {
	cur := p.current
	p.peeked = &cur
	p.current = saved
}

func (p *Parser) whileStmt() Stmt {
	tok := p.current
	p.advance() // 'while'
	cond := p.expression()
	body := p.blockStmt()
	return &WhileStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Cond: cond, Body: body}
}

// forOrForEachStmt distinguishes `for name in iterable => body` from
// classic `for init; cond; post => body` by looking ahead for 'in' after a
// single identifier.
func (p *Parser) forOrForEachStmt() Stmt {
	tok := p.current
	p.advance() // 'for'

	if p.check(TOKEN_IDENT) {
		name := p.current
		savedLexer := *p.lexer
		savedLexer.indents = append([]int(nil), p.lexer.indents...)
		savedCurrent := p.current
		p.advance()
		if p.check(TOKEN_IN) {
			p.advance()
			iterable := p.expression()
			body := p.blockStmt()
			return &ForEachStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, VarName: name.Lexeme(), Iterable: iterable, Body: body}
		}
		// Not a for-each: restore lexer/current and fall through to the
		// classic C-style form, re-parsing the identifier as an init stmt.
		*p.lexer = savedLexer
		p.current = savedCurrent
	}

	var init Stmt
	if !p.check(TOKEN_SEMICOLON) {
		init, _ = p.declaration()
	} else {
		p.advance()
	}
	var cond Expr
	if !p.check(TOKEN_SEMICOLON) {
		cond = p.expression()
	}
	p.consume(TOKEN_SEMICOLON, "expected ';' after for-condition")
	var post Stmt
	if !p.check(TOKEN_ARROW) {
		postTok := p.current
		postExpr := p.expression()
		post = &ExprStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, postTok)}, Expr: postExpr}
	}
	body := p.blockStmt()
	return &ForStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) returnStmt() Stmt {
	tok := p.current
	p.advance() // 'return'
	var value Expr
	if !p.check(TOKEN_NEWLINE) && !p.check(TOKEN_DEDENT) && !p.check(TOKEN_EOF) {
		value = p.expression()
	}
	p.consumeStmtEnd()
	return &ReturnStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Value: value}
}

func (p *Parser) lockStmt() Stmt {
	tok := p.current
	p.advance() // 'lock'
	p.consume(TOKEN_LPAREN, "expected '(' after 'lock'")
	guard := p.expression()
	p.consume(TOKEN_RPAREN, "expected ')' after lock guard")
	body := p.blockStmt()
	return &LockStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Guard: guard, Body: body}
}
