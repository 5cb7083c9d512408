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

// parser_decl.go is the statement-dispatch entry point (declaration) plus
// var/fn/struct/type-alias declarations and the modifier keywords that may
// precede them.

// declaration is called once per top-level or block-level statement slot.
// It attaches any comments collected since the previous statement, then
// dispatches on the current token.
func (p *Parser) declaration() (Stmt, error) {
	comments := p.takeLeadingComments()
	var stmt Stmt

	switch {
	case p.check(TOKEN_IMPORT):
		stmt = p.importStmt()
	case p.check(TOKEN_PRAGMA):
		stmt = p.pragmaStmt()
	case p.check(TOKEN_STRUCT):
		stmt = p.structDecl(false)
	case p.check(TOKEN_TYPE):
		stmt = p.typeAliasDecl()
	case p.check(TOKEN_SHARED), p.check(TOKEN_PRIVATE), p.check(TOKEN_STATIC),
		p.check(TOKEN_SYNC), p.check(TOKEN_NATIVE):
		stmt = p.modifiedDecl()
	case p.check(TOKEN_VAR):
		stmt = p.varDeclStmt()
	case p.check(TOKEN_FN):
		stmt = p.fnDecl(ModDefault, false, false)
	case p.check(TOKEN_IF):
		stmt = p.ifStmt()
	case p.check(TOKEN_WHILE):
		stmt = p.whileStmt()
	case p.check(TOKEN_FOR):
		stmt = p.forOrForEachStmt()
	case p.check(TOKEN_RETURN):
		stmt = p.returnStmt()
	case p.check(TOKEN_BREAK):
		tok := p.current
		p.advance()
		p.consumeStmtEnd()
		stmt = &BreakStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}}
	case p.check(TOKEN_CONTINUE):
		tok := p.current
		p.advance()
		p.consumeStmtEnd()
		stmt = &ContinueStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}}
	case p.check(TOKEN_LOCK):
		stmt = p.lockStmt()
	default:
		stmt = p.exprStmt()
	}

	if stmt == nil {
		if p.panicMode {
			p.synchronize()
		}
		return nil, nil
	}
	stmt.Base().LeadingComments = comments
	return stmt, nil
}

// consumeStmtEnd requires the statement to end at NEWLINE, DEDENT, or EOF;
// it does not consume DEDENT/EOF, only NEWLINE, matching how callers expect
// to see the boundary token still current.
func (p *Parser) consumeStmtEnd() {
	if p.check(TOKEN_NEWLINE) {
		p.advance()
		return
	}
	if p.check(TOKEN_DEDENT) || p.check(TOKEN_EOF) {
		return
	}
	p.errorAtCurrent("expected end of statement")
}

func (p *Parser) exprStmt() Stmt {
	tok := p.current
	expr := p.expression()
	if expr == nil {
		return nil
	}
	p.consumeStmtEnd()
	return &ExprStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Expr: expr}
}

// --- modifiers --------------------------------------------------------

// modifiedDecl parses the modifier keywords (shared/private/static/sync/
// native, in any combination the grammar allows) leading up to a var or fn
// declaration.
func (p *Parser) modifiedDecl() Stmt {
	mod := ModDefault
	isStatic := false
	isSync := false
	isNative := false

loop:
	for {
		switch p.current.Kind {
		case TOKEN_SHARED:
			mod = ModShared
			p.advance()
		case TOKEN_PRIVATE:
			mod = ModPrivate
			p.advance()
		case TOKEN_STATIC:
			isStatic = true
			p.advance()
		case TOKEN_SYNC:
			isSync = true
			p.advance()
		case TOKEN_NATIVE:
			isNative = true
			p.advance()
		default:
			break loop
		}
	}

	if p.check(TOKEN_FN) {
		return p.fnDecl(mod, isNative, isStatic)
	}
	if p.check(TOKEN_VAR) {
		return p.varDeclWithModifiers(mod, isStatic, isSync)
	}
	if p.check(TOKEN_STRUCT) && isNative {
		return p.structDecl(true)
	}
	p.errorAtCurrent("expected 'var', 'fn', or 'struct' after modifier")
	return nil
}

// --- var declarations ---------------------------------------------------

func (p *Parser) varDeclStmt() Stmt {
	return p.varDeclWithModifiers(ModDefault, false, false)
}

func (p *Parser) varDeclWithModifiers(mod FnModifier, isStatic, isSync bool) Stmt {
	tok := p.current
	p.advance() // 'var'
	name, ok := p.consume(TOKEN_IDENT, "expected variable name")
	if !ok {
		return nil
	}

	var typ Type
	if p.match(TOKEN_COLON) {
		typ = p.parseType()
	}

	qual := MemQualNone
	if p.match(TOKEN_AS) {
		if p.match(TOKEN_VAL) {
			qual = MemQualVal
		} else if p.match(TOKEN_REF) {
			qual = MemQualRef
		} else {
			p.errorAtCurrent("expected 'val' or 'ref' after 'as'")
		}
	}

	sync := isSync
	if p.match(TOKEN_SYNC) {
		sync = true
	}

	var init Expr
	if p.match(TOKEN_ASSIGN) {
		init = p.expression()
	}
	p.consumeStmtEnd()

	decl := NewVarDeclStmt(p.arena, name.Lexeme(), typ, init, qual, tok)
	if decl == nil {
		return nil
	}
	decl.Sync = sync
	decl.Static = isStatic
	_ = mod // var declarations don't carry shared/private at this grain today
	return decl
}

// --- function declarations -----------------------------------------------

func (p *Parser) fnDecl(mod FnModifier, isNative, isStatic bool) Stmt {
	tok := p.current
	p.advance() // 'fn'

	var cAlias string
	if isNative && p.pendingAlias != "" {
		cAlias = p.pendingAlias
		p.pendingAlias = ""
	}

	name, ok := p.consume(TOKEN_IDENT, "expected function name")
	if !ok {
		return nil
	}

	params, variadic, hasArenaParam := p.parseParamListNative(isNative)

	var ret Type
	if p.match(TOKEN_COLON) {
		ret = p.parseType()
	}

	var body []Stmt
	hasBody := false
	if isNative {
		if p.check(TOKEN_ARROW) {
			body = p.nativeBody()
			hasBody = true
		} else {
			p.consumeStmtEnd()
		}
	} else {
		body = p.parseBlockBody()
		hasBody = true
	}

	fn := NewFnDecl(p.arena, name.Lexeme(), params, ret, body, mod, tok)
	if fn == nil {
		return nil
	}
	fn.IsNative = isNative
	fn.IsVariadic = variadic
	fn.CAlias = cAlias
	fn.HasArenaParam = hasArenaParam
	fn.HasBody = hasBody
	if isStatic {
		// Static is recorded on the owning StructMethod, not FnDecl, for
		// struct methods; for a bare top-level fn it has no effect beyond
		// the parse.
	}
	p.symtab.AddFunction(fn)
	return fn
}

// nativeBody parses the `=>`-introduced Sindarin implementation of a
// native function, either expression-bodied on the arrow's own line
// (wrapped in an implicit return, mirroring a lambda's expression body) or
// an indented block. Lambdas parsed while inside this body are marked
// native via p.inNativeFunction, same as a lambda nested in any other
// native context.
func (p *Parser) nativeBody() []Stmt {
	arrowTok := p.current
	p.advance() // '=>'

	p.inNativeFunction++
	defer func() { p.inNativeFunction-- }()

	if arrowTok.Line == p.current.Line && canStartExpression(p.current.Kind) {
		expr := p.expression()
		return []Stmt{&ReturnStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, arrowTok)}, Value: expr}}
	}

	block := p.blockBodyAfterArrow(arrowTok)
	return block.Stmts
}

// parseParamList parses `(name: Type [as val|ref], ...)`, returning the
// parameters and whether a trailing `...` marks the function variadic.
func (p *Parser) parseParamList() ([]Param, bool) {
	params, variadic, _ := p.parseParamListNative(false)
	return params, variadic
}

// parseParamListNative is parseParamList, plus (for native function
// declarations only) detection of a contextual `arena` first parameter:
// an identifier literally named "arena" not followed by ':' is consumed
// as the implicit-arena marker rather than as a normal parameter.
func (p *Parser) parseParamListNative(allowArenaParam bool) ([]Param, bool, bool) {
	p.consume(TOKEN_LPAREN, "expected '(' after function name")
	var params []Param
	variadic := false
	hasArenaParam := false

	// The contextual 'arena' marker is only distinguishable from a regular
	// parameter named "arena" once we see what follows it: ',' or ')'
	// means the marker, ':' means an ordinary typed parameter. Since the
	// parser has no multi-token lookahead, consume the identifier first
	// and fold the ordinary case into the loop below via pendingName.
	var pendingName Token
	havePendingName := false
	if allowArenaParam && p.check(TOKEN_IDENT) && p.current.Lexeme() == "arena" {
		tok := p.current
		p.advance()
		if p.check(TOKEN_COMMA) || p.check(TOKEN_RPAREN) {
			hasArenaParam = true
			if p.check(TOKEN_COMMA) {
				p.advance()
			}
		} else {
			pendingName = tok
			havePendingName = true
		}
	}

	if havePendingName || !p.check(TOKEN_RPAREN) {
		for {
			var pname Token
			if havePendingName {
				pname = pendingName
				havePendingName = false
			} else {
				if p.match(TOKEN_SPREAD) {
					variadic = true
					break
				}
				var ok bool
				pname, ok = p.consume(TOKEN_IDENT, "expected parameter name")
				if !ok {
					break
				}
			}
			var ptype Type
			if p.match(TOKEN_COLON) {
				ptype = p.parseType()
			}
			qual := MemQualNone
			if p.match(TOKEN_AS) {
				if p.match(TOKEN_VAL) {
					qual = MemQualVal
				} else if p.match(TOKEN_REF) {
					qual = MemQualRef
				}
			}
			params = append(params, Param{Name: pname.Lexeme(), Type: ptype, Qual: qual})
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
	}
	p.consume(TOKEN_RPAREN, "expected ')' after parameters")
	return params, variadic, hasArenaParam
}

// parseBlockBody parses `=> ` followed by either a single statement on the
// same line or an indented block, returning the flattened statement list.
func (p *Parser) parseBlockBody() []Stmt {
	block := p.blockStmt()
	if block == nil {
		return nil
	}
	return block.Stmts
}

// blockStmt parses the `=>`-introduced body shared by fn/if/while/for/lock,
// returning it as a *BlockStmt so callers needing the node (not just the
// flattened statements) can use it directly.
func (p *Parser) blockStmt() *BlockStmt {
	tok := p.current
	if !p.match(TOKEN_ARROW) {
		p.errorAtCurrent("expected '=>'")
		return NewBlockStmt(p.arena, nil, tok)
	}
	return p.blockBodyAfterArrow(tok)
}

// blockBodyAfterArrow parses the body that follows an already-consumed
// '=>': either a single same-line statement or an indented block. Shared
// by blockStmt (which consumes the arrow itself) and parseLambda (which
// needs to inspect what follows the arrow before deciding whether the
// lambda is expression- or statement-bodied).
func (p *Parser) blockBodyAfterArrow(tok Token) *BlockStmt {
	if p.match(TOKEN_NEWLINE) {
		if !p.check(TOKEN_INDENT) {
			// An empty body: `=>` followed by a blank line and immediate
			// dedent is legal (an empty block).
			return NewBlockStmt(p.arena, nil, tok)
		}
		p.advance() // INDENT
		var stmts []Stmt
		for !p.check(TOKEN_DEDENT) && !p.check(TOKEN_EOF) {
			if p.match(TOKEN_NEWLINE) {
				continue
			}
			stmt, err := p.declaration()
			if err != nil {
				break
			}
			if stmt != nil {
				stmts = append(stmts, stmt)
			}
		}
		p.match(TOKEN_DEDENT)
		return NewBlockStmt(p.arena, stmts, tok)
	}

	// Same-line single statement.
	stmt, _ := p.declaration()
	var stmts []Stmt
	if stmt != nil {
		stmts = append(stmts, stmt)
	}
	return NewBlockStmt(p.arena, stmts, tok)
}

// --- struct declarations -------------------------------------------------

func (p *Parser) structDecl(nativeMod bool) Stmt {
	tok := p.current
	p.advance() // 'struct'

	name, ok := p.consume(TOKEN_IDENT, "expected struct name")
	if !ok {
		return nil
	}

	var cAlias string
	if nativeMod && p.pendingAlias != "" {
		cAlias = p.pendingAlias
		p.pendingAlias = ""
	}

	passByRef := false
	if p.match(TOKEN_AS) {
		if !nativeMod {
			p.errorAtCurrent("'as ref'/'as val' on a struct requires 'native'")
		}
		if p.match(TOKEN_REF) {
			passByRef = true
		} else if !p.match(TOKEN_VAL) {
			p.errorAtCurrent("expected 'ref' or 'val' after 'as'")
		}
	}

	isPacked := p.packAlignment == 1
	p.packAlignment = 0 // single-shot carry, like pendingAlias
	st := NewStructType(p.arena, name.Lexeme(), nativeMod, isPacked, passByRef, cAlias)
	if st == nil {
		return nil
	}

	// Early registration: method bodies referring to the struct's own type
	// (self-referential struct literals, `T{...}` returned from a T
	// method) resolve against this incomplete entry, then get the real
	// field/method list filled in below.
	p.symtab.AddType(name.Lexeme(), st)

	p.consume(TOKEN_ARROW, "expected '=>' after struct name")
	p.consume(TOKEN_NEWLINE, "expected newline after '=>'")
	p.consume(TOKEN_INDENT, "expected indented struct body")

	for !p.check(TOKEN_DEDENT) && !p.check(TOKEN_EOF) {
		if p.match(TOKEN_NEWLINE) {
			continue
		}
		if p.check(TOKEN_PRAGMA) {
			p.pragmaStmt() // e.g. #pragma pack inside a struct body
			continue
		}
		isStaticMethod := p.match(TOKEN_STATIC)
		if p.check(TOKEN_FN) {
			fnStmt := p.fnDecl(ModDefault, false, isStaticMethod)
			fn, ok := fnStmt.(*FnDecl)
			if ok {
				p.symtab.RemoveFunction(fn.Name) // methods live on the struct, not globally
				st.Methods = append(st.Methods, StructMethod{Name: fn.Name, Fn: fn, IsStatic: isStaticMethod})
			}
			continue
		}
		fname, ok := p.consume(TOKEN_IDENT, "expected field name or method")
		if !ok {
			p.synchronize()
			continue
		}
		p.consume(TOKEN_COLON, "expected ':' after field name")
		ftype := p.parseType()
		var fAlias string
		if nativeMod && p.pendingAlias != "" {
			fAlias = p.pendingAlias
			p.pendingAlias = ""
		}
		st.Fields = append(st.Fields, StructField{Name: fname.Lexeme(), Type: ftype, CAlias: fAlias})
		p.consumeStmtEnd()
	}
	p.match(TOKEN_DEDENT)

	if err := st.ValidateMethodSet(); err != nil {
		p.errorAtToken(tok, "%v", err)
	}

	return &StructDecl{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Name: name.Lexeme(), Type: st}
}

// --- type alias declarations ----------------------------------------------

func (p *Parser) typeAliasDecl() Stmt {
	tok := p.current
	p.advance() // 'type'
	name, ok := p.consume(TOKEN_IDENT, "expected type name")
	if !ok {
		return nil
	}
	p.consume(TOKEN_ASSIGN, "expected '=' in type alias")
	t := p.parseType()
	p.consumeStmtEnd()
	p.symtab.AddType(name.Lexeme(), t)
	return &TypeAliasDecl{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, Name: name.Lexeme(), Type: t}
}

// --- type grammar ----------------------------------------------------------

// parseType parses a type expression: a primitive name, a previously
// declared struct/alias name, `T[]` (array), `T*` (pointer), or `fn(T, T)
// => T` (function type).
func (p *Parser) parseType() Type {
	var base Type

	switch {
	case p.check(TOKEN_FN):
		p.advance()
		p.consume(TOKEN_LPAREN, "expected '(' in function type")
		var params []Type
		if !p.check(TOKEN_RPAREN) {
			for {
				params = append(params, p.parseType())
				if !p.match(TOKEN_COMMA) {
					break
				}
			}
		}
		p.consume(TOKEN_RPAREN, "expected ')' in function type")
		var ret Type = &PrimitiveType{Kind: PRIM_VOID}
		if p.match(TOKEN_ARROW) {
			ret = p.parseType()
		}
		base = &FunctionType{Return: ret, Params: params}
	case p.check(TOKEN_IDENT):
		name := p.current.Lexeme()
		p.advance()
		if pt, ok := primitiveTypeNames[name]; ok {
			base = pt
		} else if t, ok := p.symtab.LookupType(name); ok {
			base = t
		} else {
			base = &OpaqueType{Name: name}
		}
	default:
		p.errorAtCurrent("expected type")
		return &OpaqueType{Name: "<error>"}
	}

	for {
		switch {
		case p.check(TOKEN_LBRACKET):
			p.advance()
			p.consume(TOKEN_RBRACKET, "expected ']' in array type")
			base = &ArrayType{Element: base}
		case p.check(TOKEN_STAR):
			p.advance()
			base = &PointerType{Base: base}
		default:
			return base
		}
	}
}
