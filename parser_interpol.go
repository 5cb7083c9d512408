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

import "strings"

// parser_interpol.go implements interpolated-string sub-lexing and
// sub-parsing, plus lambda literals.

// --- interpolated strings ---------------------------------------------------

// interpRawPart is one byte-scanned segment of an interpolated string's
// body before sub-parsing: either a literal run or a `{expr[:fmt]}` code
// region, still in raw source form.
type interpRawPart struct {
	text   string
	isCode bool
}

// parseInterpolatedString flattens tok's captured `$"..."` body into a
// flat InterpolatedExpr part list: literal segments become LiteralExpr
// nodes and `{...}` code regions are re-lexed/re-parsed by a fresh
// sub-parser sharing the outer symbol table.
func (p *Parser) parseInterpolatedString(tok Token) Expr {
	raw := scanInterpParts(tok.Literal.StringValue)
	parts := make([]InterpPart, 0, len(raw))
	for _, r := range raw {
		if r.isCode {
			exprSrc, format := splitInterpFormat(r.text)
			sub := newParserState(p.arena, p.symtab, strings.TrimSpace(exprSrc), tok.Filename, p.importCtx)
			e := sub.expression()
			parts = append(parts, InterpPart{Expr: e, Format: strings.TrimSpace(format)})
			continue
		}
		lit := NewLiteralExpr(p.arena, TOKEN_STRING, LiteralValue{StringValue: unescapeInterpLiteral(r.text)}, tok)
		lit.IsInterpolated = true
		parts = append(parts, InterpPart{Expr: lit})
	}
	return &InterpolatedExpr{ExprBase: ExprBase{Tok: cloneTok(p.arena, tok)}, Parts: parts}
}

// scanInterpParts walks body byte-by-byte, flushing literal runs and
// extracting `{...}` code regions. `{{`/`}}` are literal-brace escapes.
// Nesting across `(`, `{`, and string literals (so a code region may
// itself contain a nested struct literal or string with braces) is
// tracked with a small depth counter plus an in-string flag.
func scanInterpParts(body string) []interpRawPart {
	var parts []interpRawPart
	var lit strings.Builder
	n := len(body)
	i := 0
	for i < n {
		c := body[i]
		switch {
		case c == '\\' && i+1 < n:
			lit.WriteByte(c)
			lit.WriteByte(body[i+1])
			i += 2
		case c == '{' && i+1 < n && body[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < n && body[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			if lit.Len() > 0 {
				parts = append(parts, interpRawPart{text: lit.String()})
				lit.Reset()
			}
			start := i + 1
			j := start
			depth := 1
			inString := false
			for j < n && depth > 0 {
				rc := body[j]
				switch {
				case rc == '\\' && j+1 < n:
					j += 2
					continue
				case rc == '"':
					inString = !inString
					j++
				case !inString && (rc == '{' || rc == '('):
					depth++
					j++
				case !inString && (rc == '}' || rc == ')'):
					depth--
					j++
				default:
					j++
				}
			}
			parts = append(parts, interpRawPart{text: body[start : j-1], isCode: true})
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	if lit.Len() > 0 {
		parts = append(parts, interpRawPart{text: lit.String()})
	}
	return parts
}

// splitInterpFormat splits a code region's raw text on its first
// top-level ':' (outside strings/nested brackets), separating the
// expression source from an optional format specifier.
func splitInterpFormat(region string) (expr string, format string) {
	depth := 0
	inString := false
	for i := 0; i < len(region); i++ {
		c := region[i]
		switch {
		case c == '\\' && i+1 < len(region):
			i++
		case c == '"':
			inString = !inString
		case !inString && (c == '(' || c == '{' || c == '['):
			depth++
		case !inString && (c == ')' || c == '}' || c == ']'):
			depth--
		case !inString && depth == 0 && c == ':':
			return region[:i], region[i+1:]
		}
	}
	return region, ""
}

// unescapeInterpLiteral decodes the standard escapes the lexer's own
// scanString recognises, applied to a literal segment of an interpolated
// string's body (the lexer captured that body verbatim, escapes intact).
func unescapeInterpLiteral(s string) string {
	var sb strings.Builder
	b := []byte(s)
	for i := 0; i < len(b); {
		if b[i] == '\\' {
			i++
			pos := i
			esc, ok := decodeEscape(b, &pos)
			if !ok {
				break
			}
			sb.WriteByte(esc)
			i = pos
			continue
		}
		sb.WriteByte(b[i])
		i++
	}
	return sb.String()
}

// --- lambdas -------------------------------------------------------------

// parseLambda parses `fn(params) [: ret] => (expr | block)`. The arrow is
// required even for a zero-parameter lambda. A lambda parsed while inside
// a native function's body inherits nativeness.
func (p *Parser) parseLambda() Expr {
	tok := p.current
	p.advance() // 'fn'

	isNative := p.inNativeFunction > 0

	params, _ := p.parseParamList()
	var ret Type
	if p.match(TOKEN_COLON) {
		ret = p.parseType()
	}

	arrowTok := p.current
	if !p.match(TOKEN_ARROW) {
		p.errorAtCurrent("expected '=>' in lambda (required even for a zero-parameter lambda)")
		return &LambdaExpr{ExprBase: ExprBase{Tok: cloneTok(p.arena, tok)}, Params: params, ReturnType: ret, IsNative: isNative}
	}

	lambda := &LambdaExpr{ExprBase: ExprBase{Tok: cloneTok(p.arena, tok)}, Params: params, ReturnType: ret, IsNative: isNative}

	if isNative {
		p.inNativeFunction++
	}
	if canStartExpression(p.current.Kind) {
		lambda.Body = p.expression()
	} else {
		lambda.BodyStmt = p.blockBodyAfterArrow(arrowTok)
	}
	if isNative {
		p.inNativeFunction--
	}
	return lambda
}
