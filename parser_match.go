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

// parser_match.go parses match expressions and their arms.

// parseMatchExpr parses `match subject => arm*`, where each arm is either
// `else => body` or a comma-separated pattern list followed by `=> body`.
func (p *Parser) parseMatchExpr() Expr {
	tok := p.current
	p.advance() // 'match'
	subject := p.expression()

	p.consume(TOKEN_ARROW, "expected '=>' after match subject")
	p.consume(TOKEN_NEWLINE, "expected newline after match '=>'")
	p.consume(TOKEN_INDENT, "expected indented match arms")

	var arms []MatchArm
	for !p.check(TOKEN_DEDENT) && !p.check(TOKEN_EOF) {
		if p.match(TOKEN_NEWLINE) {
			continue
		}
		arms = append(arms, p.matchArm())
	}
	p.match(TOKEN_DEDENT)

	return &MatchExpr{ExprBase: ExprBase{Tok: cloneTok(p.arena, tok)}, Subject: subject, Arms: arms}
}

func (p *Parser) matchArm() MatchArm {
	if p.match(TOKEN_ELSE) {
		body := p.blockStmt()
		return MatchArm{Else: true, Body: body}
	}
	var patterns []Expr
	for {
		patterns = append(patterns, p.expression())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	body := p.blockStmt()
	return MatchArm{Patterns: patterns, Body: body}
}
