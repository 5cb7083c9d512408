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

// parser_pragma.go implements pragma collection: WYSIWYG verbatim capture
// of the pragma payload, and the pack/alias single-shot carry-over into
// the next struct/native declaration.

// pragmaStmt parses `#pragma KIND VALUE`, capturing VALUE verbatim
// (WYSIWYG) straight from the lexer's byte stream rather than through the
// token stream, since ordinary tokenisation would mangle `<math.h>` or a
// quoted alias.
func (p *Parser) pragmaStmt() Stmt {
	tok := p.current
	raw := p.lexer.RestOfLine()
	p.advance() // '#pragma' -> whatever follows the captured line (NEWLINE/DEDENT/EOF)

	keyword, rest := splitPragmaWord(raw)

	stmt := &PragmaStmt{StmtBase: StmtBase{Tok: cloneTok(p.arena, tok)}, SourceDir: dirOf(p.filename)}

	switch keyword {
	case "include":
		if isOldQuotedInclude(rest) {
			suggested := strings.Trim(rest, `"`)
			diff := PragmaMigrationDiff(rest, suggested)
			p.errorAtTokenKind(tok, KindPragma, "old quoted #pragma include form %q is no longer supported; write #pragma include %s\n%s", rest, suggested, diff)
			return stmt
		}
		stmt.Kind = PragmaInclude
		stmt.RawValue = rest
	case "link":
		stmt.Kind = PragmaLink
		stmt.RawValue = rest
	case "source":
		stmt.Kind = PragmaSource
		stmt.RawValue = rest
	case "pack":
		stmt.Kind = PragmaPack
		stmt.RawValue = rest
		if strings.TrimSpace(rest) == "(1)" {
			p.packAlignment = 1
		} else {
			p.packAlignment = 0
		}
	case "alias":
		stmt.Kind = PragmaAlias
		stmt.RawValue = rest
		p.pendingAlias = strings.Trim(strings.TrimSpace(rest), `"`)
	default:
		p.errorAtToken(tok, "unrecognised #pragma %q", keyword)
	}

	return stmt
}

// splitPragmaWord splits raw ("include <math.h>") into its leading bare
// word and the remainder, trimmed.
func splitPragmaWord(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	i := strings.IndexAny(raw, " \t(")
	if i < 0 {
		return raw, ""
	}
	if raw[i] == '(' {
		return raw[:i], strings.TrimSpace(raw[i:])
	}
	return raw[:i], strings.TrimSpace(raw[i+1:])
}

// isOldQuotedInclude detects the rejected legacy form where an angle-
// bracket include was wrapped in quotes: #pragma include "<math.h>".
func isOldQuotedInclude(value string) bool {
	return strings.HasPrefix(value, `"<`) && strings.HasSuffix(value, `>"`)
}

func dirOf(filename string) string {
	i := strings.LastIndexAny(filename, "/\\")
	if i < 0 {
		return "."
	}
	return filename[:i]
}
