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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	arena := NewArena()
	lex := NewLexer(arena, src, "test.sn")
	var toks []Token
	for {
		tok := lex.NextToken()
		toks = append(toks, tok)
		if tok.Kind == TOKEN_EOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerIndentationBalance(t *testing.T) {
	// Every INDENT emitted on entry to a deeper block must be matched by
	// exactly one DEDENT back to the enclosing level.
	src := "fn main()\n  var x = 1\n  if x\n    var y = 2\n  return x\n"
	toks := lexAll(t, src)

	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case TOKEN_INDENT:
			depth++
		case TOKEN_DEDENT:
			depth--
			require.GreaterOrEqual(t, depth, 0, "DEDENT must never drop below the top level")
		}
	}
	assert.Equal(t, 0, depth, "every INDENT must be balanced by a DEDENT")
}

func TestLexerBlankAndCommentLinesDoNotShiftIndent(t *testing.T) {
	src := "fn main()\n  var x = 1\n\n  // a comment at block indent\n  var y = 2\n"
	toks := lexAll(t, src)
	indentCount, dedentCount := 0, 0
	for _, tok := range toks {
		if tok.Kind == TOKEN_INDENT {
			indentCount++
		}
		if tok.Kind == TOKEN_DEDENT {
			dedentCount++
		}
	}
	assert.Equal(t, 1, indentCount)
	assert.Equal(t, 1, dedentCount)
}

func TestLexerNumberSuffixes(t *testing.T) {
	cases := []struct {
		src  string
		kind TokenKind
	}{
		{"42", TOKEN_INT},
		{"42L", TOKEN_LONG},
		{"42U", TOKEN_UINT},
		{"42U32", TOKEN_UINT32},
		{"42I32", TOKEN_INT32},
		{"42b", TOKEN_BYTE},
		{"3.14", TOKEN_DOUBLE},
		{"3.14f", TOKEN_FLOAT},
		{"0xFF", TOKEN_INT},
	}
	for _, c := range cases {
		toks := lexAll(t, c.src)
		require.Len(t, toks, 2, "one literal token plus EOF for %q", c.src)
		assert.Equal(t, c.kind, toks[0].Kind, "for %q", c.src)
	}
}

func TestLexerDeterministic(t *testing.T) {
	// Tokenising the same source twice must yield the same kind sequence.
	src := "fn add(a: int, b: int): int\n  return a + b\n"
	first := kinds(lexAll(t, src))
	second := kinds(lexAll(t, src))
	assert.Equal(t, first, second)
}

func TestLexerInterpolatedStringCapturesVerbatim(t *testing.T) {
	toks := lexAll(t, `$"hello {name:>10} and {{literal braces}}"`)
	require.Equal(t, TOKEN_INTERP_STRING, toks[0].Kind)
	assert.Contains(t, toks[0].Literal.StringValue, "{name:>10}")
	assert.Contains(t, toks[0].Literal.StringValue, "{{literal braces}}")
}

func TestLexerPragmaRestOfLineIsWYSIWYG(t *testing.T) {
	arena := NewArena()
	lex := NewLexer(arena, "#pragma include <math.h>\n", "test.sn")
	tok := lex.NextToken()
	require.Equal(t, TOKEN_PRAGMA, tok.Kind)
	// The rest-of-line capture bypasses tokenisation entirely, so a
	// header path like <math.h> round-trips untouched.
	rest := lex.RestOfLine()
	assert.Equal(t, "include <math.h>", rest)
}

func TestLexerOperatorLongestMatchFirst(t *testing.T) {
	toks := lexAll(t, "a <<= b")
	require.Len(t, toks, 4)
	assert.Equal(t, TOKEN_SHL_EQ, toks[1].Kind)
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	toks := lexAll(t, "native nativeThing")
	require.Len(t, toks, 3)
	assert.Equal(t, TOKEN_NATIVE, toks[0].Kind)
	assert.Equal(t, TOKEN_IDENT, toks[1].Kind)
}

func TestLexerBlockCommentOnlyLinesDoNotShiftIndent(t *testing.T) {
	// A line holding only a block comment, even at a column that matches
	// no indent-stack entry, must leave the indentation stack alone.
	src := "fn main()\n  var x = 1\n      /* interior note */\n  var y = 2\n"
	toks := lexAll(t, src)
	indentCount, dedentCount := 0, 0
	for _, tok := range toks {
		if tok.Kind == TOKEN_INDENT {
			indentCount++
		}
		if tok.Kind == TOKEN_DEDENT {
			dedentCount++
		}
		require.NotEqual(t, TOKEN_ERROR, tok.Kind)
	}
	assert.Equal(t, 1, indentCount)
	assert.Equal(t, 1, dedentCount)
}

func TestLexerBlockCommentFollowedByCodeIsNotCommentOnly(t *testing.T) {
	// A line that starts with a block comment and continues with code is
	// a code line as far as indentation is concerned.
	src := "fn main()\n  /* note */ var x = 1\n  var y = 2\n"
	toks := lexAll(t, src)
	indentCount := 0
	for _, tok := range toks {
		if tok.Kind == TOKEN_INDENT {
			indentCount++
		}
	}
	assert.Equal(t, 1, indentCount)
}
