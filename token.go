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

// TokenKind is the closed set of lexical atom kinds the lexer produces.
type TokenKind int

const (
	TOKEN_EOF TokenKind = iota
	TOKEN_ERROR
	TOKEN_NEWLINE
	TOKEN_INDENT
	TOKEN_DEDENT
	TOKEN_COMMENT

	TOKEN_IDENT
	TOKEN_INT
	TOKEN_LONG
	TOKEN_UINT
	TOKEN_UINT32
	TOKEN_INT32
	TOKEN_BYTE
	TOKEN_FLOAT
	TOKEN_DOUBLE
	TOKEN_CHAR
	TOKEN_STRING
	TOKEN_INTERP_STRING
	TOKEN_BOOL

	// punctuation / operators
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACE
	TOKEN_RBRACE
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COMMA
	TOKEN_DOT
	TOKEN_COLON
	TOKEN_SEMICOLON
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_AMP
	TOKEN_PIPE
	TOKEN_CARET
	TOKEN_TILDE
	TOKEN_BANG
	TOKEN_ASSIGN
	TOKEN_EQ
	TOKEN_NE
	TOKEN_LT
	TOKEN_LE
	TOKEN_GT
	TOKEN_GE
	TOKEN_SHL
	TOKEN_SHR
	TOKEN_PLUS_EQ
	TOKEN_MINUS_EQ
	TOKEN_STAR_EQ
	TOKEN_SLASH_EQ
	TOKEN_PERCENT_EQ
	TOKEN_AMP_EQ
	TOKEN_PIPE_EQ
	TOKEN_CARET_EQ
	TOKEN_SHL_EQ
	TOKEN_SHR_EQ
	TOKEN_AND
	TOKEN_OR
	TOKEN_INC
	TOKEN_DEC
	TOKEN_ARROW
	TOKEN_RANGE
	TOKEN_SPREAD

	// keywords
	TOKEN_VAR
	TOKEN_FN
	TOKEN_STRUCT
	TOKEN_TYPE
	TOKEN_RETURN
	TOKEN_IF
	TOKEN_ELSE
	TOKEN_WHILE
	TOKEN_FOR
	TOKEN_IN
	TOKEN_BREAK
	TOKEN_CONTINUE
	TOKEN_IMPORT
	TOKEN_AS
	TOKEN_REF
	TOKEN_VAL
	TOKEN_SHARED
	TOKEN_PRIVATE
	TOKEN_STATIC
	TOKEN_SYNC
	TOKEN_NATIVE
	TOKEN_LOCK
	TOKEN_MATCH
	TOKEN_TYPEOF
	TOKEN_SIZEOF
	TOKEN_IS
	TOKEN_NIL
	TOKEN_TRUE
	TOKEN_FALSE
	TOKEN_PRAGMA
)

var keywords = map[string]TokenKind{
	"var":      TOKEN_VAR,
	"fn":       TOKEN_FN,
	"struct":   TOKEN_STRUCT,
	"type":     TOKEN_TYPE,
	"return":   TOKEN_RETURN,
	"if":       TOKEN_IF,
	"else":     TOKEN_ELSE,
	"while":    TOKEN_WHILE,
	"for":      TOKEN_FOR,
	"in":       TOKEN_IN,
	"break":    TOKEN_BREAK,
	"continue": TOKEN_CONTINUE,
	"import":   TOKEN_IMPORT,
	"as":       TOKEN_AS,
	"ref":      TOKEN_REF,
	"val":      TOKEN_VAL,
	"shared":   TOKEN_SHARED,
	"private":  TOKEN_PRIVATE,
	"static":   TOKEN_STATIC,
	"sync":     TOKEN_SYNC,
	"native":   TOKEN_NATIVE,
	"lock":     TOKEN_LOCK,
	"match":    TOKEN_MATCH,
	"typeof":   TOKEN_TYPEOF,
	"sizeof":   TOKEN_SIZEOF,
	"is":       TOKEN_IS,
	"nil":      TOKEN_NIL,
	"true":     TOKEN_TRUE,
	"false":    TOKEN_FALSE,
	"and":      TOKEN_AND,
	"or":       TOKEN_OR,
}

// LiteralValue decodes a literal token's payload. Exactly one field is
// meaningful, selected by the owning Token's Kind.
type LiteralValue struct {
	IntValue    int64
	DoubleValue float64
	CharValue   byte
	StringValue string
	BoolValue   bool
}

// Token is a source-range record. Tokens are value types: cloning is
// copying the struct, with Start/Filename already arena-owned so the copy
// never needs to re-duplicate anything.
type Token struct {
	Kind     TokenKind
	Start    string // arena-owned lexeme text
	Line     int
	Filename string
	Literal  LiteralValue
}

// Lexeme returns the raw source text of the token.
func (t Token) Lexeme() string { return t.Start }

// Clone returns a value copy of t. Start and Filename are already
// arena-owned strings (Go strings are immutable and share backing array on
// copy), so Clone never needs the Arena: it exists to make the "tokens are
// value types, cloned by copying the struct" invariant explicit at call
// sites that care about it.
func (t Token) Clone() Token { return t }
