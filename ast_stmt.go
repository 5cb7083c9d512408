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

// Stmt is the closed sum of statement variants.
type Stmt interface {
	stmtNode()
	Base() *StmtBase
}

// StmtBase is embedded by every Stmt variant: the originating token and
// any leading `//` comments the parser collected for it.
type StmtBase struct {
	Tok             Token
	LeadingComments []string
}

func (b *StmtBase) Base() *StmtBase { return b }

// FnModifier is the function/variable-declaration modifier set.
type FnModifier int

const (
	ModDefault FnModifier = iota
	ModShared
	ModPrivate
)

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// VarDeclStmt is `var name [: type] [as val|ref] [sync] = init`.
type VarDeclStmt struct {
	StmtBase
	Name   string
	Type   Type // nil if inferred
	Init   Expr // nil if uninitialised
	Qual   MemQual
	Sync   bool
	Static bool
}

func (*VarDeclStmt) stmtNode() {}

// Param is one function/lambda parameter.
type Param struct {
	Name string
	Type Type // nil if inferred (lambda parameters only)
	Qual MemQual
}

// FnDecl is a function declaration. It is also embedded by struct methods
// (see ast_type.go's StructMethod).
type FnDecl struct {
	StmtBase
	Name          string
	Params        []Param
	ReturnType    Type
	Body          []Stmt
	Modifier      FnModifier
	IsNative      bool
	IsVariadic    bool
	CAlias        string
	HasArenaParam bool
	HasBody       bool
}

func (*FnDecl) stmtNode() {}

// StructDecl is a struct declaration; Type is the fully populated
// StructType once parsing of the body completes (it starts out
// field/method-less so self-referential struct literals in method bodies
// resolve).
type StructDecl struct {
	StmtBase
	Name string
	Type *StructType
}

func (*StructDecl) stmtNode() {}

// TypeAliasDecl is `type Name = T`.
type TypeAliasDecl struct {
	StmtBase
	Name string
	Type Type
}

func (*TypeAliasDecl) stmtNode() {}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	StmtBase
	Value Expr // nil for bare `return`
}

func (*ReturnStmt) stmtNode() {}

// BlockModifier records the BLOCK_SHARED/BLOCK_PRIVATE enum the AST still
// carries for round-tripping old pretty-printer output; the parser itself
// always produces BlockNone since `shared`/`private` on blocks is
// rejected.
type BlockModifier int

const (
	BlockNone BlockModifier = iota
	BlockShared
	BlockPrivate
)

// BlockStmt is `{ stmt* }` (an indented statement sequence).
type BlockStmt struct {
	StmtBase
	Stmts    []Stmt
	Modifier BlockModifier
}

func (*BlockStmt) stmtNode() {}

// IfStmt is `if cond => then [else => else]`.
type IfStmt struct {
	StmtBase
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil, *BlockStmt, or another *IfStmt (else-if chain)
}

func (*IfStmt) stmtNode() {}

// WhileStmt is `while cond => body`.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body *BlockStmt
}

func (*WhileStmt) stmtNode() {}

// ForStmt is a classic C-style `for init; cond; post => body`. Init/Cond/
// Post are nil when the corresponding clause is omitted.
type ForStmt struct {
	StmtBase
	Init Stmt
	Cond Expr
	Post Stmt
	Body *BlockStmt
}

func (*ForStmt) stmtNode() {}

// ForEachStmt is `for name in iterable => body`.
type ForEachStmt struct {
	StmtBase
	VarName  string
	Iterable Expr
	Body     *BlockStmt
}

func (*ForEachStmt) stmtNode() {}

// BreakStmt is `break`.
type BreakStmt struct{ StmtBase }

func (*BreakStmt) stmtNode() {}

// ContinueStmt is `continue`.
type ContinueStmt struct{ StmtBase }

func (*ContinueStmt) stmtNode() {}

// LockStmt is `lock(expr) => body`.
type LockStmt struct {
	StmtBase
	Guard Expr
	Body  *BlockStmt
}

func (*LockStmt) stmtNode() {}

// ImportStmt is `import "module" [as namespace]`. ImportedStmts/Count are
// populated by the ImportResolver for namespaced imports the type checker
// and code generator still need to see; direct imports instead disappear
// (their statements are merged in place and the ImportStmt node itself is
// removed from the Module).
type ImportStmt struct {
	StmtBase
	ModulePath          string
	Namespace           string // "" for a direct import
	ResolvedPath         string
	ImportedStmts        []Stmt
	ImportedCount        int
	NamespaceCodeEmitted bool
	AlsoImportedDirectly bool
}

func (*ImportStmt) stmtNode() {}

// PragmaKind enumerates the recognised #pragma directives.
type PragmaKind int

const (
	PragmaInclude PragmaKind = iota
	PragmaLink
	PragmaSource
	PragmaPack
	PragmaAlias
)

// PragmaStmt carries a pragma's raw, WYSIWYG verbatim value (everything
// from the pragma keyword to the next newline). SourceDir anchors a
// PragmaSource's relative path to the directory of the file the pragma
// actually appeared in, which may differ from the root source file's
// directory once the pragma arrived via an import.
type PragmaStmt struct {
	StmtBase
	Kind      PragmaKind
	RawValue  string
	SourceDir string
}

func (*PragmaStmt) stmtNode() {}
