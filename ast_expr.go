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

// Expr is the closed sum of expression variants. Every concrete Expr
// embeds ExprBase, which carries the slots every variant needs: the
// originating token (for diagnostics), the type-checker-filled ExprType,
// and EscapeInfo set by escape analysis, the external-collaborator
// writeback slots.
type Expr interface {
	exprNode()
	Base() *ExprBase
}

// EscapeInfo is the two-boolean record escape analysis fills in.
type EscapeInfo struct {
	Escapes       bool
	HeapAllocated bool
}

// ExprBase is embedded by every Expr variant.
type ExprBase struct {
	Tok      Token
	ExprType Type // nil until the external type checker runs
	Escape   EscapeInfo
}

func (b *ExprBase) Base() *ExprBase { return b }

// BinaryOp / UnaryOp enumerate the operator set used by arithmetic,
// logical, comparison, and unary expressions.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
)

// BinaryExpr is a binary arithmetic/logical/comparison expression.
type BinaryExpr struct {
	ExprBase
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is a prefix unary expression (!, -, ~).
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// LiteralExpr is a scalar literal. IsInterpolated is true only for the
// literal string segments inside an InterpolatedExpr's Parts; an ordinary
// literal has it false.
type LiteralExpr struct {
	ExprBase
	Value          LiteralValue
	LiteralKind    TokenKind
	IsInterpolated bool
}

func (*LiteralExpr) exprNode() {}

// VarExpr references a variable/function/type by name.
type VarExpr struct {
	ExprBase
	Name string
}

func (*VarExpr) exprNode() {}

// AssignExpr is `lhs = rhs` or a compound assignment (`+=` etc).
type AssignExpr struct {
	ExprBase
	Target   Expr
	Value    Expr
	Compound BinaryOp
	IsCompound bool
}

func (*AssignExpr) exprNode() {}

// IndexAssignExpr is `a[i] = v`.
type IndexAssignExpr struct {
	ExprBase
	Array Expr
	Index Expr
	Value Expr
}

func (*IndexAssignExpr) exprNode() {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// StaticCallExpr is `Type.method(args...)`.
type StaticCallExpr struct {
	ExprBase
	TypeName string
	Method   string
	Args     []Expr
}

func (*StaticCallExpr) exprNode() {}

// ArrayLiteralExpr is `[e1, e2, ...]`.
type ArrayLiteralExpr struct {
	ExprBase
	Elements []Expr
}

func (*ArrayLiteralExpr) exprNode() {}

// ArrayAccessExpr is `a[i]`.
type ArrayAccessExpr struct {
	ExprBase
	Array Expr
	Index Expr
}

func (*ArrayAccessExpr) exprNode() {}

// ArraySliceExpr is `a[start..end:step]`; Start/End/Step are nil when
// omitted.
type ArraySliceExpr struct {
	ExprBase
	Array            Expr
	Start, End, Step Expr
}

func (*ArraySliceExpr) exprNode() {}

// RangeExpr is `start..end`.
type RangeExpr struct {
	ExprBase
	Start, End Expr
}

func (*RangeExpr) exprNode() {}

// SpreadExpr is `..a`.
type SpreadExpr struct {
	ExprBase
	Operand Expr
}

func (*SpreadExpr) exprNode() {}

// IncDecExpr is postfix `++`/`--`.
type IncDecExpr struct {
	ExprBase
	Operand   Expr
	IsIncr    bool
}

func (*IncDecExpr) exprNode() {}

// InterpPart is one part of an interpolated string: either a literal
// string segment (Expr is a *LiteralExpr, Format empty) or a code region
// (Expr is the re-parsed sub-expression, Format the optional `:FMT`).
type InterpPart struct {
	Expr   Expr
	Format string
}

// InterpolatedExpr is a `$"..."` literal, flattened into parts.
type InterpolatedExpr struct {
	ExprBase
	Parts []InterpPart
}

func (*InterpolatedExpr) exprNode() {}

// MemberAccessExpr is `obj.field`. FieldIndex is filled by the external
// type checker.
type MemberAccessExpr struct {
	ExprBase
	Object     Expr
	Field      string
	FieldIndex int
}

func (*MemberAccessExpr) exprNode() {}

// MemberAssignExpr is `obj.field = v`.
type MemberAssignExpr struct {
	ExprBase
	Object     Expr
	Field      string
	FieldIndex int
	Value      Expr
}

func (*MemberAssignExpr) exprNode() {}

// LambdaExpr is a closure literal. Exactly one of Body/BodyStmt is set.
type LambdaExpr struct {
	ExprBase
	Params        []Param
	ReturnType    Type
	Modifier      FnModifier
	Body          Expr // expression-bodied lambda
	BodyStmt      Stmt // statement-bodied lambda (always a *BlockStmt)
	IsNative      bool
	CapturedVars  []string // filled by the external type checker
	CapturedTypes []Type   // filled by the external type checker
}

func (*LambdaExpr) exprNode() {}

// SizedArrayExpr is `T[n]` with an optional default-value expression.
type SizedArrayExpr struct {
	ExprBase
	Element Type
	Size    Expr
	Default Expr
}

func (*SizedArrayExpr) exprNode() {}

// ThreadSpawnExpr is `&call()`.
type ThreadSpawnExpr struct {
	ExprBase
	Call Expr
}

func (*ThreadSpawnExpr) exprNode() {}

// ThreadSyncExpr is `handle!`.
type ThreadSyncExpr struct {
	ExprBase
	Handle Expr
}

func (*ThreadSyncExpr) exprNode() {}

// SyncListExpr is `[h1, h2, ...]` used as a bulk-sync target.
type SyncListExpr struct {
	ExprBase
	Handles []Expr
}

func (*SyncListExpr) exprNode() {}

// MemQualCastExpr is `expr as val` / `expr as ref`.
type MemQualCastExpr struct {
	ExprBase
	Operand Expr
	Qual    MemQual
}

func (*MemQualCastExpr) exprNode() {}

// TypeofExpr is `typeof expr`.
type TypeofExpr struct {
	ExprBase
	Operand Expr
}

func (*TypeofExpr) exprNode() {}

// IsExpr is `expr is T`.
type IsExpr struct {
	ExprBase
	Operand Expr
	Type    Type
}

func (*IsExpr) exprNode() {}

// AsCastExpr is `expr as T` (type cast form; distinct from MemQualCastExpr
// which casts to val/ref, not to a named type).
type AsCastExpr struct {
	ExprBase
	Operand Expr
	Type    Type
}

func (*AsCastExpr) exprNode() {}

// FieldInit is one `name: value` pair in a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLiteralExpr is `T{name: value, ...}`.
type StructLiteralExpr struct {
	ExprBase
	TypeName string
	Fields   []FieldInit
}

func (*StructLiteralExpr) exprNode() {}

// SizeofExpr is `sizeof T` or `sizeof expr`. Exactly one of OperandType /
// Operand is set.
type SizeofExpr struct {
	ExprBase
	OperandType Type
	Operand     Expr
}

func (*SizeofExpr) exprNode() {}

// MatchArm is one arm of a MatchExpr: either a pattern list or Else=true.
type MatchArm struct {
	Patterns []Expr
	Else     bool
	Body     Stmt // always a *BlockStmt, even for single-statement arms
}

// MatchExpr is `match subject => arm*`.
type MatchExpr struct {
	ExprBase
	Subject Expr
	Arms    []MatchArm
}

func (*MatchExpr) exprNode() {}
