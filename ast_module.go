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

// Module is a growable sequence of statements plus the filename it was
// parsed from. Initial capacity 8, doubled on overflow, never shrunk.
// Go's append already gives us this growth policy, so Module simply keeps
// the slice and never calls make() with a smaller capacity again.
type Module struct {
	Filename string
	Stmts    []Stmt
}

const moduleInitialCapacity = 8

// NewModule allocates an empty module for filename with room for
// moduleInitialCapacity statements before its first grow.
func NewModule(filename string) *Module {
	return &Module{
		Filename: filename,
		Stmts:    make([]Stmt, 0, moduleInitialCapacity),
	}
}

// Append adds stmt to the end of the module in source order.
func (m *Module) Append(stmt Stmt) {
	m.Stmts = append(m.Stmts, stmt)
}

// RemoveAt deletes the statement at index i, preserving order.
func (m *Module) RemoveAt(i int) {
	m.Stmts = append(m.Stmts[:i], m.Stmts[i+1:]...)
}

// InsertAllAt splices stmts into the module starting at index i, shifting
// the remainder right. Used by the import resolver to prepend an
// imported module's statements ahead of the statement that imported them,
// preserving that every declaration precedes its first use.
func (m *Module) InsertAllAt(i int, stmts []Stmt) {
	if len(stmts) == 0 {
		return
	}
	grown := make([]Stmt, 0, len(m.Stmts)+len(stmts))
	grown = append(grown, m.Stmts[:i]...)
	grown = append(grown, stmts...)
	grown = append(grown, m.Stmts[i:]...)
	m.Stmts = grown
}

// --- AST builder factories -------------------------------------------------
//
// Each factory is a pure function of the arena and the variant's
// components: it deep-clones embedded tokens into the arena and returns
// the node, recording loc on the node for diagnostic positioning. Factories
// return nil only when an essential argument is nil; arena exhaustion has
// no Go analogue (the runtime's allocator handles it), so the fatal
// out-of-memory path is represented by FatalOOM, called only from sites
// that synthesize fixed-size buffers outside the GC's purview (there are
// none in this package today; it exists for interface parity with the
// external collaborators that may call into the core).

// FatalOOM terminates the process on an unrecoverable allocation failure.
// Go's allocator makes this exceedingly rare; this function exists so
// callers crossing the C/Go boundary have somewhere to report it.
func FatalOOM(msg string) {
	panic("sn: out of memory: " + msg)
}

func cloneTok(arena *Arena, t Token) Token {
	t.Start = arena.DupString(t.Start)
	t.Filename = arena.DupString(t.Filename)
	return t
}

// NewBinaryExpr builds a binary expression node.
func NewBinaryExpr(arena *Arena, op BinaryOp, left, right Expr, loc Token) *BinaryExpr {
	if left == nil || right == nil {
		return nil
	}
	return &BinaryExpr{ExprBase: ExprBase{Tok: cloneTok(arena, loc)}, Op: op, Left: left, Right: right}
}

// NewUnaryExpr builds a unary expression node.
func NewUnaryExpr(arena *Arena, op UnaryOp, operand Expr, loc Token) *UnaryExpr {
	if operand == nil {
		return nil
	}
	return &UnaryExpr{ExprBase: ExprBase{Tok: cloneTok(arena, loc)}, Op: op, Operand: operand}
}

// NewLiteralExpr builds a scalar literal node.
func NewLiteralExpr(arena *Arena, kind TokenKind, value LiteralValue, loc Token) *LiteralExpr {
	return &LiteralExpr{ExprBase: ExprBase{Tok: cloneTok(arena, loc)}, Value: value, LiteralKind: kind}
}

// NewVarExpr builds a variable-reference node; name is duplicated into the
// arena since it will outlive the token stream cursor.
func NewVarExpr(arena *Arena, name string, loc Token) *VarExpr {
	if name == "" {
		return nil
	}
	return &VarExpr{ExprBase: ExprBase{Tok: cloneTok(arena, loc)}, Name: arena.DupString(name)}
}

// NewCallExpr builds a call expression node.
func NewCallExpr(arena *Arena, callee Expr, args []Expr, loc Token) *CallExpr {
	if callee == nil {
		return nil
	}
	return &CallExpr{ExprBase: ExprBase{Tok: cloneTok(arena, loc)}, Callee: callee, Args: args}
}

// NewFnDecl builds a function declaration node.
func NewFnDecl(arena *Arena, name string, params []Param, ret Type, body []Stmt, mod FnModifier, loc Token) *FnDecl {
	if name == "" {
		return nil
	}
	return &FnDecl{
		StmtBase:   StmtBase{Tok: cloneTok(arena, loc)},
		Name:       arena.DupString(name),
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Modifier:   mod,
	}
}

// NewVarDeclStmt builds a variable declaration statement node.
func NewVarDeclStmt(arena *Arena, name string, typ Type, init Expr, qual MemQual, loc Token) *VarDeclStmt {
	if name == "" {
		return nil
	}
	return &VarDeclStmt{
		StmtBase: StmtBase{Tok: cloneTok(arena, loc)},
		Name:     arena.DupString(name),
		Type:     typ,
		Init:     init,
		Qual:     qual,
	}
}

// NewStructType builds a struct type with the given native/packed/
// pass-by-ref flags; fields/methods may be nil/empty at construction and
// populated afterward, the early-registration pattern that lets
// self-referential struct literals resolve.
func NewStructType(arena *Arena, name string, isNative, isPacked, passSelfByRef bool, cAlias string) *StructType {
	if name == "" {
		return nil
	}
	return &StructType{
		Name:          arena.DupString(name),
		IsNative:      isNative,
		IsPacked:      isPacked,
		PassSelfByRef: passSelfByRef,
		CAlias:        cAlias,
	}
}

// NewBlockStmt builds a block statement node.
func NewBlockStmt(arena *Arena, stmts []Stmt, loc Token) *BlockStmt {
	return &BlockStmt{StmtBase: StmtBase{Tok: cloneTok(arena, loc)}, Stmts: stmts}
}
