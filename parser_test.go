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

func parseSrc(t *testing.T, src string) (*Module, error) {
	t.Helper()
	arena := NewArena()
	symtab := NewSymbolTable()
	return Parse(arena, symtab, src, "test.sn", nil)
}

func TestParserPrecedenceAdditiveOverMultiplicative(t *testing.T) {
	// "1 + 2 * 3" must parse as "1 + (2 * 3)".
	mod, err := parseSrc(t, "fn main() =>\n  var x = 1 + 2 * 3\n")
	require.NoError(t, err)
	require.Len(t, mod.Stmts, 1)

	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	require.Len(t, fn.Body, 1)

	decl, ok := fn.Body[0].(*VarDeclStmt)
	require.True(t, ok)

	add, ok := decl.Init.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)

	mul, ok := add.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpMul, mul.Op)
}

func TestParserBitwiseAndBetweenEqualityAndBitwiseOr(t *testing.T) {
	// "a == b & c | d" parses with & binding tighter than | but looser
	// than ==.
	mod, err := parseSrc(t, "fn main() =>\n  var x = a == b & c | d\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)

	or, ok := decl.Init.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpBitOr, or.Op)

	and, ok := or.Left.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpBitAnd, and.Op)

	eq, ok := and.Left.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, OpEq, eq.Op)
}

func TestParserAssignmentRightAssociative(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var x = 0\n  var y = 0\n  x = y = 1\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	assign, ok := fn.Body[2].(*ExprStmt)
	require.True(t, ok)
	outer, ok := assign.Expr.(*AssignExpr)
	require.True(t, ok)
	_, ok = outer.Value.(*AssignExpr)
	assert.True(t, ok, "x = y = 1 must nest as x = (y = 1)")
}

func TestParserInterpolatedStringSubParses(t *testing.T) {
	mod, err := parseSrc(t, `fn main() =>
  var name = "world"
  var greeting = $"hello {name}!"
`)
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[1].(*VarDeclStmt)
	interp, ok := decl.Init.(*InterpolatedExpr)
	require.True(t, ok)
	require.Len(t, interp.Parts, 3)

	lit0, ok := interp.Parts[0].Expr.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "hello ", lit0.Value.StringValue)

	ref, ok := interp.Parts[1].Expr.(*VarExpr)
	require.True(t, ok)
	assert.Equal(t, "name", ref.Name)

	lit2, ok := interp.Parts[2].Expr.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "!", lit2.Value.StringValue)
}

func TestParserInterpolatedStringFormatSpec(t *testing.T) {
	mod, err := parseSrc(t, `fn main() =>
  var x = $"{value:>5}"
`)
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	interp := decl.Init.(*InterpolatedExpr)
	require.Len(t, interp.Parts, 1)
	assert.Equal(t, ">5", interp.Parts[0].Format)
}

func TestParserMatchExpression(t *testing.T) {
	mod, err := parseSrc(t, `fn classify(n: int): int =>
  return match n =>
    0 => return 0
    1, 2 => return 1
    else => return -1
`)
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	ret := fn.Body[0].(*ReturnStmt)
	match, ok := ret.Value.(*MatchExpr)
	require.True(t, ok)
	require.Len(t, match.Arms, 3)
	assert.Len(t, match.Arms[0].Patterns, 1)
	assert.Len(t, match.Arms[1].Patterns, 2)
	assert.True(t, match.Arms[2].Else)
}

func TestParserLambdaRequiresArrowEvenWithZeroParams(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var f = fn() => 42\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	lambda, ok := decl.Init.(*LambdaExpr)
	require.True(t, ok)
	assert.Empty(t, lambda.Params)
	require.NotNil(t, lambda.Body)
	lit, ok := lambda.Body.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value.IntValue)
}

func TestParserLambdaStatementBody(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var f = fn(x: int): int =>\n    return x + 1\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	lambda, ok := decl.Init.(*LambdaExpr)
	require.True(t, ok)
	assert.Nil(t, lambda.Body)
	require.NotNil(t, lambda.BodyStmt)
}

func TestParserMissingLambdaArrowIsAnError(t *testing.T) {
	_, err := parseSrc(t, "fn main() =>\n  var f = fn(x: int) x\n")
	assert.Error(t, err)
}

func TestParserStructDeclWithMethods(t *testing.T) {
	mod, err := parseSrc(t, `struct Point =>
  x: int
  y: int
  fn length(): int =>
    return x
`)
	require.NoError(t, err)
	sdecl, ok := mod.Stmts[0].(*StructDecl)
	require.True(t, ok)
	assert.Len(t, sdecl.Type.Fields, 2)
	require.Len(t, sdecl.Type.Methods, 1)
	assert.Equal(t, "length", sdecl.Type.Methods[0].Name)
}

func TestParserStructLiteral(t *testing.T) {
	mod, err := parseSrc(t, `struct Point =>
  x: int
  y: int
fn main() =>
  var p = Point{x: 1, y: 2}
`)
	require.NoError(t, err)
	fn := mod.Stmts[1].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	lit, ok := decl.Init.(*StructLiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "Point", lit.TypeName)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, "x", lit.Fields[0].Name)
	assert.Equal(t, "y", lit.Fields[1].Name)
}

func TestParserSizedArrayAllocation(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var xs = int[10]\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	sized, ok := decl.Init.(*SizedArrayExpr)
	require.True(t, ok)
	lit, ok := sized.Size.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, int64(10), lit.Value.IntValue)
	assert.Nil(t, sized.Default)
}

func TestParserSizedArrayAllocationWithDefault(t *testing.T) {
	mod, err := parseSrc(t, `struct Point =>
  x: int
fn main() =>
  var pts = Point[3] = Point{x: 0}
`)
	require.NoError(t, err)
	fn := mod.Stmts[1].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	sized, ok := decl.Init.(*SizedArrayExpr)
	require.True(t, ok)
	_, ok = sized.Element.(*StructType)
	assert.True(t, ok)
	_, ok = sized.Default.(*StructLiteralExpr)
	assert.True(t, ok)
}

func TestParserNativeFnWithoutBodyHasNoBody(t *testing.T) {
	mod, err := parseSrc(t, "native fn abs(x: int): int\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.True(t, fn.IsNative)
	assert.False(t, fn.HasBody)
	assert.False(t, fn.HasArenaParam)
	assert.Nil(t, fn.Body)
}

func TestParserNativeFnExpressionBody(t *testing.T) {
	mod, err := parseSrc(t, "native fn square(x: int): int => x * x\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.True(t, fn.HasBody)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ReturnStmt)
	require.True(t, ok)
	_, ok = ret.Value.(*BinaryExpr)
	assert.True(t, ok)
}

func TestParserNativeFnBlockBody(t *testing.T) {
	mod, err := parseSrc(t, "native fn clampPositive(x: int): int =>\n  if x < 0 =>\n    return 0\n  return x\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.True(t, fn.HasBody)
	require.Len(t, fn.Body, 2)
	_, ok = fn.Body[0].(*IfStmt)
	assert.True(t, ok)
	_, ok = fn.Body[1].(*ReturnStmt)
	assert.True(t, ok)
}

func TestParserNativeFnArenaParamMarker(t *testing.T) {
	mod, err := parseSrc(t, "native fn allocInts(arena, n: int): int*\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.True(t, fn.HasArenaParam)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name)
}

func TestParserNativeFnArenaNamedParamIsOrdinary(t *testing.T) {
	mod, err := parseSrc(t, "native fn describe(arena: int): int\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.False(t, fn.HasArenaParam)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "arena", fn.Params[0].Name)
}

func TestParserNativeFnLambdaInBodyIsMarkedNative(t *testing.T) {
	mod, err := parseSrc(t, "native fn withCallback(): int =>\n  var f = fn() => 1\n  return f()\n")
	require.NoError(t, err)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	decl, ok := fn.Body[0].(*VarDeclStmt)
	require.True(t, ok)
	lambda, ok := decl.Init.(*LambdaExpr)
	require.True(t, ok)
	assert.True(t, lambda.IsNative)
}

func TestParserIfElseChain(t *testing.T) {
	mod, err := parseSrc(t, `fn main() =>
  if x ==  1 =>
    var a = 1
  else =>
    var b = 2
`)
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	ifStmt, ok := fn.Body[0].(*IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	elseBlock, ok := ifStmt.Else.(*BlockStmt)
	require.True(t, ok)
	assert.Len(t, elseBlock.Stmts, 1)
}

func TestParserPrecedenceLaws(t *testing.T) {
	// Precedence laws beyond the additive/multiplicative case covered
	// above.
	t.Run("subtraction over division", func(t *testing.T) {
		mod, err := parseSrc(t, "var x = 10 - 6 / 2\n")
		require.NoError(t, err)
		decl := mod.Stmts[0].(*VarDeclStmt)
		sub := decl.Init.(*BinaryExpr)
		assert.Equal(t, OpSub, sub.Op)
		div, ok := sub.Right.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpDiv, div.Op)
	})
	t.Run("relational binds tighter than and", func(t *testing.T) {
		mod, err := parseSrc(t, "var x = a < b and c < d\n")
		require.NoError(t, err)
		decl := mod.Stmts[0].(*VarDeclStmt)
		and := decl.Init.(*BinaryExpr)
		assert.Equal(t, OpAnd, and.Op)
		lt, ok := and.Left.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpLt, lt.Op)
		rt, ok := and.Right.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpLt, rt.Op)
	})
	t.Run("additive is left-associative", func(t *testing.T) {
		mod, err := parseSrc(t, "var x = 1 + 2 + 3\n")
		require.NoError(t, err)
		decl := mod.Stmts[0].(*VarDeclStmt)
		outer := decl.Init.(*BinaryExpr)
		assert.Equal(t, OpAdd, outer.Op)
		inner, ok := outer.Left.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpAdd, inner.Op)
	})
	t.Run("parentheses override precedence", func(t *testing.T) {
		mod, err := parseSrc(t, "var x = (1 + 2) * 3\n")
		require.NoError(t, err)
		decl := mod.Stmts[0].(*VarDeclStmt)
		mul := decl.Init.(*BinaryExpr)
		assert.Equal(t, OpMul, mul.Op)
		add, ok := mul.Left.(*BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, OpAdd, add.Op)
	})
}

func TestParserTopLevelVarDeclSmoke(t *testing.T) {
	// A full top-level declaration: one var statement whose initialiser
	// nests the multiplication under the addition.
	mod, err := parseSrc(t, "var x: int = 1 + 2 * 3\n")
	require.NoError(t, err)
	require.Len(t, mod.Stmts, 1)
	decl, ok := mod.Stmts[0].(*VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	prim, ok := decl.Type.(*PrimitiveType)
	require.True(t, ok)
	assert.Equal(t, PRIM_INT, prim.Kind)
	add := decl.Init.(*BinaryExpr)
	assert.Equal(t, OpAdd, add.Op)
	lit, ok := add.Left.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value.IntValue)
	mul := add.Right.(*BinaryExpr)
	assert.Equal(t, OpMul, mul.Op)
}

func TestParserNativeStructAsRef(t *testing.T) {
	mod, err := parseSrc(t, "native struct Handle as ref =>\n  fd: int\n")
	require.NoError(t, err)
	sdecl, ok := mod.Stmts[0].(*StructDecl)
	require.True(t, ok)
	assert.True(t, sdecl.Type.IsNative)
	assert.True(t, sdecl.Type.PassSelfByRef)
	require.Len(t, sdecl.Type.Fields, 1)
}

func TestParserNonNativeStructRejectsAsRef(t *testing.T) {
	_, err := parseSrc(t, "struct Handle as ref =>\n  fd: int\n")
	assert.Error(t, err)
}

func TestParserPostfixChainContinuationAcrossIndent(t *testing.T) {
	// A postfix chain may wrap onto an indented continuation line; the
	// balancing DEDENT is consumed when the chain closes.
	mod, err := parseSrc(t, "fn main() =>\n  var x = obj\n    .field\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	member, ok := decl.Init.(*MemberAccessExpr)
	require.True(t, ok)
	assert.Equal(t, "field", member.Field)
	obj, ok := member.Object.(*VarExpr)
	require.True(t, ok)
	assert.Equal(t, "obj", obj.Name)
}

func TestParserLambdaReturningLambdaIsExpressionBodied(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var f = fn() => fn() => 1\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)
	decl := fn.Body[0].(*VarDeclStmt)
	outer, ok := decl.Init.(*LambdaExpr)
	require.True(t, ok)
	inner, ok := outer.Body.(*LambdaExpr)
	require.True(t, ok)
	lit, ok := inner.Body.(*LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value.IntValue)
}

func TestParserThreadSpawnAndSync(t *testing.T) {
	mod, err := parseSrc(t, "fn main() =>\n  var h = &work()\n  var r = &work()!\n  var w = h!\n")
	require.NoError(t, err)
	fn := mod.Stmts[0].(*FnDecl)

	// `&work()` spawns a call.
	spawn, ok := fn.Body[0].(*VarDeclStmt).Init.(*ThreadSpawnExpr)
	require.True(t, ok)
	_, ok = spawn.Call.(*CallExpr)
	assert.True(t, ok)

	// `&work()!` syncs the handle the spawn produced: the sync node wraps
	// the spawn, not the other way around.
	syncExpr, ok := fn.Body[1].(*VarDeclStmt).Init.(*ThreadSyncExpr)
	require.True(t, ok)
	inner, ok := syncExpr.Handle.(*ThreadSpawnExpr)
	require.True(t, ok)
	_, ok = inner.Call.(*CallExpr)
	assert.True(t, ok)

	// A bare `handle!` is a plain postfix sync.
	postSync, ok := fn.Body[2].(*VarDeclStmt).Init.(*ThreadSyncExpr)
	require.True(t, ok)
	_, ok = postSync.Handle.(*VarExpr)
	assert.True(t, ok)
}
