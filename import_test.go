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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func countVarDecls(stmts []Stmt, name string) int {
	n := 0
	for _, s := range stmts {
		if v, ok := s.(*VarDeclStmt); ok && v.Name == name {
			n++
		}
	}
	return n
}

func TestImportDirectDiamondSingleEmission(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shared.sn", "var sharedX = 1\n")
	writeModule(t, dir, "a.sn", "import \"shared\"\nvar aX = 2\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"a\"\nimport \"shared\"\nfn main() =>\n  var z = 1\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	// Diamond import through a.sn and a direct second import must yield
	// exactly one copy of shared.sn's declarations.
	assert.Equal(t, 1, countVarDecls(mod.Stmts, "sharedX"))
	assert.Equal(t, 1, countVarDecls(mod.Stmts, "aX"))
}

func TestImportCircularIsNoOp(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.sn", "import \"b\"\nvar aX = 1\n")
	writeModule(t, dir, "b.sn", "import \"a\"\nvar bX = 2\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"a\"\nfn main() =>\n  var z = 1\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	// The cycle must terminate rather than recurse forever, and both
	// sides' non-import declarations must still appear exactly once.
	assert.Equal(t, 1, countVarDecls(mod.Stmts, "aX"))
	assert.Equal(t, 1, countVarDecls(mod.Stmts, "bX"))
}

func TestImportNamespacedDiamondSingleEmission(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shared.sn", "var sharedX = 1\n")
	writeModule(t, dir, "ns1.sn", "import \"shared\" as S\n")
	writeModule(t, dir, "ns2.sn", "import \"shared\" as S\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"ns1\" as N1\nimport \"ns2\" as N2\nfn main() =>\n  var z = 1\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)
	require.Len(t, mod.Stmts, 3)

	imp1, ok := mod.Stmts[0].(*ImportStmt)
	require.True(t, ok)
	imp2, ok := mod.Stmts[1].(*ImportStmt)
	require.True(t, ok)

	require.Len(t, imp1.ImportedStmts, 1)
	require.Len(t, imp2.ImportedStmts, 1)

	nested1 := imp1.ImportedStmts[0].(*ImportStmt)
	nested2 := imp2.ImportedStmts[0].(*ImportStmt)

	// Exactly one of the two nested namespaced imports of shared.sn may
	// claim emission; the other must defer to it.
	assert.True(t, nested1.NamespaceCodeEmitted)
	assert.False(t, nested2.NamespaceCodeEmitted)
	assert.True(t, nested2.AlsoImportedDirectly)
}

func TestImportPathNormalisation(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeModule(t, sub, "util.sn", "var utilX = 1\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"pkg/./util\"\nimport \"pkg/util\"\nfn main() =>\n  var z = 1\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	// "pkg/./util.sn" and "pkg/util.sn" must resolve to the same cache
	// key, so the second import is a pure duplicate.
	assert.Equal(t, 1, countVarDecls(mod.Stmts, "utilX"))
}

func TestImportSDKFallback(t *testing.T) {
	sdkRoot := t.TempDir()
	sdkDir := filepath.Join(sdkRoot, "sdk")
	require.NoError(t, os.MkdirAll(sdkDir, 0o755))
	writeModule(t, sdkDir, "math.sn", "fn square(x: int): int =>\n  return x * x\n")
	t.Setenv("SN_SDK", sdkRoot)

	projectDir := t.TempDir()

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, projectDir)

	// projectDir has no sibling math.sn, so resolution must fall through
	// to SN_SDK's sdk/math.sn.
	src := "import \"math\"\nfn main() =>\n  var z = square(2)\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(projectDir, "main.sn"), ctx)
	require.NoError(t, err)

	fn, ok := symtab.LookupFunction("square")
	require.True(t, ok)
	assert.Equal(t, "square", fn.Name)

	require.Len(t, mod.Stmts, 2)
	_, ok = mod.Stmts[0].(*FnDecl)
	require.True(t, ok, "square's declaration must be merged ahead of main")
}

func TestImportDirectMergesStatementsInPlace(t *testing.T) {
	// A direct import disappears and its statements are spliced ahead
	// of the importer's own.
	dir := t.TempDir()
	writeModule(t, dir, "util.sn", "fn foo() =>\n  var one = 1\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"util\"\nfoo()\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	require.Len(t, mod.Stmts, 2)
	fn, ok := mod.Stmts[0].(*FnDecl)
	require.True(t, ok)
	assert.Equal(t, "foo", fn.Name)
	_, ok = mod.Stmts[1].(*ExprStmt)
	require.True(t, ok)
	for _, s := range mod.Stmts {
		_, isImport := s.(*ImportStmt)
		assert.False(t, isImport, "no ImportStmt may survive a direct import")
	}
}

func TestImportNamespacedKeepsImportAndHidesGlobals(t *testing.T) {
	// A namespaced import survives with its statements attached, and
	// the imported functions leave the global scope.
	dir := t.TempDir()
	writeModule(t, dir, "util.sn", "fn foo() =>\n  var one = 1\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"util\" as u\nu.foo()\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	require.Len(t, mod.Stmts, 2)
	imp, ok := mod.Stmts[0].(*ImportStmt)
	require.True(t, ok)
	assert.Equal(t, "u", imp.Namespace)
	assert.Equal(t, 1, imp.ImportedCount)
	assert.True(t, imp.NamespaceCodeEmitted)

	_, found := symtab.LookupFunction("foo")
	assert.False(t, found, "foo must be reachable only through u.foo after a namespaced import")
}

func TestImportDirectThenNamespacedDedup(t *testing.T) {
	// Direct + namespaced imports of the same module yield its
	// statements exactly once, with the namespaced ImportStmt surviving
	// as a non-emitting alias.
	dir := t.TempDir()
	writeModule(t, dir, "util.sn", "fn foo() =>\n  var one = 1\n")

	arena := NewArena()
	symtab := NewSymbolTable()
	ctx := NewImportContext(arena, symtab, dir)

	src := "import \"util\"\nimport \"util\" as u\nfoo()\n"
	mod, err := Parse(arena, symtab, src, filepath.Join(dir, "main.sn"), ctx)
	require.NoError(t, err)

	fnCount := 0
	var surviving *ImportStmt
	for _, s := range mod.Stmts {
		switch v := s.(type) {
		case *FnDecl:
			fnCount++
		case *ImportStmt:
			surviving = v
		}
	}
	assert.Equal(t, 1, fnCount, "util's declarations must appear exactly once")
	require.NotNil(t, surviving)
	assert.Equal(t, "u", surviving.Namespace)
	assert.True(t, surviving.AlsoImportedDirectly)
	assert.False(t, surviving.NamespaceCodeEmitted)
}
