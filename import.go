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

	"github.com/golang/glog"
)

// ImportContext is shared by every Parser instance working on one overall
// compilation: it owns the parse-at-most-once cache keyed by canonical
// path, the in-progress set used to detect circular imports, and the SDK
// root fallback chain. A shared *ImportContext gives every recursive
// Parse frame the same backing maps.
type ImportContext struct {
	arena  *Arena
	symtab *SymbolTable

	// slots is keyed by canonical path and is the cache proper: one
	// entry per distinct module, created the moment it is first seen.
	// Reserving the slot before the recursive parse is what makes
	// circular imports a no-op rather than infinite recursion.
	slots map[string]*importSlot

	inProgress map[string]bool

	sdkRoot     string
	compilerDir string
}

// importSlot is one cached module's bookkeeping. For any cached module M
// exactly one of
// (a) importedDirectly=true with every non-namespaced import merged, or
// (b) importedDirectly=false with exactly one namespaced import claiming
//     emission
// holds, tracked here across however many ImportStmt nodes reference M.
type importSlot struct {
	stmts []Stmt
	err   error
	done  bool

	importedDirectly   bool
	namespaceEmitted   bool
	emittingImport     *ImportStmt
	namespacedImports   []*ImportStmt
}

// NewImportContext resolves the SDK root via the fallback chain:
// SN_SDK env var, then compilerDir's sibling "sdk/", then
// "../lib/sindarin/sdk/" relative to compilerDir, then a built-in default.
func NewImportContext(arena *Arena, symtab *SymbolTable, compilerDir string) *ImportContext {
	sdk := ""
	if env := os.Getenv("SN_SDK"); env != "" {
		if dirExists(env) {
			sdk = env
		} else {
			glog.Warningf("import: SN_SDK=%q is not a directory, falling back", env)
		}
	}
	if sdk == "" {
		candidate := filepath.Join(compilerDir, "sdk")
		if dirExists(candidate) {
			sdk = candidate
		}
	}
	if sdk == "" {
		candidate := filepath.Join(compilerDir, "..", "lib", "sindarin", "sdk")
		if dirExists(candidate) {
			sdk = candidate
		}
	}
	if sdk == "" {
		sdk = "/usr/local/lib/sindarin/sdk"
	}
	glog.V(1).Infof("import: sdk root resolved to %q", sdk)
	return &ImportContext{
		arena:       arena,
		symtab:      symtab,
		slots:       make(map[string]*importSlot),
		inProgress:  make(map[string]bool),
		sdkRoot:     sdk,
		compilerDir: compilerDir,
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// resolvePath normalises modulePath relative to the importing file's
// directory, falling back to the SDK root for paths that don't resolve
// relative to the importer. The result is run through filepath.Clean so
// "dir/./file.sn" and "dir/file.sn" produce the same cache key, and both
// "/" and "\" separators are treated as path separators throughout by
// normalising backslashes before Clean.
func (ctx *ImportContext) resolvePath(modulePath, fromDir string) string {
	modulePath = normalizeSeparators(modulePath)
	if filepath.IsAbs(modulePath) {
		return filepath.Clean(modulePath)
	}
	candidate := filepath.Clean(filepath.Join(fromDir, modulePath+".sn"))
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return filepath.Clean(filepath.Join(ctx.sdkRoot, "sdk", modulePath+".sn"))
}

func normalizeSeparators(p string) string {
	out := make([]byte, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = p[i]
		}
	}
	return string(out)
}

// importStmt parses `import "path" [as namespace]` and immediately invokes
// resolution, per Parse's "imports resolve as encountered" contract.
func (p *Parser) importStmt() Stmt {
	tok := p.current
	p.advance() // 'import'
	pathTok, ok := p.consume(TOKEN_STRING, "expected module path string after 'import'")
	if !ok {
		return nil
	}
	ns := ""
	if p.match(TOKEN_AS) {
		nsTok, ok := p.consume(TOKEN_IDENT, "expected namespace identifier after 'as'")
		if ok {
			ns = nsTok.Lexeme()
		}
	}
	p.consumeStmtEnd()

	return &ImportStmt{
		StmtBase:   StmtBase{Tok: cloneTok(p.arena, tok)},
		ModulePath: pathTok.Literal.StringValue,
		Namespace:  ns,
	}
}

// resolveImport applies the import processing rules: merge-in-place for
// direct imports, cache-backed dedup, and single emission ownership for
// diamond-imported namespaced modules.
func (p *Parser) resolveImport(mod *Module, idx int, stmt *ImportStmt) error {
	ctx := p.importCtx
	if ctx == nil {
		return newErr(KindImport, p.filename, stmt.Tok.Line, "import resolution unavailable outside a compilation context")
	}

	resolved := ctx.resolvePath(stmt.ModulePath, filepath.Dir(p.filename))
	stmt.ResolvedPath = resolved
	glog.V(2).Infof("import: %q from %s -> %s (namespace=%q)", stmt.ModulePath, p.filename, resolved, stmt.Namespace)

	slot, cached := ctx.slots[resolved]

	if !cached {
		if ctx.inProgress[resolved] {
			// Circular edge: the slot hasn't been reserved yet but the
			// file is already on the recursion stack. This only occurs
			// when the very first encounter of a module is itself part
			// of the cycle; treat it as a no-op import.
			return nil
		}
		slot = &importSlot{}
		ctx.slots[resolved] = slot
		ctx.inProgress[resolved] = true

		src, err := os.ReadFile(resolved)
		if err != nil {
			delete(ctx.inProgress, resolved)
			return wrapErr(KindImport, p.filename, stmt.Tok.Line, err, "cannot read imported module %q", stmt.ModulePath)
		}
		importedMod, err := Parse(ctx.arena, ctx.symtab, string(src), resolved, ctx)
		delete(ctx.inProgress, resolved)
		if err != nil {
			slot.err, slot.done = err, true
			return err
		}
		slot.stmts, slot.done = importedMod.Stmts, true

		if stmt.Namespace == "" {
			slot.importedDirectly = true
		} else {
			slot.namespaceEmitted = true
			slot.emittingImport = stmt
			// Nested namespaced imports inside the just-parsed module
			// that target an already-emission-claimed module must not
			// re-emit: walk them now that this slot exists.
			claimNestedEmissions(ctx, importedMod.Stmts)
		}
	} else if slot.err != nil {
		return slot.err
	} else if !slot.done {
		// Slot reserved but its recursive parse hasn't returned: a
		// genuine cycle through a namespaced import. No-op per
		// "Circular imports terminate".
		return nil
	} else {
		switch {
		case stmt.Namespace == "" && slot.importedDirectly:
			// cached, direct, already direct: pure duplicate.
			mod.RemoveAt(idx)
			return nil

		case stmt.Namespace == "" && !slot.importedDirectly:
			// cached, direct, only namespaced so far.
			slot.importedDirectly = true
			if slot.emittingImport != nil {
				slot.emittingImport.AlsoImportedDirectly = true
			}
			mod.RemoveAt(idx)
			mod.InsertAllAt(idx, slot.stmts)
			return nil

		default:
			// cached, namespaced, any prior state.
			if slot.importedDirectly || slot.namespaceEmitted {
				stmt.AlsoImportedDirectly = true
			} else {
				slot.namespaceEmitted = true
				slot.emittingImport = stmt
				claimNestedEmissions(ctx, slot.stmts)
			}
		}
	}

	stmt.ImportedStmts = slot.stmts
	stmt.ImportedCount = len(slot.stmts)

	if stmt.Namespace == "" {
		// Direct import (first encounter): splice the imported
		// statements ahead of this ImportStmt and remove the node,
		// preserving that every declaration precedes its first use.
		mod.RemoveAt(idx)
		mod.InsertAllAt(idx, slot.stmts)
		return nil
	}

	stmt.NamespaceCodeEmitted = slot.emittingImport == stmt
	slot.namespacedImports = append(slot.namespacedImports, stmt)

	// Namespaced import: hide the imported module's top-level functions
	// from the unqualified global scope so they are reachable only
	// through NS.fn.
	for _, s := range slot.stmts {
		if fn, ok := s.(*FnDecl); ok {
			p.symtab.RemoveFunction(fn.Name)
		}
	}
	return nil
}

// claimNestedEmissions walks a just-cached module's own ImportStmt nodes
// and marks any whose target has already claimed emission elsewhere as
// also-imported-directly, so they defer to the claiming import instead
// of re-emitting.
func claimNestedEmissions(ctx *ImportContext, stmts []Stmt) {
	for _, s := range stmts {
		imp, ok := s.(*ImportStmt)
		if !ok || imp.Namespace == "" {
			continue
		}
		nested, ok := ctx.slots[imp.ResolvedPath]
		if !ok {
			continue
		}
		if nested.emittingImport != nil && nested.emittingImport != imp {
			imp.AlsoImportedDirectly = true
		}
	}
}
