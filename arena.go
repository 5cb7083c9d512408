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

import "sync/atomic"

// Arena is the process-wide allocation authority for AST nodes, interned
// strings, and auxiliary buffers produced while compiling one source file
// and its transitive imports. Go already owns memory lifetime through its
// garbage collector, so Arena keeps only the part of the contract that
// matters to the rest of the core: a single shared authority with its own
// Generation number and a string interner so that duplicating identical
// byte ranges returns identical backing storage. AST nodes do not record
// the Generation of the arena that built them.
//
// There is no Release/teardown step that frees anything: the driver calls
// Release for symmetry with the one-arena-per-compile lifecycle, but the
// actual memory is reclaimed by the GC once nothing reachable from the
// Module references it.
type Arena struct {
	generation uint64
	strings    map[string]string
	allocCount uint64
}

// arenaSeq assigns each Arena a distinct generation.
var arenaSeq uint64

// NewArena creates a fresh allocation authority. The driver owns exactly
// one per compile() call.
func NewArena() *Arena {
	return &Arena{
		generation: atomic.AddUint64(&arenaSeq, 1),
		strings:    make(map[string]string),
	}
}

// Generation identifies this arena: each Arena from NewArena gets a
// distinct value.
func (a *Arena) Generation() uint64 { return a.generation }

// Dup duplicates a byte range into an arena-owned, deduplicated string.
// Source buffers may be discarded once every token that referenced them
// has called Dup.
func (a *Arena) Dup(b []byte) string {
	return a.DupString(string(b))
}

// DupString interns s into the arena's string table, returning the
// canonical copy so repeated identifiers/paths share storage.
func (a *Arena) DupString(s string) string {
	if existing, ok := a.strings[s]; ok {
		return existing
	}
	a.strings[s] = s
	atomic.AddUint64(&a.allocCount, 1)
	return s
}

// AllocCount reports how many distinct byte ranges have been duplicated
// into this arena; re-interning an already seen string does not count.
func (a *Arena) AllocCount() uint64 {
	return atomic.LoadUint64(&a.allocCount)
}

// Release is a no-op: callers still `defer arena.Release()` for the
// one-arena-per-compile lifecycle, and Go's GC reclaims the arena's
// backing storage once nothing reachable from its Module survives.
func (a *Arena) Release() {}
