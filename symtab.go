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

// SymbolTable is the table the parser and ImportResolver share: function
// declarations are registered as they're parsed so forward references
// within a module work, and the ImportResolver removes a namespaced
// import's function symbols from the global scope afterward so they are
// reachable only via `NS.fn`.
//
// Compilation is single-threaded, so this needs no mutex.
type SymbolTable struct {
	global map[string]*FnDecl
	types  map[string]Type
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		global: make(map[string]*FnDecl),
		types:  make(map[string]Type),
	}
}

// AddFunction registers fn in the global scope.
func (s *SymbolTable) AddFunction(fn *FnDecl) {
	s.global[fn.Name] = fn
}

// RemoveFunction removes name from the global scope, making it reachable
// only through a namespace prefix.
func (s *SymbolTable) RemoveFunction(name string) {
	delete(s.global, name)
}

// LookupFunction returns the function registered under name, if any.
func (s *SymbolTable) LookupFunction(name string) (*FnDecl, bool) {
	fn, ok := s.global[name]
	return fn, ok
}

// AddType registers a named type (struct, alias, or an early-registered
// forward struct) in the global scope.
func (s *SymbolTable) AddType(name string, t Type) {
	s.types[name] = t
}

// LookupType returns the type registered under name, if any.
func (s *SymbolTable) LookupType(name string) (Type, bool) {
	t, ok := s.types[name]
	return t, ok
}
