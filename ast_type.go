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

// Type is the closed sum of type variants the parser can produce,
// modelled as a sealed interface: every variant implements typeNode() so
// an exhaustive switch over the concrete type stands in for a tagged
// union's dispatch.
type Type interface {
	typeNode()
}

// PrimitiveKind enumerates the built-in scalar/void/any primitive types.
type PrimitiveKind int

const (
	PRIM_INT PrimitiveKind = iota
	PRIM_INT32
	PRIM_UINT
	PRIM_UINT32
	PRIM_LONG
	PRIM_DOUBLE
	PRIM_FLOAT
	PRIM_CHAR
	PRIM_STRING
	PRIM_BOOL
	PRIM_BYTE
	PRIM_VOID
	PRIM_NIL
	PRIM_ANY
)

// PrimitiveType is a built-in scalar/void/any type.
type PrimitiveType struct {
	Kind PrimitiveKind
}

func (*PrimitiveType) typeNode() {}

// OpaqueType names a type the parser has not yet resolved to a full
// declaration (e.g. a forward reference, or a native C type known only by
// name).
type OpaqueType struct {
	Name string
}

func (*OpaqueType) typeNode() {}

// StructField is one field of a StructType.
type StructField struct {
	Name     string
	Type     Type
	Offset   int // filled by the external type checker
	CAlias   string
}

// StructMethod is one method attached to a StructType.
type StructMethod struct {
	Name     string
	Fn       *FnDecl
	IsStatic bool
}

// StructType is a struct/record type. For methods sharing a name, at
// most one may have IsStatic=false and at most one may have
// IsStatic=true; ValidateMethodSet enforces this.
type StructType struct {
	Name             string
	Fields           []StructField
	Methods          []StructMethod
	Size             int // filled by the external type checker
	Alignment        int // filled by the external type checker
	IsNative         bool
	IsPacked         bool
	PassSelfByRef    bool
	CAlias           string
}

func (*StructType) typeNode() {}

// FieldIndex returns the declaration-order index of the named field, or -1.
func (s *StructType) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ValidateMethodSet enforces the "at most one static, at most one
// non-static method per name" invariant.
func (s *StructType) ValidateMethodSet() error {
	seenInstance := map[string]bool{}
	seenStatic := map[string]bool{}
	for _, m := range s.Methods {
		if m.IsStatic {
			if seenStatic[m.Name] {
				return newErr(KindSyntactic, "", 0, "struct %s: duplicate static method %q", s.Name, m.Name)
			}
			seenStatic[m.Name] = true
		} else {
			if seenInstance[m.Name] {
				return newErr(KindSyntactic, "", 0, "struct %s: duplicate method %q", s.Name, m.Name)
			}
			seenInstance[m.Name] = true
		}
	}
	return nil
}

// ArrayType is a homogeneous array of Element.
type ArrayType struct {
	Element Type
}

func (*ArrayType) typeNode() {}

// PointerType is a pointer to Base.
type PointerType struct {
	Base Type
}

func (*PointerType) typeNode() {}

// MemQual is the "as val"/"as ref" memory qualifier trailing modifier.
type MemQual int

const (
	MemQualNone MemQual = iota
	MemQualVal
	MemQualRef
)

// FunctionType describes a function signature. When IsVariadic is set,
// every entry in Params is a fixed parameter and callers pass zero or more
// trailing arguments beyond len(Params); the variadic tail itself is not
// represented in Params.
type FunctionType struct {
	Return       Type
	Params       []Type
	ParamMemQual []MemQual // optional; nil if the declaration had none
	IsVariadic   bool
	IsNative     bool
	HasBody      bool
	TypedefName  string
}

func (*FunctionType) typeNode() {}

// CloneForDeclBoundary deep-clones t when it crosses a declaration
// boundary (e.g. copied from a declaration into a field or parameter
// list). Primitive/Opaque/Array/Pointer types are
// shared by pointer since the DAG they form is immutable; Struct and
// Function types are deep-cloned because their declaration-site slices
// must not alias the copy's.
func CloneForDeclBoundary(t Type) Type {
	switch v := t.(type) {
	case *StructType:
		clone := *v
		clone.Fields = append([]StructField(nil), v.Fields...)
		clone.Methods = append([]StructMethod(nil), v.Methods...)
		return &clone
	case *FunctionType:
		clone := *v
		clone.Params = append([]Type(nil), v.Params...)
		if v.ParamMemQual != nil {
			clone.ParamMemQual = append([]MemQual(nil), v.ParamMemQual...)
		}
		return &clone
	default:
		return t
	}
}
