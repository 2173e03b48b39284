// Package ast defines the abstract type graph produced by the Theta parser:
// module metadata, qualified names, documentation text, and the recursive
// Type union that definitions declare.
package ast

import (
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// ModuleName identifies a module, e.g. "com.example.foo".
type ModuleName string

// String returns the dotted module name.
func (m ModuleName) String() string { return string(m) }

// Name is a fully-qualified identifier: a module name plus a local name.
// Two names are equal iff both components match.
type Name struct {
	Module ModuleName
	Name   string
}

// String returns the fully-qualified "module.local" spelling.
func (n Name) String() string {
	if n.Module == "" {
		return n.Name
	}
	return string(n.Module) + "." + n.Name
}

// Qualify builds a Name local to the given module.
func Qualify(module ModuleName, local string) Name {
	return Name{Module: module, Name: local}
}

// Doc is normalized documentation text: comment markers and indentation
// artifacts stripped, internal newlines preserved. The empty string means
// no documentation.
type Doc string

// Empty reports whether no documentation is attached.
func (d Doc) Empty() bool { return d == "" }

// Metadata is the header block of a module: the language and encoding
// versions it declares plus its own name. It is constructed once per module
// parse and never mutated afterwards.
type Metadata struct {
	LanguageVersion *semver.Version
	EncodingVersion *semver.Version
	ModuleName      ModuleName
}

// Module is a parsed module body: metadata, imports in source order, and
// definitions in source order.
type Module struct {
	Name        ModuleName
	Metadata    Metadata
	Imports     []ModuleName
	Definitions []Definition
}

// Definition looks up a definition by local name. The second result is
// false if the module declares no such name.
func (m *Module) Definition(local string) (Definition, bool) {
	for _, d := range m.Definitions {
		if d.Name.Name == local {
			return d, true
		}
	}
	return Definition{}, false
}

// Definition is a named, optionally documented declaration of a type.
type Definition struct {
	Name Name
	Doc  Doc
	Type Type
}

// Field is one named slot of a record or case. Order is significant.
type Field struct {
	Name string
	Doc  Doc
	Type Type
}

// Case is one alternative of a variant. Its name is qualified by the module,
// not by the enclosing variant.
type Case struct {
	Name   Name
	Doc    Doc
	Fields []Field
}

// PrimitiveKind enumerates the built-in primitive types.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Bytes
	Int
	Long
	Float
	Double
	String
	Date
	Datetime
	UUID
)

var primitiveNames = map[PrimitiveKind]string{
	Bool:     "Bool",
	Bytes:    "Bytes",
	Int:      "Int",
	Long:     "Long",
	Float:    "Float",
	Double:   "Double",
	String:   "String",
	Date:     "Date",
	Datetime: "Datetime",
	UUID:     "UUID",
}

// String returns the source spelling of the primitive.
func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Type is the recursive tagged union of Theta type expressions and
// definition bodies.
type Type interface {
	// String returns a source-like spelling used in diagnostics.
	String() string
	typeNode()
}

// Primitive is a built-in scalar type.
type Primitive struct {
	Kind PrimitiveKind
}

func (t Primitive) String() string { return t.Kind.String() }
func (t Primitive) typeNode()      {}

// Fixed is a byte array of a fixed, non-negative size.
type Fixed struct {
	Size int
}

func (t Fixed) String() string { return fmt.Sprintf("Fixed(%d)", t.Size) }
func (t Fixed) typeNode()      {}

// Array is a homogeneous ordered sequence.
type Array struct {
	Element Type
}

func (t Array) String() string { return "[" + t.Element.String() + "]" }
func (t Array) typeNode()      {}

// Map is a homogeneous value type keyed by string. Keys are implicit and
// not represented as a separate type.
type Map struct {
	Value Type
}

func (t Map) String() string { return "{" + t.Value.String() + "}" }
func (t Map) typeNode()      {}

// Optional marks presence or absence of the wrapped value.
type Optional struct {
	Element Type
}

func (t Optional) String() string { return t.Element.String() + "?" }
func (t Optional) typeNode()      {}

// Reference names another definition by fully-qualified name.
type Reference struct {
	Name Name
}

func (t Reference) String() string { return t.Name.String() }
func (t Reference) typeNode()      {}

// Record is a named product type with ordered fields.
type Record struct {
	Name   Name
	Fields []Field
}

func (t Record) String() string { return "record " + t.Name.String() }
func (t Record) typeNode()      {}

// Variant is a named sum type with ordered cases.
type Variant struct {
	Name  Name
	Cases []Case
}

func (t Variant) String() string { return "variant " + t.Name.String() }
func (t Variant) typeNode()      {}

// Enum is a named set of bare symbols. Symbol order is significant.
type Enum struct {
	Name    Name
	Symbols []string
}

func (t Enum) String() string {
	return "enum " + t.Name.String() + " = " + strings.Join(t.Symbols, " | ")
}
func (t Enum) typeNode() {}

// Newtype is a nominally distinct wrapper around another type.
type Newtype struct {
	Name       Name
	Underlying Type
}

func (t Newtype) String() string { return "newtype " + t.Name.String() }
func (t Newtype) typeNode()      {}
