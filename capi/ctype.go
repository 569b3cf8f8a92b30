package capi

import "strings"

// BaseType is the C base type of a declaration, without indirection.
type BaseType int

const (
	// Unknown marks a spelling outside the recognized vocabulary. It is kept
	// in the model so a single bad declaration does not abort a run; backends
	// refuse to render it.
	Unknown BaseType = iota
	Void
	Bool
	Char
	String // const char*, a distinct logical type
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Int64
	Uint32
	Uint64
	Float32
	Float64
)

var baseTypeNames = [...]string{
	Unknown: "unknown",
	Void:    "void",
	Bool:    "bool",
	Char:    "char",
	String:  "string",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Int64:   "int64",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
}

func (b BaseType) String() string {
	if b < 0 || int(b) >= len(baseTypeNames) {
		return baseTypeNames[Unknown]
	}
	return baseTypeNames[b]
}

// cSpellings maps each recognized C spelling to its base type.
// "const char" is handled separately because its meaning depends on
// the pointer depth.
var cSpellings = map[string]BaseType{
	"void":     Void,
	"bool":     Bool,
	"char":     Char,
	"int8_t":   Int8,
	"uint8_t":  Uint8,
	"int16_t":  Int16,
	"uint16_t": Uint16,
	"int32_t":  Int32,
	"int64_t":  Int64,
	"uint32_t": Uint32,
	"uint64_t": Uint64,
	"float":    Float32,
	"double":   Float64,
}

// cNames is the reverse of cSpellings, used to print signatures.
var cNames = func() map[BaseType]string {
	m := make(map[BaseType]string, len(cSpellings)+1)
	for spelling, b := range cSpellings {
		m[b] = spelling
	}
	m[String] = "const char*"
	return m
}()

// PointerDepth is the number of indirection levels written on a type.
type PointerDepth int

const (
	PtrNone PointerDepth = iota
	PtrSingle
	PtrDouble
)

func (p PointerDepth) String() string {
	switch p {
	case PtrSingle:
		return "*"
	case PtrDouble:
		return "**"
	default:
		return ""
	}
}

// TypeSignature is a C type as base type times pointer depth. It is a
// comparable value and can be used as a map key.
type TypeSignature struct {
	Base BaseType
	Ptr  PointerDepth
}

// Resolved reports whether the base type was recognized.
func (t TypeSignature) Resolved() bool {
	return t.Base != Unknown
}

// IsPointer reports whether the type carries any indirection.
func (t TypeSignature) IsPointer() bool {
	return t.Ptr != PtrNone
}

// String renders the signature using C spelling, e.g. "void**" or
// "const char*".
func (t TypeSignature) String() string {
	name, ok := cNames[t.Base]
	if !ok {
		name = t.Base.String()
	}
	return name + t.Ptr.String()
}

// ParseType converts a raw type token such as "uint8_t*" or "const char*"
// into a TypeSignature. It never fails: unrecognized spellings and
// unsupported indirection come back as Unknown.
func ParseType(token string) TypeSignature {
	base, stars := splitStars(token)

	var depth PointerDepth
	switch stars {
	case 0:
		depth = PtrNone
	case 1:
		depth = PtrSingle
	case 2:
		depth = PtrDouble
	default:
		return TypeSignature{Base: Unknown, Ptr: PtrNone}
	}

	if base == "const char" {
		switch depth {
		case PtrSingle:
			return TypeSignature{Base: String, Ptr: PtrNone}
		case PtrNone:
			return TypeSignature{Base: Char, Ptr: PtrNone}
		default:
			return TypeSignature{Base: Unknown, Ptr: depth}
		}
	}

	base = strings.TrimPrefix(base, "const ")
	b, ok := cSpellings[base]
	if !ok {
		return TypeSignature{Base: Unknown, Ptr: depth}
	}
	return TypeSignature{Base: b, Ptr: depth}
}

// splitStars trims token, strips trailing '*' characters (whitespace
// between them is allowed) and returns the whitespace-normalized base
// spelling with the number of stars removed.
func splitStars(token string) (string, int) {
	s := strings.TrimSpace(token)
	stars := 0
	for {
		s = strings.TrimRight(s, " \t")
		if !strings.HasSuffix(s, "*") {
			break
		}
		s = s[:len(s)-1]
		stars++
	}
	return strings.Join(strings.Fields(s), " "), stars
}
