// Package capi models exported C declarations and parses them out of
// annotated headers.
package capi

import (
	"fmt"
	"strings"
)

// Argument is one parameter of an exported function.
type Argument struct {
	Type  TypeSignature
	Name  string
	Const bool // written with a leading const; only meaningful for pointers
}

// Function is one exported declaration. Name is the exact C symbol and is
// never renamed; backends derive host identifiers from it.
type Function struct {
	Return  TypeSignature
	Name    string
	Args    []Argument
	Library string // owning shared library, attached by the driver
	Pos     Position
}

// Position locates a declaration in its header.
type Position struct {
	Path string
	Line int // line of the marker, 1-based
}

func (p Position) String() string {
	if p.Path == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.Path, p.Line)
}

// Header pairs a header file with the shared library that exports it.
type Header struct {
	Path    string
	Library string
}

// ParseArgument parses one comma-separated parameter such as
// "const uint8_t* buf". The last whitespace-delimited token is the name and
// everything before it is the type. A '*' glued to the front of the name is
// moved onto the type. It returns false for an empty segment.
func ParseArgument(segment string) (Argument, bool) {
	tokens := strings.Fields(segment)
	if len(tokens) == 0 {
		return Argument{}, false
	}

	name := tokens[len(tokens)-1]
	typeTokens := tokens[:len(tokens)-1]
	if stripped := strings.TrimLeft(name, "*"); stripped != name {
		typeTokens = append(typeTokens[:len(typeTokens):len(typeTokens)], name[:len(name)-len(stripped)])
		name = stripped
	}

	typ := strings.Join(typeTokens, " ")
	return Argument{
		Type:  ParseType(typ),
		Name:  name,
		Const: len(typeTokens) > 0 && typeTokens[0] == "const",
	}, true
}

// Unresolved lists the positions in the signature whose base type was not
// recognized ("return" or the argument name).
func (f Function) Unresolved() []string {
	var out []string
	if !f.Return.Resolved() {
		out = append(out, "return")
	}
	for _, a := range f.Args {
		if !a.Type.Resolved() {
			out = append(out, a.Name)
		}
	}
	return out
}

// String renders the function as a one-line C prototype.
func (f Function) String() string {
	var b strings.Builder
	b.WriteString(f.Return.String())
	b.WriteByte(' ')
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		if a.Const && a.Type.Base != String {
			b.WriteString("const ")
		}
		b.WriteString(a.Type.String())
		b.WriteByte(' ')
		b.WriteString(a.Name)
	}
	b.WriteByte(')')
	return b.String()
}
