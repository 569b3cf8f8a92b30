package backend

import (
	"fmt"

	"github.com/chazu/capiwrap/capi"
)

// typeKey is the lookup key of a mapping table.
type typeKey struct {
	base    capi.BaseType
	ptr     capi.PointerDepth
	isConst bool
}

// typeTable maps C types to host type tokens. A missing key means the type
// is unsupported by the backend.
type typeTable map[typeKey]string

// numeric lists the base types that behave as plain scalars behind a
// pointer.
var numeric = []capi.BaseType{
	capi.Bool,
	capi.Int8, capi.Uint8,
	capi.Int16, capi.Uint16,
	capi.Int32, capi.Int64,
	capi.Uint32, capi.Uint64,
	capi.Float32, capi.Float64,
}

// scalars adds the by-value entry for every base type in m.
func (t typeTable) scalars(m map[capi.BaseType]string) typeTable {
	for b, tok := range m {
		t[typeKey{base: b, ptr: capi.PtrNone}] = tok
	}
	return t
}

// pointers adds an entry at depth for each base in bases, formatting the
// by-value token of that base with format.
func (t typeTable) pointers(depth capi.PointerDepth, format string, bases ...capi.BaseType) typeTable {
	for _, b := range bases {
		tok, ok := t[typeKey{base: b, ptr: capi.PtrNone}]
		if !ok {
			panic(fmt.Sprintf("backend: no scalar mapping for %s", b))
		}
		t[typeKey{base: b, ptr: depth}] = fmt.Sprintf(format, tok)
	}
	return t
}

// set adds a single entry.
func (t typeTable) set(b capi.BaseType, depth capi.PointerDepth, isConst bool, tok string) typeTable {
	t[typeKey{base: b, ptr: depth, isConst: isConst}] = tok
	return t
}

// lookup resolves sig. A const-specific entry wins over the plain one.
func (t typeTable) lookup(sig capi.TypeSignature, isConst bool) (string, bool) {
	if isConst {
		if tok, ok := t[typeKey{base: sig.Base, ptr: sig.Ptr, isConst: true}]; ok {
			return tok, true
		}
	}
	tok, ok := t[typeKey{base: sig.Base, ptr: sig.Ptr}]
	return tok, ok
}
