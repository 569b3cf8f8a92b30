package backend

import (
	"fmt"
	"strings"

	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/naming"
)

// JuliaOptions configures the ccall backend.
type JuliaOptions struct {
	// Acronyms overrides Options.Acronyms for wrapper names when non-empty.
	// When both are nil the default acronyms apply; an empty non-nil
	// Options.Acronyms disables acronym matching.
	Acronyms []string
	// BinDir is the directory, relative to the generated file, holding the
	// shared libraries. Default "bin".
	BinDir string
}

func init() {
	Register("julia", func(opts Options) Backend {
		acronyms := opts.Julia.Acronyms
		if len(acronyms) == 0 {
			acronyms = opts.Acronyms
		}
		if acronyms == nil {
			acronyms = naming.DefaultAcronyms
		}
		return NewJulia(opts.Julia, naming.NewSplitter(acronyms))
	})
}

var juliaScalars = map[capi.BaseType]string{
	capi.Void:    "Cvoid",
	capi.Bool:    "Bool",
	capi.Char:    "UInt8",
	capi.String:  "Cstring",
	capi.Int8:    "Int8",
	capi.Uint8:   "UInt8",
	capi.Int16:   "Int16",
	capi.Uint16:  "UInt16",
	capi.Int32:   "Int32",
	capi.Int64:   "Int64",
	capi.Uint32:  "UInt32",
	capi.Uint64:  "UInt64",
	capi.Float32: "Float32",
	capi.Float64: "Float64",
}

var juliaArgs = typeTable{}.
	scalars(juliaScalars).
	pointers(capi.PtrSingle, "Ref{%s}", numeric...).
	pointers(capi.PtrDouble, "Ref{Ptr{%s}}", append([]capi.BaseType{capi.Void}, numeric...)...).
	set(capi.Void, capi.PtrSingle, false, "Ptr{Cvoid}").
	set(capi.Char, capi.PtrSingle, false, "Cstring")

var juliaReturns = typeTable{}.
	scalars(juliaScalars).
	pointers(capi.PtrSingle, "Ptr{%s}", append([]capi.BaseType{capi.Void}, numeric...)...).
	set(capi.Char, capi.PtrSingle, false, "Cstring")

// Julia renders one-line ccall wrappers, declaring each library path
// constant once.
type Julia struct {
	opts     JuliaOptions
	splitter *naming.Splitter
	libs     libraryGroup
}

// NewJulia returns a ccall backend. Wrapper names are derived from exported
// symbols with splitter.
func NewJulia(opts JuliaOptions, splitter *naming.Splitter) *Julia {
	if opts.BinDir == "" {
		opts.BinDir = "bin"
	}
	if splitter == nil {
		splitter = naming.NewSplitter(naming.DefaultAcronyms)
	}
	return &Julia{opts: opts, splitter: splitter, libs: libraryGroup{}}
}

func (j *Julia) Name() string          { return "julia" }
func (j *Julia) CommentPrefix() string { return "#" }

func (j *Julia) Prologue() string {
	return `
function get_lib_ext()
    if Sys.iswindows()
        return ".dll"
    elseif Sys.isapple()
        return ".dylib"
    elseif Sys.islinux()
        return ".so"
    end
end

function get_lib_prefix()
    if Sys.iswindows()
        return ""
    else
        return "lib"
    end
end
`
}

func (j *Julia) Epilogue() string {
	return ""
}

func (j *Julia) Render(fn capi.Function) (string, error) {
	ret, ok := juliaReturns.lookup(fn.Return, false)
	if !ok {
		return "", j.unsupported(fn, "return", fn.Return, false)
	}
	types := make([]string, 0, len(fn.Args))
	names := make([]string, 0, len(fn.Args))
	for i, a := range fn.Args {
		typ, ok := juliaArgs.lookup(a.Type, a.Const)
		if !ok {
			return "", j.unsupported(fn, argName(a, i), a.Type, a.Const)
		}
		types = append(types, typ)
		names = append(names, naming.JuliaKeywords.Escape(argName(a, i), "_"))
	}

	handle := "_" + naming.ToSnake(fn.Library)
	var b strings.Builder
	if !j.libs.seen(fn.Library) {
		fmt.Fprintf(&b, "const %s = joinpath(@__DIR__, %q, get_lib_prefix() * %q * get_lib_ext())\n",
			handle, j.opts.BinDir, fn.Library)
		j.libs.add(fn.Library)
	}
	call := append([]string{fmt.Sprintf("(:%s, %s)", fn.Name, handle), ret, juliaTuple(types)}, names...)
	fmt.Fprintf(&b, "%s(%s) = ccall(%s)",
		j.splitter.CamelToSnake(fn.Name), strings.Join(names, ", "), strings.Join(call, ", "))
	return b.String(), nil
}

// juliaTuple renders a tuple type literal; a one-element tuple needs a
// trailing comma.
func juliaTuple(elems []string) string {
	switch len(elems) {
	case 0:
		return "()"
	case 1:
		return "(" + elems[0] + ",)"
	default:
		return "(" + strings.Join(elems, ", ") + ")"
	}
}

func (j *Julia) unsupported(fn capi.Function, pos string, t capi.TypeSignature, isConst bool) error {
	return &UnsupportedTypeError{Backend: j.Name(), Symbol: fn.Name, Position: pos, Type: t, Const: isConst}
}
