package backend

import (
	"fmt"
	"strings"

	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/naming"
)

// CSharpOptions configures the P/Invoke backend.
type CSharpOptions struct {
	Namespace         string // default "AUTD3Sharp"
	Class             string // default "NativeMethods"
	CallingConvention string // default "StdCall"
}

func init() {
	Register("csharp", func(opts Options) Backend { return NewCSharp(opts.CSharp) })
}

var csharpScalars = map[capi.BaseType]string{
	capi.Bool:    "bool",
	capi.Char:    "byte",
	capi.String:  "string",
	capi.Int8:    "sbyte",
	capi.Uint8:   "byte",
	capi.Int16:   "short",
	capi.Uint16:  "ushort",
	capi.Int32:   "int",
	capi.Int64:   "long",
	capi.Uint32:  "uint",
	capi.Uint64:  "ulong",
	capi.Float32: "float",
	capi.Float64: "double",
}

var csharpArgs = typeTable{}.
	scalars(csharpScalars).
	pointers(capi.PtrSingle, "%s*", numeric...).
	set(capi.Void, capi.PtrSingle, false, "IntPtr").
	set(capi.Void, capi.PtrDouble, false, "out IntPtr").
	set(capi.Char, capi.PtrSingle, false, "StringBuilder")

var csharpReturns = typeTable{}.
	scalars(csharpScalars).
	set(capi.Void, capi.PtrNone, false, "void")

// CSharp renders statically bound DllImport declarations.
type CSharp struct {
	opts CSharpOptions
}

// NewCSharp returns a C# backend.
func NewCSharp(opts CSharpOptions) *CSharp {
	if opts.Namespace == "" {
		opts.Namespace = "AUTD3Sharp"
	}
	if opts.Class == "" {
		opts.Class = "NativeMethods"
	}
	if opts.CallingConvention == "" {
		opts.CallingConvention = "StdCall"
	}
	return &CSharp{opts: opts}
}

func (c *CSharp) Name() string          { return "csharp" }
func (c *CSharp) CommentPrefix() string { return "//" }

func (c *CSharp) Prologue() string {
	return fmt.Sprintf(`
using System;
using System.Runtime.InteropServices;
using System.Text;

namespace %s
{
    internal static unsafe class %s
    {`, c.opts.Namespace, c.opts.Class)
}

func (c *CSharp) Epilogue() string {
	return `    }
}`
}

func (c *CSharp) Render(fn capi.Function) (string, error) {
	ret, ok := csharpReturns.lookup(fn.Return, false)
	if !ok {
		return "", c.unsupported(fn, "return", fn.Return, false)
	}

	usesBool := fn.Return.Base == capi.Bool
	params := make([]string, 0, len(fn.Args))
	for i, a := range fn.Args {
		typ, ok := csharpArgs.lookup(a.Type, a.Const)
		if !ok {
			return "", c.unsupported(fn, argName(a, i), a.Type, a.Const)
		}
		var b strings.Builder
		if a.Type == (capi.TypeSignature{Base: capi.Bool}) {
			usesBool = true
			b.WriteString("[MarshalAs(UnmanagedType.U1)] ")
		}
		b.WriteString(typ)
		b.WriteByte(' ')
		b.WriteString(naming.CSharpKeywords.Escape(naming.SnakeToLowerCamel(argName(a, i)), "@"))
		params = append(params, b.String())
	}

	var b strings.Builder
	b.WriteString("        ")
	fmt.Fprintf(&b, "[DllImport(%q, ", fn.Library)
	if usesBool {
		b.WriteString("CharSet = CharSet.Ansi, BestFitMapping = false, ThrowOnUnmappableChar = true, ")
	}
	fmt.Fprintf(&b, "CallingConvention = CallingConvention.%s)] ", c.opts.CallingConvention)
	if fn.Return.Base == capi.Bool {
		b.WriteString("[return: MarshalAs(UnmanagedType.U1)] ")
	}
	fmt.Fprintf(&b, "public static extern %s %s(%s);", ret, fn.Name, strings.Join(params, ", "))
	return b.String(), nil
}

func (c *CSharp) unsupported(fn capi.Function, pos string, t capi.TypeSignature, isConst bool) error {
	return &UnsupportedTypeError{Backend: c.Name(), Symbol: fn.Name, Position: pos, Type: t, Const: isConst}
}
