package backend

import (
	"fmt"
	"strings"

	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/naming"
)

// PythonOptions configures the ctypes backend.
type PythonOptions struct {
	Class string // default "NativeMethods"

	// BinaryStem and BinarySuffix turn a library name into the file name
	// of the shared object: the first occurrence of BinaryStem is replaced
	// with BinaryStem+BinarySuffix. An empty stem appends the suffix.
	BinaryStem   string
	BinarySuffix string
}

// BinaryName returns the shared object base name for lib.
func (o PythonOptions) BinaryName(lib string) string {
	if o.BinaryStem == "" {
		return lib + o.BinarySuffix
	}
	return strings.Replace(lib, o.BinaryStem, o.BinaryStem+o.BinarySuffix, 1)
}

func init() {
	Register("python", func(opts Options) Backend { return NewPython(opts.Python) })
}

var pythonTypes = typeTable{}.
	scalars(map[capi.BaseType]string{
		capi.Void:    "None",
		capi.Bool:    "c_bool",
		capi.Char:    "c_char",
		capi.String:  "c_char_p",
		capi.Int8:    "c_int8",
		capi.Uint8:   "c_uint8",
		capi.Int16:   "c_int16",
		capi.Uint16:  "c_uint16",
		capi.Int32:   "c_int32",
		capi.Int64:   "c_int64",
		capi.Uint32:  "c_uint32",
		capi.Uint64:  "c_uint64",
		capi.Float32: "c_float",
		capi.Float64: "c_double",
	}).
	pointers(capi.PtrSingle, "POINTER(%s)", numeric...).
	set(capi.Void, capi.PtrSingle, false, "c_void_p").
	set(capi.Void, capi.PtrDouble, false, "POINTER(c_void_p)").
	set(capi.Char, capi.PtrSingle, false, "c_char_p")

// Python renders ctypes argtypes/restype declarations, loading each shared
// library once.
type Python struct {
	opts PythonOptions
	libs libraryGroup
}

// NewPython returns a ctypes backend with an empty library group.
func NewPython(opts PythonOptions) *Python {
	if opts.Class == "" {
		opts.Class = "NativeMethods"
	}
	return &Python{opts: opts, libs: libraryGroup{}}
}

func (p *Python) Name() string          { return "python" }
func (p *Python) CommentPrefix() string { return "#" }

func (p *Python) Prologue() string {
	return fmt.Sprintf(`
import threading
import ctypes
import os
from ctypes import c_void_p, c_bool, c_char, c_char_p, c_int8, c_uint8, c_int16, c_uint16, c_int32, c_int64, c_uint32, c_uint64, c_float, c_double, POINTER


class Singleton(type):
    _instances = {}
    _lock = threading.Lock()

    def __call__(cls, *args, **kwargs):
        if cls not in cls._instances:
            with cls._lock:
                if cls not in cls._instances:
                    cls._instances[cls] = super(Singleton, cls).__call__(*args, **kwargs)
        return cls._instances[cls]


class %s(metaclass=Singleton):
    def init_dll(self, bin_location, bin_prefix, bin_ext):
        self._bin_location = bin_location
        self._bin_prefix = bin_prefix
        self._bin_ext = bin_ext`, p.opts.Class)
}

func (p *Python) Epilogue() string {
	return ""
}

func (p *Python) Render(fn capi.Function) (string, error) {
	ret, ok := pythonTypes.lookup(fn.Return, false)
	if !ok {
		return "", p.unsupported(fn, "return", fn.Return, false)
	}
	args := make([]string, 0, len(fn.Args))
	for i, a := range fn.Args {
		typ, ok := pythonTypes.lookup(a.Type, a.Const)
		if !ok {
			return "", p.unsupported(fn, argName(a, i), a.Type, a.Const)
		}
		args = append(args, typ)
	}

	handle := naming.ToSnake(fn.Library)
	var b strings.Builder
	if !p.libs.seen(fn.Library) {
		fmt.Fprintf(&b, "\n    def init_%s(self):\n", handle)
		fmt.Fprintf(&b, "        if hasattr(self, '%s'):\n", handle)
		b.WriteString("            return\n")
		fmt.Fprintf(&b, "        self.%s = ctypes.CDLL(os.path.join(self._bin_location, self._bin_prefix + %q + self._bin_ext))\n",
			handle, p.opts.BinaryName(fn.Library))
		p.libs.add(fn.Library)
	}
	fmt.Fprintf(&b, "        self.%s.%s.argtypes = [%s]\n", handle, fn.Name, strings.Join(args, ", "))
	fmt.Fprintf(&b, "        self.%s.%s.restype = %s", handle, fn.Name, ret)
	return b.String(), nil
}

func (p *Python) unsupported(fn capi.Function, pos string, t capi.TypeSignature, isConst bool) error {
	return &UnsupportedTypeError{Backend: p.Name(), Symbol: fn.Name, Position: pos, Type: t, Const: isConst}
}
