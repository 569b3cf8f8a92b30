// Package backend renders parsed C declarations as FFI binding source for
// the supported host languages.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/capiwrap/capi"
)

// Backend is implemented by every binding generator. A Backend instance
// covers exactly one output file: per-library setup emitted by Render is
// remembered for the life of the instance.
type Backend interface {
	// Name returns the registry name (e.g., "csharp").
	Name() string

	// CommentPrefix returns the line comment token of the host language.
	CommentPrefix() string

	// Prologue returns the text that opens the file (imports, namespace).
	Prologue() string

	// Epilogue returns the text that closes the file.
	Epilogue() string

	// Render returns the binding for fn, which belongs to fn.Library.
	// On error nothing is emitted and the instance state is unchanged.
	Render(fn capi.Function) (string, error)
}

// Options configures the backends. Zero values select the defaults.
type Options struct {
	Acronyms []string
	CSharp   CSharpOptions
	Python   PythonOptions
	Julia    JuliaOptions
}

// Factory builds a fresh Backend.
type Factory func(Options) Backend

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a backend factory. It is called from init in each
// backend's file.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("backend %q already registered", name))
	}
	registry[name] = factory
}

// New returns a new instance of the named backend.
func New(name string, opts Options) (Backend, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return factory(opts), nil
}

// Names returns the registered backend names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnsupportedType is returned (wrapped in an UnsupportedTypeError) when
// a backend has no mapping for a type.
var ErrUnsupportedType = errors.New("unsupported type")

// UnsupportedTypeError reports the symbol and the position in its signature
// that a backend could not map.
type UnsupportedTypeError struct {
	Backend  string
	Symbol   string
	Position string // "return" or the argument name
	Type     capi.TypeSignature
	Const    bool
}

func (e *UnsupportedTypeError) Error() string {
	typ := e.Type.String()
	if e.Const && e.Type.Base != capi.String {
		typ = "const " + typ
	}
	if e.Position == "return" {
		return fmt.Sprintf("%s: %s: cannot map return type %s", e.Backend, e.Symbol, typ)
	}
	return fmt.Sprintf("%s: %s: cannot map type %s of argument %q", e.Backend, e.Symbol, typ, e.Position)
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// libraryGroup records which libraries already had their one-time setup
// emitted in the current output.
type libraryGroup map[string]bool

func (g libraryGroup) seen(lib string) bool {
	return g[lib]
}

func (g libraryGroup) add(lib string) {
	g[lib] = true
}

// argName returns a usable parameter name for argument i.
func argName(a capi.Argument, i int) string {
	if a.Name == "" {
		return fmt.Sprintf("arg%d", i)
	}
	return a.Name
}
