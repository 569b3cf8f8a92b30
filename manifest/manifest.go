// Package manifest handles capiwrap.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/capiwrap/backend"
	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/naming"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "capiwrap.toml"

// Manifest represents a capiwrap.toml configuration.
type Manifest struct {
	Source Source       `toml:"source"`
	Naming Naming       `toml:"naming"`
	Output Output       `toml:"output"`
	CSharp CSharpConfig `toml:"csharp"`
	Python PythonConfig `toml:"python"`
	Julia  JuliaConfig  `toml:"julia"`

	// Dir is the directory containing the capiwrap.toml file (set at load time).
	Dir string `toml:"-"`
}

// Source configures how headers are found and read.
type Source struct {
	Marker     string `toml:"marker"`
	BuildFile  string `toml:"build-file"`
	HeaderGlob string `toml:"header-glob"`
}

// Naming configures identifier conversion.
type Naming struct {
	Acronyms []string `toml:"acronyms"`
}

// Output configures what is written and where.
type Output struct {
	Dir      string   `toml:"dir"`
	Targets  []string `toml:"targets"`
	Snapshot string   `toml:"snapshot"`
}

// CSharpConfig configures the P/Invoke binding.
type CSharpConfig struct {
	File              string `toml:"file"`
	Namespace         string `toml:"namespace"`
	Class             string `toml:"class"`
	CallingConvention string `toml:"calling-convention"`
}

// PythonConfig configures the ctypes binding.
type PythonConfig struct {
	File         string `toml:"file"`
	Class        string `toml:"class"`
	BinaryStem   string `toml:"binary-stem"`
	BinarySuffix string `toml:"binary-suffix"`
}

// JuliaConfig configures the ccall binding.
type JuliaConfig struct {
	File     string   `toml:"file"`
	Acronyms []string `toml:"acronyms"`
	BinDir   string   `toml:"bin-dir"`
}

// Default returns the configuration used when no capiwrap.toml exists,
// rooted at dir.
func Default(dir string) (*Manifest, error) {
	m := &Manifest{}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.Dir = abs
	m.applyDefaults()
	return m, nil
}

// Load parses the capiwrap.toml file in dir.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses and validates the configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a capiwrap.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Source.Marker == "" {
		m.Source.Marker = capi.DefaultMarker
	}
	if m.Source.BuildFile == "" {
		m.Source.BuildFile = "CMakeLists.txt"
	}
	if m.Source.HeaderGlob == "" {
		m.Source.HeaderGlob = "*.h"
	}
	if m.Naming.Acronyms == nil {
		m.Naming.Acronyms = append([]string(nil), naming.DefaultAcronyms...)
	}
	if m.Output.Dir == "" {
		m.Output.Dir = "."
	}
	if len(m.Output.Targets) == 0 {
		m.Output.Targets = []string{"csharp", "python", "julia"}
	}
	if m.Output.Snapshot == "" {
		m.Output.Snapshot = filepath.Join(".capiwrap", "api.cbor")
	}
	if m.CSharp.File == "" {
		m.CSharp.File = "NativeMethods.cs"
	}
	if m.Python.File == "" {
		m.Python.File = "native_methods.py"
	}
	if m.Julia.File == "" {
		m.Julia.File = "NativeMethods.jl"
	}
}

// OutputDir returns the absolute output directory.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Output.Dir)
}

// SnapshotPath returns the absolute path of the API snapshot.
func (m *Manifest) SnapshotPath() string {
	return m.resolve(m.Output.Snapshot)
}

// TargetFile returns the output path for the named backend.
func (m *Manifest) TargetFile(target string) (string, error) {
	var file string
	switch target {
	case "csharp":
		file = m.CSharp.File
	case "python":
		file = m.Python.File
	case "julia":
		file = m.Julia.File
	default:
		return "", fmt.Errorf("unknown target %q", target)
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	return filepath.Join(m.OutputDir(), file), nil
}

// BackendOptions converts the manifest into backend options.
func (m *Manifest) BackendOptions() backend.Options {
	return backend.Options{
		Acronyms: m.Naming.Acronyms,
		CSharp: backend.CSharpOptions{
			Namespace:         m.CSharp.Namespace,
			Class:             m.CSharp.Class,
			CallingConvention: m.CSharp.CallingConvention,
		},
		Python: backend.PythonOptions{
			Class:        m.Python.Class,
			BinaryStem:   m.Python.BinaryStem,
			BinarySuffix: m.Python.BinarySuffix,
		},
		Julia: backend.JuliaOptions{
			Acronyms: m.Julia.Acronyms,
			BinDir:   m.Julia.BinDir,
		},
	}
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
