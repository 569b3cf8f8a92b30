package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/naming"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[source]
marker = "MYLIB_API"
header-glob = "*.hpp"

[naming]
acronyms = ["AUTD", "FPGA"]

[output]
dir = "bindings"
targets = ["python", "julia"]

[csharp]
namespace = "Acme.Native"
calling-convention = "Cdecl"

[python]
class = "Native"
binary-stem = "autd3capi"
binary-suffix = "-x64"

[julia]
file = "julia/Native.jl"
acronyms = ["SOEM"]
bin-dir = "lib"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Source.Marker != "MYLIB_API" {
		t.Errorf("marker = %q, want MYLIB_API", m.Source.Marker)
	}
	if m.Source.HeaderGlob != "*.hpp" {
		t.Errorf("header glob = %q, want *.hpp", m.Source.HeaderGlob)
	}
	if m.Source.BuildFile != "CMakeLists.txt" {
		t.Errorf("build file = %q, want default", m.Source.BuildFile)
	}
	if !reflect.DeepEqual(m.Naming.Acronyms, []string{"AUTD", "FPGA"}) {
		t.Errorf("acronyms = %v", m.Naming.Acronyms)
	}
	if !reflect.DeepEqual(m.Output.Targets, []string{"python", "julia"}) {
		t.Errorf("targets = %v", m.Output.Targets)
	}
	if got := m.OutputDir(); got != filepath.Join(m.Dir, "bindings") {
		t.Errorf("output dir = %q", got)
	}

	path, err := m.TargetFile("julia")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(m.Dir, "bindings", "julia", "Native.jl") {
		t.Errorf("julia file = %q", path)
	}
	path, err = m.TargetFile("python")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "native_methods.py" {
		t.Errorf("python file = %q, want default name", path)
	}

	opts := m.BackendOptions()
	if opts.CSharp.Namespace != "Acme.Native" || opts.CSharp.CallingConvention != "Cdecl" {
		t.Errorf("csharp options = %+v", opts.CSharp)
	}
	if opts.Python.Class != "Native" || opts.Python.BinaryName("autd3capi") != "autd3capi-x64" {
		t.Errorf("python options = %+v", opts.Python)
	}
	if opts.Julia.BinDir != "lib" || !reflect.DeepEqual(opts.Julia.Acronyms, []string{"SOEM"}) {
		t.Errorf("julia options = %+v", opts.Julia)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "")

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	abs, _ := filepath.Abs(dir)
	if m.Dir != abs {
		t.Errorf("dir = %q, want %q", m.Dir, abs)
	}
	if m.Source.Marker != capi.DefaultMarker {
		t.Errorf("marker = %q, want %q", m.Source.Marker, capi.DefaultMarker)
	}
	if m.Source.HeaderGlob != "*.h" {
		t.Errorf("header glob = %q", m.Source.HeaderGlob)
	}
	if !reflect.DeepEqual(m.Naming.Acronyms, naming.DefaultAcronyms) {
		t.Errorf("acronyms = %v", m.Naming.Acronyms)
	}
	if !reflect.DeepEqual(m.Output.Targets, []string{"csharp", "python", "julia"}) {
		t.Errorf("targets = %v", m.Output.Targets)
	}
	if got := m.SnapshotPath(); got != filepath.Join(abs, ".capiwrap", "api.cbor") {
		t.Errorf("snapshot = %q", got)
	}
	for target, file := range map[string]string{
		"csharp": "NativeMethods.cs",
		"python": "native_methods.py",
		"julia":  "NativeMethods.jl",
	} {
		path, err := m.TargetFile(target)
		if err != nil {
			t.Fatal(err)
		}
		if path != filepath.Join(abs, file) {
			t.Errorf("%s file = %q", target, path)
		}
	}
	if _, err := m.TargetFile("rust"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	loaded := func() *Manifest {
		writeManifest(t, dir, "")
		m, err := Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}()
	if !reflect.DeepEqual(m, loaded) {
		t.Errorf("Default = %+v, want %+v", m, loaded)
	}
}

func TestEmptyAcronymsKept(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[naming]\nacronyms = []\n")

	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Naming.Acronyms == nil || len(m.Naming.Acronyms) != 0 {
		t.Errorf("acronyms = %#v, want empty", m.Naming.Acronyms)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown section", "[rust]\nfile = \"lib.rs\"\n"},
		{"unknown key", "[csharp]\nnamespce = \"X\"\n"},
		{"bad target", "[output]\ntargets = [\"rust\"]\n"},
		{"bad calling convention", "[csharp]\ncalling-convention = \"Pascal\"\n"},
		{"bad marker", "[source]\nmarker = \"EXPORT AUTD\"\n"},
		{"bad acronym", "[naming]\nacronyms = [\"AU-TD\"]\n"},
		{"wrong type", "[output]\ntargets = \"csharp\"\n"},
		{"empty file name", "[python]\nfile = \"\"\n"},
		{"syntax", "[output\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), FileName) {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[output]\ndir = \"out\"\n")

	sub := filepath.Join(root, "capi", "base")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	abs, _ := filepath.Abs(root)
	if m.Dir != abs {
		t.Errorf("dir = %q, want %q", m.Dir, abs)
	}
	if m.OutputDir() != filepath.Join(abs, "out") {
		t.Errorf("output dir = %q", m.OutputDir())
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when none exists")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}
