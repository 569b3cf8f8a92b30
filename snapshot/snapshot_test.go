package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/capiwrap/capi"
)

func fn(lib, name string, ret capi.BaseType, args ...capi.Argument) capi.Function {
	return capi.Function{
		Return:  capi.TypeSignature{Base: ret},
		Name:    name,
		Args:    args,
		Library: lib,
	}
}

var handle = capi.Argument{Type: capi.TypeSignature{Base: capi.Void, Ptr: capi.PtrSingle}, Name: "handle"}

func TestNewOrdersEntries(t *testing.T) {
	s := New([]capi.Function{
		fn("b-link", "AUTDLinkB", capi.Void),
		fn("autd3capi", "AUTDWavelength", capi.Float64, handle),
		fn("autd3capi", "AUTDCreateController", capi.Void),
	})
	if s.Version != Version {
		t.Errorf("version = %d", s.Version)
	}
	got := []string{}
	for _, e := range s.Functions {
		got = append(got, e.Library+"/"+e.Symbol)
	}
	want := []string{"autd3capi/AUTDCreateController", "autd3capi/AUTDWavelength", "b-link/AUTDLinkB"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if p := s.Functions[1].Prototype; p != "double AUTDWavelength(void* handle)" {
		t.Errorf("prototype = %q", p)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	fns := []capi.Function{
		fn("autd3capi", "AUTDWavelength", capi.Float64, handle),
		fn("autd3capi", "AUTDCreateController", capi.Void),
	}
	a, err := Marshal(New(fns))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(New([]capi.Function{fns[1], fns[0]}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("equal snapshots encoded differently")
	}

	back, err := Unmarshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if d := Diff(New(fns), back); !d.Empty() {
		t.Errorf("decoded snapshot drifted: %+v", d)
	}
}

func TestUnmarshalRejectsVersion(t *testing.T) {
	data, err := cborEncMode.Marshal(Snapshot{Version: Version + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Error("expected version error")
	}
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("expected decode error")
	}
}

func TestDiff(t *testing.T) {
	old := New([]capi.Function{
		fn("autd3capi", "AUTDCreateController", capi.Void),
		fn("autd3capi", "AUTDWavelength", capi.Float32, handle),
		fn("autd3capi", "AUTDRemoved", capi.Void),
	})
	cur := New([]capi.Function{
		fn("autd3capi", "AUTDCreateController", capi.Void),
		fn("autd3capi", "AUTDWavelength", capi.Float64, handle),
		fn("autd3capi-soem-link", "AUTDLinkSOEM", capi.Void),
	})

	d := Diff(old, cur)
	if len(d.Added) != 1 || d.Added[0].Symbol != "AUTDLinkSOEM" {
		t.Errorf("added = %+v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].Symbol != "AUTDRemoved" {
		t.Errorf("removed = %+v", d.Removed)
	}
	if len(d.Changed) != 1 {
		t.Fatalf("changed = %+v", d.Changed)
	}
	c := d.Changed[0]
	if c.Old.Prototype != "float AUTDWavelength(void* handle)" || c.New.Prototype != "double AUTDWavelength(void* handle)" {
		t.Errorf("change = %+v", c)
	}

	if d := Diff(cur, cur); !d.Empty() {
		t.Errorf("self diff = %+v", d)
	}
	if d := Diff(nil, cur); len(d.Added) != 3 || len(d.Removed) != 0 {
		t.Errorf("diff from nil = %+v", d)
	}
}

func TestReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".capiwrap", "api.cbor")

	s, err := Read(path)
	if err != nil || s != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", s, err)
	}

	want := New([]capi.Function{fn("autd3capi", "AUTDCreateController", capi.Void)})
	if err := Write(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if d := Diff(want, got); !d.Empty() {
		t.Errorf("round trip drifted: %+v", d)
	}

	if err := os.WriteFile(path, []byte("not cbor"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}
