package capi

import "testing"

func TestParseType(t *testing.T) {
	tests := []struct {
		token string
		want  TypeSignature
	}{
		{"void", TypeSignature{Void, PtrNone}},
		{"void*", TypeSignature{Void, PtrSingle}},
		{"void**", TypeSignature{Void, PtrDouble}},
		{"void * *", TypeSignature{Void, PtrDouble}},
		{"  int32_t  ", TypeSignature{Int32, PtrNone}},
		{"uint8_t*", TypeSignature{Uint8, PtrSingle}},
		{"const uint8_t*", TypeSignature{Uint8, PtrSingle}},
		{"const  char *", TypeSignature{String, PtrNone}},
		{"const char*", TypeSignature{String, PtrNone}},
		{"const char", TypeSignature{Char, PtrNone}},
		{"const char**", TypeSignature{Unknown, PtrDouble}},
		{"char*", TypeSignature{Char, PtrSingle}},
		{"bool", TypeSignature{Bool, PtrNone}},
		{"float", TypeSignature{Float32, PtrNone}},
		{"double*", TypeSignature{Float64, PtrSingle}},
		{"uint64_t", TypeSignature{Uint64, PtrNone}},
		{"int", TypeSignature{Unknown, PtrNone}},
		{"size_t*", TypeSignature{Unknown, PtrSingle}},
		{"void***", TypeSignature{Unknown, PtrNone}},
	}
	for _, tt := range tests {
		if got := ParseType(tt.token); got != tt.want {
			t.Errorf("ParseType(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestTypeSignatureString(t *testing.T) {
	tests := []struct {
		sig  TypeSignature
		want string
	}{
		{TypeSignature{Void, PtrDouble}, "void**"},
		{TypeSignature{String, PtrNone}, "const char*"},
		{TypeSignature{Uint32, PtrSingle}, "uint32_t*"},
		{TypeSignature{Float64, PtrNone}, "double"},
		{TypeSignature{Unknown, PtrSingle}, "unknown*"},
	}
	for _, tt := range tests {
		if got := tt.sig.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for spelling, base := range cSpellings {
		for _, depth := range []PointerDepth{PtrNone, PtrSingle, PtrDouble} {
			sig := TypeSignature{Base: base, Ptr: depth}
			if got := ParseType(sig.String()); got != sig {
				t.Errorf("ParseType(%q) = %v, want %v (from %s)", sig.String(), got, sig, spelling)
			}
		}
	}
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		segment string
		want    Argument
		ok      bool
	}{
		{"void** out", Argument{Type: TypeSignature{Void, PtrDouble}, Name: "out"}, true},
		{" int32_t  link_type ", Argument{Type: TypeSignature{Int32, PtrNone}, Name: "link_type"}, true},
		{"const char* ifname", Argument{Type: TypeSignature{String, PtrNone}, Name: "ifname", Const: true}, true},
		{"const uint8_t* buf", Argument{Type: TypeSignature{Uint8, PtrSingle}, Name: "buf", Const: true}, true},
		{"void *handle", Argument{Type: TypeSignature{Void, PtrSingle}, Name: "handle"}, true},
		{"float **grid", Argument{Type: TypeSignature{Float32, PtrDouble}, Name: "grid"}, true},
		{"unsigned long x", Argument{Type: TypeSignature{Unknown, PtrNone}, Name: "x"}, true},
		{"   ", Argument{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseArgument(tt.segment)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseArgument(%q) = %+v, %v; want %+v, %v", tt.segment, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFunctionString(t *testing.T) {
	fn := Function{
		Return: TypeSignature{Int32, PtrNone},
		Name:   "AUTDSend",
		Args: []Argument{
			{Type: TypeSignature{Void, PtrSingle}, Name: "handle"},
			{Type: TypeSignature{Uint8, PtrSingle}, Name: "buf", Const: true},
			{Type: TypeSignature{String, PtrNone}, Name: "name", Const: true},
		},
	}
	want := "int32_t AUTDSend(void* handle, const uint8_t* buf, const char* name)"
	if got := fn.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFunctionUnresolved(t *testing.T) {
	fn := Function{
		Return: TypeSignature{Unknown, PtrNone},
		Name:   "AUTDOdd",
		Args: []Argument{
			{Type: TypeSignature{Void, PtrSingle}, Name: "handle"},
			{Type: TypeSignature{Unknown, PtrSingle}, Name: "size"},
		},
	}
	got := fn.Unresolved()
	if len(got) != 2 || got[0] != "return" || got[1] != "size" {
		t.Errorf("Unresolved() = %v, want [return size]", got)
	}
}
