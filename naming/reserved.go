package naming

// Reserved is a set of host-language keywords that cannot be used as
// identifiers.
type Reserved map[string]bool

// NewReserved builds a Reserved set from words.
func NewReserved(words ...string) Reserved {
	r := make(Reserved, len(words))
	for _, w := range words {
		r[w] = true
	}
	return r
}

// Escape prefixes name with prefix when it collides with a reserved word.
func (r Reserved) Escape(name, prefix string) string {
	if r[name] {
		return prefix + name
	}
	return name
}

// CSharpKeywords are the C# keywords likely to appear as C parameter names.
var CSharpKeywords = NewReserved(
	"out", "params", "ref", "in", "object", "string", "base", "event",
	"fixed", "lock", "checked", "operator", "internal", "namespace",
	"decimal", "delegate", "explicit", "implicit", "readonly", "sizeof",
	"this", "is", "as", "new", "override", "virtual",
)

// JuliaKeywords are the Julia reserved words.
var JuliaKeywords = NewReserved(
	"baremodule", "begin", "break", "catch", "const", "continue", "do",
	"else", "elseif", "end", "export", "false", "finally", "for",
	"function", "global", "if", "import", "let", "local", "macro",
	"module", "quote", "return", "struct", "true", "try", "using", "while",
)
