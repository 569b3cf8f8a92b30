// Package naming converts identifiers between the C export convention and
// the conventions of the generated bindings.
package naming

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAcronyms are the multi-letter tokens treated as single words when
// splitting exported symbols.
var DefaultAcronyms = []string{"AUTD", "STM", "PCM", "SOEM", "TwinCAT"}

var defaultSplitter = NewSplitter(DefaultAcronyms)

// SnakeToLowerCamel converts "num_devices" to "numDevices". Input without
// underscores passes through with only its first rune lowered, so the
// conversion is idempotent.
func SnakeToLowerCamel(snake string) string {
	var b strings.Builder
	for _, seg := range strings.Split(snake, "_") {
		if seg == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		if b.Len() == 0 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		b.WriteString(seg[size:])
	}
	return b.String()
}

// CamelToSnake converts a PascalCase or camelCase identifier to snake_case
// using DefaultAcronyms.
func CamelToSnake(camel string) string {
	return defaultSplitter.CamelToSnake(camel)
}

// ToSnake turns a library or path name into an identifier by replacing
// '-' with '_'.
func ToSnake(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// Splitter segments identifiers into words. Acronyms are matched before the
// generic capital-letter rule, longest first.
type Splitter struct {
	acronyms []string
}

// NewSplitter returns a Splitter that treats each of acronyms as one word.
func NewSplitter(acronyms []string) *Splitter {
	s := &Splitter{}
	for _, a := range acronyms {
		if a != "" {
			s.acronyms = append(s.acronyms, a)
		}
	}
	sort.SliceStable(s.acronyms, func(i, j int) bool {
		return len(s.acronyms[i]) > len(s.acronyms[j])
	})
	return s
}

// Acronyms returns the configured acronyms, longest first.
func (s *Splitter) Acronyms() []string {
	return append([]string(nil), s.acronyms...)
}

// CamelToSnake lower-cases the words of ident and joins them with '_'.
// "AUTDCreateController" becomes "autd_create_controller".
func (s *Splitter) CamelToSnake(ident string) string {
	words := s.Words(ident)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Words splits ident into words. '_' and '-' separate words and are
// dropped. A run of capitals forms one word, except that the last capital
// of a run followed by a lower-case letter starts the next word
// ("HTTPServer" is HTTP, Server). Digits stay with the preceding word.
func (s *Splitter) Words(ident string) []string {
	var words []string
	rs := []rune(ident)

	for i := 0; i < len(rs); {
		r := rs[i]
		if r == '_' || r == '-' {
			i++
			continue
		}

		if n := s.matchAcronym(rs[i:]); n > 0 {
			j := i + n
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			words = append(words, string(rs[i:j]))
			i = j
			continue
		}

		j := i
		if unicode.IsUpper(r) {
			for j < len(rs) && unicode.IsUpper(rs[j]) && s.matchAcronym(rs[j:]) == 0 || j == i {
				j++
			}
			if j-i > 1 && j < len(rs) && unicode.IsLower(rs[j]) {
				j--
			}
		}
		for j < len(rs) && (unicode.IsLower(rs[j]) || unicode.IsDigit(rs[j])) {
			j++
		}
		if j == i {
			// Anything else (punctuation, symbols) stands alone.
			j++
		}
		words = append(words, string(rs[i:j]))
		i = j
	}
	return words
}

// matchAcronym returns the rune length of the longest acronym that prefixes
// rs, or 0. An acronym only matches when it is not immediately followed by
// a lower-case letter, so "STMode" is not split as STM, ode.
func (s *Splitter) matchAcronym(rs []rune) int {
	for _, a := range s.acronyms {
		ar := []rune(a)
		if len(ar) > len(rs) || string(rs[:len(ar)]) != a {
			continue
		}
		if len(ar) < len(rs) && unicode.IsLower(rs[len(ar)]) && !unicode.IsLower(ar[len(ar)-1]) {
			continue
		}
		return len(ar)
	}
	return 0
}
