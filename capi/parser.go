package capi

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/tliron/commonlog"
)

// DefaultMarker is the export macro that tags public declarations.
const DefaultMarker = "EXPORT_AUTD"

var log = commonlog.GetLogger("capiwrap.capi")

// Parser extracts marker-tagged declarations from header text. It holds no
// per-call state and may be shared between goroutines.
type Parser struct {
	Marker string
	decl   *regexp.Regexp
}

// Stats summarizes one Scan.
type Stats struct {
	Declarations int // marker lines seen
	Functions    int // declarations yielded
	Skipped      int // declarations that did not match the grammar
	Unterminated int // declarations cut off by end of input
}

// NewParser returns a parser for declarations tagged with marker. An empty
// marker selects DefaultMarker.
func NewParser(marker string) *Parser {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Parser{
		Marker: marker,
		decl: regexp.MustCompile(`^` + regexp.QuoteMeta(marker) +
			`\s+(?P<ret>[^();]+?[\s*])\s*(?P<name>[A-Za-z_]\w*)\s*\((?P<args>[^();]*)\)\s*;$`),
	}
}

// ParseFile parses every declaration in the header at path.
func (p *Parser) ParseFile(path string) ([]Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse collects every declaration in r. path is used for positions and
// diagnostics only.
func (p *Parser) Parse(r io.Reader, path string) ([]Function, error) {
	var fns []Function
	_, err := p.Scan(r, path, func(fn Function) bool {
		fns = append(fns, fn)
		return true
	})
	return fns, err
}

// Scan reads r line by line and calls yield for each declaration in order.
// Scanning stops early when yield returns false. A declaration split across
// lines is joined up to the line ending in ';'. Declarations that do not
// match the grammar are logged and skipped; input ending inside a
// declaration ends the file without producing it.
func (p *Parser) Scan(r io.Reader, path string, yield func(Function) bool) (Stats, error) {
	var stats Stats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return stripLineComment(strings.TrimSpace(sc.Text())), true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if !p.isMarkerLine(line) {
			continue
		}

		stats.Declarations++
		start := lineNo
		text := line
		terminated := strings.HasSuffix(text, ";")
		for !terminated {
			more, ok := next()
			if !ok {
				break
			}
			if more != "" {
				text += " " + more
			}
			terminated = strings.HasSuffix(more, ";")
		}
		if !terminated {
			stats.Unterminated++
			log.Warningf("%s:%d: declaration is not terminated before end of input", displayPath(path), start)
			break
		}

		fn, ok := p.parseDeclaration(text)
		if !ok {
			stats.Skipped++
			log.Warningf("%s:%d: skipping declaration that does not match %s <type> <name>(<args>);: %s",
				displayPath(path), start, p.Marker, text)
			continue
		}
		fn.Pos = Position{Path: path, Line: start}
		stats.Functions++
		if !yield(fn) {
			return stats, nil
		}
	}

	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading %s: %w", displayPath(path), err)
	}
	return stats, nil
}

func (p *Parser) isMarkerLine(line string) bool {
	if !strings.HasPrefix(line, p.Marker) {
		return false
	}
	rest := line[len(p.Marker):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func (p *Parser) parseDeclaration(text string) (Function, bool) {
	m := p.decl.FindStringSubmatch(text)
	if m == nil {
		return Function{}, false
	}
	ret := m[p.decl.SubexpIndex("ret")]
	name := m[p.decl.SubexpIndex("name")]
	args := strings.TrimSpace(m[p.decl.SubexpIndex("args")])

	fn := Function{
		Return: ParseType(ret),
		Name:   name,
		Args:   []Argument{},
	}
	if args == "" || args == "void" {
		return fn, true
	}
	for _, seg := range strings.Split(args, ",") {
		arg, ok := ParseArgument(seg)
		if !ok {
			return Function{}, false
		}
		fn.Args = append(fn.Args, arg)
	}
	return fn, true
}

// stripLineComment drops a trailing // comment.
func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	return line
}

func displayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}
