// Package generate drives the backends over a parsed header collection and
// writes one binding file per backend.
package generate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/capiwrap/backend"
	"github.com/chazu/capiwrap/capi"
)

// GeneratorName appears in the banner line of every generated file.
const GeneratorName = "capiwrap"

var log = commonlog.GetLogger("capiwrap.generate")

// API is the parsed export surface in discovery order. It is read-only once
// loaded and may be shared by concurrent emitters.
type API struct {
	Functions []capi.Function
	Stats     capi.Stats // totals over all headers
}

// Load parses each header in order and attaches its library name to every
// function. Any read error aborts the load.
func Load(p *capi.Parser, headers []capi.Header) (*API, error) {
	api := &API{}
	for _, h := range headers {
		stats, err := scanFile(p, h, func(fn capi.Function) bool {
			fn.Library = h.Library
			api.Functions = append(api.Functions, fn)
			return true
		})
		if err != nil {
			return nil, err
		}
		log.Debugf("%s (%s): %d declarations, %d functions", h.Path, h.Library, stats.Declarations, stats.Functions)
		api.Stats.Declarations += stats.Declarations
		api.Stats.Functions += stats.Functions
		api.Stats.Skipped += stats.Skipped
		api.Stats.Unterminated += stats.Unterminated
	}
	return api, nil
}

func scanFile(p *capi.Parser, h capi.Header, yield func(capi.Function) bool) (capi.Stats, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return capi.Stats{}, fmt.Errorf("cannot read %s: %w", h.Path, err)
	}
	defer f.Close()
	return p.Scan(f, h.Path, yield)
}

// Result summarizes one emitted file.
type Result struct {
	Backend   string
	Path      string // empty when emitted to a writer
	Functions int    // fragments written
	Skipped   []string
}

// Emit writes the banner, prologue, one fragment per function and the
// epilogue of b to w. Functions b cannot map are left out and reported in
// Result.Skipped; every backend is held to the same policy.
func Emit(w io.Writer, b backend.Backend, api *API) (Result, error) {
	res := Result{Backend: b.Name()}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s This file is generated by %s\n", b.CommentPrefix(), GeneratorName)
	bw.WriteString(b.Prologue())
	bw.WriteByte('\n')
	for _, fn := range api.Functions {
		frag, err := b.Render(fn)
		if err != nil {
			if !errors.Is(err, backend.ErrUnsupportedType) {
				return res, err
			}
			log.Warningf("%s: skipping %s: %s", fn.Pos, fn.Name, err)
			res.Skipped = append(res.Skipped, fn.Name)
			continue
		}
		bw.WriteString(frag)
		bw.WriteByte('\n')
		res.Functions++
	}
	bw.WriteString(b.Epilogue())
	bw.WriteByte('\n')

	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("writing %s output: %w", b.Name(), err)
	}
	return res, nil
}

// Target is one output file.
type Target struct {
	Backend string
	Path    string
}

// Plan describes a full generation run.
type Plan struct {
	API     *API
	Targets []Target
	Options backend.Options
}

// Run emits every target of plan. Targets are independent and rendered
// concurrently, each with a fresh backend instance. A file is written only
// after its epilogue has been rendered.
func Run(ctx context.Context, plan Plan) ([]Result, error) {
	results := make([]Result, len(plan.Targets))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range plan.Targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := backend.New(t.Backend, plan.Options)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			res, err := Emit(&buf, b, plan.API)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(t.Path, buf.Bytes()); err != nil {
				return err
			}
			res.Path = t.Path
			results[i] = res
			log.Infof("wrote %s (%s): %d functions, %d skipped", t.Path, t.Backend, res.Functions, len(res.Skipped))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeFileAtomic writes data to a temporary file beside path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
