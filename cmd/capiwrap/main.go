// capiwrap generates C#, Python and Julia FFI bindings from annotated C
// headers.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/capiwrap/capi"
	"github.com/chazu/capiwrap/discover"
	"github.com/chazu/capiwrap/generate"
	"github.com/chazu/capiwrap/manifest"
	"github.com/chazu/capiwrap/snapshot"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("capiwrap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	outputDir := fs.String("o", "", "Output directory (overrides [output] dir)")
	configPath := fs.String("config", "", "Path to capiwrap.toml (default: search upward from the header root)")
	targets := fs.String("targets", "", "Comma-separated backends to generate (default: all configured)")
	check := fs.Bool("check", false, "Compare the API against the stored snapshot and exit 1 on drift; writes nothing")
	noSnapshot := fs.Bool("no-snapshot", false, "Do not update the API snapshot")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: capiwrap [options] <capi folder>\n\n")
		fmt.Fprintf(stderr, "Generates FFI bindings for every %s declaration found in the headers\n", capi.DefaultMarker)
		fmt.Fprintf(stderr, "of each shared library declared under the given folder.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, "Usage: capiwrap [options] <capi folder>")
		return 0
	}
	root := fs.Arg(0)

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	m, err := loadManifest(*configPath, root)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	if *outputDir != "" {
		dir, err := filepath.Abs(*outputDir)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		m.Output.Dir = dir
	}
	if *targets != "" {
		m.Output.Targets = splitList(*targets)
	}

	headers, err := discover.Headers(root, discover.Options{
		BuildFile:  m.Source.BuildFile,
		HeaderGlob: m.Source.HeaderGlob,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *verbose {
		fmt.Fprintf(stdout, "Found %d header(s) under %s\n", len(headers), root)
	}

	api, err := generate.Load(capi.NewParser(m.Source.Marker), headers)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *verbose {
		fmt.Fprintf(stdout, "Parsed %d function(s), %d declaration(s) skipped\n",
			api.Stats.Functions, api.Stats.Skipped+api.Stats.Unterminated)
	}

	current := snapshot.New(api.Functions)
	if *check {
		return runCheck(m.SnapshotPath(), current, stdout, stderr)
	}

	plan := generate.Plan{API: api, Options: m.BackendOptions()}
	for _, t := range m.Output.Targets {
		path, err := m.TargetFile(t)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		plan.Targets = append(plan.Targets, generate.Target{Backend: t, Path: path})
	}

	results, err := generate.Run(context.Background(), plan)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, r := range results {
		if len(r.Skipped) > 0 {
			fmt.Fprintf(stderr, "Warning: %s: skipped %s\n", r.Backend, strings.Join(r.Skipped, ", "))
		}
		if *verbose {
			fmt.Fprintf(stdout, "Wrote %s (%d functions)\n", r.Path, r.Functions)
		}
	}

	if !*noSnapshot {
		if err := snapshot.Write(m.SnapshotPath(), current); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func loadManifest(configPath, root string) (*manifest.Manifest, error) {
	if configPath != "" {
		return manifest.LoadFile(configPath)
	}
	m, err := manifest.FindAndLoad(root)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	return manifest.Default(".")
}

// runCheck reports drift between the stored snapshot and current and
// returns the process exit code.
func runCheck(path string, current *snapshot.Snapshot, stdout, stderr io.Writer) int {
	stored, err := snapshot.Read(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if stored == nil {
		fmt.Fprintf(stderr, "Error: no snapshot at %s; run without -check first\n", path)
		return 1
	}

	drift := snapshot.Diff(stored, current)
	if drift.Empty() {
		fmt.Fprintln(stdout, "API unchanged")
		return 0
	}
	for _, e := range drift.Added {
		fmt.Fprintf(stdout, "+ %s: %s\n", e.Library, e.Prototype)
	}
	for _, e := range drift.Removed {
		fmt.Fprintf(stdout, "- %s: %s\n", e.Library, e.Prototype)
	}
	for _, c := range drift.Changed {
		fmt.Fprintf(stdout, "~ %s: %s -> %s\n", c.New.Library, c.Old.Prototype, c.New.Prototype)
	}
	return 1
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
