// Package discover finds the headers of each shared library declared in a
// CMake source tree.
package discover

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/capiwrap/capi"
)

var log = commonlog.GetLogger("capiwrap.discover")

// Options controls discovery. Zero values select the defaults.
type Options struct {
	BuildFile  string // default "CMakeLists.txt"
	HeaderGlob string // default "*.h"
}

var sharedLibraryRe = regexp.MustCompile(`^add_library\((?P<name>.+?) SHARED`)

// Headers walks root in lexical order. For every directory whose build file
// declares a shared library, each header in that directory is paired with
// the library name. Headers are sorted within a directory so repeated runs
// see the same order.
func Headers(root string, opts Options) ([]capi.Header, error) {
	if opts.BuildFile == "" {
		opts.BuildFile = "CMakeLists.txt"
	}
	if opts.HeaderGlob == "" {
		opts.HeaderGlob = "*.h"
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var out []capi.Header
	err = filepath.WalkDir(root, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		libs, err := sharedLibraries(filepath.Join(dir, opts.BuildFile))
		if err != nil {
			return err
		}
		if len(libs) == 0 {
			return nil
		}

		headers, err := filepath.Glob(filepath.Join(dir, opts.HeaderGlob))
		if err != nil {
			return fmt.Errorf("bad header glob %q: %w", opts.HeaderGlob, err)
		}
		sort.Strings(headers)
		for _, lib := range libs {
			log.Debugf("%s: library %s, %d headers", dir, lib, len(headers))
			for _, h := range headers {
				out = append(out, capi.Header{Path: h, Library: lib})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sharedLibraries returns the names of the shared libraries declared in the
// build file at path, in declaration order. A missing file declares none.
func sharedLibraries(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	var libs []string
	sc := bufio.NewScanner(f)
	idx := sharedLibraryRe.SubexpIndex("name")
	for sc.Scan() {
		if m := sharedLibraryRe.FindStringSubmatch(sc.Text()); m != nil {
			libs = append(libs, m[idx])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return libs, nil
}
