// Package snapshot records the exported API surface between runs so that
// drift in the native ABI can be detected before bindings are regenerated.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/capiwrap/capi"
)

// Version is the snapshot format version.
const Version = 1

// Snapshot is the recorded API surface.
type Snapshot struct {
	Version   int     `cbor:"1,keyasint"`
	Functions []Entry `cbor:"2,keyasint"`
}

// Entry is one exported function.
type Entry struct {
	Library   string `cbor:"1,keyasint"`
	Symbol    string `cbor:"2,keyasint"`
	Prototype string `cbor:"3,keyasint"`
}

func (e Entry) key() string {
	return e.Library + "\x00" + e.Symbol
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// New builds a snapshot of fns, ordered by library then symbol.
func New(fns []capi.Function) *Snapshot {
	s := &Snapshot{Version: Version, Functions: make([]Entry, 0, len(fns))}
	for _, fn := range fns {
		s.Functions = append(s.Functions, Entry{
			Library:   fn.Library,
			Symbol:    fn.Name,
			Prototype: fn.String(),
		})
	}
	sort.SliceStable(s.Functions, func(i, j int) bool {
		a, b := s.Functions[i], s.Functions[j]
		if a.Library != b.Library {
			return a.Library < b.Library
		}
		return a.Symbol < b.Symbol
	})
	return s
}

// Marshal serializes s to canonical CBOR; equal snapshots give equal bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}

// Read loads the snapshot at path. It returns nil, nil when the file does
// not exist.
func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: cannot read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// Write stores s at path, creating parent directories.
func Write(path string, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot: creating dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: writing %s: %w", path, err)
	}
	return nil
}

// Drift lists the differences between two snapshots.
type Drift struct {
	Added   []Entry
	Removed []Entry
	Changed []Change
}

// Change is a function whose prototype differs between snapshots.
type Change struct {
	Old Entry
	New Entry
}

// Empty reports whether the snapshots describe the same surface.
func (d Drift) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares old against cur. A nil old snapshot counts as empty.
// Results follow the order of the snapshots.
func Diff(old, cur *Snapshot) Drift {
	var d Drift
	prev := map[string]Entry{}
	if old != nil {
		for _, e := range old.Functions {
			prev[e.key()] = e
		}
	}
	seen := map[string]bool{}
	if cur != nil {
		for _, e := range cur.Functions {
			seen[e.key()] = true
			o, ok := prev[e.key()]
			switch {
			case !ok:
				d.Added = append(d.Added, e)
			case o.Prototype != e.Prototype:
				d.Changed = append(d.Changed, Change{Old: o, New: e})
			}
		}
	}
	if old != nil {
		for _, e := range old.Functions {
			if !seen[e.key()] {
				d.Removed = append(d.Removed, e)
			}
		}
	}
	return d
}
