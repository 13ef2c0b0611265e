// Package library loads MessageScript function-library metadata: the
// mapping between numeric (table_index, function_index) opcode pairs and
// the human-readable tag names the Compiler and Decompiler use.
package library

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// UnusedName is the sentinel function name the Decompiler may suppress
// when the "omit unused" flag is set.
const UnusedName = "@Unused"

// Function is one opcode entry in a Library: a name, its function_index
// within the library's table, and the names of the arguments a tag using
// this name must supply (only the count is load-bearing; names are
// documentation).
type Function struct {
	Name       string   `yaml:"name"`
	Index      int      `yaml:"index"`
	Parameters []string `yaml:"parameters"`
}

// Library is one numbered opcode table: its Index is the table_index every
// Function in it shares.
type Library struct {
	Index     int        `yaml:"index"`
	Functions []Function `yaml:"functions"`
}

// file is the on-disk shape of a library YAML document.
type file struct {
	Libraries []Library `yaml:"libraries"`
}

// Set is a loaded collection of Libraries, indexed for both compile-time
// name resolution and decompile-time code resolution. A Set is read-only
// after Load and safe to share across goroutines.
type Set struct {
	libraries []Library
	byName    map[string]resolved
	byCode    map[codeKey]resolved
}

type resolved struct {
	tableIndex    uint8
	functionIndex uint8
	fn            Function
}

type codeKey struct {
	table, function uint8
}

// Load reads and parses a library YAML file from disk.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("library: open %q: %w", path, err)
	}
	defer f.Close()

	set, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("library: parse %q: %w", path, err)
	}
	return set, nil
}

// LoadFromReader parses library YAML from an io.Reader and builds a Set.
func LoadFromReader(r io.Reader) (*Set, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("library: decode yaml: %w", err)
	}
	return newSet(doc.Libraries), nil
}

func newSet(libraries []Library) *Set {
	s := &Set{
		libraries: libraries,
		byName:    make(map[string]resolved),
		byCode:    make(map[codeKey]resolved),
	}
	for _, lib := range libraries {
		for _, fn := range lib.Functions {
			r := resolved{tableIndex: uint8(lib.Index), functionIndex: uint8(fn.Index), fn: fn}
			s.byName[fn.Name] = r
			s.byCode[codeKey{r.tableIndex, r.functionIndex}] = r
		}
	}
	return s
}

// ResolveName looks up a tag name (case-sensitive) and returns the
// table/function indices and parameter count to expect.
func (s *Set) ResolveName(name string) (tableIndex, functionIndex uint8, paramCount int, ok bool) {
	r, found := s.byName[name]
	if !found {
		return 0, 0, 0, false
	}
	return r.tableIndex, r.functionIndex, len(r.fn.Parameters), true
}

// ResolveCode looks up a (table_index, function_index) pair and returns the
// tag name the Decompiler should emit in its place.
func (s *Set) ResolveCode(tableIndex, functionIndex uint8) (name string, ok bool) {
	r, found := s.byCode[codeKey{tableIndex, functionIndex}]
	if !found {
		return "", false
	}
	return r.fn.Name, true
}
