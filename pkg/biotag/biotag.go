// Package biotag tags biological entities in free text by matching against a
// precompiled dictionary automaton.
//
// A Tagger is built once from a dictionary artifact and exposes two
// operations: Get, an exact dictionary lookup, and ExtractEntities, a full
// scan of an input text. Both the dictionary and the automaton are read-only
// after construction, so one Tagger may serve any number of concurrent
// callers without synchronization.
package biotag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cognibio/biotag/pkg/biotag/dictionary"
	"github.com/cognibio/biotag/pkg/biotag/internalerr"
	"github.com/cognibio/biotag/pkg/biotag/match"
)

// builtins maps recognized built-in dictionary names to their artifact file
// inside the data directory.
var builtins = map[string]string{
	"chembl_smiles":             "chembl_smiles.jsonl.gz",
	"efo_disease":               "efo_disease.jsonl.gz",
	"swissprot_rat_mouse_human": "swissprot_rat_mouse_human.jsonl.gz",
}

// DataDir returns the directory holding built-in dictionary artifacts:
// $BIOTAG_DATA when set, "data" otherwise.
func DataDir() string {
	if dir := os.Getenv("BIOTAG_DATA"); dir != "" {
		return dir
	}
	return "data"
}

// BuiltInNames lists the recognized built-in dictionary names, sorted.
func BuiltInNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Selector names the dictionary a Tagger is built from: either a built-in
// dictionary by name, or a filesystem path to a dictionary artifact.
type Selector struct {
	name string
	path string
}

// BuiltIn selects a built-in dictionary by name.
func BuiltIn(name string) Selector { return Selector{name: name} }

// CustomPath selects a user-supplied dictionary artifact by path.
func CustomPath(path string) Selector { return Selector{path: path} }

// ResolveSelector maps a bare string to a Selector for command-line use:
// a recognized built-in name wins, anything else is treated as a path.
func ResolveSelector(s string) Selector {
	if _, ok := builtins[s]; ok {
		return BuiltIn(s)
	}
	return CustomPath(s)
}

func (s Selector) String() string {
	if s.name != "" {
		return s.name
	}
	return s.path
}

// resolve turns the selector into an artifact path, failing with
// ErrUnknownDictionary when neither a built-in name nor an existing file
// resolves. There is no default fallback.
func (s Selector) resolve() (string, error) {
	switch {
	case s.name != "":
		file, ok := builtins[s.name]
		if !ok {
			return "", fmt.Errorf("%w: %q (built-ins: %v)", internalerr.ErrUnknownDictionary, s.name, BuiltInNames())
		}
		return filepath.Join(DataDir(), file), nil
	case s.path != "":
		if _, err := os.Stat(s.path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", internalerr.ErrUnknownDictionary, s.path, err)
		}
		return s.path, nil
	default:
		return "", fmt.Errorf("%w: empty selector (built-ins: %v)", internalerr.ErrUnknownDictionary, BuiltInNames())
	}
}

// Tagger is the tagging facade over a dictionary and its automaton.
type Tagger struct {
	dict    *dictionary.Dictionary
	scanner *match.Scanner
}

// New builds a Tagger from a dictionary selector. An optional match.Config
// overrides the scanning defaults (all matches, boundary filtering on).
// Construction either loads the full dictionary and builds the automaton, or
// fails entirely; no partially initialized tagger is returned.
func New(sel Selector, cfg ...match.Config) (*Tagger, error) {
	path, err := sel.resolve()
	if err != nil {
		return nil, err
	}
	d, err := dictionary.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFromDictionary(d, cfg...), nil
}

// NewFromDictionary builds a Tagger directly from an in-memory dictionary.
func NewFromDictionary(d *dictionary.Dictionary, cfg ...match.Config) *Tagger {
	c := match.DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Tagger{dict: d, scanner: match.NewScanner(d, c)}
}

// Get performs an exact, case-normalized dictionary lookup. A miss fails with
// internalerr.ErrEntityNotFound.
func (t *Tagger) Get(name string) (dictionary.Entity, error) {
	return t.dict.Get(name)
}

// ExtractEntities scans text and returns all entity mentions per the
// configured overlap policy. An empty result is success, not an error.
func (t *Tagger) ExtractEntities(text string) ([]match.Match, error) {
	return t.scanner.Scan(text)
}

// Len returns the number of surface forms in the tagger's dictionary.
func (t *Tagger) Len() int {
	return t.dict.Len()
}
