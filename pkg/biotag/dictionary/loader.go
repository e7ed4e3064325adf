package dictionary

import (
	"bufio"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/cognibio/biotag/pkg/biotag/internalerr"
)

// ArtifactEntry is the on-disk schema shared by the YAML and JSONL formats.
type ArtifactEntry struct {
	ID       string   `yaml:"id" json:"id"`
	Label    string   `yaml:"label" json:"label"`
	Type     string   `yaml:"type" json:"type"`
	Surfaces []string `yaml:"surfaces" json:"surfaces"`
}

// Load reads a dictionary artifact, picking the format by file extension:
//
//	.yaml .yml       YAML document with a top-level "entries" list
//	.jsonl           one JSON ArtifactEntry per line
//	.jsonl.gz        same, gzip-compressed
//	.db .sqlite      compiled sqlite artifact with a "surfaces" table
//
// A missing file, an unreadable artifact, or a schema violation (entry without
// an id, empty surface form) fails with internalerr.ErrDictionaryLoad. An
// artifact with zero entries loads as an empty dictionary, which is valid.
func Load(path string) (*Dictionary, error) {
	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		return loadYAML(path)
	case strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".jsonl.gz"):
		return loadJSONL(path)
	case strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite"):
		return loadSQLite(path)
	default:
		return nil, fmt.Errorf("%w: unsupported artifact format %q", internalerr.ErrDictionaryLoad, filepath.Ext(path))
	}
}

func loadYAML(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrDictionaryLoad, err)
	}

	var doc struct {
		Entries []ArtifactEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
	}

	b := NewBuilder()
	for _, e := range doc.Entries {
		if err := addArtifactEntry(b, e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
		}
	}
	return b.Build(), nil
}

func loadJSONL(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrDictionaryLoad, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
		}
		defer gz.Close()
		r = gz
	}

	b := NewBuilder()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var e ArtifactEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", internalerr.ErrDictionaryLoad, path, line, err)
		}
		if err := addArtifactEntry(b, e); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", internalerr.ErrDictionaryLoad, path, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
	}
	return b.Build(), nil
}

func loadSQLite(path string) (*Dictionary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrDictionaryLoad, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
	}
	defer db.Close()

	ctx := context.Background()
	rows, err := db.QueryContext(ctx, "SELECT surface, id, label, type FROM surfaces")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
	}
	defer rows.Close()

	b := NewBuilder()
	for rows.Next() {
		var surface string
		var e Entity
		if err := rows.Scan(&surface, &e.ID, &e.Label, &e.Type); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
		}
		if err := b.Add(surface, e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrDictionaryLoad, path, err)
	}
	return b.Build(), nil
}

func addArtifactEntry(b *Builder, e ArtifactEntry) error {
	if e.ID == "" {
		return fmt.Errorf("entry %q has no id", e.Label)
	}
	ent := Entity{ID: e.ID, Label: e.Label, Type: e.Type}
	for _, s := range e.Surfaces {
		if err := b.Add(s, ent); err != nil {
			return err
		}
	}
	// The label itself is always a surface form, matching how the
	// upstream ontology builds index the main term.
	if e.Label != "" {
		if err := b.Add(e.Label, ent); err != nil {
			return err
		}
	}
	return nil
}
