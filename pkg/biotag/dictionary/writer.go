package dictionary

import (
	"bufio"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Write persists artifact entries to path, picking the format by extension the
// same way Load does. Used by the dictionary build tools; the tagger itself
// never writes artifacts.
func Write(path string, entries []ArtifactEntry) error {
	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		return writeYAML(path, entries)
	case strings.HasSuffix(path, ".jsonl") || strings.HasSuffix(path, ".jsonl.gz"):
		return writeJSONL(path, entries)
	case strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite"):
		return writeSQLite(path, entries)
	default:
		return fmt.Errorf("unsupported artifact format: %s", path)
	}
}

func writeYAML(path string, entries []ArtifactEntry) error {
	doc := struct {
		Entries []ArtifactEntry `yaml:"entries"`
	}{Entries: entries}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeJSONL(path string, entries []ArtifactEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w *bufio.Writer
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = bufio.NewWriter(gz)
	} else {
		w = bufio.NewWriter(f)
	}

	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

func writeSQLite(path string, entries []ArtifactEntry) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS surfaces (
	surface TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	label TEXT,
	type TEXT
)`); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO surfaces (surface, id, label, type) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		surfaces := e.Surfaces
		if e.Label != "" {
			surfaces = append(surfaces[:len(surfaces):len(surfaces)], e.Label)
		}
		for _, s := range surfaces {
			if _, err := stmt.ExecContext(ctx, s, e.ID, e.Label, e.Type); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}
