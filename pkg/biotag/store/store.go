// Package store defines persistence for corpus tagging runs: documents with
// the entity annotations produced by a scan.
package store

import (
	"context"
	"time"
)

// Store persists tagged documents.
type Store interface {
	Close() error

	SaveDoc(ctx context.Context, d Doc) error
	GetDoc(ctx context.Context, id string) (Doc, bool, error)
	GetDocByURI(ctx context.Context, uri string) (Doc, bool, error)
	DocsByEntity(ctx context.Context, entityID string, limit int) ([]Doc, error)
	EntityCounts(ctx context.Context, limit int) ([]EntityCount, error)
}

// Doc is a stored document with its annotations.
type Doc struct {
	ID          string // ULID assigned at save time when empty
	URI         string
	Title       string
	Text        string
	TaggedAt    time.Time
	Annotations []Annotation
}

// Annotation is one persisted entity mention.
type Annotation struct {
	Start       int
	End         int
	Surface     string
	EntityID    string
	EntityLabel string
	EntityType  string
}

// EntityCount aggregates how often an entity was seen across the corpus.
type EntityCount struct {
	EntityID    string
	EntityLabel string
	EntityType  string
	Docs        int64
	Mentions    int64
}
