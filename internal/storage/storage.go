package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local KV persistence abstraction: which
// articles have already been published downstream, and the user's saved
// article identifier set.

// Store persists seen-article tracking and the saved-article ID set.
type Store interface {
	Close() error

	// SeenArticle reports whether the article link was already observed.
	SeenArticle(link string) (bool, error)
	// MarkArticle records the article link as observed.
	MarkArticle(link string) error

	// SavedIDs returns the persisted saved-article identifier set.
	SavedIDs() ([]string, error)
	// PutSavedIDs rewrites the full saved-article identifier set.
	PutSavedIDs(ids []string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SeenTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSeenTTL         = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return &memoryStore{seen: map[string]bool{}}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SeenTTL <= 0 {
		opts.SeenTTL = defaultSeenTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}
