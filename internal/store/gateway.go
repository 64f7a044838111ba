// Package store defines the persistence gateway for case graphs. Backends
// save and load whole cases; the ordering and annotation invariants are
// enforced by the domain packages, never by SQL.
package store

import (
	"context"

	"github.com/pavelhrncir/casebook/internal/casefile"
)

// ListFilter narrows ListCases results.
type ListFilter struct {
	// IncludeArchived keeps archived cases in the listing.
	IncludeArchived bool
	// Query is a free-text filter matched against title and address,
	// case- and diacritics-insensitive.
	Query string
}

// Gateway persists cases and tags. SaveCase replaces the stored graph of
// the case atomically: the case row plus all of its photos, attachments and
// tag assignments. LoadCase returns nil without error when the case does
// not exist.
type Gateway interface {
	SaveCase(ctx context.Context, c *casefile.Case) error
	LoadCase(ctx context.Context, id string) (*casefile.Case, error)
	ListCases(ctx context.Context, filter ListFilter) ([]casefile.CaseSummary, error)
	DeleteCase(ctx context.Context, id string) error

	SaveTag(ctx context.Context, tag *casefile.Tag) error
	ListTags(ctx context.Context) ([]casefile.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	Close() error
}
