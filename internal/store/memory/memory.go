// Package memory provides an in-memory store.Gateway used by tests and the
// web handler suite. Cases are deep-copied on the way in and out so callers
// never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/store"
)

// Store is an in-memory implementation of store.Gateway.
type Store struct {
	mu    sync.RWMutex
	cases map[string]*casefile.Case
	tags  map[string]casefile.Tag

	// Error injection
	SaveCaseError   error
	LoadCaseError   error
	ListCasesError  error
	DeleteCaseError error
	SaveTagError    error
	ListTagsError   error
	DeleteTagError  error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		cases: make(map[string]*casefile.Case),
		tags:  make(map[string]casefile.Tag),
	}
}

// SaveCase stores a deep copy of the case graph.
func (s *Store) SaveCase(ctx context.Context, c *casefile.Case) error {
	if s.SaveCaseError != nil {
		return s.SaveCaseError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c.Clone()
	return nil
}

// LoadCase returns a deep copy of the case, nil when it does not exist.
func (s *Store) LoadCase(ctx context.Context, id string) (*casefile.Case, error) {
	if s.LoadCaseError != nil {
		return nil, s.LoadCaseError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

// ListCases returns summaries ordered by list position then ID.
func (s *Store) ListCases(ctx context.Context, filter store.ListFilter) ([]casefile.CaseSummary, error) {
	if s.ListCasesError != nil {
		return nil, s.ListCasesError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []casefile.CaseSummary
	for _, c := range s.cases {
		if c.Archived && !filter.IncludeArchived {
			continue
		}
		if !c.MatchesQuery(filter.Query) {
			continue
		}
		summaries = append(summaries, c.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].ListOrder != summaries[j].ListOrder {
			return summaries[i].ListOrder < summaries[j].ListOrder
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// DeleteCase removes the case. Deleting a missing case is not an error.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	if s.DeleteCaseError != nil {
		return s.DeleteCaseError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, id)
	return nil
}

// SaveTag inserts or updates a tag. A missing ID gets assigned.
func (s *Store) SaveTag(ctx context.Context, tag *casefile.Tag) error {
	if s.SaveTagError != nil {
		return s.SaveTagError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	s.tags[tag.ID] = *tag
	return nil
}

// ListTags returns all tags ordered by name then ID.
func (s *Store) ListTags(ctx context.Context) ([]casefile.Tag, error) {
	if s.ListTagsError != nil {
		return nil, s.ListTagsError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []casefile.Tag
	for _, t := range s.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].ID < tags[j].ID
	})
	return tags, nil
}

// DeleteTag removes the tag and detaches it from all cases.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	if s.DeleteTagError != nil {
		return s.DeleteTagError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, id)
	for _, c := range s.cases {
		for i, tagID := range c.TagIDs {
			if tagID == id {
				c.TagIDs = append(c.TagIDs[:i], c.TagIDs[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

var _ store.Gateway = (*Store)(nil)
