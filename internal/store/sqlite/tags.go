package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pavelhrncir/casebook/internal/casefile"
)

// SaveTag inserts or updates a tag. A missing ID gets assigned.
func (s *Store) SaveTag(ctx context.Context, tag *casefile.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, color) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
		tag.ID, tag.Name, tag.Color)
	if err != nil {
		return fmt.Errorf("save tag: %w", err)
	}
	return nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]casefile.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []casefile.Tag
	for rows.Next() {
		var t casefile.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes the tag and its case assignments.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
