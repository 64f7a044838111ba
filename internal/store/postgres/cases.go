package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pavelhrncir/casebook/internal/annotation"
	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/store"
)

// Store provides PostgreSQL-backed case storage.
type Store struct {
	pool *Pool
}

// NewStore creates a Store on top of an open pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// SaveCase writes the whole case graph in one transaction. Photos,
// attachments and tag assignments are replaced wholesale; the row order on
// disk mirrors the in-memory order.
func (s *Store) SaveCase(ctx context.Context, c *casefile.Case) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var workStart, workEnd sql.NullInt64
	if c.WorkStart != nil {
		workStart = sql.NullInt64{Int64: int64(*c.WorkStart), Valid: true}
	}
	if c.WorkEnd != nil {
		workEnd = sql.NullInt64{Int64: int64(*c.WorkEnd), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cases (id, title, note, cover_page, address, area, weekdays, work_start, work_end, archived, list_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			note = EXCLUDED.note,
			cover_page = EXCLUDED.cover_page,
			address = EXCLUDED.address,
			area = EXCLUDED.area,
			weekdays = EXCLUDED.weekdays,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			archived = EXCLUDED.archived,
			list_order = EXCLUDED.list_order,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.Title, c.Note, c.CoverPage, c.Address, c.Area, int(c.Weekdays),
		workStart, workEnd, c.Archived, c.ListOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}

	for _, table := range []string{"case_photos", "case_attachments", "case_tags"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE case_id = $1", c.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range c.Photos {
		payload, err := annotation.EncodePayload(p.AnnotationPayload())
		if err != nil {
			return fmt.Errorf("encode annotation for photo %s: %w", p.ID, err)
		}
		sources, err := json.Marshal(p.SourceResources)
		if err != nil {
			return fmt.Errorf("encode sources for photo %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO case_photos (id, case_id, resource, order_index, seq, note, in_export, full_page, composite, source_resources, annotation, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, c.ID, p.Resource, p.OrderIndex, p.Seq, p.Note, p.InExport, p.FullPage,
			p.Composite, string(sources), string(payload), p.CreatedAt)
		if err != nil {
			return fmt.Errorf("save photo %s: %w", p.ID, err)
		}
	}

	for _, a := range c.Attachments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO case_attachments (id, case_id, document, filename, order_index, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, c.ID, a.Document, a.Filename, a.OrderIndex, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("save attachment %s: %w", a.ID, err)
		}
	}

	for i, tagID := range c.TagIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO case_tags (case_id, tag_id, position) VALUES ($1, $2, $3)`,
			c.ID, tagID, i)
		if err != nil {
			return fmt.Errorf("save tag assignment %s: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save case: %w", err)
	}
	return nil
}

// LoadCase reads the whole case graph. Returns nil without error when the
// case does not exist.
func (s *Store) LoadCase(ctx context.Context, id string) (*casefile.Case, error) {
	c := &casefile.Case{}
	var weekdays int
	var workStart, workEnd sql.NullInt64
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, note, cover_page, address, area, weekdays, work_start, work_end, archived, list_order, created_at, updated_at
		 FROM cases WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Note, &c.CoverPage, &c.Address, &c.Area, &weekdays,
			&workStart, &workEnd, &c.Archived, &c.ListOrder, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	c.Weekdays = casefile.WeekdaySet(weekdays)
	if workStart.Valid {
		t := casefile.TimeOfDay(workStart.Int64)
		c.WorkStart = &t
	}
	if workEnd.Valid {
		t := casefile.TimeOfDay(workEnd.Int64)
		c.WorkEnd = &t
	}

	if c.TagIDs, err = s.caseTagIDs(ctx, id); err != nil {
		return nil, err
	}
	if c.Photos, err = s.casePhotos(ctx, id); err != nil {
		return nil, err
	}
	if c.Attachments, err = s.caseAttachments(ctx, id); err != nil {
		return nil, err
	}

	c.Reindex()
	return c, nil
}

func (s *Store) caseTagIDs(ctx context.Context, caseID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tag_id FROM case_tags WHERE case_id = $1 ORDER BY position`, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan case tag: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case tags: %w", err)
	}
	return tagIDs, nil
}

func (s *Store) casePhotos(ctx context.Context, caseID string) ([]*casefile.CasePhoto, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, case_id, resource, order_index, seq, note, in_export, full_page, composite, source_resources, annotation, created_at
		 FROM case_photos WHERE case_id = $1 ORDER BY order_index, seq`, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case photos: %w", err)
	}
	defer rows.Close()

	var photos []*casefile.CasePhoto
	for rows.Next() {
		p := &casefile.CasePhoto{}
		var sources, payload string
		if err := rows.Scan(&p.ID, &p.CaseID, &p.Resource, &p.OrderIndex, &p.Seq, &p.Note,
			&p.InExport, &p.FullPage, &p.Composite, &sources, &payload, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &p.SourceResources); err != nil {
				return nil, fmt.Errorf("decode sources for photo %s: %w", p.ID, err)
			}
		}
		if payload != "" {
			pl, err := annotation.DecodePayload([]byte(payload))
			if err != nil {
				return nil, fmt.Errorf("decode annotation for photo %s: %w", p.ID, err)
			}
			p.ApplyAnnotation(pl)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

func (s *Store) caseAttachments(ctx context.Context, caseID string) ([]*casefile.CaseAttachment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, case_id, document, filename, order_index, created_at
		 FROM case_attachments WHERE case_id = $1 ORDER BY order_index`, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*casefile.CaseAttachment
	for rows.Next() {
		a := &casefile.CaseAttachment{}
		if err := rows.Scan(&a.ID, &a.CaseID, &a.Document, &a.Filename, &a.OrderIndex, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return attachments, nil
}

// ListCases returns case summaries ordered by list position. The free-text
// filter runs in memory so the diacritics handling matches the domain rules.
func (s *Store) ListCases(ctx context.Context, filter store.ListFilter) ([]casefile.CaseSummary, error) {
	query := `SELECT c.id, c.title, c.address, c.archived, c.list_order, c.updated_at,
		(SELECT COUNT(*) FROM case_photos WHERE case_id = c.id) AS photo_count
		FROM cases c`
	if !filter.IncludeArchived {
		query += ` WHERE NOT c.archived`
	}
	query += ` ORDER BY c.list_order, c.id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var summaries []casefile.CaseSummary
	for rows.Next() {
		var sum casefile.CaseSummary
		var address string
		if err := rows.Scan(&sum.ID, &sum.Title, &address, &sum.Archived, &sum.ListOrder,
			&sum.UpdatedAt, &sum.PhotoCount); err != nil {
			return nil, fmt.Errorf("scan case summary: %w", err)
		}
		if !casefile.MatchesFields(filter.Query, sum.Title, address) {
			continue
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case summaries: %w", err)
	}

	if err := s.attachTagIDs(ctx, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// attachTagIDs batch-loads tag assignments for the listed cases.
func (s *Store) attachTagIDs(ctx context.Context, summaries []casefile.CaseSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT case_id, tag_id FROM case_tags ORDER BY case_id, position`)
	if err != nil {
		return fmt.Errorf("get tag assignments: %w", err)
	}
	defer rows.Close()

	byCase := make(map[string][]string)
	for rows.Next() {
		var caseID, tagID string
		if err := rows.Scan(&caseID, &tagID); err != nil {
			return fmt.Errorf("scan tag assignment: %w", err)
		}
		byCase[caseID] = append(byCase[caseID], tagID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tag assignments: %w", err)
	}

	for i := range summaries {
		summaries[i].TagIDs = byCase[summaries[i].ID]
	}
	return nil
}

// DeleteCase removes the case; photos, attachments and tag assignments go
// with it via cascade.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	return nil
}

var _ store.Gateway = (*Store)(nil)
