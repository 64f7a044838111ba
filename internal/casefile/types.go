// Package casefile implements the case domain: a case owns an ordered list
// of photo records, a list of document attachments and some cover metadata.
// Photos reference their pixel data by raster resource name and carry vector
// annotation state; all ordering invariants live here.
package casefile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

// maxCaseTags limits how many tags a single case may carry.
const maxCaseTags = 3

// WeekdaySet is a bit set of work weekdays, Monday first.
type WeekdaySet uint8

const (
	Monday WeekdaySet = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayCodes = []struct {
	day  WeekdaySet
	code string
}{
	{Monday, "mon"},
	{Tuesday, "tue"},
	{Wednesday, "wed"},
	{Thursday, "thu"},
	{Friday, "fri"},
	{Saturday, "sat"},
	{Sunday, "sun"},
}

// Has reports whether the given day is part of the set.
func (ws WeekdaySet) Has(day WeekdaySet) bool {
	return ws&day != 0
}

// Codes returns the short day codes of the set in week order.
func (ws WeekdaySet) Codes() []string {
	var codes []string
	for _, wc := range weekdayCodes {
		if ws.Has(wc.day) {
			codes = append(codes, wc.code)
		}
	}
	return codes
}

// ParseWeekdays builds a set from short day codes ("mon" .. "sun").
func ParseWeekdays(codes []string) (WeekdaySet, error) {
	var ws WeekdaySet
	for _, code := range codes {
		found := false
		for _, wc := range weekdayCodes {
			if wc.code == code {
				ws |= wc.day
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown weekday code %q", code)
		}
	}
	return ws, nil
}

// TimeOfDay is a wall clock time stored as minutes since midnight.
type TimeOfDay int

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// Tag is a case label. A case references tags by ID.
type Tag struct {
	ID    string
	Name  string
	Color string
}

// CaseAttachment is a document attached to a case, exported after the
// photo pages in its own ordinal position.
type CaseAttachment struct {
	ID         string
	CaseID     string
	Document   string
	Filename   string
	OrderIndex int
	CreatedAt  time.Time
}

// CasePhoto is one photo record inside a case. It references its pixels by
// raster resource name and holds the annotation layers drawn over them.
type CasePhoto struct {
	ID         string
	CaseID     string
	Resource   string
	OrderIndex int
	Seq        int64
	Note       string
	InExport   bool
	FullPage   bool

	// Composite photos keep the resource names they were built from so
	// they can be split back apart later.
	Composite       bool
	SourceResources []string

	Drawing          annotation.Drawing
	Marks            annotation.Set
	LegendMeanings   map[string]string
	ShowStampSummary bool

	CreatedAt time.Time
}

// NewPhoto creates a photo record for the given raster resource. New photos
// take part in exports until excluded.
func NewPhoto(caseID, resource string) *CasePhoto {
	return &CasePhoto{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		Resource:  resource,
		InExport:  true,
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the photo record.
func (p *CasePhoto) Clone() *CasePhoto {
	c := *p
	c.SourceResources = append([]string(nil), p.SourceResources...)
	c.Drawing = p.Drawing.Clone()
	c.Marks = p.Marks.Clone()
	if p.LegendMeanings != nil {
		c.LegendMeanings = make(map[string]string, len(p.LegendMeanings))
		for k, v := range p.LegendMeanings {
			c.LegendMeanings[k] = v
		}
	}
	return &c
}

// ApplyAnnotation replaces the photo's annotation state from a decoded
// payload.
func (p *CasePhoto) ApplyAnnotation(pl annotation.Payload) {
	p.Drawing = pl.Drawing
	p.Marks = pl.Marks
	p.LegendMeanings = pl.Meanings
	p.ShowStampSummary = pl.ShowStampSummary
}

// AnnotationPayload bundles the photo's annotation state for serialization.
func (p *CasePhoto) AnnotationPayload() annotation.Payload {
	return annotation.Payload{
		Drawing:          p.Drawing,
		Marks:            p.Marks,
		Meanings:         p.LegendMeanings,
		ShowStampSummary: p.ShowStampSummary,
	}
}

// Legend returns the photo's stamp summary with meanings applied.
func (p *CasePhoto) Legend() []annotation.LegendEntry {
	return annotation.BuildLegend(&p.Marks, p.LegendMeanings)
}

// Case is the aggregate root: cover metadata plus the owned, ordered photo
// and attachment lists. Mutations go through the Case (or the Editor for
// operations that touch the raster store); a case must only be written by
// one goroutine at a time.
type Case struct {
	ID        string
	Title     string
	Note      string
	CoverPage bool
	Address   string
	Area      string
	Weekdays  WeekdaySet
	WorkStart *TimeOfDay
	WorkEnd   *TimeOfDay
	Archived  bool
	ListOrder int
	TagIDs    []string
	CreatedAt time.Time
	UpdatedAt time.Time

	Photos      []*CasePhoto
	Attachments []*CaseAttachment

	byID    map[string]*CasePhoto
	nextSeq int64
}

// NewCase creates an empty case with the cover page enabled.
func NewCase(title string) *Case {
	now := time.Now()
	return &Case{
		ID:        uuid.New().String(),
		Title:     title,
		CoverPage: true,
		CreatedAt: now,
		UpdatedAt: now,
		byID:      make(map[string]*CasePhoto),
	}
}

// Reindex rebuilds the photo lookup table and the insertion counter.
// Stores call it after loading a case graph from disk.
func (c *Case) Reindex() {
	c.byID = make(map[string]*CasePhoto, len(c.Photos))
	c.nextSeq = 0
	for _, p := range c.Photos {
		c.byID[p.ID] = p
		if p.Seq >= c.nextSeq {
			c.nextSeq = p.Seq + 1
		}
	}
}

// Photo returns the photo with the given ID, nil when it does not belong
// to this case.
func (c *Case) Photo(id string) *CasePhoto {
	if c.byID == nil {
		c.Reindex()
	}
	return c.byID[id]
}

// Attachment returns the attachment with the given ID, nil when absent.
func (c *Case) Attachment(id string) *CaseAttachment {
	for _, a := range c.Attachments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Touch refreshes the last-updated timestamp. Every photo mutation counts
// as a case update.
func (c *Case) Touch() {
	c.UpdatedAt = time.Now()
}

// SetTags replaces the case tag assignment.
func (c *Case) SetTags(tagIDs []string) error {
	if len(tagIDs) > maxCaseTags {
		return ErrTagLimit
	}
	c.TagIDs = append([]string(nil), tagIDs...)
	c.Touch()
	return nil
}

// Clone returns a deep copy of the whole case graph. Exports run on clones
// so background rendering never observes a case mid-edit.
func (c *Case) Clone() *Case {
	clone := *c
	clone.TagIDs = append([]string(nil), c.TagIDs...)
	if c.WorkStart != nil {
		t := *c.WorkStart
		clone.WorkStart = &t
	}
	if c.WorkEnd != nil {
		t := *c.WorkEnd
		clone.WorkEnd = &t
	}
	clone.Photos = make([]*CasePhoto, 0, len(c.Photos))
	for _, p := range c.Photos {
		clone.Photos = append(clone.Photos, p.Clone())
	}
	clone.Attachments = make([]*CaseAttachment, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		ac := *a
		clone.Attachments = append(clone.Attachments, &ac)
	}
	clone.Reindex()
	return &clone
}

// CaseSummary is the list view of a case.
type CaseSummary struct {
	ID         string
	Title      string
	Archived   bool
	ListOrder  int
	PhotoCount int
	TagIDs     []string
	UpdatedAt  time.Time
}

// Summary builds the list view of the case.
func (c *Case) Summary() CaseSummary {
	return CaseSummary{
		ID:         c.ID,
		Title:      c.Title,
		Archived:   c.Archived,
		ListOrder:  c.ListOrder,
		PhotoCount: len(c.Photos),
		TagIDs:     append([]string(nil), c.TagIDs...),
		UpdatedAt:  c.UpdatedAt,
	}
}
