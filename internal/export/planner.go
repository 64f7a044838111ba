package export

import (
	"strings"

	"github.com/pavelhrncir/casebook/internal/casefile"
)

// MaxNoteLines caps how many note lines a photo gets on paper. The same
// budget applies to grid cells and full-page layouts.
const MaxNoteLines = 6

// PageKind discriminates plan pages.
type PageKind string

const (
	PageCover      PageKind = "cover"
	PagePhotos     PageKind = "photos"
	PageAttachment PageKind = "attachment"
)

// Plan is the complete, immutable description of one export run. Building
// it twice over the same case yields the same plan.
type Plan struct {
	CaseID     string
	Title      string
	Layout     LayoutConfig
	Pages      []Page
	PhotoCount int
}

// Page is one output page.
type Page struct {
	Number     int
	Kind       PageKind
	Cover      *CoverBlock
	Blocks     []PhotoBlock
	Attachment *AttachmentBlock
}

// CoverBlock carries the case metadata rendered on the cover page.
type CoverBlock struct {
	Title      string
	Note       string
	Address    string
	Area       string
	Weekdays   []string
	WorkWindow string
}

// PhotoBlock places one photo on a page.
type PhotoBlock struct {
	PhotoID       string
	Resource      string
	ExportNumber  int
	FullPage      bool
	Slot          SlotRect
	NoteLines     []string
	NoteTruncated bool
	Legend        []LegendRow
}

// LegendRow is one line of a photo's stamp summary.
type LegendRow struct {
	Symbol   string
	Color    string
	Numbered bool
	Count    int
	Meaning  string
}

// AttachmentBlock places one attached document on its own page.
type AttachmentBlock struct {
	AttachmentID string
	Document     string
	Filename     string
}

// ExportNumbers assigns the printed numbers: a 1-based rank over the
// included photos in presentation order. Excluded photos get no number and
// leave no gap.
func ExportNumbers(photos []*casefile.CasePhoto) map[string]int {
	numbers := make(map[string]int)
	n := 0
	for _, p := range photos {
		if !p.InExport {
			continue
		}
		n++
		numbers[p.ID] = n
	}
	return numbers
}

// BuildPlan lays the case out into pages. The plan depends only on the
// case snapshot and the layout, never on prior plans or stored numbering.
func BuildPlan(c *casefile.Case, cfg LayoutConfig) *Plan {
	plan := &Plan{
		CaseID: c.ID,
		Title:  c.Title,
		Layout: cfg,
	}

	if c.CoverPage {
		plan.addPage(Page{Kind: PageCover, Cover: buildCover(c)})
	}

	sorted := c.SortedPhotos()
	numbers := ExportNumbers(sorted)
	slots := GridSlots(cfg)
	openIdx := -1

	for _, photo := range sorted {
		if !photo.InExport {
			continue
		}
		plan.PhotoCount++
		block := buildBlock(photo, numbers[photo.ID])

		if photo.FullPage {
			block.FullPage = true
			block.Slot = FullPageSlot(cfg)
			plan.addPage(Page{Kind: PagePhotos, Blocks: []PhotoBlock{block}})
			openIdx = -1
			continue
		}

		if openIdx < 0 || len(plan.Pages[openIdx].Blocks) == len(slots) {
			plan.addPage(Page{Kind: PagePhotos})
			openIdx = len(plan.Pages) - 1
		}
		block.Slot = slots[len(plan.Pages[openIdx].Blocks)]
		plan.Pages[openIdx].Blocks = append(plan.Pages[openIdx].Blocks, block)
	}

	for _, att := range c.SortedAttachments() {
		plan.addPage(Page{Kind: PageAttachment, Attachment: &AttachmentBlock{
			AttachmentID: att.ID,
			Document:     att.Document,
			Filename:     att.Filename,
		}})
	}

	return plan
}

func (p *Plan) addPage(page Page) {
	page.Number = len(p.Pages) + 1
	p.Pages = append(p.Pages, page)
}

func buildCover(c *casefile.Case) *CoverBlock {
	cover := &CoverBlock{
		Title:    c.Title,
		Note:     c.Note,
		Address:  c.Address,
		Area:     c.Area,
		Weekdays: c.Weekdays.Codes(),
	}
	switch {
	case c.WorkStart != nil && c.WorkEnd != nil:
		cover.WorkWindow = c.WorkStart.String() + "-" + c.WorkEnd.String()
	case c.WorkStart != nil:
		cover.WorkWindow = c.WorkStart.String()
	case c.WorkEnd != nil:
		cover.WorkWindow = c.WorkEnd.String()
	}
	return cover
}

func buildBlock(photo *casefile.CasePhoto, number int) PhotoBlock {
	block := PhotoBlock{
		PhotoID:      photo.ID,
		Resource:     photo.Resource,
		ExportNumber: number,
	}
	block.NoteLines, block.NoteTruncated = splitNote(photo.Note, MaxNoteLines)

	if photo.ShowStampSummary {
		for _, entry := range photo.Legend() {
			block.Legend = append(block.Legend, LegendRow{
				Symbol:   string(entry.Key.Kind),
				Color:    entry.Key.Color,
				Numbered: entry.Key.Numbered,
				Count:    entry.Count,
				Meaning:  entry.Meaning,
			})
		}
	}
	return block
}

// splitNote breaks a note into lines and caps them at the print budget.
// Trailing blank lines are dropped before the cap is applied.
func splitNote(note string, max int) ([]string, bool) {
	if note == "" {
		return nil, false
	}
	lines := strings.Split(strings.ReplaceAll(note, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= max {
		return lines, false
	}
	return lines[:max], true
}
