package export

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pavelhrncir/casebook/internal/annotation"
	"github.com/pavelhrncir/casebook/internal/casefile"
)

func planCase(t *testing.T, photos int) *casefile.Case {
	t.Helper()
	c := casefile.NewCase("Site survey")
	c.CoverPage = false
	for i := 0; i < photos; i++ {
		c.AppendPhoto(casefile.NewPhoto(c.ID, fmt.Sprintf("res-%d", i)))
	}
	return c
}

func photoPages(p *Plan) []Page {
	var out []Page
	for _, page := range p.Pages {
		if page.Kind == PagePhotos {
			out = append(out, page)
		}
	}
	return out
}

func TestExportNumbersSkipExcluded(t *testing.T) {
	c := planCase(t, 5)
	photos := c.SortedPhotos()
	photos[1].InExport = false
	photos[3].InExport = false

	numbers := ExportNumbers(photos)

	want := map[string]int{
		photos[0].ID: 1,
		photos[2].ID: 2,
		photos[4].ID: 3,
	}
	if !reflect.DeepEqual(numbers, want) {
		t.Errorf("numbers = %v, want %v", numbers, want)
	}
	if _, ok := numbers[photos[1].ID]; ok {
		t.Error("excluded photo must not receive a number")
	}
}

func TestBuildPlanNumberingFollowsView(t *testing.T) {
	c := planCase(t, 3)
	photos := c.SortedPhotos()
	c.ReorderPhoto(photos[2].ID, photos[0].ID) // view: 2 0 1

	plan := BuildPlan(c, DefaultLayoutConfig())

	pages := photoPages(plan)
	if len(pages) != 1 {
		t.Fatalf("got %d photo pages, want 1", len(pages))
	}
	blocks := pages[0].Blocks
	if blocks[0].Resource != "res-2" || blocks[0].ExportNumber != 1 {
		t.Errorf("block 0 = %s #%d, want res-2 #1", blocks[0].Resource, blocks[0].ExportNumber)
	}
	if blocks[1].Resource != "res-0" || blocks[1].ExportNumber != 2 {
		t.Errorf("block 1 = %s #%d, want res-0 #2", blocks[1].Resource, blocks[1].ExportNumber)
	}
}

func TestBuildPlanGridPagination(t *testing.T) {
	c := planCase(t, 5)

	plan := BuildPlan(c, DefaultLayoutConfig())

	pages := photoPages(plan)
	if len(pages) != 2 {
		t.Fatalf("got %d photo pages, want 2", len(pages))
	}
	if len(pages[0].Blocks) != 4 || len(pages[1].Blocks) != 1 {
		t.Errorf("blocks per page = %d, %d, want 4, 1", len(pages[0].Blocks), len(pages[1].Blocks))
	}
	if plan.PhotoCount != 5 {
		t.Errorf("photo count = %d, want 5", plan.PhotoCount)
	}
}

func TestBuildPlanFullPage(t *testing.T) {
	c := planCase(t, 6)
	c.SortedPhotos()[1].FullPage = true

	plan := BuildPlan(c, DefaultLayoutConfig())

	pages := photoPages(plan)
	if len(pages) != 3 {
		t.Fatalf("got %d photo pages, want 3", len(pages))
	}
	// photo 0 alone on the interrupted grid page
	if len(pages[0].Blocks) != 1 || pages[0].Blocks[0].Resource != "res-0" {
		t.Errorf("page 1 blocks = %+v, want only res-0", pages[0].Blocks)
	}
	// the full-page photo gets a dedicated page with the full slot
	if len(pages[1].Blocks) != 1 || !pages[1].Blocks[0].FullPage {
		t.Fatalf("page 2 = %+v, want one full-page block", pages[1].Blocks)
	}
	if pages[1].Blocks[0].Slot != FullPageSlot(DefaultLayoutConfig()) {
		t.Errorf("full-page slot = %+v, want %+v", pages[1].Blocks[0].Slot, FullPageSlot(DefaultLayoutConfig()))
	}
	// the remaining four start a fresh grid page
	if len(pages[2].Blocks) != 4 {
		t.Errorf("page 3 blocks = %d, want 4", len(pages[2].Blocks))
	}
	// numbering keeps counting across layouts
	if pages[1].Blocks[0].ExportNumber != 2 || pages[2].Blocks[0].ExportNumber != 3 {
		t.Errorf("numbers = %d, %d, want 2, 3", pages[1].Blocks[0].ExportNumber, pages[2].Blocks[0].ExportNumber)
	}
}

func TestBuildPlanCover(t *testing.T) {
	c := planCase(t, 1)
	c.CoverPage = true
	c.Note = "keys at the reception"
	c.Address = "Dvořákova 12, Brno"
	c.Area = "block B"
	c.Weekdays = casefile.Monday | casefile.Tuesday
	start, _ := casefile.ParseTimeOfDay("07:30")
	end, _ := casefile.ParseTimeOfDay("16:00")
	c.WorkStart, c.WorkEnd = &start, &end

	plan := BuildPlan(c, DefaultLayoutConfig())

	if plan.Pages[0].Kind != PageCover || plan.Pages[0].Number != 1 {
		t.Fatalf("first page = %+v, want cover page 1", plan.Pages[0])
	}
	cover := plan.Pages[0].Cover
	if cover.Title != "Site survey" || cover.Address != "Dvořákova 12, Brno" {
		t.Errorf("cover = %+v", cover)
	}
	if len(cover.Weekdays) != 2 || cover.Weekdays[0] != "mon" {
		t.Errorf("weekdays = %v, want [mon tue]", cover.Weekdays)
	}
	if cover.WorkWindow != "07:30-16:00" {
		t.Errorf("work window = %q, want 07:30-16:00", cover.WorkWindow)
	}

	c.CoverPage = false
	plan = BuildPlan(c, DefaultLayoutConfig())
	if plan.Pages[0].Kind != PagePhotos {
		t.Errorf("first page kind = %s, want photos when the cover is off", plan.Pages[0].Kind)
	}
}

func TestBuildPlanAttachments(t *testing.T) {
	c := planCase(t, 1)
	c.AppendAttachment(&casefile.CaseAttachment{ID: "a1", Document: "doc-1", Filename: "plan.pdf"})
	c.AppendAttachment(&casefile.CaseAttachment{ID: "a2", Document: "doc-2", Filename: "permit.pdf"})

	plan := BuildPlan(c, DefaultLayoutConfig())

	if len(plan.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(plan.Pages))
	}
	if plan.Pages[1].Kind != PageAttachment || plan.Pages[1].Attachment.Filename != "plan.pdf" {
		t.Errorf("page 2 = %+v, want attachment plan.pdf", plan.Pages[1])
	}
	if plan.Pages[2].Kind != PageAttachment || plan.Pages[2].Attachment.Filename != "permit.pdf" {
		t.Errorf("page 3 = %+v, want attachment permit.pdf", plan.Pages[2])
	}
}

func TestBuildPlanNoteTruncation(t *testing.T) {
	c := planCase(t, 2)
	photos := c.SortedPhotos()
	photos[0].Note = strings.Repeat("line\n", 8)
	photos[1].Note = "short"
	photos[1].FullPage = true

	plan := BuildPlan(c, DefaultLayoutConfig())

	grid := photoPages(plan)[0].Blocks[0]
	if len(grid.NoteLines) != MaxNoteLines || !grid.NoteTruncated {
		t.Errorf("grid note = %d lines truncated=%v, want %d lines truncated", len(grid.NoteLines), grid.NoteTruncated, MaxNoteLines)
	}

	full := photoPages(plan)[1].Blocks[0]
	if len(full.NoteLines) != 1 || full.NoteTruncated {
		t.Errorf("full-page note = %d lines truncated=%v, want 1 line untouched", len(full.NoteLines), full.NoteTruncated)
	}
}

func TestBuildPlanLegend(t *testing.T) {
	c := planCase(t, 1)
	p := c.SortedPhotos()[0]
	p.Marks = annotation.Set{
		Canvas: annotation.Size{W: 100, H: 100},
		Stamps: []annotation.Stamp{
			{Kind: annotation.StampCircle, Color: "#f00", At: annotation.Pt(1, 1)},
			{Kind: annotation.StampCircle, Color: "#f00", At: annotation.Pt(2, 2)},
		},
	}
	p.LegendMeanings = map[string]string{"circle/#f00/plain": "crack"}

	plan := BuildPlan(c, DefaultLayoutConfig())
	if got := photoPages(plan)[0].Blocks[0].Legend; len(got) != 0 {
		t.Errorf("legend without the summary flag = %+v, want none", got)
	}

	p.ShowStampSummary = true
	plan = BuildPlan(c, DefaultLayoutConfig())
	legend := photoPages(plan)[0].Blocks[0].Legend
	if len(legend) != 1 {
		t.Fatalf("got %d legend rows, want 1", len(legend))
	}
	if legend[0].Count != 2 || legend[0].Meaning != "crack" || legend[0].Symbol != "circle" {
		t.Errorf("legend row = %+v", legend[0])
	}
}

func TestBuildPlanEmptyCase(t *testing.T) {
	c := casefile.NewCase("empty")
	c.CoverPage = false

	plan := BuildPlan(c, DefaultLayoutConfig())
	if len(plan.Pages) != 0 {
		t.Errorf("empty case produced %d pages, want 0", len(plan.Pages))
	}

	c.CoverPage = true
	plan = BuildPlan(c, DefaultLayoutConfig())
	if len(plan.Pages) != 1 || plan.Pages[0].Kind != PageCover {
		t.Errorf("pages = %+v, want a single cover page", plan.Pages)
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	c := planCase(t, 7)
	photos := c.SortedPhotos()
	photos[2].InExport = false
	photos[4].FullPage = true
	c.AppendAttachment(&casefile.CaseAttachment{ID: "a1", Document: "doc-1", Filename: "plan.pdf"})

	first := BuildPlan(c, DefaultLayoutConfig())
	second := BuildPlan(c, DefaultLayoutConfig())

	if !reflect.DeepEqual(first, second) {
		t.Error("two plans over the same case differ")
	}

	for i, page := range first.Pages {
		if page.Number != i+1 {
			t.Errorf("page %d has number %d", i, page.Number)
		}
	}
}
