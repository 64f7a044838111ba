package export

import "fmt"

// ValidationWarning describes a layout issue found in a plan.
type ValidationWarning struct {
	PageNumber int
	BlockIndex int
	Message    string
	Severity   string // "error" or "warning"
}

// ValidatePlan checks a built plan for layout integrity: slots must stay
// inside the content zone, blocks must not overlap and export numbers must
// run 1..n without gaps. Truncated notes are reported as warnings so the
// surveyor can shorten them before printing.
func ValidatePlan(p *Plan) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01

	cw := p.Layout.ContentWidth()
	ch := p.Layout.ContentHeight()

	expected := 0
	for _, page := range p.Pages {
		for i, block := range page.Blocks {
			s := block.Slot
			if s.X < -eps || s.Y < -eps || s.X+s.W > cw+eps || s.Y+s.H > ch+eps {
				warnings = append(warnings, ValidationWarning{
					PageNumber: page.Number,
					BlockIndex: i,
					Message:    fmt.Sprintf("slot (%.2f, %.2f, %.2f, %.2f) exceeds the content zone %.2fx%.2f", s.X, s.Y, s.W, s.H, cw, ch),
					Severity:   "error",
				})
			}
			for j := i + 1; j < len(page.Blocks); j++ {
				if slotsOverlap(s, page.Blocks[j].Slot, eps) {
					warnings = append(warnings, ValidationWarning{
						PageNumber: page.Number,
						BlockIndex: i,
						Message:    fmt.Sprintf("slot %d overlaps with slot %d", i, j),
						Severity:   "error",
					})
				}
			}
			if block.NoteTruncated {
				warnings = append(warnings, ValidationWarning{
					PageNumber: page.Number,
					BlockIndex: i,
					Message:    fmt.Sprintf("note of photo %d truncated to %d lines", block.ExportNumber, MaxNoteLines),
					Severity:   "warning",
				})
			}

			expected++
			if block.ExportNumber != expected {
				warnings = append(warnings, ValidationWarning{
					PageNumber: page.Number,
					BlockIndex: i,
					Message:    fmt.Sprintf("export number %d out of sequence, want %d", block.ExportNumber, expected),
					Severity:   "error",
				})
			}
		}

		if page.Kind == PageCover && page.Number != 1 {
			warnings = append(warnings, ValidationWarning{
				PageNumber: page.Number,
				BlockIndex: -1,
				Message:    "cover page is not the first page",
				Severity:   "error",
			})
		}
	}

	return warnings
}

// slotsOverlap checks two slots for overlap with tolerance. Slots sharing
// an edge within eps do not count.
func slotsOverlap(a, b SlotRect, eps float64) bool {
	if a.X+a.W <= b.X+eps || b.X+b.W <= a.X+eps {
		return false
	}
	if a.Y+a.H <= b.Y+eps || b.Y+b.H <= a.Y+eps {
		return false
	}
	return true
}
