package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/pavelhrncir/casebook/internal/export"
)

// MarkdownRenderer writes the plan as a plain Markdown document. Photos are
// referenced by resource name, not embedded, so the output stays small enough
// for previews and diffing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(_ context.Context, plan *export.Plan) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", orUntitled(plan.Title))

	for _, page := range plan.Pages {
		switch page.Kind {
		case export.PageCover:
			writeCover(&b, page.Cover)
		case export.PagePhotos:
			for i := range page.Blocks {
				writePhoto(&b, &page.Blocks[i])
			}
		case export.PageAttachment:
			writeAttachment(&b, page.Attachment)
		}
	}

	fmt.Fprintf(&b, "\n---\n%d pages, %d photos\n", len(plan.Pages), plan.PhotoCount)
	return []byte(b.String()), nil
}

func writeCover(b *strings.Builder, cover *export.CoverBlock) {
	if cover == nil {
		return
	}
	b.WriteString("\n")
	writeCoverField(b, "Address", cover.Address)
	writeCoverField(b, "Area", cover.Area)
	writeCoverField(b, "Days", strings.Join(cover.Weekdays, ", "))
	writeCoverField(b, "Hours", cover.WorkWindow)
	writeCoverField(b, "Note", cover.Note)
}

func writeCoverField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "**%s:** %s  \n", label, value)
}

func writePhoto(b *strings.Builder, block *export.PhotoBlock) {
	fmt.Fprintf(b, "\n## Photo %d\n\n", block.ExportNumber)
	fmt.Fprintf(b, "`%s`\n", block.Resource)

	if len(block.NoteLines) > 0 {
		b.WriteString("\n")
		for _, line := range block.NoteLines {
			fmt.Fprintf(b, "> %s\n", line)
		}
		if block.NoteTruncated {
			b.WriteString("> …\n")
		}
	}

	if len(block.Legend) > 0 {
		b.WriteString("\n| Mark | Count | Meaning |\n|---|---|---|\n")
		for _, row := range block.Legend {
			fmt.Fprintf(b, "| %s %s | %d | %s |\n",
				row.Symbol, row.Color, row.Count, row.Meaning)
		}
	}
}

func writeAttachment(b *strings.Builder, att *export.AttachmentBlock) {
	if att == nil {
		return
	}
	fmt.Fprintf(b, "\n## Attachment: %s\n\n`%s`\n", orUntitled(att.Filename), att.Document)
}

func orUntitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Untitled"
	}
	return s
}
