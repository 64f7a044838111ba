// Package render turns export plans into output documents. The LaTeX
// renderer produces the print PDF via lualatex; the Markdown renderer is a
// lightweight text rendition used for previews and the CLI.
package render

import (
	"context"
	"fmt"

	"github.com/pavelhrncir/casebook/internal/export"
	"github.com/pavelhrncir/casebook/internal/raster"
)

// Format names an output document format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
)

// Renderer produces one output document from a plan.
type Renderer interface {
	Render(ctx context.Context, plan *export.Plan) ([]byte, error)
}

// ContentType returns the MIME type of the rendered document.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatMarkdown:
		return ".md"
	default:
		return ".bin"
	}
}

// ForFormat returns the renderer for a format.
func ForFormat(f Format, rs raster.Store) (Renderer, error) {
	switch f {
	case FormatPDF:
		return NewLatexRenderer(rs), nil
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}
