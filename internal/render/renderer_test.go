package render

import (
	"testing"

	"github.com/pavelhrncir/casebook/internal/raster"
)

func TestFormatContentType(t *testing.T) {
	tests := []struct {
		format   Format
		expected string
	}{
		{FormatPDF, "application/pdf"},
		{FormatMarkdown, "text/markdown; charset=utf-8"},
		{Format("weird"), "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := tt.format.ContentType(); got != tt.expected {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.expected)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	if got := FormatPDF.Extension(); got != ".pdf" {
		t.Errorf("pdf extension = %q", got)
	}
	if got := FormatMarkdown.Extension(); got != ".md" {
		t.Errorf("markdown extension = %q", got)
	}
}

func TestForFormat(t *testing.T) {
	store, err := raster.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}

	if r, err := ForFormat(FormatPDF, store); err != nil {
		t.Errorf("pdf renderer: %v", err)
	} else if _, ok := r.(*LatexRenderer); !ok {
		t.Errorf("expected LatexRenderer, got %T", r)
	}

	if r, err := ForFormat(FormatMarkdown, store); err != nil {
		t.Errorf("markdown renderer: %v", err)
	} else if _, ok := r.(*MarkdownRenderer); !ok {
		t.Errorf("expected MarkdownRenderer, got %T", r)
	}

	if _, err := ForFormat(Format("docx"), store); err == nil {
		t.Error("expected error for unknown format")
	}
}
