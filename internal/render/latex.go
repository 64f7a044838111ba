package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/pavelhrncir/casebook/internal/export"
	"github.com/pavelhrncir/casebook/internal/raster"
)

//go:embed templates/report.tex
var templateFS embed.FS

// materializeConcurrency caps the worker pool that writes photo files for
// the LaTeX run.
const materializeConcurrency = 4

// LatexRenderer compiles the plan into a PDF with lualatex. The binary must
// be available on PATH; all intermediate files live in a throwaway
// directory.
type LatexRenderer struct {
	rasters raster.Store
}

func NewLatexRenderer(rs raster.Store) *LatexRenderer {
	return &LatexRenderer{rasters: rs}
}

// texDoc is the template input. All positions are in mm from the bottom
// left corner of the page, the TikZ convention.
type texDoc struct {
	Title     string
	Layout    export.LayoutConfig
	PageCount int
	Pages     []texPage
}

type texPage struct {
	Number     int
	Kind       export.PageKind
	Cover      *export.CoverBlock
	Photos     []texPhoto
	Attachment *texAttachment
}

// texPhoto holds pre-computed node coordinates for one photo slot. X/Y is
// the top left corner of the slot, NoteY the top of the note band below it.
type texPhoto struct {
	File      string
	Number    int
	X, Y      float64
	W, H      float64
	NoteY     float64
	NoteLines []string
	Truncated bool
	Legend    []export.LegendRow
}

type texAttachment struct {
	Filename string
	File     string
	X, Y     float64
	W, H     float64
}

func (r *LatexRenderer) Render(ctx context.Context, plan *export.Plan) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "casebook-export")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	files := r.materialize(ctx, plan, tmpDir)
	doc := buildTexDoc(plan, files)
	return compileLatex(ctx, doc, tmpDir)
}

// materialize writes every raster the plan references into tmpDir as a PNG
// file and returns resource name -> file name. Rasters that fail to load are
// logged and skipped; the template renders a placeholder frame instead.
func (r *LatexRenderer) materialize(ctx context.Context, plan *export.Plan, tmpDir string) map[string]string {
	resources := planResources(plan)

	files := make(map[string]string)
	var mu sync.Mutex

	jobs := make(chan string, len(resources))
	for _, res := range resources {
		jobs <- res
	}
	close(jobs)

	var wg sync.WaitGroup
	for range materializeConcurrency {
		wg.Go(func() {
			for res := range jobs {
				if ctx.Err() != nil {
					return
				}
				name, err := r.materializeOne(ctx, res, tmpDir)
				if err != nil {
					log.Printf("WARNING: failed to materialize raster %s: %v", res, err)
					continue
				}
				mu.Lock()
				files[res] = name
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return files
}

func (r *LatexRenderer) materializeOne(ctx context.Context, resource, tmpDir string) (string, error) {
	img, err := r.rasters.Load(ctx, resource)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(resource, filepath.Ext(resource)) + ".png"
	f, err := os.Create(filepath.Join(tmpDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create photo file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// planResources collects the raster names the plan references, first
// occurrence order, no duplicates.
func planResources(plan *export.Plan) []string {
	seen := make(map[string]bool)
	var resources []string
	add := func(res string) {
		if res == "" || seen[res] {
			return
		}
		seen[res] = true
		resources = append(resources, res)
	}
	for _, page := range plan.Pages {
		for i := range page.Blocks {
			add(page.Blocks[i].Resource)
		}
		if page.Attachment != nil {
			add(page.Attachment.Document)
		}
	}
	return resources
}

// buildTexDoc converts the plan's content-relative slot coordinates into
// absolute page coordinates for TikZ.
func buildTexDoc(plan *export.Plan, files map[string]string) texDoc {
	layout := plan.Layout
	doc := texDoc{
		Title:     plan.Title,
		Layout:    layout,
		PageCount: len(plan.Pages),
	}

	contentLeft := layout.LeftMarginMM
	contentTop := layout.TopMarginMM + layout.HeaderHeightMM

	for _, page := range plan.Pages {
		tp := texPage{Number: page.Number, Kind: page.Kind, Cover: page.Cover}

		for i := range page.Blocks {
			block := page.Blocks[i]
			ph := texPhoto{
				File:      files[block.Resource],
				Number:    block.ExportNumber,
				X:         contentLeft + block.Slot.X,
				Y:         layout.PageHMM - (contentTop + block.Slot.Y),
				W:         block.Slot.W,
				H:         block.Slot.H,
				NoteLines: block.NoteLines,
				Truncated: block.NoteTruncated,
				Legend:    block.Legend,
			}
			ph.NoteY = ph.Y - ph.H
			tp.Photos = append(tp.Photos, ph)
		}

		if page.Attachment != nil {
			slot := export.FullPageSlot(layout)
			tp.Attachment = &texAttachment{
				Filename: page.Attachment.Filename,
				File:     files[page.Attachment.Document],
				X:        contentLeft + slot.X,
				Y:        layout.PageHMM - (contentTop + slot.Y),
				W:        slot.W,
				H:        slot.H,
			}
		}

		doc.Pages = append(doc.Pages, tp)
	}
	return doc
}

// latexEscapeRaw escapes special LaTeX characters in user text.
func latexEscapeRaw(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		`{`, `\{`,
		`}`, `\}`,
		`%`, `\%`,
		`&`, `\&`,
		`#`, `\#`,
		`$`, `\$`,
		`_`, `\_`,
		`^`, `\textasciicircum{}`,
		`~`, `\textasciitilde{}`,
	)
	return replacer.Replace(s)
}

// singleLetterRe matches single-letter words followed by a space. Czech
// notes are full of single-letter prepositions that must not end a line.
var singleLetterRe = regexp.MustCompile(`(^|[\s])([vVkKsSzZuUoOiIaA])\s`)

func nonBreakingPrepositions(s string) string {
	return singleLetterRe.ReplaceAllString(s, "${1}${2}~")
}

// latexEscape escapes special LaTeX characters and applies the
// non-breaking-space rule for single-letter words.
func latexEscape(s string) string {
	return nonBreakingPrepositions(latexEscapeRaw(s))
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// renderTex executes the embedded template over the document model.
func renderTex(doc texDoc) ([]byte, error) {
	funcMap := template.FuncMap{
		"latexEscape":   latexEscape,
		"mm":            formatMM,
		"addFloat":      func(a, b float64) float64 { return a + b },
		"subtractFloat": func(a, b float64) float64 { return a - b },
		"mulFloat":      func(a, b float64) float64 { return a * b },
		"divFloat":      func(a, b float64) float64 { return a / b },
	}
	tmpl, err := template.New("report.tex").Funcs(funcMap).ParseFS(templateFS, "templates/report.tex")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// compileLatex writes the rendered template and runs lualatex, returning
// the PDF bytes.
func compileLatex(ctx context.Context, doc texDoc, tmpDir string) ([]byte, error) {
	source, err := renderTex(doc)
	if err != nil {
		return nil, err
	}

	texPath := filepath.Join(tmpDir, "report.tex")
	if err := os.WriteFile(texPath, source, 0600); err != nil {
		return nil, fmt.Errorf("failed to write tex file: %w", err)
	}

	// Run lualatex twice, the second pass resolves remember picture
	// positions.
	for pass := range 2 {
		cmd := exec.CommandContext(ctx, "lualatex",
			"-interaction=nonstopmode",
			"-output-directory="+tmpDir,
			texPath,
		)
		cmd.Dir = tmpDir
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("lualatex pass %d failed: %w\n%s", pass+1, err, string(output))
		}
	}

	pdfData, err := os.ReadFile(filepath.Join(tmpDir, "report.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return pdfData, nil
}
