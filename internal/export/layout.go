// Package export turns a case into a deterministic export plan: which pages
// exist, which photo goes to which slot and under which export number. The
// planner is pure; renderers consume the plan without touching case state.
package export

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// LayoutConfig holds the page geometry in mm. The photo zone is a fixed
// grid of cells; every cell reserves a note band under the photo.
type LayoutConfig struct {
	PageWMM        float64 `yaml:"page_w"`
	PageHMM        float64 `yaml:"page_h"`
	LeftMarginMM   float64 `yaml:"left_margin"`
	RightMarginMM  float64 `yaml:"right_margin"`
	TopMarginMM    float64 `yaml:"top_margin"`
	BottomMarginMM float64 `yaml:"bottom_margin"`
	HeaderHeightMM float64 `yaml:"header_height"`
	FooterHeightMM float64 `yaml:"footer_height"`
	GridColumns    int     `yaml:"grid_columns"`
	GridRows       int     `yaml:"grid_rows"`
	CellGutterMM   float64 `yaml:"cell_gutter"`
	NoteLineMM     float64 `yaml:"note_line"`
	LegendRowMM    float64 `yaml:"legend_row"`
}

// DefaultLayoutConfig returns the A4 portrait report layout.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageWMM:        210.0,
		PageHMM:        297.0,
		LeftMarginMM:   15.0,
		RightMarginMM:  15.0,
		TopMarginMM:    12.0,
		BottomMarginMM: 14.0,
		HeaderHeightMM: 8.0,
		FooterHeightMM: 6.0,
		GridColumns:    2,
		GridRows:       2,
		CellGutterMM:   5.0,
		NoteLineMM:     4.0,
		LegendRowMM:    5.0,
	}
}

//go:embed presets.yaml
var presetsRaw []byte

// PresetLayout returns a named layout from the embedded preset file.
func PresetLayout(name string) (LayoutConfig, error) {
	var file struct {
		Presets map[string]LayoutConfig `yaml:"presets"`
	}
	if err := yaml.Unmarshal(presetsRaw, &file); err != nil {
		return LayoutConfig{}, fmt.Errorf("could not parse layout presets: %w", err)
	}
	cfg, ok := file.Presets[name]
	if !ok {
		return LayoutConfig{}, fmt.Errorf("unknown layout preset %q", name)
	}
	return cfg, nil
}

// ContentWidth returns the usable horizontal space.
func (c LayoutConfig) ContentWidth() float64 {
	return c.PageWMM - c.LeftMarginMM - c.RightMarginMM
}

// ContentHeight returns the vertical space between header and footer zones.
func (c LayoutConfig) ContentHeight() float64 {
	return c.PageHMM - c.TopMarginMM - c.BottomMarginMM - c.HeaderHeightMM - c.FooterHeightMM
}

// NoteBandHeight returns the vertical space reserved for note text under a
// photo: the full truncation budget at one line per NoteLineMM.
func (c LayoutConfig) NoteBandHeight() float64 {
	return float64(MaxNoteLines) * c.NoteLineMM
}

// PhotosPerPage returns the number of grid cells on a regular photo page.
func (c LayoutConfig) PhotosPerPage() int {
	return c.GridColumns * c.GridRows
}

// CellWidth returns the width of one grid cell.
func (c LayoutConfig) CellWidth() float64 {
	return (c.ContentWidth() - float64(c.GridColumns-1)*c.CellGutterMM) / float64(c.GridColumns)
}

// CellHeight returns the height of one grid cell including its note band.
func (c LayoutConfig) CellHeight() float64 {
	return (c.ContentHeight() - float64(c.GridRows-1)*c.CellGutterMM) / float64(c.GridRows)
}

// SlotRect is a photo slot in mm, origin at the top left of the content
// zone. The note band of the owning cell sits directly below the slot.
type SlotRect struct {
	X, Y, W, H float64
}

// GridSlots returns the photo slots of a regular page in row-major order.
func GridSlots(c LayoutConfig) []SlotRect {
	cellW := c.CellWidth()
	cellH := c.CellHeight()
	photoH := cellH - c.NoteBandHeight()

	slots := make([]SlotRect, 0, c.PhotosPerPage())
	for row := 0; row < c.GridRows; row++ {
		for col := 0; col < c.GridColumns; col++ {
			slots = append(slots, SlotRect{
				X: float64(col) * (cellW + c.CellGutterMM),
				Y: float64(row) * (cellH + c.CellGutterMM),
				W: cellW,
				H: photoH,
			})
		}
	}
	return slots
}

// FullPageSlot returns the single slot of a dedicated photo page: the whole
// content zone minus the note band at the bottom.
func FullPageSlot(c LayoutConfig) SlotRect {
	return SlotRect{
		X: 0,
		Y: 0,
		W: c.ContentWidth(),
		H: c.ContentHeight() - c.NoteBandHeight(),
	}
}
