package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pavelhrncir/casebook/internal/config"
	"github.com/pavelhrncir/casebook/internal/export"
	"github.com/pavelhrncir/casebook/internal/render"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <case-id>",
	Short: "Render a case into a PDF or Markdown report",
	Long: `Render a case into a paginated report.

The command builds the page plan, checks every referenced raster,
renders the document and writes it to a file.

Example:
  casebook export 7d3f2a91 --format pdf
  casebook export 7d3f2a91 --format markdown --out zprava.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "pdf", "Output format: pdf, markdown")
	exportCmd.Flags().String("preset", "", "Layout preset (defaults to EXPORT_PRESET)")
	exportCmd.Flags().String("out", "", "Output file (defaults to case-<id>.<ext>)")
}

func runExport(cmd *cobra.Command, args []string) error {
	caseID := args[0]

	cfg := config.Load()

	formatName := mustGetString(cmd, "format")
	presetName := mustGetString(cmd, "preset")
	outPath := mustGetString(cmd, "out")

	if presetName == "" {
		presetName = cfg.Export.Preset
	}
	layout, err := export.PresetLayout(presetName)
	if err != nil {
		return err
	}

	gw, err := openGateway(cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	rasters, err := openRasters(cfg)
	if err != nil {
		return err
	}

	format := render.Format(formatName)
	renderer, err := render.ForFormat(format, rasters)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	c, err := gw.LoadCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to load case: %w", err)
	}
	if c == nil {
		return fmt.Errorf("case %s not found", caseID)
	}

	title := c.Title
	if title == "" {
		title = c.ID
	}
	fmt.Printf("Exporting case: %s\n", title)
	fmt.Printf("Format: %s, preset: %s\n\n", format, presetName)

	plan := export.BuildPlan(c, layout)
	fmt.Printf("Planned %d page(s) for %d photo(s)\n", len(plan.Pages), plan.PhotoCount)

	for _, warn := range export.ValidatePlan(plan) {
		fmt.Printf("Plan %s (page %d): %s\n", warn.Severity, warn.PageNumber, warn.Message)
	}

	// Check the referenced rasters before spending time on rendering.
	// Missing ones render as placeholders.
	names := planResources(plan)
	var missing []string
	if len(names) > 0 {
		bar := progressbar.NewOptions(len(names),
			progressbar.OptionSetDescription("Checking rasters"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)

		for _, name := range names {
			if _, _, err := rasters.Dimensions(ctx, name); err != nil {
				missing = append(missing, name)
			}
			bar.Add(1)
		}
		fmt.Println()
	}
	for _, name := range missing {
		fmt.Printf("Warning: raster %s is missing, a placeholder will be used\n", name)
	}

	fmt.Println("Rendering...")
	data, err := renderer.Render(ctx, plan)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	if outPath == "" {
		outPath = fmt.Sprintf("case-%s%s", c.ID, format.Extension())
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Printf("\nDone! Wrote %s (%d page(s), %d bytes)\n", outPath, len(plan.Pages), len(data))
	return nil
}

// planResources lists every raster a plan references, photos first, then
// attachment documents, deduplicated.
func planResources(p *export.Plan) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, page := range p.Pages {
		for _, block := range page.Blocks {
			add(block.Resource)
		}
		if page.Attachment != nil {
			add(page.Attachment.Document)
		}
	}
	return names
}
