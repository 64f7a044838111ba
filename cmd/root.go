package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rasterDir string

var rootCmd = &cobra.Command{
	Use:   "casebook",
	Short: "A photo case file manager with annotated PDF exports",
	Long: `Casebook manages photo-documented case files: ordered photo records
with freehand annotations, numbered marks and a shared legend, composed
into paginated PDF or Markdown reports.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&rasterDir, "rasters", "", "Directory holding the photo raster files (overrides RASTER_DIR)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
