package cmd

import (
	"context"
	"fmt"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/config"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new case file",
	Long: `Create a new empty case file.

Example:
  casebook create "Výměna oken Nádražní 12"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title := args[0]

	cfg := config.Load()

	gw, err := openGateway(cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	c := casefile.NewCase(title)
	if err := gw.SaveCase(context.Background(), c); err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	fmt.Printf("Created case: %s\n", c.Title)
	fmt.Printf("ID: %s\n", c.ID)

	return nil
}
