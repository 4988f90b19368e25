package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "validate <catalog.json|catalog.yaml>...",
	Short: "Validate Illusionaire room catalogs",
	Long: `Validate checks catalog files for content errors (dangling exits, duplicate ids,
monsters hidden together with items) and for the id naming conventions.`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runValidate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, filename := range args {
		fmt.Fprintf(cmd.OutOrStdout(), "Validating %s...\n", filename)
		v := &CatalogValidator{}
		if err := v.ValidateFile(filename); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid!\n", filename)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d catalog files failed validation", failed, len(args))
	}
	return nil
}
