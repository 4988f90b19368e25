package main

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the built-in catalog",
	Long:  `Print the built-in mansion catalog as JSON or YAML, as a starting point for new content.`,
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: json or yaml")
}

func runExport(cmd *cobra.Command, _ []string) error {
	doc := world.Default().Document()

	var out []byte
	var err error
	switch world.Format(exportFormat) {
	case world.FormatJSON:
		out, err = json.MarshalIndent(doc, "", "  ")
		out = append(out, '\n')
	case world.FormatYAML:
		out, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("unsupported format %q", exportFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
