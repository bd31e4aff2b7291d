package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfind-cms/wayfind/pkg/config"
	"github.com/wayfind-cms/wayfind/pkg/diagram"
	"github.com/wayfind-cms/wayfind/pkg/site"
)

// diagramCommand creates the diagram command.
func (c *CLI) diagramCommand() *cobra.Command {
	var (
		fixture  string
		langcode string
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "diagram <path>",
		Short: "Render a resolved layout as a diagram",
		Long: `Resolve a path against a site fixture and render its layout as a diagram.

Sections become clusters, components become boxes. Inline blocks that
resolved to content point at it; dangling references stay dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagram(cmd, args[0], fixture, langcode, output, format, detailed)
		},
	}

	cmd.Flags().StringVar(&fixture, "site", "", "path to TOML site fixture (required)")
	cmd.Flags().StringVarP(&langcode, "langcode", "l", "", "requested content language")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <path>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include plugin ids and weights in labels")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func (c *CLI) runDiagram(cmd *cobra.Command, path, fixture, langcode, output, format string, detailed bool) error {
	if format != "svg" && format != "png" && format != "dot" {
		return fmt.Errorf("unknown format %q (want svg, png, or dot)", format)
	}

	s, err := site.Load(fixture)
	if err != nil {
		return err
	}

	orchestrator, err := c.buildOrchestrator(cmd.Context(), config.Default(), s)
	if err != nil {
		return err
	}

	result, err := orchestrator.Resolve(cmd.Context(), path, langcode, false)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if result.Layout == nil {
		return fmt.Errorf("%s has no layout to render", path)
	}

	dot := diagram.ToDOT(result.Layout, diagram.Options{Detailed: detailed, Title: path})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = diagram.RenderSVG(dot)
	case "png":
		data, err = diagram.RenderPNG(dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if output == "" {
		output = defaultOutputName(path, format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", path)
	printFile(output)
	return nil
}

// defaultOutputName derives a file name from the resolved path, so
// "/about-us" becomes "about-us.svg" and "/" becomes "root.svg".
func defaultOutputName(path, format string) string {
	name := strings.Trim(path, "/")
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		name = "root"
	}
	return name + "." + format
}
