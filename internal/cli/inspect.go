package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wayfind-cms/wayfind/pkg/config"
	"github.com/wayfind-cms/wayfind/pkg/site"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		fixture  string
		langcode string
	)

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Browse a resolved layout interactively",
		Long: `Resolve a path against a site fixture and browse its layout tree.

Sections are listed top to bottom in render order; selecting one shows its
components with their kinds, regions, and targets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], fixture, langcode)
		},
	}

	cmd.Flags().StringVar(&fixture, "site", "", "path to TOML site fixture (required)")
	cmd.Flags().StringVarP(&langcode, "langcode", "l", "", "requested content language")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, path, fixture, langcode string) error {
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
		printWarning("%s resolved without a layout", path)
		return nil
	}

	model := NewLayoutModel(path, result.Layout)
	_, err = tea.NewProgram(model).Run()
	return err
}
