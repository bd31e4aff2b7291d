package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfind-cms/wayfind/pkg/config"
	"github.com/wayfind-cms/wayfind/pkg/resolver"
	"github.com/wayfind-cms/wayfind/pkg/site"
)

// resolveCommand creates the resolve command for one-shot resolution.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		fixture       string
		langcode      string
		authenticated bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against a site fixture",
		Long: `Resolve one site-relative path against a site fixture and print the result.

This runs the same pipeline as the HTTP service: path lookup, entity load,
access check, and layout normalization. Use --json for the exact wire format
the service would return.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args[0], fixture, langcode, authenticated, asJSON)
		},
	}

	cmd.Flags().StringVar(&fixture, "site", "", "path to TOML site fixture (required)")
	cmd.Flags().StringVarP(&langcode, "langcode", "l", "", "requested content language")
	cmd.Flags().BoolVar(&authenticated, "authenticated", false, "resolve as an authenticated user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, path, fixture, langcode string, authenticated, asJSON bool) error {
	s, err := site.Load(fixture)
	if err != nil {
		return err
	}

	orchestrator, err := c.buildOrchestrator(cmd.Context(), config.Default(), s)
	if err != nil {
		return err
	}

	result, err := orchestrator.Resolve(cmd.Context(), path, langcode, authenticated)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printResult(path, result)
	return nil
}

// printResult renders a human-readable resolution summary.
func printResult(path string, result *resolver.Result) {
	if !result.Resolved {
		printWarning("No route for %s", path)
		return
	}

	switch result.Kind {
	case resolver.KindRedirect:
		printInfo("%s redirects", path)
		printKeyValue("Target", result.RedirectTarget)
		printKeyValue("Status", fmt.Sprintf("%d", result.RedirectStatus))
	default:
		printSuccess("Resolved %s", path)
		if result.Label != "" {
			printKeyValue("Label", result.Label)
		}
		if result.Canonical != "" {
			printKeyValue("Canonical", result.Canonical)
		}
		if result.Entity != nil {
			printKeyValue("Entity", result.Entity.Type+" "+result.Entity.UUID)
		}
	}

	if result.Layout != nil {
		printNewline()
		printInfo("Layout: %d section(s) from %s", len(result.Layout.Sections), result.Layout.Source)
		for i, section := range result.Layout.Sections {
			kinds := make([]string, 0, len(section.Components))
			for _, comp := range section.Components {
				kinds = append(kinds, comp.Kind)
			}
			printDetail("%d. %s [%s]", i+1, section.LayoutID, strings.Join(kinds, ", "))
		}
	} else {
		printDetail("no layout")
	}

	printNewline()
	printKeyValue("Cache-Control", result.Meta.CacheControl())
	if tags := result.Meta.Tags(); len(tags) > 0 {
		printKeyValue("Tags", strings.Join(tags, " "))
	}
}
