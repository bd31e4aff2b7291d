// Package diagram renders a normalized layout tree as a diagram.
//
// Each section becomes a cluster, each component a box inside it. Inline
// blocks that resolved to content grow an extra node for the referenced
// block, so dangling references are visible at a glance: they stay a lone
// box, resolved ones point at their content.
package diagram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/wayfind-cms/wayfind/pkg/layout"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes plugin identifiers and weights in node labels.
	// When false, only the component kind and region are shown.
	Detailed bool

	// Title is the diagram heading, typically the resolved path.
	Title string
}

// ToDOT converts a layout tree to Graphviz DOT format. The resulting DOT
// string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(tree *layout.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph layout {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", opts.Title)
		buf.WriteString("  labelloc=t;\n")
	}
	buf.WriteString("\n")

	root := fmt.Sprintf("%s (%s)", tree.ViewMode, tree.Source)
	fmt.Fprintf(&buf, "  %q [fillcolor=lightblue];\n", root)

	for i, section := range tree.Sections {
		sectionID := fmt.Sprintf("section-%d", i)
		fmt.Fprintf(&buf, "\n  subgraph \"cluster-%s\" {\n", sectionID)
		fmt.Fprintf(&buf, "    label=%q;\n", section.LayoutID)
		buf.WriteString("    style=rounded;\n")

		for _, c := range section.Components {
			fmt.Fprintf(&buf, "    %q [%s];\n", c.UUID, strings.Join(componentAttrs(c, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")

		for _, c := range section.Components {
			fmt.Fprintf(&buf, "  %q -> %q;\n", root, c.UUID)
			if c.Kind == layout.KindInlineBlock && c.Inline != nil && c.Inline.Block != nil {
				blockID := c.Inline.Block.Type + "/" + c.Inline.Block.ID
				fmt.Fprintf(&buf, "  %q [fillcolor=lightyellow];\n", blockID)
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", c.UUID, blockID)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func componentAttrs(c layout.Component, detailed bool) []string {
	label := fmt.Sprintf("%s\n%s", c.Kind, c.Region)
	if detailed {
		label += fmt.Sprintf("\n%s\nweight: %d", c.PluginID, c.Weight)
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch c.Kind {
	case layout.KindField:
		attrs = append(attrs, "fillcolor=lightgreen")
	case layout.KindInlineBlock:
		if c.Inline == nil || c.Inline.Block == nil {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
