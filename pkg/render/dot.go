package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/route"
)

// DOTOptions configures overview rendering.
type DOTOptions struct {
	// Clusters groups nodes into one subgraph per category.
	Clusters bool
	// Ports attaches edges at their resolved sides.
	Ports bool
}

// ToDOT converts a scene to Graphviz DOT. Only nodes and routes present in
// the scene are emitted, so hidden categories stay hidden.
func ToDOT(p *board.Project, scene route.Scene, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#888888\", fontsize=11, fontcolor=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	written := make(map[string]bool)
	if opts.Clusters {
		for i, c := range p.Categories {
			var members []board.Node
			for _, n := range p.Nodes {
				if _, ok := scene.Nodes[n.ID]; ok && n.Category == c.ID {
					members = append(members, n)
				}
			}
			if len(members) == 0 {
				continue
			}
			label := c.Label
			if label == "" {
				label = c.ID
			}
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n    color=%q;\n", label, colorOr(c.Color))
			for _, n := range members {
				fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(nodeAttrs(p, n), ", "))
				written[n.ID] = true
			}
			buf.WriteString("  }\n")
		}
	}
	for _, n := range p.Nodes {
		if _, ok := scene.Nodes[n.ID]; !ok || written[n.ID] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(p, n), ", "))
	}

	buf.WriteString("\n")
	for _, rt := range scene.Routes {
		var attrs []string
		if rt.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", rt.Label))
		}
		if rt.Dashed {
			attrs = append(attrs, "style=dashed")
		}
		if opts.Ports {
			if port := compass(rt.Sides.From); port != "" {
				attrs = append(attrs, "tailport="+port)
			}
			if port := compass(rt.Sides.To); port != "" {
				attrs = append(attrs, "headport="+port)
			}
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", rt.From, rt.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", rt.From, rt.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(p *board.Project, n board.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayTitle())}
	if c, ok := p.Category(n.Category); ok && c.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", c.Color), "penwidth=2")
	}
	return attrs
}

func colorOr(c string) string {
	if c == "" {
		return defaultColor
	}
	return c
}

// compass maps an anchor's side to a Graphviz compass point.
func compass(a anchor.Anchor) string {
	switch a.Side() {
	case anchor.SideTop:
		return "n"
	case anchor.SideBottom:
		return "s"
	case anchor.SideLeft:
		return "w"
	case anchor.SideRight:
		return "e"
	}
	return ""
}

// RenderOverview renders DOT to SVG using Graphviz.
func RenderOverview(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
