package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/route"
)

// ExportPadding is the margin added around the scene bounds on export.
const ExportPadding = 40.0

// DefaultPNGScale renders PNG exports at twice the canvas resolution.
const DefaultPNGScale = 2.0

const (
	defaultColor  = "#666"
	edgeColor     = "#888"
	labelColor    = "#555"
	labelBG       = "#f0f2f5"
	fontFamily    = `-apple-system, BlinkMacSystemFont, &quot;Segoe UI&quot;, Roboto, sans-serif`
	headerHeight  = 32.0
	titleFontSize = 14.0
	bodyFontSize  = 12.0
	labelFontSize = 11.0
	notesFontSize = 11.0
	legendHeight  = 28.0
	nodeInset     = 12.0
	lineHeight    = 1.4
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	notes   bool
	legend  bool
	hidden  map[string]bool
	padding float64
}

// WithNotes shows node notes in the footer.
func WithNotes(show bool) SVGOption { return func(r *svgRenderer) { r.notes = show } }

// WithLegend draws a category legend above the board.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithHidden dims the given categories in the legend.
func WithHidden(ids []string) SVGOption {
	return func(r *svgRenderer) {
		for _, id := range ids {
			r.hidden[id] = true
		}
	}
}

// WithPadding overrides [ExportPadding].
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{notes: true, hidden: make(map[string]bool), padding: ExportPadding}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ViewBox is an export crop rectangle in canvas coordinates.
type ViewBox struct {
	X, Y, W, H float64
}

// Crop returns the export rectangle for scene: its bounds grown by padding,
// with the origin clamped at zero. An empty scene yields a padding-sized box
// at the origin.
func Crop(scene route.Scene, padding float64) ViewBox {
	b := scene.Bounds()
	if b.Empty() {
		return ViewBox{W: 2 * padding, H: 2 * padding}
	}
	return ViewBox{
		X: math.Max(0, b.Min.X-padding),
		Y: math.Max(0, b.Min.Y-padding),
		W: b.Width() + 2*padding,
		H: b.Height() + 2*padding,
	}
}

// RenderSVG draws the scene: edges with arrowheads and labels, then the
// nodes of p that the scene positions.
func RenderSVG(p *board.Project, scene route.Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	vb := Crop(scene, r.padding)
	showLegend := r.legend && len(p.Categories) > 0
	if showLegend {
		vb.Y -= legendHeight
		vb.H += legendHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(vb.X), num(vb.Y), num(vb.W), num(vb.H), vb.W, vb.H)
	renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="#ffffff"/>`+"\n",
		num(vb.X), num(vb.Y), num(vb.W), num(vb.H))

	for _, rt := range scene.Routes {
		renderEdge(&buf, rt)
	}
	for _, rt := range scene.Routes {
		if rt.Label != "" {
			renderEdgeLabel(&buf, rt)
		}
	}
	for _, n := range p.Nodes {
		rect, ok := scene.Nodes[n.ID]
		if !ok {
			continue
		}
		renderNode(&buf, &r, n, rect, categoryColor(p, n.Category))
	}
	if showLegend {
		renderLegend(&buf, &r, p.Categories, vb.X+r.padding, vb.Y+legendHeight/2)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderPNG renders the scene as PNG at the given scale.
func RenderPNG(ctx context.Context, p *board.Project, scene route.Scene, scale float64, opts ...SVGOption) ([]byte, error) {
	return ToPNG(ctx, RenderSVG(p, scene, opts...), scale)
}

// RenderPDF renders the scene as PDF.
func RenderPDF(ctx context.Context, p *board.Project, scene route.Scene, opts ...SVGOption) ([]byte, error) {
	return ToPDF(ctx, RenderSVG(p, scene, opts...))
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="fb-arrowhead" markerWidth="10" markerHeight="7" refX="10" refY="3.5" orient="auto">`+
		`<polygon points="0 0, 10 3.5, 0 7" fill="%s"/></marker>`+"\n", edgeColor)
	buf.WriteString("  </defs>\n")
}

func renderEdge(buf *bytes.Buffer, rt route.Route) {
	dash := ""
	if rt.Dashed {
		dash = ` stroke-dasharray="6 4"`
	}
	fmt.Fprintf(buf, `  <path id="edge-%d" class="fb-arrow-path" d="%s" fill="none" stroke="%s" stroke-width="2"%s marker-end="url(#fb-arrowhead)"/>`+"\n",
		rt.Index, rt.Path, edgeColor, dash)
}

func renderEdgeLabel(buf *bytes.Buffer, rt route.Route) {
	mid := rt.Curve.Mid()
	w := textWidth(rt.Label, labelFontSize)
	h := labelFontSize * lineHeight
	fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="3" ry="3" fill="%s"/>`+"\n",
		num(mid.X-w/2-4), num(mid.Y-h/2-2), num(w+8), num(h+4), labelBG)
	fmt.Fprintf(buf, `  <text x="%s" y="%s" fill="%s" font-size="%s" font-family="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		num(mid.X), num(mid.Y), labelColor, num(labelFontSize), fontFamily, EscapeXML(rt.Label))
}

func renderNode(buf *bytes.Buffer, r *svgRenderer, n board.Node, rect board.Rect, color string) {
	fmt.Fprintf(buf, `  <g id="node-%s" class="fb-screen">`+"\n", EscapeXML(n.ID))
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" rx="8" ry="8" fill="#ffffff" stroke="%s" stroke-width="1.5"/>`+"\n",
		num(rect.X), num(rect.Y), num(rect.W), num(rect.H), color)
	fmt.Fprintf(buf, `    <path d="%s" fill="%s"/>`+"\n", headerPath(rect), color)

	textW := rect.W - 2*nodeInset
	fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="#ffffff" font-size="%s" font-weight="600" font-family="%s" dominant-baseline="central">%s</text>`+"\n",
		num(rect.X+nodeInset), num(rect.Y+headerHeight/2), num(titleFontSize), fontFamily,
		EscapeXML(truncate(n.DisplayTitle(), textW, titleFontSize)))

	footer := footerLines(r, n)
	footerH := float64(len(footer)) * notesFontSize * lineHeight
	bodyTop := rect.Y + headerHeight + nodeInset
	bodyH := rect.H - headerHeight - 2*nodeInset - footerH
	maxLines := int(bodyH / (bodyFontSize * lineHeight))
	for i, line := range wrap(plainText(n.Content), textW, bodyFontSize, maxLines) {
		y := bodyTop + (float64(i)+0.5)*bodyFontSize*lineHeight
		fmt.Fprintf(buf, `    <text x="%s" y="%s" fill="#333333" font-size="%s" font-family="%s" dominant-baseline="central">%s</text>`+"\n",
			num(rect.X+nodeInset), num(y), num(bodyFontSize), fontFamily, EscapeXML(line))
	}

	y := rect.Y + rect.H - nodeInset - footerH
	for _, fl := range footer {
		y += notesFontSize * lineHeight
		fmt.Fprintf(buf, `    <text class="%s" x="%s" y="%s" fill="%s" font-size="%s" font-family="%s"%s>%s</text>`+"\n",
			fl.class, num(rect.X+nodeInset), num(y-notesFontSize*lineHeight/2), fl.color, num(notesFontSize), fontFamily,
			fl.style, EscapeXML(truncate(fl.text, textW, notesFontSize)))
	}
	buf.WriteString("  </g>\n")
}

type footerLine struct {
	class, text, color, style string
}

func footerLines(r *svgRenderer, n board.Node) []footerLine {
	var out []footerLine
	if n.Label != "" {
		out = append(out, footerLine{class: "fb-screen-label", text: n.Label, color: "#333333", style: ` font-weight="600"`})
	}
	if n.Notes != "" && r.notes {
		out = append(out, footerLine{class: "fb-screen-notes", text: plainText(n.Notes), color: "#777777", style: ` font-style="italic"`})
	}
	return out
}

// headerPath is the node header band with rounded top corners.
func headerPath(rect board.Rect) string {
	const radius = 8.0
	x, y, w := rect.X, rect.Y, rect.W
	h := math.Min(headerHeight, rect.H)
	return fmt.Sprintf("M%s,%s L%s,%s Q%s,%s %s,%s L%s,%s Q%s,%s %s,%s L%s,%s Z",
		num(x), num(y+h),
		num(x), num(y+radius),
		num(x), num(y), num(x+radius), num(y),
		num(x+w-radius), num(y),
		num(x+w), num(y), num(x+w), num(y+radius),
		num(x+w), num(y+h))
}

func renderLegend(buf *bytes.Buffer, r *svgRenderer, cats []board.Category, x, y float64) {
	buf.WriteString(`  <g class="fb-legend">` + "\n")
	for _, c := range cats {
		opacity := ""
		if r.hidden[c.ID] {
			opacity = ` opacity="0.35"`
		}
		label := c.Label
		if label == "" {
			label = c.ID
		}
		color := c.Color
		if color == "" {
			color = defaultColor
		}
		fmt.Fprintf(buf, `    <g%s><circle cx="%s" cy="%s" r="5" fill="%s"/>`, opacity, num(x+5), num(y), EscapeXML(color))
		fmt.Fprintf(buf, `<text x="%s" y="%s" fill="#333333" font-size="%s" font-family="%s" dominant-baseline="central">%s</text></g>`+"\n",
			num(x+14), num(y), num(bodyFontSize), fontFamily, EscapeXML(label))
		x += 14 + textWidth(label, bodyFontSize) + 20
	}
	buf.WriteString("  </g>\n")
}

func categoryColor(p *board.Project, id string) string {
	if c, ok := p.Category(id); ok && c.Color != "" {
		return EscapeXML(c.Color)
	}
	return defaultColor
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
