// Package render exports board scenes as images and diagrams.
//
// # Overview
//
// A [route.Scene] holds every visible node rectangle and every routed edge.
// This package turns one into output artifacts:
//
//   - [RenderSVG]: the board as drawn, cropped to the scene bounds
//   - [RenderPNG] and [RenderPDF]: the SVG converted with rsvg-convert
//   - [ToDOT] and [RenderOverview]: a Graphviz overview that keeps each
//     edge's resolved sides as compass ports
//   - [RenderJSON]: the scene itself, for external renderers
//
// # Cropping
//
// Exports are cropped to [route.Scene.Bounds] plus [ExportPadding] on each
// side. The bounds include curve control points, so edges that bow outward
// are never clipped. The crop origin never goes below zero.
//
//	scene := s.Scene()
//	svg := render.RenderSVG(p, scene, render.WithNotes(true), render.WithLegend())
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// # External Tools
//
// PNG and PDF conversion run [RSVGConvert] from librsvg and fail with
// [ErrNoConverter] when it is missing:
//
//	brew install librsvg       # macOS
//	apt install librsvg2-bin   # Linux
//
// Graphviz rendering is linked in through go-graphviz and needs no install.
package render
