package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// RSVGConvert is the librsvg converter used for PNG and PDF export. It may
// be an absolute path.
var RSVGConvert = "rsvg-convert"

// ErrNoConverter is returned when RSVGConvert cannot be found.
var ErrNoConverter = errors.New("PNG and PDF export need rsvg-convert (brew install librsvg, apt install librsvg2-bin)")

// Available reports whether PNG and PDF export can run.
func Available() bool {
	_, err := exec.LookPath(RSVGConvert)
	return err == nil
}

// ToPNG rasterizes svg. scale multiplies the SVG's pixel size; values <= 0
// use DefaultPNGScale.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = DefaultPNGScale
	}
	return convertSVG(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

// ToPDF converts svg to a single-page PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

func convertSVG(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(RSVGConvert)
	if err != nil {
		return nil, ErrNoConverter
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s to %s: %w: %s", RSVGConvert, format, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
