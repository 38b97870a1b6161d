package render

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strings"
)

const (
	fontCharWidth = 0.55
	ellipsis      = ".."
)

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// plainText strips markup from node content and collapses whitespace.
func plainText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// textWidth estimates the rendered width of s.
func textWidth(s string, fontSize float64) float64 {
	return float64(len([]rune(s))) * fontSize * fontCharWidth
}

// truncate shortens s to fit width, marking the cut.
func truncate(s string, width, fontSize float64) string {
	maxChars := max(3, int(width/(fontSize*fontCharWidth)))
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return strings.TrimRight(string(r[:maxChars-len(ellipsis)]), " ") + ellipsis
}

// wrap breaks s into at most maxLines lines that fit width. Overflow is
// truncated on the last line.
func wrap(s string, width, fontSize float64, maxLines int) []string {
	words := strings.Fields(s)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}
	maxChars := max(3, int(width/(fontSize*fontCharWidth)))

	var lines []string
	var cur string
	for i, w := range words {
		next := w
		if cur != "" {
			next = cur + " " + w
		}
		if len([]rune(next)) <= maxChars {
			cur = next
			continue
		}
		if cur != "" && len(lines) == maxLines-1 {
			rest := cur + " " + strings.Join(words[i:], " ")
			return append(lines, truncate(rest, width, fontSize))
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, truncate(cur, width, fontSize))
	}
	return lines
}
