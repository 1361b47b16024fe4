// Package thumbnail renders placeholder cover images for articles that have none.
package thumbnail

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ContentType is the media type of the rendered placeholder
const ContentType = "image/svg+xml"

const (
	width         = 1200
	height        = 630
	maxTitleRunes = 60
)

var palette = []string{
	"#1f6feb", "#8957e5", "#bf3989", "#cf222e",
	"#bc4c00", "#4d2d00", "#1a7f37", "#0a3069",
}

// SVG returns a deterministic placeholder image for the given title.
// The same title always produces the same colour and initials.
func SVG(title string) []byte {
	title = strings.TrimSpace(title)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, Color(title))
	fmt.Fprintf(&b, `<text x="50%%" y="45%%" fill="#ffffff" font-family="sans-serif" font-size="160" font-weight="700" text-anchor="middle" dominant-baseline="middle">%s</text>`,
		html.EscapeString(Initials(title)))
	fmt.Fprintf(&b, `<text x="50%%" y="75%%" fill="#ffffff" fill-opacity="0.85" font-family="sans-serif" font-size="44" text-anchor="middle">%s</text>`,
		html.EscapeString(shorten(title, maxTitleRunes)))
	b.WriteString(`</svg>`)

	return []byte(b.String())
}

// Color picks the background colour for a title
func Color(title string) string {
	h := fnv.New32a()
	h.Write([]byte(title))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Initials returns up to two upper-case initials of the first words of title
func Initials(title string) string {
	var out []rune
	for _, word := range strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "#"
	}
	return string(out)
}

func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
