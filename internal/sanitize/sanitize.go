// Package sanitize reduces user-submitted markup to plain text.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

const maxPasses = 16

// PlainText strips every tag from s and returns the remaining text with
// entities decoded. Contents of script and style elements are dropped.
//
// Decoding can turn escaped markup into real markup, so the text is stripped
// again until it no longer changes. The result is therefore a fixed point:
// PlainText(PlainText(s)) == PlainText(s).
func PlainText(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := strip(s)
		if next == s {
			return s
		}
		s = next
	}
	// escaping nested this deep is never legitimate text
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// strip runs a single tokenizer pass over s
func strip(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				hidden++
			case "br":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if hidden > 0 {
					hidden--
				}
			case "p", "div", "li":
				b.WriteByte('\n')
			}
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Line collapses all whitespace runs in a single-line field such as a name
func Line(s string) string {
	return strings.Join(strings.Fields(PlainText(s)), " ")
}
