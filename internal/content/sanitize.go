package content

import (
	"strings"

	"golang.org/x/net/html"
)

// stripMarkup removes HTML tags from provider descriptions. Book and feed
// providers routinely embed markup in synopsis fields, which would otherwise
// leak tag names into keyword inference.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}
