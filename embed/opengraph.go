package embed

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

type openGraph struct {
	Title       string
	Description string
	Image       string
}

// Scans an HTML document for og:title, og:description, and og:image meta
// tags. The first occurrence of each wins; missing ones stay empty.
func parseOpenGraph(r io.Reader) (*openGraph, error) {
	og := &openGraph{}
	seen := map[string]bool{}
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return og, nil
			}
			return og, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var prop, content string
			var hasContent bool
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "property":
					prop = strings.ToLower(strings.TrimSpace(string(val)))
				case "content":
					content = string(val)
					hasContent = true
				}
				if !more {
					break
				}
			}
			if !hasContent || seen[prop] {
				continue
			}
			switch prop {
			case "og:title":
				og.Title = content
			case "og:description":
				og.Description = content
			case "og:image":
				og.Image = strings.TrimSpace(content)
			default:
				continue
			}
			seen[prop] = true
		}
	}
}
