package richtext

import (
	"regexp"

	"github.com/mostlysecurity/chapterpost/atproto/syntax"
)

type SpanKind int

const (
	SpanMention SpanKind = iota
	SpanLink
)

func (k SpanKind) String() string {
	switch k {
	case SpanMention:
		return "mention"
	case SpanLink:
		return "link"
	default:
		return "unknown"
	}
}

// A detected region of post text. Start is inclusive and End exclusive, both counted in bytes.
//
// Value is the handle (without the leading '@') for mentions, or the full URL for links.
type TextSpan struct {
	Start int
	End   int
	Kind  SpanKind
	Value string
}

// Both patterns consume one leading boundary character (or match at start of
// text); the span itself is submatch 1, so the boundary is never part of it.
var (
	mentionRegex = regexp.MustCompile(`(?:^|\W)(@` + syntax.HandleSyntax + `)`)

	// naive URL matching; the final character class keeps trailing sentence punctuation out of the link
	urlRegex = regexp.MustCompile(`(?:^|\W)(https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*[-a-zA-Z0-9@%_+~#/=])?)`)
)

// Finds @handle mentions. The span covers the '@' and the handle.
func ParseMentions(text string) []TextSpan {
	var spans []TextSpan
	for _, m := range mentionRegex.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		spans = append(spans, TextSpan{
			Start: start,
			End:   end,
			Kind:  SpanMention,
			Value: text[start+1 : end],
		})
	}
	return spans
}

// Finds http and https URLs.
func ParseURLs(text string) []TextSpan {
	var spans []TextSpan
	for _, m := range urlRegex.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		spans = append(spans, TextSpan{
			Start: start,
			End:   end,
			Kind:  SpanLink,
			Value: text[start:end],
		})
	}
	return spans
}
