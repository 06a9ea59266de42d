package richtext

import (
	"context"
	"errors"
	"log/slog"

	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"
	"github.com/mostlysecurity/chapterpost/atproto/syntax"
)

type FacetParser struct {
	Resolver HandleResolver
	Logger   *slog.Logger
}

func NewFacetParser(resolver HandleResolver, logger *slog.Logger) *FacetParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &FacetParser{
		Resolver: resolver,
		Logger:   logger.With("component", "richtext"),
	}
}

// Shorthand for NewFacetParser(resolver, nil).Parse(ctx, text).
func ParseFacets(ctx context.Context, resolver HandleResolver, text string) ([]*appbsky.RichtextFacet, error) {
	return NewFacetParser(resolver, nil).Parse(ctx, text)
}

// Parse returns mention facets followed by link facets.
//
// Mentions whose handle does not resolve are dropped and left as plain text.
// Any other resolution failure aborts parsing.
func (p *FacetParser) Parse(ctx context.Context, text string) ([]*appbsky.RichtextFacet, error) {
	var facets []*appbsky.RichtextFacet

	for _, span := range ParseMentions(text) {
		did, err := p.resolve(ctx, span.Value)
		if errors.Is(err, ErrUnresolvedHandle) {
			p.Logger.Debug("skipping unresolved mention", "handle", span.Value, "err", err)
			continue
		} else if err != nil {
			return nil, err
		}
		facets = append(facets, spanFacet(span, &appbsky.RichtextFacet_Features_Elem{
			RichtextFacet_Mention: &appbsky.RichtextFacet_Mention{Did: did.String()},
		}))
	}

	for _, span := range ParseURLs(text) {
		facets = append(facets, spanFacet(span, &appbsky.RichtextFacet_Features_Elem{
			// NOTE: URI ("I") not URL ("L")
			RichtextFacet_Link: &appbsky.RichtextFacet_Link{Uri: span.Value},
		}))
	}

	return facets, nil
}

func (p *FacetParser) resolve(ctx context.Context, raw string) (syntax.DID, error) {
	handle, err := syntax.ParseHandle(raw)
	if err != nil {
		// the mention regex admits handles longer than the 253 char limit
		return "", errors.Join(ErrUnresolvedHandle, err)
	}
	if p.Resolver == nil {
		return "", ErrUnresolvedHandle
	}
	return p.Resolver.ResolveHandle(ctx, handle)
}

func spanFacet(span TextSpan, feat *appbsky.RichtextFacet_Features_Elem) *appbsky.RichtextFacet {
	return &appbsky.RichtextFacet{
		Index: &appbsky.RichtextFacet_ByteSlice{
			ByteStart: int64(span.Start),
			ByteEnd:   int64(span.End),
		},
		Features: []*appbsky.RichtextFacet_Features_Elem{feat},
	}
}
