package poster

import (
	"context"

	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"
)

// Rewrites rec to carry link as plain text after the original text, with
// facets recomputed so the appended URL becomes a link facet. The embed is
// dropped. Always derived from the original text, so applying it twice
// gives the same record. A no-op when there is no link.
func (c *Composer) degradeToPlainLink(ctx context.Context, rec *appbsky.FeedPost, text, link string) error {
	if link == "" {
		return nil
	}
	rec.Text = text + " - " + link
	rec.Embed = nil
	return c.attachFacets(ctx, rec)
}
