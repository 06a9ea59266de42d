package poster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"
	"github.com/mostlysecurity/chapterpost/atproto/syntax"
	"github.com/mostlysecurity/chapterpost/richtext"

	"github.com/rivo/uniseg"
	"golang.org/x/text/language"
)

const (
	// app.bsky.feed.post allows at most four images.
	MaxImages = 4

	// Post text limit enforced by the PDS, in grapheme clusters.
	MaxGraphemes = 300
)

type RecordCreator interface {
	CreateRecord(ctx context.Context, post *appbsky.FeedPost) (*RecordRef, error)
}

type EmbedBuilder interface {
	URLCard(ctx context.Context, link string) (*appbsky.EmbedExternal, error)
	Images(ctx context.Context, paths []string, alt string) (*appbsky.EmbedImages, error)
}

// What to post. Link and Images are mutually exclusive.
type Post struct {
	Text    string
	Link    string
	Images  []string
	AltText string
}

type Result struct {
	// Nil for dry runs.
	Ref    *RecordRef
	Record *appbsky.FeedPost
	// Set when the link ended up as plain text instead of a card.
	Degraded bool
}

type Composer struct {
	facets  *richtext.FacetParser
	embeds  EmbedBuilder
	creator RecordCreator
	langs   []string
	logger  *slog.Logger
	dryRun  bool

	// Clock for createdAt; replaced in tests.
	now func() time.Time
}

func NewComposer(cfg *Config, resolver richtext.HandleResolver, embeds EmbedBuilder, creator RecordCreator) (*Composer, error) {
	langs := make([]string, 0, len(cfg.Langs))
	for _, l := range cfg.Langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("invalid post language %q: %w", l, err)
		}
		langs = append(langs, tag.String())
	}
	logger := cfg.logger().With("component", "poster")
	return &Composer{
		facets:  richtext.NewFacetParser(resolver, logger),
		embeds:  embeds,
		creator: creator,
		langs:   langs,
		logger:  logger,
		dryRun:  cfg.DryRun,
		now:     time.Now,
	}, nil
}

// Builds a post record and submits it.
//
// A link card that cannot be built does not fail the post: the link is
// appended to the text instead. If the PDS rejects the record, the same
// plain-link form is submitted once more; a second rejection is returned.
func (c *Composer) Compose(ctx context.Context, p Post) (*Result, error) {
	if len(p.Images) > MaxImages {
		return nil, ErrTooManyImages
	}
	if p.Link != "" && len(p.Images) > 0 {
		return nil, ErrLinkWithImages
	}

	rec := &appbsky.FeedPost{
		Text:      p.Text,
		CreatedAt: syntax.DatetimeFromTime(c.now()).String(),
		Langs:     c.langs,
	}
	if err := c.attachFacets(ctx, rec); err != nil {
		return nil, err
	}

	res := &Result{Record: rec}

	if c.dryRun {
		c.logRecord(ctx, rec)
		c.logger.Info("dry run, not posting", "link", p.Link, "images", len(p.Images))
		return res, nil
	}

	if p.Link != "" {
		card, err := c.embeds.URLCard(ctx, p.Link)
		if err != nil {
			c.logger.Warn("link card failed, posting link as text", "link", p.Link, "err", err)
			if err := c.degradeToPlainLink(ctx, rec, p.Text, p.Link); err != nil {
				return nil, err
			}
			res.Degraded = true
		} else {
			rec.Embed = &appbsky.FeedPost_Embed{EmbedExternal: card}
		}
	}

	if len(p.Images) > 0 {
		imgs, err := c.embeds.Images(ctx, p.Images, p.AltText)
		if err != nil {
			return nil, err
		}
		rec.Embed = &appbsky.FeedPost_Embed{EmbedImages: imgs}
	}

	if n := uniseg.GraphemeClusterCount(rec.Text); n > MaxGraphemes {
		c.logger.Warn("post text exceeds length limit", "graphemes", n, "limit", MaxGraphemes)
	}

	c.logRecord(ctx, rec)
	ref, err := c.creator.CreateRecord(ctx, rec)
	if err == nil {
		res.Ref = ref
		return res, nil
	}

	var se *SubmitError
	if !errors.As(err, &se) || !se.retryable() {
		return nil, err
	}

	logArgs := []any{"status", se.StatusCode(), "err", err}
	if rl := se.Ratelimit(); rl != nil {
		logArgs = append(logArgs, "ratelimitRemaining", rl.Remaining, "ratelimitReset", rl.Reset)
	}
	c.logger.Warn("post rejected, retrying with plain link", logArgs...)
	if err := c.degradeToPlainLink(ctx, rec, p.Text, p.Link); err != nil {
		return nil, err
	}
	res.Degraded = p.Link != ""

	c.logRecord(ctx, rec)
	ref, err = c.creator.CreateRecord(ctx, rec)
	if err != nil {
		return nil, err
	}
	res.Ref = ref
	return res, nil
}

func (c *Composer) attachFacets(ctx context.Context, rec *appbsky.FeedPost) error {
	rec.Facets = nil
	if rec.Text == "" {
		return nil
	}
	facets, err := c.facets.Parse(ctx, rec.Text)
	if err != nil {
		return err
	}
	if len(facets) > 0 {
		rec.Facets = facets
	}
	return nil
}

func (c *Composer) logRecord(ctx context.Context, rec *appbsky.FeedPost) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.Info("creating post", "text", rec.Text, "facets", len(rec.Facets), "embed", rec.Embed != nil)
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		c.logger.Debug("creating post", "text", rec.Text, "err", err)
		return
	}
	c.logger.Debug("creating post", "record", json.RawMessage(b))
}
