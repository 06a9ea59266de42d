package embed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"

	"github.com/PuerkitoBio/purell"
)

// Builds an app.bsky.embed.external card for a link by fetching the page and reading its Open Graph tags.
//
// If the page names an og:image, the image is fetched and uploaded as the
// card thumbnail; failure of either step fails the whole card.
func (b *Builder) URLCard(ctx context.Context, link string) (*appbsky.EmbedExternal, error) {
	card := &appbsky.EmbedExternal_External{
		Uri: link,
	}

	body, err := b.fetchPage(ctx, link)
	if err != nil {
		return nil, err
	}

	og, err := parseOpenGraph(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", link, err)
	}
	card.Title = og.Title
	card.Description = og.Description

	if og.Image != "" {
		imgURL, err := resolveImageURL(link, og.Image)
		if err != nil {
			return nil, err
		}
		img, err := b.fetch(ctx, imgURL.String(), MaxImageSize)
		if err != nil {
			return nil, err
		}
		blob, err := b.upload(ctx, img, MimeTypeForPath(imgURL.Path))
		if err != nil {
			return nil, fmt.Errorf("uploading thumbnail %s: %w", imgURL, err)
		}
		card.Thumb = blob
	}

	b.Logger.Debug("built link card", "uri", link, "title", card.Title, "thumb", card.Thumb != nil)
	return &appbsky.EmbedExternal{
		External: card,
	}, nil
}

// Resolves an og:image reference against the page it was found on, then normalizes the result.
func resolveImageURL(page, ref string) (*url.URL, error) {
	base, err := url.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL %q: %w", page, err)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid og:image URL %q: %w", ref, err)
	}
	abs := base.ResolveReference(rel)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil, fmt.Errorf("unsupported og:image scheme: %q", abs.Scheme)
	}
	norm, err := url.Parse(purell.NormalizeURL(abs, purell.FlagsSafe))
	if err != nil {
		return nil, fmt.Errorf("normalizing og:image URL %q: %w", ref, err)
	}
	return norm, nil
}

// GETs a link page. Only the first MaxPageSize bytes are kept; Open Graph tags live in the head.
func (b *Builder) fetchPage(ctx context.Context, target string) ([]byte, error) {
	body, err := b.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	page, err := io.ReadAll(io.LimitReader(body, MaxPageSize))
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if int64(len(page)) == MaxPageSize {
		b.Logger.Debug("link page truncated", "uri", target, "limit", MaxPageSize)
	}
	return page, nil
}

// GETs target and returns the body. Bodies longer than limit are rejected.
func (b *Builder) fetch(ctx context.Context, target string, limit int64) ([]byte, error) {
	body, err := b.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &PayloadTooLargeError{Name: target, Size: int64(len(data)), Limit: limit}
	}
	return data, nil
}

// Issues a GET with the bot User-Agent. Non-2xx responses are a FetchError; the caller closes the body.
func (b *Builder) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
