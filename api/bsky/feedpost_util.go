package bsky

import (
	"encoding/json"
)

// Post records always carry their collection type, even when built by hand.
func (fp *FeedPost) MarshalJSON() ([]byte, error) {
	type alias FeedPost
	a := alias(*fp)
	a.LexiconTypeID = "app.bsky.feed.post"
	return json.Marshal(&a)
}

func (fp *FeedPost) GetEmbedExternal() (*EmbedExternal_External, bool) {
	if fp.Embed != nil && fp.Embed.EmbedExternal != nil && fp.Embed.EmbedExternal.External != nil {
		return fp.Embed.EmbedExternal.External, true
	}

	return nil, false
}

func (fp *FeedPost) GetEmbedImages() ([]*EmbedImages_Image, bool) {
	if fp.Embed != nil && fp.Embed.EmbedImages != nil {
		return fp.Embed.EmbedImages.Images, true
	}

	return nil, false
}

// Returns the post text covered by a facet's byte range, or false if the range is out of bounds.
func (fp *FeedPost) FacetText(f *RichtextFacet) (string, bool) {
	if f == nil || f.Index == nil {
		return "", false
	}
	start, end := f.Index.ByteStart, f.Index.ByteEnd
	if start < 0 || end > int64(len(fp.Text)) || start >= end {
		return "", false
	}
	return fp.Text[start:end], true
}
