package bsky

import (
	"github.com/mostlysecurity/chapterpost/lex/util"
)

// schema: app.bsky.embed.images

type EmbedImages struct {
	LexiconTypeID string               `json:"$type,const=app.bsky.embed.images"`
	Images        []*EmbedImages_Image `json:"images"`
}

type EmbedImages_Image struct {
	LexiconTypeID string `json:"$type,omitempty"`
	// alt: Alt text description of the image, for accessibility.
	Alt   string        `json:"alt"`
	Image *util.LexBlob `json:"image"`
}
