package bsky

import (
	"github.com/mostlysecurity/chapterpost/lex/util"
)

// schema: app.bsky.embed.external

// A representation of some externally linked content (eg, a URL and 'card'), embedded in a Bluesky record (eg, a post).
type EmbedExternal struct {
	LexiconTypeID string                  `json:"$type,const=app.bsky.embed.external"`
	External      *EmbedExternal_External `json:"external"`
}

type EmbedExternal_External struct {
	LexiconTypeID string        `json:"$type,omitempty"`
	Description   string        `json:"description"`
	Thumb         *util.LexBlob `json:"thumb,omitempty"`
	Title         string        `json:"title"`
	Uri           string        `json:"uri"`
}
