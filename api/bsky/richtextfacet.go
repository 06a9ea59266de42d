package bsky

import (
	"encoding/json"
	"fmt"

	"github.com/mostlysecurity/chapterpost/lex/util"
)

// schema: app.bsky.richtext.facet

// Annotation of a sub-string within rich text.
type RichtextFacet struct {
	LexiconTypeID string                          `json:"$type,omitempty"`
	Features      []*RichtextFacet_Features_Elem `json:"features"`
	Index         *RichtextFacet_ByteSlice       `json:"index"`
}

// Specifies the sub-string range a facet feature applies to. Start index is inclusive, end index is exclusive. Indices are zero-indexed, counting bytes of the UTF-8 encoded text.
type RichtextFacet_ByteSlice struct {
	LexiconTypeID string `json:"$type,omitempty"`
	ByteEnd       int64  `json:"byteEnd"`
	ByteStart     int64  `json:"byteStart"`
}

type RichtextFacet_Features_Elem struct {
	RichtextFacet_Mention *RichtextFacet_Mention
	RichtextFacet_Link    *RichtextFacet_Link
}

func (t *RichtextFacet_Features_Elem) MarshalJSON() ([]byte, error) {
	if t.RichtextFacet_Mention != nil {
		t.RichtextFacet_Mention.LexiconTypeID = "app.bsky.richtext.facet#mention"
		return json.Marshal(t.RichtextFacet_Mention)
	}
	if t.RichtextFacet_Link != nil {
		t.RichtextFacet_Link.LexiconTypeID = "app.bsky.richtext.facet#link"
		return json.Marshal(t.RichtextFacet_Link)
	}
	return nil, fmt.Errorf("cannot marshal empty enum")
}

func (t *RichtextFacet_Features_Elem) UnmarshalJSON(b []byte) error {
	typ, err := util.TypeExtract(b)
	if err != nil {
		return err
	}

	switch typ {
	case "app.bsky.richtext.facet#mention":
		t.RichtextFacet_Mention = new(RichtextFacet_Mention)
		return json.Unmarshal(b, t.RichtextFacet_Mention)
	case "app.bsky.richtext.facet#link":
		t.RichtextFacet_Link = new(RichtextFacet_Link)
		return json.Unmarshal(b, t.RichtextFacet_Link)

	default:
		return nil
	}
}

// Facet feature for a URL. The text URL may have been simplified or truncated, but the facet reference should be a complete URL.
type RichtextFacet_Link struct {
	LexiconTypeID string `json:"$type,const=app.bsky.richtext.facet#link"`
	Uri           string `json:"uri"`
}

// Facet feature for mention of another account. The text is usually a handle, including a '@' prefix, but the facet reference is a DID.
type RichtextFacet_Mention struct {
	LexiconTypeID string `json:"$type,const=app.bsky.richtext.facet#mention"`
	Did           string `json:"did"`
}
