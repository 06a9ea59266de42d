package util

import (
	"encoding/json"

	"github.com/ipfs/go-cid"
	xerrors "golang.org/x/xerrors"
)

type LexLink cid.Cid

type jsonLink struct {
	Link string `json:"$link"`
}

// convenience helper
func (ll LexLink) String() string {
	return cid.Cid(ll).String()
}

// convenience helper
func (ll LexLink) Defined() bool {
	return cid.Cid(ll).Defined()
}

func (ll LexLink) MarshalJSON() ([]byte, error) {
	if !ll.Defined() {
		return nil, xerrors.Errorf("tried to marshal nil or undefined cid-link")
	}
	jl := jsonLink{
		Link: ll.String(),
	}
	return json.Marshal(jl)
}

func (ll *LexLink) UnmarshalJSON(raw []byte) error {
	var jl jsonLink
	if err := json.Unmarshal(raw, &jl); err != nil {
		return xerrors.Errorf("parsing cid-link JSON: %v", err)
	}

	c, err := cid.Decode(jl.Link)
	if err != nil {
		return xerrors.Errorf("parsing cid-link CID: %v", err)
	}
	*ll = LexLink(c)
	return nil
}

// Reference to an uploaded blob, as returned by com.atproto.repo.uploadBlob
// and embedded in records. Size=-1 indicates a legacy blob (string CID, no
// size), which is serialized back in the legacy form.
type LexBlob struct {
	Ref      LexLink
	MimeType string
	Size     int64
}

type LegacyBlob struct {
	Cid      string `json:"cid"`
	MimeType string `json:"mimeType"`
}

type BlobSchema struct {
	LexiconTypeID string  `json:"$type,const=blob"`
	Ref           LexLink `json:"ref"`
	MimeType      string  `json:"mimeType"`
	Size          int64   `json:"size"`
}

func (b LexBlob) MarshalJSON() ([]byte, error) {
	if b.Size < 0 {
		lb := LegacyBlob{
			Cid:      b.Ref.String(),
			MimeType: b.MimeType,
		}
		return json.Marshal(lb)
	}
	nb := BlobSchema{
		LexiconTypeID: "blob",
		Ref:           b.Ref,
		MimeType:      b.MimeType,
		Size:          b.Size,
	}
	return json.Marshal(nb)
}

func (b *LexBlob) UnmarshalJSON(raw []byte) error {
	typ, err := TypeExtract(raw)
	if err != nil {
		return xerrors.Errorf("parsing blob type: %v", err)
	}

	if typ == "blob" {
		var bs BlobSchema
		if err := json.Unmarshal(raw, &bs); err != nil {
			return xerrors.Errorf("parsing blob JSON: %v", err)
		}
		if bs.Size < 0 {
			return xerrors.Errorf("parsing blob: negative size: %d", bs.Size)
		}
		b.Ref = bs.Ref
		b.MimeType = bs.MimeType
		b.Size = bs.Size
		return nil
	}

	var legacy LegacyBlob
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return xerrors.Errorf("parsing legacy blob: %v", err)
	}
	refCid, err := cid.Decode(legacy.Cid)
	if err != nil {
		return xerrors.Errorf("parsing CID in legacy blob: %v", err)
	}
	b.Ref = LexLink(refCid)
	b.MimeType = legacy.MimeType
	b.Size = -1
	return nil
}
