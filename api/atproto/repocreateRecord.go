package atproto

import (
	"context"

	"github.com/mostlysecurity/chapterpost/lex/util"
	"github.com/mostlysecurity/chapterpost/xrpc"
)

// schema: com.atproto.repo.createRecord

type RepoCreateRecord_Input struct {
	LexiconTypeID string `json:"$type,omitempty"`
	// collection: The NSID of the record collection.
	Collection string `json:"collection"`
	// record: The record itself. Must contain a $type field.
	Record *util.LexiconTypeDecoder `json:"record"`
	// repo: The handle or DID of the repo (aka, current account).
	Repo string `json:"repo"`
	// rkey: The Record Key.
	Rkey *string `json:"rkey,omitempty"`
	// validate: Can be set to 'false' to skip Lexicon schema validation of record data.
	Validate *bool `json:"validate,omitempty"`
}

type RepoCreateRecord_Output struct {
	LexiconTypeID    string `json:"$type,omitempty"`
	Cid              string `json:"cid"`
	Uri              string `json:"uri"`
	ValidationStatus string `json:"validationStatus,omitempty"`
}

func RepoCreateRecord(ctx context.Context, c *xrpc.Client, input *RepoCreateRecord_Input) (*RepoCreateRecord_Output, error) {
	var out RepoCreateRecord_Output
	if err := c.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.repo.createRecord", nil, input, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
