package atproto

import (
	"context"
	"io"

	"github.com/mostlysecurity/chapterpost/lex/util"
	"github.com/mostlysecurity/chapterpost/xrpc"
)

// schema: com.atproto.repo.uploadBlob

type RepoUploadBlob_Output struct {
	LexiconTypeID string        `json:"$type,omitempty"`
	Blob          *util.LexBlob `json:"blob"`
}

// RepoUploadBlob uploads a binary body. mimeType is sent as the request Content-Type; an empty value falls back to "*/*".
func RepoUploadBlob(ctx context.Context, c *xrpc.Client, input io.Reader, mimeType string) (*RepoUploadBlob_Output, error) {
	if mimeType == "" {
		mimeType = "*/*"
	}
	var out RepoUploadBlob_Output
	if err := c.Do(ctx, xrpc.Procedure, mimeType, "com.atproto.repo.uploadBlob", nil, input, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
