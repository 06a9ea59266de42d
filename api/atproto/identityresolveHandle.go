package atproto

import (
	"context"

	"github.com/mostlysecurity/chapterpost/xrpc"
)

// schema: com.atproto.identity.resolveHandle

type IdentityResolveHandle_Output struct {
	LexiconTypeID string `json:"$type,omitempty"`
	Did           string `json:"did"`
}

func IdentityResolveHandle(ctx context.Context, c *xrpc.Client, handle string) (*IdentityResolveHandle_Output, error) {
	var out IdentityResolveHandle_Output

	params := map[string]any{
		"handle": handle,
	}
	if err := c.Do(ctx, xrpc.Query, "", "com.atproto.identity.resolveHandle", params, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
