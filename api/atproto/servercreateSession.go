package atproto

import (
	"context"

	"github.com/mostlysecurity/chapterpost/xrpc"
)

// schema: com.atproto.server.createSession

type ServerCreateSession_Input struct {
	LexiconTypeID   string  `json:"$type,omitempty"`
	AuthFactorToken *string `json:"authFactorToken,omitempty"`
	// identifier: Handle or other identifier supported by the server for the authenticating user.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ServerCreateSession_Output struct {
	LexiconTypeID string  `json:"$type,omitempty"`
	AccessJwt     string  `json:"accessJwt"`
	Active        *bool   `json:"active,omitempty"`
	Did           string  `json:"did"`
	Handle        string  `json:"handle"`
	RefreshJwt    string  `json:"refreshJwt"`
	Status        *string `json:"status,omitempty"`
}

func ServerCreateSession(ctx context.Context, c *xrpc.Client, input *ServerCreateSession_Input) (*ServerCreateSession_Output, error) {
	var out ServerCreateSession_Output
	if err := c.Do(ctx, xrpc.Procedure, "application/json", "com.atproto.server.createSession", nil, input, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
