package util

import (
	"fmt"
	"strings"

	"github.com/mostlysecurity/chapterpost/atproto/syntax"
)

type ParsedUri struct {
	Did        syntax.DID
	Collection string
	Rkey       string
}

// Splits a record AT-URI of the form at://did/collection/rkey.
func ParseAtUri(uri string) (*ParsedUri, error) {
	if !strings.HasPrefix(uri, "at://") {
		return nil, fmt.Errorf("AT uris must be prefixed with 'at://'")
	}

	trimmed := strings.TrimPrefix(uri, "at://")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("AT uris must have three parts: did, collection, rkey")
	}

	did, err := syntax.ParseDID(parts[0])
	if err != nil {
		return nil, err
	}
	if parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("AT uri has empty collection or rkey: %s", uri)
	}

	return &ParsedUri{
		Did:        did,
		Collection: parts[1],
		Rkey:       parts[2],
	}, nil
}

// Web URL for a post record on bsky.app.
func (p *ParsedUri) PostURL() string {
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", p.Did, p.Rkey)
}
