package syntax

import (
	"fmt"
	"regexp"
)

// A DID as returned by the PDS for sessions and handle resolution.
//
// Use [ParseDID] on anything read off the network.
type DID string

var didRegex = regexp.MustCompile(`^did:[a-z]+:[a-zA-Z0-9._:%-]*[a-zA-Z0-9._-]$`)

func ParseDID(raw string) (DID, error) {
	if raw == "" {
		return "", fmt.Errorf("expected DID, got empty string")
	}
	if len(raw) > 2*1024 {
		return "", fmt.Errorf("DID is too long (2048 chars max)")
	}
	if !didRegex.MatchString(raw) {
		return "", fmt.Errorf("invalid DID syntax: %q", raw)
	}
	return DID(raw), nil
}

func (d DID) String() string {
	return string(d)
}
