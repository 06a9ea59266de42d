package syntax

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Unanchored handle grammar: dot-terminated labels followed by a top-level label starting with a letter.
// Mention detection in post text embeds it in a larger pattern.
const HandleSyntax = `([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`

var handleRegex = regexp.MustCompile(`^` + HandleSyntax + `$`)

// A syntactically valid handle, without the leading '@' used in post text.
type Handle string

func ParseHandle(raw string) (Handle, error) {
	if raw == "" {
		return "", errors.New("expected handle, got empty string")
	}
	if len(raw) > 253 {
		return "", errors.New("handle is too long (253 chars max)")
	}
	if !handleRegex.MatchString(raw) {
		return "", fmt.Errorf("invalid handle syntax: %q", raw)
	}
	return Handle(raw), nil
}

// Handles compare case-insensitively; resolution caches key on the lower-case form.
func (h Handle) Normalize() Handle {
	return Handle(strings.ToLower(string(h)))
}

func (h Handle) String() string {
	return string(h)
}
