package podcast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingTitle   = errors.New("missing episode title")
	ErrMissingEpisode = errors.New("missing episode number")
)

// Formats the announcement text for an episode as "Episode N: title".
// A title that already carries the "Episode N:" prefix is kept as is; a bare
// "N:" prefix is rewritten.
func EpisodeTitle(title string, episode int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrMissingTitle
	}
	if episode <= 0 {
		return "", ErrMissingEpisode
	}

	full := fmt.Sprintf("Episode %d:", episode)
	if strings.HasPrefix(title, full) {
		return title, nil
	}
	if bare := fmt.Sprintf("%d:", episode); strings.HasPrefix(title, bare) {
		return full + " " + strings.TrimSpace(title[len(bare):]), nil
	}
	return full + " " + title, nil
}
