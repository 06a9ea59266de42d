package poster

import (
	"log/slog"
	"net/http"

	"github.com/mostlysecurity/chapterpost/embed"
)

const DefaultHost = "https://bsky.social"

// Run configuration. Built once (typically from CLI flags and environment) and not modified afterwards.
type Config struct {
	// PDS base URL, including scheme.
	Host     string
	Handle   string
	Password string

	// Sent on PDS requests and link-preview fetches.
	UserAgent string

	// BCP-47 language tags attached to every post.
	Langs []string

	// Client for PDS calls. Nil uses util.RobustHTTPClient.
	HTTPClient *http.Client
	// Client for fetching link targets and thumbnails.
	FetchClient *http.Client

	Logger *slog.Logger

	// Compose and log posts without fetching embeds or submitting.
	DryRun bool
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return embed.DefaultUserAgent
}
