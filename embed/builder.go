package embed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	lexutil "github.com/mostlysecurity/chapterpost/lex/util"
	"github.com/mostlysecurity/chapterpost/util"
)

const (
	// Per-image limit from the app.bsky.embed.images lexicon. Also applied to link card thumbnails.
	MaxImageSize = 1_000_000

	// Upper bound on how much of a linked page is read looking for meta tags.
	MaxPageSize = 4 << 20

	DefaultUserAgent = "MostlySecurityBot/1.0 (https://mostlysecurity.com/; podcast@mostlysecurity.com)"
)

type BlobUploader interface {
	UploadBlob(ctx context.Context, r io.Reader, mimeType string) (*lexutil.LexBlob, error)
}

// Builds post embeds: external link cards and image sets. Network calls are made one at a time, in order.
type Builder struct {
	// Used for fetching link targets and thumbnails (not for PDS calls).
	HTTPClient *http.Client
	Uploader   BlobUploader
	UserAgent  string
	Logger     *slog.Logger
}

func NewBuilder(client *http.Client, uploader BlobUploader, userAgent string, logger *slog.Logger) *Builder {
	if client == nil {
		client = util.FetchHTTPClient(true)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		HTTPClient: client,
		Uploader:   uploader,
		UserAgent:  userAgent,
		Logger:     logger.With("component", "embed"),
	}
}

func (b *Builder) upload(ctx context.Context, data []byte, mimeType string) (*lexutil.LexBlob, error) {
	if b.Uploader == nil {
		return nil, errors.New("no blob uploader configured")
	}
	return b.Uploader.UploadBlob(ctx, bytes.NewReader(data), mimeType)
}
