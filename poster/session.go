package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	comatproto "github.com/mostlysecurity/chapterpost/api/atproto"
	appbsky "github.com/mostlysecurity/chapterpost/api/bsky"
	"github.com/mostlysecurity/chapterpost/atproto/syntax"
	"github.com/mostlysecurity/chapterpost/lex/util"
	"github.com/mostlysecurity/chapterpost/richtext"
	"github.com/mostlysecurity/chapterpost/xrpc"
)

const PostCollection = "app.bsky.feed.post"

const (
	handleCacheSize = 1000
	handleCacheTTL  = time.Hour
)

// Authenticated connection to the account's PDS. Created once per run and
// not refreshed; safe to reuse for sequential posts.
type Session struct {
	DID    syntax.DID
	Handle string

	client   *xrpc.Client
	resolver *richtext.CachingResolver
	logger   *slog.Logger
}

type RecordRef struct {
	Uri string
	Cid string
}

// Logs in with com.atproto.server.createSession. Any failure is an *AuthError.
func Login(ctx context.Context, cfg *Config) (*Session, error) {
	logger := cfg.logger()
	ua := cfg.userAgent()
	client := &xrpc.Client{
		Client:    cfg.HTTPClient,
		Host:      cfg.Host,
		UserAgent: &ua,
	}

	authErr := func(err error) error {
		return &AuthError{Host: cfg.Host, Handle: cfg.Handle, Err: err}
	}

	if cfg.Handle == "" || cfg.Password == "" {
		return nil, authErr(errors.New("need handle and password"))
	}

	out, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: cfg.Handle,
		Password:   cfg.Password,
	})
	if err != nil {
		return nil, authErr(err)
	}
	if out.Active != nil && !*out.Active {
		status := ""
		if out.Status != nil {
			status = *out.Status
		}
		return nil, authErr(fmt.Errorf("account is not active: %s", status))
	}
	did, err := syntax.ParseDID(out.Did)
	if err != nil {
		return nil, authErr(fmt.Errorf("session returned invalid DID: %w", err))
	}

	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  out.AccessJwt,
		RefreshJwt: out.RefreshJwt,
		Handle:     out.Handle,
		Did:        out.Did,
	}
	logger.Info("logged in", "did", did, "handle", out.Handle, "host", cfg.Host)

	return &Session{
		DID:      did,
		Handle:   out.Handle,
		client:   client,
		resolver: richtext.NewCachingResolver(&richtext.XRPCResolver{Client: client}, handleCacheSize, handleCacheTTL),
		logger:   logger,
	}, nil
}

// Resolves handles against the configured host without logging in.
func AnonymousResolver(cfg *Config) *richtext.CachingResolver {
	ua := cfg.userAgent()
	inner := &richtext.XRPCResolver{Client: &xrpc.Client{
		Client:    cfg.HTTPClient,
		Host:      cfg.Host,
		UserAgent: &ua,
	}}
	return richtext.NewCachingResolver(inner, handleCacheSize, handleCacheTTL)
}

func (s *Session) ResolveHandle(ctx context.Context, handle syntax.Handle) (syntax.DID, error) {
	return s.resolver.ResolveHandle(ctx, handle)
}

func (s *Session) UploadBlob(ctx context.Context, r io.Reader, mimeType string) (*util.LexBlob, error) {
	out, err := comatproto.RepoUploadBlob(ctx, s.client, r, mimeType)
	if err != nil {
		return nil, err
	}
	if out.Blob == nil {
		return nil, errors.New("uploadBlob response missing blob")
	}
	return out.Blob, nil
}

// Creates the post in the session account's repo. Any failure is a *SubmitError.
func (s *Session) CreateRecord(ctx context.Context, post *appbsky.FeedPost) (*RecordRef, error) {
	resp, err := comatproto.RepoCreateRecord(ctx, s.client, &comatproto.RepoCreateRecord_Input{
		Collection: PostCollection,
		Repo:       s.DID.String(),
		Record:     &util.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		return nil, &SubmitError{Err: err}
	}
	s.logger.Debug("created record", "uri", resp.Uri, "cid", resp.Cid)
	return &RecordRef{Uri: resp.Uri, Cid: resp.Cid}, nil
}
