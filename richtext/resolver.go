package richtext

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	comatproto "github.com/mostlysecurity/chapterpost/api/atproto"
	"github.com/mostlysecurity/chapterpost/atproto/syntax"
	"github.com/mostlysecurity/chapterpost/xrpc"
)

// Returned (possibly wrapped) when the identity service reports a handle as unknown. Mentions of such handles stay plain text.
var ErrUnresolvedHandle = errors.New("handle could not be resolved")

type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle syntax.Handle) (syntax.DID, error)
}

// Resolves handles with com.atproto.identity.resolveHandle against a PDS or AppView.
type XRPCResolver struct {
	Client *xrpc.Client
}

func (r *XRPCResolver) ResolveHandle(ctx context.Context, handle syntax.Handle) (syntax.DID, error) {
	out, err := comatproto.IdentityResolveHandle(ctx, r.Client, handle.String())
	if err != nil {
		if xrpc.IsStatus(err, http.StatusBadRequest) {
			return "", fmt.Errorf("%w: %s: %w", ErrUnresolvedHandle, handle, err)
		}
		return "", fmt.Errorf("resolving handle %s: %w", handle, err)
	}
	did, err := syntax.ParseDID(out.Did)
	if err != nil {
		return "", fmt.Errorf("resolveHandle returned invalid DID for %s: %w", handle, err)
	}
	return did, nil
}
