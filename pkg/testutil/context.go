package testutil

import (
	"context"
	"net/http"

	id "heirloom/pkg/domain"
	"heirloom/pkg/requestcontext"
)

// WithActor adds an actor ID to the request context. This simulates what
// the auth middleware does for authenticated requests. An invalid UUID is
// silently ignored.
func WithActor(req *http.Request, actorID string) *http.Request {
	if parsed, err := id.ParseUserID(actorID); err == nil {
		return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
