package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "propex/pkg/domain"
	"propex/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context, as the auth middleware
// would for an authenticated request. Invalid IDs are silently ignored.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		ctx := requestcontext.WithUserID(req.Context(), parsedUserID)
		return req.WithContext(ctx)
	}
	return req
}

// WithURLParams seeds chi URL params without running a router.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
