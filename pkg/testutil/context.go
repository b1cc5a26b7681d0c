package testutil

import (
	"context"
	"time"

	id "fundledger/pkg/domain"
	"fundledger/pkg/requestcontext"
)

// Ctx builds a context carrying a caller and a pinned clock, the typical state
// for a service unit test that skips the HTTP middleware chain.
func Ctx(principal id.Principal, now time.Time) context.Context {
	ctx := requestcontext.WithPrincipal(context.Background(), principal)
	return requestcontext.WithTime(ctx, now)
}

// CtxAt pins only the clock; useful for read paths that ignore the caller.
func CtxAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}
