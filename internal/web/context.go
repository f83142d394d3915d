package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/pathfinder/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for upload logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // rewritten by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
