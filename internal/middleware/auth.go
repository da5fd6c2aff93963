package middleware

import (
	"context"
	"strings"

	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/router"
	"github.com/georef-lab/backend/pkg/xcontext"
)

const sessionAccessTokenKey = "access_token"

// WithAuthentication resolves the requesting user from the access token found
// in the Authorization header, the token cookie, or the session. A request
// without credentials stays a guest; an invalid token is rejected.
func WithAuthentication() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := extractAccessToken(ctx)
		if token == "" {
			return nil, nil
		}

		info, err := xcontext.TokenEngine(ctx).Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

// Authenticate rejects guest requests. It must run after WithAuthentication.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return nil, nil
	}
}

func extractAccessToken(ctx context.Context) string {
	r := xcontext.HTTPRequest(ctx)
	if r == nil {
		return ""
	}

	if authorization := r.Header.Get("Authorization"); strings.HasPrefix(authorization, "Bearer ") {
		return strings.TrimPrefix(authorization, "Bearer ")
	}

	cookieName := xcontext.Configs(ctx).Auth.AccessToken.Name
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if store := xcontext.SessionStore(ctx); store != nil {
		if token, ok := store.Value(r, sessionAccessTokenKey).(string); ok {
			return token
		}
	}

	return ""
}
