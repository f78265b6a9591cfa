package middleware

import (
	"context"
	"strings"

	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/pkg/errorx"
	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type AuthVerifier struct{}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

// Middleware reads the access token from the Authorization header, or the access token cookie
// if there is no header.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := getAccessToken(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		var info model.AccessToken
		if err := xcontext.TokenEngine(ctx).Verify(token, &info); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if info.ID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	authorization := req.Header.Get("Authorization")
	if authorization != "" {
		auth, token, found := strings.Cut(authorization, " ")
		if found && auth == "Bearer" {
			return token
		}

		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
