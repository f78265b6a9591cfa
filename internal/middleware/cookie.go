package middleware

import (
	"context"
	"net/http"

	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type CookieResponse interface {
	CookieInfo(context.Context) []http.Cookie
}

func HandleSetCookie() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		cookieResp, ok := xcontext.Response(ctx).(CookieResponse)
		if ok {
			for _, cookie := range cookieResp.CookieInfo(ctx) {
				cookie := cookie
				http.SetCookie(xcontext.Writer(ctx), &cookie)
			}
		}

		return nil, nil
	}
}
