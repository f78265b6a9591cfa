package middleware

import (
	"context"
	"net/http"

	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type RedirectResponse interface {
	RedirectInfo() (int, string)
}

func HandleRedirect() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		redirectResp, ok := xcontext.Response(ctx).(RedirectResponse)
		if !ok {
			return nil, nil
		}

		code, uri := redirectResp.RedirectInfo()
		if code == 0 {
			return nil, nil
		}

		http.Redirect(xcontext.Writer(ctx), xcontext.HTTPRequest(ctx), uri, code)

		// After rendering redirect response, do not render another response to client.
		return xcontext.WithResponse(ctx, nil), nil
	}
}
