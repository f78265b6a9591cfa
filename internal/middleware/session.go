package middleware

import (
	"context"
	"errors"

	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type SessionResponse interface {
	SessionInfo() map[string]any
}

// HandleSaveSession stores the session info of the response, a nil value deletes the key.
func HandleSaveSession() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		sessionResp, ok := xcontext.Response(ctx).(SessionResponse)
		if !ok {
			return nil, nil
		}

		sessionInfo := sessionResp.SessionInfo()
		if sessionInfo == nil {
			return nil, errors.New("no session info")
		}

		store := xcontext.SessionStore(ctx)
		req := xcontext.HTTPRequest(ctx)
		session, err := store.Get(req)
		if err != nil {
			// A cookie signed with an old secret cannot be decoded, a new session is returned.
			xcontext.Logger(ctx).Warnf("Cannot decode session: %v", err)
		}

		for k, v := range sessionInfo {
			if v == nil {
				delete(session.Values, k)
			} else {
				session.Values[k] = v
			}
		}

		if err := store.Save(req, xcontext.Writer(ctx), session); err != nil {
			return nil, err
		}

		return nil, nil
	}
}
