package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questx-lab/social-discord/internal/middleware"
	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/testutil"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type whoamiResponse struct {
	UserID string `json:"user_id"`
}

func whoami(ctx context.Context, req *struct{}) (*whoamiResponse, error) {
	return &whoamiResponse{UserID: xcontext.RequestUserID(ctx)}, nil
}

func newTestRouter(ctx context.Context) *router.Router {
	r := router.New(ctx)
	r.AddCloser(middleware.Logger(), middleware.Prometheus())
	r.Before(middleware.WithStartTime())
	r.After(middleware.HandleSaveSession(), middleware.HandleSetCookie(), middleware.HandleRedirect())

	router.GET(r, "/login", func(ctx context.Context, req *model.LoginDiscordRequest) (*model.LoginDiscordResponse, error) {
		return &model.LoginDiscordResponse{RedirectURL: "https://discord.com/oauth2/authorize", State: "state"}, nil
	})
	router.GET(r, "/callback", func(ctx context.Context, req *model.CallbackDiscordRequest) (*model.CallbackDiscordResponse, error) {
		return &model.CallbackDiscordResponse{AccessToken: "token", RedirectURL: req.State}, nil
	})

	authRouter := r.Branch()
	authRouter.Before(middleware.NewAuthVerifier().Middleware())
	router.GET(authRouter, "/whoami", whoami)

	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(repository.NewUserRoleRepository()).Middleware())
	router.GET(adminRouter, "/admin", whoami)

	return r
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}

	return nil
}

func TestLoginFlowMiddlewares(t *testing.T) {
	ctx := testutil.MockContext()
	r := newTestRouter(ctx)

	// Login stores the state into the session and redirects to Discord.
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "https://discord.com/oauth2/authorize", w.Header().Get("Location"))

	sessionCookie := cookieByName(w.Result().Cookies(), "session")
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(sessionCookie)
	session, err := xcontext.SessionStore(ctx).Get(req)
	require.NoError(t, err)
	require.Equal(t, "state", session.Values[model.SessionStateKey])

	// Callback sets the access token cookie, clears the state and redirects.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/callback?state=/home", nil)
	req.AddCookie(sessionCookie)
	r.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "/home", w.Header().Get("Location"))

	tokenCookie := cookieByName(w.Result().Cookies(), "access_token")
	require.NotNil(t, tokenCookie)
	require.Equal(t, "token", tokenCookie.Value)

	newSessionCookie := cookieByName(w.Result().Cookies(), "session")
	require.NotNil(t, newSessionCookie)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(newSessionCookie)
	session, err = xcontext.SessionStore(ctx).Get(req)
	require.NoError(t, err)
	require.NotContains(t, session.Values, model.SessionStateKey)
}

func TestCallbackWithoutRedirectRendersJSON(t *testing.T) {
	ctx := testutil.MockContext()
	r := newTestRouter(ctx)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"access_token":"token"`)
}

func TestAuthVerifier(t *testing.T) {
	ctx := testutil.MockContext()
	r := newTestRouter(ctx)

	token, err := xcontext.TokenEngine(ctx).Generate(time.Minute, model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	testCases := []struct {
		name       string
		setup      func(req *http.Request)
		wantInBody string
	}{
		{
			name:       "bearer header",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			wantInBody: `"user_id":"user1"`,
		},
		{
			name:       "cookie",
			setup:      func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "access_token", Value: token}) },
			wantInBody: `"user_id":"user1"`,
		},
		{
			name:       "no token",
			setup:      func(req *http.Request) {},
			wantInBody: `"code":100005`,
		},
		{
			name:       "invalid token",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Bearer foo") },
			wantInBody: `"code":100005`,
		},
		{
			name:       "wrong scheme",
			setup:      func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) },
			wantInBody: `"code":100005`,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			r.Handler().ServeHTTP(w, req)
			require.Contains(t, w.Body.String(), tt.wantInBody)
		})
	}
}

func TestOnlyAdmin(t *testing.T) {
	ctx := testutil.MockContext()
	r := newTestRouter(ctx)

	token, err := xcontext.TokenEngine(ctx).Generate(time.Minute, model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	call := func() string {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.Handler().ServeHTTP(w, req)
		return w.Body.String()
	}

	require.Contains(t, call(), `"code":100003`)

	require.NoError(t, repository.NewUserRoleRepository().Add(ctx, "user1", "administrator"))
	require.Contains(t, call(), `"user_id":"user1"`)
}
