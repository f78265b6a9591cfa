package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/pkg/testutil"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestServer() *srv {
	s := &srv{ctx: testutil.MockContext()}
	s.discordEndpoint = &testutil.MockDiscordEndpoint{}
	s.oauth2Service = &testutil.MockOAuth2Service{}
	s.redisClient = testutil.NewMockRedisClient()
	s.publisher = &testutil.MockPublisher{}
	s.loadRepos()
	s.loadLoginHandler()
	s.loadDomains()
	s.loadRouter()
	return s
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.router.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/login/discord", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Contains(t, w.Header().Get("Location"), "https://discord.com/oauth2/authorize?state=")
	require.NotEmpty(t, w.Result().Cookies())
}

func TestRouter_GuildSyncStatusNeedsAdmin(t *testing.T) {
	s := newTestServer()

	token, err := xcontext.TokenEngine(s.ctx).Generate(time.Minute, model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	call := func() map[string]any {
		req := httptest.NewRequest(http.MethodGet, "/getGuildSyncStatus", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.Handler().ServeHTTP(w, req)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	require.Equal(t, float64(100003), call()["code"])

	require.NoError(t, s.userRoleRepo.Add(s.ctx, "user1", "administrator"))
	resp := call()
	require.Equal(t, float64(0), resp["code"])
	require.Equal(t, map[string]any{"running": false, "last_report": nil}, resp["data"])
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.router.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_Logout(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.router.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == xcontext.Configs(s.ctx).Auth.AccessToken.Name {
			cleared = cookie.MaxAge < 0 && cookie.Value == ""
		}
	}
	require.True(t, cleared)
}
