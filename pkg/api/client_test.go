package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_GET_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/users/42", r.URL.Path)
		require.Equal(t, "after=10&limit=2", r.URL.RawQuery)
		require.Equal(t, "Bot token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"42","user":{"name":"foo"},"roles":[{"id":"1"}]}`))
	}))
	defer server.Close()

	resp, err := NewGenerator().New(server.URL, "/users/%s", "42").
		Query(Parameter{"limit": "2", "after": "10"}).
		GET(context.Background(), Bot("token"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)

	body, ok := resp.Body.(JSON)
	require.True(t, ok)

	id, err := body.GetString("id")
	require.NoError(t, err)
	require.Equal(t, "42", id)

	name, err := body.GetString("user.name")
	require.NoError(t, err)
	require.Equal(t, "foo", name)

	roles, err := body.GetArray("roles")
	require.NoError(t, err)
	require.Len(t, roles, 1)
}

func TestClient_PUT_Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(b, &body))
		require.Equal(t, "abc", body["access_token"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := NewGenerator().New(server.URL, "/guilds/1/members/2").
		Body(JSON{"access_token": "abc"}).
		PUT(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Equal(t, JSON{}, resp.Body)
}

func TestClient_Array(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"user":{"id":"1"}},{"user":{"id":"2"}}]`))
	}))
	defer server.Close()

	resp, err := NewGenerator().New(server.URL, "/members").GET(context.Background())
	require.NoError(t, err)

	array, ok := resp.Body.(Array)
	require.True(t, ok)
	require.Len(t, array, 2)

	id, err := array[1].GetString("user.id")
	require.NoError(t, err)
	require.Equal(t, "2", id)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewGenerator().New(url, "/").GET(context.Background())
	require.Error(t, err)
}

func TestClient_PUT_Opts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.Equal(t, "joined%20guild", r.Header.Get("X-Audit-Log-Reason"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := NewGenerator().New(server.URL, "/guilds/1/members/2").
		PUT(context.Background(), Bearer("token"), AuditLogReason("joined guild"))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Equal(t, JSON{}, resp.Body)
}

func TestParameter_Encode(t *testing.T) {
	require.Equal(t, "a=1&b=x+y&c=%26", Parameter{"c": "&", "a": "1", "b": "x y"}.Encode())
}
