package xcontext

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/questx-lab/social-discord/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()

	require.NotNil(t, Logger(ctx))
	require.Equal(t, http.DefaultClient, HTTPClient(ctx))
	require.Nil(t, DB(ctx))
	require.Nil(t, TokenEngine(ctx))
	require.Empty(t, RequestUserID(ctx))
	require.NoError(t, Error(ctx))
}

func TestValues(t *testing.T) {
	client := &http.Client{}
	ctx := context.Background()
	ctx = WithConfigs(ctx, config.Configs{Env: "test"})
	ctx = WithHTTPClient(ctx, client)
	ctx = WithRequestUserID(ctx, "user-1")
	ctx = WithError(ctx, errors.New("foo"))
	ctx = WithResponse(ctx, 10)

	require.Equal(t, "test", Configs(ctx).Env)
	require.Equal(t, client, HTTPClient(ctx))
	require.Equal(t, "user-1", RequestUserID(ctx))
	require.EqualError(t, Error(ctx), "foo")
	require.Equal(t, 10, Response(ctx))
}

func TestWithoutCancel(t *testing.T) {
	parent, cancel := context.WithCancel(WithRequestUserID(context.Background(), "user-1"))
	ctx := WithoutCancel(parent)
	cancel()

	require.Error(t, parent.Err())
	require.NoError(t, ctx.Err())
	require.Nil(t, ctx.Done())
	require.Equal(t, "user-1", RequestUserID(ctx))
}
