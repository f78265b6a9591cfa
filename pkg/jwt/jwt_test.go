package jwt_test

import (
	"testing"
	"time"

	"github.com/questx-lab/social-discord/pkg/jwt"
	"github.com/stretchr/testify/require"
)

type claimObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestJWT(t *testing.T) {
	engine := jwt.NewTokenEngine("secret")
	token, err := engine.Generate(time.Minute, claimObject{ID: "user-1", Name: "foo"})
	require.NoError(t, err)

	var obj claimObject
	err = engine.Verify(token, &obj)
	require.NoError(t, err)
	require.Equal(t, claimObject{ID: "user-1", Name: "foo"}, obj)
}

func TestJWTExpiration(t *testing.T) {
	engine := jwt.NewTokenEngine("secret")
	token, err := engine.Generate(-time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = engine.Verify(token, &msg)
	require.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := jwt.NewTokenEngine("secret").Generate(time.Minute, "abc")
	require.NoError(t, err)

	var msg string
	err = jwt.NewTokenEngine("another-secret").Verify(token, &msg)
	require.Error(t, err)
}
