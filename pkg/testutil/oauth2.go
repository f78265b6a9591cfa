package testutil

import (
	"context"
	"errors"

	"github.com/questx-lab/social-discord/pkg/authenticator"
	"golang.org/x/oauth2"
)

type MockOAuth2Service struct {
	ServiceFunc              func() string
	AuthCodeURLFunc          func(state string) string
	ExchangeCodeFunc         func(ctx context.Context, code string) (*oauth2.Token, error)
	ExchangeRefreshTokenFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchResourceOwnerFunc   func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error)
}

func (m *MockOAuth2Service) Service() string {
	if m.ServiceFunc != nil {
		return m.ServiceFunc()
	}

	return authenticator.DiscordService
}

func (m *MockOAuth2Service) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}

	return "https://discord.com/oauth2/authorize?state=" + state
}

func (m *MockOAuth2Service) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}

	return nil, errors.New("not implemented")
}

func (m *MockOAuth2Service) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if m.ExchangeRefreshTokenFunc != nil {
		return m.ExchangeRefreshTokenFunc(ctx, refreshToken)
	}

	return nil, errors.New("not implemented")
}

func (m *MockOAuth2Service) FetchResourceOwner(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
	if m.FetchResourceOwnerFunc != nil {
		return m.FetchResourceOwnerFunc(ctx, accessToken)
	}

	return authenticator.OAuth2User{}, errors.New("not implemented")
}
