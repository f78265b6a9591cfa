package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/authenticator"
	"github.com/questx-lab/social-discord/pkg/crypto"
	"github.com/questx-lab/social-discord/pkg/errorx"
	"github.com/questx-lab/social-discord/pkg/pubsub"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Login(context.Context, *model.LoginDiscordRequest) (*model.LoginDiscordResponse, error)
	Callback(context.Context, *model.CallbackDiscordRequest) (*model.CallbackDiscordResponse, error)
	Logout(context.Context, *model.LogoutRequest) (*model.LogoutResponse, error)
}

type authDomain struct {
	userRepo        repository.UserRepository
	userRoleRepo    repository.UserRoleRepository
	socialAuthRepo  repository.SocialAuthRepository
	oauth2Service   authenticator.IOAuth2Service
	discordEndpoint discord.IEndpoint
	publisher       pubsub.Publisher
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	userRoleRepo repository.UserRoleRepository,
	socialAuthRepo repository.SocialAuthRepository,
	oauth2Service authenticator.IOAuth2Service,
	discordEndpoint discord.IEndpoint,
	publisher pubsub.Publisher,
) AuthDomain {
	return &authDomain{
		userRepo:        userRepo,
		userRoleRepo:    userRoleRepo,
		socialAuthRepo:  socialAuthRepo,
		oauth2Service:   oauth2Service,
		discordEndpoint: discordEndpoint,
		publisher:       publisher,
	}
}

func (d *authDomain) Login(
	ctx context.Context, req *model.LoginDiscordRequest,
) (*model.LoginDiscordResponse, error) {
	state, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate random string: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginDiscordResponse{
		RedirectURL: d.oauth2Service.AuthCodeURL(state),
		State:       state,
	}, nil
}

func (d *authDomain) Callback(
	ctx context.Context, req *model.CallbackDiscordRequest,
) (*model.CallbackDiscordResponse, error) {
	if req.Error != "" {
		if req.Error == "access_denied" {
			return nil, errorx.New(errorx.AccessDenied, "You could not be authenticated")
		}

		xcontext.Logger(ctx).Warnf("Discord returns an error: %s (%s)", req.Error, req.ErrorDescription)
		return nil, errorx.New(errorx.BadRequest, "Discord returns an error: %s", req.Error)
	}

	if !crypto.EqualState(req.State, d.sessionState(ctx)) {
		return nil, errorx.New(errorx.InvalidState, "Login failed, invalid oauth2 state")
	}

	if req.Code == "" {
		return nil, errorx.New(errorx.BadRequest, "Missing authorization code")
	}

	token, err := d.oauth2Service.ExchangeCode(ctx, req.Code)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot exchange authorization code: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot exchange authorization code with Discord")
	}

	owner, err := d.oauth2Service.FetchResourceOwner(ctx, token.AccessToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot fetch resource owner: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot get Discord user")
	}

	if owner.ID == "" {
		return nil, errorx.New(errorx.Unavailable, "Discord returns an invalid user")
	}

	user, err := d.authenticateUser(ctx, owner, token)
	if err != nil {
		return nil, err
	}

	accessToken, err := xcontext.TokenEngine(ctx).Generate(
		xcontext.Configs(ctx).Auth.AccessToken.Expiration,
		model.AccessToken{
			ID:   user.ID,
			Name: user.Name,
		})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	// Joining the guild and granting roles never block the login.
	d.publishLoginEvent(ctx, model.LoginEvent{
		UserID:        user.ID,
		DiscordUserID: owner.ID,
		AccessToken:   token.AccessToken,
	})

	roles, err := d.userRoleRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get roles of user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CallbackDiscordResponse{
		User:        convertUser(user, roles, owner.ID),
		AccessToken: accessToken,
		RedirectURL: xcontext.Configs(ctx).ApiServer.LoginRedirectURL,
	}, nil
}

func (d *authDomain) Logout(ctx context.Context, req *model.LogoutRequest) (*model.LogoutResponse, error) {
	return &model.LogoutResponse{}, nil
}

func (d *authDomain) sessionState(ctx context.Context) string {
	store := xcontext.SessionStore(ctx)
	req := xcontext.HTTPRequest(ctx)
	if store == nil || req == nil {
		return ""
	}

	session, err := store.Get(req)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get session: %v", err)
		return ""
	}

	state, _ := session.Values[model.SessionStateKey].(string)
	return state
}

// authenticateUser finds the local account associated with the Discord user, or the account
// with the same email, or registers a new one. The association record is created or updated in
// the same transaction.
func (d *authDomain) authenticateUser(
	ctx context.Context, owner authenticator.OAuth2User, token *oauth2.Token,
) (*entity.User, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	plugin := d.oauth2Service.Service()
	socialAuth, err := d.socialAuthRepo.GetByProviderUserID(ctx, plugin, owner.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get social auth: %v", err)
		return nil, errorx.Unknown
	}

	var user *entity.User
	if socialAuth != nil {
		user, err = d.userRepo.GetByID(ctx, socialAuth.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user %s of social auth: %v", socialAuth.UserID, err)
			return nil, errorx.Unknown
		}

		data, err := socialAuth.Data()
		if err != nil {
			xcontext.Logger(ctx).Warnf("Invalid additional data of user %s, reset it: %v", user.ID, err)
			data = entity.SocialAuthData{}
		}

		if token.RefreshToken != "" {
			data.RefreshToken = token.RefreshToken
		}

		if err := socialAuth.SetData(data); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot encode additional data: %v", err)
			return nil, errorx.Unknown
		}

		err = d.socialAuthRepo.UpdateTokens(ctx, socialAuth.ID, token.AccessToken, socialAuth.AdditionalData)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update tokens of social auth: %v", err)
			return nil, errorx.Unknown
		}
	} else {
		user, err = d.findOrRegisterUser(ctx, owner)
		if err != nil {
			return nil, err
		}

		socialAuth = &entity.SocialAuth{
			UserID:         user.ID,
			Plugin:         plugin,
			ProviderUserID: owner.ID,
			AccessToken:    token.AccessToken,
		}

		data := entity.SocialAuthData{
			RefreshToken: token.RefreshToken,
			Data:         d.collectEndpointData(ctx, token.AccessToken),
		}
		if err := socialAuth.SetData(data); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot encode additional data: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.socialAuthRepo.Create(ctx, socialAuth); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, errorx.New(errorx.AlreadyExists,
					"This Discord account was already registered with another user")
			}

			xcontext.Logger(ctx).Errorf("Cannot create social auth: %v", err)
			return nil, errorx.Unknown
		}
	}

	if user.Status == entity.UserBlocked {
		return nil, errorx.New(errorx.PermissionDenied, "Your account is blocked")
	}

	if avatarURL := owner.AvatarURL(); avatarURL != "" && avatarURL != user.AvatarURL {
		if err := d.userRepo.UpdateByID(ctx, user.ID, &entity.User{AvatarURL: avatarURL}); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update user avatar: %v", err)
			return nil, errorx.Unknown
		}

		user.AvatarURL = avatarURL
	}

	xcontext.WithCommitDBTransaction(ctx)
	return user, nil
}

func (d *authDomain) findOrRegisterUser(ctx context.Context, owner authenticator.OAuth2User) (*entity.User, error) {
	if owner.Email != "" {
		user, err := d.userRepo.GetByEmail(ctx, owner.Email)
		if err == nil {
			return user, nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
			return nil, errorx.Unknown
		}
	}

	user := &entity.User{
		Name:      owner.Username,
		Email:     owner.Email,
		AvatarURL: owner.AvatarURL(),
		Status:    entity.UserActive,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

// collectEndpointData requests every configured endpoint ("path|name") with the user token.
// Failed endpoints are skipped.
func (d *authDomain) collectEndpointData(ctx context.Context, accessToken string) map[string]any {
	endpoints := xcontext.Configs(ctx).Discord.Endpoints
	if len(endpoints) == 0 {
		return nil
	}

	data := map[string]any{}
	for _, endpoint := range endpoints {
		path, name, found := strings.Cut(endpoint, "|")
		path, name = strings.TrimSpace(path), strings.TrimSpace(name)
		if !found || path == "" || name == "" {
			xcontext.Logger(ctx).Warnf("Invalid endpoint setting %q, expected path|name", endpoint)
			continue
		}

		resp, err := d.discordEndpoint.Request(ctx, path, accessToken)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot request endpoint %s: %v", path, err)
			continue
		}

		data[name] = resp
	}

	return data
}

func (d *authDomain) publishLoginEvent(ctx context.Context, event model.LoginEvent) {
	pack, err := pubsub.NewJSONPack(event.UserID, event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal login event: %v", err)
		return
	}

	if err := d.publisher.Publish(ctx, common.DiscordLoginTopic, pack); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish login event: %v", err)
	}
}
