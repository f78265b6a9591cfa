package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/pkg/api"
)

const apiURL = "https://discord.com/api/v10"
const userAgent = "DiscordBot (https://github.com/questx-lab/social-discord, 1.0)"

const (
	listGuildMembersResource = "list_guild_members"
	addGuildMemberResource   = "add_guild_member"
	getGuildMemberResource   = "get_guild_member"
)

type Endpoint struct {
	BotToken string

	apiURL            string
	apiGenerator      api.Generator
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) *Endpoint {
	return &Endpoint{
		BotToken:          cfg.BotToken,
		apiURL:            apiURL,
		apiGenerator:      api.NewGenerator(),
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}
}

// WithAPIGenerator replaces the HTTP client generator, e.g. with api.MockAPIGenerator.
func (e *Endpoint) WithAPIGenerator(generator api.Generator) *Endpoint {
	e.apiGenerator = generator
	return e
}

func (e *Endpoint) GetMe(ctx context.Context, userToken string) (User, error) {
	resp, err := e.apiGenerator.New(e.apiURL, "/users/@me").
		Header("User-Agent", userAgent).
		GET(ctx, api.Bearer(userToken))
	if err != nil {
		return User{}, err
	}

	if !resp.IsSuccess() {
		return User{}, toAPIError(resp)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return User{}, errors.New("invalid response")
	}

	return parseUser(body)
}

func (e *Endpoint) ListGuildMembers(
	ctx context.Context, guildID string, limit int, after string,
) ([]Member, error) {
	if err := e.checkLimitingResource(listGuildMembersResource, guildID); err != nil {
		return nil, err
	}

	query := api.Parameter{"limit": strconv.Itoa(limit)}
	if after != "" {
		query["after"] = after
	}

	resp, err := e.apiGenerator.New(e.apiURL, "/guilds/%s/members", guildID).
		Header("User-Agent", userAgent).
		Query(query).
		GET(ctx, api.Bot(e.BotToken))
	if err != nil {
		return nil, err
	}

	if err := e.checkTooManyRequest(resp, listGuildMembersResource, guildID); err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, toAPIError(resp)
	}

	array, ok := resp.Body.(api.Array)
	if !ok {
		// An empty list is decoded as JSON{} when the body has no content.
		if body, ok := resp.Body.(api.JSON); ok && len(body) == 0 {
			return nil, nil
		}
		return nil, errors.New("invalid response")
	}

	members := make([]Member, 0, len(array))
	for _, obj := range array {
		member, err := parseMember(obj)
		if err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, nil
}

func (e *Endpoint) GetGuildMember(ctx context.Context, guildID, userID string) (Member, bool, error) {
	if err := e.checkLimitingResource(getGuildMemberResource, guildID); err != nil {
		return Member{}, false, err
	}

	resp, err := e.apiGenerator.New(e.apiURL, "/guilds/%s/members/%s", guildID, userID).
		Header("User-Agent", userAgent).
		GET(ctx, api.Bot(e.BotToken))
	if err != nil {
		return Member{}, false, err
	}

	if err := e.checkTooManyRequest(resp, getGuildMemberResource, guildID); err != nil {
		return Member{}, false, err
	}

	if resp.Code == http.StatusNotFound {
		return Member{}, false, nil
	}

	if !resp.IsSuccess() {
		return Member{}, false, toAPIError(resp)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return Member{}, false, errors.New("invalid response")
	}

	member, err := parseMember(body)
	if err != nil {
		return Member{}, false, err
	}

	return member, true, nil
}

func (e *Endpoint) AddGuildMember(ctx context.Context, guildID, userID, userToken string) (bool, error) {
	if err := e.checkLimitingResource(addGuildMemberResource, guildID); err != nil {
		return false, err
	}

	resp, err := e.apiGenerator.New(e.apiURL, "/guilds/%s/members/%s", guildID, userID).
		Header("User-Agent", userAgent).
		Body(api.JSON{"access_token": userToken}).
		PUT(ctx, api.Bot(e.BotToken), api.AuditLogReason("joined via social login"))
	if err != nil {
		return false, err
	}

	if err := e.checkTooManyRequest(resp, addGuildMemberResource, guildID); err != nil {
		return false, err
	}

	switch resp.Code {
	case http.StatusCreated:
		return true, nil
	case http.StatusNoContent:
		return false, nil
	}

	if !resp.IsSuccess() {
		return false, toAPIError(resp)
	}

	return true, nil
}

func (e *Endpoint) GetGatewayBot(ctx context.Context) error {
	resp, err := e.apiGenerator.New(e.apiURL, "/gateway/bot").
		Header("User-Agent", userAgent).
		GET(ctx, api.Bot(e.BotToken))
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		return toAPIError(resp)
	}

	return nil
}

func (e *Endpoint) Request(ctx context.Context, path, userToken string) (any, error) {
	resp, err := e.apiGenerator.New(e.apiURL, "%s", path).
		Header("User-Agent", userAgent).
		GET(ctx, api.Bearer(userToken))
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, toAPIError(resp)
	}

	return resp.Body, nil
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return NewRateLimitError(resetAt)
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) checkTooManyRequest(resp *api.Response, resource, identifier string) error {
	if resp.Code == http.StatusTooManyRequests {
		resetAt, err := parseResetAt(resp.Header.Get("X-Ratelimit-Reset"))
		if err != nil {
			return err
		}

		resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
		resourceLimiter.Store(identifier, resetAt)
		return NewRateLimitError(resetAt)
	}

	return nil
}
