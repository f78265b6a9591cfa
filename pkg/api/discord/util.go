package discord

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/questx-lab/social-discord/pkg/api"
)

var ErrRateLimit = errors.New("rate limit")

// RateLimitError keeps the reset time with the precision of X-Ratelimit-Reset.
type RateLimitError struct {
	ResetAt time.Time
}

func NewRateLimitError(resetAt time.Time) error {
	return &RateLimitError{ResetAt: resetAt}
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v until %s", ErrRateLimit, e.ResetAt.Format(time.RFC3339Nano))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimit
}

func IsRateLimit(err error) (time.Time, bool) {
	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		return time.Time{}, false
	}

	return rateLimitErr.ResetAt, true
}

// parseResetAt reads X-Ratelimit-Reset, an epoch time in seconds with an optional fraction.
func parseResetAt(value string) (time.Time, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return time.Time{}, err
	}

	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*float64(time.Second))), nil
}

func toAPIError(resp *api.Response) error {
	apiErr := &APIError{Status: resp.Code}
	if body, ok := resp.Body.(api.JSON); ok {
		apiErr.Code, _ = body.GetInt("code")
		apiErr.Message, _ = body.GetString("message")
	}

	if apiErr.Message == "" {
		apiErr.Message = string(resp.RawBody)
	}

	return apiErr
}

func parseUser(obj api.JSON) (User, error) {
	id, err := obj.GetString("id")
	if err != nil {
		return User{}, err
	}

	if id == "" {
		return User{}, errors.New("empty user id")
	}

	// Optional fields.
	username, _ := obj.GetString("username")
	globalName, _ := obj.GetString("global_name")
	email, _ := obj.GetString("email")
	avatar, _ := obj.GetString("avatar")

	return User{
		ID:         id,
		Username:   username,
		GlobalName: globalName,
		Email:      email,
		Avatar:     avatar,
	}, nil
}

func parseMember(obj api.JSON) (Member, error) {
	userObj, err := obj.GetJSON("user")
	if err != nil {
		return Member{}, err
	}

	if userObj == nil {
		return Member{}, errors.New("member has no user")
	}

	user, err := parseUser(userObj)
	if err != nil {
		return Member{}, err
	}

	nick, _ := obj.GetString("nick")

	var roles []string
	if rawRoles, ok := obj["roles"].([]any); ok {
		for _, r := range rawRoles {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return Member{User: user, Nick: nick, Roles: roles}, nil
}
