package common

import (
	"context"
	"errors"

	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

var ErrNoPermission = errors.New("user role does not have permission")

type GlobalRoleVerifier struct {
	userRoleRepo repository.UserRoleRepository
}

func NewGlobalRoleVerifier(userRoleRepo repository.UserRoleRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRoleRepo: userRoleRepo}
}

// Verify passes if the request user holds at least one of the required roles.
func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return ErrNoPermission
	}

	for _, role := range requiredRoles {
		ok, err := verifier.userRoleRepo.Has(ctx, userID, role)
		if err != nil {
			return err
		}

		if ok {
			return nil
		}
	}

	return ErrNoPermission
}
