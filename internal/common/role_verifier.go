package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// OwnerRoleVerifier checks that the requesting user may act on behalf of an
// owner organization. Super admins pass every check.
type OwnerRoleVerifier struct {
	ownerMemberRepo repository.OwnerMemberRepository
	userRepo        repository.UserRepository
}

func NewOwnerRoleVerifier(
	ownerMemberRepo repository.OwnerMemberRepository,
	userRepo repository.UserRepository,
) *OwnerRoleVerifier {
	return &OwnerRoleVerifier{ownerMemberRepo: ownerMemberRepo, userRepo: userRepo}
}

func (verifier *OwnerRoleVerifier) Verify(
	ctx context.Context,
	ownerID string,
	requiredRoles ...entity.OwnerRole,
) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if u.Role == entity.RoleSuperAdmin {
		return nil
	}

	member, err := verifier.ownerMemberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user does not belong to any owner")
		}

		xcontext.Logger(ctx).Errorf("Unable to get owner member: %v", err)
		return err
	}

	if member.OwnerID != ownerID {
		return errors.New("user belongs to another owner")
	}

	if !slices.Contains(requiredRoles, member.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}
