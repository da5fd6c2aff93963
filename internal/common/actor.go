package common

import (
	"context"
	"errors"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Actor is the resolved capability set of a request. The zero Actor is a
// guest. OwnerID is set only for users affiliated to an owner organization.
type Actor struct {
	UserID    string
	Role      entity.GlobalRole
	OwnerID   string
	OwnerRole entity.OwnerRole
}

func (a Actor) IsGuest() bool {
	return a.UserID == ""
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == entity.RoleSuperAdmin
}

// IsOwnerReviewer reports whether the actor may review submissions on images
// of its owner organization.
func (a Actor) IsOwnerReviewer() bool {
	return a.OwnerID != ""
}

type ActorResolver struct {
	userRepo        repository.UserRepository
	ownerMemberRepo repository.OwnerMemberRepository
}

func NewActorResolver(
	userRepo repository.UserRepository,
	ownerMemberRepo repository.OwnerMemberRepository,
) *ActorResolver {
	return &ActorResolver{userRepo: userRepo, ownerMemberRepo: ownerMemberRepo}
}

// Resolve builds the Actor of the current request. An unauthenticated request
// resolves to the guest actor without error.
func (r *ActorResolver) Resolve(ctx context.Context) (Actor, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return Actor{}, nil
	}

	user, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}

	actor := Actor{UserID: user.ID, Role: user.Role}

	member, err := r.ownerMemberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, err
		}

		return actor, nil
	}

	actor.OwnerID = member.OwnerID
	actor.OwnerRole = member.Role
	return actor, nil
}
