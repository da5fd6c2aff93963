package repository

import (
	"context"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/pkg/xcontext"
)

type OwnerMemberRepository interface {
	Create(ctx context.Context, member *entity.OwnerMember) error
	GetByUserID(ctx context.Context, userID string) (*entity.OwnerMember, error)
}

type ownerMemberRepository struct{}

func NewOwnerMemberRepository() OwnerMemberRepository {
	return &ownerMemberRepository{}
}

func (r *ownerMemberRepository) Create(ctx context.Context, member *entity.OwnerMember) error {
	return xcontext.DB(ctx).Create(member).Error
}

func (r *ownerMemberRepository) GetByUserID(ctx context.Context, userID string) (*entity.OwnerMember, error) {
	result := &entity.OwnerMember{}
	if err := xcontext.DB(ctx).Take(result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}
