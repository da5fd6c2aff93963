package repository

import (
	"context"
	"fmt"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/pkg/xcontext"
	"github.com/georef-lab/backend/pkg/xredis"
)

// PublishScope is the resolved publish visibility of a listing query. The
// zero value lists nothing; visibility policy fills it according to the actor.
type PublishScope struct {
	// All lists every record regardless of publish state.
	All bool

	// Published lists published records.
	Published bool

	// Unpublished lists unpublished records of every owner.
	Unpublished bool

	// UnpublishedOwnerID additionally lists unpublished records of this owner.
	UnpublishedOwnerID string
}

type GetListOwnerFilter struct {
	IDs   []string
	Scope PublishScope
}

type OwnerRepository interface {
	Create(ctx context.Context, owner *entity.Owner) error
	GetByID(ctx context.Context, id string) (*entity.Owner, error)
	GetList(ctx context.Context, filter GetListOwnerFilter, offset, limit int) ([]entity.Owner, error)
}

type ownerRepository struct {
	redisClient xredis.Client
}

func NewOwnerRepository(redisClient xredis.Client) OwnerRepository {
	return &ownerRepository{redisClient: redisClient}
}

func (r *ownerRepository) cacheKey(id string) string {
	return fmt.Sprintf("cache:owner:%s", id)
}

func (r *ownerRepository) cache(ctx context.Context, owners ...entity.Owner) {
	if r.redisClient == nil {
		return
	}

	redisKV := map[string]any{}
	for _, record := range owners {
		redisKV[r.cacheKey(record.ID)] = record
	}

	if err := r.redisClient.MSet(ctx, redisKV); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot multiple set for owner redis: %v", err)
	}
}

func (r *ownerRepository) fromCache(ctx context.Context, id string) *entity.Owner {
	if r.redisClient == nil {
		return nil
	}

	var record entity.Owner
	if err := r.redisClient.GetObj(ctx, r.cacheKey(id), &record); err != nil {
		return nil
	}

	return &record
}

func (r *ownerRepository) Create(ctx context.Context, owner *entity.Owner) error {
	return xcontext.DB(ctx).Create(owner).Error
}

func (r *ownerRepository) GetByID(ctx context.Context, id string) (*entity.Owner, error) {
	if cached := r.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	result := &entity.Owner{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	r.cache(ctx, *result)
	return result, nil
}

func (r *ownerRepository) GetList(
	ctx context.Context, filter GetListOwnerFilter, offset, limit int,
) ([]entity.Owner, error) {
	tx := xcontext.DB(ctx).Offset(offset).Limit(limit).Order("owners.id ASC")

	if len(filter.IDs) > 0 {
		tx = tx.Where("owners.id IN (?)", filter.IDs)
	}

	if !filter.Scope.All {
		switch {
		case filter.Scope.Published && filter.Scope.UnpublishedOwnerID != "":
			tx = tx.Where("owners.is_published = ? OR owners.id = ?", true, filter.Scope.UnpublishedOwnerID)
		case filter.Scope.Published:
			tx = tx.Where("owners.is_published = ?", true)
		case filter.Scope.Unpublished:
			tx = tx.Where("owners.is_published = ?", false)
		case filter.Scope.UnpublishedOwnerID != "":
			tx = tx.Where("owners.is_published = ? AND owners.id = ?", false, filter.Scope.UnpublishedOwnerID)
		default:
			return []entity.Owner{}, nil
		}
	}

	result := []entity.Owner{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
