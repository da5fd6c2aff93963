package repository

import (
	"context"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/pkg/xcontext"
)

type GetListCollectionFilter struct {
	OwnerIDs []string
	Scope    PublishScope
}

type CollectionRepository interface {
	Create(ctx context.Context, collection *entity.Collection) error
	GetByID(ctx context.Context, id string) (*entity.Collection, error)
	GetList(ctx context.Context, filter GetListCollectionFilter, offset, limit int) ([]entity.Collection, error)
}

type collectionRepository struct{}

func NewCollectionRepository() CollectionRepository {
	return &collectionRepository{}
}

func (r *collectionRepository) Create(ctx context.Context, collection *entity.Collection) error {
	return xcontext.DB(ctx).Create(collection).Error
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	result := &entity.Collection{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *collectionRepository) GetList(
	ctx context.Context, filter GetListCollectionFilter, offset, limit int,
) ([]entity.Collection, error) {
	tx := xcontext.DB(ctx).Offset(offset).Limit(limit).Order("collections.id ASC")

	if len(filter.OwnerIDs) > 0 {
		tx = tx.Where("collections.owner_id IN (?)", filter.OwnerIDs)
	}

	if !filter.Scope.All {
		now := time.Now()
		published := "collections.date_publi IS NOT NULL AND collections.date_publi <= ?"
		unpublished := "(collections.date_publi IS NULL OR collections.date_publi > ?)"

		switch {
		case filter.Scope.Published && filter.Scope.UnpublishedOwnerID != "":
			tx = tx.Where(
				"("+published+") OR ("+unpublished+" AND collections.owner_id = ?)",
				now, now, filter.Scope.UnpublishedOwnerID,
			)
		case filter.Scope.Published:
			tx = tx.Where(published, now)
		case filter.Scope.Unpublished:
			tx = tx.Where(unpublished, now)
		case filter.Scope.UnpublishedOwnerID != "":
			tx = tx.Where(unpublished+" AND collections.owner_id = ?", now, filter.Scope.UnpublishedOwnerID)
		default:
			return []entity.Collection{}, nil
		}
	}

	result := []entity.Collection{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
