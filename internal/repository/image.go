package repository

import (
	"context"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/pkg/xcontext"
)

type ImageRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	GetByID(ctx context.Context, id string) (*entity.Image, error)

	// AcquireLock is a compare-and-set on (last_start, last_start_user_id).
	// It succeeds when no lock is held, the held lock is older than ttl, or
	// the holder renews its own lock. It returns false when another user
	// still holds a fresh lock.
	AcquireLock(ctx context.Context, imageID, userID string, now time.Time, ttl time.Duration) (bool, error)

	// AdvanceState is a compare-and-set moving the image from state `from` to
	// state `to`. It returns false if the observed state differs.
	AdvanceState(ctx context.Context, imageID string, from, to entity.ImageState) (bool, error)

	SetState(ctx context.Context, imageID string, state entity.ImageState) error
}

type imageRepository struct{}

func NewImageRepository() ImageRepository {
	return &imageRepository{}
}

func (r *imageRepository) Create(ctx context.Context, image *entity.Image) error {
	return xcontext.DB(ctx).Create(image).Error
}

func (r *imageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	result := &entity.Image{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *imageRepository) AcquireLock(
	ctx context.Context, imageID, userID string, now time.Time, ttl time.Duration,
) (bool, error) {
	staleBefore := now.Add(-ttl)
	tx := xcontext.DB(ctx).Model(&entity.Image{}).
		Where("id = ?", imageID).
		Where(
			"last_start IS NULL OR last_start <= ? OR last_start_user_id = ?",
			staleBefore, userID,
		).
		Updates(map[string]any{
			"last_start":         now,
			"last_start_user_id": userID,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *imageRepository) AdvanceState(
	ctx context.Context, imageID string, from, to entity.ImageState,
) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Image{}).
		Where("id = ? AND state = ?", imageID, from).
		Update("state", to)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *imageRepository) SetState(ctx context.Context, imageID string, state entity.ImageState) error {
	return xcontext.DB(ctx).Model(&entity.Image{}).
		Where("id = ?", imageID).
		Update("state", state).Error
}
