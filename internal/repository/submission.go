package repository

import (
	"context"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/pkg/xcontext"
)

// PublicSubmissionStates are the states visible to every actor, including
// guests.
var PublicSubmissionStates = []entity.SubmissionState{
	entity.SubmissionValidated,
	entity.SubmissionAccepted,
}

// SubmissionVisibility restricts a listing to the records an actor may see: a
// submission is listable when its state is public, when it is self-authored,
// or when its image belongs to the actor's owner scope. A nil visibility means
// no restriction.
type SubmissionVisibility struct {
	SelfUserID   string
	OwnerScopeID string
}

type SubmissionFilter struct {
	Kind         entity.SubmissionKind
	ImageID      string
	UserID       string
	States       []entity.SubmissionState
	OwnerID      string
	CollectionID string

	Visibility *SubmissionVisibility
}

// RankingFilter scopes contribution counting. Zero time bounds are unbounded.
type RankingFilter struct {
	CollectionID string
	OwnerID      string
	DateMin      time.Time
	DateMax      time.Time
}

type UserCount struct {
	UserID string
	N      int
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	GetByID(ctx context.Context, id int64) (*entity.Submission, error)
	GetList(ctx context.Context, filter SubmissionFilter, offset, limit int) ([]entity.Submission, error)

	// GetPending returns the non-terminal submission of a kind on an image,
	// optionally restricted to one author. There is at most one by invariant.
	GetPending(ctx context.Context, kind entity.SubmissionKind, imageID, userID string) (*entity.Submission, error)

	// GetCurrentGeolocation returns the most recent validated geolocation of
	// an image, the record an improve chain supersedes.
	GetCurrentGeolocation(ctx context.Context, imageID string) (*entity.Submission, error)

	// UpdateReviewByID is a compare-and-set: it applies the review fields only
	// if the record is still in state `from`, and reports whether it did.
	UpdateReviewByID(ctx context.Context, id int64, from entity.SubmissionState, data *entity.Submission) (bool, error)

	// UpdateStateByID is a compare-and-set on the state column alone.
	UpdateStateByID(ctx context.Context, id int64, from, to entity.SubmissionState) (bool, error)

	// CountByUserForKind counts, per user, submissions of one kind in one
	// state within the ranking scope.
	CountByUserForKind(ctx context.Context, kind entity.SubmissionKind, state entity.SubmissionState, filter RankingFilter) ([]UserCount, error)
}

type submissionRepository struct{}

func NewSubmissionRepository() SubmissionRepository {
	return &submissionRepository{}
}

func (r *submissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	return xcontext.DB(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	result := &entity.Submission{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *submissionRepository) GetList(
	ctx context.Context, filter SubmissionFilter, offset, limit int,
) ([]entity.Submission, error) {
	tx := xcontext.DB(ctx).
		Joins("join images on images.id = submissions.image_id").
		Preload("Image").
		Offset(offset).
		Limit(limit).
		Order("submissions.id DESC")

	if filter.Kind != "" {
		tx = tx.Where("submissions.kind = ?", filter.Kind)
	}

	if filter.ImageID != "" {
		tx = tx.Where("submissions.image_id = ?", filter.ImageID)
	}

	if filter.UserID != "" {
		tx = tx.Where("submissions.user_id = ?", filter.UserID)
	}

	if len(filter.States) > 0 {
		tx = tx.Where("submissions.state IN (?)", filter.States)
	}

	if filter.OwnerID != "" {
		tx = tx.Where("images.owner_id = ?", filter.OwnerID)
	}

	if filter.CollectionID != "" {
		tx = tx.Where("images.collection_id = ?", filter.CollectionID)
	}

	if v := filter.Visibility; v != nil {
		switch {
		case v.SelfUserID != "" && v.OwnerScopeID != "":
			tx = tx.Where(
				"submissions.state IN (?) OR submissions.user_id = ? OR images.owner_id = ?",
				PublicSubmissionStates, v.SelfUserID, v.OwnerScopeID,
			)
		case v.SelfUserID != "":
			tx = tx.Where(
				"submissions.state IN (?) OR submissions.user_id = ?",
				PublicSubmissionStates, v.SelfUserID,
			)
		default:
			tx = tx.Where("submissions.state IN (?)", PublicSubmissionStates)
		}
	}

	result := []entity.Submission{}
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *submissionRepository) GetPending(
	ctx context.Context, kind entity.SubmissionKind, imageID, userID string,
) (*entity.Submission, error) {
	tx := xcontext.DB(ctx).
		Where("kind = ? AND image_id = ?", kind, imageID).
		Where("state IN (?)", entity.NonTerminalStates(kind))

	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}

	result := &entity.Submission{}
	if err := tx.Order("id DESC").Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *submissionRepository) GetCurrentGeolocation(
	ctx context.Context, imageID string,
) (*entity.Submission, error) {
	result := &entity.Submission{}
	err := xcontext.DB(ctx).
		Where("kind = ? AND image_id = ? AND state = ?",
			entity.KindGeolocation, imageID, entity.SubmissionValidated).
		Order("id DESC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *submissionRepository) UpdateReviewByID(
	ctx context.Context, id int64, from entity.SubmissionState, data *entity.Submission,
) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Submission{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]any{
			"state":          data.State,
			"validator_id":   data.ValidatorID,
			"date_validated": data.DateValidated,
			"remark":         data.Remark,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *submissionRepository) UpdateStateByID(
	ctx context.Context, id int64, from, to entity.SubmissionState,
) (bool, error) {
	tx := xcontext.DB(ctx).Model(&entity.Submission{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *submissionRepository) CountByUserForKind(
	ctx context.Context,
	kind entity.SubmissionKind,
	state entity.SubmissionState,
	filter RankingFilter,
) ([]UserCount, error) {
	tx := xcontext.DB(ctx).Model(&entity.Submission{}).
		Select("submissions.user_id as user_id, COUNT(*) as n").
		Joins("join images on images.id = submissions.image_id").
		Where("submissions.kind = ? AND submissions.state = ?", kind, state).
		Group("submissions.user_id")

	if filter.CollectionID != "" {
		tx = tx.Where("images.collection_id = ?", filter.CollectionID)
	}

	if filter.OwnerID != "" {
		tx = tx.Where("images.owner_id = ?", filter.OwnerID)
	}

	if !filter.DateMin.IsZero() {
		tx = tx.Where("submissions.date_created >= ?", filter.DateMin)
	}

	if !filter.DateMax.IsZero() {
		tx = tx.Where("submissions.date_created <= ?", filter.DateMax)
	}

	result := []UserCount{}
	if err := tx.Scan(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
