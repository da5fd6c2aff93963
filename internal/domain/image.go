package domain

import (
	"context"
	"errors"
	"time"

	"github.com/georef-lab/backend/internal/common"
	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ImageDomain interface {
	StartGeoreferencing(ctx context.Context, req *model.StartGeoreferencingRequest) (*model.StartGeoreferencingResponse, error)
	Get(ctx context.Context, req *model.GetImageRequest) (*model.GetImageResponse, error)
	MarkImpossible(ctx context.Context, req *model.MarkImageImpossibleRequest) (*model.MarkImageImpossibleResponse, error)
}

type imageDomain struct {
	imageRepo      repository.ImageRepository
	collectionRepo repository.CollectionRepository
	actorResolver  *common.ActorResolver
	roleVerifier   *common.OwnerRoleVerifier
}

func NewImageDomain(
	imageRepo repository.ImageRepository,
	collectionRepo repository.CollectionRepository,
	ownerMemberRepo repository.OwnerMemberRepository,
	userRepo repository.UserRepository,
) *imageDomain {
	return &imageDomain{
		imageRepo:      imageRepo,
		collectionRepo: collectionRepo,
		actorResolver:  common.NewActorResolver(userRepo, ownerMemberRepo),
		roleVerifier:   common.NewOwnerRoleVerifier(ownerMemberRepo, userRepo),
	}
}

// ensureImageVisible hides images of unpublished collections from actors
// outside the owner scope. It answers NotFound, never PermissionDenied, so
// that hidden images are indistinguishable from absent ones.
func ensureImageVisible(
	ctx context.Context,
	collectionRepo repository.CollectionRepository,
	actor common.Actor,
	image *entity.Image,
) error {
	if actor.IsSuperAdmin() {
		return nil
	}

	if actor.OwnerID != "" && actor.OwnerID == image.OwnerID {
		return nil
	}

	collection, err := collectionRepo.GetByID(ctx, image.CollectionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get collection: %v", err)
		return errorx.Unknown
	}

	if !collection.IsPublishedAt(time.Now()) {
		return errorx.New(errorx.NotFound, "Not found image")
	}

	return nil
}

// normalizeLimit applies the configured default and upper bound to a
// caller-supplied page size.
func normalizeLimit(ctx context.Context, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer

	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}

func (d *imageDomain) StartGeoreferencing(
	ctx context.Context, req *model.StartGeoreferencingRequest,
) (*model.StartGeoreferencingResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Only authenticated users can georeference")
	}

	if req.ImageID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty image id")
	}

	actor, err := d.actorResolver.Resolve(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve actor: %v", err)
		return nil, errorx.Unknown
	}

	image, err := d.imageRepo.GetByID(ctx, req.ImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found image")
		}

		xcontext.Logger(ctx).Errorf("Cannot get image: %v", err)
		return nil, errorx.Unknown
	}

	if err := ensureImageVisible(ctx, d.collectionRepo, actor, image); err != nil {
		return nil, err
	}

	if image.State == entity.ImageImpossible {
		return nil, errorx.New(errorx.Unavailable, "This image cannot be georeferenced")
	}

	ttl := xcontext.Configs(ctx).Lock.TTL
	acquired, err := d.imageRepo.AcquireLock(ctx, req.ImageID, userID, time.Now(), ttl)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot acquire image lock: %v", err)
		return nil, errorx.Unknown
	}

	if !acquired {
		return nil, errorx.New(errorx.Locked, "Image is being georeferenced by another user")
	}

	return &model.StartGeoreferencingResponse{}, nil
}

func (d *imageDomain) Get(
	ctx context.Context, req *model.GetImageRequest,
) (*model.GetImageResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty id")
	}

	actor, err := d.actorResolver.Resolve(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve actor: %v", err)
		return nil, errorx.Unknown
	}

	image, err := d.imageRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found image")
		}

		xcontext.Logger(ctx).Errorf("Cannot get image: %v", err)
		return nil, errorx.Unknown
	}

	if err := ensureImageVisible(ctx, d.collectionRepo, actor, image); err != nil {
		return nil, err
	}

	ttl := xcontext.Configs(ctx).Lock.TTL
	response := model.GetImageResponse{
		ID:           image.ID,
		CollectionID: image.CollectionID,
		OwnerID:      image.OwnerID,
		Title:        image.Title,
		State:        string(image.State),
		Lock:         inspectLock(image, time.Now(), ttl),
	}

	return &response, nil
}

// inspectLock reports the advisory lease of an image. An expired lease counts
// as unlocked even though the columns still hold the stale values.
func inspectLock(image *entity.Image, now time.Time, ttl time.Duration) model.ImageLock {
	if !image.LastStart.Valid {
		return model.ImageLock{}
	}

	age := now.Sub(image.LastStart.Time)
	if age > ttl {
		return model.ImageLock{}
	}

	seconds := int64(age.Seconds())
	holder := image.LastStartUserID.String
	return model.ImageLock{
		Locked:         true,
		LockedUserID:   &holder,
		DeltaLastStart: &seconds,
	}
}

func (d *imageDomain) MarkImpossible(
	ctx context.Context, req *model.MarkImageImpossibleRequest,
) (*model.MarkImageImpossibleResponse, error) {
	if req.ImageID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty image id")
	}

	image, err := d.imageRepo.GetByID(ctx, req.ImageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found image")
		}

		xcontext.Logger(ctx).Errorf("Cannot get image: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, image.OwnerID, entity.OwnerReviewRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if err := d.imageRepo.SetState(ctx, req.ImageID, entity.ImageImpossible); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark image impossible: %v", err)
		return nil, errorx.Unknown
	}

	return &model.MarkImageImpossibleResponse{}, nil
}
