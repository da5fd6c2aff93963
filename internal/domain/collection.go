package domain

import (
	"context"
	"time"

	"github.com/georef-lab/backend/internal/common"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/xcontext"
)

type CollectionDomain interface {
	GetList(ctx context.Context, req *model.GetListCollectionRequest) (*model.GetListCollectionResponse, error)
}

type collectionDomain struct {
	collectionRepo repository.CollectionRepository
	actorResolver  *common.ActorResolver
}

func NewCollectionDomain(
	collectionRepo repository.CollectionRepository,
	ownerMemberRepo repository.OwnerMemberRepository,
	userRepo repository.UserRepository,
) *collectionDomain {
	return &collectionDomain{
		collectionRepo: collectionRepo,
		actorResolver:  common.NewActorResolver(userRepo, ownerMemberRepo),
	}
}

func (d *collectionDomain) GetList(
	ctx context.Context, req *model.GetListCollectionRequest,
) (*model.GetListCollectionResponse, error) {
	actor, err := d.actorResolver.Resolve(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve actor: %v", err)
		return nil, errorx.Unknown
	}

	scope, err := common.ResolvePublishScope(actor, req.PublishState)
	if err != nil {
		return nil, err
	}

	limit, err := normalizeLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	collections, err := d.collectionRepo.GetList(ctx, repository.GetListCollectionFilter{
		OwnerIDs: req.OwnerID,
		Scope:    scope,
	}, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list collection: %v", err)
		return nil, errorx.Unknown
	}

	views := []model.Collection{}
	for _, c := range collections {
		view := model.Collection{
			ID:               c.ID,
			OwnerID:          c.OwnerID,
			Name:             c.Name,
			IsOwnerChallenge: c.IsOwnerChallenge,
			IsMainChallenge:  c.IsMainChallenge,
		}

		if c.DatePubli.Valid {
			view.DatePubli = c.DatePubli.Time.Format(time.RFC3339)
		}

		views = append(views, view)
	}

	return &model.GetListCollectionResponse{Collections: views}, nil
}
