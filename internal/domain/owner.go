package domain

import (
	"context"

	"github.com/georef-lab/backend/internal/common"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/xcontext"
)

type OwnerDomain interface {
	GetList(ctx context.Context, req *model.GetListOwnerRequest) (*model.GetListOwnerResponse, error)
}

type ownerDomain struct {
	ownerRepo     repository.OwnerRepository
	actorResolver *common.ActorResolver
}

func NewOwnerDomain(
	ownerRepo repository.OwnerRepository,
	ownerMemberRepo repository.OwnerMemberRepository,
	userRepo repository.UserRepository,
) *ownerDomain {
	return &ownerDomain{
		ownerRepo:     ownerRepo,
		actorResolver: common.NewActorResolver(userRepo, ownerMemberRepo),
	}
}

func (d *ownerDomain) GetList(
	ctx context.Context, req *model.GetListOwnerRequest,
) (*model.GetListOwnerResponse, error) {
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

	owners, err := d.ownerRepo.GetList(ctx, repository.GetListOwnerFilter{Scope: scope}, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list owner: %v", err)
		return nil, errorx.Unknown
	}

	views := []model.Owner{}
	for _, o := range owners {
		views = append(views, model.Owner{
			ID:          o.ID,
			Name:        o.Name,
			Slug:        o.Slug,
			IsPublished: o.IsPublished,
		})
	}

	return &model.GetListOwnerResponse{Owners: views}, nil
}
