package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georef-lab/backend/internal/common"
	"github.com/georef-lab/backend/internal/domain/statistic"
	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/enum"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/idutil"
	"github.com/georef-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Review actions accepted from validators.
const (
	ReviewActionAccept = "accept"
	ReviewActionReject = "reject"
)

type SubmissionDomain interface {
	Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResponse, error)
	Review(ctx context.Context, req *model.ReviewRequest) (*model.ReviewResponse, error)
	Get(ctx context.Context, req *model.GetSubmissionRequest) (*model.GetSubmissionResponse, error)
	GetList(ctx context.Context, req *model.GetListSubmissionRequest) (*model.GetListSubmissionResponse, error)
}

type submissionDomain struct {
	submissionRepo repository.SubmissionRepository
	imageRepo      repository.ImageRepository
	collectionRepo repository.CollectionRepository
	actorResolver  *common.ActorResolver
	roleVerifier   *common.OwnerRoleVerifier
	leaderboard    statistic.Leaderboard
	idGenerator    *idutil.Generator
}

func NewSubmissionDomain(
	submissionRepo repository.SubmissionRepository,
	imageRepo repository.ImageRepository,
	collectionRepo repository.CollectionRepository,
	ownerMemberRepo repository.OwnerMemberRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
	idGenerator *idutil.Generator,
) *submissionDomain {
	return &submissionDomain{
		submissionRepo: submissionRepo,
		imageRepo:      imageRepo,
		collectionRepo: collectionRepo,
		actorResolver:  common.NewActorResolver(userRepo, ownerMemberRepo),
		roleVerifier:   common.NewOwnerRoleVerifier(ownerMemberRepo, userRepo),
		leaderboard:    leaderboard,
		idGenerator:    idGenerator,
	}
}

func validatePayload(kind entity.SubmissionKind, raw map[string]any) error {
	var err error
	switch kind {
	case entity.KindGeolocation:
		_, err = model.DecodeGeolocationPayload(raw)
	case entity.KindCorrection:
		_, err = model.DecodeCorrectionPayload(raw)
	case entity.KindObservation:
		_, err = model.DecodeObservationPayload(raw)
	}

	return err
}

func (d *submissionDomain) Submit(
	ctx context.Context, req *model.SubmitRequest,
) (*model.SubmitResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Only authenticated users can submit")
	}

	kind, err := enum.ToEnum[entity.SubmissionKind](req.Kind)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid submission kind: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid submission kind %s", req.Kind)
	}

	if req.ImageID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty image id")
	}

	if err := validatePayload(kind, req.Payload); err != nil {
		xcontext.Logger(ctx).Debugf("Invalid payload: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid %s payload: %v", kind, err)
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

	// A geolocation conflicts with any non-terminal geolocation on the image.
	// Corrections and observations only conflict with the author's own
	// pending record of the same kind.
	pendingAuthor := userID
	if kind == entity.KindGeolocation {
		pendingAuthor = ""
	}

	_, err = d.submissionRepo.GetPending(ctx, kind, req.ImageID, pendingAuthor)
	if err == nil {
		return nil, errorx.New(errorx.ConflictingSubmission,
			"A %s for this image is already under review", kind)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check pending submission: %v", err)
		return nil, errorx.Unknown
	}

	submission := &entity.Submission{
		SnowFlakeBase: entity.SnowFlakeBase{ID: d.idGenerator.NewID()},
		Kind:          kind,
		ImageID:       req.ImageID,
		UserID:        userID,
		State:         entity.PendingReviewState(kind),
		DateCreated:   time.Now(),
		Payload:       req.Payload,
	}

	// A new geolocation on an already georeferenced image supersedes the
	// current validated record. The chain pointer is set now; the old record
	// moves to improved when this one is validated.
	if kind == entity.KindGeolocation {
		current, err := d.submissionRepo.GetCurrentGeolocation(ctx, req.ImageID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get current geolocation: %v", err)
			return nil, errorx.Unknown
		}

		if err == nil {
			submission.PreviousSubmissionID = sql.NullInt64{Valid: true, Int64: current.ID}
		}
	}

	if err := d.submissionRepo.Create(ctx, submission); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create submission: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SubmitResponse{
		ID:    submission.ID,
		State: string(submission.State),
	}, nil
}

func (d *submissionDomain) Review(
	ctx context.Context, req *model.ReviewRequest,
) (*model.ReviewResponse, error) {
	if req.ID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty id")
	}

	if req.Action != ReviewActionAccept && req.Action != ReviewActionReject {
		return nil, errorx.New(errorx.BadRequest, "Action must be accept or reject")
	}

	submission, err := d.submissionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found submission")
		}

		xcontext.Logger(ctx).Errorf("Cannot get submission: %v", err)
		return nil, errorx.Unknown
	}

	pendingState := entity.PendingReviewState(submission.Kind)
	if submission.State != pendingState {
		return nil, errorx.New(errorx.InvalidTransition,
			"Cannot review a submission in state %s", submission.State)
	}

	image, err := d.imageRepo.GetByID(ctx, submission.ImageID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get image: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, image.OwnerID, entity.OwnerReviewRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	target := entity.SubmissionRejected
	if req.Action == ReviewActionAccept {
		target = entity.AcceptedState(submission.Kind)
	}

	// Accepting a modified version of a correction moves the reviewed record
	// to updated and records the reviewer's version as a chained accepted
	// correction.
	updating := false
	if req.Action == ReviewActionAccept && req.UpdatedPayload != nil {
		if submission.Kind != entity.KindCorrection {
			return nil, errorx.New(errorx.BadRequest,
				"Only corrections can be accepted with an updated payload")
		}

		if err := validatePayload(submission.Kind, req.UpdatedPayload); err != nil {
			xcontext.Logger(ctx).Debugf("Invalid payload: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid updated payload: %v", err)
		}

		updating = true
		target = entity.SubmissionUpdated
	}

	if !entity.CanTransition(submission.Kind, submission.State, target) {
		return nil, errorx.New(errorx.InvalidTransition,
			"Cannot move a %s from %s to %s", submission.Kind, submission.State, target)
	}

	validatorID := xcontext.RequestUserID(ctx)
	now := time.Now()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	ok, err := d.submissionRepo.UpdateReviewByID(ctx, submission.ID, pendingState, &entity.Submission{
		State:         target,
		ValidatorID:   sql.NullString{Valid: true, String: validatorID},
		DateValidated: sql.NullTime{Valid: true, Time: now},
		Remark:        sql.NullString{Valid: req.Remark != "", String: req.Remark},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update submission state: %v", err)
		return nil, errorx.Unknown
	}

	if !ok {
		return nil, errorx.New(errorx.InvalidTransition,
			"Submission was reviewed concurrently")
	}

	response := &model.ReviewResponse{State: string(target)}

	if updating {
		newSubmission := &entity.Submission{
			SnowFlakeBase:        entity.SnowFlakeBase{ID: d.idGenerator.NewID()},
			Kind:                 entity.KindCorrection,
			ImageID:              submission.ImageID,
			UserID:               submission.UserID,
			State:                entity.SubmissionAccepted,
			ValidatorID:          sql.NullString{Valid: true, String: validatorID},
			DateCreated:          now,
			DateValidated:        sql.NullTime{Valid: true, Time: now},
			PreviousSubmissionID: sql.NullInt64{Valid: true, Int64: submission.ID},
			Payload:              req.UpdatedPayload,
		}

		if err := d.submissionRepo.Create(ctx, newSubmission); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create updated correction: %v", err)
			return nil, errorx.Unknown
		}

		response.NewSubmissionID = newSubmission.ID
	}

	accepted := req.Action == ReviewActionAccept
	if accepted && submission.Kind == entity.KindGeolocation {
		if err := d.applyValidatedGeolocation(ctx, submission, image); err != nil {
			return nil, err
		}
	}

	if accepted {
		err := d.leaderboard.ChangeLeaderboard(
			ctx, 1, submission.UserID, image.CollectionID, submission.Kind)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot bump leaderboard: %v", err)
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return response, nil
}

// applyValidatedGeolocation runs the side effects of a geolocation reaching
// validated: the superseded record moves to improved and the image advances
// one lifecycle step.
func (d *submissionDomain) applyValidatedGeolocation(
	ctx context.Context, submission *entity.Submission, image *entity.Image,
) error {
	if submission.PreviousSubmissionID.Valid {
		ok, err := d.submissionRepo.UpdateStateByID(
			ctx, submission.PreviousSubmissionID.Int64,
			entity.SubmissionValidated, entity.SubmissionImproved,
		)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot supersede geolocation: %v", err)
			return errorx.Unknown
		}

		if !ok {
			return errorx.New(errorx.InvalidTransition,
				"The superseded geolocation changed concurrently")
		}
	}

	next := image.State.NextState()
	if next == image.State {
		return nil
	}

	ok, err := d.imageRepo.AdvanceState(ctx, image.ID, image.State, next)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot advance image state: %v", err)
		return errorx.Unknown
	}

	// Another validation advanced the image in between. The image state is
	// monotonic, so losing this race is harmless.
	if !ok {
		xcontext.Logger(ctx).Warnf("Image %s advanced concurrently", image.ID)
	}

	return nil
}

func (d *submissionDomain) Get(
	ctx context.Context, req *model.GetSubmissionRequest,
) (*model.GetSubmissionResponse, error) {
	if req.ID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty id")
	}

	actor, err := d.actorResolver.Resolve(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve actor: %v", err)
		return nil, errorx.Unknown
	}

	submission, err := d.submissionRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found submission")
		}

		xcontext.Logger(ctx).Errorf("Cannot get submission: %v", err)
		return nil, errorx.Unknown
	}

	image, err := d.imageRepo.GetByID(ctx, submission.ImageID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get image: %v", err)
		return nil, errorx.Unknown
	}

	// NotFound instead of PermissionDenied so that hidden submissions are
	// indistinguishable from absent ones.
	if !common.CanSeeSubmission(actor, submission, image.OwnerID) {
		return nil, errorx.New(errorx.NotFound, "Not found submission")
	}

	view := model.GetSubmissionResponse(common.SubmissionView(actor, submission, image.OwnerID))
	return &view, nil
}

func (d *submissionDomain) GetList(
	ctx context.Context, req *model.GetListSubmissionRequest,
) (*model.GetListSubmissionResponse, error) {
	actor, err := d.actorResolver.Resolve(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve actor: %v", err)
		return nil, errorx.Unknown
	}

	states := []entity.SubmissionState{}
	for _, s := range req.State {
		state, err := enum.ToEnum[entity.SubmissionState](s)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid state filter: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid state %s", s)
		}

		states = append(states, state)
	}

	limit, err := normalizeLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	submissions, err := d.submissionRepo.GetList(ctx, repository.SubmissionFilter{
		ImageID:      req.ImageID,
		UserID:       req.VolunteerID,
		States:       states,
		OwnerID:      req.OwnerID,
		CollectionID: req.CollectionID,
		Visibility:   common.SubmissionVisibilityFor(actor),
	}, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get list submission: %v", err)
		return nil, errorx.Unknown
	}

	views := []model.Submission{}
	for i := range submissions {
		views = append(views,
			common.SubmissionView(actor, &submissions[i], submissions[i].Image.OwnerID))
	}

	return &model.GetListSubmissionResponse{Submissions: views}, nil
}
