package domain

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/georef-lab/backend/internal/domain/statistic"
	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/idutil"
	"github.com/georef-lab/backend/pkg/reflectutil"
	"github.com/georef-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestSubmissionDomain(t *testing.T) *submissionDomain {
	idGenerator, err := idutil.NewGenerator(7)
	require.NoError(t, err)

	submissionRepo := repository.NewSubmissionRepository()
	return NewSubmissionDomain(
		submissionRepo,
		repository.NewImageRepository(),
		repository.NewCollectionRepository(),
		repository.NewOwnerMemberRepository(),
		repository.NewUserRepository(),
		statistic.New(submissionRepo, &testutil.MockRedisClient{}),
		idGenerator,
	)
}

func errorCode(t *testing.T, err error) errorx.Code {
	var errx errorx.Error
	require.True(t, errors.As(err, &errx), "expected an errorx error, got %v", err)
	return errx.Code
}

func geolocationPayload() map[string]any {
	return map[string]any{"latitude": 48.8584, "longitude": 2.2945}
}

func Test_submissionDomain_Submit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	// A guest cannot submit.
	_, err := d.Submit(ctx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.Error(t, err)
	require.Equal(t, errorx.Unauthenticated, errorCode(t, err))

	authorizedCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)

	_, err = d.Submit(authorizedCtx, &model.SubmitRequest{
		Kind:    "teleportation",
		ImageID: testutil.Image1.ID,
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	_, err = d.Submit(authorizedCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: map[string]any{"latitude": 148.0, "longitude": 2.0},
	})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	resp, err := d.Submit(authorizedCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.NoError(t, err)
	require.Equal(t, "waiting_validation", resp.State)
	require.NotZero(t, resp.ID)

	// A second geolocation conflicts while the first one is under review,
	// whoever the author is.
	otherCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID)
	_, err = d.Submit(otherCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.Error(t, err)
	require.Equal(t, errorx.ConflictingSubmission, errorCode(t, err))

	// Other kinds do not conflict with a pending geolocation.
	obsResp, err := d.Submit(otherCtx, &model.SubmitRequest{
		Kind:    "observation",
		ImageID: testutil.Image1.ID,
		Payload: map[string]any{"text": "A church tower on the left"},
	})
	require.NoError(t, err)
	require.Equal(t, "created", obsResp.State)

	// But the author's own pending observation does.
	_, err = d.Submit(otherCtx, &model.SubmitRequest{
		Kind:    "observation",
		ImageID: testutil.Image1.ID,
		Payload: map[string]any{"text": "Another note"},
	})
	require.Error(t, err)
	require.Equal(t, errorx.ConflictingSubmission, errorCode(t, err))
}

func Test_submissionDomain_Submit_UnpublishedCollection(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	// Image2 belongs to an unpublished collection: hidden from volunteers,
	// visible to the owner's members.
	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image2.ID,
		Payload: geolocationPayload(),
	})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, errorCode(t, err))

	memberCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	_, err = d.Submit(memberCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image2.ID,
		Payload: geolocationPayload(),
	})
	require.NoError(t, err)
}

func Test_submissionDomain_Review(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	resp, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.NoError(t, err)

	// The author cannot review their own submission without a reviewer role.
	_, err = d.Review(volunteerCtx, &model.ReviewRequest{ID: resp.ID, Action: "accept"})
	require.Error(t, err)
	require.Equal(t, errorx.PermissionDenied, errorCode(t, err))

	// A member of another owner cannot review it either.
	_, err = d.Review(ctx, &model.ReviewRequest{ID: resp.ID, Action: "nuke"})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	validatorCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	reviewResp, err := d.Review(validatorCtx, &model.ReviewRequest{
		ID:     resp.ID,
		Action: "accept",
		Remark: "Nice work",
	})
	require.NoError(t, err)
	require.Equal(t, "validated", reviewResp.State)

	reviewed, err := d.submissionRepo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.True(t, reflectutil.PartialEqual(&entity.Submission{
		State:       entity.SubmissionValidated,
		ValidatorID: sql.NullString{Valid: true, String: testutil.Validator1.ID},
		Remark:      sql.NullString{Valid: true, String: "Nice work"},
	}, reviewed))
	require.True(t, reviewed.DateValidated.Valid)

	// The image advanced one lifecycle step.
	image, err := d.imageRepo.GetByID(ctx, testutil.Image1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ImageWaitingAlignment, image.State)

	// Reviewing the same submission twice is an invalid transition.
	_, err = d.Review(validatorCtx, &model.ReviewRequest{ID: resp.ID, Action: "reject"})
	require.Error(t, err)
	require.Equal(t, errorx.InvalidTransition, errorCode(t, err))
}

func Test_submissionDomain_Review_SuperAdmin(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	resp, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "observation",
		ImageID: testutil.Image3.ID,
		Payload: map[string]any{"text": "The bridge was rebuilt in 1948"},
	})
	require.NoError(t, err)

	// Validator1 belongs to another owner than Image3.
	validatorCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	_, err = d.Review(validatorCtx, &model.ReviewRequest{ID: resp.ID, Action: "accept"})
	require.Error(t, err)
	require.Equal(t, errorx.PermissionDenied, errorCode(t, err))

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.SuperAdmin.ID)
	reviewResp, err := d.Review(adminCtx, &model.ReviewRequest{ID: resp.ID, Action: "accept"})
	require.NoError(t, err)
	require.Equal(t, "validated", reviewResp.State)

	// Observations never move the image state.
	image, err := d.imageRepo.GetByID(ctx, testutil.Image3.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ImageWaitingAlignment, image.State)
}

func Test_submissionDomain_ImproveChain(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	validatorCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)

	first, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.NoError(t, err)

	_, err = d.Review(validatorCtx, &model.ReviewRequest{ID: first.ID, Action: "accept"})
	require.NoError(t, err)

	// A new geolocation is allowed once the current one is validated and
	// chains to it.
	otherCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID)
	second, err := d.Submit(otherCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: map[string]any{"latitude": 48.8589, "longitude": 2.2947},
	})
	require.NoError(t, err)
	require.Equal(t, "waiting_validation", second.State)

	chained, err := d.submissionRepo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, chained.PreviousSubmissionID.Valid)
	require.Equal(t, first.ID, chained.PreviousSubmissionID.Int64)

	_, err = d.Review(validatorCtx, &model.ReviewRequest{ID: second.ID, Action: "accept"})
	require.NoError(t, err)

	// The superseded record moved to improved, the new one is validated.
	superseded, err := d.submissionRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, entity.SubmissionImproved, superseded.State)

	current, err := d.submissionRepo.GetCurrentGeolocation(ctx, testutil.Image1.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, current.ID)

	// Two validations moved the image two lifecycle steps.
	image, err := d.imageRepo.GetByID(ctx, testutil.Image1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ImageWaitingValidation, image.State)
}

func Test_submissionDomain_Review_RejectKeepsImageState(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	validatorCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)

	resp, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "geolocation",
		ImageID: testutil.Image1.ID,
		Payload: geolocationPayload(),
	})
	require.NoError(t, err)

	reviewResp, err := d.Review(validatorCtx, &model.ReviewRequest{
		ID:     resp.ID,
		Action: "reject",
		Remark: "The tower does not match",
	})
	require.NoError(t, err)
	require.Equal(t, "rejected", reviewResp.State)

	image, err := d.imageRepo.GetByID(ctx, testutil.Image1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ImageInitial, image.State)
}

func Test_submissionDomain_Review_UpdatedCorrection(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	resp, err := d.Submit(volunteerCtx, &model.SubmitRequest{
		Kind:    "correction",
		ImageID: testutil.Image1.ID,
		Payload: map[string]any{"field": "title", "value": "The old harbour"},
	})
	require.NoError(t, err)
	require.Equal(t, "created", resp.State)

	validatorCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	reviewResp, err := d.Review(validatorCtx, &model.ReviewRequest{
		ID:             resp.ID,
		Action:         "accept",
		UpdatedPayload: map[string]any{"field": "title", "value": "The old harbour of Marseille"},
	})
	require.NoError(t, err)
	require.Equal(t, "updated", reviewResp.State)
	require.NotZero(t, reviewResp.NewSubmissionID)

	old, err := d.submissionRepo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, entity.SubmissionUpdated, old.State)
	require.True(t, old.ValidatorID.Valid)

	// The reviewer's version is recorded as an accepted correction chained
	// to the reviewed one, credited to the original author.
	chained, err := d.submissionRepo.GetByID(ctx, reviewResp.NewSubmissionID)
	require.NoError(t, err)
	require.True(t, reflectutil.PartialEqual(&entity.Submission{
		State:                entity.SubmissionAccepted,
		UserID:               testutil.Volunteer1.ID,
		PreviousSubmissionID: sql.NullInt64{Valid: true, Int64: resp.ID},
	}, chained))
	require.Equal(t, "The old harbour of Marseille", chained.Payload["value"])
}

func Test_submissionDomain_GetList_Visibility(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	pending, err := testutil.SampleSubmission(ctx, &entity.Submission{
		Kind:    entity.KindGeolocation,
		ImageID: testutil.Image1.ID,
		UserID:  testutil.Volunteer1.ID,
		State:   entity.SubmissionWaitingValidation,
	})
	require.NoError(t, err)

	validated, err := testutil.SampleSubmission(ctx, &entity.Submission{
		Kind:        entity.KindGeolocation,
		ImageID:     testutil.Image3.ID,
		UserID:      testutil.Volunteer2.ID,
		State:       entity.SubmissionValidated,
		ValidatorID: sql.NullString{Valid: true, String: testutil.SuperAdmin.ID},
		Remark:      sql.NullString{Valid: true, String: "confirmed on site"},
	})
	require.NoError(t, err)

	listIDs := func(ctx context.Context) []int64 {
		resp, err := d.GetList(ctx, &model.GetListSubmissionRequest{Limit: 10})
		require.NoError(t, err)

		ids := []int64{}
		for _, s := range resp.Submissions {
			ids = append(ids, s.ID)
		}

		return ids
	}

	// A guest only sees reviewed-public submissions, with review details
	// redacted.
	guestIDs := listIDs(ctx)
	require.Equal(t, []int64{validated.ID}, guestIDs)

	guestList, err := d.GetList(ctx, &model.GetListSubmissionRequest{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, guestList.Submissions[0].Remark)
	require.Empty(t, guestList.Submissions[0].ValidatorID)

	// The author sees their own pending record. Most recent first.
	authorIDs := listIDs(testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID))
	require.Equal(t, []int64{validated.ID, pending.ID}, authorIDs)

	// Another volunteer does not.
	otherIDs := listIDs(testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID))
	require.Equal(t, []int64{validated.ID}, otherIDs)

	// An owner member sees everything in its owner scope.
	memberIDs := listIDs(testutil.MockContextWithUserID(ctx, testutil.Validator1.ID))
	require.Equal(t, []int64{validated.ID, pending.ID}, memberIDs)

	// A super admin sees everything.
	adminIDs := listIDs(testutil.MockContextWithUserID(ctx, testutil.SuperAdmin.ID))
	require.Equal(t, []int64{validated.ID, pending.ID}, adminIDs)

	// Requesting a state outside the actor's allowed set yields nothing
	// instead of leaking.
	resp, err := d.GetList(ctx, &model.GetListSubmissionRequest{
		State: []string{"waiting_validation"},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Empty(t, resp.Submissions)

	_, err = d.GetList(ctx, &model.GetListSubmissionRequest{State: []string{"bogus"}, Limit: 10})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, errorCode(t, err))

	_, err = d.GetList(ctx, &model.GetListSubmissionRequest{Limit: 51})
	require.Error(t, err)
	require.Equal(t, errorx.BadRequest, errorCode(t, err))
}

func Test_submissionDomain_Get_Redaction(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestSubmissionDomain(t)

	validated, err := testutil.SampleSubmission(ctx, &entity.Submission{
		Kind:        entity.KindGeolocation,
		ImageID:     testutil.Image1.ID,
		UserID:      testutil.Volunteer1.ID,
		State:       entity.SubmissionValidated,
		ValidatorID: sql.NullString{Valid: true, String: testutil.Validator1.ID},
		Remark:      sql.NullString{Valid: true, String: "double checked"},
	})
	require.NoError(t, err)

	// Guests get the record without review details.
	guestResp, err := d.Get(ctx, &model.GetSubmissionRequest{ID: validated.ID})
	require.NoError(t, err)
	require.Empty(t, guestResp.Remark)
	require.Empty(t, guestResp.ValidatorID)

	// The author always sees the full record.
	authorCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	authorResp, err := d.Get(authorCtx, &model.GetSubmissionRequest{ID: validated.ID})
	require.NoError(t, err)
	require.Equal(t, "double checked", authorResp.Remark)
	require.Equal(t, testutil.Validator1.ID, authorResp.ValidatorID)

	// A hidden submission answers NotFound, not PermissionDenied.
	pending, err := testutil.SampleSubmission(ctx, &entity.Submission{
		Kind:    entity.KindObservation,
		ImageID: testutil.Image1.ID,
		UserID:  testutil.Volunteer1.ID,
		State:   entity.SubmissionCreated,
	})
	require.NoError(t, err)

	otherCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID)
	_, err = d.Get(otherCtx, &model.GetSubmissionRequest{ID: pending.ID})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, errorCode(t, err))
}
