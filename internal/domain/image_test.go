package domain

import (
	"testing"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/testutil"
	"github.com/georef-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestImageDomain() *imageDomain {
	return NewImageDomain(
		repository.NewImageRepository(),
		repository.NewCollectionRepository(),
		repository.NewOwnerMemberRepository(),
		repository.NewUserRepository(),
	)
}

func Test_imageDomain_StartGeoreferencing(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestImageDomain()

	// Guests cannot take the lease.
	_, err := d.StartGeoreferencing(ctx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.Error(t, err)
	require.Equal(t, errorx.Unauthenticated, errorCode(t, err))

	userCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err = d.StartGeoreferencing(userCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)

	// A second user cannot take a held lease.
	otherCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID)
	_, err = d.StartGeoreferencing(otherCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.Error(t, err)
	require.Equal(t, errorx.Locked, errorCode(t, err))

	// The holder may renew its own lease.
	_, err = d.StartGeoreferencing(userCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)
}

func Test_imageDomain_StartGeoreferencing_StaleLock(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestImageDomain()

	userCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err := d.StartGeoreferencing(userCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)

	// Age the lock past the TTL.
	stale := time.Now().Add(-xcontext.Configs(ctx).Lock.TTL - time.Minute)
	err = xcontext.DB(ctx).Model(&entity.Image{}).
		Where("id = ?", testutil.Image1.ID).
		Update("last_start", stale).Error
	require.NoError(t, err)

	otherCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer2.ID)
	_, err = d.StartGeoreferencing(otherCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)
}

func Test_imageDomain_Get_LockInspection(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestImageDomain()

	resp, err := d.Get(ctx, &model.GetImageRequest{ID: testutil.Image1.ID})
	require.NoError(t, err)
	require.False(t, resp.Lock.Locked)
	require.Nil(t, resp.Lock.LockedUserID)
	require.Nil(t, resp.Lock.DeltaLastStart)

	userCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err = d.StartGeoreferencing(userCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)

	resp, err = d.Get(ctx, &model.GetImageRequest{ID: testutil.Image1.ID})
	require.NoError(t, err)
	require.True(t, resp.Lock.Locked)
	require.Equal(t, testutil.Volunteer1.ID, *resp.Lock.LockedUserID)
	require.GreaterOrEqual(t, *resp.Lock.DeltaLastStart, int64(0))

	// An expired lease reads as unlocked.
	stale := time.Now().Add(-xcontext.Configs(ctx).Lock.TTL - time.Minute)
	err = xcontext.DB(ctx).Model(&entity.Image{}).
		Where("id = ?", testutil.Image1.ID).
		Update("last_start", stale).Error
	require.NoError(t, err)

	resp, err = d.Get(ctx, &model.GetImageRequest{ID: testutil.Image1.ID})
	require.NoError(t, err)
	require.False(t, resp.Lock.Locked)
}

func Test_imageDomain_Get_UnpublishedScope(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestImageDomain()

	// Image2 is in an unpublished collection.
	_, err := d.Get(ctx, &model.GetImageRequest{ID: testutil.Image2.ID})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, errorCode(t, err))

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err = d.Get(volunteerCtx, &model.GetImageRequest{ID: testutil.Image2.ID})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, errorCode(t, err))

	memberCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	resp, err := d.Get(memberCtx, &model.GetImageRequest{ID: testutil.Image2.ID})
	require.NoError(t, err)
	require.Equal(t, testutil.Image2.ID, resp.ID)

	adminCtx := testutil.MockContextWithUserID(ctx, testutil.SuperAdmin.ID)
	_, err = d.Get(adminCtx, &model.GetImageRequest{ID: testutil.Image2.ID})
	require.NoError(t, err)
}

func Test_imageDomain_MarkImpossible(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestImageDomain()

	volunteerCtx := testutil.MockContextWithUserID(ctx, testutil.Volunteer1.ID)
	_, err := d.MarkImpossible(volunteerCtx, &model.MarkImageImpossibleRequest{
		ImageID: testutil.Image1.ID,
	})
	require.Error(t, err)
	require.Equal(t, errorx.PermissionDenied, errorCode(t, err))

	memberCtx := testutil.MockContextWithUserID(ctx, testutil.Validator1.ID)
	_, err = d.MarkImpossible(memberCtx, &model.MarkImageImpossibleRequest{
		ImageID: testutil.Image1.ID,
	})
	require.NoError(t, err)

	image, err := d.imageRepo.GetByID(ctx, testutil.Image1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ImageImpossible, image.State)

	// An impossible image cannot be georeferenced anymore.
	_, err = d.StartGeoreferencing(volunteerCtx, &model.StartGeoreferencingRequest{
		ImageID: testutil.Image1.ID,
	})
	require.Error(t, err)
	require.Equal(t, errorx.Unavailable, errorCode(t, err))
}
