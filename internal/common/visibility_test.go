package common

import (
	"database/sql"
	"testing"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

var (
	guestActor  = Actor{}
	userActor   = Actor{UserID: "user1", Role: entity.RoleUser}
	memberActor = Actor{UserID: "member1", Role: entity.RoleUser, OwnerID: "owner1", OwnerRole: entity.OwnerValidator}
	adminActor  = Actor{UserID: "admin1", Role: entity.RoleSuperAdmin}
)

func TestResolvePublishScope(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		requested string
		want      repository.PublishScope
		wantCode  errorx.Code
	}{
		{
			name:  "guest default",
			actor: guestActor,
			want:  repository.PublishScope{Published: true},
		},
		{
			name:  "member default widens to own owner",
			actor: memberActor,
			want:  repository.PublishScope{Published: true, UnpublishedOwnerID: "owner1"},
		},
		{
			name:  "super admin default",
			actor: adminActor,
			want:  repository.PublishScope{All: true},
		},
		{
			name:      "published narrows everyone",
			actor:     adminActor,
			requested: PublishStatePublished,
			want:      repository.PublishScope{Published: true},
		},
		{
			name:      "guest unpublished forbidden",
			actor:     guestActor,
			requested: PublishStateUnpublished,
			wantCode:  errorx.PermissionDenied,
		},
		{
			name:      "user all forbidden",
			actor:     userActor,
			requested: PublishStateAll,
			wantCode:  errorx.PermissionDenied,
		},
		{
			name:      "member unpublished restricted to own owner",
			actor:     memberActor,
			requested: PublishStateUnpublished,
			want:      repository.PublishScope{UnpublishedOwnerID: "owner1"},
		},
		{
			name:      "super admin unpublished",
			actor:     adminActor,
			requested: PublishStateUnpublished,
			want:      repository.PublishScope{Unpublished: true},
		},
		{
			name:      "invalid value",
			actor:     adminActor,
			requested: "draft",
			wantCode:  errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := ResolvePublishScope(tt.actor, tt.requested)
			if tt.wantCode != 0 {
				require.Error(t, err)
				var errx errorx.Error
				require.ErrorAs(t, err, &errx)
				require.Equal(t, tt.wantCode, errx.Code)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, scope)
		})
	}
}

func TestSubmissionVisibilityFor(t *testing.T) {
	require.Nil(t, SubmissionVisibilityFor(adminActor))

	guest := SubmissionVisibilityFor(guestActor)
	require.NotNil(t, guest)
	require.Empty(t, guest.SelfUserID)
	require.Empty(t, guest.OwnerScopeID)

	member := SubmissionVisibilityFor(memberActor)
	require.Equal(t, "member1", member.SelfUserID)
	require.Equal(t, "owner1", member.OwnerScopeID)
}

func TestCanSeeSubmission(t *testing.T) {
	pending := &entity.Submission{UserID: "user1", State: entity.SubmissionWaitingValidation}
	validated := &entity.Submission{UserID: "user1", State: entity.SubmissionValidated}

	require.False(t, CanSeeSubmission(guestActor, pending, "owner2"))
	require.True(t, CanSeeSubmission(guestActor, validated, "owner2"))

	// The author always sees their own record, whatever its state.
	require.True(t, CanSeeSubmission(userActor, pending, "owner2"))

	require.False(t, CanSeeSubmission(memberActor, pending, "owner2"))
	require.True(t, CanSeeSubmission(memberActor, pending, "owner1"))

	require.True(t, CanSeeSubmission(adminActor, pending, "owner2"))
}

func TestSubmissionView_Redaction(t *testing.T) {
	submission := &entity.Submission{
		SnowFlakeBase: entity.SnowFlakeBase{ID: 42},
		Kind:          entity.KindGeolocation,
		ImageID:       "image1",
		UserID:        "user1",
		State:         entity.SubmissionValidated,
		DateCreated:   time.Now(),
		DateValidated: sql.NullTime{Valid: true, Time: time.Now()},
		ValidatorID:   sql.NullString{Valid: true, String: "validator1"},
		Remark:        sql.NullString{Valid: true, String: "good fit"},
	}

	public := SubmissionView(guestActor, submission, "owner2")
	require.Empty(t, public.ValidatorID)
	require.Empty(t, public.Remark)
	require.NotEmpty(t, public.DateValidated)

	for _, actor := range []Actor{userActor, memberActor, adminActor} {
		ownerID := "owner2"
		if actor.OwnerID != "" {
			ownerID = actor.OwnerID
		}

		view := SubmissionView(actor, submission, ownerID)
		require.Equal(t, "validator1", view.ValidatorID)
		require.Equal(t, "good fit", view.Remark)
	}

	// A member outside the image's owner scope gets the public view.
	outside := SubmissionView(memberActor, submission, "owner2")
	require.Empty(t, outside.ValidatorID)
	require.Empty(t, outside.Remark)
}
