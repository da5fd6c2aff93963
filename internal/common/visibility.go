package common

import (
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/errorx"
)

// Publish state filter values accepted from callers. The empty string
// resolves to everything the actor may see.
const (
	PublishStatePublished   = "published"
	PublishStateUnpublished = "unpublished"
	PublishStateAll         = "all"
)

// ResolvePublishScope intersects a caller-supplied publish_state filter with
// the actor's visibility. It never widens: a non-privileged actor asking for
// unpublished or all records gets a Forbidden error, not an empty scope.
func ResolvePublishScope(actor Actor, requested string) (repository.PublishScope, error) {
	switch requested {
	case "":
		switch {
		case actor.IsSuperAdmin():
			return repository.PublishScope{All: true}, nil
		case actor.OwnerID != "":
			return repository.PublishScope{Published: true, UnpublishedOwnerID: actor.OwnerID}, nil
		default:
			return repository.PublishScope{Published: true}, nil
		}

	case PublishStatePublished:
		return repository.PublishScope{Published: true}, nil

	case PublishStateUnpublished:
		switch {
		case actor.IsSuperAdmin():
			return repository.PublishScope{Unpublished: true}, nil
		case actor.OwnerID != "":
			return repository.PublishScope{UnpublishedOwnerID: actor.OwnerID}, nil
		default:
			return repository.PublishScope{}, errorx.New(errorx.PermissionDenied,
				"Not allowed to list unpublished records")
		}

	case PublishStateAll:
		switch {
		case actor.IsSuperAdmin():
			return repository.PublishScope{All: true}, nil
		case actor.OwnerID != "":
			return repository.PublishScope{Published: true, UnpublishedOwnerID: actor.OwnerID}, nil
		default:
			return repository.PublishScope{}, errorx.New(errorx.PermissionDenied,
				"Not allowed to list unpublished records")
		}

	default:
		return repository.PublishScope{}, errorx.New(errorx.BadRequest,
			"Invalid publish state %s", requested)
	}
}

// SubmissionVisibilityFor returns the listing restriction of an actor. A nil
// result means the actor sees every submission.
func SubmissionVisibilityFor(actor Actor) *repository.SubmissionVisibility {
	if actor.IsSuperAdmin() {
		return nil
	}

	return &repository.SubmissionVisibility{
		SelfUserID:   actor.UserID,
		OwnerScopeID: actor.OwnerID,
	}
}

// CanSeeSubmission reports whether an actor may read a single submission, the
// record-level counterpart of SubmissionVisibilityFor.
func CanSeeSubmission(actor Actor, submission *entity.Submission, imageOwnerID string) bool {
	switch {
	case actor.IsSuperAdmin():
		return true
	case actor.UserID != "" && submission.UserID == actor.UserID:
		return true
	case actor.OwnerID != "" && imageOwnerID == actor.OwnerID:
		return true
	default:
		for _, state := range repository.PublicSubmissionStates {
			if submission.State == state {
				return true
			}
		}

		return false
	}
}

// canSeeReviewDetails tells whether remark and validator identity are exposed
// to the actor. Self-authorship always grants them.
func canSeeReviewDetails(actor Actor, submission *entity.Submission, imageOwnerID string) bool {
	switch {
	case actor.IsSuperAdmin():
		return true
	case actor.UserID != "" && submission.UserID == actor.UserID:
		return true
	case actor.OwnerID != "" && imageOwnerID == actor.OwnerID:
		return true
	default:
		return false
	}
}

// SubmissionView builds the redacted representation of a submission for one
// actor. Redaction only drops fields, so applying it twice is harmless.
func SubmissionView(actor Actor, submission *entity.Submission, imageOwnerID string) model.Submission {
	view := model.Submission{
		ID:          submission.ID,
		Kind:        string(submission.Kind),
		ImageID:     submission.ImageID,
		UserID:      submission.UserID,
		State:       string(submission.State),
		DateCreated: submission.DateCreated.Format(time.RFC3339),
		Payload:     submission.Payload,
	}

	if submission.DateValidated.Valid {
		view.DateValidated = submission.DateValidated.Time.Format(time.RFC3339)
	}

	if submission.PreviousSubmissionID.Valid {
		view.PreviousSubmissionID = submission.PreviousSubmissionID.Int64
	}

	if canSeeReviewDetails(actor, submission, imageOwnerID) {
		if submission.ValidatorID.Valid {
			view.ValidatorID = submission.ValidatorID.String
		}

		if submission.Remark.Valid {
			view.Remark = submission.Remark.String
		}
	}

	return view
}
