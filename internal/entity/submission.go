package entity

import (
	"database/sql"
	"time"

	"github.com/georef-lab/backend/pkg/enum"
	"golang.org/x/exp/slices"
)

type SubmissionKind string

var (
	KindGeolocation = enum.New(SubmissionKind("geolocation"))
	KindCorrection  = enum.New(SubmissionKind("correction"))
	KindObservation = enum.New(SubmissionKind("observation"))
)

type SubmissionState string

var (
	SubmissionCreated           = enum.New(SubmissionState("created"))
	SubmissionWaitingValidation = enum.New(SubmissionState("waiting_validation"))
	SubmissionValidated         = enum.New(SubmissionState("validated"))
	SubmissionAccepted          = enum.New(SubmissionState("accepted"))
	SubmissionRejected          = enum.New(SubmissionState("rejected"))
	SubmissionImproved          = enum.New(SubmissionState("improved"))
	SubmissionUpdated           = enum.New(SubmissionState("updated"))
)

// Submission is the single tagged-variant record for all three contribution
// kinds. Payload carries the kind-specific data (pose for geolocations, field
// edits for corrections, text and point for observations).
type Submission struct {
	SnowFlakeBase

	Kind SubmissionKind

	ImageID string
	Image   Image `gorm:"foreignKey:ImageID"`

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	State         SubmissionState
	ValidatorID   sql.NullString
	Validator     User `gorm:"foreignKey:ValidatorID"`
	DateCreated   time.Time
	DateValidated sql.NullTime
	Remark        sql.NullString

	// PreviousSubmissionID chains a record created through the improve/update
	// flow to the record it supersedes.
	PreviousSubmissionID sql.NullInt64

	Payload Map
}

var transitions = map[SubmissionKind]map[SubmissionState][]SubmissionState{
	KindGeolocation: {
		SubmissionCreated:           {SubmissionWaitingValidation},
		SubmissionWaitingValidation: {SubmissionValidated, SubmissionRejected},
		SubmissionValidated:         {SubmissionImproved},
	},
	KindCorrection: {
		SubmissionCreated: {SubmissionAccepted, SubmissionRejected, SubmissionUpdated},
	},
	KindObservation: {
		SubmissionCreated: {SubmissionValidated, SubmissionRejected},
	},
}

var terminalReviewed = map[SubmissionKind][]SubmissionState{
	KindGeolocation: {SubmissionValidated, SubmissionRejected, SubmissionImproved},
	KindCorrection:  {SubmissionAccepted, SubmissionRejected, SubmissionUpdated},
	KindObservation: {SubmissionValidated, SubmissionRejected},
}

// pendingReview is the state a submission of each kind waits in until a
// validator reviews it.
var pendingReview = map[SubmissionKind]SubmissionState{
	KindGeolocation: SubmissionWaitingValidation,
	KindCorrection:  SubmissionCreated,
	KindObservation: SubmissionCreated,
}

// acceptedState is the state a reviewer moves a pending submission of each
// kind to when accepting it.
var acceptedState = map[SubmissionKind]SubmissionState{
	KindGeolocation: SubmissionValidated,
	KindCorrection:  SubmissionAccepted,
	KindObservation: SubmissionValidated,
}

func CanTransition(kind SubmissionKind, from, to SubmissionState) bool {
	return slices.Contains(transitions[kind][from], to)
}

func IsTerminalReviewed(kind SubmissionKind, state SubmissionState) bool {
	return slices.Contains(terminalReviewed[kind], state)
}

func PendingReviewState(kind SubmissionKind) SubmissionState {
	return pendingReview[kind]
}

func AcceptedState(kind SubmissionKind) SubmissionState {
	return acceptedState[kind]
}

// NonTerminalStates returns the states of a kind that still await review.
func NonTerminalStates(kind SubmissionKind) []SubmissionState {
	switch kind {
	case KindGeolocation:
		return []SubmissionState{SubmissionCreated, SubmissionWaitingValidation}
	default:
		return []SubmissionState{SubmissionCreated}
	}
}
