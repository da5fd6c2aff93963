package entity

import (
	"database/sql"

	"github.com/georef-lab/backend/pkg/enum"
)

type ImageState string

var (
	ImageInitial           = enum.New(ImageState("initial"))
	ImageWaitingAlignment  = enum.New(ImageState("waiting_alignment"))
	ImageWaitingValidation = enum.New(ImageState("waiting_validation"))
	ImageValidated         = enum.New(ImageState("validated"))
	ImageImpossible        = enum.New(ImageState("impossible"))
)

type Image struct {
	Base

	CollectionID string
	Collection   Collection `gorm:"foreignKey:CollectionID"`

	// OwnerID is denormalized from the collection so that owner-scoped
	// queries need no join.
	OwnerID string
	Owner   Owner `gorm:"foreignKey:OwnerID"`

	Title string
	State ImageState

	// HasExactAprioriLocation marks images ingested with a precise location,
	// which start at waiting_alignment instead of initial.
	HasExactAprioriLocation bool

	// Advisory georeferencing lease. The lock is held by LastStartUserID and
	// expires once its age exceeds the configured TTL.
	LastStart       sql.NullTime
	LastStartUserID sql.NullString
}

// NextState returns the state an image advances to when a geolocation on it is
// validated. Validated and impossible are terminal.
func (s ImageState) NextState() ImageState {
	switch s {
	case ImageInitial:
		return ImageWaitingAlignment
	case ImageWaitingAlignment:
		return ImageWaitingValidation
	case ImageWaitingValidation:
		return ImageValidated
	default:
		return s
	}
}
