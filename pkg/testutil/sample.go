package testutil

import (
	"context"
	"database/sql"
	"reflect"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/repository"
	"github.com/georef-lab/backend/pkg/idutil"
	"github.com/google/uuid"
)

var sampleIDGenerator *idutil.Generator

func init() {
	var err error
	sampleIDGenerator, err = idutil.NewGenerator(1)
	if err != nil {
		panic(err)
	}
}

// SampleUser creates a user with randomized fields. Non-zero fields of init
// overwrite the sample before it is persisted.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	sample := &entity.User{
		Base: entity.Base{ID: uuid.NewString()},
		Name: uuid.NewString(),
		Role: entity.RoleUser,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewUserRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleOwner(ctx context.Context, init *entity.Owner) (entity.Owner, error) {
	sample := &entity.Owner{
		Base: entity.Base{ID: uuid.NewString()},
		Name: uuid.NewString(),
		Slug: uuid.NewString(),
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewOwnerRepository(nil).Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleOwnerMember(ctx context.Context, init *entity.OwnerMember) (entity.OwnerMember, error) {
	sample := &entity.OwnerMember{
		UserID:  uuid.NewString(),
		OwnerID: uuid.NewString(),
		Role:    entity.OwnerValidator,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewOwnerMemberRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

// SampleCollection creates a published collection unless init overrides
// DatePubli.
func SampleCollection(ctx context.Context, init *entity.Collection) (entity.Collection, error) {
	sample := &entity.Collection{
		Base:      entity.Base{ID: uuid.NewString()},
		OwnerID:   uuid.NewString(),
		Name:      uuid.NewString(),
		DatePubli: sql.NullTime{Valid: true, Time: time.Now().Add(-24 * time.Hour)},
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewCollectionRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleImage(ctx context.Context, init *entity.Image) (entity.Image, error) {
	sample := &entity.Image{
		Base:         entity.Base{ID: uuid.NewString()},
		CollectionID: uuid.NewString(),
		OwnerID:      uuid.NewString(),
		Title:        uuid.NewString(),
		State:        entity.ImageInitial,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewImageRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func SampleSubmission(ctx context.Context, init *entity.Submission) (entity.Submission, error) {
	sample := &entity.Submission{
		SnowFlakeBase: entity.SnowFlakeBase{ID: sampleIDGenerator.NewID()},
		Kind:          entity.KindGeolocation,
		ImageID:       uuid.NewString(),
		UserID:        uuid.NewString(),
		State:         entity.SubmissionWaitingValidation,
		DateCreated:   time.Now(),
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := repository.NewSubmissionRepository().Create(ctx, sample); err != nil {
		return *sample, err
	}

	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
