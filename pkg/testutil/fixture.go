package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/georef-lab/backend/internal/entity"
	"github.com/georef-lab/backend/internal/repository"
)

// Shared fixture records. CreateFixtureDb inserts all of them into the
// database carried by the context.
var (
	SuperAdmin = entity.User{
		Base: entity.Base{ID: "super_admin"},
		Name: "super-admin",
		Role: entity.RoleSuperAdmin,
	}

	Volunteer1 = entity.User{
		Base: entity.Base{ID: "volunteer1"},
		Name: "volunteer-one",
		Role: entity.RoleUser,
	}

	Volunteer2 = entity.User{
		Base: entity.Base{ID: "volunteer2"},
		Name: "volunteer-two",
		Role: entity.RoleUser,
	}

	Validator1 = entity.User{
		Base: entity.Base{ID: "validator1"},
		Name: "validator-one",
		Role: entity.RoleUser,
	}

	OwnerAdmin1 = entity.User{
		Base: entity.Base{ID: "owner_admin1"},
		Name: "owner-admin-one",
		Role: entity.RoleUser,
	}

	Owner1 = entity.Owner{
		Base:        entity.Base{ID: "owner1"},
		Name:        "Owner One",
		Slug:        "owner-one",
		IsPublished: true,
	}

	Owner2 = entity.Owner{
		Base:        entity.Base{ID: "owner2"},
		Name:        "Owner Two",
		Slug:        "owner-two",
		IsPublished: false,
	}

	// Collection1 is published, Collection2 is not yet published, both belong
	// to Owner1. Collection3 is the published collection of Owner2.
	Collection1 = entity.Collection{
		Base:      entity.Base{ID: "collection1"},
		OwnerID:   Owner1.ID,
		Name:      "Collection One",
		DatePubli: sql.NullTime{Valid: true, Time: time.Now().Add(-24 * time.Hour)},
	}

	Collection2 = entity.Collection{
		Base:    entity.Base{ID: "collection2"},
		OwnerID: Owner1.ID,
		Name:    "Collection Two",
	}

	Collection3 = entity.Collection{
		Base:      entity.Base{ID: "collection3"},
		OwnerID:   Owner2.ID,
		Name:      "Collection Three",
		DatePubli: sql.NullTime{Valid: true, Time: time.Now().Add(-24 * time.Hour)},
	}

	Image1 = entity.Image{
		Base:         entity.Base{ID: "image1"},
		CollectionID: Collection1.ID,
		OwnerID:      Owner1.ID,
		Title:        "Image One",
		State:        entity.ImageInitial,
	}

	Image2 = entity.Image{
		Base:         entity.Base{ID: "image2"},
		CollectionID: Collection2.ID,
		OwnerID:      Owner1.ID,
		Title:        "Image Two",
		State:        entity.ImageInitial,
	}

	Image3 = entity.Image{
		Base:                    entity.Base{ID: "image3"},
		CollectionID:            Collection3.ID,
		OwnerID:                 Owner2.ID,
		Title:                   "Image Three",
		State:                   entity.ImageWaitingAlignment,
		HasExactAprioriLocation: true,
	}
)

func CreateFixtureDb(ctx context.Context) {
	insertUsers(ctx)
	insertOwners(ctx)
	insertCollections(ctx)
	insertImages(ctx)
}

func insertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range []entity.User{SuperAdmin, Volunteer1, Volunteer2, Validator1, OwnerAdmin1} {
		record := u
		if err := userRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}
}

func insertOwners(ctx context.Context) {
	ownerRepo := repository.NewOwnerRepository(nil)
	for _, o := range []entity.Owner{Owner1, Owner2} {
		record := o
		if err := ownerRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}

	memberRepo := repository.NewOwnerMemberRepository()
	members := []entity.OwnerMember{
		{UserID: Validator1.ID, OwnerID: Owner1.ID, Role: entity.OwnerValidator},
		{UserID: OwnerAdmin1.ID, OwnerID: Owner1.ID, Role: entity.OwnerAdmin},
	}
	for _, m := range members {
		record := m
		if err := memberRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}
}

func insertCollections(ctx context.Context) {
	collectionRepo := repository.NewCollectionRepository()
	for _, c := range []entity.Collection{Collection1, Collection2, Collection3} {
		record := c
		if err := collectionRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}
}

func insertImages(ctx context.Context) {
	imageRepo := repository.NewImageRepository()
	for _, img := range []entity.Image{Image1, Image2, Image3} {
		record := img
		if err := imageRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}
}
