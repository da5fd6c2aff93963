package entity

import (
	"context"

	"github.com/georef-lab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Owner{},
		&OwnerMember{},
		&Collection{},
		&Image{},
		&Submission{},
	)
}
