package entity

import "github.com/georef-lab/backend/pkg/enum"

// OwnerRole is the role a user holds within one owner organization. Both roles
// may review submissions on the owner's images; only owner_admin may manage
// the owner itself.
type OwnerRole string

var (
	OwnerAdmin     = enum.New(OwnerRole("owner_admin"))
	OwnerValidator = enum.New(OwnerRole("owner_validator"))
)

var OwnerReviewRoles = []OwnerRole{OwnerAdmin, OwnerValidator}

type Owner struct {
	Base
	Name        string
	Slug        string `gorm:"unique"`
	IsPublished bool
}

// OwnerMember gives a user an affiliation to an owner organization. A user has
// at most one membership.
type OwnerMember struct {
	UserID  string `gorm:"primaryKey"`
	User    User   `gorm:"foreignKey:UserID"`
	OwnerID string `gorm:"primaryKey"`
	Owner   Owner  `gorm:"foreignKey:OwnerID"`
	Role    OwnerRole
}

func (m *OwnerMember) TableName() string {
	return "owner_members"
}
