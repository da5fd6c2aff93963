package entity

import "github.com/georef-lab/backend/pkg/enum"

type GlobalRole string

var (
	RoleSuperAdmin = enum.New(GlobalRole("super_admin"))
	RoleUser       = enum.New(GlobalRole("user"))
)

var GlobalAdminRoles = []GlobalRole{RoleSuperAdmin}

type User struct {
	Base
	Name string `gorm:"unique"`
	Role GlobalRole
}
