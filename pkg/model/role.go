package model

import "time"

// Permission is a bitmask of operations a Role grants
type Permission int

const (
	PermissionViewFHIR Permission = 1 << iota
	PermissionEditFHIR
	PermissionViewUsers
	PermissionAdminUsers
	PermissionAdministrator Permission = 0x80
)

// Role names seeded by InitializeRoles
const (
	RoleUser       = "User"
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "Super Admin"
)

// Role groups permissions; exactly one role is flagged default
type Role struct {
	ID          uint       `gorm:"column:id;primaryKey"`
	Name        string     `gorm:"column:name;uniqueIndex"`
	Default     bool       `gorm:"column:default_role"`
	Permissions Permission `gorm:"column:permissions"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// Has reports whether the role grants every bit in perm
func (r *Role) Has(perm Permission) bool {
	if r == nil {
		return false
	}
	return r.Permissions&perm == perm
}

// DefaultRoles returns the roles every installation starts with.
// "User" is the default.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleUser, Default: true, Permissions: PermissionViewFHIR},
		{Name: RoleAdmin, Permissions: PermissionViewFHIR | PermissionEditFHIR | PermissionViewUsers | PermissionAdminUsers},
		{Name: RoleSuperAdmin, Permissions: 0xff},
	}
}
