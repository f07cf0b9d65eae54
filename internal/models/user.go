package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleParliament UserRole = "parliament"
	RoleDun        UserRole = "dun"
	RoleAgency     UserRole = "agency"
	RoleEpu        UserRole = "epu"
	RoleViewer     UserRole = "viewer"
)

type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null"`

	// stakeholder affiliation, depends on role
	ParliamentID *uint
	DunID        *uint
	AgencyID     *uint
}
