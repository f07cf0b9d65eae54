package models

import "gorm.io/gorm"

// Master-data lookup tables. All of them are plain reference rows consumed by
// the pre-project / NOC workflow; deleting one nulls the references pointing
// at it (OnDelete:SET NULL on the owning side).

type Agency struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Code        string `gorm:"size:50;uniqueIndex"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"default:true"`
}

type Parliament struct {
	gorm.Model
	Name   string `gorm:"size:255;not null"`
	Code   string `gorm:"size:50;uniqueIndex"`
	Active bool   `gorm:"default:true"`
}

// Dun is a state-assembly constituency, nested under a Parliament seat.
type Dun struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Code         string `gorm:"size:50;uniqueIndex"`
	ParliamentID *uint
	Parliament   *Parliament `gorm:"constraint:OnDelete:SET NULL"`
	Active       bool        `gorm:"default:true"`
}

type District struct {
	gorm.Model
	Name   string `gorm:"size:255;not null"`
	Code   string `gorm:"size:50"`
	Active bool   `gorm:"default:true"`
}

type Division struct {
	gorm.Model
	Name   string `gorm:"size:255;not null"`
	Code   string `gorm:"size:50"`
	Active bool   `gorm:"default:true"`
}

type ResidenCategory struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
}

type AgencyCategory struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
}

type ProjectCategory struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
}

type LandTitleStatus struct {
	gorm.Model
	Name string `gorm:"size:255;not null"`
}

type ImplementationMethod struct {
	gorm.Model
	Name string `gorm:"size:255;not null"`
}

type ProjectOwnership struct {
	gorm.Model
	Name string `gorm:"size:255;not null"`
}

// NocNote is the reason code attached to every NOC row. On final approval the
// note's name becomes the amended project's status string.
type NocNote struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
}
