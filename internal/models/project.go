package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fixed project lifecycle statuses. A project amended by an approved NOC
// instead carries the NOC note's name as its status, so Status is a plain
// string rather than a closed enum.
const (
	ProjectActive    = "Active"
	ProjectNocLocked = "NOC"
	ProjectCancelled = "Cancelled"
)

// Project is the immutable record produced by transferring an approved
// PreProject. It is never deleted; cancellation is a status change. Only an
// approved NOC may amend its name, cost or implementing agency.
type Project struct {
	gorm.Model

	// assigned by the external planning system, exactly once
	ProjectNumber string `gorm:"size:100;uniqueIndex;not null"`
	// unique index is the exactly-once transfer guard
	PreProjectID uint        `gorm:"uniqueIndex;not null"`
	PreProject   *PreProject `gorm:"constraint:OnDelete:SET NULL"`
	Year         int         `gorm:"not null"`

	Name                 string `gorm:"size:255;not null"`
	Scope                string `gorm:"type:text"`
	ImplementationPeriod string `gorm:"size:100"`
	JkkkName             string `gorm:"size:255"`

	ResidenCategoryID      *uint
	AgencyCategoryID       *uint
	ProjectCategoryID      *uint
	DivisionID             *uint
	DistrictID             *uint
	LandTitleStatusID      *uint
	ImplementingAgencyID   *uint
	ImplementingAgency     *Agency `gorm:"foreignKey:ImplementingAgencyID;constraint:OnDelete:SET NULL"`
	ImplementationMethodID *uint
	ProjectOwnershipID     *uint

	ParliamentID     *uint
	DunID            *uint
	SiteParliamentID *uint
	SiteDistrictID   *uint
	SiteDunID        *uint

	ActualCost        decimal.Decimal `gorm:"type:decimal(20,2)"`
	ConsultationCost  decimal.Decimal `gorm:"type:decimal(20,2)"`
	LssInspectionCost decimal.Decimal `gorm:"type:decimal(20,2)"`
	SstCost           decimal.Decimal `gorm:"type:decimal(20,2)"`
	OtherCost         decimal.Decimal `gorm:"type:decimal(20,2)"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(20,2)"`

	Status string `gorm:"size:255;not null;default:'Active'"`

	ApprovalDate  *time.Time
	TransferredAt time.Time
}
