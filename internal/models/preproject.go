package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PreProjectStatus string

const (
	PreProjectWaitingCompleteForm PreProjectStatus = "Waiting for Complete Form"
	PreProjectWaitingApprover1    PreProjectStatus = "Waiting for Approver 1"
	PreProjectWaitingEpuApproval  PreProjectStatus = "Waiting for EPU Approval"
	PreProjectApproved            PreProjectStatus = "Approved"
	PreProjectNoc                 PreProjectStatus = "NOC"
)

// PreProject is a draft project proposal. It is edited until its completeness
// reaches 100%, then walks the two-stage approval pipeline and finally gets
// promoted into a Project by the transfer engine. After promotion the row is
// kept as a historical reference and never advances again.
type PreProject struct {
	gorm.Model

	Name                 string `gorm:"size:255;not null"`
	Scope                string `gorm:"type:text"`
	ImplementationPeriod string `gorm:"size:100"`
	JkkkName             string `gorm:"size:255"`

	// classification, all optional; deleted master data nulls the reference
	ResidenCategoryID      *uint
	ResidenCategory        *ResidenCategory `gorm:"constraint:OnDelete:SET NULL"`
	AgencyCategoryID       *uint
	AgencyCategory         *AgencyCategory `gorm:"constraint:OnDelete:SET NULL"`
	ProjectCategoryID      *uint
	ProjectCategory        *ProjectCategory `gorm:"constraint:OnDelete:SET NULL"`
	DivisionID             *uint
	Division               *Division `gorm:"constraint:OnDelete:SET NULL"`
	DistrictID             *uint
	District               *District `gorm:"constraint:OnDelete:SET NULL"`
	LandTitleStatusID      *uint
	LandTitleStatus        *LandTitleStatus `gorm:"constraint:OnDelete:SET NULL"`
	ImplementingAgencyID   *uint
	ImplementingAgency     *Agency `gorm:"foreignKey:ImplementingAgencyID;constraint:OnDelete:SET NULL"`
	ImplementationMethodID *uint
	ImplementationMethod   *ImplementationMethod `gorm:"constraint:OnDelete:SET NULL"`
	ProjectOwnershipID     *uint
	ProjectOwnership       *ProjectOwnership `gorm:"constraint:OnDelete:SET NULL"`

	// basic location: exactly one of ParliamentID / DunID
	ParliamentID *uint
	Parliament   *Parliament `gorm:"constraint:OnDelete:SET NULL"`
	DunID        *uint
	Dun          *Dun `gorm:"constraint:OnDelete:SET NULL"`

	// physical site location
	SiteParliamentID *uint
	SiteDistrictID   *uint
	SiteDunID        *uint

	ActualCost        decimal.Decimal `gorm:"type:decimal(20,2)"`
	ConsultationCost  decimal.Decimal `gorm:"type:decimal(20,2)"`
	LssInspectionCost decimal.Decimal `gorm:"type:decimal(20,2)"`
	SstCost           decimal.Decimal `gorm:"type:decimal(20,2)"`
	OtherCost         decimal.Decimal `gorm:"type:decimal(20,2)"`
	// derived, recomputed on every write, never trusted from the client
	TotalCost decimal.Decimal `gorm:"type:decimal(20,2)"`
	// cost snapshot of a cancelled predecessor project, set when a NOC
	// regenerates this draft; no cap rule is enforced against it (the
	// business rule was never confirmed)
	OriginalProjectCost decimal.Decimal `gorm:"type:decimal(20,2)"`

	// tri-state flags: nil = unset
	SiteLayout           *bool
	ConsultationService  *bool
	StateGovernmentAsset *bool
	BillOfQuantity       *bool
	// mandatory when BillOfQuantity is true
	BoqAttachmentID *uint

	Status PreProjectStatus `gorm:"size:50;not null;default:'Waiting for Complete Form'"`

	SubmittedToEpuAt *time.Time
	SubmittedToEpuBy *uint

	FirstApproverID      *uint
	FirstApprovedAt      *time.Time
	FirstApproverRemarks string `gorm:"type:text"`

	SecondApproverID      *uint
	SecondApprovedAt      *time.Time
	SecondApproverRemarks string `gorm:"type:text"`

	RejectedBy       *uint
	RejectedAt       *time.Time
	RejectionRemarks string `gorm:"type:text"`

	CreatedBy uint
}

// RecomputeTotal derives TotalCost from the five cost components.
func (p *PreProject) RecomputeTotal() {
	p.TotalCost = p.ActualCost.
		Add(p.ConsultationCost).
		Add(p.LssInspectionCost).
		Add(p.SstCost).
		Add(p.OtherCost)
}

// Editable reports whether the draft can still be modified or deleted.
func (p *PreProject) Editable() bool {
	return p.Status == PreProjectWaitingCompleteForm
}
