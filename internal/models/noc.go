package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NocStatus string

const (
	NocWaitingApproval1 NocStatus = "Waiting for Approval 1"
	NocWaitingApproval2 NocStatus = "Waiting for Approval 2"
	NocApproved         NocStatus = "Approved"
	NocRejected         NocStatus = "Rejected"
)

// Noc (Notice of Change) batches one or more projects under a single
// amendment document. Imported projects are locked ("NOC" status) while the
// document is in flight; the pooled original budget must be reallocated
// exactly, never over- or under-allocated.
type Noc struct {
	gorm.Model

	NocNumber string    `gorm:"size:100;uniqueIndex;not null"`
	NocDate   time.Time `gorm:"not null"`
	CreatedBy uint

	// location scope: exactly one of ParliamentID / DunID
	ParliamentID *uint
	Parliament   *Parliament `gorm:"constraint:OnDelete:SET NULL"`
	DunID        *uint
	Dun          *Dun `gorm:"constraint:OnDelete:SET NULL"`

	Status NocStatus `gorm:"size:50;not null;default:'Waiting for Approval 1'"`

	FirstApproverID      *uint
	FirstApprovedAt      *time.Time
	FirstApproverRemarks string `gorm:"type:text"`

	SecondApproverID      *uint
	SecondApprovedAt      *time.Time
	SecondApproverRemarks string `gorm:"type:text"`

	RejectedBy       *uint
	RejectedAt       *time.Time
	RejectionRemarks string `gorm:"type:text"`

	// both attachments are mandatory at creation
	LetterAttachmentID      uint `gorm:"not null"`
	ProjectListAttachmentID uint `gorm:"not null"`

	Rows []NocProject `gorm:"foreignKey:NocID"`
}

// NocProject is one amendment row. ProjectID is set for rows imported from
// an existing project (originals copied from the project, read-only) and nil
// for newly declared projects (everything user-supplied). A zero NewCost on
// an imported row means "no change".
type NocProject struct {
	gorm.Model

	NocID     uint `gorm:"index;not null"`
	ProjectID *uint
	Project   *Project `gorm:"constraint:OnDelete:SET NULL"`

	Year                  int
	OriginalProjectNumber string          `gorm:"size:100"`
	OriginalName          string          `gorm:"size:255"`
	OriginalCost          decimal.Decimal `gorm:"type:decimal(20,2)"`
	OriginalAgencyID      *uint

	NewName     *string         `gorm:"size:255"`
	NewCost     decimal.Decimal `gorm:"type:decimal(20,2)"`
	NewAgencyID *uint

	NocNoteID *uint
	NocNote   *NocNote `gorm:"constraint:OnDelete:SET NULL"`
}

// Imported reports whether the row references an existing project.
func (r *NocProject) Imported() bool {
	return r.ProjectID != nil
}

// HasChange reports whether the row carries any proposed amendment.
func (r *NocProject) HasChange() bool {
	return r.NewCost.IsPositive() || r.NewName != nil || r.NewAgencyID != nil
}
