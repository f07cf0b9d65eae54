package workflow

import (
	"errors"
	"log"
	"strings"
	"time"

	"projmon/internal/database"
	"projmon/internal/models"

	"gorm.io/gorm"
)

// TransferEngine promotes an approved pre-project into an immutable project
// record. The unique index on projects.pre_project_id is the authoritative
// exactly-once guard; a duplicate insert surfaces as AlreadyTransferredError.
type TransferEngine struct {
	db *gorm.DB
}

func NewTransferEngine(db *gorm.DB) *TransferEngine {
	return &TransferEngine{db: db}
}

type TransferRecord struct {
	PreProjectID  uint   `json:"pre_project_id"`
	ProjectNumber string `json:"project_number"`
	Year          int    `json:"year"`
}

type TransferFailure struct {
	PreProjectID uint   `json:"pre_project_id"`
	Name         string `json:"name"`
	Error        string `json:"error"`
}

type TransferSummary struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Failures  []TransferFailure `json:"failures"`
}

// Transfer creates the project row for an approved pre-project. The project
// number and year come from the external planning system. The whole copy is
// a single transaction; the originating pre-project row is left untouched.
func (e *TransferEngine) Transfer(preProjectID uint, projectNumber string, year int, actor Actor) (*models.Project, error) {
	projectNumber = strings.TrimSpace(projectNumber)
	if projectNumber == "" {
		return nil, &ValidationError{Msg: "project number is required"}
	}
	if year <= 0 {
		return nil, &ValidationError{Msg: "year is required"}
	}

	var project models.Project
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var pp models.PreProject
		if err := tx.First(&pp, preProjectID).Error; err != nil {
			return err
		}

		if pp.Status != models.PreProjectApproved {
			return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "transfer"}
		}

		project = models.Project{
			ProjectNumber: projectNumber,
			PreProjectID:  pp.ID,
			Year:          year,

			Name:                 pp.Name,
			Scope:                pp.Scope,
			ImplementationPeriod: pp.ImplementationPeriod,
			JkkkName:             pp.JkkkName,

			ResidenCategoryID:      pp.ResidenCategoryID,
			AgencyCategoryID:       pp.AgencyCategoryID,
			ProjectCategoryID:      pp.ProjectCategoryID,
			DivisionID:             pp.DivisionID,
			DistrictID:             pp.DistrictID,
			LandTitleStatusID:      pp.LandTitleStatusID,
			ImplementingAgencyID:   pp.ImplementingAgencyID,
			ImplementationMethodID: pp.ImplementationMethodID,
			ProjectOwnershipID:     pp.ProjectOwnershipID,

			ParliamentID:     pp.ParliamentID,
			DunID:            pp.DunID,
			SiteParliamentID: pp.SiteParliamentID,
			SiteDistrictID:   pp.SiteDistrictID,
			SiteDunID:        pp.SiteDunID,

			ActualCost:        pp.ActualCost,
			ConsultationCost:  pp.ConsultationCost,
			LssInspectionCost: pp.LssInspectionCost,
			SstCost:           pp.SstCost,
			OtherCost:         pp.OtherCost,
			TotalCost:         pp.TotalCost,

			Status:        models.ProjectActive,
			ApprovalDate:  pp.SecondApprovedAt,
			TransferredAt: time.Now(),
		}

		if err := tx.Create(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &AlreadyTransferredError{PreProjectID: pp.ID}
			}
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "project", project.ID, "transfer",
			"Transferred from pre-project "+pp.Name+" as "+projectNumber)
		return nil
	})
	if err != nil {
		log.Printf("transfer failed for pre-project %d (%s): %v",
			preProjectID, e.preProjectName(preProjectID), err)
		return nil, err
	}
	return &project, nil
}

func (e *TransferEngine) preProjectName(id uint) string {
	var pp models.PreProject
	if err := e.db.First(&pp, id).Error; err != nil {
		return ""
	}
	return pp.Name
}

// BulkTransfer back-fills a batch of already-approved pre-projects. It keeps
// going after individual failures and reports a per-record summary.
func (e *TransferEngine) BulkTransfer(records []TransferRecord, actor Actor) TransferSummary {
	summary := TransferSummary{Failures: []TransferFailure{}}

	for _, rec := range records {
		if _, err := e.Transfer(rec.PreProjectID, rec.ProjectNumber, rec.Year, actor); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, TransferFailure{
				PreProjectID: rec.PreProjectID,
				Name:         e.preProjectName(rec.PreProjectID),
				Error:        err.Error(),
			})
			continue
		}
		summary.Succeeded++
	}

	return summary
}
