package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationEngine builds and drives NOC (Notice of Change) documents. A NOC
// pools the original costs of the projects it imports and must reallocate
// that pool exactly: submission is blocked while any money remains
// unallocated or the pool is overdrawn.
type AllocationEngine struct {
	db *gorm.DB
}

func NewAllocationEngine(db *gorm.DB) *AllocationEngine {
	return &AllocationEngine{db: db}
}

func (e *AllocationEngine) config(tx *gorm.DB) (ApprovalConfig, error) {
	return LoadApprovalConfig(tx, models.SettingNocApprover1, models.SettingNocApprover2)
}

// NocRowInput is one amendment row. ProjectID set: import an existing Active
// project, originals are taken from the project row and the submitted
// originals are ignored. ProjectID nil: a newly declared project, every field
// user-supplied and a positive new cost mandatory.
type NocRowInput struct {
	ProjectID *uint `json:"project_id"`

	Year                  int             `json:"year"`
	OriginalProjectNumber string          `json:"original_project_number"`
	OriginalName          string          `json:"original_name"`
	OriginalCost          decimal.Decimal `json:"original_cost"`
	OriginalAgencyID      *uint           `json:"original_agency_id"`

	NewName     *string         `json:"new_name"`
	NewCost     decimal.Decimal `json:"new_cost"`
	NewAgencyID *uint           `json:"new_agency_id"`

	NocNoteID *uint `json:"noc_note_id"`
}

type NocInput struct {
	NocDate                 time.Time     `json:"noc_date"`
	ParliamentID            *uint         `json:"parliament_id"`
	DunID                   *uint         `json:"dun_id"`
	LetterAttachmentID      uint          `json:"letter_attachment_id"`
	ProjectListAttachmentID uint          `json:"project_list_attachment_id"`
	Rows                    []NocRowInput `json:"rows"`
}

// CreateNoc validates and persists a NOC, locking every imported project with
// the "NOC" status in the same transaction. Lock, note, row-completeness and
// the zero-remaining budget equality are all checked against the
// authoritative row set inside the transaction, never against client totals.
func (e *AllocationEngine) CreateNoc(in NocInput, actor Actor) (*models.Noc, error) {
	if (in.ParliamentID != nil) == (in.DunID != nil) {
		return nil, &ValidationError{Msg: "exactly one of parliament or DUN scope is required"}
	}
	if len(in.Rows) == 0 {
		return nil, &ValidationError{Msg: "a NOC requires at least one project row"}
	}

	var noc models.Noc
	err := e.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range []uint{in.LetterAttachmentID, in.ProjectListAttachmentID} {
			var att models.Attachment
			if id == 0 || tx.First(&att, id).Error != nil {
				return &ValidationError{Msg: "the letter and project list attachments are both required"}
			}
		}

		rows := make([]models.NocProject, 0, len(in.Rows))
		pool := decimal.Zero
		allocated := decimal.Zero

		for i, rin := range in.Rows {
			if rin.NewCost.IsNegative() {
				return &ValidationError{Msg: fmt.Sprintf("row %d: the new cost cannot be negative", i+1)}
			}
			if rin.NocNoteID == nil {
				return &ValidationError{Msg: fmt.Sprintf("row %d: a NOC note is required", i+1)}
			}
			var note models.NocNote
			if err := tx.First(&note, *rin.NocNoteID).Error; err != nil {
				return &ValidationError{Msg: fmt.Sprintf("row %d: NOC note not found", i+1)}
			}

			row := models.NocProject{
				Year:        rin.Year,
				NewName:     rin.NewName,
				NewCost:     rin.NewCost,
				NewAgencyID: rin.NewAgencyID,
				NocNoteID:   rin.NocNoteID,
			}

			if rin.ProjectID != nil {
				// lock in a single conditional update; zero rows affected
				// means the project is gone or held by another open NOC
				res := tx.Model(&models.Project{}).
					Where("id = ? AND status = ?", *rin.ProjectID, models.ProjectActive).
					Update("status", models.ProjectNocLocked)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					var p models.Project
					if err := tx.First(&p, *rin.ProjectID).Error; err != nil {
						return err
					}
					if p.Status == models.ProjectNocLocked {
						return &AlreadyLockedError{ProjectID: p.ID}
					}
					return &ValidationError{Msg: fmt.Sprintf("project %s is not Active", p.ProjectNumber)}
				}

				var p models.Project
				if err := tx.First(&p, *rin.ProjectID).Error; err != nil {
					return err
				}
				row.ProjectID = rin.ProjectID
				row.OriginalProjectNumber = p.ProjectNumber
				row.OriginalName = p.Name
				row.OriginalCost = p.TotalCost
				row.OriginalAgencyID = p.ImplementingAgencyID
				if row.Year == 0 {
					row.Year = p.Year
				}

				pool = pool.Add(p.TotalCost)
			} else {
				if rin.NewName == nil || strings.TrimSpace(*rin.NewName) == "" ||
					!rin.NewCost.IsPositive() || rin.NewAgencyID == nil || rin.Year == 0 {
					return &ValidationError{Msg: fmt.Sprintf("row %d: a newly declared project needs a name, agency, year and a positive cost", i+1)}
				}
				row.OriginalName = rin.OriginalName
				row.OriginalProjectNumber = rin.OriginalProjectNumber
			}

			if rin.NewCost.IsPositive() {
				allocated = allocated.Add(rin.NewCost)
			}

			rows = append(rows, row)
		}

		if remaining := pool.Sub(allocated); !remaining.IsZero() {
			return &InvariantViolationError{Remaining: remaining}
		}

		number, err := nextNocNumber(tx, in.NocDate.Year())
		if err != nil {
			return err
		}

		noc = models.Noc{
			NocNumber:               number,
			NocDate:                 in.NocDate,
			CreatedBy:               actor.ID,
			ParliamentID:            in.ParliamentID,
			DunID:                   in.DunID,
			Status:                  models.NocWaitingApproval1,
			LetterAttachmentID:      in.LetterAttachmentID,
			ProjectListAttachmentID: in.ProjectListAttachmentID,
			Rows:                    rows,
		}

		if err := tx.Create(&noc).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "noc", noc.ID, "create",
			"Created "+noc.NocNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &noc, nil
}

// nextNocNumber allocates the next sequence within the year. The sequence
// derives from the highest number still on file, never a row count: deleting
// an earlier NOC must not regress the sequence onto a number a live NOC
// still holds.
func nextNocNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("NOC/%d/", year)

	var last []string
	err := tx.Model(&models.Noc{}).Unscoped().
		Where("noc_number LIKE ?", prefix+"%").
		Order("id desc").
		Limit(1).
		Pluck("noc_number", &last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if len(last) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(last[0], prefix))
		if err != nil {
			return "", fmt.Errorf("malformed NOC number %q: %w", last[0], err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// Approve records a NOC approval. Level 1 advances to the second stage;
// level 2 commits every row's amendments onto the underlying projects in the
// same transaction. Re-approving a passed level by the same approver is a
// no-op.
func (e *AllocationEngine) Approve(id uint, level int, actor Actor, remarks string) (*models.Noc, error) {
	if level != 1 && level != 2 {
		return nil, &ValidationError{Msg: "approval level must be 1 or 2"}
	}

	var noc models.Noc
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Rows").First(&noc, id).Error; err != nil {
			return err
		}

		cfg, err := e.config(tx)
		if err != nil {
			return err
		}
		if !cfg.Allowed(level, actor) {
			return &NotAuthorizedError{UserID: actor.ID, Op: fmt.Sprintf("approve NOC at level %d", level)}
		}

		now := time.Now()

		switch level {
		case 1:
			switch noc.Status {
			case models.NocWaitingApproval1:
				noc.Status = models.NocWaitingApproval2
				noc.FirstApproverID = &actor.ID
				noc.FirstApprovedAt = &now
				noc.FirstApproverRemarks = remarks
			case models.NocWaitingApproval2, models.NocApproved:
				if noc.FirstApproverID != nil && *noc.FirstApproverID == actor.ID {
					return nil
				}
				return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "approve level 1"}
			default:
				return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "approve level 1"}
			}
		case 2:
			switch noc.Status {
			case models.NocWaitingApproval2:
				noc.Status = models.NocApproved
				noc.SecondApproverID = &actor.ID
				noc.SecondApprovedAt = &now
				noc.SecondApproverRemarks = remarks
				if err := e.commitRows(tx, &noc, actor); err != nil {
					return err
				}
			case models.NocApproved:
				if noc.SecondApproverID != nil && *noc.SecondApproverID == actor.ID {
					return nil
				}
				return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "approve level 2"}
			default:
				return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "approve level 2"}
			}
		}

		if err := tx.Omit("Rows").Save(&noc).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "noc", noc.ID, "approve",
			fmt.Sprintf("Approved %s at level %d", noc.NocNumber, level))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &noc, nil
}

// commitRows is the final-approval fan-out. Amended projects get their new
// name/cost/agency and the row's NOC note name as status; imported rows with
// no change are superseded (their budget moved elsewhere) and cancelled, each
// regenerating a successor pre-project draft carrying the old cost snapshot.
// Newly declared rows enter the pipeline as fresh pre-project drafts.
func (e *AllocationEngine) commitRows(tx *gorm.DB, noc *models.Noc, actor Actor) error {
	for i := range noc.Rows {
		row := &noc.Rows[i]

		if !row.Imported() {
			draft := models.PreProject{
				Name:                 deref(row.NewName),
				ImplementingAgencyID: row.NewAgencyID,
				ParliamentID:         noc.ParliamentID,
				DunID:                noc.DunID,
				ActualCost:           row.NewCost,
				Status:               models.PreProjectWaitingCompleteForm,
				CreatedBy:            noc.CreatedBy,
			}
			draft.RecomputeTotal()
			if err := tx.Create(&draft).Error; err != nil {
				return err
			}
			continue
		}

		var project models.Project
		if err := tx.First(&project, *row.ProjectID).Error; err != nil {
			return err
		}

		if row.HasChange() {
			if row.NewCost.IsPositive() {
				project.ActualCost = row.NewCost
				project.ConsultationCost = decimal.Zero
				project.LssInspectionCost = decimal.Zero
				project.SstCost = decimal.Zero
				project.OtherCost = decimal.Zero
				project.TotalCost = row.NewCost
			}
			if row.NewName != nil {
				project.Name = *row.NewName
			}
			if row.NewAgencyID != nil {
				project.ImplementingAgencyID = row.NewAgencyID
			}

			// amendment reason becomes the project's status; a since-deleted
			// note renders as Active rather than failing the whole commit
			project.Status = models.ProjectActive
			if row.NocNoteID != nil {
				var note models.NocNote
				if err := tx.First(&note, *row.NocNoteID).Error; err == nil {
					project.Status = note.Name
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}

			if err := tx.Model(&models.PreProject{}).
				Where("id = ?", project.PreProjectID).
				Update("status", models.PreProjectNoc).Error; err != nil {
				return err
			}
		} else {
			snapshot := project.TotalCost
			project.Status = models.ProjectCancelled

			successor := models.PreProject{
				Name:                 project.Name,
				ImplementingAgencyID: project.ImplementingAgencyID,
				ParliamentID:         project.ParliamentID,
				DunID:                project.DunID,
				OriginalProjectCost:  snapshot,
				Status:               models.PreProjectWaitingCompleteForm,
				CreatedBy:            noc.CreatedBy,
			}
			if err := tx.Create(&successor).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "project", project.ID, "noc_amend",
			"Amended by "+noc.NocNumber)
	}
	return nil
}

// Reject discards the NOC at either approval stage. Every imported project
// is released back to Active with no mutation; the NOC row is kept for audit.
func (e *AllocationEngine) Reject(id uint, actor Actor, remarks string) (*models.Noc, error) {
	var noc models.Noc
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Rows").First(&noc, id).Error; err != nil {
			return err
		}

		cfg, err := e.config(tx)
		if err != nil {
			return err
		}

		var level int
		switch noc.Status {
		case models.NocWaitingApproval1:
			level = 1
		case models.NocWaitingApproval2:
			level = 2
		default:
			return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "reject"}
		}

		if !cfg.Allowed(level, actor) {
			return &NotAuthorizedError{UserID: actor.ID, Op: "reject NOC"}
		}

		if err := e.releaseProjects(tx, noc.Rows); err != nil {
			return err
		}

		now := time.Now()
		noc.Status = models.NocRejected
		noc.RejectedBy = &actor.ID
		noc.RejectedAt = &now
		noc.RejectionRemarks = remarks

		if err := tx.Omit("Rows").Save(&noc).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "noc", noc.ID, "reject",
			"Rejected "+noc.NocNumber+": "+remarks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &noc, nil
}

// Delete permanently removes a pre-approval NOC together with its rows,
// rolling every imported project back to Active.
func (e *AllocationEngine) Delete(id uint, actor Actor) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		var noc models.Noc
		if err := tx.Preload("Rows").First(&noc, id).Error; err != nil {
			return err
		}

		if noc.Status != models.NocWaitingApproval1 && noc.Status != models.NocWaitingApproval2 {
			return &InvalidTransitionError{Entity: "noc", ID: noc.ID, From: string(noc.Status), Op: "delete"}
		}
		if noc.CreatedBy != actor.ID && !actor.Admin {
			return &NotAuthorizedError{UserID: actor.ID, Op: "delete NOC"}
		}

		if err := e.releaseProjects(tx, noc.Rows); err != nil {
			return err
		}

		if err := tx.Unscoped().Where("noc_id = ?", noc.ID).Delete(&models.NocProject{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&noc).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "noc", noc.ID, "delete",
			"Deleted "+noc.NocNumber)
		return nil
	})
}

func (e *AllocationEngine) releaseProjects(tx *gorm.DB, rows []models.NocProject) error {
	for _, row := range rows {
		if !row.Imported() {
			continue
		}
		if err := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", *row.ProjectID, models.ProjectNocLocked).
			Update("status", models.ProjectActive).Error; err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
