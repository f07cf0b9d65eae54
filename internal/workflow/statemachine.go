package workflow

import (
	"fmt"
	"strings"
	"time"

	"projmon/internal/database"
	"projmon/internal/models"

	"gorm.io/gorm"
)

// MinRejectionRemarks is the minimum length of the remarks an approver must
// give when sending a pre-project back to its owner.
const MinRejectionRemarks = 10

// StateMachine drives the pre-project approval pipeline:
//
//	Waiting for Complete Form -> Waiting for Approver 1 -> Waiting for EPU Approval -> Approved
//
// with a reject path from Approver 1 back to the draft state. Every
// transition runs in its own transaction and writes an audit row.
type StateMachine struct {
	db *gorm.DB
}

func NewStateMachine(db *gorm.DB) *StateMachine {
	return &StateMachine{db: db}
}

func (m *StateMachine) config(tx *gorm.DB) (ApprovalConfig, error) {
	return LoadApprovalConfig(tx, models.SettingPreProjectApprover1, models.SettingPreProjectApprover2)
}

// SubmitToEpu moves a 100%-complete draft into the approval pipeline.
// Resubmitting an already-submitted draft by the same user is a no-op.
func (m *StateMachine) SubmitToEpu(id uint, actor Actor) (*models.PreProject, error) {
	var pp models.PreProject
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pp, id).Error; err != nil {
			return err
		}

		if pp.Status != models.PreProjectWaitingCompleteForm {
			if pp.Status == models.PreProjectWaitingApprover1 &&
				pp.SubmittedToEpuBy != nil && *pp.SubmittedToEpuBy == actor.ID {
				return nil
			}
			return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "submit"}
		}

		comp := Evaluate(&pp, database.RefResolver{DB: tx})
		if comp.Percent < 100 {
			return &IncompleteError{Percent: comp.Percent, Missing: comp.Missing}
		}

		now := time.Now()
		pp.Status = models.PreProjectWaitingApprover1
		pp.SubmittedToEpuAt = &now
		pp.SubmittedToEpuBy = &actor.ID

		if err := tx.Save(&pp).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "pre_project", pp.ID, "submit",
			"Submitted for approval: "+pp.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

// Approve records an approval at the given level. Level 1 advances the
// pre-project to EPU approval, level 2 marks it Approved. Re-approving an
// already-passed level by the same approver is a no-op.
func (m *StateMachine) Approve(id uint, level int, actor Actor, remarks string) (*models.PreProject, error) {
	if level != 1 && level != 2 {
		return nil, &ValidationError{Msg: "approval level must be 1 or 2"}
	}

	var pp models.PreProject
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pp, id).Error; err != nil {
			return err
		}

		cfg, err := m.config(tx)
		if err != nil {
			return err
		}
		if !cfg.Allowed(level, actor) {
			return &NotAuthorizedError{UserID: actor.ID, Op: fmt.Sprintf("approve at level %d", level)}
		}

		now := time.Now()

		switch level {
		case 1:
			switch pp.Status {
			case models.PreProjectWaitingApprover1:
				pp.Status = models.PreProjectWaitingEpuApproval
				pp.FirstApproverID = &actor.ID
				pp.FirstApprovedAt = &now
				pp.FirstApproverRemarks = remarks
			case models.PreProjectWaitingEpuApproval, models.PreProjectApproved, models.PreProjectNoc:
				if pp.FirstApproverID != nil && *pp.FirstApproverID == actor.ID {
					return nil
				}
				return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "approve level 1"}
			default:
				return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "approve level 1"}
			}
		case 2:
			switch pp.Status {
			case models.PreProjectWaitingEpuApproval:
				pp.Status = models.PreProjectApproved
				pp.SecondApproverID = &actor.ID
				pp.SecondApprovedAt = &now
				pp.SecondApproverRemarks = remarks
			case models.PreProjectApproved, models.PreProjectNoc:
				if pp.SecondApproverID != nil && *pp.SecondApproverID == actor.ID {
					return nil
				}
				return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "approve level 2"}
			default:
				return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "approve level 2"}
			}
		}

		if err := tx.Save(&pp).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "pre_project", pp.ID, "approve",
			fmt.Sprintf("Approved at level %d: %s", level, pp.Name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

// Reject sends a pre-project back to its owner for rework. Only allowed for
// a first-level approver while the pre-project waits for approver 1, and
// requires substantive remarks.
func (m *StateMachine) Reject(id uint, actor Actor, remarks string) (*models.PreProject, error) {
	if len(strings.TrimSpace(remarks)) < MinRejectionRemarks {
		return nil, &ValidationError{Msg: fmt.Sprintf("rejection remarks must be at least %d characters", MinRejectionRemarks)}
	}

	var pp models.PreProject
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pp, id).Error; err != nil {
			return err
		}

		cfg, err := m.config(tx)
		if err != nil {
			return err
		}
		if !cfg.Allowed(1, actor) {
			return &NotAuthorizedError{UserID: actor.ID, Op: "reject"}
		}

		if pp.Status != models.PreProjectWaitingApprover1 {
			return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "reject"}
		}

		now := time.Now()
		pp.Status = models.PreProjectWaitingCompleteForm
		pp.RejectedBy = &actor.ID
		pp.RejectedAt = &now
		pp.RejectionRemarks = remarks

		if err := tx.Save(&pp).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "pre_project", pp.ID, "reject",
			"Rejected: "+remarks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

// Delete removes a pre-project. Only drafts can be deleted; anything already
// in the pipeline is kept. The interactive confirmation code shown before
// deletion is a client-side contract, the server does not verify it.
func (m *StateMachine) Delete(id uint, actor Actor) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var pp models.PreProject
		if err := tx.First(&pp, id).Error; err != nil {
			return err
		}

		if !pp.Editable() {
			return &InvalidTransitionError{Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "delete"}
		}

		if err := tx.Delete(&pp).Error; err != nil {
			return err
		}

		database.CreateAuditLog(tx, actor.ID, "pre_project", pp.ID, "delete",
			"Deleted pre-project: "+pp.Name)
		return nil
	})
}
