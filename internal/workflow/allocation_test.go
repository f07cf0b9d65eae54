package workflow

import (
	"testing"
	"time"

	"projmon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nocDate() time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestCreateNocExactAllocation(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)

	p1 := activeProject(t, db, md, "PROJ/2026/101", "3000.00")
	p2 := activeProject(t, db, md, "PROJ/2026/102", "2000.00")
	letter, list := nocAttachments(t, db)

	engine := NewAllocationEngine(db)
	noc, err := engine.CreateNoc(NocInput{
		NocDate:                 nocDate(),
		ParliamentID:            &md.Parliament.ID,
		LetterAttachmentID:      letter,
		ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p1.ID, NewCost: dec("3000.00"), NewName: ptr("Jetty upgrade phase 2"), NocNoteID: &md.Note.ID},
			{ProjectID: &p2.ID, NewCost: dec("2000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	assert.Equal(t, models.NocWaitingApproval1, noc.Status)
	assert.Contains(t, noc.NocNumber, "NOC/2026/")

	// both projects locked while the NOC is in flight
	for _, id := range []uint{p1.ID, p2.ID} {
		var p models.Project
		require.NoError(t, db.First(&p, id).Error)
		assert.Equal(t, models.ProjectNocLocked, p.Status)
	}

	// originals are copied from the projects, not trusted from the caller
	var rows []models.NocProject
	require.NoError(t, db.Where("noc_id = ?", noc.ID).Order("id asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "PROJ/2026/101", rows[0].OriginalProjectNumber)
	assert.True(t, rows[0].OriginalCost.Equal(dec("3000.00")))
}

func TestCreateNocOverAllocationBlocked(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)

	p := activeProject(t, db, md, "PROJ/2026/103", "5000.00")
	letter, list := nocAttachments(t, db)

	engine := NewAllocationEngine(db)
	_, err := engine.CreateNoc(NocInput{
		NocDate:                 nocDate(),
		ParliamentID:            &md.Parliament.ID,
		LetterAttachmentID:      letter,
		ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("6000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})

	var invariant *InvariantViolationError
	require.ErrorAs(t, err, &invariant)
	assert.Contains(t, invariant.Error(), "over-allocated by 1000.00")

	// the failed transaction must not leave the project locked
	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.ProjectActive, reloaded.Status)
}

func TestCreateNocOneCentOff(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	engine := NewAllocationEngine(db)

	short := activeProject(t, db, md, "PROJ/2026/104", "100.00")
	_, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &short.ID, NewCost: dec("99.99"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	var invariant *InvariantViolationError
	require.ErrorAs(t, err, &invariant)
	assert.Contains(t, invariant.Error(), "under-allocated by 0.01")

	excess := activeProject(t, db, md, "PROJ/2026/105", "100.00")
	_, err = engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &excess.ID, NewCost: dec("100.01"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &invariant)
	assert.Contains(t, invariant.Error(), "over-allocated by 0.01")
}

func TestCreateNocRowValidation(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	engine := NewAllocationEngine(db)
	p := activeProject(t, db, md, "PROJ/2026/106", "1000.00")

	var validation *ValidationError

	// a row without a NOC note
	_, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00")},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &validation)

	// a newly declared project without a cost is incomplete, not "no change"
	_, err = engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{NewName: ptr("Community hall"), NewAgencyID: &md.Agency.ID, Year: 2026, NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &validation)

	// missing attachments
	_, err = engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &validation)

	// ambiguous scope
	_, err = engine.CreateNoc(NocInput{
		NocDate:            nocDate(),
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &validation)

	// a negative new cost is rejected outright, never stored as "no change"
	_, err = engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("-1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.ErrorAs(t, err, &validation)

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.ProjectActive, reloaded.Status)
}

func TestCreateNocDoubleImportBlocked(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	engine := NewAllocationEngine(db)

	p := activeProject(t, db, md, "PROJ/2026/107", "1000.00")

	_, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	_, err = engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})

	var locked *AlreadyLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, p.ID, locked.ProjectID)
}

// The fan-out scenario pools two projects: the first is amended down, the
// second is fully superseded, and the freed budget funds a newly declared
// project.
func TestNocApprovalFanOut(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	setApprovers(t, db, models.SettingNocApprover1, 30)
	setApprovers(t, db, models.SettingNocApprover2, 40)
	engine := NewAllocationEngine(db)

	amended := activeProject(t, db, md, "PROJ/2026/108", "3000.00")
	superseded := activeProject(t, db, md, "PROJ/2026/109", "2000.00")

	noc, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &amended.ID, NewCost: dec("2500.00"), NewName: ptr("Jetty upgrade (revised)"), NewAgencyID: &md.Agency.ID, NocNoteID: &md.Note.ID},
			{ProjectID: &superseded.ID, NocNoteID: &md.Note.ID},
			{NewName: ptr("Community hall"), NewCost: dec("2500.00"), NewAgencyID: &md.Agency.ID, Year: 2026, NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	_, err = engine.Approve(noc.ID, 1, Actor{ID: 30}, "")
	require.NoError(t, err)
	out, err := engine.Approve(noc.ID, 2, Actor{ID: 40}, "final")
	require.NoError(t, err)
	assert.Equal(t, models.NocApproved, out.Status)

	// amended project: new cost, name, agency, status = note name
	var p models.Project
	require.NoError(t, db.First(&p, amended.ID).Error)
	assert.True(t, p.TotalCost.Equal(dec("2500.00")), "got %s", p.TotalCost)
	assert.True(t, p.ActualCost.Equal(dec("2500.00")))
	assert.Equal(t, "Jetty upgrade (revised)", p.Name)
	assert.Equal(t, "Cost Revision", p.Status)

	// its origin pre-project carries the NOC side-channel status
	var origin models.PreProject
	require.NoError(t, db.First(&origin, p.PreProjectID).Error)
	assert.Equal(t, models.PreProjectNoc, origin.Status)

	// superseded project: budget moved elsewhere, cancelled, data untouched.
	// A fresh struct per query: reusing p would leak its primary key into
	// the WHERE clause.
	var sp models.Project
	require.NoError(t, db.First(&sp, superseded.ID).Error)
	assert.Equal(t, models.ProjectCancelled, sp.Status)
	assert.True(t, sp.TotalCost.Equal(dec("2000.00")))

	// the cancelled project regenerates a successor draft carrying the
	// old cost snapshot, and the new row enters the pipeline as a draft
	var drafts []models.PreProject
	require.NoError(t, db.
		Where("status = ?", models.PreProjectWaitingCompleteForm).
		Order("id asc").Find(&drafts).Error)
	require.Len(t, drafts, 2)
	assert.True(t, drafts[0].OriginalProjectCost.Equal(dec("2000.00")), "got %s", drafts[0].OriginalProjectCost)
	assert.Equal(t, "Community hall", drafts[1].Name)
	assert.True(t, drafts[1].TotalCost.Equal(dec("2500.00")), "got %s", drafts[1].TotalCost)
}

func TestNocApprovalIdempotent(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	setApprovers(t, db, models.SettingNocApprover1, 30)
	setApprovers(t, db, models.SettingNocApprover2, 40)
	engine := NewAllocationEngine(db)

	p := activeProject(t, db, md, "PROJ/2026/110", "1000.00")
	noc, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NewName: ptr("Renamed"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	_, err = engine.Approve(noc.ID, 1, Actor{ID: 30}, "")
	require.NoError(t, err)
	_, err = engine.Approve(noc.ID, 1, Actor{ID: 30}, "")
	require.NoError(t, err)

	_, err = engine.Approve(noc.ID, 2, Actor{ID: 40}, "")
	require.NoError(t, err)
	// a second final approval must not fan out twice
	_, err = engine.Approve(noc.ID, 2, Actor{ID: 40}, "")
	require.NoError(t, err)

	// an unauthorized user is rejected outright
	_, err = engine.Approve(noc.ID, 2, Actor{ID: 99}, "")
	var notAuth *NotAuthorizedError
	require.ErrorAs(t, err, &notAuth)
}

func TestNocRejectionReleasesProjects(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	setApprovers(t, db, models.SettingNocApprover1, 30)
	engine := NewAllocationEngine(db)

	p := activeProject(t, db, md, "PROJ/2026/111", "1000.00")
	original := p.Name

	noc, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NewName: ptr("Should never apply"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	out, err := engine.Reject(noc.ID, Actor{ID: 30}, "insufficient justification")
	require.NoError(t, err)
	assert.Equal(t, models.NocRejected, out.Status)

	// rejection lands in its own columns, never in the approval record
	require.NotNil(t, out.RejectedBy)
	assert.Equal(t, uint(30), *out.RejectedBy)
	assert.NotNil(t, out.RejectedAt)
	assert.Equal(t, "insufficient justification", out.RejectionRemarks)
	assert.Nil(t, out.FirstApproverID)
	assert.Nil(t, out.SecondApproverID)

	// project released with zero mutation
	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.ProjectActive, reloaded.Status)
	assert.Equal(t, original, reloaded.Name)
	assert.True(t, reloaded.TotalCost.Equal(dec("1000.00")))

	// the rejected NOC is kept for audit
	var count int64
	db.Model(&models.Noc{}).Where("id = ?", noc.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// terminal: cannot approve a rejected NOC
	_, err = engine.Approve(noc.ID, 1, Actor{ID: 30}, "")
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}

func TestNocDeleteRollsBack(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	engine := NewAllocationEngine(db)

	p := activeProject(t, db, md, "PROJ/2026/112", "1000.00")
	noc, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	// only the creator or an admin may delete
	err = engine.Delete(noc.ID, Actor{ID: 99})
	var notAuth *NotAuthorizedError
	require.ErrorAs(t, err, &notAuth)

	require.NoError(t, engine.Delete(noc.ID, Actor{ID: 5}))

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.ProjectActive, reloaded.Status)

	var nocCount, rowCount int64
	db.Unscoped().Model(&models.Noc{}).Where("id = ?", noc.ID).Count(&nocCount)
	db.Unscoped().Model(&models.NocProject{}).Where("noc_id = ?", noc.ID).Count(&rowCount)
	assert.Zero(t, nocCount)
	assert.Zero(t, rowCount)
}

func TestNocNumberingSurvivesDeletion(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	engine := NewAllocationEngine(db)

	first := activeProject(t, db, md, "PROJ/2026/114", "1000.00")
	second := activeProject(t, db, md, "PROJ/2026/115", "1000.00")

	makeNoc := func(p *models.Project) *models.Noc {
		noc, err := engine.CreateNoc(NocInput{
			NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
			LetterAttachmentID: letter, ProjectListAttachmentID: list,
			Rows: []NocRowInput{
				{ProjectID: &p.ID, NewCost: dec("1000.00"), NocNoteID: &md.Note.ID},
			},
		}, Actor{ID: 5})
		require.NoError(t, err)
		return noc
	}

	n1 := makeNoc(first)
	n2 := makeNoc(second)
	assert.Equal(t, "NOC/2026/0001", n1.NocNumber)
	assert.Equal(t, "NOC/2026/0002", n2.NocNumber)

	// deleting an earlier NOC must not regress the sequence onto a number
	// a live NOC still holds
	require.NoError(t, engine.Delete(n1.ID, Actor{ID: 5}))

	n3 := makeNoc(first)
	assert.Equal(t, "NOC/2026/0003", n3.NocNumber)
}

func TestNocDeleteForbiddenAfterApproval(t *testing.T) {
	db := setupDB(t)
	md := seedMasterData(t, db)
	letter, list := nocAttachments(t, db)
	setApprovers(t, db, models.SettingNocApprover1, 30)
	setApprovers(t, db, models.SettingNocApprover2, 40)
	engine := NewAllocationEngine(db)

	p := activeProject(t, db, md, "PROJ/2026/113", "1000.00")
	noc, err := engine.CreateNoc(NocInput{
		NocDate: nocDate(), ParliamentID: &md.Parliament.ID,
		LetterAttachmentID: letter, ProjectListAttachmentID: list,
		Rows: []NocRowInput{
			{ProjectID: &p.ID, NewCost: dec("1000.00"), NewName: ptr("Renamed"), NocNoteID: &md.Note.ID},
		},
	}, Actor{ID: 5})
	require.NoError(t, err)

	_, err = engine.Approve(noc.ID, 1, Actor{ID: 30}, "")
	require.NoError(t, err)
	_, err = engine.Approve(noc.ID, 2, Actor{ID: 40}, "")
	require.NoError(t, err)

	err = engine.Delete(noc.ID, Actor{ID: 5})
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}
