package workflow

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"projmon/internal/database"
	"projmon/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// masterData holds the seeded lookup rows every complete pre-project needs.
type masterData struct {
	Parliament models.Parliament
	Dun        models.Dun
	District   models.District
	Division   models.Division
	Residen    models.ResidenCategory
	AgencyCat  models.AgencyCategory
	ProjectCat models.ProjectCategory
	LandTitle  models.LandTitleStatus
	Agency     models.Agency
	Method     models.ImplementationMethod
	Ownership  models.ProjectOwnership
	Note       models.NocNote
}

func seedMasterData(t *testing.T, db *gorm.DB) masterData {
	t.Helper()

	md := masterData{
		Parliament: models.Parliament{Name: "P.201 Batang Lupar", Code: "P201"},
		District:   models.District{Name: "Sri Aman"},
		Division:   models.Division{Name: "Sri Aman Division"},
		Residen:    models.ResidenCategory{Name: "Residen Office"},
		AgencyCat:  models.AgencyCategory{Name: "State Agency"},
		ProjectCat: models.ProjectCategory{Name: "Infrastructure"},
		LandTitle:  models.LandTitleStatus{Name: "State Land"},
		Agency:     models.Agency{Name: "Public Works Department", Code: "PWD"},
		Method:     models.ImplementationMethod{Name: "Contract"},
		Ownership:  models.ProjectOwnership{Name: "State Government"},
		Note:       models.NocNote{Name: "Cost Revision"},
	}

	require.NoError(t, db.Create(&md.Parliament).Error)
	md.Dun = models.Dun{Name: "N.28 Lingga", Code: "N28", ParliamentID: &md.Parliament.ID}
	require.NoError(t, db.Create(&md.Dun).Error)
	require.NoError(t, db.Create(&md.District).Error)
	require.NoError(t, db.Create(&md.Division).Error)
	require.NoError(t, db.Create(&md.Residen).Error)
	require.NoError(t, db.Create(&md.AgencyCat).Error)
	require.NoError(t, db.Create(&md.ProjectCat).Error)
	require.NoError(t, db.Create(&md.LandTitle).Error)
	require.NoError(t, db.Create(&md.Agency).Error)
	require.NoError(t, db.Create(&md.Method).Error)
	require.NoError(t, db.Create(&md.Ownership).Error)
	require.NoError(t, db.Create(&md.Note).Error)

	return md
}

// completeDraft builds a draft pre-project that evaluates to 100%.
func completeDraft(t *testing.T, db *gorm.DB, md masterData) *models.PreProject {
	t.Helper()

	pp := &models.PreProject{
		Name:                 "Kampung jetty upgrade",
		Scope:                "Replace jetty decking and pilings",
		ImplementationPeriod: "6 months",
		JkkkName:             "JKKK Kampung Lingga",

		ResidenCategoryID:      &md.Residen.ID,
		AgencyCategoryID:       &md.AgencyCat.ID,
		ProjectCategoryID:      &md.ProjectCat.ID,
		DivisionID:             &md.Division.ID,
		DistrictID:             &md.District.ID,
		LandTitleStatusID:      &md.LandTitle.ID,
		ImplementingAgencyID:   &md.Agency.ID,
		ImplementationMethodID: &md.Method.ID,
		ProjectOwnershipID:     &md.Ownership.ID,

		ParliamentID:     &md.Parliament.ID,
		SiteParliamentID: &md.Parliament.ID,
		SiteDistrictID:   &md.District.ID,
		SiteDunID:        &md.Dun.ID,

		ActualCost: dec("1000.00"),
		SstCost:    dec("60.00"),

		Status:    models.PreProjectWaitingCompleteForm,
		CreatedBy: 1,
	}
	pp.RecomputeTotal()
	require.NoError(t, db.Create(pp).Error)
	return pp
}

func setApprovers(t *testing.T, db *gorm.DB, key string, ids ...uint) {
	t.Helper()

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	setting := models.ApprovalSetting{Key: key, Value: strings.Join(parts, ",")}
	require.NoError(t, db.Create(&setting).Error)
}

// approvedPreProject walks a complete draft through the full pipeline.
func approvedPreProject(t *testing.T, db *gorm.DB, md masterData) *models.PreProject {
	t.Helper()

	setApprovers(t, db, models.SettingPreProjectApprover1, 10)
	setApprovers(t, db, models.SettingPreProjectApprover2, 20)

	pp := completeDraft(t, db, md)
	sm := NewStateMachine(db)

	_, err := sm.SubmitToEpu(pp.ID, Actor{ID: 1})
	require.NoError(t, err)
	_, err = sm.Approve(pp.ID, 1, Actor{ID: 10}, "")
	require.NoError(t, err)
	out, err := sm.Approve(pp.ID, 2, Actor{ID: 20}, "")
	require.NoError(t, err)
	require.Equal(t, models.PreProjectApproved, out.Status)
	return out
}

// activeProject creates an approved pre-project and transfers it.
func activeProject(t *testing.T, db *gorm.DB, md masterData, number string, cost string) *models.Project {
	t.Helper()

	pp := completeDraft(t, db, md)
	pp.ActualCost = dec(cost)
	pp.SstCost = decimal.Zero
	pp.RecomputeTotal()
	now := time.Now()
	pp.Status = models.PreProjectApproved
	pp.SecondApprovedAt = &now
	require.NoError(t, db.Save(pp).Error)

	project, err := NewTransferEngine(db).Transfer(pp.ID, number, 2026, Actor{ID: 1, Admin: true})
	require.NoError(t, err)
	return project
}

func nocAttachments(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()

	letter := models.Attachment{OriginalName: "letter.pdf", StoredPath: "/tmp/letter.pdf"}
	list := models.Attachment{OriginalName: "projects.pdf", StoredPath: "/tmp/projects.pdf"}
	require.NoError(t, db.Create(&letter).Error)
	require.NoError(t, db.Create(&list).Error)
	return letter.ID, list.ID
}
