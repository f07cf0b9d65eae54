package handlers

import (
	"net/http"
	"strings"

	"projmon/internal/database"
	"projmon/internal/models"
	"projmon/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type preProjectInput struct {
	Name                 string `json:"name"`
	Scope                string `json:"scope"`
	ImplementationPeriod string `json:"implementation_period"`
	JkkkName             string `json:"jkkk_name"`

	ResidenCategoryID      *uint `json:"residen_category_id"`
	AgencyCategoryID       *uint `json:"agency_category_id"`
	ProjectCategoryID      *uint `json:"project_category_id"`
	DivisionID             *uint `json:"division_id"`
	DistrictID             *uint `json:"district_id"`
	LandTitleStatusID      *uint `json:"land_title_status_id"`
	ImplementingAgencyID   *uint `json:"implementing_agency_id"`
	ImplementationMethodID *uint `json:"implementation_method_id"`
	ProjectOwnershipID     *uint `json:"project_ownership_id"`

	ParliamentID     *uint `json:"parliament_id"`
	DunID            *uint `json:"dun_id"`
	SiteParliamentID *uint `json:"site_parliament_id"`
	SiteDistrictID   *uint `json:"site_district_id"`
	SiteDunID        *uint `json:"site_dun_id"`

	ActualCost        decimal.Decimal `json:"actual_cost"`
	ConsultationCost  decimal.Decimal `json:"consultation_cost"`
	LssInspectionCost decimal.Decimal `json:"lss_inspection_cost"`
	SstCost           decimal.Decimal `json:"sst_cost"`
	OtherCost         decimal.Decimal `json:"other_cost"`

	SiteLayout           *bool `json:"site_layout"`
	ConsultationService  *bool `json:"consultation_service"`
	StateGovernmentAsset *bool `json:"state_government_asset"`
	BillOfQuantity       *bool `json:"bill_of_quantity"`
	BoqAttachmentID      *uint `json:"boq_attachment_id"`
}

func (in *preProjectInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &workflow.ValidationError{Msg: "project name is required"}
	}
	if in.ParliamentID != nil && in.DunID != nil {
		return &workflow.ValidationError{Msg: "parliament and DUN location are mutually exclusive"}
	}
	if in.BillOfQuantity != nil && *in.BillOfQuantity && in.BoqAttachmentID == nil {
		return &workflow.ValidationError{Msg: "a bill of quantity attachment is required"}
	}
	return nil
}

// apply copies the input onto the model and rederives the total cost. The
// client-supplied total is never trusted.
func (in *preProjectInput) apply(pp *models.PreProject) {
	pp.Name = strings.TrimSpace(in.Name)
	pp.Scope = in.Scope
	pp.ImplementationPeriod = in.ImplementationPeriod
	pp.JkkkName = in.JkkkName

	pp.ResidenCategoryID = in.ResidenCategoryID
	pp.AgencyCategoryID = in.AgencyCategoryID
	pp.ProjectCategoryID = in.ProjectCategoryID
	pp.DivisionID = in.DivisionID
	pp.DistrictID = in.DistrictID
	pp.LandTitleStatusID = in.LandTitleStatusID
	pp.ImplementingAgencyID = in.ImplementingAgencyID
	pp.ImplementationMethodID = in.ImplementationMethodID
	pp.ProjectOwnershipID = in.ProjectOwnershipID

	pp.ParliamentID = in.ParliamentID
	pp.DunID = in.DunID
	pp.SiteParliamentID = in.SiteParliamentID
	pp.SiteDistrictID = in.SiteDistrictID
	pp.SiteDunID = in.SiteDunID

	pp.ActualCost = in.ActualCost
	pp.ConsultationCost = in.ConsultationCost
	pp.LssInspectionCost = in.LssInspectionCost
	pp.SstCost = in.SstCost
	pp.OtherCost = in.OtherCost
	pp.RecomputeTotal()

	pp.SiteLayout = in.SiteLayout
	pp.ConsultationService = in.ConsultationService
	pp.StateGovernmentAsset = in.StateGovernmentAsset
	pp.BillOfQuantity = in.BillOfQuantity
	pp.BoqAttachmentID = in.BoqAttachmentID
}

func CreatePreProject(c *gin.Context) {
	var in preProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := in.validate(); err != nil {
		respondError(c, err)
		return
	}

	pp := models.PreProject{
		Status:    models.PreProjectWaitingCompleteForm,
		CreatedBy: currentActor(c).ID,
	}
	in.apply(&pp)

	if err := database.DB.Create(&pp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save pre-project"})
		return
	}

	database.CreateAuditLog(database.DB, currentActor(c).ID, "pre_project", pp.ID, "create",
		"Created pre-project: "+pp.Name)
	c.JSON(http.StatusCreated, gin.H{"id": pp.ID, "total_cost": pp.TotalCost})
}

func ListPreProjects(c *gin.Context) {
	dbq := database.DB.Order("created_at desc")

	if status := c.Query("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if pid := c.Query("parliament_id"); pid != "" {
		dbq = dbq.Where("parliament_id = ?", pid)
	}
	if did := c.Query("dun_id"); did != "" {
		dbq = dbq.Where("dun_id = ?", did)
	}

	var preProjects []models.PreProject
	if err := dbq.Find(&preProjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pre-projects"})
		return
	}
	c.JSON(http.StatusOK, preProjects)
}

func GetPreProject(c *gin.Context) {
	var pp models.PreProject
	if err := database.DB.First(&pp, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	comp := workflow.Evaluate(&pp, database.RefResolver{DB: database.DB})
	c.JSON(http.StatusOK, gin.H{"pre_project": pp, "completeness": comp})
}

func UpdatePreProject(c *gin.Context) {
	var pp models.PreProject
	if err := database.DB.First(&pp, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	if !pp.Editable() {
		respondError(c, &workflow.InvalidTransitionError{
			Entity: "pre-project", ID: pp.ID, From: string(pp.Status), Op: "update",
		})
		return
	}

	var in preProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := in.validate(); err != nil {
		respondError(c, err)
		return
	}

	in.apply(&pp)
	if err := database.DB.Save(&pp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update pre-project"})
		return
	}

	database.CreateAuditLog(database.DB, currentActor(c).ID, "pre_project", pp.ID, "update",
		"Updated pre-project: "+pp.Name)
	c.JSON(http.StatusOK, gin.H{"id": pp.ID, "total_cost": pp.TotalCost})
}

// PreProjectDeleteCode hands the client a one-time confirmation code to
// transcribe before deleting. Friction against accidental deletion only; the
// delete endpoint does not verify it.
func PreProjectDeleteCode(c *gin.Context) {
	var pp models.PreProject
	if err := database.DB.First(&pp, c.Param("id")).Error; err != nil {
		respondError(c, err)
		return
	}

	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func DeletePreProject(c *gin.Context) {
	sm := workflow.NewStateMachine(database.DB)
	if err := sm.Delete(parseID(c), currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func SubmitPreProject(c *gin.Context) {
	sm := workflow.NewStateMachine(database.DB)
	pp, err := sm.SubmitToEpu(parseID(c), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": pp.ID, "status": pp.Status})
}

type approvalInput struct {
	Level   int    `json:"level"`
	Remarks string `json:"remarks"`
}

func ApprovePreProject(c *gin.Context) {
	var in approvalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sm := workflow.NewStateMachine(database.DB)
	pp, err := sm.Approve(parseID(c), in.Level, currentActor(c), in.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": pp.ID, "status": pp.Status})
}

type rejectionInput struct {
	Remarks string `json:"remarks"`
}

func RejectPreProject(c *gin.Context) {
	var in rejectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sm := workflow.NewStateMachine(database.DB)
	pp, err := sm.Reject(parseID(c), currentActor(c), in.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": pp.ID, "status": pp.Status})
}

type transferInput struct {
	ProjectNumber string `json:"project_number"`
	Year          int    `json:"year"`
}

func TransferPreProject(c *gin.Context) {
	var in transferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := workflow.NewTransferEngine(database.DB)
	project, err := engine.Transfer(parseID(c), in.ProjectNumber, in.Year, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": project.ID, "project_number": project.ProjectNumber})
}

type bulkTransferInput struct {
	Records []workflow.TransferRecord `json:"records"`
}

func BulkTransferPreProjects(c *gin.Context) {
	var in bulkTransferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := workflow.NewTransferEngine(database.DB)
	summary := engine.BulkTransfer(in.Records, currentActor(c))
	c.JSON(http.StatusOK, summary)
}
