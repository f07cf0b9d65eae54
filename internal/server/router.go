package server

import (
	"net/http"

	"projmon/internal/config"
	"projmon/internal/handlers"
	"projmon/internal/middleware"
	"projmon/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("projmon_session", store))

	r.Use(middleware.InjectUser())

	handlers.SetUploadDir(cfg.UploadDir)

	// AUTH
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/logout", handlers.Logout)

	auth := r.Group("/api")
	auth.Use(middleware.RequireAuth())

	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// MASTER DATA
	handlers.RegisterMasterData[models.Agency](auth, "agencies", "agency", adminOnly)
	handlers.RegisterMasterData[models.Parliament](auth, "parliaments", "parliament", adminOnly)
	handlers.RegisterMasterData[models.Dun](auth, "duns", "dun", adminOnly)
	handlers.RegisterMasterData[models.District](auth, "districts", "district", adminOnly)
	handlers.RegisterMasterData[models.Division](auth, "divisions", "division", adminOnly)
	handlers.RegisterMasterData[models.ResidenCategory](auth, "residen-categories", "residen_category", adminOnly)
	handlers.RegisterMasterData[models.AgencyCategory](auth, "agency-categories", "agency_category", adminOnly)
	handlers.RegisterMasterData[models.ProjectCategory](auth, "project-categories", "project_category", adminOnly)
	handlers.RegisterMasterData[models.LandTitleStatus](auth, "land-title-statuses", "land_title_status", adminOnly)
	handlers.RegisterMasterData[models.ImplementationMethod](auth, "implementation-methods", "implementation_method", adminOnly)
	handlers.RegisterMasterData[models.ProjectOwnership](auth, "project-ownerships", "project_ownership", adminOnly)
	handlers.RegisterMasterData[models.NocNote](auth, "noc-notes", "noc_note", adminOnly)

	// BUDGET LEDGER
	auth.GET("/budget-allocations", handlers.ListBudgetAllocations)
	auth.POST("/budget-allocations", adminOnly, handlers.CreateBudgetAllocation)
	auth.DELETE("/budget-allocations/:id", adminOnly, handlers.DeleteBudgetAllocation)

	// USERS & APPROVAL SETTINGS
	auth.GET("/users", adminOnly, handlers.ListUsers)
	auth.PUT("/users/:id", adminOnly, handlers.UpdateUser)
	auth.GET("/settings/approvers", adminOnly, handlers.ListApprovalSettings)
	auth.PUT("/settings/approvers/:key", adminOnly, handlers.UpdateApprovalSetting)

	// ATTACHMENTS
	auth.POST("/attachments", handlers.UploadAttachment)
	auth.GET("/attachments/:id", handlers.DownloadAttachment)

	// PRE-PROJECTS
	ownerRoles := middleware.RequireRole(models.RoleParliament, models.RoleDun)

	auth.GET("/pre-projects", handlers.ListPreProjects)
	auth.GET("/pre-projects/:id", handlers.GetPreProject)
	auth.POST("/pre-projects", ownerRoles, handlers.CreatePreProject)
	auth.PUT("/pre-projects/:id", ownerRoles, handlers.UpdatePreProject)
	auth.GET("/pre-projects/:id/delete-code", ownerRoles, handlers.PreProjectDeleteCode)
	auth.DELETE("/pre-projects/:id", ownerRoles, handlers.DeletePreProject)

	auth.POST("/pre-projects/:id/submit", ownerRoles, handlers.SubmitPreProject)
	auth.POST("/pre-projects/:id/approve", handlers.ApprovePreProject)
	auth.POST("/pre-projects/:id/reject", handlers.RejectPreProject)

	auth.POST("/pre-projects/:id/transfer", adminOnly, handlers.TransferPreProject)
	auth.POST("/pre-projects/transfer-bulk", adminOnly, handlers.BulkTransferPreProjects)

	// PROJECTS (read-only; created by transfer, amended by NOC approval)
	auth.GET("/projects", handlers.ListProjects)
	auth.GET("/projects/:id", handlers.GetProject)

	// NOC
	auth.GET("/nocs", handlers.ListNocs)
	auth.GET("/nocs/:id", handlers.GetNoc)
	auth.POST("/nocs", ownerRoles, handlers.CreateNoc)
	auth.POST("/nocs/:id/approve", handlers.ApproveNoc)
	auth.POST("/nocs/:id/reject", handlers.RejectNoc)
	auth.DELETE("/nocs/:id", handlers.DeleteNoc)

	// AUDIT
	auth.GET("/audit", adminOnly, handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
