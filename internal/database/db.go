package database

import (
	"log"
	"os"
	"time"

	"projmon/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	createDefaultAdmin()
	seedApprovalSettings()
}

// Migrate runs AutoMigrate for every model. Shared with the test suites,
// which run it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Agency{},
		&models.Parliament{},
		&models.Dun{},
		&models.District{},
		&models.Division{},
		&models.ResidenCategory{},
		&models.AgencyCategory{},
		&models.ProjectCategory{},
		&models.LandTitleStatus{},
		&models.ImplementationMethod{},
		&models.ProjectOwnership{},
		&models.NocNote{},
		&models.BudgetAllocation{},
		&models.Attachment{},
		&models.PreProject{},
		&models.Project{},
		&models.Noc{},
		&models.NocProject{},
		&models.ApprovalSetting{},
		&models.AuditLog{},
	)
}

// admin only from code/config
func createDefaultAdmin() {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin@projmon.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("failed to check admin user: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash default admin password: %v", err)
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin: %v", err)
		return
	}

	log.Printf("created default admin user: %s", username)
}

// empty approver lists so the settings rows always exist and only need an
// update from the settings endpoint
func seedApprovalSettings() {
	keys := []string{
		models.SettingPreProjectApprover1,
		models.SettingPreProjectApprover2,
		models.SettingNocApprover1,
		models.SettingNocApprover2,
	}

	for _, key := range keys {
		var count int64
		if err := DB.Model(&models.ApprovalSetting{}).
			Where("key = ?", key).
			Count(&count).Error; err != nil {
			log.Printf("failed to check setting %s: %v", key, err)
			continue
		}
		if count > 0 {
			continue
		}

		if err := DB.Create(&models.ApprovalSetting{Key: key}).Error; err != nil {
			log.Printf("failed to seed setting %s: %v", key, err)
		}
	}
}
