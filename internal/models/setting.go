package models

import "gorm.io/gorm"

// Approval-stage keys in the settings store. Each value is a comma-separated
// list of user ids allowed to act at that stage.
const (
	SettingPreProjectApprover1 = "pre_project_approver_level1"
	SettingPreProjectApprover2 = "pre_project_approver_level2"
	SettingNocApprover1        = "noc_approver_level1"
	SettingNocApprover2        = "noc_approver_level2"
)

type ApprovalSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}
