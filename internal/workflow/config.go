package workflow

import (
	"strconv"
	"strings"

	"projmon/internal/models"

	"gorm.io/gorm"
)

// Actor is the user attempting a workflow transition. Administrators bypass
// all actor-eligibility checks.
type Actor struct {
	ID    uint
	Admin bool
}

// ApprovalConfig holds the approver sets for a two-stage pipeline. Loaded
// fresh from the settings store on every transition so list edits take effect
// immediately.
type ApprovalConfig struct {
	Level1 map[uint]struct{}
	Level2 map[uint]struct{}
}

func (c ApprovalConfig) Allowed(level int, a Actor) bool {
	if a.Admin {
		return true
	}
	set := c.Level1
	if level == 2 {
		set = c.Level2
	}
	_, ok := set[a.ID]
	return ok
}

// LoadApprovalConfig reads the two approver-list settings rows. A missing row
// yields an empty set, not an error.
func LoadApprovalConfig(db *gorm.DB, level1Key, level2Key string) (ApprovalConfig, error) {
	cfg := ApprovalConfig{
		Level1: map[uint]struct{}{},
		Level2: map[uint]struct{}{},
	}

	var settings []models.ApprovalSetting
	if err := db.Where("key IN ?", []string{level1Key, level2Key}).Find(&settings).Error; err != nil {
		return cfg, err
	}

	for _, s := range settings {
		set := cfg.Level1
		if s.Key == level2Key {
			set = cfg.Level2
		}
		for id := range parseUserIDs(s.Value) {
			set[id] = struct{}{}
		}
	}

	return cfg, nil
}

func parseUserIDs(raw string) map[uint]struct{} {
	ids := map[uint]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			continue
		}
		ids[uint(id)] = struct{}{}
	}
	return ids
}
