package database

import (
	"errors"

	"gorm.io/gorm"
)

// RefResolver answers "does this master-data row still exist". References are
// nulled when master data is deleted, but a soft-broken id can linger between
// the delete and the cascade; consumers treat a missing row as unset, never
// as an error.
type RefResolver struct {
	DB *gorm.DB
}

func (r RefResolver) Exists(model any, id uint) bool {
	var count int64
	err := r.DB.Model(model).Where("id = ?", id).Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	return count > 0
}
