package database

import (
	"gorm.io/gorm"

	"github.com/nourishtogether/donation-api/internal/utils"
)

// Paginate limits a query to one page. A zero limit leaves it unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Newest orders rows by creation time, latest first.
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
