package model

import (
	"time"
)

// Document is a markdown document row.
//
// ContentLength is always populated, even when Content is not: the store
// computes it with LENGTH(content) so metadata projections stay accurate
// without materializing the text. ContentLoaded distinguishes a metadata-only
// projection from a hydrated one; callers must check it instead of testing
// Content == "" because the empty string is valid content.
type Document struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ContentLength int  `gorm:"-"`
	ContentLoaded bool `gorm:"-"`
}

func (Document) TableName() string {
	return "documents"
}
