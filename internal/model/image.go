package model

import "time"

// Image is a binary attachment owned by a document. Deleting the document
// cascades deletion of its images. Data may carry a compression marker
// prefix; the compress package handles that transparently.
type Image struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	DocumentID uint   `gorm:"index;not null"`
	Filename   string `gorm:"not null"`
	Data       []byte `gorm:"not null"`
	CreatedAt  time.Time
}

func (Image) TableName() string {
	return "images"
}
