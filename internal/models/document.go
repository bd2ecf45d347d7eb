package models

import (
	"time"
)

// StoredDocument is a JSON document kept in the database backend
type StoredDocument struct {
	Name      string    `gorm:"primaryKey;size:128" json:"name"`
	Version   int       `gorm:"not null;default:2" json:"version"`
	Body      []byte    `gorm:"not null" json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for StoredDocument model
func (StoredDocument) TableName() string {
	return "documents"
}
