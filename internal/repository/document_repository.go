package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"invite-tracker/internal/models"
	"invite-tracker/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository stores JSON documents in a database table
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Load retrieves a document body by name
func (r *DocumentRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var doc models.StoredDocument
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

// Save upserts a document body
func (r *DocumentRepository) Save(ctx context.Context, name string, data []byte) error {
	doc := models.StoredDocument{
		Name:      name,
		Version:   versionOf(data),
		Body:      data,
		UpdatedAt: time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "body", "updated_at"}),
	}).Create(&doc).Error
}

// Names lists stored document names
func (r *DocumentRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.StoredDocument{}).
		Order("name ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func versionOf(data []byte) int {
	var probe struct {
		Version int `json:"version"`
	}
	_ = json.Unmarshal(data, &probe)
	return probe.Version
}
