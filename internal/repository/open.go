package repository

import (
	"fmt"
	"log"

	"invite-tracker/internal/config"
	"invite-tracker/internal/database"
	"invite-tracker/internal/storage"
)

// OpenDocumentStore returns the document store selected by STORAGE_BACKEND
func OpenDocumentStore(cfg *config.Config) (storage.DocumentStore, error) {
	switch cfg.Storage.Backend {
	case "database":
		if err := database.Connect(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(); err != nil {
			return nil, err
		}
		log.Printf("[Storage] Using %s document table", cfg.Database.Driver)
		return NewDocumentRepository(database.GetDB()), nil
	case "file", "":
		store, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		log.Printf("[Storage] Using JSON files in %s", cfg.Storage.DataDir)
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
