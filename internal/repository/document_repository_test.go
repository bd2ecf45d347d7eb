package repository

import (
	"context"
	"errors"
	"testing"

	"invite-tracker/internal/models"
	"invite-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.StoredDocument{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestDocumentRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(setupDB(t))

	_, err := repo.Load(ctx, "invites.json")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, repo.Save(ctx, "invites.json", []byte(`{"version":2,"servers":{}}`)))
	require.NoError(t, repo.Save(ctx, "invites.json", []byte(`{"version":2,"servers":{"g":{}}}`)))

	data, err := repo.Load(ctx, "invites.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"servers":{"g":{}}}`, string(data))

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"invites.json"}, names)
}

func TestDocumentRepositoryAsStore(t *testing.T) {
	ctx := context.Background()
	var store storage.DocumentStore = NewDocumentRepository(setupDB(t))

	in := models.NewStocksDoc()
	in.Guilds["g1"] = []string{"a@b:pw"}
	require.NoError(t, storage.SaveJSON(ctx, store, models.StocksDocument, in))

	var out models.StocksDoc
	require.NoError(t, storage.LoadJSON(ctx, store, models.StocksDocument, &out))
	assert.Equal(t, []string{"a@b:pw"}, out.Guilds["g1"])
	assert.Equal(t, models.DocumentVersion, out.Version)
}
