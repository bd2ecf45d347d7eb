package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrLegacySchema = errors.New("document uses the legacy unversioned schema")
)

// DocumentStore persists whole JSON documents by name
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Names(ctx context.Context) ([]string, error)
}

type versionProbe struct {
	Version int `json:"version"`
}

// LoadJSON decodes a stored document into v.
// Missing documents return ErrNotFound; documents without a version tag return ErrLegacySchema.
func LoadJSON(ctx context.Context, store DocumentStore, name string, v any) error {
	data, err := store.Load(ctx, name)
	if err != nil {
		return err
	}

	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if probe.Version == 0 {
		return fmt.Errorf("%s: %w", name, ErrLegacySchema)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// SaveJSON encodes v and stores it under name
func SaveJSON(ctx context.Context, store DocumentStore, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return store.Save(ctx, name, data)
}
