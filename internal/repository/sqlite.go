package repository

import (
	"context"

	"pantry/internal/database"
)

// SQLiteSettingsStore adapts the database settings table to domain.SettingsStore.
type SQLiteSettingsStore struct {
	db *database.DB
}

func NewSQLiteSettingsStore(db *database.DB) *SQLiteSettingsStore {
	return &SQLiteSettingsStore{db: db}
}

func (s *SQLiteSettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.db.GetSetting(ctx, key)
}

func (s *SQLiteSettingsStore) Set(ctx context.Context, key, value string) error {
	return s.db.SetSetting(ctx, key, value)
}

func (s *SQLiteSettingsStore) Delete(ctx context.Context, keys ...string) error {
	return s.db.DeleteSettings(ctx, keys...)
}

func (s *SQLiteSettingsStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.db.SettingKeys(ctx, prefix)
}
