package repository

import (
	"database/sql"
	"errors"

	"mathflash/internal/database"
)

// KVRepository stores opaque string values under string keys in kv_store
type KVRepository struct {
	db database.DBTX
}

func NewKVRepository(db database.DBTX) *KVRepository {
	return &KVRepository{db: db}
}

// Get retrieves the value stored under key. found is false when no row exists.
func (r *KVRepository) Get(key string) (value string, found bool, err error) {
	query := `SELECT store_value FROM kv_store WHERE store_key = ?`
	err = r.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set updates or inserts the value under key
func (r *KVRepository) Set(key, value string) error {
	_, err := r.db.Exec(r.db.GetDialect().UpsertKVQuery(), key, value)
	return err
}
