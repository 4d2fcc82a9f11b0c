package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const jwtSecretKey = "jwt_secret"

// getOrCreateSetting returns the stored value for key, storing candidate
// first if the key is unset. Concurrent callers all end up with the value
// that was written first.
func getOrCreateSetting(ctx context.Context, db *sqlx.DB, key, candidate string) (string, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var value string
	if err := db.GetContext(ctx, &value,
		`SELECT value FROM settings WHERE key = ?`, key,
	); err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}
	return value, nil
}

// GetJWTSecret returns the persisted token signing secret, generating a
// random one on first use.
func GetJWTSecret(ctx context.Context, db *sqlx.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return getOrCreateSetting(ctx, db, jwtSecretKey, hex.EncodeToString(buf))
}
