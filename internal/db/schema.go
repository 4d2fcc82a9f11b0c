package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
//
// The foreign keys mirror the deletion rules: sites and bags with dependents
// cannot be deleted, a bag's checklist goes with it, a session's results go
// with it, and deleting a checklist item only detaches the results that
// referenced it.
const schema = `
CREATE TABLE IF NOT EXISTS admins (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sites (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    alert_recipients TEXT NOT NULL,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME
);

CREATE TABLE IF NOT EXISTS bags (
    id         INTEGER PRIMARY KEY,
    site_id    INTEGER NOT NULL REFERENCES sites(id) ON DELETE RESTRICT,
    name       TEXT NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT 1,
    qr_token   TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_bags_site_id ON bags(site_id);

CREATE TABLE IF NOT EXISTS bag_items (
    id             INTEGER PRIMARY KEY,
    bag_id         INTEGER NOT NULL REFERENCES bags(id) ON DELETE CASCADE,
    name           TEXT NOT NULL,
    expected_qty   INTEGER CHECK (expected_qty IS NULL OR expected_qty >= 0),
    track_expiry   BOOLEAN NOT NULL DEFAULT 0,
    expiry_date    TEXT,
    test_batteries BOOLEAN NOT NULL DEFAULT 0,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_bag_items_bag_id ON bag_items(bag_id);

CREATE TABLE IF NOT EXISTS inventory_sessions (
    id          INTEGER PRIMARY KEY,
    bag_id      INTEGER NOT NULL REFERENCES bags(id) ON DELETE RESTRICT,
    nickname    TEXT,
    ip_address  TEXT,
    geo_city    TEXT,
    geo_country TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_inventory_sessions_bag_id ON inventory_sessions(bag_id);
CREATE INDEX IF NOT EXISTS idx_inventory_sessions_created_at ON inventory_sessions(created_at);

CREATE TABLE IF NOT EXISTS inventory_results (
    id           INTEGER PRIMARY KEY,
    session_id   INTEGER NOT NULL REFERENCES inventory_sessions(id) ON DELETE CASCADE,
    bag_item_id  INTEGER REFERENCES bag_items(id) ON DELETE SET NULL,
    status       TEXT NOT NULL CHECK (status IN ('present', 'missing', 'not_enough', 'battery_low')),
    observed_qty INTEGER CHECK (observed_qty IS NULL OR observed_qty >= 0),
    notes        TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_inventory_results_session_id ON inventory_results(session_id);
CREATE INDEX IF NOT EXISTS idx_inventory_results_bag_item_id ON inventory_results(bag_item_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
