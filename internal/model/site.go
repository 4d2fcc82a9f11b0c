package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Site is an organizational location that owns bags.
type Site struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	AlertRecipients Recipients `db:"alert_recipients" json:"alert_recipients"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// Recipients is an ordered list of e-mail addresses. It is stored as a JSON
// array in a single text column.
type Recipients []string

// Value implements driver.Valuer.
func (r Recipients) Value() (driver.Value, error) {
	if r == nil {
		r = Recipients{}
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, fmt.Errorf("encoding recipients: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *Recipients) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = Recipients{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("scanning recipients: unsupported type %T", src)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decoding recipients: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*r = list
	return nil
}
