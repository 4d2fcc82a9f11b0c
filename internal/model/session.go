package model

import "time"

// InventorySession is one field check of a bag.
type InventorySession struct {
	ID         int64     `db:"id" json:"id"`
	BagID      int64     `db:"bag_id" json:"bag_id"`
	Nickname   *string   `db:"nickname" json:"nickname"`
	IPAddress  *string   `db:"ip_address" json:"ip_address"`
	GeoCity    *string   `db:"geo_city" json:"geo_city"`
	GeoCountry *string   `db:"geo_country" json:"geo_country"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Loaded separately, not a column.
	Results []InventoryResult `db:"-" json:"results"`
}

// InventoryResult is the recorded status of one checklist item, or of an
// item outside the checklist when BagItemID is nil. BagItemID is also cleared
// when the referenced item is deleted.
type InventoryResult struct {
	ID          int64        `db:"id" json:"id"`
	SessionID   int64        `db:"session_id" json:"session_id"`
	BagItemID   *int64       `db:"bag_item_id" json:"bag_item_id"`
	Status      ResultStatus `db:"status" json:"status"`
	ObservedQty *int64       `db:"observed_qty" json:"observed_qty"`
	Notes       *string      `db:"notes" json:"notes"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ResultStatus is the outcome recorded for a checklist item.
type ResultStatus string

// Result statuses.
const (
	StatusPresent    ResultStatus = "present"
	StatusMissing    ResultStatus = "missing"
	StatusNotEnough  ResultStatus = "not_enough"
	StatusBatteryLow ResultStatus = "battery_low"
)

// Valid reports whether s is a known status.
func (s ResultStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusMissing, StatusNotEnough, StatusBatteryLow:
		return true
	}
	return false
}
