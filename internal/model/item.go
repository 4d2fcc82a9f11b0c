package model

import "time"

// Item is a checklist entry describing what a bag is expected to hold.
//
// A nil ExpectedQty means presence-only: the check records whether the item
// is there, not how many. ExpiryDate is only settable while TrackExpiry is on.
type Item struct {
	ID            int64      `db:"id" json:"id"`
	BagID         int64      `db:"bag_id" json:"bag_id"`
	Name          string     `db:"name" json:"name"`
	ExpectedQty   *int64     `db:"expected_qty" json:"expected_qty"`
	TrackExpiry   bool       `db:"track_expiry" json:"track_expiry"`
	ExpiryDate    *Date      `db:"expiry_date" json:"expiry_date"`
	TestBatteries bool       `db:"test_batteries" json:"test_batteries"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at"`
}
