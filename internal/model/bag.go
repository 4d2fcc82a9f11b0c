package model

import "time"

// Bag is a trackable kit. QRToken is generated once by the server and is the
// only handle used by the anonymous lookup.
type Bag struct {
	ID        int64      `db:"id" json:"id"`
	SiteID    int64      `db:"site_id" json:"site_id"`
	Name      string     `db:"name" json:"name"`
	QRToken   string     `db:"qr_token" json:"qr_token"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at"`
}

// PublicBag is the projection of a bag returned by the anonymous lookup.
// It carries neither the token nor timestamps.
type PublicBag struct {
	ID     int64  `json:"id"`
	SiteID int64  `json:"site_id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Public returns the anonymous projection of b.
func (b *Bag) Public() PublicBag {
	return PublicBag{
		ID:     b.ID,
		SiteID: b.SiteID,
		Name:   b.Name,
		Active: b.Active,
	}
}

// Lookup is the result of resolving a bag token.
type Lookup struct {
	Bag   PublicBag `json:"bag"`
	Items []Item    `json:"items"`
}
