package models

import "time"

// Item is a tracked pantry product.
type Item struct {
	ID              int64      `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	ExpirationDate  *time.Time `yaml:"expiration_date" json:"expiration_date,omitempty"`
	Barcode         string     `yaml:"barcode" json:"barcode,omitempty"`
	Category        string     `yaml:"category" json:"category"`
	Count           int64      `yaml:"count" json:"count"`
	StorageLocation string     `yaml:"storage_location" json:"storage_location"`
	CreatedAt       time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `yaml:"updated_at" json:"updated_at"`
}

// HasExpiration reports whether the item tracks an expiration date.
func (i *Item) HasExpiration() bool {
	return i != nil && i.ExpirationDate != nil
}

// ExpiringEntry is one line of an expiration bucket.
type ExpiringEntry struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	Days   int    `json:"days"`
	Label  string `json:"label"`
}
