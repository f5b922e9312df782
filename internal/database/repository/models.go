package repository

import "time"

// Skin represents a skins row.
type Skin struct {
	Name      string
	Value     string
	Signature string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
