package models

import "time"

// Category groups posts under a unique label. Categories are read-only
// from the API's perspective; they are created by migrations or seeding.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"unique;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
