package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry owned by its author. Comments and Marks are
// preloaded selectively: the detail query attaches all comments but only
// the requesting user's marks.
type Post struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Title      string   `gorm:"not null" json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `gorm:"not null" json:"content"`
	UserID     uint     `gorm:"not null;index" json:"user_id"`
	User       User     `gorm:"foreignKey:UserID" json:"user"`
	CategoryID uint     `gorm:"index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Marks    []Mark    `gorm:"foreignKey:PostID" json:"marks,omitempty"`

	// Rank is the full-text relevance score, populated only by search
	// queries. Read-only and never migrated to a column.
	Rank float64 `gorm:"->;-:migration" json:"rank,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
