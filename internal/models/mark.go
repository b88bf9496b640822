package models

import "time"

// Mark value bounds, inclusive.
const (
	MarkValueMin = 1
	MarkValueMax = 5
)

// Mark is a user's rating of a post. One mark per (post, user): the unique
// index backs the repository's upsert, so re-marking replaces the value.
type Mark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     int       `gorm:"not null" json:"value"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_sender" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_sender" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
