package model

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"

	DefaultCategory = "Uncategorized"
)

// ValidStatus reports whether s is one of the accepted blog statuses.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

type Blog struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:200;not null" json:"title"`
	Slug       string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Content    string     `gorm:"type:longtext;not null" json:"content"`
	CoverImage string     `gorm:"size:255" json:"coverImage,omitempty"`
	Excerpt    string     `gorm:"type:text" json:"excerpt"`
	Category   string     `gorm:"size:100;index" json:"category"`
	Tags       StringList `gorm:"type:text" json:"tags"`
	Status     string     `gorm:"size:16;not null;default:published;index" json:"status"`
	ViewCount  uint       `gorm:"not null;default:0" json:"viewCount"`
	AuthorID   uint       `gorm:"not null;index" json:"authorId"`
	Author     *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments   []Comment  `gorm:"foreignKey:BlogID" json:"comments,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
