package model

import "time"

const (
	ActivityBlogCreated    = "blog.created"
	ActivityBlogUpdated    = "blog.updated"
	ActivityBlogDeleted    = "blog.deleted"
	ActivityCommentCreated = "comment.created"
)

// Activity records a content mutation. Rows are written asynchronously by the
// activity worker, never in the request path.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Type        string    `gorm:"size:32;not null;index" json:"type"`
	ActorID     uint      `gorm:"not null;index" json:"actorId"`
	SubjectKind string    `gorm:"size:16;not null" json:"subjectKind"`
	SubjectID   uint      `gorm:"not null" json:"subjectId"`
	CreatedAt   time.Time `json:"createdAt"`
}
