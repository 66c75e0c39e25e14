package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. The password and security answer are stored
// as bcrypt hashes and never serialized to clients.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email              string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	ProfilePicture     string    `gorm:"size:255" json:"profilePicture"`
	Bio                string    `gorm:"type:text" json:"bio"`
	Role               string    `gorm:"size:16;not null;default:user" json:"role"`
	Active             bool      `gorm:"not null;default:true" json:"active"`
	SecurityQuestion   string    `gorm:"size:255" json:"securityQuestion,omitempty"`
	SecurityAnswerHash string    `gorm:"size:255" json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
