package entities

import "time"

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// User is a club member account. The password hash is never serialized.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash  string    `gorm:"size:512" json:"-"`
	Role          UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Verified      bool      `gorm:"default:false" json:"verified"` // Only meaningful for students
	AcceptedTerms bool      `json:"accepted_terms"`
	Phone         string    `gorm:"size:30" json:"phone,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
