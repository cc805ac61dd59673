package model

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleLearner    UserRole = "learner"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName string     `gorm:"size:150" json:"firstName"`
	LastName  string     `gorm:"size:150" json:"lastName"`
	Email     string     `gorm:"size:254" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;default:'learner'" json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleInstructor
}
