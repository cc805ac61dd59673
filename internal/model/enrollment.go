package model

import "time"

type EnrollmentMode string

const (
	ModeAudit EnrollmentMode = "audit"
	ModeHonor EnrollmentMode = "honor"
	ModeBeta  EnrollmentMode = "BETA"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID       uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID     uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Course       *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	DateEnrolled time.Time      `json:"dateEnrolled"`
	Mode         EnrollmentMode `gorm:"size:5;default:'audit'" json:"mode"`
	Rating       float64        `gorm:"default:5" json:"rating"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
