package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Name            string       `gorm:"size:30;not null;default:'online course'" json:"name"`
	Image           string       `gorm:"size:255" json:"image"`
	Description     string       `gorm:"size:1000" json:"description"`
	PubDate         *time.Time   `json:"pubDate,omitempty"`
	TotalEnrollment int          `gorm:"default:0;index" json:"totalEnrollment"`
	Instructors     []Instructor `gorm:"many2many:course_instructors" json:"instructors,omitempty"`
	Lessons         []Lesson     `json:"lessons,omitempty"`
	Questions       []Question   `json:"questions,omitempty"`

	// Set per request for the current user, never stored.
	IsEnrolled bool `gorm:"-" json:"isEnrolled"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:200;default:'title'" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
	Content  string `gorm:"type:text" json:"content"`
}

func (Lesson) TableName() string {
	return "lessons"
}
