package model

import "gorm.io/datatypes"

// Submission is one attempt at a course exam. Score fields are a snapshot taken
// when the submission was graded.
// swagger:model Submission
type Submission struct {
	BaseModel
	EnrollmentID uint           `gorm:"index;not null" json:"enrollmentId"`
	Enrollment   *Enrollment    `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
	Choices      []Choice       `gorm:"many2many:submission_choices" json:"choices,omitempty"`
	Score        int            `gorm:"default:0" json:"score"`
	MaxScore     int            `gorm:"default:0" json:"maxScore"`
	Percentage   float64        `gorm:"default:0" json:"percentage"`
	Passed       bool           `gorm:"default:false" json:"passed"`
	Breakdown    datatypes.JSON `json:"breakdown,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) ChoiceIDs() []uint {
	ids := make([]uint, 0, len(s.Choices))
	for _, c := range s.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}
