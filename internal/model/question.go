package model

// swagger:model Question
type Question struct {
	BaseModel
	CourseID     uint     `gorm:"index;not null" json:"courseId"`
	QuestionText string   `gorm:"size:500;not null" json:"questionText"`
	Grade        int      `gorm:"default:50" json:"grade"`
	Choices      []Choice `json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	ChoiceText string `gorm:"size:500;not null" json:"choiceText"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
}

func (Choice) TableName() string {
	return "choices"
}
