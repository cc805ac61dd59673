package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// Create inserts the question together with its choices.
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) ListByCourse(courseID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("course_id = ?", courseID).
		Order("id asc").
		Find(&qs).Error
	return qs, err
}

// FindChoicesInCourse returns the choices among ids that belong to a question of courseID.
func (r *QuestionRepository) FindChoicesInCourse(courseID uint, ids []uint) ([]model.Choice, error) {
	var cs []model.Choice
	if len(ids) == 0 {
		return cs, nil
	}
	err := r.DB.
		Joins("JOIN questions ON questions.id = choices.question_id AND questions.deleted_at IS NULL").
		Where("questions.course_id = ? AND choices.id IN ?", courseID, ids).
		Find(&cs).Error
	return cs, err
}
