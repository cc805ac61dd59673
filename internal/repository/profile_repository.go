package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) CreateInstructor(i *model.Instructor) error {
	return r.DB.Create(i).Error
}

func (r *ProfileRepository) FindInstructorByUser(userID uint) (*model.Instructor, error) {
	var i model.Instructor
	err := r.DB.Preload("User").Where("user_id = ?", userID).First(&i).Error
	return &i, err
}

func (r *ProfileRepository) FindInstructorByID(id uint) (*model.Instructor, error) {
	var i model.Instructor
	err := r.DB.Preload("User").First(&i, id).Error
	return &i, err
}

func (r *ProfileRepository) CreateLearner(l *model.Learner) error {
	return r.DB.Create(l).Error
}

func (r *ProfileRepository) FindLearnerByUser(userID uint) (*model.Learner, error) {
	var l model.Learner
	err := r.DB.Preload("User").Where("user_id = ?", userID).First(&l).Error
	return &l, err
}

// IncrementInstructorLearners bumps total_learners of every instructor teaching courseID.
func (r *ProfileRepository) IncrementInstructorLearners(tx *gorm.DB, courseID uint) error {
	sub := tx.Table("course_instructors").Select("instructor_id").Where("course_id = ?", courseID)
	return tx.Model(&model.Instructor{}).
		Where("id IN (?)", sub).
		Update("total_learners", gorm.Expr("total_learners + ?", 1)).
		Error
}
