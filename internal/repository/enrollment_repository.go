package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Find(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) Exists(tx *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := tx.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) Create(tx *gorm.DB, e *model.Enrollment) error {
	return tx.Create(e).Error
}

// EnrolledCourseIDs returns the subset of courseIDs the user is enrolled in.
func (r *EnrollmentRepository) EnrolledCourseIDs(userID uint, courseIDs []uint) (map[uint]bool, error) {
	enrolled := make(map[uint]bool)
	if len(courseIDs) == 0 {
		return enrolled, nil
	}

	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		enrolled[id] = true
	}
	return enrolled, nil
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Course").
		Where("user_id = ?", userID).
		Order("date_enrolled desc").
		Find(&es).Error
	return es, err
}
