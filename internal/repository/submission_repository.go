package repository

import (
	"onlinecourse_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create stores the submission and its selected choices in one transaction.
func (r *SubmissionRepository) Create(s *model.Submission, choices []model.Choice) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Choices", "Enrollment").Create(s).Error; err != nil {
			return err
		}
		if len(choices) > 0 {
			if err := tx.Model(s).Association("Choices").Append(choices); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubmissionRepository) UpdateScore(s *model.Submission) error {
	return r.DB.Model(s).Select("score", "max_score", "percentage", "passed", "breakdown").Updates(s).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.
		Preload("Enrollment").
		Preload("Choices").
		First(&s, id).Error
	return &s, err
}

type SubmissionListRow struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"maxScore"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r *SubmissionRepository) ListByCourse(courseID uint, page, limit int) ([]SubmissionListRow, int64, error) {
	var rows []SubmissionListRow
	var total int64

	query := r.DB.Table("submissions").
		Joins("JOIN enrollments ON enrollments.id = submissions.enrollment_id").
		Joins("JOIN users ON users.id = enrollments.user_id").
		Where("enrollments.course_id = ? AND submissions.deleted_at IS NULL", courseID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Select("submissions.id, users.id AS user_id, users.username, submissions.score, submissions.max_score, " +
			"submissions.percentage, submissions.passed, submissions.created_at").
		Order("submissions.created_at desc, submissions.id desc").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}
