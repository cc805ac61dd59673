package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

// Update writes the editable columns only. total_enrollment is owned by
// IncrementEnrollment and the reconcile job.
func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Model(course).Select("name", "description", "pub_date", "image", "updated_at").Updates(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindDetail loads a course with lessons, questions, choices and instructors.
func (r *CourseRepository) FindDetail(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("id asc")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Instructors.User").
		First(&course, id).Error
	return &course, err
}

// ListTop returns the most enrolled courses first.
func (r *CourseRepository) ListTop(limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("total_enrollment desc, id asc").Limit(limit).Find(&courses).Error
	return courses, err
}

// Search matches name or description, newest publication first.
func (r *CourseRepository) Search(keyword string, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("pub_date desc, id desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) IncrementEnrollment(tx *gorm.DB, courseID uint) error {
	return tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("total_enrollment", gorm.Expr("total_enrollment + ?", 1)).
		Error
}

// ReconcileEnrollmentCounts rewrites total_enrollment from the enrollment rows
// and returns how many courses were corrected.
func (r *CourseRepository) ReconcileEnrollmentCounts() (int64, error) {
	type row struct {
		ID    uint
		Total int
		Count int
	}
	var rows []row
	err := r.DB.Table("courses").
		Select("courses.id AS id, courses.total_enrollment AS total, COUNT(enrollments.id) AS count").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("courses.deleted_at IS NULL").
		Group("courses.id, courses.total_enrollment").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	var fixed int64
	for _, rw := range rows {
		if rw.Total == rw.Count {
			continue
		}
		if err := r.DB.Model(&model.Course{}).Where("id = ?", rw.ID).Update("total_enrollment", rw.Count).Error; err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) AddInstructor(course *model.Course, instructor *model.Instructor) error {
	return r.DB.Model(course).Association("Instructors").Append(instructor)
}
