package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProfileRepo    *repository.ProfileRepository
	Storage        *StorageService
	Cache          CourseCache
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	profileRepo *repository.ProfileRepository,
	storage *StorageService,
	cache CourseCache,
) *CourseService {
	if cache == nil {
		cache = noopCourseCache{}
	}
	return &CourseService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProfileRepo:    profileRepo,
		Storage:        storage,
		Cache:          cache,
	}
}

// ListTop returns the most enrolled courses. When userID is non-zero each course
// carries whether that user is enrolled.
func (s *CourseService) ListTop(ctx context.Context, userID uint) ([]model.Course, error) {
	courses, gen, ok := s.Cache.GetTop(ctx)
	if !ok {
		var err error
		courses, err = s.CourseRepo.ListTop(util.TopCourseLimit)
		if err != nil {
			return nil, err
		}
		s.Cache.SetTop(ctx, gen, courses)
	}

	if userID == 0 || len(courses) == 0 {
		return courses, nil
	}

	ids := make([]uint, len(courses))
	for i := range courses {
		ids[i] = courses[i].ID
	}
	enrolled, err := s.EnrollmentRepo.EnrolledCourseIDs(userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].IsEnrolled = enrolled[courses[i].ID]
	}
	return courses, nil
}

func (s *CourseService) Get(courseID uint) (*model.Course, error) {
	return s.findCourse(courseID)
}

func (s *CourseService) GetDetail(courseID, userID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindDetail(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if userID != 0 {
		course.IsEnrolled, err = s.IsEnrolled(userID, courseID)
		if err != nil {
			return nil, err
		}
	}
	return course, nil
}

func (s *CourseService) IsEnrolled(userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.EnrollmentRepo.Exists(s.DB, userID, courseID)
}

// Enroll enrolls the user in honor mode unless already enrolled. It reports
// whether a new enrollment was created.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID uint) (bool, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrCourseNotFound
		}
		return false, err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		exists, err := s.EnrollmentRepo.Exists(tx, userID, courseID)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrAlreadyEnrolled
		}

		e := &model.Enrollment{
			UserID:       userID,
			CourseID:     courseID,
			Mode:         model.ModeHonor,
			DateEnrolled: time.Now(),
		}
		if err := s.EnrollmentRepo.Create(tx, e); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyEnrolled
			}
			return err
		}
		if err := s.CourseRepo.IncrementEnrollment(tx, courseID); err != nil {
			return err
		}
		return s.ProfileRepo.IncrementInstructorLearners(tx, courseID)
	})
	if errors.Is(err, util.ErrAlreadyEnrolled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.Cache.Invalidate(ctx)
	monitoring.EnrollmentCounter.Inc()
	logger.Log.Info("learner enrolled", zap.Uint("userId", userID), zap.Uint("courseId", courseID))
	return true, nil
}

func (s *CourseService) ListEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

// ReconcileEnrollmentCounts repairs total_enrollment drift.
func (s *CourseService) ReconcileEnrollmentCounts(ctx context.Context) (int64, error) {
	fixed, err := s.CourseRepo.ReconcileEnrollmentCounts()
	if err != nil {
		return fixed, err
	}
	if fixed > 0 {
		s.Cache.Invalidate(ctx)
	}
	return fixed, nil
}

type CourseReq struct {
	Name        *string    `json:"name" binding:"omitempty,max=30"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	PubDate     *time.Time `json:"pubDate"`
}

func (s *CourseService) CreateCourse(ctx context.Context, req CourseReq) (*model.Course, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, util.ErrCourseNameRequired
	}

	course := &model.Course{Name: strings.TrimSpace(*req.Name), PubDate: req.PubDate}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if course.PubDate == nil {
		now := time.Now()
		course.PubDate = &now
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID uint, req CourseReq) (*model.Course, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.PubDate != nil {
		course.PubDate = req.PubDate
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return course, nil
}

func (s *CourseService) Search(keyword string, page, limit int) ([]model.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.CourseRepo.Search(keyword, page, limit)
}

type LessonReq struct {
	Title   string `json:"title" binding:"required,max=200"`
	Order   int    `json:"order"`
	Content string `json:"content"`
}

func (s *CourseService) AddLesson(courseID uint, req LessonReq) (*model.Lesson, error) {
	if _, err := s.findCourse(courseID); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Order:    req.Order,
		Content:  req.Content,
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) AssignInstructor(courseID, instructorID uint) error {
	course, err := s.findCourse(courseID)
	if err != nil {
		return err
	}

	instructor, err := s.ProfileRepo.FindInstructorByID(instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.CourseRepo.AddInstructor(course, instructor)
}

// UploadImage validates the image, stores it and replaces the course image.
func (s *CourseService) UploadImage(ctx context.Context, courseID uint, fh *multipart.FileHeader) (*model.Course, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}

	if fh.Size > util.MaxImageSize || !util.HasAllowedExtension(fh.Filename, util.AllowedImageExtensions) {
		return nil, util.ErrInvalidFile
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return nil, util.ErrInvalidFile
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("course_images/%d/%s%s", courseID, uuid.New().String(), strings.ToLower(filepath.Ext(fh.Filename)))
	url, err := s.Storage.Upload(ctx, name, file, fh.Size, mimeType)
	if err != nil {
		return nil, err
	}

	course.Image = url
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return course, nil
}

func (s *CourseService) findCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
