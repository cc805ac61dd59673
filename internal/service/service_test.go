package service

import (
	"context"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeCache struct {
	mu          sync.Mutex
	gen         uint64
	top         []model.Course
	invalidated int
}

func (c *fakeCache) GetTop(context.Context) ([]model.Course, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.top == nil {
		return nil, c.gen, false
	}
	out := make([]model.Course, len(c.top))
	copy(out, c.top)
	return out, c.gen, true
}

func (c *fakeCache) SetTop(_ context.Context, gen uint64, courses []model.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.top = make([]model.Course, len(courses))
	copy(c.top, courses)
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.top = nil
	c.invalidated++
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []EmailMessage
}

func (m *fakeMailer) Send(messages ...EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type fixture struct {
	db      *gorm.DB
	cache   *fakeCache
	mailer  *fakeMailer
	auth    *AuthService
	course  *CourseService
	exam    *ExamService
	profile *ProfileService
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}
	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	profiles := repository.NewProfileRepository(db)

	f := &fixture{db: db, cache: &fakeCache{}, mailer: &fakeMailer{}}
	f.auth = NewAuthService(users, cfg)
	f.course = NewCourseService(db, courses, enrollments, profiles, NewStorageService(cfg), f.cache)
	f.exam = NewExamService(
		courses,
		enrollments,
		repository.NewQuestionRepository(db),
		repository.NewSubmissionRepository(db),
		users,
		f.mailer,
		grading.DefaultPolicy(),
	)
	f.profile = NewProfileService(profiles, users)
	return f
}
