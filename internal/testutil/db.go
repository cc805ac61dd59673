// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/database"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory sqlite database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
		LogLevel: "silent",
	}, true)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username, password string, role model.UserRole) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	user := &model.User{
		Username:  username,
		FirstName: "Test",
		LastName:  strings.ToUpper(username[:1]) + username[1:],
		Email:     username + "@example.com",
		Password:  string(hash),
		Role:      role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return user
}

// ExamFixture is a course with two questions:
// Q1 (grade 60) correct {A}; Q2 (grade 40) correct {C, D}.
type ExamFixture struct {
	Course *model.Course
	Q1, Q2 *model.Question
	// A, B belong to Q1; C, D, E to Q2.
	A, B, C, D, E *model.Choice
}

func CreateExam(t *testing.T, db *gorm.DB, name string) *ExamFixture {
	t.Helper()

	f := &ExamFixture{Course: &model.Course{Name: name, Description: name + " description"}}
	mustCreate(t, db, f.Course)
	mustCreate(t, db, &model.Lesson{CourseID: f.Course.ID, Title: "Intro", Order: 1, Content: "hello"})

	f.Q1 = &model.Question{CourseID: f.Course.ID, QuestionText: "Q1", Grade: 60}
	f.Q2 = &model.Question{CourseID: f.Course.ID, QuestionText: "Q2", Grade: 40}
	mustCreate(t, db, f.Q1)
	mustCreate(t, db, f.Q2)

	f.A = &model.Choice{QuestionID: f.Q1.ID, ChoiceText: "A", IsCorrect: true}
	f.B = &model.Choice{QuestionID: f.Q1.ID, ChoiceText: "B"}
	f.C = &model.Choice{QuestionID: f.Q2.ID, ChoiceText: "C", IsCorrect: true}
	f.D = &model.Choice{QuestionID: f.Q2.ID, ChoiceText: "D", IsCorrect: true}
	f.E = &model.Choice{QuestionID: f.Q2.ID, ChoiceText: "E"}
	for _, c := range []*model.Choice{f.A, f.B, f.C, f.D, f.E} {
		mustCreate(t, db, c)
	}
	return f
}

func Enroll(t *testing.T, db *gorm.DB, user *model.User, course *model.Course) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{UserID: user.ID, CourseID: course.ID, Mode: model.ModeHonor}
	mustCreate(t, db, e)
	return e
}

// Claims is what the auth middleware would put on the request for user.
func Claims(user *model.User) *util.Claims {
	return &util.Claims{UserID: user.ID, Role: user.Role, Username: user.Username}
}

func CountEnrollments(t *testing.T, db *gorm.DB, courseID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		t.Fatalf("CountEnrollments() failed: %v", err)
	}
	return count
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T failed: %v", v, err)
	}
}
