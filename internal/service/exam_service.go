package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	QuestionRepo   *repository.QuestionRepository
	SubmissionRepo *repository.SubmissionRepository
	UserRepo       *repository.UserRepository
	Mailer         Mailer

	mu     sync.RWMutex
	policy grading.Policy
}

func NewExamService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	questionRepo *repository.QuestionRepository,
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
	mailer Mailer,
	policy grading.Policy,
) *ExamService {
	return &ExamService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		QuestionRepo:   questionRepo,
		SubmissionRepo: submissionRepo,
		UserRepo:       userRepo,
		Mailer:         mailer,
		policy:         policy,
	}
}

// PolicyFromConfig converts the exam section of the config into a grading policy.
func PolicyFromConfig(cfg config.ExamConfig) grading.Policy {
	return grading.Policy{
		Scoring:        grading.Scoring(cfg.Scoring),
		PassPercentage: cfg.PassPercentage,
		EmptyKey:       grading.EmptyKey(cfg.EmptyKey),
	}
}

func (s *ExamService) Policy() grading.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// SetPolicy swaps the policy used by later gradings. Stored snapshots are not touched.
func (s *ExamService) SetPolicy(p grading.Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
	logger.Log.Info("grading policy updated",
		zap.String("scoring", string(p.Scoring)),
		zap.Float64("passPercentage", p.PassPercentage),
		zap.String("emptyKey", string(p.EmptyKey)))
}

// Submit records the user's selected choices for the course exam and grades them.
// The user must be enrolled and every choice must belong to a question of the course.
func (s *ExamService) Submit(ctx context.Context, userID, courseID uint, choiceIDs []uint) (sub *model.Submission, res *grading.Result, err error) {
	ctx, span := tracing.Start(ctx, "exam.submit")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int("choices", len(choiceIDs)),
	)

	if _, err = s.findCourse(courseID); err != nil {
		return nil, nil, err
	}

	enrollment, err := s.EnrollmentRepo.Find(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrNotEnrolled
		}
		return nil, nil, err
	}

	ids := uniqueIDs(choiceIDs)
	choices, err := s.QuestionRepo.FindChoicesInCourse(courseID, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(choices) != len(ids) {
		return nil, nil, util.ErrChoiceNotFound
	}

	res, err = s.grade(ctx, courseID, ids)
	if err != nil {
		return nil, nil, err
	}

	sub = &model.Submission{EnrollmentID: enrollment.ID}
	if err = applySnapshot(sub, res); err != nil {
		return nil, nil, err
	}
	if err = s.SubmissionRepo.Create(sub, choices); err != nil {
		return nil, nil, err
	}
	sub.Choices = choices

	monitoring.ObserveSubmission(res.Percentage, res.Passed)
	logger.Log.Info("exam submitted",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
		zap.Uint("submissionId", sub.ID),
		zap.Float64("percentage", res.Percentage),
		zap.Bool("passed", res.Passed))

	s.notify(userID, courseID, sub, res)
	return sub, res, nil
}

type ChoiceView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Selected  bool   `json:"selected"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionView struct {
	ID        uint         `json:"id"`
	Text      string       `json:"text"`
	Grade     int          `json:"grade"`
	Earned    int          `json:"earned"`
	IsCorrect bool         `json:"isCorrect"`
	Choices   []ChoiceView `json:"choices"`
}

// ResultView is a graded submission laid out for display.
type ResultView struct {
	Course         *model.Course  `json:"course"`
	SubmissionID   uint           `json:"submissionId"`
	Questions      []QuestionView `json:"questions"`
	Score          int            `json:"score"`
	MaxScore       int            `json:"maxScore"`
	CorrectCount   int            `json:"correctCount"`
	QuestionCount  int            `json:"questionCount"`
	Percentage     float64        `json:"percentage"`
	Passed         bool           `json:"passed"`
	Scoring        string         `json:"scoring"`
	PassPercentage float64        `json:"passPercentage"`
}

// Result grades a stored submission against the course's current questions.
// Submissions of other courses or of other users (unless viewer is staff) are
// reported as util.ErrSubmissionNotFound.
func (s *ExamService) Result(ctx context.Context, viewer *util.Claims, courseID, submissionID uint) (view *ResultView, err error) {
	ctx, span := tracing.Start(ctx, "exam.result")
	defer func() { tracing.End(span, err) }()

	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}

	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.Enrollment == nil || sub.Enrollment.CourseID != courseID {
		return nil, util.ErrSubmissionNotFound
	}
	if viewer == nil || (viewer.UserID != sub.Enrollment.UserID && !viewer.IsStaff()) {
		return nil, util.ErrSubmissionNotFound
	}

	questions, err := s.QuestionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	policy := s.Policy()
	res := gradeQuestions(ctx, questions, sub.ChoiceIDs(), policy)

	view = &ResultView{
		Course:         course,
		SubmissionID:   sub.ID,
		Questions:      make([]QuestionView, 0, len(questions)),
		Score:          res.Score,
		MaxScore:       res.MaxScore,
		CorrectCount:   res.CorrectCount,
		QuestionCount:  res.QuestionCount,
		Percentage:     res.Percentage,
		Passed:         res.Passed,
		Scoring:        string(policy.Scoring),
		PassPercentage: policy.PassPercentage,
	}

	selected := make(map[uint]bool, len(sub.Choices))
	for _, id := range sub.ChoiceIDs() {
		selected[id] = true
	}
	for i, q := range questions {
		qv := QuestionView{
			ID:        q.ID,
			Text:      q.QuestionText,
			Grade:     q.Grade,
			Earned:    res.Questions[i].Earned,
			IsCorrect: res.Questions[i].IsCorrect,
			Choices:   make([]ChoiceView, 0, len(q.Choices)),
		}
		for _, c := range q.Choices {
			qv.Choices = append(qv.Choices, ChoiceView{
				ID:        c.ID,
				Text:      c.ChoiceText,
				Selected:  selected[c.ID],
				IsCorrect: c.IsCorrect,
			})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// Regrade refreshes the stored snapshot of a submission with the current policy.
func (s *ExamService) Regrade(ctx context.Context, courseID, submissionID uint) (*model.Submission, error) {
	sub, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if sub.Enrollment == nil || sub.Enrollment.CourseID != courseID {
		return nil, util.ErrSubmissionNotFound
	}

	res, err := s.grade(ctx, courseID, sub.ChoiceIDs())
	if err != nil {
		return nil, err
	}
	if err := applySnapshot(sub, res); err != nil {
		return nil, err
	}
	if err := s.SubmissionRepo.UpdateScore(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ExamService) ListSubmissions(courseID uint, page, limit int) ([]repository.SubmissionListRow, int64, error) {
	if _, err := s.findCourse(courseID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.SubmissionRepo.ListByCourse(courseID, page, limit)
}

type ChoiceReq struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionReq struct {
	Text    string      `json:"text" binding:"required,max=500"`
	Grade   int         `json:"grade" binding:"omitempty,min=0"`
	Choices []ChoiceReq `json:"choices" binding:"required,min=1,dive"`
}

// CreateQuestion adds a question and its choices to the course exam.
func (s *ExamService) CreateQuestion(courseID uint, req QuestionReq) (*model.Question, error) {
	if _, err := s.findCourse(courseID); err != nil {
		return nil, err
	}

	q := &model.Question{
		CourseID:     courseID,
		QuestionText: req.Text,
		Grade:        req.Grade,
		Choices:      make([]model.Choice, 0, len(req.Choices)),
	}
	if q.Grade == 0 {
		q.Grade = 50
	}
	for _, c := range req.Choices {
		q.Choices = append(q.Choices, model.Choice{ChoiceText: c.Text, IsCorrect: c.IsCorrect})
	}

	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ExamService) grade(ctx context.Context, courseID uint, choiceIDs []uint) (*grading.Result, error) {
	questions, err := s.QuestionRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	res := gradeQuestions(ctx, questions, choiceIDs, s.Policy())
	return &res, nil
}

func gradeQuestions(ctx context.Context, questions []model.Question, choiceIDs []uint, p grading.Policy) grading.Result {
	_, span := tracing.Start(ctx, "exam.grade")
	defer span.End()

	res := grading.Grade(AnswerKeys(questions), choiceIDs, p)
	span.SetAttributes(
		attribute.Int("questions", res.QuestionCount),
		attribute.Float64("percentage", res.Percentage),
		attribute.Bool("passed", res.Passed),
	)
	return res
}

// AnswerKeys builds grading keys from questions with their choices loaded.
func AnswerKeys(questions []model.Question) []grading.QuestionKey {
	keys := make([]grading.QuestionKey, 0, len(questions))
	for _, q := range questions {
		k := grading.QuestionKey{QuestionID: q.ID, Grade: q.Grade}
		for _, c := range q.Choices {
			k.ChoiceIDs = append(k.ChoiceIDs, c.ID)
			if c.IsCorrect {
				k.CorrectIDs = append(k.CorrectIDs, c.ID)
			}
		}
		keys = append(keys, k)
	}
	return keys
}

func applySnapshot(sub *model.Submission, res *grading.Result) error {
	breakdown, err := json.Marshal(res.Questions)
	if err != nil {
		return err
	}
	sub.Score = res.Score
	sub.MaxScore = res.MaxScore
	sub.Percentage = res.Percentage
	sub.Passed = res.Passed
	sub.Breakdown = datatypes.JSON(breakdown)
	return nil
}

func (s *ExamService) notify(userID, courseID uint, sub *model.Submission, res *grading.Result) {
	if s.Mailer == nil {
		return
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		logger.Log.Warn("result notification skipped", zap.Uint("userId", userID), zap.Error(err))
		return
	}

	outcome := "did not pass"
	if res.Passed {
		outcome = "passed"
	}
	s.Mailer.Send(EmailMessage{
		ToName:    user.FullName(),
		ToAddress: user.Email,
		Subject:   "Your exam result",
		TextContent: fmt.Sprintf("Hi %s,\n\nYou %s the exam with %.2f%% (%d/%d).\nSee /%d/submission/%d/result/ for details.\n",
			user.FirstName, outcome, res.Percentage, res.Score, res.MaxScore, courseID, sub.ID),
	})
}

func (s *ExamService) findCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
