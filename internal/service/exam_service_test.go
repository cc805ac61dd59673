package service

import (
	"context"
	"encoding/json"
	"onlinecourse_backend/internal/grading"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGradesAndSnapshots(t *testing.T) {
	tests := []struct {
		name       string
		choices    func(e *testutil.ExamFixture) []uint
		wantScore  int
		wantPct    float64
		wantPassed bool
	}{
		{
			name:       "all correct",
			choices:    func(e *testutil.ExamFixture) []uint { return []uint{e.A.ID, e.C.ID, e.D.ID} },
			wantScore:  100,
			wantPct:    100,
			wantPassed: true,
		},
		{
			name:       "partial selection earns nothing for that question",
			choices:    func(e *testutil.ExamFixture) []uint { return []uint{e.A.ID, e.C.ID} },
			wantScore:  60,
			wantPct:    60,
			wantPassed: true,
		},
		{
			name:      "extra wrong choice",
			choices:   func(e *testutil.ExamFixture) []uint { return []uint{e.B.ID, e.C.ID, e.D.ID, e.E.ID} },
			wantScore: 0,
			wantPct:   0,
		},
		{
			name:      "light question only",
			choices:   func(e *testutil.ExamFixture) []uint { return []uint{e.C.ID, e.D.ID} },
			wantScore: 40,
			wantPct:   40,
		},
		{
			name:      "empty submission",
			choices:   func(e *testutil.ExamFixture) []uint { return nil },
			wantScore: 0,
			wantPct:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.OpenDB(t)
			f := newFixture(t, db)
			user := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
			exam := testutil.CreateExam(t, db, "Go")
			testutil.Enroll(t, db, user, exam.Course)

			sub, res, err := f.exam.Submit(context.Background(), user.ID, exam.Course.ID, tt.choices(exam))
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, 100, res.MaxScore)
			assert.Equal(t, tt.wantPct, res.Percentage)
			assert.Equal(t, tt.wantPassed, res.Passed)

			stored, err := f.exam.SubmissionRepo.FindByID(sub.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, stored.Score)
			assert.Equal(t, tt.wantPct, stored.Percentage)
			assert.Equal(t, tt.wantPassed, stored.Passed)
			assert.ElementsMatch(t, uniqueIDs(tt.choices(exam)), stored.ChoiceIDs())

			var breakdown []grading.QuestionResult
			require.NoError(t, json.Unmarshal(stored.Breakdown, &breakdown))
			assert.Len(t, breakdown, 2)
		})
	}
}

func TestSubmitRejections(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	bob := testutil.CreateUser(t, db, "bob", "secret", model.RoleLearner)
	goExam := testutil.CreateExam(t, db, "Go")
	pyExam := testutil.CreateExam(t, db, "Python")
	testutil.Enroll(t, db, alice, goExam.Course)

	tests := []struct {
		name     string
		userID   uint
		courseID uint
		choices  []uint
		wantErr  error
	}{
		{name: "unknown course", userID: alice.ID, courseID: 999, choices: []uint{goExam.A.ID}, wantErr: util.ErrCourseNotFound},
		{name: "not enrolled", userID: bob.ID, courseID: goExam.Course.ID, choices: []uint{goExam.A.ID}, wantErr: util.ErrNotEnrolled},
		{name: "choice of another course", userID: alice.ID, courseID: goExam.Course.ID, choices: []uint{goExam.A.ID, pyExam.C.ID}, wantErr: util.ErrChoiceNotFound},
		{name: "nonexistent choice", userID: alice.ID, courseID: goExam.Course.ID, choices: []uint{12345}, wantErr: util.ErrChoiceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.exam.Submit(ctx, tt.userID, tt.courseID, tt.choices)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, db.Model(&model.Submission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitIgnoresDuplicateChoices(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	user := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	exam := testutil.CreateExam(t, db, "Go")
	testutil.Enroll(t, db, user, exam.Course)

	sub, res, err := f.exam.Submit(context.Background(), user.ID, exam.Course.ID, []uint{exam.A.ID, exam.A.ID})
	require.NoError(t, err)
	assert.Equal(t, 60, res.Score)
	assert.Len(t, sub.Choices, 1)
}

func TestSubmitSendsNotification(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	user := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	exam := testutil.CreateExam(t, db, "Go")
	testutil.Enroll(t, db, user, exam.Course)

	_, _, err := f.exam.Submit(context.Background(), user.ID, exam.Course.ID, []uint{exam.A.ID})
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].ToAddress)
	assert.Contains(t, f.mailer.sent[0].TextContent, "passed")
}

func TestResultVisibility(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	bob := testutil.CreateUser(t, db, "bob", "secret", model.RoleLearner)
	staff := testutil.CreateUser(t, db, "carol", "secret", model.RoleInstructor)
	goExam := testutil.CreateExam(t, db, "Go")
	pyExam := testutil.CreateExam(t, db, "Python")
	testutil.Enroll(t, db, alice, goExam.Course)

	sub, _, err := f.exam.Submit(ctx, alice.ID, goExam.Course.ID, []uint{goExam.A.ID, goExam.E.ID})
	require.NoError(t, err)

	tests := []struct {
		name     string
		viewer   *util.Claims
		courseID uint
		subID    uint
		wantErr  error
	}{
		{name: "owner", viewer: testutil.Claims(alice), courseID: goExam.Course.ID, subID: sub.ID},
		{name: "staff", viewer: testutil.Claims(staff), courseID: goExam.Course.ID, subID: sub.ID},
		{name: "other learner", viewer: testutil.Claims(bob), courseID: goExam.Course.ID, subID: sub.ID, wantErr: util.ErrSubmissionNotFound},
		{name: "anonymous", viewer: nil, courseID: goExam.Course.ID, subID: sub.ID, wantErr: util.ErrSubmissionNotFound},
		{name: "wrong course", viewer: testutil.Claims(alice), courseID: pyExam.Course.ID, subID: sub.ID, wantErr: util.ErrSubmissionNotFound},
		{name: "missing course", viewer: testutil.Claims(alice), courseID: 999, subID: sub.ID, wantErr: util.ErrCourseNotFound},
		{name: "missing submission", viewer: testutil.Claims(alice), courseID: goExam.Course.ID, subID: 999, wantErr: util.ErrSubmissionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.exam.Result(ctx, tt.viewer, tt.courseID, tt.subID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 60, view.Score)
			assert.Equal(t, 100, view.MaxScore)
			assert.Equal(t, 60.0, view.Percentage)
			assert.True(t, view.Passed)
			assert.Equal(t, "Go", view.Course.Name)
		})
	}
}

func TestResultMarksChoices(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	exam := testutil.CreateExam(t, db, "Go")
	testutil.Enroll(t, db, alice, exam.Course)

	sub, _, err := f.exam.Submit(ctx, alice.ID, exam.Course.ID, []uint{exam.B.ID, exam.C.ID, exam.D.ID})
	require.NoError(t, err)

	view, err := f.exam.Result(ctx, testutil.Claims(alice), exam.Course.ID, sub.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)

	q1, q2 := view.Questions[0], view.Questions[1]
	assert.False(t, q1.IsCorrect)
	assert.Zero(t, q1.Earned)
	assert.True(t, q2.IsCorrect)
	assert.Equal(t, 40, q2.Earned)

	selected := map[uint]bool{}
	for _, q := range view.Questions {
		for _, c := range q.Choices {
			selected[c.ID] = c.Selected
		}
	}
	assert.Equal(t, map[uint]bool{
		exam.A.ID: false, exam.B.ID: true,
		exam.C.ID: true, exam.D.ID: true, exam.E.ID: false,
	}, selected)
}

func TestSetPolicyAffectsLaterGrading(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", "secret", model.RoleLearner)
	exam := testutil.CreateExam(t, db, "Go")
	testutil.Enroll(t, db, alice, exam.Course)

	// Only the light question is right: 40% weighted, 50% unweighted.
	sub, res, err := f.exam.Submit(ctx, alice.ID, exam.Course.ID, []uint{exam.C.ID, exam.D.ID})
	require.NoError(t, err)
	assert.False(t, res.Passed)

	f.exam.SetPolicy(grading.Policy{Scoring: grading.Unweighted, PassPercentage: 50, EmptyKey: grading.Unsatisfiable})

	view, err := f.exam.Result(ctx, testutil.Claims(alice), exam.Course.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, view.Percentage)
	assert.True(t, view.Passed)
	assert.Equal(t, "unweighted", view.Scoring)

	stored, err := f.exam.SubmissionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stored.Percentage)

	regraded, err := f.exam.Regrade(ctx, exam.Course.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, regraded.Percentage)

	stored, err = f.exam.SubmissionRepo.FindByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.Percentage)
	assert.True(t, stored.Passed)
}

func TestCreateQuestion(t *testing.T) {
	db := testutil.OpenDB(t)
	f := newFixture(t, db)
	exam := testutil.CreateExam(t, db, "Go")

	q, err := f.exam.CreateQuestion(exam.Course.ID, QuestionReq{
		Text:    "Q3",
		Choices: []ChoiceReq{{Text: "yes", IsCorrect: true}, {Text: "no"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, q.Grade)
	require.Len(t, q.Choices, 2)
	assert.NotZero(t, q.Choices[0].ID)

	questions, err := f.exam.QuestionRepo.ListByCourse(exam.Course.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	_, err = f.exam.CreateQuestion(999, QuestionReq{Text: "Q", Choices: []ChoiceReq{{Text: "a"}}})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(examConfig("unweighted", 70, "vacuous"))
	assert.Equal(t, grading.Policy{Scoring: grading.Unweighted, PassPercentage: 70, EmptyKey: grading.Vacuous}, p)
}
