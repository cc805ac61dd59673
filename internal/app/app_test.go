package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", Mode: "test"},
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Session: config.SessionConfig{Name: "test_session", Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Exam:    config.ExamConfig{Scoring: config.ScoringWeighted, PassPercentage: 50, EmptyKey: config.EmptyKeyUnsatisfiable},
	}
}

func newTestApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	return New(testConfig(t), db, nil), db
}

// browser replays the cookies it receives, like a user agent would.
type browser struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, a *App) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.app.Router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) login(username, password string) {
	b.t.Helper()
	w := b.do(http.MethodPost, "/login/", url.Values{"username": {username}, "psw": {password}})
	require.Equal(b.t, http.StatusFound, w.Code)
	require.Equal(b.t, "/", w.Header().Get("Location"))
}

func TestWebRegistration(t *testing.T) {
	a, db := newTestApp(t)
	b := newBrowser(t, a)

	w := b.do(http.MethodGet, "/registration/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="psw"`)

	form := url.Values{"username": {"alice"}, "psw": {"secret1"}, "firstname": {"Alice"}, "lastname": {"Smith"}}
	w = b.do(http.MethodPost, "/registration/", form)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = b.do(http.MethodGet, "/", nil)
	assert.Contains(t, w.Body.String(), "alice")

	other := newBrowser(t, a)
	w = other.do(http.MethodPost, "/registration/", form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists.")

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebLoginLogout(t *testing.T) {
	a, db := newTestApp(t)
	testutil.CreateUser(t, db, "alice", "secret1", model.RoleLearner)
	b := newBrowser(t, a)

	w := b.do(http.MethodPost, "/login/", url.Values{"username": {"alice"}, "psw": {"wrong"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	b.login("alice", "secret1")
	assert.Contains(t, b.do(http.MethodGet, "/", nil).Body.String(), "/logout/")

	w = b.do(http.MethodGet, "/logout/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NotContains(t, b.do(http.MethodGet, "/", nil).Body.String(), "/logout/")
}

func TestWebEnrollAndExam(t *testing.T) {
	a, db := newTestApp(t)
	testutil.CreateUser(t, db, "alice", "secret1", model.RoleLearner)
	exam := testutil.CreateExam(t, db, "Go")
	coursePath := fmt.Sprintf("/%d/", exam.Course.ID)

	anon := newBrowser(t, a)
	w := anon.do(http.MethodPost, coursePath+"enroll/", url.Values{})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, coursePath, w.Header().Get("Location"))

	w = anon.do(http.MethodPost, coursePath+"submit/", url.Values{"choice_1": {fmt.Sprint(exam.A.ID)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/", w.Header().Get("Location"))

	b := newBrowser(t, a)
	b.login("alice", "secret1")

	// Not enrolled yet.
	w = b.do(http.MethodPost, coursePath+"submit/", url.Values{"choice_1": {fmt.Sprint(exam.A.ID)}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for i := 0; i < 2; i++ {
		w = b.do(http.MethodPost, coursePath+"enroll/", url.Values{})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, coursePath, w.Header().Get("Location"))
	}
	var enrollments int64
	require.NoError(t, db.Model(&model.Enrollment{}).Count(&enrollments).Error)
	assert.Equal(t, int64(1), enrollments)

	w = b.do(http.MethodGet, coursePath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`name="choice_%d"`, exam.A.ID))

	w = b.do(http.MethodPost, coursePath+"submit/", url.Values{"choice_999999": {"999999"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	form := url.Values{
		fmt.Sprintf("choice_%d", exam.A.ID): {fmt.Sprint(exam.A.ID)},
		fmt.Sprintf("choice_%d", exam.C.ID): {fmt.Sprint(exam.C.ID)},
		fmt.Sprintf("choice_%d", exam.D.ID): {fmt.Sprint(exam.D.ID)},
		"csrfmiddlewaretoken":               {"ignored"},
	}
	w = b.do(http.MethodPost, coursePath+"submit/", form)
	require.Equal(t, http.StatusFound, w.Code)
	resultPath := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(resultPath, coursePath+"submission/"))

	w = b.do(http.MethodGet, resultPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Congratulations")
	assert.Contains(t, w.Body.String(), "100.00%")

	w = anon.do(http.MethodGet, resultPath, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/", w.Header().Get("Location"))

	w = b.do(http.MethodGet, coursePath+"submission/999/result/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebMissingCourse(t *testing.T) {
	a, _ := newTestApp(t)
	b := newBrowser(t, a)

	for _, path := range []string{"/999/", "/abc/"} {
		w := b.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := b.do(http.MethodPost, "/999/submit/", url.Values{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func apiCall(t *testing.T, a *App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func apiLogin(t *testing.T, a *App, username, password string) string {
	t.Helper()
	code, env := apiCall(t, a, http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, code, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestAPIExamFlow(t *testing.T) {
	a, db := newTestApp(t)
	exam := testutil.CreateExam(t, db, "Go")

	register := map[string]string{"username": "alice", "password": "secret1", "firstName": "Alice", "lastName": "Smith"}
	code, _ := apiCall(t, a, http.MethodPost, "/api/register", "", register)
	require.Equal(t, http.StatusCreated, code)
	code, env := apiCall(t, a, http.MethodPost, "/api/register", "", register)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists.", env.Message)

	code, env = apiCall(t, a, http.MethodPost, "/api/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password.", env.Message)

	token := apiLogin(t, a, "alice", "secret1")
	coursePath := fmt.Sprintf("/api/courses/%d", exam.Course.ID)

	code, _ = apiCall(t, a, http.MethodPost, coursePath+"/enroll", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = apiCall(t, a, http.MethodPost, coursePath+"/submissions", token, map[string][]uint{"choiceIds": {exam.A.ID}})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = apiCall(t, a, http.MethodPost, coursePath+"/enroll", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`{"courseId":%d,"enrolled":true,"created":true}`, exam.Course.ID), string(env.Data))

	code, env = apiCall(t, a, http.MethodPost, coursePath+"/enroll", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`{"courseId":%d,"enrolled":true,"created":false}`, exam.Course.ID), string(env.Data))

	code, env = apiCall(t, a, http.MethodGet, "/api/courses", token, nil)
	require.Equal(t, http.StatusOK, code)
	var courses []model.Course
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	require.Len(t, courses, 1)
	assert.True(t, courses[0].IsEnrolled)
	assert.Equal(t, 1, courses[0].TotalEnrollment)

	code, env = apiCall(t, a, http.MethodPost, coursePath+"/submissions", token, map[string][]uint{"choiceIds": {exam.B.ID, exam.C.ID, exam.D.ID}})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var submitted struct {
		SubmissionID uint    `json:"submissionId"`
		Score        int     `json:"score"`
		Percentage   float64 `json:"percentage"`
		Passed       bool    `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.Equal(t, 40, submitted.Score)
	assert.Equal(t, 40.0, submitted.Percentage)
	assert.False(t, submitted.Passed)

	code, env = apiCall(t, a, http.MethodGet, fmt.Sprintf("%s/submissions/%d", coursePath, submitted.SubmissionID), token, nil)
	require.Equal(t, http.StatusOK, code)
	var result struct {
		Score     int `json:"score"`
		Questions []struct {
			IsCorrect bool `json:"isCorrect"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 40, result.Score)
	require.Len(t, result.Questions, 2)
	assert.False(t, result.Questions[0].IsCorrect)
	assert.True(t, result.Questions[1].IsCorrect)

	testutil.CreateUser(t, db, "bob", "secret1", model.RoleLearner)
	bobToken := apiLogin(t, a, "bob", "secret1")
	code, _ = apiCall(t, a, http.MethodGet, fmt.Sprintf("%s/submissions/%d", coursePath, submitted.SubmissionID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPIAdminRoutes(t *testing.T) {
	a, db := newTestApp(t)
	testutil.CreateUser(t, db, "alice", "secret1", model.RoleLearner)
	testutil.CreateUser(t, db, "carol", "secret1", model.RoleInstructor)
	learner := apiLogin(t, a, "alice", "secret1")
	instructor := apiLogin(t, a, "carol", "secret1")

	course := map[string]string{"name": "Databases", "description": "SQL"}
	code, _ := apiCall(t, a, http.MethodPost, "/api/admin/courses", learner, course)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := apiCall(t, a, http.MethodPost, "/api/admin/courses", instructor, course)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created model.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))

	question := map[string]interface{}{
		"text":  "Is SQL declarative?",
		"grade": 10,
		"choices": []map[string]interface{}{
			{"text": "yes", "isCorrect": true},
			{"text": "no"},
		},
	}
	code, env = apiCall(t, a, http.MethodPost, fmt.Sprintf("/api/admin/courses/%d/questions", created.ID), instructor, question)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = apiCall(t, a, http.MethodPost, fmt.Sprintf("/api/admin/courses/%d/questions", created.ID), instructor, map[string]interface{}{"text": "no choices"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = apiCall(t, a, http.MethodPost, "/api/admin/enrollments/reconcile", instructor, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = apiCall(t, a, http.MethodGet, fmt.Sprintf("/api/courses/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestConfigCallbackSwapsPolicy(t *testing.T) {
	a, _ := newTestApp(t)

	cfg := testConfig(t)
	cfg.Exam.Scoring = config.ScoringUnweighted
	cfg.Exam.PassPercentage = 80
	a.applyConfig(cfg)

	p := a.services.exam.Policy()
	assert.Equal(t, "unweighted", string(p.Scoring))
	assert.Equal(t, 80.0, p.PassPercentage)
}

func TestHealthCheck(t *testing.T) {
	a, _ := newTestApp(t)
	code, _ := apiCall(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
