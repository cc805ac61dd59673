package controller

import (
	"errors"
	"fmt"
	"net/http"
	"onlinecourse_backend/internal/middleware"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	indexPath = "/"
	LoginPath = "/login/"
)

// WebController renders the HTML pages. Users are identified by the cookie session.
type WebController struct {
	AuthService   *service.AuthService
	CourseService *service.CourseService
	ExamService   *service.ExamService
	Sessions      *middleware.SessionStore
}

func NewWebController(
	authService *service.AuthService,
	courseService *service.CourseService,
	examService *service.ExamService,
	sessions *middleware.SessionStore,
) *WebController {
	return &WebController{
		AuthService:   authService,
		CourseService: courseService,
		ExamService:   examService,
		Sessions:      sessions,
	}
}

func (c *WebController) render(ctx *gin.Context, status int, name string, data gin.H) {
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Online Course"
	}
	data["User"] = util.GetUserFromContext(ctx)
	ctx.HTML(status, name, data)
}

func (c *WebController) renderError(ctx *gin.Context, status int, message string) {
	c.render(ctx, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  http.StatusText(status),
		"Message": message,
	})
}

// fail renders 404 for missing records and 500 for anything else.
func (c *WebController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrChoiceNotFound),
		errors.Is(err, util.ErrNotEnrolled):
		c.renderError(ctx, http.StatusNotFound, err.Error())
	default:
		logger.Log.Error("Internal server error", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
		c.renderError(ctx, http.StatusInternalServerError, "Something went wrong.")
	}
}

func (c *WebController) courseID(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseID(ctx.Param("course_id"))
	if !ok {
		c.renderError(ctx, http.StatusNotFound, util.ErrCourseNotFound.Error())
	}
	return id, ok
}

func (c *WebController) Index(ctx *gin.Context) {
	courses, err := c.CourseService.ListTop(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "course_list.html", gin.H{"Courses": courses})
}

func (c *WebController) RegistrationPage(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "registration.html", gin.H{"Title": "Sign Up"})
}

type RegistrationForm struct {
	Username  string `form:"username" binding:"required,username"`
	Password  string `form:"psw" binding:"required"`
	FirstName string `form:"firstname" binding:"max=150"`
	LastName  string `form:"lastname" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
}

// Register creates the account, logs it in and goes back to the course list.
func (c *WebController) Register(ctx *gin.Context) {
	var form RegistrationForm
	if err := ctx.ShouldBind(&form); err != nil {
		c.render(ctx, http.StatusBadRequest, "registration.html", gin.H{
			"Title":   "Sign Up",
			"Message": "Please provide a valid username and password.",
		})
		return
	}

	user := &model.User{
		Username:  form.Username,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	}
	if err := c.AuthService.Register(user); err != nil {
		if errors.Is(err, util.ErrUserExists) {
			c.render(ctx, http.StatusOK, "registration.html", gin.H{"Title": "Sign Up", "Message": util.MsgUserExists})
			return
		}
		c.fail(ctx, err)
		return
	}

	if err := c.Sessions.Login(ctx, user); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, indexPath)
}

func (c *WebController) LoginPage(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (c *WebController) Login(ctx *gin.Context) {
	user, err := c.AuthService.Authenticate(ctx.PostForm("username"), ctx.PostForm("psw"))
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			c.render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Login", "Message": util.MsgInvalidCredentials})
			return
		}
		c.fail(ctx, err)
		return
	}

	if err := c.Sessions.Login(ctx, user); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, indexPath)
}

func (c *WebController) Logout(ctx *gin.Context) {
	if err := c.Sessions.Logout(ctx); err != nil {
		logger.Log.Warn("logout failed", zap.Error(err))
	}
	ctx.Redirect(http.StatusFound, indexPath)
}

func (c *WebController) CourseDetail(ctx *gin.Context) {
	courseID, ok := c.courseID(ctx)
	if !ok {
		return
	}

	course, err := c.CourseService.GetDetail(courseID, currentUserID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "course_detail.html", gin.H{
		"Title":    course.Name,
		"Course":   course,
		"Enrolled": course.IsEnrolled,
	})
}

// Enroll always ends on the course page. Anonymous users are not enrolled.
func (c *WebController) Enroll(ctx *gin.Context) {
	courseID, ok := c.courseID(ctx)
	if !ok {
		return
	}

	if userID := currentUserID(ctx); userID != 0 {
		if _, err := c.CourseService.Enroll(ctx.Request.Context(), userID, courseID); err != nil {
			c.fail(ctx, err)
			return
		}
	} else if _, err := c.CourseService.Get(courseID); err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, fmt.Sprintf("/%d/", courseID))
}

func (c *WebController) Submit(ctx *gin.Context) {
	courseID, ok := c.courseID(ctx)
	if !ok {
		return
	}
	if _, err := c.CourseService.Get(courseID); err != nil {
		c.fail(ctx, err)
		return
	}

	userID := currentUserID(ctx)
	if userID == 0 {
		ctx.Redirect(http.StatusFound, LoginPath)
		return
	}

	choiceIDs, err := choiceIDsFromRequest(ctx)
	if err != nil {
		c.renderError(ctx, http.StatusBadRequest, "Invalid answer.")
		return
	}

	sub, _, err := c.ExamService.Submit(ctx.Request.Context(), userID, courseID, choiceIDs)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/%d/submission/%d/result/", courseID, sub.ID))
}

func (c *WebController) Result(ctx *gin.Context) {
	courseID, ok := c.courseID(ctx)
	if !ok {
		return
	}
	submissionID, ok := util.ParseID(ctx.Param("submission_id"))
	if !ok {
		c.renderError(ctx, http.StatusNotFound, util.ErrSubmissionNotFound.Error())
		return
	}

	view, err := c.ExamService.Result(ctx.Request.Context(), util.GetUserFromContext(ctx), courseID, submissionID)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "exam_result.html", gin.H{
		"Title":  view.Course.Name,
		"Result": view,
	})
}
