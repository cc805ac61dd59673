package controller

import (
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController serves course authoring for instructors and admins.
type AdminController struct {
	CourseService  *service.CourseService
	ExamService    *service.ExamService
	ProfileService *service.ProfileService
}

func NewAdminController(courseService *service.CourseService, examService *service.ExamService, profileService *service.ProfileService) *AdminController {
	return &AdminController{
		CourseService:  courseService,
		ExamService:    examService,
		ProfileService: profileService,
	}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /admin/courses [post]
func (c *AdminController) CreateCourse(ctx *gin.Context) {
	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseReq true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /admin/courses/{id} [put]
func (c *AdminController) UpdateCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.CourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), courseID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// AddLesson godoc
// @Summary 添加课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.LessonReq true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /admin/courses/{id}/lessons [post]
func (c *AdminController) AddLesson(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.AddLesson(courseID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// AddQuestion godoc
// @Summary 添加试题
// @Description 添加试题及其选项，至少一个选项
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.QuestionReq true "试题信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /admin/courses/{id}/questions [post]
func (c *AdminController) AddQuestion(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ExamService.CreateQuestion(courseID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UploadImage godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param image formData file true "图片文件"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /admin/courses/{id}/image [post]
func (c *AdminController) UploadImage(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fh, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image is required")
		return
	}

	course, err := c.CourseService.UploadImage(ctx.Request.Context(), courseID, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// swagger:model AssignInstructorRequest
type AssignInstructorRequest struct {
	InstructorID uint `json:"instructorId" binding:"required"`
}

// AssignInstructor godoc
// @Summary 指定授课教师
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body AssignInstructorRequest true "教师档案ID"
// @Success 200 {object} util.Response
// @Router /admin/courses/{id}/instructors [post]
func (c *AdminController) AssignInstructor(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req AssignInstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CourseService.AssignInstructor(courseID, req.InstructorID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"courseId": courseID, "instructorId": req.InstructorID})
}

// ListSubmissions godoc
// @Summary 课程提交记录
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /admin/courses/{id}/submissions [get]
func (c *AdminController) ListSubmissions(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	page, limit := pageParams(ctx)
	rows, total, err := c.ExamService.ListSubmissions(courseID, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Paged(ctx, rows, total, page, limit)
}

// RegradeSubmission godoc
// @Summary 重新评分
// @Description 使用当前评分规则刷新提交的成绩快照
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param submissionId path int true "提交ID"
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /admin/courses/{id}/submissions/{submissionId}/regrade [post]
func (c *AdminController) RegradeSubmission(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	submissionID, ok := pathID(ctx, "submissionId")
	if !ok {
		return
	}

	sub, err := c.ExamService.Regrade(ctx.Request.Context(), courseID, submissionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}

// ReconcileEnrollments godoc
// @Summary 校正报名人数
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /admin/enrollments/reconcile [post]
func (c *AdminController) ReconcileEnrollments(ctx *gin.Context) {
	fixed, err := c.CourseService.ReconcileEnrollmentCounts(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"fixed": fixed})
}

// CreateInstructor godoc
// @Summary 创建教师档案
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.InstructorReq true "教师信息"
// @Success 201 {object} util.Response{data=model.Instructor}
// @Failure 409 {object} util.Response
// @Router /admin/instructors [post]
func (c *AdminController) CreateInstructor(ctx *gin.Context) {
	var req service.InstructorReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	instructor, err := c.ProfileService.CreateInstructor(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, instructor)
}

// CreateLearner godoc
// @Summary 创建学员档案
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.LearnerReq true "学员信息"
// @Success 201 {object} util.Response{data=model.Learner}
// @Failure 409 {object} util.Response
// @Router /admin/learners [post]
func (c *AdminController) CreateLearner(ctx *gin.Context) {
	var req service.LearnerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	learner, err := c.ProfileService.CreateLearner(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, learner)
}
