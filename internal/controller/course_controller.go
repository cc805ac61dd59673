package controller

import (
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func currentUserID(ctx *gin.Context) uint {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

// ListCourses godoc
// @Summary 热门课程列表
// @Description 按报名人数倒序返回前10门课程，登录用户附带是否已报名
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListTop(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// SearchCourses godoc
// @Summary 搜索课程
// @Tags 课程
// @Produce json
// @Param keyword query string false "关键字"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /courses/search [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	courses, total, err := c.CourseService.Search(ctx.Query("keyword"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, courses, total, page, limit)
}

// GetCourse godoc
// @Summary 课程详情
// @Description 返回课程、课时、试题及选项
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.GetDetail(courseID, currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Enroll godoc
// @Summary 报名课程
// @Description 重复报名不会产生新的记录
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	created, err := c.CourseService.Enroll(ctx.Request.Context(), currentUserID(ctx), courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"courseId": courseID, "enrolled": true, "created": created})
}

// MyEnrollments godoc
// @Summary 我的报名
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /my/enrollments [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	enrollments, err := c.CourseService.ListEnrollments(currentUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}
