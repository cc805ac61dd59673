package controller

import (
	"errors"
	"net/http"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxFormMemory = 1 << 20

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// swagger:model SubmitRequest
type SubmitRequest struct {
	ChoiceIDs []uint `json:"choiceIds"`
}

// choiceIDsFromRequest accepts a JSON body or form fields named choice*.
func choiceIDsFromRequest(ctx *gin.Context) ([]uint, error) {
	if ctx.ContentType() == binding.MIMEJSON {
		var req SubmitRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return req.ChoiceIDs, nil
	}

	if err := ctx.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return util.ExtractChoiceIDs(ctx.Request.PostForm)
}

// Submit godoc
// @Summary 提交考试
// @Description 提交所选选项并立即评分，需已报名该课程
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body SubmitRequest true "所选选项"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "课程、报名或选项不存在"
// @Router /courses/{id}/submissions [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	choiceIDs, err := choiceIDsFromRequest(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, res, err := c.ExamService.Submit(ctx.Request.Context(), currentUserID(ctx), courseID, choiceIDs)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"submissionId": sub.ID,
		"score":        res.Score,
		"maxScore":     res.MaxScore,
		"percentage":   res.Percentage,
		"passed":       res.Passed,
	})
}

// GetResult godoc
// @Summary 考试结果
// @Description 按当前试题重新评分并返回每题详情，仅提交者本人或教师可见
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param submissionId path int true "提交ID"
// @Success 200 {object} util.Response{data=service.ResultView}
// @Failure 404 {object} util.Response
// @Router /courses/{id}/submissions/{submissionId} [get]
func (c *ExamController) GetResult(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	submissionID, ok := pathID(ctx, "submissionId")
	if !ok {
		return
	}

	view, err := c.ExamService.Result(ctx.Request.Context(), util.GetUserFromContext(ctx), courseID, submissionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
