package controller

import (
	"errors"
	"net/http"
	"onlinecourse_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the JSON envelope.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrChoiceNotFound),
		errors.Is(err, util.ErrNotEnrolled),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrUserExists), errors.Is(err, util.ErrProfileExists):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidFile), errors.Is(err, util.ErrCourseNameRequired):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID reads a numeric path parameter, answering 404 when it is malformed.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParseID(ctx.Param(name))
	if !ok {
		util.NotFound(ctx)
	}
	return id, ok
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return page, limit
}
