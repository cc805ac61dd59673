package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"onlinecourse_backend/pkg/logger"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResponseHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		write       func(c *gin.Context)
		wantStatus  int
		wantMessage string
		wantData    bool
	}{
		{name: "success", write: func(c *gin.Context) { Success(c, gin.H{"id": 1}) }, wantStatus: http.StatusOK, wantMessage: "success", wantData: true},
		{name: "created", write: func(c *gin.Context) { Created(c, gin.H{"id": 1}) }, wantStatus: http.StatusCreated, wantMessage: "created", wantData: true},
		{name: "paged", write: func(c *gin.Context) { Paged(c, []int{1, 2}, 2, 1, 20) }, wantStatus: http.StatusOK, wantMessage: "success", wantData: true},
		{name: "conflict", write: func(c *gin.Context) { Conflict(c, MsgUserExists) }, wantStatus: http.StatusConflict, wantMessage: MsgUserExists},
		{name: "bad request", write: func(c *gin.Context) { BadRequest(c, "bad") }, wantStatus: http.StatusBadRequest, wantMessage: "bad"},
		{name: "not found", write: NotFound, wantStatus: http.StatusNotFound, wantMessage: "Resource not found"},
		{name: "unauthorized", write: Unauthorized, wantStatus: http.StatusUnauthorized, wantMessage: "Unauthorized"},
		{name: "forbidden", write: Forbidden, wantStatus: http.StatusForbidden, wantMessage: "Forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.wantStatus), body["code"])
			assert.Equal(t, tt.wantMessage, body["message"])
			_, hasData := body["data"]
			assert.Equal(t, tt.wantData, hasData)
		})
	}
}

func TestLogInternalErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	r := gin.New()
	r.GET("/courses/:id", func(c *gin.Context) {
		LogInternalError(c, errors.New("connection refused"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/3", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/courses/:id", fields["path"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "connection refused", fields["error"])
}
