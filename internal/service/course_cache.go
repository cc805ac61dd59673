package service

import (
	"context"
	"encoding/json"
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	topCoursesKey    = "onlinecourse:courses:top"
	topCoursesGenKey = "onlinecourse:courses:top:gen"
)

// CourseCache holds the shared (user independent) course list.
//
// Entries are stored per generation. GetTop reports the generation it looked
// at and SetTop only fills that generation, so a list read from the database
// before an Invalidate can never be served after it.
type CourseCache interface {
	GetTop(ctx context.Context) ([]model.Course, uint64, bool)
	SetTop(ctx context.Context, gen uint64, courses []model.Course)
	Invalidate(ctx context.Context)
}

func NewCourseCache(rdb *redis.Client, ttl time.Duration) CourseCache {
	if rdb == nil {
		return noopCourseCache{}
	}
	return &redisCourseCache{rdb: rdb, ttl: ttl}
}

type redisCourseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func topCoursesKeyFor(gen uint64) string {
	return fmt.Sprintf("%s:%d", topCoursesKey, gen)
}

func (c *redisCourseCache) GetTop(ctx context.Context) ([]model.Course, uint64, bool) {
	gen, err := c.rdb.Get(ctx, topCoursesGenKey).Uint64()
	if err != nil && err != redis.Nil {
		logger.Log.Warn("course cache read failed", zap.Error(err))
		return nil, 0, false
	}

	data, err := c.rdb.Get(ctx, topCoursesKeyFor(gen)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("course cache read failed", zap.Error(err))
		}
		return nil, gen, false
	}

	var courses []model.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, gen, false
	}
	return courses, gen, true
}

func (c *redisCourseCache) SetTop(ctx context.Context, gen uint64, courses []model.Course) {
	data, err := json.Marshal(courses)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, topCoursesKeyFor(gen), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("course cache write failed", zap.Error(err))
	}
}

func (c *redisCourseCache) Invalidate(ctx context.Context) {
	gen, err := c.rdb.Incr(ctx, topCoursesGenKey).Result()
	if err != nil {
		logger.Log.Warn("course cache invalidate failed", zap.Error(err))
		return
	}
	if err := c.rdb.Del(ctx, topCoursesKeyFor(uint64(gen-1))).Err(); err != nil {
		logger.Log.Warn("course cache invalidate failed", zap.Error(err))
	}
}

type noopCourseCache struct{}

func (noopCourseCache) GetTop(context.Context) ([]model.Course, uint64, bool) { return nil, 0, false }
func (noopCourseCache) SetTop(context.Context, uint64, []model.Course)        {}
func (noopCourseCache) Invalidate(context.Context)                            {}
