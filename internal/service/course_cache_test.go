package service

import (
	"context"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/testutil"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (CourseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCourseCache(rdb, time.Minute), mr
}

func TestRedisCourseCacheRoundTrip(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	_, gen, ok := cache.GetTop(ctx)
	require.False(t, ok)

	cache.SetTop(ctx, gen, []model.Course{{Name: "Go", TotalEnrollment: 3}})
	courses, _, ok := cache.GetTop(ctx)
	require.True(t, ok)
	require.Len(t, courses, 1)
	assert.Equal(t, "Go", courses[0].Name)
	assert.Equal(t, 3, courses[0].TotalEnrollment)

	mr.FastForward(2 * time.Minute)
	_, _, ok = cache.GetTop(ctx)
	assert.False(t, ok)
}

func TestRedisCourseCacheDropsWriteFromBeforeInvalidate(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()

	// A reader misses, loads from the database, and is slow to write back.
	_, gen, ok := cache.GetTop(ctx)
	require.False(t, ok)

	// An enrollment commits in the meantime.
	cache.Invalidate(ctx)

	cache.SetTop(ctx, gen, []model.Course{{Name: "Go", TotalEnrollment: 0}})
	_, _, ok = cache.GetTop(ctx)
	assert.False(t, ok)

	_, next, _ := cache.GetTop(ctx)
	cache.SetTop(ctx, next, []model.Course{{Name: "Go", TotalEnrollment: 1}})
	courses, _, ok := cache.GetTop(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, courses[0].TotalEnrollment)

	cache.Invalidate(ctx)
	assert.False(t, mr.Exists(topCoursesKeyFor(next)))
}

// invalidatingCache runs an Invalidate right after the first miss, the way an
// enrollment committing during ListTop would.
type invalidatingCache struct {
	CourseCache
	fired bool
}

func (c *invalidatingCache) GetTop(ctx context.Context) ([]model.Course, uint64, bool) {
	courses, gen, ok := c.CourseCache.GetTop(ctx)
	if !ok && !c.fired {
		c.fired = true
		c.CourseCache.Invalidate(ctx)
	}
	return courses, gen, ok
}

func TestListTopDoesNotCacheAcrossInvalidate(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CreateExam(t, db, "Go")
	cache, _ := newRedisCache(t)
	ctx := context.Background()
	svc := NewCourseService(
		db,
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewProfileRepository(db),
		nil,
		&invalidatingCache{CourseCache: cache},
	)

	courses, err := svc.ListTop(ctx, 0)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	_, _, ok := cache.GetTop(ctx)
	assert.False(t, ok, "list loaded before the invalidation must not be cached")

	_, err = svc.ListTop(ctx, 0)
	require.NoError(t, err)
	cached, _, ok := cache.GetTop(ctx)
	require.True(t, ok)
	assert.Equal(t, "Go", cached[0].Name)
}
