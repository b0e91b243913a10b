package scheduler

import (
	"context"
	"testing"
	"time"

	courserepo "eduapp-backend/internal/course/repository"
	courseusecase "eduapp-backend/internal/course/usecase"
	"eduapp-backend/pkg/docstore"
	"eduapp-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *docstore.Memory {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, store.Set(ctx, "courses/c1", map[string]interface{}{"moduleCount": 9, "lessonCount": 9}))
	require.NoError(t, store.Set(ctx, "courses/c1/modules/m1", nil))
	require.NoError(t, store.Set(ctx, "courses/c1/modules/m1/contentItems/l1", map[string]interface{}{"type": "lesson"}))
	require.NoError(t, store.Set(ctx, "courses/c2", nil))
	return store
}

func TestSweep_CorrectsDriftedCounters(t *testing.T) {
	store := newStore(t)
	repo := courserepo.NewCourseRepository(store)
	r := NewCounterReconciler(repo, courseusecase.NewCounterService(repo, logger.NewNop()), time.Minute, logger.NewNop())

	n := r.Sweep(context.Background())

	assert.Equal(t, 2, n)
	course, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, course.ModuleCount)
	assert.Equal(t, 1, course.LessonCount)
}

func TestStart_DisabledWithoutInterval(t *testing.T) {
	store := newStore(t)
	repo := courserepo.NewCourseRepository(store)
	r := NewCounterReconciler(repo, courseusecase.NewCounterService(repo, logger.NewNop()), 0, logger.NewNop())

	r.Start(context.Background())
	r.Stop()

	course, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 9, course.ModuleCount)
}

func TestStart_SweepsOnTick(t *testing.T) {
	store := newStore(t)
	repo := courserepo.NewCourseRepository(store)
	r := NewCounterReconciler(repo, courseusecase.NewCounterService(repo, logger.NewNop()), 10*time.Millisecond, logger.NewNop())

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		course, err := repo.FindByID(context.Background(), "c1")
		return err == nil && course.ModuleCount == 1
	}, time.Second, 10*time.Millisecond)
}
