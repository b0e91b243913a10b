package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	coursedomain "eduapp-backend/internal/course/domain"
	courserepo "eduapp-backend/internal/course/repository"
	"eduapp-backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// maxModuleScans bounds concurrent content item listings during a lesson recount
const maxModuleScans = 8

// CounterService keeps a course's moduleCount and lessonCount equal to what
// is actually stored beneath it. Every recount is a full re-scan followed by
// an unconditional write, so repeated or reordered runs converge.
type CounterService struct {
	repo courserepo.CourseRepository
	log  *logger.Logger
}

func NewCounterService(repo courserepo.CourseRepository, log *logger.Logger) *CounterService {
	return &CounterService{repo: repo, log: log}
}

// RecountModules stores the number of modules of the course
func (s *CounterService) RecountModules(ctx context.Context, courseID string) (int, error) {
	modules, err := s.repo.ListModules(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("list modules of %s: %w", courseID, err)
	}

	count := len(modules)
	if err := s.repo.UpdateModuleCount(ctx, courseID, count); err != nil {
		return 0, fmt.Errorf("update moduleCount of %s: %w", courseID, err)
	}

	s.log.Info("module count updated", "course_id", courseID, "module_count", count)
	return count, nil
}

// RecountLessons stores the number of lessons and tests across all modules
func (s *CounterService) RecountLessons(ctx context.Context, courseID string) (int, error) {
	modules, err := s.repo.ListModules(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("list modules of %s: %w", courseID, err)
	}

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxModuleScans)
	for _, module := range modules {
		moduleID := module.ID
		g.Go(func() error {
			items, err := s.repo.ListContentItems(gctx, courseID, moduleID)
			if err != nil {
				return fmt.Errorf("list content of module %s: %w", moduleID, err)
			}
			total.Add(int64(countTrackable(items)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := int(total.Load())
	if err := s.repo.UpdateLessonCount(ctx, courseID, count); err != nil {
		return 0, fmt.Errorf("update lessonCount of %s: %w", courseID, err)
	}

	s.log.Info("lesson count updated", "course_id", courseID, "modules", len(modules), "lesson_count", count)
	return count, nil
}

// Recount refreshes both counters and returns the course as written
func (s *CounterService) Recount(ctx context.Context, courseID string) (*coursedomain.Course, error) {
	modules, err := s.RecountModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.RecountLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &coursedomain.Course{ID: courseID, ModuleCount: modules, LessonCount: lessons}, nil
}

func countTrackable(items []*coursedomain.ContentItem) int {
	n := 0
	for _, item := range items {
		if item.Trackable() {
			n++
		}
	}
	return n
}
