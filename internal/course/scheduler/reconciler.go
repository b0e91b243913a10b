package scheduler

import (
	"context"
	"time"

	coursedomain "eduapp-backend/internal/course/domain"
	"eduapp-backend/pkg/logger"
)

// CourseLister enumerates the courses a sweep should visit
type CourseLister interface {
	ListCourses(ctx context.Context) ([]*coursedomain.Course, error)
}

// Recounter refreshes the counters of one course
type Recounter interface {
	Recount(ctx context.Context, courseID string) (*coursedomain.Course, error)
}

// CounterReconciler periodically recounts every course so counters written
// by a failed or skipped trigger invocation converge again
type CounterReconciler struct {
	courses   CourseLister
	recounter Recounter
	interval  time.Duration
	log       *logger.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

func NewCounterReconciler(courses CourseLister, recounter Recounter, interval time.Duration, log *logger.Logger) *CounterReconciler {
	return &CounterReconciler{
		courses:   courses,
		recounter: recounter,
		interval:  interval,
		log:       log.With("component", "counter_reconciler"),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the sweep loop. A non-positive interval disables it.
func (s *CounterReconciler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("counter reconciler disabled")
		close(s.done)
		return
	}

	s.log.Info("starting counter reconciler", "interval", s.interval.String())
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stopChan:
				s.log.Info("counter reconciler stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a running sweep to finish
func (s *CounterReconciler) Stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	<-s.done
}

// Sweep recounts every course once and returns how many were refreshed
func (s *CounterReconciler) Sweep(ctx context.Context) int {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		s.log.Error("failed to list courses", "error", err)
		return 0
	}

	refreshed := 0
	for _, course := range courses {
		if ctx.Err() != nil {
			break
		}
		updated, err := s.recounter.Recount(ctx, course.ID)
		if err != nil {
			s.log.Warn("course recount failed", "course_id", course.ID, "error", err)
			continue
		}
		if updated.ModuleCount != course.ModuleCount || updated.LessonCount != course.LessonCount {
			s.log.Info("course counters corrected", "course_id", course.ID,
				"module_count", updated.ModuleCount, "lesson_count", updated.LessonCount)
		}
		refreshed++
	}
	return refreshed
}
