package repository

import (
	"context"

	coursedomain "eduapp-backend/internal/course/domain"
	"eduapp-backend/pkg/docstore"
)

const (
	coursesCollection  = "courses"
	modulesCollection  = "modules"
	contentsCollection = "contentItems"

	fieldModuleCount = "moduleCount"
	fieldLessonCount = "lessonCount"
)

// CourseRepository defines the interface for course structure reads and
// counter writes
type CourseRepository interface {
	// FindByID returns nil, nil when the course does not exist
	FindByID(ctx context.Context, courseID string) (*coursedomain.Course, error)
	ListCourses(ctx context.Context) ([]*coursedomain.Course, error)
	ListModules(ctx context.Context, courseID string) ([]*coursedomain.Module, error)
	ListContentItems(ctx context.Context, courseID, moduleID string) ([]*coursedomain.ContentItem, error)
	// UpdateModuleCount and UpdateLessonCount fail with docstore.ErrNotFound
	// when the course document is missing
	UpdateModuleCount(ctx context.Context, courseID string, count int) error
	UpdateLessonCount(ctx context.Context, courseID string, count int) error
}

type courseRepository struct {
	store docstore.Store
}

// NewCourseRepository creates a CourseRepository on the document store
func NewCourseRepository(store docstore.Store) CourseRepository {
	return &courseRepository{store: store}
}

func (r *courseRepository) FindByID(ctx context.Context, courseID string) (*coursedomain.Course, error) {
	doc, err := r.store.Get(ctx, docstore.Join(coursesCollection, courseID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var course coursedomain.Course
	if err := doc.Decode(&course); err != nil {
		return nil, err
	}
	course.ID = doc.ID
	return &course, nil
}

func (r *courseRepository) ListCourses(ctx context.Context) ([]*coursedomain.Course, error) {
	docs, err := r.store.List(ctx, coursesCollection)
	if err != nil {
		return nil, err
	}
	courses := make([]*coursedomain.Course, 0, len(docs))
	for _, doc := range docs {
		course := &coursedomain.Course{}
		// stale counters may hold anything, the ID is what a sweep needs
		_ = doc.Decode(course)
		course.ID = doc.ID
		courses = append(courses, course)
	}
	return courses, nil
}

func (r *courseRepository) ListModules(ctx context.Context, courseID string) ([]*coursedomain.Module, error) {
	docs, err := r.store.List(ctx, docstore.Join(coursesCollection, courseID, modulesCollection))
	if err != nil {
		return nil, err
	}
	modules := make([]*coursedomain.Module, 0, len(docs))
	for _, doc := range docs {
		modules = append(modules, &coursedomain.Module{ID: doc.ID})
	}
	return modules, nil
}

func (r *courseRepository) ListContentItems(ctx context.Context, courseID, moduleID string) ([]*coursedomain.ContentItem, error) {
	docs, err := r.store.List(ctx, docstore.Join(coursesCollection, courseID, modulesCollection, moduleID, contentsCollection))
	if err != nil {
		return nil, err
	}
	items := make([]*coursedomain.ContentItem, 0, len(docs))
	for _, doc := range docs {
		item := &coursedomain.ContentItem{}
		// an undecodable type is simply not trackable
		if err := doc.Decode(item); err != nil {
			item.Type = ""
		}
		item.ID = doc.ID
		items = append(items, item)
	}
	return items, nil
}

func (r *courseRepository) UpdateModuleCount(ctx context.Context, courseID string, count int) error {
	return r.updateCounter(ctx, courseID, fieldModuleCount, count)
}

func (r *courseRepository) UpdateLessonCount(ctx context.Context, courseID string, count int) error {
	return r.updateCounter(ctx, courseID, fieldLessonCount, count)
}

func (r *courseRepository) updateCounter(ctx context.Context, courseID, field string, count int) error {
	return r.store.Update(ctx, docstore.Join(coursesCollection, courseID), map[string]interface{}{
		field: count,
	})
}
