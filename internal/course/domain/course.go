package domain

// ContentType is the kind of a module content item
type ContentType string

const (
	ContentLesson ContentType = "lesson"
	ContentTest   ContentType = "test"
)

// Course holds the denormalized counters maintained by the aggregators
type Course struct {
	ID          string `json:"id" firestore:"-"`
	ModuleCount int    `json:"module_count" firestore:"moduleCount"`
	LessonCount int    `json:"lesson_count" firestore:"lessonCount"`
}

// Module is a chapter of a course
type Module struct {
	ID string `json:"id" firestore:"-"`
}

// ContentItem is a lesson, a test or any other material inside a module
type ContentItem struct {
	ID   string      `json:"id" firestore:"-"`
	Type ContentType `json:"type" firestore:"type"`
}

// Trackable reports whether the item counts toward a course's lessonCount.
// Both lessons and tests are counted.
func (c *ContentItem) Trackable() bool {
	return c.Type == ContentLesson || c.Type == ContentTest
}
