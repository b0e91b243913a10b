package trigger

import (
	"time"

	"eduapp-backend/pkg/docstore"

	"github.com/google/uuid"
)

// Event is a typed document change delivered to triggers.
type Event struct {
	ID     string
	Type   docstore.ChangeType
	Path   string
	Before *docstore.Document
	After  *docstore.Document
	Time   time.Time
}

// Data returns the snapshot a handler should read: the new document, or the
// removed one for deletes.
func (e Event) Data() *docstore.Document {
	if e.After != nil {
		return e.After
	}
	return e.Before
}

// FromChange wraps a store change as an event.
func FromChange(c docstore.Change) Event {
	return Event{
		ID:     uuid.New().String(),
		Type:   c.Type,
		Path:   c.Path,
		Before: c.Before,
		After:  c.After,
		Time:   time.Now().UTC(),
	}
}

// Change is the store write the event describes.
func (e Event) Change() docstore.Change {
	return docstore.Change{Type: e.Type, Path: e.Path, Before: e.Before, After: e.After}
}

// Kind selects which change types a trigger fires on.
type Kind int

const (
	OnCreate Kind = iota
	// OnWrite fires on create, update and delete.
	OnWrite
)

func (k Kind) String() string {
	switch k {
	case OnCreate:
		return "create"
	case OnWrite:
		return "write"
	default:
		return "unknown"
	}
}

func (k Kind) accepts(t docstore.ChangeType) bool {
	switch k {
	case OnCreate:
		return t == docstore.Created
	case OnWrite:
		return t == docstore.Created || t == docstore.Updated || t == docstore.Deleted
	default:
		return false
	}
}
