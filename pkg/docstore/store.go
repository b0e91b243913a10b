// Package docstore is a thin client over a hierarchical document database
// (collections of documents, documents owning subcollections). Paths are
// slash separated and relative to the database root, e.g.
// "courses/c1/modules/m1".
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var (
	// ErrNotFound is returned by Update when the target document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for paths that do not address a document or collection.
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is a snapshot of a single stored document.
type Document struct {
	ID   string                 `json:"id"`
	Path string                 `json:"path"`
	Data map[string]interface{} `json:"data"`
}

// Decode copies the document fields onto v using `firestore` struct tags.
// Types are not coerced: a number stored where v holds a string is an error,
// so identifiers such as 123 and "123" never compare equal.
func (d *Document) Decode(v interface{}) error {
	if d == nil {
		return errors.New("decode of nil document")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "firestore",
		Result:  v,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(d.Data); err != nil {
		return fmt.Errorf("decode %s: %w", d.Path, err)
	}
	return nil
}

// Store is the subset of document database operations the triggers need.
type Store interface {
	// Get returns nil, nil when the document does not exist.
	Get(ctx context.Context, path string) (*Document, error)
	// List returns every document of a collection, ordered by ID.
	List(ctx context.Context, collectionPath string) ([]*Document, error)
	// Update merges fields into an existing document. Missing documents yield ErrNotFound.
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	Delete(ctx context.Context, path string) error
}

// ChangeType classifies a document write.
type ChangeType string

const (
	Created ChangeType = "created"
	Updated ChangeType = "updated"
	Deleted ChangeType = "deleted"
)

// Change describes one document write with its before and after snapshots.
// Before is nil on create and After is nil on delete.
type Change struct {
	Type   ChangeType
	Path   string
	Before *Document
	After  *Document
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split returns the non-empty segments of a path.
func Split(path string) []string {
	raw := strings.Split(strings.Trim(path, "/"), "/")
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsDocumentPath reports whether path addresses a document (even segment count).
func IsDocumentPath(path string) bool {
	n := len(Split(path))
	return n > 0 && n%2 == 0
}

// IsCollectionPath reports whether path addresses a collection (odd segment count).
func IsCollectionPath(path string) bool {
	return len(Split(path))%2 == 1
}

// ID returns the last segment of a path.
func ID(path string) string {
	segs := Split(path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// TrimResourceName turns a full resource name such as
// "projects/p/databases/(default)/documents/news/n1" into the database
// relative path "news/n1". Relative paths are returned unchanged.
func TrimResourceName(name string) string {
	const marker = "/documents/"
	if i := strings.Index(name, marker); i >= 0 {
		return name[i+len(marker):]
	}
	return name
}
