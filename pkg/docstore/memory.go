package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var _ Store = (*Memory)(nil)

// WatchFunc receives every change applied to a Memory store.
type WatchFunc func(ctx context.Context, change Change)

// Memory is an in-process Store used for local runs and tests. Every write
// is reported to the registered watchers once the write is visible.
type Memory struct {
	mu       sync.RWMutex
	docs     map[string]map[string]interface{}
	watchers []WatchFunc
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]interface{})}
}

// Watch registers fn for all subsequent changes. Watchers run synchronously
// in registration order on the writing goroutine.
func (m *Memory) Watch(fn WatchFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// Set creates or replaces a document.
func (m *Memory) Set(ctx context.Context, path string, data map[string]interface{}) error {
	path, err := cleanDocPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	before, existed := m.docs[path]
	m.docs[path] = copyData(data)
	change := Change{Type: Created, Path: path, After: snapshot(path, data)}
	if existed {
		change.Type = Updated
		change.Before = snapshot(path, before)
	}
	watchers := m.watchers
	m.mu.Unlock()

	notify(ctx, watchers, change)
	return nil
}

func (m *Memory) Get(_ context.Context, path string) (*Document, error) {
	path, err := cleanDocPath(path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[path]
	if !ok {
		return nil, nil
	}
	return snapshot(path, data), nil
}

func (m *Memory) List(_ context.Context, collectionPath string) ([]*Document, error) {
	if !IsCollectionPath(collectionPath) {
		return nil, fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, collectionPath)
	}
	prefix := Join(Split(collectionPath)...) + "/"

	m.mu.RLock()
	var out []*Document
	for path, data := range m.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		out = append(out, snapshot(path, data))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	path, err := cleanDocPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	before, ok := m.docs[path]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s: %w", path, ErrNotFound)
	}
	after := copyData(before)
	for k, v := range fields {
		after[k] = v
	}
	m.docs[path] = after
	watchers := m.watchers
	m.mu.Unlock()

	notify(ctx, watchers, Change{
		Type:   Updated,
		Path:   path,
		Before: snapshot(path, before),
		After:  snapshot(path, after),
	})
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (m *Memory) Delete(ctx context.Context, path string) error {
	path, err := cleanDocPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	before, ok := m.docs[path]
	delete(m.docs, path)
	watchers := m.watchers
	m.mu.Unlock()

	if ok {
		notify(ctx, watchers, Change{Type: Deleted, Path: path, Before: snapshot(path, before)})
	}
	return nil
}

// Apply replays a change recorded elsewhere: deletes remove the document,
// anything else stores the After snapshot. Watchers see the change as it
// lands here, which may differ from c.Type (a "created" for an existing
// document becomes an update).
func (m *Memory) Apply(ctx context.Context, c Change) error {
	if c.Type == Deleted {
		return m.Delete(ctx, c.Path)
	}
	var data map[string]interface{}
	if c.After != nil {
		data = c.After.Data
	}
	return m.Set(ctx, c.Path, data)
}

func notify(ctx context.Context, watchers []WatchFunc, change Change) {
	for _, w := range watchers {
		w(ctx, change)
	}
}

func cleanDocPath(path string) (string, error) {
	if !IsDocumentPath(path) {
		return "", fmt.Errorf("%w: %q is not a document", ErrInvalidPath, path)
	}
	return Join(Split(path)...), nil
}

func snapshot(path string, data map[string]interface{}) *Document {
	return &Document{ID: ID(path), Path: path, Data: copyData(data)}
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
