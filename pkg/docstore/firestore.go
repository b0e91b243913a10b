package docstore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ Store = (*Firestore)(nil)

// Firestore implements Store on a Cloud Firestore client.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore opens the Firestore client of an initialized Firebase app.
func NewFirestore(ctx context.Context, app *firebase.App) (*Firestore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

// NewFirestoreFromClient wraps an existing client.
func NewFirestoreFromClient(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) Get(ctx context.Context, path string) (*Document, error) {
	ref, err := f.doc(path)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return fromSnapshot(snap), nil
}

func (f *Firestore) List(ctx context.Context, collectionPath string) ([]*Document, error) {
	col := f.client.Collection(Join(Split(collectionPath)...))
	if col == nil {
		return nil, fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, collectionPath)
	}
	snaps, err := col.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collectionPath, err)
	}
	out := make([]*Document, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, fromSnapshot(snap))
	}
	return out, nil
}

func (f *Firestore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	ref, err := f.doc(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: fields[k]})
	}

	_, err = ref.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("update %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, path string) error {
	ref, err := f.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (f *Firestore) doc(path string) (*firestore.DocumentRef, error) {
	ref := f.client.Doc(Join(Split(path)...))
	if ref == nil {
		return nil, fmt.Errorf("%w: %q is not a document", ErrInvalidPath, path)
	}
	return ref, nil
}

func fromSnapshot(snap *firestore.DocumentSnapshot) *Document {
	return &Document{
		ID:   snap.Ref.ID,
		Path: TrimResourceName(snap.Ref.Path),
		Data: snap.Data(),
	}
}
