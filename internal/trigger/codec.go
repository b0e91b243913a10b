package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eduapp-backend/pkg/docstore"

	"github.com/google/uuid"
)

// wireEvent is the JSON form of a change event as published by the change
// feed: {"id","type","document","before","after","time"}.
type wireEvent struct {
	ID       string                 `json:"id,omitempty"`
	Type     docstore.ChangeType    `json:"type,omitempty"`
	Document string                 `json:"document"`
	Before   map[string]interface{} `json:"before,omitempty"`
	After    map[string]interface{} `json:"after,omitempty"`
	Time     *time.Time             `json:"time,omitempty"`
}

// pushEnvelope is the body Pub/Sub posts to push endpoints.
type pushEnvelope struct {
	Message *struct {
		Data        []byte            `json:"data"`
		MessageID   string            `json:"messageId"`
		PublishTime time.Time         `json:"publishTime"`
		Attributes  map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// DecodeEvent parses a wire event. A missing type is inferred from which
// snapshots are present and a missing id is generated.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return w.toEvent()
}

// decodeMessage decodes a pulled Pub/Sub message, using the message id when
// the payload carries none.
func decodeMessage(messageID string, data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if w.ID == "" {
		w.ID = messageID
	}
	return w.toEvent()
}

// DecodePushEnvelope unwraps a Pub/Sub push body and decodes its payload.
func DecodePushEnvelope(body []byte) (Event, error) {
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("decode push envelope: %w", err)
	}
	if env.Message == nil || len(env.Message.Data) == 0 {
		return Event{}, errors.New("push envelope has no message data")
	}
	var w wireEvent
	if err := json.Unmarshal(env.Message.Data, &w); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if w.ID == "" {
		w.ID = env.Message.MessageID
	}
	if w.Time == nil && !env.Message.PublishTime.IsZero() {
		t := env.Message.PublishTime
		w.Time = &t
	}
	return w.toEvent()
}

// DecodeRequest accepts either a push envelope or a bare wire event.
func DecodeRequest(body []byte) (Event, error) {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Event{}, fmt.Errorf("decode request: %w", err)
	}
	if len(envelope.Message) > 0 {
		return DecodePushEnvelope(body)
	}
	return DecodeEvent(body)
}

func (w wireEvent) toEvent() (Event, error) {
	document := docstore.TrimResourceName(w.Document)
	if !docstore.IsDocumentPath(document) {
		return Event{}, fmt.Errorf("%w: %q", docstore.ErrInvalidPath, w.Document)
	}
	path := docstore.Join(docstore.Split(document)...)

	e := Event{ID: w.ID, Type: w.Type, Path: path}
	if w.Before != nil {
		e.Before = &docstore.Document{ID: docstore.ID(path), Path: path, Data: w.Before}
	}
	if w.After != nil {
		e.After = &docstore.Document{ID: docstore.ID(path), Path: path, Data: w.After}
	}

	switch e.Type {
	case "":
		e.Type = inferType(e.Before, e.After)
	case docstore.Created, docstore.Updated, docstore.Deleted:
	default:
		return Event{}, fmt.Errorf("unknown change type %q", w.Type)
	}
	if e.Type == "" {
		return Event{}, errors.New("event carries neither before nor after snapshot")
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if w.Time != nil {
		e.Time = w.Time.UTC()
	} else {
		e.Time = time.Now().UTC()
	}
	return e, nil
}

func inferType(before, after *docstore.Document) docstore.ChangeType {
	switch {
	case before == nil && after != nil:
		return docstore.Created
	case before != nil && after != nil:
		return docstore.Updated
	case before != nil:
		return docstore.Deleted
	default:
		return ""
	}
}
