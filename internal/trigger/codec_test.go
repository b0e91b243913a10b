package trigger

import (
	"encoding/base64"
	"testing"
	"time"

	"eduapp-backend/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{
		"id": "e1",
		"type": "created",
		"document": "/news/n1/comments/c1/",
		"after": {"userId": "u1", "parentId": "c0"},
		"time": "2026-10-01T10:00:00Z"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "e1", evt.ID)
	assert.Equal(t, docstore.Created, evt.Type)
	assert.Equal(t, "news/n1/comments/c1", evt.Path)
	require.NotNil(t, evt.After)
	assert.Equal(t, "c1", evt.After.ID)
	assert.Equal(t, "u1", evt.After.Data["userId"])
	assert.Nil(t, evt.Before)
	assert.Equal(t, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), evt.Time)
}

func TestDecodeEvent_InfersType(t *testing.T) {
	tests := []struct {
		body string
		want docstore.ChangeType
	}{
		{`{"document":"courses/c1/modules/m1","after":{}}`, docstore.Created},
		{`{"document":"courses/c1/modules/m1","before":{},"after":{}}`, docstore.Updated},
		{`{"document":"courses/c1/modules/m1","before":{}}`, docstore.Deleted},
	}
	for _, tt := range tests {
		evt, err := DecodeEvent([]byte(tt.body))
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, evt.Type, tt.body)
		assert.NotEmpty(t, evt.ID)
	}
}

func TestDecodeEvent_Rejects(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"document":"news","after":{}}`,
		`{"document":"news/n1"}`,
		`{"document":"news/n1","type":"renamed","after":{}}`,
	}
	for _, body := range bodies {
		_, err := DecodeEvent([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestDecodePushEnvelope(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"type":"created","document":"news/n1","after":{"title":"Hi"}}`))
	body := []byte(`{"message":{"data":"` + payload + `","messageId":"m-77","publishTime":"2026-10-01T10:00:00Z"},"subscription":"projects/p/subscriptions/s"}`)

	evt, err := DecodeRequest(body)
	require.NoError(t, err)

	assert.Equal(t, "m-77", evt.ID)
	assert.Equal(t, "news/n1", evt.Path)
	assert.Equal(t, "Hi", evt.After.Data["title"])
	assert.Equal(t, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), evt.Time)

	_, err = DecodePushEnvelope([]byte(`{"message":{}}`))
	assert.Error(t, err)
}

func TestDecodeRequest_BareEvent(t *testing.T) {
	evt, err := DecodeRequest([]byte(`{"type":"deleted","document":"courses/c1/modules/m1","before":{"title":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, docstore.Deleted, evt.Type)
}

func TestDecodeEvent_FullResourceName(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{"type":"created","document":"projects/edu/databases/(default)/documents/news/n1","after":{"title":"x"}}`))

	require.NoError(t, err)
	assert.Equal(t, "news/n1", evt.Path)
	assert.Equal(t, "n1", evt.After.ID)
}

func TestDecodeEvent_KeepsTimeAndSnapshots(t *testing.T) {
	raw := `{"id":"e2","type":"updated","document":"courses/c1/modules/m1/contentItems/i1",` +
		`"before":{"type":"quiz"},"after":{"type":"lesson"},"time":"2026-10-02T08:00:00Z"}`

	out, err := DecodeEvent([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "e2", out.ID)
	assert.Equal(t, docstore.Updated, out.Type)
	assert.Equal(t, "courses/c1/modules/m1/contentItems/i1", out.Path)
	assert.Equal(t, time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC), out.Time)
	assert.Equal(t, "lesson", out.After.Data["type"])
	assert.Equal(t, "quiz", out.Before.Data["type"])
	assert.Equal(t, "i1", out.After.ID)
}
