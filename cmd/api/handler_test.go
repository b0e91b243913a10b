package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coursedomain "eduapp-backend/internal/course/domain"
	"eduapp-backend/internal/trigger"
	"eduapp-backend/pkg/docstore"
	"eduapp-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecounter struct {
	course *coursedomain.Course
	err    error
}

func (s *stubRecounter) Recount(_ context.Context, courseID string) (*coursedomain.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.course
	c.ID = courseID
	return &c, nil
}

func newTestEngine(t *testing.T, recounter CourseRecounter) (*gin.Engine, *[]trigger.Invocation) {
	t.Helper()
	bus := trigger.NewBus(logger.NewNop())
	var seen []trigger.Invocation
	require.NoError(t, bus.Register(trigger.Trigger{
		Name:    "news_notification",
		Pattern: trigger.MustPattern("news/{newsId}"),
		Kind:    trigger.OnCreate,
		Handler: func(_ context.Context, inv trigger.Invocation) error {
			seen = append(seen, inv)
			if inv.Params["newsId"] == "broken" {
				return errors.New("boom")
			}
			return nil
		},
	}))
	h := NewHandler(bus, recounter, nil, logger.NewNop())
	return h.Engine(), &seen
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

type eventResponse struct {
	EventID string `json:"event_id"`
	Results []struct {
		Trigger string `json:"trigger"`
		OK      bool   `json:"ok"`
		Error   string `json:"error"`
	} `json:"results"`
}

func TestHealth(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReceiveEvent_RawEvent(t *testing.T) {
	engine, seen := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodPost, "/api/events",
		`{"id":"e1","type":"created","document":"news/n1","after":{"title":"Hello"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "e1", resp.EventID)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].OK)
	require.Len(t, *seen, 1)
	assert.Equal(t, "Hello", (*seen)[0].Event.After.Data["title"])
}

func TestReceiveEvent_PushEnvelope(t *testing.T) {
	engine, seen := newTestEngine(t, &stubRecounter{})
	payload := base64.StdEncoding.EncodeToString([]byte(`{"type":"created","document":"news/n2","after":{"title":"x"}}`))
	body := fmt.Sprintf(`{"message":{"data":%q,"messageId":"m-9"},"subscription":"projects/p/subscriptions/s"}`, payload)

	w := do(engine, http.MethodPost, "/api/events", body)

	require.Equal(t, http.StatusOK, w.Code)
	var resp eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m-9", resp.EventID)
	assert.Len(t, *seen, 1)
}

func TestReceiveEvent_FailedTriggerStillOK(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodPost, "/api/events", `{"type":"created","document":"news/broken","after":{}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].OK)
	assert.Contains(t, resp.Results[0].Error, "boom")
}

func TestReceiveEvent_NoMatchingTrigger(t *testing.T) {
	engine, seen := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodPost, "/api/events", `{"type":"updated","document":"news/n1","before":{},"after":{}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp eventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
	assert.Empty(t, *seen)
}

func TestReceiveEvent_BadBody(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodPost, "/api/events", `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecountCourse(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{course: &coursedomain.Course{ModuleCount: 2, LessonCount: 5}})

	w := do(engine, http.MethodPost, "/api/courses/c1/recount", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"c1","module_count":2,"lesson_count":5}`, w.Body.String())
}

func TestRecountCourse_NotFound(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{err: fmt.Errorf("update: %w", docstore.ErrNotFound)})

	w := do(engine, http.MethodPost, "/api/courses/ghost/recount", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecountCourse_StoreFailure(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{err: errors.New("unavailable")})

	w := do(engine, http.MethodPost, "/api/courses/c1/recount", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListTriggers(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodGet, "/api/triggers", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"triggers":[{"name":"news_notification","pattern":"news/{newsId}","kind":"create"}]}`, w.Body.String())
}

func TestDispatchesRouteAbsentWithoutLog(t *testing.T) {
	engine, _ := newTestEngine(t, &stubRecounter{})

	w := do(engine, http.MethodGet, "/api/dispatches", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
