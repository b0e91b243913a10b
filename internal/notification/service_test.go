package notification

import (
	"context"
	"errors"
	"testing"

	dispatchdomain "eduapp-backend/internal/dispatchlog/domain"
	"eduapp-backend/pkg/fcm"
	"eduapp-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	topicErr   error
	devicesErr error
	result     *fcm.MulticastResult
	topics     []string
	tokens     [][]string
	sent       []fcm.NotificationData
}

func (f *fakeDispatcher) SendToTopic(_ context.Context, topic string, n fcm.NotificationData) (string, error) {
	f.topics = append(f.topics, topic)
	f.sent = append(f.sent, n)
	if f.topicErr != nil {
		return "", f.topicErr
	}
	return "msg-1", nil
}

func (f *fakeDispatcher) SendToDevices(_ context.Context, tokens []string, n fcm.NotificationData) (*fcm.MulticastResult, error) {
	f.tokens = append(f.tokens, tokens)
	f.sent = append(f.sent, n)
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &fcm.MulticastResult{SuccessCount: len(tokens)}, nil
}

type memoryLog struct {
	records []*dispatchdomain.DispatchRecord
	err     error
}

func (m *memoryLog) Create(_ context.Context, r *dispatchdomain.DispatchRecord) error {
	m.records = append(m.records, r)
	return m.err
}

func (m *memoryLog) List(context.Context, int, int) ([]*dispatchdomain.DispatchRecord, int64, error) {
	return m.records, int64(len(m.records)), nil
}

type pruner struct {
	deleted []string
}

func (p *pruner) DeleteToken(_ context.Context, userID, token string) error {
	p.deleted = append(p.deleted, userID+"/"+token)
	return nil
}

func TestBroadcast(t *testing.T) {
	d := &fakeDispatcher{}
	log := &memoryLog{}
	svc := NewService(d, logger.NewNop(), WithDispatchLog(log))

	out := svc.Broadcast(context.Background(), "news", "news", Payload{Title: "T", Body: "B", NewsID: "n1"})

	assert.True(t, out.Delivered())
	assert.Equal(t, "msg-1", out.MessageID)
	require.Equal(t, []string{"news"}, d.topics)
	n := d.sent[0]
	assert.Equal(t, "T", n.Title)
	assert.Equal(t, "B", n.Body)
	assert.Equal(t, DefaultSound, n.Sound)
	assert.Equal(t, map[string]string{"click_action": ClickAction, "newsId": "n1"}, n.Data)

	require.Len(t, log.records, 1)
	assert.Equal(t, dispatchdomain.ModeTopic, log.records[0].Mode)
	assert.Equal(t, "n1", log.records[0].NewsID)
	assert.Empty(t, log.records[0].Error)
}

func TestBroadcast_ErrorIsSwallowed(t *testing.T) {
	d := &fakeDispatcher{topicErr: errors.New("quota")}
	log := &memoryLog{err: errors.New("db down")}
	svc := NewService(d, logger.NewNop(), WithDispatchLog(log))

	out := svc.Broadcast(context.Background(), "news", "news", Payload{NewsID: "n1"})

	assert.False(t, out.Delivered())
	assert.EqualError(t, out.Err, "quota")
	require.Len(t, log.records, 1)
	assert.Equal(t, "quota", log.records[0].Error)
}

func TestSendToTokens(t *testing.T) {
	d := &fakeDispatcher{result: &fcm.MulticastResult{
		SuccessCount:       1,
		FailureCount:       2,
		FailedTokens:       []string{"t2", "t3"},
		UnregisteredTokens: []string{"t3"},
	}}
	p := &pruner{}
	svc := NewService(d, logger.NewNop(), WithTokenPruner(p))

	out := svc.SendToTokens(context.Background(), "reply", "u1", []string{"t1", "t2", "t3"}, Payload{NewsID: "n1"})

	assert.True(t, out.Delivered())
	assert.Equal(t, 3, out.Recipients)
	assert.Equal(t, 1, out.Success)
	assert.Equal(t, 2, out.Failure)
	require.Len(t, d.tokens, 1)
	assert.Equal(t, []string{"t1", "t2", "t3"}, d.tokens[0])
	assert.Equal(t, []string{"u1/t3"}, p.deleted)
}

func TestSendToTokens_ErrorIsSwallowed(t *testing.T) {
	d := &fakeDispatcher{devicesErr: errors.New("unavailable")}
	p := &pruner{}
	log := &memoryLog{}
	svc := NewService(d, logger.NewNop(), WithTokenPruner(p), WithDispatchLog(log))

	out := svc.SendToTokens(context.Background(), "reply", "u1", []string{"t1"}, Payload{NewsID: "n1"})

	assert.Error(t, out.Err)
	assert.Equal(t, 1, out.Failure)
	assert.Empty(t, p.deleted)
	require.Len(t, log.records, 1)
	assert.Equal(t, dispatchdomain.ModeTokens, log.records[0].Mode)
	assert.Equal(t, "u1", log.records[0].Target)
}
