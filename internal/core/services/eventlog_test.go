package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lessonscout/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

func TestEventRecorder_Record_StampsAndPublishes(t *testing.T) {
	log := memory.NewEventLog()
	notifier := &recordingNotifier{}
	recorder := NewEventRecorder(log, notifier)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	first, err := recorder.Record(context.Background(), testRequest, "khanacademy", domain.EventStarted, nil)
	require.NoError(t, err)
	second, err := recorder.Record(context.Background(), testRequest, "khanacademy", domain.EventCompleted,
		[]domain.ResultItem{item("a")})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, fixed, first.CreatedAt)
	assert.Equal(t, "u1", first.UserID)
	assert.NotNil(t, first.Payload)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, domain.NotifyEvent, notifier.sent[0].Kind)
	assert.Equal(t, first.ID, notifier.sent[0].Event.ID)

	stored, err := recorder.List(context.Background(), testRequest.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceEvent{first, second}, stored)
}

func TestEventRecorder_Record_PersistenceError(t *testing.T) {
	log := &flakyEventLog{
		EventLog: memory.NewEventLog(),
		failWhen: func(domain.SourceEvent) bool { return true },
	}
	notifier := &recordingNotifier{}
	recorder := NewEventRecorder(log, notifier)

	_, err := recorder.Record(context.Background(), testRequest, "ck12", domain.EventStarted, nil)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, notifier.sent, "unpersisted events must not be published")
}

func TestEventRecorder_Record_PublishErrorIgnored(t *testing.T) {
	recorder := NewEventRecorder(memory.NewEventLog(), &recordingNotifier{err: errors.New("redis down")})

	_, err := recorder.Record(context.Background(), testRequest, "ck12", domain.EventStarted, nil)

	assert.NoError(t, err)
}

func TestEventRecorder_SeqSeededFromClock(t *testing.T) {
	before := time.Now().UnixMicro()
	recorder := NewEventRecorder(memory.NewEventLog(), nil)

	e, err := recorder.Record(context.Background(), testRequest, "ck12", domain.EventStarted, nil)

	require.NoError(t, err)
	assert.Greater(t, e.Seq, before)
}
