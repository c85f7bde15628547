package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"provenance-backend/domain/events"
	pkgerrors "provenance-backend/pkg/errors"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	return m.Called(ctx, evts).Error(0)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	evts := []events.DomainEvent{
		events.NewBulletPointsLinked(2, 1, time.Now()),
		events.NewBulletPointsLinked(3, 1, time.Now()),
	}
	require.NoError(t, p.PublishBatch(context.Background(), evts))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeBulletPointsLinked, entries[0].ContextMap()["event_type"])
}

func TestBreakerPublisher_OpensAfterFailures(t *testing.T) {
	next := new(mockPublisher)
	next.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	cfg := DefaultBreakerConfig("events")
	cfg.MinRequests = 3
	cfg.Timeout = time.Hour
	p := NewBreakerPublisher(next, cfg, zaptest.NewLogger(t))

	evt := events.NewBulletPointsLinked(2, 1, time.Now())
	for i := 0; i < 3; i++ {
		assert.EqualError(t, p.Publish(context.Background(), evt), "bus down")
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), evt)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	next.AssertNumberOfCalls(t, "Publish", 3)
}

func TestBreakerPublisher_PassesThrough(t *testing.T) {
	next := new(mockPublisher)
	next.On("PublishBatch", mock.Anything, mock.Anything).Return(nil).Once()

	p := NewBreakerPublisher(next, DefaultBreakerConfig("events"), zaptest.NewLogger(t))
	require.NoError(t, p.PublishBatch(context.Background(), []events.DomainEvent{events.NewBulletPointsLinked(2, 1, time.Now())}))
	assert.Equal(t, gobreaker.StateClosed, p.State())
	next.AssertExpectations(t)
}
