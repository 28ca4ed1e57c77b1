package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir/internal/config"
	"bizdir/internal/domain"
)

func TestNewEvent(t *testing.T) {
	b := &domain.Business{ID: "b1", Slug: "joes-coffee", OwnerID: "u1", Status: domain.StatusApproved}
	e := NewEvent(BusinessApproved, b, "admin")
	assert.Equal(t, BusinessApproved, e.Type)
	assert.Equal(t, "b1", e.BusinessID)
	assert.Equal(t, "u1", e.OwnerID)
	assert.Equal(t, domain.StatusApproved, e.Status)
	assert.Equal(t, "admin", e.ActorID)
	assert.False(t, e.At.IsZero())
}

func TestNewPicksBackend(t *testing.T) {
	p, err := New(config.EventsConfig{Type: "noop"})
	require.NoError(t, err)
	assert.IsType(t, &NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: BusinessSubmitted}))
	assert.NoError(t, p.Close())

	_, err = New(config.EventsConfig{Type: "kafka"})
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, Event{Type: BusinessSubmitted}))
	require.NoError(t, r.Publish(ctx, Event{Type: BusinessApproved}))
	assert.Equal(t, []string{BusinessSubmitted, BusinessApproved}, r.Types())

	r.Err = errors.New("down")
	assert.Error(t, r.Publish(ctx, Event{Type: BusinessRejected}))
	assert.Len(t, r.Events(), 2)
}
