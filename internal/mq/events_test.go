package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttbackend/apiserver/config"
)

type memoryBackend struct {
	mu        sync.Mutex
	published []Message
	channels  []string
	failWith  error
}

func (b *memoryBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return "", b.failWith
	}
	b.published = append(b.published, Message{ID: "m", Data: data, Attributes: attrs})
	b.channels = append(b.channels, channel)
	return "m", nil
}

func (b *memoryBackend) Subscribe(ctx context.Context, _ string, handler Handler) error {
	b.mu.Lock()
	msgs := append([]Message(nil), b.published...)
	b.mu.Unlock()
	for _, msg := range msgs {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *memoryBackend) Close() error { return nil }

func TestEventPublisher_Publish(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{}
	publisher := NewEventPublisher(New(backend), "security-events")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	require.NoError(t, publisher.Publish(context.Background(), EventPasswordChanged, 7))

	require.Len(t, backend.published, 1)
	assert.Equal(t, "security-events", backend.channels[0])
	assert.Equal(t, "password.changed", backend.published[0].Attributes["type"])

	var event SecurityEvent
	require.NoError(t, json.Unmarshal(backend.published[0].Data, &event))
	assert.Equal(t, SecurityEvent{Type: EventPasswordChanged, EmployeeID: 7, At: fixed}, event)
}

func TestEventPublisher_PublishError(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{failWith: errors.New("broker down")}
	publisher := NewEventPublisher(New(backend), "security-events")

	err := publisher.Publish(context.Background(), EventLoginFailed, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login.failed")
}

func TestEventPublisher_Consume(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{}
	publisher := NewEventPublisher(New(backend), "security-events")
	require.NoError(t, publisher.Publish(context.Background(), EventLoginSucceeded, 1))
	backend.published = append(backend.published, Message{Data: []byte("not json")})
	require.NoError(t, publisher.Publish(context.Background(), EventTokenRefreshed, 1))

	var got []EventType
	err := publisher.Consume(context.Background(), func(_ context.Context, event SecurityEvent) error {
		got = append(got, event.Type)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventLoginSucceeded, EventTokenRefreshed}, got)
}

func TestOpen_Disabled(t *testing.T) {
	t.Parallel()

	m, err := Open(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = Open(context.Background(), config.MQConfig{Backend: "kafka"})
	require.Error(t, err)
}
