package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a security-relevant occurrence in the credential subsystem.
type EventType string

const (
	EventLoginSucceeded  EventType = "login.succeeded"
	EventLoginFailed     EventType = "login.failed"
	EventPasswordChanged EventType = "password.changed"
	EventTokenRefreshed  EventType = "token.refreshed"
)

// SecurityEvent is the JSON payload published for each event. It never
// carries passwords, hashes, salts or tokens.
type SecurityEvent struct {
	Type       EventType `json:"type"`
	EmployeeID int       `json:"employeeId,omitempty"`
	At         time.Time `json:"at"`
}

// EventPublisher publishes SecurityEvents on one channel.
type EventPublisher struct {
	mq      *MQ
	channel string
	now     func() time.Time
}

// NewEventPublisher constructs an EventPublisher for channel.
func NewEventPublisher(m *MQ, channel string) *EventPublisher {
	return &EventPublisher{mq: m, channel: channel, now: time.Now}
}

// Publish sends one event. The caller bounds it with ctx.
func (p *EventPublisher) Publish(ctx context.Context, eventType EventType, employeeID int) error {
	event := SecurityEvent{
		Type:       eventType,
		EmployeeID: employeeID,
		At:         p.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	attrs := map[string]string{"type": string(eventType)}
	if _, err := p.mq.Publish(ctx, p.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Consume delivers decoded SecurityEvents from the channel to fn until ctx
// is cancelled. Undecodable messages are acknowledged and dropped.
func (p *EventPublisher) Consume(ctx context.Context, fn func(ctx context.Context, event SecurityEvent) error) error {
	return p.mq.Subscribe(ctx, p.channel, func(ctx context.Context, msg Message) error {
		var event SecurityEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}
