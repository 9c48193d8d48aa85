// Package skid emits the locomotion core's ballistic-substate notifications
// (§6): entry into and exit from Skidding, mirroring logging/movement's and
// logging/collision's shape.
package skid

import (
	"context"

	"rtscore/logging"
)

const (
	// EventSkidStarted is emitted when a residual impulse crosses the
	// skid threshold and CanApplyImpulse begins a ballistic hop (§4.3).
	EventSkidStarted logging.EventType = "skid.started"
	// EventSkidEnded is emitted when ground contact damps velocity below
	// the stop threshold and control returns to locomotion (§4.3).
	EventSkidEnded logging.EventType = "skid.ended"
)

// StartedPayload captures the impulse that triggered the skid.
type StartedPayload struct {
	ImpulseX, ImpulseY, ImpulseZ float64
	Flying                       bool
}

// EventKind satisfies logging.Payload.
func (StartedPayload) EventKind() logging.EventType { return EventSkidStarted }

// EndedPayload captures the unit's state as it regains normal locomotion.
type EndedPayload struct {
	X, Y, Z float64
}

// EventKind satisfies logging.Payload.
func (EndedPayload) EventKind() logging.EventType { return EventSkidEnded }

// SkidStarted publishes the EventSkidStarted event.
func SkidStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSkidStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// SkidEnded publishes the EventSkidEnded event.
func SkidEnded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSkidEnded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
