// Package movement emits the locomotion core's two event-bus notifications
// (§6): UnitMoved and UnitMoveFailed. Shaped directly on logging/combat's
// AttackOverlap helper.
package movement

import (
	"context"

	"rtscore/logging"
)

const (
	// EventUnitMoved is emitted when a unit's position changed meaningfully
	// during a tick (Locomotion Controller Update, §4.1).
	EventUnitMoved logging.EventType = "movement.unit_moved"
	// EventUnitMoveFailed is emitted when Fail is invoked (§4.1, §7).
	EventUnitMoveFailed logging.EventType = "movement.unit_move_failed"
)

// MovedPayload captures the unit's position, heading and speed reported with
// UnitMoved.
type MovedPayload struct {
	X, Y, Z       float64
	Heading       int32
	CurrentSpeed  float64
	Reversing     bool
}

// EventKind satisfies logging.Payload.
func (MovedPayload) EventKind() logging.EventType { return EventUnitMoved }

// FailedPayload captures why a move attempt was abandoned.
type FailedPayload struct {
	Reason string `json:"reason"`
}

// EventKind satisfies logging.Payload.
func (FailedPayload) EventKind() logging.EventType { return EventUnitMoveFailed }

// UnitMoved publishes the UnitMoved event for actor at tick.
func UnitMoved(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MovedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitMoved,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// UnitMoveFailed publishes the UnitMoveFailed event for actor at tick.
func UnitMoveFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitMoveFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  FailedPayload{Reason: reason},
	})
}
