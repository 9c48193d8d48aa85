// Package collision emits the locomotion core's contact notifications (§6):
// UnitUnitCollision and UnitFeatureCollision.
package collision

import (
	"context"

	"rtscore/logging"
)

const (
	// EventUnitUnitCollision is emitted after a unit-unit contact is resolved
	// (§4.2).
	EventUnitUnitCollision logging.EventType = "collision.unit_unit"
	// EventUnitFeatureCollision is emitted after a unit-feature contact is
	// resolved (§4.2).
	EventUnitFeatureCollision logging.EventType = "collision.unit_feature"
)

// ContactPayload describes a resolved contact between a mover and a
// neighbor. Kind distinguishes unit-unit from unit-feature contacts since
// both publish helpers share this payload shape; the constructors below set
// it, so callers never need to.
type ContactPayload struct {
	Kind        logging.EventType `json:"-"`
	Crushed     bool              `json:"crushed,omitempty"`
	PushedSelf  bool              `json:"pushedSelf,omitempty"`
	PushedOther bool              `json:"pushedOther,omitempty"`
	Penetration float64           `json:"penetration"`
}

// EventKind satisfies logging.Payload.
func (p ContactPayload) EventKind() logging.EventType { return p.Kind }

// UnitUnitCollision publishes the UnitUnitCollision event.
func UnitUnitCollision(ctx context.Context, pub logging.Publisher, tick uint64, actor, other logging.EntityRef, payload ContactPayload) {
	if pub == nil {
		return
	}
	payload.Kind = EventUnitUnitCollision
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitUnitCollision,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{other},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// UnitFeatureCollision publishes the UnitFeatureCollision event.
func UnitFeatureCollision(ctx context.Context, pub logging.Publisher, tick uint64, actor, feature logging.EntityRef, payload ContactPayload) {
	if pub == nil {
		return
	}
	payload.Kind = EventUnitFeatureCollision
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitFeatureCollision,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{feature},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
