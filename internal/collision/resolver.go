// Package collision implements the Collision Resolver (§4.2): pairwise
// separation of a moving unit against nearby mobile units, static
// structures/yard-mapped buildings, and world features, including crushing,
// damage, and impulse exchange. Invoked each tick after position integration.
package collision

import (
	"context"
	"math"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
	collisionlog "rtscore/logging/collision"
	"rtscore/logging"
)

const (
	featureMassScale  = 10000.0
	pushResponseCap2x = 2 // response capped at min(2*gridSquare, penDist/2)
	headOnBonusScale  = 5.0
)

// Outcome reports what happened to a mover during one resolver pass.
type Outcome struct {
	Displacement   vecmath.Vec3
	RepathRequested bool
	Killed         []string // neighbor IDs crushed this tick
	Impulses       []KillImpulse
}

// KillImpulse is the impulse a crush delivered to its victim (§4.2): the
// collider's velocity scaled by its mass and direction of travel, which the
// caller applies to the crushed neighbor's own velocity (e.g. to fling a
// crushed unit's corpse, or to drive a ragdoll/skid handoff for it).
type KillImpulse struct {
	ID     string
	Vector vecmath.Vec3
}

// ResolveUnit runs the unit-unit, unit-feature, and unit-static passes for a
// single mover against its neighborhood, in that order (§4.2).
func ResolveUnit(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) Outcome {
	var out Outcome
	if u == nil {
		return out
	}

	searchRadius := math.Max(u.CurrentSpeed, 1) * colliderRadius(u)

	if view.Spatial != nil {
		units := view.Spatial.GetUnitsExact(u.Position, searchRadius)
		for _, n := range units {
			resolveUnitUnit(u, moveDef, n, view, &out)
		}

		features := view.Spatial.GetFeaturesExact(u.Position, searchRadius)
		for _, n := range features {
			resolveUnitFeature(u, moveDef, n, view, &out)
		}
	}

	resolveUnitStatic(u, moveDef, view, &out)

	return out
}

func colliderRadius(u *mover.Unit) float64 {
	if u.Radius > 0 {
		return u.Radius * 2
	}
	return mover.GridSquareSize * 2
}

func resolveUnitUnit(u *mover.Unit, moveDef mover.MoveDefinition, n worldview.Neighbor, view worldview.View, out *Outcome) {
	if n.ID == u.ID || n.Flags.Skidding || n.Flags.Flying {
		return
	}
	if isTransportRelated(u, n) {
		return
	}
	if n.MoveDef != nil && !moveDef.Collides(*n.MoveDef) {
		return
	}

	dx, dz, dist := SeparationXZ(n.Position.X, n.Position.Z, u.Position.X, u.Position.Z)
	minDist := footprintRadius(u.Footprint) + footprintRadius(n.Footprint)
	if dist >= minDist {
		return
	}

	collideeCrushResistant := n.MoveDef != nil && n.MoveDef.CrushResistant
	colliderMomentum := u.CurrentSpeed * u.Mass
	collideeMomentum := n.Velocity.Len() * n.Mass

	if !collideeCrushResistant && colliderMomentum > collideeMomentum {
		sign := 1.0
		if u.Flags.Reversing {
			sign = -1
		}
		killImpulse := u.Velocity.Mul(u.Mass * sign)
		out.Killed = append(out.Killed, n.ID)
		out.Impulses = append(out.Impulses, KillImpulse{ID: n.ID, Vector: killImpulse})
		emitUnitUnit(view, u, n, collisionlog.ContactPayload{Crushed: true, Penetration: minDist - dist})
		return
	}

	pushCollider, pushCollidee := pushability(u, n, view.ModInfo)
	if isEffectivelyStatic(n) || (!pushCollider && !pushCollidee) {
		handleStaticObjectCollision(u, moveDef, n, view, out)
		return
	}

	if goalShareTiebreak(u, n) {
		u.Progress = mover.Done
		return
	}

	penDist := minDist - dist
	response := math.Min(pushResponseCap2x*mover.GridSquareSize, penDist/2)

	sepDir := vecmath.Vec3{X: dx, Z: dz}
	if sepDir.Len() > 0 {
		sepDir = sepDir.Normalize()
	}

	headOnFactor := 1 + (1-math.Abs(u.Basis.Front.Dot(sepDir)))*headOnBonusScale
	wSelf := u.Mass * u.CurrentSpeed * headOnFactor
	wOther := n.Mass * n.Velocity.Len() * headOnFactor
	total := wSelf + wOther
	if total <= 0 {
		wSelf, wOther, total = 1, 1, 2
	}

	selfShare := response * (wOther / total)
	lateral := vecmath.Vec3{X: -sepDir.Z, Z: sepDir.X}
	slideScale := 0.0
	if penDist > 0 {
		slideScale = 1 / penDist
	}

	if pushCollider {
		candidate := u.Position.Sub(sepDir.Mul(selfShare)).Add(lateral.Mul(slideScale))
		if view.Map == nil || view.Map.TestMoveSquare(moveDef, candidate, u.ID) {
			out.Displacement = out.Displacement.Add(candidate.Sub(u.Position))
			u.Position = candidate
		}
	}

	emitUnitUnit(view, u, n, collisionlog.ContactPayload{PushedSelf: pushCollider, PushedOther: pushCollidee, Penetration: penDist})
}

func resolveUnitFeature(u *mover.Unit, moveDef mover.MoveDefinition, n worldview.Neighbor, view worldview.View, out *Outcome) {
	if isTransportRelated(u, n) {
		return
	}
	if n.MoveDef != nil && !moveDef.Collides(*n.MoveDef) {
		return
	}

	dx, dz, dist := SeparationXZ(n.Position.X, n.Position.Z, u.Position.X, u.Position.Z)
	minDist := footprintRadius(u.Footprint) + featureInstanceRadius(n)
	if dist >= minDist {
		return
	}

	scaledColliderMass := u.Mass * featureMassScale
	moving := n.MoveDef != nil
	if !moving {
		collideeCrushResistant := false // non-moving features use their own resistance flag if present
		colliderMomentum := u.CurrentSpeed * scaledColliderMass
		collideeMomentum := n.Velocity.Len() * n.Mass
		if !collideeCrushResistant && colliderMomentum > collideeMomentum {
			sign := 1.0
			if u.Flags.Reversing {
				sign = -1
			}
			killImpulse := u.Velocity.Mul(scaledColliderMass * sign)
			out.Killed = append(out.Killed, n.ID)
			out.Impulses = append(out.Impulses, KillImpulse{ID: n.ID, Vector: killImpulse})
			emitUnitFeature(view, u, n, collisionlog.ContactPayload{Crushed: true, Penetration: minDist - dist})
			return
		}
	}

	if isEffectivelyStatic(n) || moving {
		handleStaticObjectCollision(u, moveDef, n, view, out)
		return
	}

	penDist := minDist - dist
	response := math.Min(pushResponseCap2x*mover.GridSquareSize, penDist/2)
	sepDir := vecmath.Vec3{X: dx, Z: dz}
	if sepDir.Len() > 0 {
		sepDir = sepDir.Normalize()
	}
	candidate := u.Position.Sub(sepDir.Mul(response))
	if view.Map == nil || view.Map.TestMoveSquare(moveDef, candidate, u.ID) {
		out.Displacement = out.Displacement.Add(candidate.Sub(u.Position))
		u.Position = candidate
	}
	emitUnitFeature(view, u, n, collisionlog.ContactPayload{PushedSelf: true, Penetration: penDist})
}

// handleStaticObjectCollision treats n as immovable: u is pushed fully out of
// the overlap (the static/building/landed-aircraft branch of §4.2).
func handleStaticObjectCollision(u *mover.Unit, moveDef mover.MoveDefinition, n worldview.Neighbor, view worldview.View, out *Outcome) {
	dx, dz, dist := SeparationXZ(n.Position.X, n.Position.Z, u.Position.X, u.Position.Z)
	minDist := footprintRadius(u.Footprint) + footprintRadius(n.Footprint)
	if dist >= minDist {
		return
	}
	penDist := minDist - dist
	sepDir := vecmath.Vec3{X: -dx, Z: -dz}
	if sepDir.Len() > 0 {
		sepDir = sepDir.Normalize()
	}
	candidate := u.Position.Add(sepDir.Mul(penDist))
	if view.Map == nil || view.Map.TestMoveSquare(moveDef, candidate, u.ID) {
		out.Displacement = out.Displacement.Add(candidate.Sub(u.Position))
		u.Position = candidate
	}
}

// resolveUnitStatic sweeps the footprint-sized grid rectangle around u's
// predicted next position for impassable/structure-blocked squares and
// bounces u out of them (§4.2 unit-static pass).
func resolveUnitStatic(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View, out *Outcome) {
	if view.Map == nil {
		return
	}

	predicted := u.Position.Add(u.Velocity.Mul(1))
	rect := FootprintRect(predicted, u.Footprint)

	var bounceSum, strafeSign vecmath.Vec3
	contributions := 0

	step := mover.GridSquareSize
	for z := rect.MinZ; z <= rect.MaxZ; z += step {
		for x := rect.MinX; x <= rect.MaxX; x += step {
			square := vecmath.Vec3{X: x, Y: predicted.Y, Z: z}
			mask := view.Map.SquareIsBlocked(moveDef, square, u.ID)
			speedMod := view.Map.GetPosSpeedMod(moveDef, square, nil)
			if speedMod > 0.01 && mask&worldview.BlockStructure == 0 {
				continue
			}
			bdx, bdz, bdist := SeparationXZ(x, z, predicted.X, predicted.Z)
			if bdist == 0 {
				continue
			}
			bounce := vecmath.Vec3{X: -bdx / bdist, Z: -bdz / bdist}
			bounceSum = bounceSum.Add(bounce)
			lateral := u.Basis.Right.Dot(vecmath.Vec3{X: x - predicted.X, Z: z - predicted.Z})
			sign := 1.0
			if lateral < 0 {
				sign = -1
			}
			strafeSign.X += sign
			contributions++
		}
	}

	if contributions == 0 {
		return
	}

	bounceVec := bounceSum.Mul(1 / float64(contributions))
	strafeVec := u.Basis.Right.Mul(strafeSign.X / float64(contributions))

	bounceScale := math.Min(u.CurrentSpeed, 1.0)
	strafeScale := math.Min(u.CurrentSpeed, 1.0)

	candidate := u.Position.Add(strafeVec.Mul(strafeScale)).Add(bounceVec.Mul(bounceScale))
	if view.Map.TestMoveSquare(moveDef, candidate, u.ID) {
		delta := candidate.Sub(u.Position)
		if delta.Len() > 0 {
			out.Displacement = out.Displacement.Add(delta)
			u.Position = candidate
			if u.Progress == mover.Active && view.Commands != nil {
				out.RepathRequested = true
			}
		}
	}
}

func footprintRadius(f mover.Footprint) float64 {
	hx, hz := f.HalfExtentX(), f.HalfExtentZ()
	return math.Max(hx, hz)
}

func featureInstanceRadius(n worldview.Neighbor) float64 {
	if n.Radius > 0 {
		return n.Radius
	}
	return footprintRadius(n.Footprint)
}

func isTransportRelated(u *mover.Unit, n worldview.Neighbor) bool {
	return false // transport/load relationships are resolved by the command system; no local state here
}

func isEffectivelyStatic(n worldview.Neighbor) bool {
	return n.MoveDef == nil
}

func pushability(u *mover.Unit, n worldview.Neighbor, modInfo mover.ModInfo) (pushCollider, pushCollidee bool) {
	if u.Flags.BeingBuilt || n.Flags.BeingBuilt {
		return false, false
	}
	if !modInfo.AllowPushingEnemyUnits && !n.Ally {
		return false, false
	}
	return true, true
}

func goalShareTiebreak(u *mover.Unit, n worldview.Neighbor) bool {
	if u.Progress != mover.Active {
		return false
	}
	if n.CommandQueueLen != 0 {
		return false
	}
	dx := u.Goal.X - n.Position.X
	dz := u.Goal.Z - n.Position.Z
	return dx*dx+dz*dz <= 2
}

func emitUnitUnit(view worldview.View, u *mover.Unit, n worldview.Neighbor, payload collisionlog.ContactPayload) {
	if view.Events == nil {
		return
	}
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	collisionlog.UnitUnitCollision(ctx, asPublisher(view.Events), view.Tick,
		logging.EntityRef{ID: u.ID, Kind: logging.EntityKindUnknown},
		logging.EntityRef{ID: n.ID, Kind: logging.EntityKindUnknown}, payload)
}

func emitUnitFeature(view worldview.View, u *mover.Unit, n worldview.Neighbor, payload collisionlog.ContactPayload) {
	if view.Events == nil {
		return
	}
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	collisionlog.UnitFeatureCollision(ctx, asPublisher(view.Events), view.Tick,
		logging.EntityRef{ID: u.ID, Kind: logging.EntityKindUnknown},
		logging.EntityRef{ID: n.ID, Kind: logging.EntityKindUnknown}, payload)
}

// publisherAdapter bridges worldview.EventBus to logging.Publisher so the
// typed event constructors in logging/collision can be reused unchanged.
type publisherAdapter struct {
	bus worldview.EventBus
}

func (p publisherAdapter) Publish(ctx context.Context, event logging.Event) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(ctx, event.Tick, string(event.Type), event.Actor.ID, event.Payload)
}

func asPublisher(bus worldview.EventBus) logging.Publisher {
	return publisherAdapter{bus: bus}
}
