package mover

import "time"

// ModInfo mirrors the subset of engine-wide mod flags the locomotion and
// collision components consume (§6 Configuration surface). The core never
// reads configuration files directly — callers normalize and pass this in.
type ModInfo struct {
	AllowUnitCollisionDamage  bool
	AllowUnitCollisionOverlap bool
	AllowPushingEnemyUnits    bool
	AllowCrushingAlliedUnits  bool
	AllowGroundUnitGravity    bool
	AllowHoverUnitStrafing    bool

	// LegacyDirectControlQuirk reproduces the historical operator-precedence
	// bug in UpdateDirectControl's waypoint projection (SPEC_FULL §13/§14)
	// when true. Defaults to false (corrected behavior).
	LegacyDirectControlQuirk bool
}

// DefaultModInfo returns the conservative defaults used when no explicit
// configuration is supplied.
func DefaultModInfo() ModInfo {
	return ModInfo{
		AllowUnitCollisionDamage:  true,
		AllowUnitCollisionOverlap: false,
		AllowPushingEnemyUnits:    false,
		AllowCrushingAlliedUnits:  false,
		AllowGroundUnitGravity:    true,
		AllowHoverUnitStrafing:    false,
		LegacyDirectControlQuirk:  false,
	}
}

// RenderConfig captures the two persistent options the original engine reads
// once at construction and writes on shutdown (§6). The locomotion core
// itself never reads these — they exist because the configuration surface
// names them explicitly and a complete port carries them even though
// rendering is out of scope.
type RenderConfig struct {
	TreeRadius float64
	Trees3D    bool
}

// DefaultTreeRadius mirrors the legacy default of 5.5 × 256 world units.
const DefaultTreeRadius = 5.5 * 256

// DefaultRenderConfig returns the documented defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{TreeRadius: DefaultTreeRadius, Trees3D: true}
}

// Normalized clamps RenderConfig to its documented constraints (TreeRadius is
// non-negative).
func (c RenderConfig) Normalized() RenderConfig {
	if c.TreeRadius < 0 {
		c.TreeRadius = 0
	}
	return c
}

// TuningConstants bundles the small numeric constants the spec names in
// passing (§4.1-§4.4) so callers don't scatter magic numbers across packages.
type TuningConstants struct {
	// PathRequestDelay is carried as a tuning value; the locomotion controller
	// does not read it (SlowUpdate uses its own fixed tick delay).
	PathRequestDelay time.Duration
	// SlowUpdateIdlingCeiling bounds SlowUpdate's restart-vs-give-up policy.
	SlowUpdateIdlingCeiling int32
	// ImpulseSkidThresholdSq is the squared residual-impulse magnitude that
	// triggers CanApplyImpulse (§4.3: |residualImpulse|^2 > 9).
	ImpulseSkidThresholdSq float64
	// GroundSkidStopSpeed is the speed below which a ground skid halts
	// (§4.3: speedLen < 0.35).
	GroundSkidStopSpeed float64
}

// DefaultTuningConstants returns the constants named directly in spec.md.
func DefaultTuningConstants() TuningConstants {
	return TuningConstants{
		PathRequestDelay:        0, // set by caller from the engine's slow-update rate
		SlowUpdateIdlingCeiling: 1 << 14,
		ImpulseSkidThresholdSq:  9,
		GroundSkidStopSpeed:     0.35,
	}
}
