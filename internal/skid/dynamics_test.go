package skid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
)

// Impulse-induced skid (§4.3/§8): an accumulated impulse below threshold
// leaves the unit untouched; crossing it consumes the residual slot and
// enters Skidding.
func TestCanApplyImpulseThreshold(t *testing.T) {
	u := &mover.Unit{ID: "a"}

	entered := CanApplyImpulse(u, vecmath.Vec3{X: 1}, vecmath.Vec3{Y: 1}, 9, nil)
	require.False(t, entered)
	require.False(t, u.Flags.Skidding)
	require.Equal(t, vecmath.Vec3{X: 1}, u.ResidualImpulse, "impulse below threshold must accumulate, not apply")

	entered = CanApplyImpulse(u, vecmath.Vec3{X: 10}, vecmath.Vec3{Y: 1}, 9, nil)
	require.True(t, entered)
	require.True(t, u.Flags.Skidding)
	require.Equal(t, vecmath.Zero3, u.ResidualImpulse, "crossing threshold must consume the residual slot")
	require.Equal(t, vecmath.Vec3{X: 11}, u.Velocity)
}

// A skid below the ground-skid stop speed, on flat ground, ends the tick it
// drops below threshold (§4.3).
func TestUpdateSkidStopsBelowThreshold(t *testing.T) {
	u := &mover.Unit{
		ID: "a", Flags: mover.ModeFlags{Skidding: true},
		Velocity: vecmath.Vec3{X: 0.1},
		Skid:     mover.SkidState{PriorPhysics: mover.OnGround},
	}
	u.Physics = mover.Submarine // sentinel so we can tell PriorPhysics restore happened

	UpdateSkid(u, Environment{}, 1.0/30)

	require.False(t, u.Flags.Skidding)
	require.Equal(t, mover.OnGround, u.Physics)
	require.Equal(t, vecmath.Zero3, u.Velocity)
}

// A skid above the stop threshold keeps skidding and damps toward it rather
// than stopping outright.
func TestUpdateSkidContinuesAboveThreshold(t *testing.T) {
	u := &mover.Unit{
		ID: "a", Flags: mover.ModeFlags{Skidding: true},
		Velocity: vecmath.Vec3{Z: 5},
	}

	UpdateSkid(u, Environment{}, 1.0/30)

	require.True(t, u.Flags.Skidding)
	require.Less(t, u.Velocity.Len(), 5.0, "ground skid must damp speed toward the stop threshold")
}
