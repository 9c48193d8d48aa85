package locomotion

import (
	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

// runDirectControl translates first-person input into desired speed and
// heading (§6 First-person control surface): forward/back set target speed,
// neither zeroes it, and left/right adjust heading by ± turnRate directly
// (bypassing the path controller's GetDeltaHeading shaping).
func (c *Controller) runDirectControl(u *mover.Unit, dc DirectControl, view worldview.View) followResult {
	u.Flags.UseMainHeading = false

	switch {
	case dc.ForwardBack > 0:
		u.WantedSpeed = u.Bounds.MaxSpeed
		u.Flags.Reversing = false
	case dc.ForwardBack < 0:
		u.WantedSpeed = u.Bounds.MaxReverseSpeed
		u.Flags.Reversing = true
	default:
		u.WantedSpeed = 0
	}
	u.CurrentSpeed = u.WantedSpeed

	if dc.LeftRight > 0 {
		u.Heading = u.Heading.Add(u.Bounds.TurnRate)
	} else if dc.LeftRight < 0 {
		u.Heading = u.Heading.Add(-u.Bounds.TurnRate)
	}

	// original_source/GroundMoveType.cpp:2215-2216 applies the identical
	// expression to both .x and .z independently; the Go port mirrors that
	// symmetry rather than scaling X alone and leaving Z raw.
	var desired vecmath.Vec3
	if view.ModInfo.LegacyDirectControlQuirk {
		desired = vecmath.Vec3{
			X: directControlLegacyProjection(u.Basis.Front.X, u.Flags.Reversing),
			Z: directControlLegacyProjection(u.Basis.Front.Z, u.Flags.Reversing),
		}
	} else {
		projection := directControlProjection(u.Flags.Reversing)
		desired = vecmath.Vec3{X: u.Basis.Front.X * projection, Z: u.Basis.Front.Z * projection}
	}
	if desired.Len() > 0 {
		desired = desired.Normalize()
	}

	return followResult{desiredDir: desired, wantReverse: u.Flags.Reversing}
}

// directControlProjection is the corrected lateral-scale factor used by
// UpdateDirectControl's waypoint-aim heuristic: -100 when reversing, +100
// otherwise, applied to each axis of frontdir independently.
func directControlProjection(wantReverse bool) float64 {
	if wantReverse {
		return -100
	}
	return 100
}

// directControlLegacyProjection reproduces the historical C++ operator-
// precedence bug verbatim: `frontdir.x * (wantReverse) ? -100 : 100` parses
// as `(frontdir.x * wantReverse) ? -100 : 100`, not the intended
// `frontdir.x * (wantReverse ? -100 : 100)`. The whole ternary becomes the
// assigned coordinate directly rather than a factor multiplied by frontdir,
// and since `wantReverse` converts to 0 or 1, the condition is simply
// "frontAxis != 0 && wantReverse".
func directControlLegacyProjection(frontAxis float64, wantReverse bool) float64 {
	if frontAxis != 0 && wantReverse {
		return -100
	}
	return 100
}
