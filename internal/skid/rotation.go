package skid

import (
	"github.com/go-gl/mathgl/mgl64"

	"rtscore/internal/vecmath"
)

// rodrigues rotates v around axis by angle radians. The skid rotational spin
// (§4.3) is integrated by building the basis from (skidRotVector, frontdir,
// rightdir, updir) and applying this to each; using github.com/go-gl/mathgl's
// quaternion rotation keeps the hot loop free of hand-rolled matrix algebra.
func rodrigues(v, axis vecmath.Vec3, angle float64) vecmath.Vec3 {
	mglAxis := mgl64.Vec3{axis.X, axis.Y, axis.Z}
	if mglAxis.Len() < 1e-9 {
		return v
	}
	mglAxis = mglAxis.Normalize()
	q := mgl64.QuatRotate(angle, mglAxis)
	rotated := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return vecmath.Vec3{X: rotated[0], Y: rotated[1], Z: rotated[2]}
}

// RotateBasis applies the accumulated spin rotation to the triad
// (frontdir, rightdir, updir) around axis by angle, matching the Rodrigues
// triple the spec names: (u1 + u2*cosθ + (u2×axis)*sinθ).
func RotateBasis(b vecmath.Basis, axis vecmath.Vec3, angle float64) vecmath.Basis {
	return vecmath.Basis{
		Front: rodrigues(b.Front, axis, angle),
		Right: rodrigues(b.Right, axis, angle),
		Up:    rodrigues(b.Up, axis, angle),
	}
}
