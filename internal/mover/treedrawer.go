package mover

import "github.com/pkg/errors"

// TreeDrawMode selects which of the two tree-rendering strategies a
// RenderConfig resolves to.
type TreeDrawMode int

const (
	// TreeDrawAdvanced is the billboard/3D tree renderer, requested when
	// RenderConfig.Trees3D is set.
	TreeDrawAdvanced TreeDrawMode = iota
	// TreeDrawBasic is the flat-sprite fallback.
	TreeDrawBasic
)

// ErrAdvancedTreeDrawerUnavailable is returned by newAdvancedTreeDrawer when
// the advanced renderer cannot be constructed for the given RenderConfig.
var ErrAdvancedTreeDrawerUnavailable = errors.New("advanced tree drawer unavailable")

// newAdvancedTreeDrawer is the construction path that can fail: a
// non-positive TreeRadius leaves nothing for the advanced renderer to batch,
// so it refuses to start rather than render an empty scene.
func newAdvancedTreeDrawer(cfg RenderConfig) (TreeDrawMode, error) {
	if cfg.TreeRadius <= 0 {
		return TreeDrawBasic, errors.Wrap(ErrAdvancedTreeDrawerUnavailable, "non-positive TreeRadius")
	}
	return TreeDrawAdvanced, nil
}

// ResolveTreeDrawMode mirrors ITreeDrawer::GetTreeDrawer's fallback
// construction: try the advanced drawer when Trees3D is requested, and fall
// back to the basic drawer on any construction error instead of propagating
// it, since a missing tree renderer is never fatal to the simulation.
func ResolveTreeDrawMode(cfg RenderConfig) TreeDrawMode {
	if !cfg.Trees3D {
		return TreeDrawBasic
	}
	mode, err := newAdvancedTreeDrawer(cfg)
	if err != nil {
		return TreeDrawBasic
	}
	return mode
}
