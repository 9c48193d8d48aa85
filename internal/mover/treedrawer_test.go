package mover

import "testing"

func TestResolveTreeDrawModeFallsBackOnZeroRadius(t *testing.T) {
	cfg := RenderConfig{TreeRadius: 0, Trees3D: true}
	if mode := ResolveTreeDrawMode(cfg); mode != TreeDrawBasic {
		t.Fatalf("expected fallback to TreeDrawBasic, got %v", mode)
	}
}

func TestResolveTreeDrawModeAdvancedWhenRequested(t *testing.T) {
	cfg := DefaultRenderConfig()
	if mode := ResolveTreeDrawMode(cfg); mode != TreeDrawAdvanced {
		t.Fatalf("expected TreeDrawAdvanced for default config, got %v", mode)
	}
}

func TestResolveTreeDrawModeBasicWhenNotRequested(t *testing.T) {
	cfg := RenderConfig{TreeRadius: DefaultTreeRadius, Trees3D: false}
	if mode := ResolveTreeDrawMode(cfg); mode != TreeDrawBasic {
		t.Fatalf("expected TreeDrawBasic when Trees3D is false, got %v", mode)
	}
}
