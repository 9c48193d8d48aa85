package main

import "testing"

func TestLoadScenarioReadsFixture(t *testing.T) {
	sc, err := loadScenario("testdata/single_unit_empty_map.yaml")
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	if sc.Width != 256 || sc.Height != 256 {
		t.Fatalf("unexpected dimensions: %+v", sc)
	}
	if len(sc.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(sc.Units))
	}
	if sc.Units[0].ID != "scout-1" {
		t.Fatalf("unexpected unit id %q", sc.Units[0].ID)
	}
}

func TestUnitSpecToUnitFillsDefaults(t *testing.T) {
	spec := unitSpec{ID: "u1", X: 5, Z: 5}
	u := spec.toUnit()
	if u.Bounds.MaxSpeed <= 0 {
		t.Fatalf("expected a default MaxSpeed, got %v", u.Bounds.MaxSpeed)
	}
	if u.Footprint.XSize != 1 || u.Footprint.ZSize != 1 {
		t.Fatalf("expected default 1x1 footprint, got %+v", u.Footprint)
	}
	if u.Basis.Front.Len() == 0 {
		t.Fatalf("expected a derived non-zero front basis vector")
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := loadScenario("testdata/does-not-exist.yaml"); err == nil {
		t.Fatalf("expected an error for a missing scenario file")
	}
}
