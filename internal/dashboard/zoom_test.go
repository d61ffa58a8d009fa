package dashboard

import (
	"errors"
	"math"
	"testing"
)

func TestGeometryFor(t *testing.T) {
	tests := []struct {
		index    int
		scale    float64
		percent  int
		box      float64
		suppress bool
	}{
		{0, 0.5, 50, 2, true},
		{1, 0.75, 75, 1 / 0.75, true},
		{2, 0.9, 90, 1 / 0.9, true},
		{3, 1.0, 100, 1, false},
		{4, 1.1, 110, 1 / 1.1, false},
		{5, 1.25, 125, 0.8, false},
		{8, 2.0, 200, 0.5, false},
		{-4, 0.5, 50, 2, true},
		{99, 2.0, 200, 0.5, false},
	}
	for _, tt := range tests {
		g := GeometryFor(tt.index)
		if g.Scale != tt.scale || g.Percent != tt.percent || g.SuppressScroll != tt.suppress {
			t.Errorf("GeometryFor(%d) = %+v", tt.index, g)
		}
		if math.Abs(g.BoxFactor-tt.box) > 1e-9 {
			t.Errorf("GeometryFor(%d).BoxFactor = %v, want %v", tt.index, g.BoxFactor, tt.box)
		}
	}
}

func TestZoom_PanelsAreIndependent(t *testing.T) {
	z := NewZoom(PanelCount)
	z.In(1)
	z.Out(2)
	z.Out(2)

	want := map[int]int{1: 4, 2: 1, 3: DefaultZoomIndex, 4: DefaultZoomIndex}
	for panel, idx := range want {
		if got := z.Get(panel); got != idx {
			t.Errorf("Get(%d) = %d, want %d", panel, got, idx)
		}
	}

	z.Reset(2)
	if z.Get(2) != DefaultZoomIndex {
		t.Errorf("Reset left index %d", z.Get(2))
	}
}

func TestZoom_StepReportsChange(t *testing.T) {
	z := NewZoom(1)
	for z.Out(1) {
	}
	if z.Get(1) != 0 {
		t.Fatalf("index = %d after stepping out, want 0", z.Get(1))
	}
	for z.In(1) {
	}
	if z.Get(1) != len(Scales)-1 {
		t.Fatalf("index = %d after stepping in, want %d", z.Get(1), len(Scales)-1)
	}
}

func TestZoom_SetRejectsOutOfRange(t *testing.T) {
	z := NewZoom(1)
	for _, idx := range []int{-1, len(Scales)} {
		if err := z.Set(1, idx); !errors.Is(err, ErrZoomRange) {
			t.Errorf("Set(%d) = %v, want ErrZoomRange", idx, err)
		}
	}
	if z.Get(1) != DefaultZoomIndex {
		t.Errorf("rejected Set changed index to %d", z.Get(1))
	}
}
