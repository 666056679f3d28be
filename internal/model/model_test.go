package model

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRejectsShapeMismatch(t *testing.T) {
	vp := [][]float64{{1, 2}, {3, 4}}
	vs := [][]float64{{1, 2}}
	rho := [][]float64{{1, 2}, {3, 4}}
	if _, err := New(vp, vs, rho, 20); err == nil {
		t.Fatal("expected shape mismatch error")
	}
	if _, err := New(vp, vp, rho, 0); err == nil {
		t.Fatal("expected spacing error")
	}
}

func TestConstantDimensions(t *testing.T) {
	m := Constant(174, 500, 3500, 3500/1.7, 1800, 20)
	if m.NX() != 500 || m.NY() != 174 {
		t.Fatalf("expected 500x174, got %dx%d", m.NX(), m.NY())
	}
	if m.XMax() != 499*20.0 {
		t.Fatalf("XMax = %g, want %g", m.XMax(), 499*20.0)
	}
	if m.ZMax() != 173*20.0 {
		t.Fatalf("ZMax = %g, want %g", m.ZMax(), 173*20.0)
	}
}

func TestVelocityExtremaIgnoreZeros(t *testing.T) {
	vp := [][]float64{{0, 1500}, {3500, 2000}}
	vs := [][]float64{{0, 0}, {2058, 900}}
	rho := [][]float64{{1000, 1000}, {1800, 1800}}
	m, err := New(vp, vs, rho, 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	maxVP, maxVS := m.MaxVelocities()
	if maxVP != 3500 || maxVS != 2058 {
		t.Fatalf("max = (%g, %g), want (3500, 2058)", maxVP, maxVS)
	}
	minVP, minVS := m.MinVelocities()
	if minVP != 1500 || minVS != 900 {
		t.Fatalf("min = (%g, %g), want (1500, 900)", minVP, minVS)
	}
}

func TestMeanPoissonRatioHomogeneous(t *testing.T) {
	m := Constant(4, 4, 3500, 3500/1.7, 1800, 20)
	vp2 := 3500.0 * 3500.0
	vs2 := (3500.0 / 1.7) * (3500.0 / 1.7)
	want := 0.5 * (vp2 - 2*vs2) / (vp2 - vs2)
	if got := m.MeanPoissonRatio(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("poisson ratio = %g, want %g", got, want)
	}
}

func TestWriteGridSolverOrder(t *testing.T) {
	// 2 rows x 3 cols; solver order reads columns bottom-up, left to right.
	g := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}
	path := filepath.Join(t.TempDir(), "grid.vp")
	if err := writeGrid(g, path); err != nil {
		t.Fatalf("writeGrid: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []float32{4, 1, 5, 2, 6, 3}
	if len(raw) != len(want)*4 {
		t.Fatalf("expected %d bytes, got %d", len(want)*4, len(raw))
	}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		if got != w {
			t.Fatalf("value %d: got %g, want %g", i, got, w)
		}
	}
}

func TestReadGridInvertsWrite(t *testing.T) {
	g := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}
	path := filepath.Join(t.TempDir(), "grid.vs")
	if err := writeGrid(g, path); err != nil {
		t.Fatalf("writeGrid: %v", err)
	}
	back, err := ReadGrid(path, 2, 3)
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}
	for r := range g {
		for c := range g[r] {
			if back[r][c] != g[r][c] {
				t.Fatalf("cell (%d,%d): got %g, want %g", r, c, back[r][c], g[r][c])
			}
		}
	}
}

func TestWriteBinariesEmitsAllProperties(t *testing.T) {
	m := Constant(2, 2, 3500, 2000, 1800, 20)
	base := filepath.Join(t.TempDir(), "model")
	if err := m.WriteBinaries(base); err != nil {
		t.Fatalf("WriteBinaries: %v", err)
	}
	for _, ext := range []string{".vp", ".vs", ".rho"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Fatalf("missing %s: %v", ext, err)
		}
	}
}

func TestFromCombinedFlipsRows(t *testing.T) {
	// (2, 1, 3) combined array: bottom row stored first after the flip.
	data := []float64{
		1000, 500, 1100, // stored row 0 -> logical bottom row
		2000, 900, 1800, // stored row 1 -> logical top row
	}
	m, err := FromCombined(data, 2, 1, 10)
	if err != nil {
		t.Fatalf("FromCombined: %v", err)
	}
	if m.VP[0][0] != 2000 || m.VP[1][0] != 1000 {
		t.Fatalf("rows not flipped: vp = %v", m.VP)
	}
	if m.VS[0][0] != 900 || m.Rho[1][0] != 1100 {
		t.Fatalf("channels misassigned: vs=%v rho=%v", m.VS, m.Rho)
	}
}
