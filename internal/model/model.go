// Package model holds the 2-D elastic velocity model handed to the solver:
// compressional velocity, shear velocity, and density on a uniform grid.
package model

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/npy"
)

// #region model-struct

// Model bundles the three physical-property grids. All grids are indexed
// [row][col] with the origin in the top-left corner; rows grow with depth.
// Immutable once handed to a launcher.
type Model struct {
	VP  [][]float64 // compressional velocity [m/s]
	VS  [][]float64 // shear velocity [m/s]
	Rho [][]float64 // density [kg/m3]
	DH  float64     // grid spacing, shared by both axes [m]
}

// #endregion model-struct

// #region constructors

// New builds a model from three same-shape grids and a positive spacing.
func New(vp, vs, rho [][]float64, dh float64) (*Model, error) {
	if dh <= 0 {
		return nil, fmt.Errorf("grid spacing %g must be positive", dh)
	}
	ny := len(vp)
	if ny == 0 || len(vp[0]) == 0 {
		return nil, fmt.Errorf("empty vp grid")
	}
	nx := len(vp[0])
	for name, g := range map[string][][]float64{"vp": vp, "vs": vs, "rho": rho} {
		if len(g) != ny {
			return nil, fmt.Errorf("%s grid has %d rows, want %d", name, len(g), ny)
		}
		for r, row := range g {
			if len(row) != nx {
				return nil, fmt.Errorf("%s grid row %d has %d cols, want %d", name, r, len(row), nx)
			}
		}
	}
	return &Model{VP: vp, VS: vs, Rho: rho, DH: dh}, nil
}

// Constant fills a ny-by-nx model with uniform properties; the shape of
// the homogeneous demo model.
func Constant(ny, nx int, vp, vs, rho, dh float64) *Model {
	fill := func(v float64) [][]float64 {
		g := make([][]float64, ny)
		for i := range g {
			row := make([]float64, nx)
			for j := range row {
				row[j] = v
			}
			g[i] = row
		}
		return g
	}
	return &Model{VP: fill(vp), VS: fill(vs), Rho: fill(rho), DH: dh}
}

// FromCombined decodes a flattened (ny, nx, 3) array with channels
// vp, vs, rho. Rows are flipped vertically to match the solver's memory
// arrangement, as the combined on-disk layout stores depth bottom-up.
func FromCombined(data []float64, ny, nx int, dh float64) (*Model, error) {
	if len(data) != ny*nx*3 {
		return nil, fmt.Errorf("combined model has %d values, want %d*%d*3 = %d", len(data), ny, nx, ny*nx*3)
	}
	vp := make([][]float64, ny)
	vs := make([][]float64, ny)
	rho := make([][]float64, ny)
	for r := 0; r < ny; r++ {
		src := ny - 1 - r
		vp[r] = make([]float64, nx)
		vs[r] = make([]float64, nx)
		rho[r] = make([]float64, nx)
		for c := 0; c < nx; c++ {
			base := (src*nx + c) * 3
			vp[r][c] = data[base]
			vs[r][c] = data[base+1]
			rho[r][c] = data[base+2]
		}
	}
	return New(vp, vs, rho, dh)
}

// FromNPY loads a combined (ny, nx, 3) model from an NPY file.
func FromNPY(path string, dh float64) (*Model, error) {
	shape, data, err := npy.Read(path)
	if err != nil {
		return nil, err
	}
	if len(shape) != 3 || shape[2] != 3 {
		return nil, fmt.Errorf("combined model %s has shape %v, want (ny, nx, 3)", path, shape)
	}
	return FromCombined(data, shape[0], shape[1], dh)
}

// #endregion constructors

// #region dimensions

// NX returns the grid width in points.
func (m *Model) NX() int { return len(m.VP[0]) }

// NY returns the grid depth in points.
func (m *Model) NY() int { return len(m.VP) }

// XMax returns the physical model width.
func (m *Model) XMax() float64 { return float64(m.NX()-1) * m.DH }

// ZMax returns the physical model depth.
func (m *Model) ZMax() float64 { return float64(m.NY()-1) * m.DH }

// #endregion dimensions

// #region extrema

// MaxVelocities returns the largest vp and vs values, ignoring zeroed
// cells (water layers, padding).
func (m *Model) MaxVelocities() (maxVP, maxVS float64) {
	maxVP = maxNonzero(m.VP)
	maxVS = maxNonzero(m.VS)
	return
}

// MinVelocities returns the smallest nonzero vp and vs values.
func (m *Model) MinVelocities() (minVP, minVS float64) {
	minVP = minNonzero(m.VP)
	minVS = minNonzero(m.VS)
	return
}

func maxNonzero(g [][]float64) float64 {
	best := 0.0
	for _, row := range g {
		for _, v := range row {
			if v != 0 && v > best {
				best = v
			}
		}
	}
	return best
}

func minNonzero(g [][]float64) float64 {
	best := math.Inf(1)
	for _, row := range g {
		for _, v := range row {
			if v != 0 && v < best {
				best = v
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// #endregion extrema

// #region ratios

// MeanPoissonRatio averages 0.5*(vp^2 - 2*vs^2)/(vp^2 - vs^2) over the
// grid; logged before a run as a sanity check on the elastic parameters.
func (m *Model) MeanPoissonRatio() float64 {
	var sum float64
	var n int
	for r := range m.VP {
		for c := range m.VP[r] {
			vp2 := m.VP[r][c] * m.VP[r][c]
			vs2 := m.VS[r][c] * m.VS[r][c]
			if vp2 == vs2 {
				continue
			}
			sum += 0.5 * (vp2 - 2*vs2) / (vp2 - vs2)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MeanVS averages the shear velocity over the grid.
func (m *Model) MeanVS() float64 {
	var sum float64
	var n int
	for _, row := range m.VS {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// #endregion ratios
