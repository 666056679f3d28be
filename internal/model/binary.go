package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// #region binary-write

// WriteBinaries emits the three property grids as raw binaries next to the
// given base path: base.vp, base.vs, base.rho.
func (m *Model) WriteBinaries(base string) error {
	if err := writeGrid(m.VP, base+".vp"); err != nil {
		return err
	}
	if err := writeGrid(m.VS, base+".vs"); err != nil {
		return err
	}
	return writeGrid(m.Rho, base+".rho")
}

// writeGrid serializes one grid as little-endian float32, rotated 270°
// from logical (row, col) order. The rotation matches the solver's memory
// order: it reads columns bottom-up, left to right.
func writeGrid(g [][]float64, path string) error {
	ny := len(g)
	nx := len(g[0])

	buf := make([]byte, 0, nx*ny*4)
	for c := 0; c < nx; c++ {
		for r := ny - 1; r >= 0; r-- {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(g[r][c])))
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write model binary %s: %w", path, err)
	}
	return nil
}

// #endregion binary-write

// #region binary-read

// ReadGrid decodes a solver-order binary back into logical (row, col)
// order; the inverse of writeGrid, used to pull inverted models back in.
func ReadGrid(path string, ny, nx int) ([][]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model binary %s: %w", path, err)
	}
	if len(raw) < nx*ny*4 {
		return nil, fmt.Errorf("read model binary %s: got %d bytes, want %d", path, len(raw), nx*ny*4)
	}

	g := make([][]float64, ny)
	for r := range g {
		g[r] = make([]float64, nx)
	}
	i := 0
	for c := 0; c < nx; c++ {
		for r := ny - 1; r >= 0; r-- {
			g[r][c] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
			i++
		}
	}
	return g, nil
}

// #endregion binary-read
