// Package geometry models the acquisition layout: source positions with
// their wavelet properties and receiver positions. Both sets keep one
// slice per attribute, indexed by a shared ordinal.
package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/npy"
)

// DefaultWaveletFreq is the center frequency assigned to new sources [Hz].
// Overwrite per source when the dispersion bound allows more.
const DefaultWaveletFreq = 8.0

// #region sources

// Sources holds per-shot positions and wavelet properties. The axes origin
// is the top-left corner of the model; Y grows with depth.
type Sources struct {
	X         []float64 // horizontal position [m]
	Z         []float64 // out-of-plane offset, zero for 2-D lines [m]
	Y         []float64 // depth [m]
	TimeDelay []float64 // wavelet time delay [s]
	Freq      []float64 // wavelet center frequency [Hz]
	Amplitude []float64 // wavelet amplitude
	Angle     []float64 // rotation angle of the source [deg]
	Type      []int     // wavelet-type code understood by the solver
}

// NewSources builds a source set from positions, filling the wavelet
// attributes with the conventional defaults (no delay, 8 Hz, unit
// amplitude, unrotated, type 1).
func NewSources(x, y []float64) *Sources {
	n := len(x)
	s := &Sources{
		X:         x,
		Z:         make([]float64, n),
		Y:         y,
		TimeDelay: make([]float64, n),
		Freq:      make([]float64, n),
		Amplitude: make([]float64, n),
		Angle:     make([]float64, n),
		Type:      make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.Freq[i] = DefaultWaveletFreq
		s.Amplitude[i] = 1.0
		s.Type[i] = 1
	}
	return s
}

// Count returns the number of shots.
func (s *Sources) Count() int { return len(s.X) }

// Validate checks that every attribute slice covers all shots.
func (s *Sources) Validate() error {
	n := len(s.X)
	for name, l := range map[string]int{
		"z": len(s.Z), "y": len(s.Y), "time delay": len(s.TimeDelay),
		"frequency": len(s.Freq), "amplitude": len(s.Amplitude),
		"angle": len(s.Angle), "type": len(s.Type),
	} {
		if l != n {
			return fmt.Errorf("source %s attribute has %d entries, want %d", name, l, n)
		}
	}
	return nil
}

// WriteFile emits the solver's source descriptor: shot count on the first
// line, then one fixed-order tab-separated row per shot.
func (s *Sources) WriteFile(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", s.Count())
	for i := range s.X {
		fmt.Fprintf(&b, "%4.2f\t%4.2f\t%4.2f\t%1.2f\t%4.2f\t%1.2f\t%1.2f\t%d\t\n",
			s.X[i], s.Z[i], s.Y[i], s.TimeDelay[i], s.Freq[i], s.Amplitude[i], s.Angle[i], s.Type[i])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write source file %s: %w", path, err)
	}
	return nil
}

// WriteCoordCache duplicates the source coordinates as NPY arrays beside
// the descriptor file for fast reuse by analysis tooling.
func (s *Sources) WriteCoordCache(descriptorPath string) error {
	dir := filepath.Dir(descriptorPath)
	if err := npy.Write1D(filepath.Join(dir, "src_x.npy"), s.X); err != nil {
		return err
	}
	return npy.Write1D(filepath.Join(dir, "src_y.npy"), s.Y)
}

// #endregion sources

// #region receivers

// Receivers holds receiver positions; the axes origin matches Sources.
type Receivers struct {
	X []float64 // horizontal position [m]
	Y []float64 // depth [m]
}

// NewReceivers builds a receiver set from positions.
func NewReceivers(x, y []float64) *Receivers {
	return &Receivers{X: x, Y: y}
}

// Count returns the number of receivers.
func (r *Receivers) Count() int { return len(r.X) }

// Validate checks the position slices cover all receivers.
func (r *Receivers) Validate() error {
	if len(r.Y) != len(r.X) {
		return fmt.Errorf("receiver y attribute has %d entries, want %d", len(r.Y), len(r.X))
	}
	return nil
}

// WriteFile emits the solver's receiver descriptor: one whitespace-
// separated (x, y) pair per line.
func (r *Receivers) WriteFile(path string) error {
	if err := r.Validate(); err != nil {
		return err
	}
	var b strings.Builder
	for i := range r.X {
		fmt.Fprintf(&b, "%4.3f %4.3f\n", r.X[i], r.Y[i])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write receiver file %s: %w", path, err)
	}
	return nil
}

// WriteCoordCache duplicates the receiver coordinates as NPY arrays beside
// the descriptor file.
func (r *Receivers) WriteCoordCache(descriptorPath string) error {
	dir := filepath.Dir(descriptorPath)
	if err := npy.Write1D(filepath.Join(dir, "rec_x.npy"), r.X); err != nil {
		return err
	}
	return npy.Write1D(filepath.Join(dir, "rec_y.npy"), r.Y)
}

// #endregion receivers

// #region line-builder

// Line spaces positions evenly from first to last (inclusive when the step
// divides the span) at constant depth; the usual way both sets are built.
func Line(first, last, step, depth float64) (x, y []float64) {
	if step <= 0 || last < first {
		return nil, nil
	}
	for p := first; p <= last; p += step {
		x = append(x, p)
		y = append(y, depth)
	}
	return x, y
}

// #endregion line-builder
