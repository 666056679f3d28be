package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/decomp"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/stability"
)

// gridcheck is the pre-flight calculator: given a grid, a process layout
// and velocity bounds, it prints the stable timestep, the dispersion limit
// and the decomposition verdict without touching any run directory.

// #region main
func main() {
	nx := flag.Int("nx", 0, "grid points along x")
	ny := flag.Int("ny", 0, "grid points along y")
	dh := flag.Float64("dh", 0, "grid spacing [m]")
	procsX := flag.Int("nprocx", 1, "processes along x")
	procsY := flag.Int("nprocy", 1, "processes along y")
	vpMax := flag.Float64("vpmax", 0, "maximum compressional velocity [m/s]")
	vsMax := flag.Float64("vsmax", 0, "maximum shear velocity [m/s]")
	vpMin := flag.Float64("vpmin", 0, "minimum nonzero compressional velocity [m/s]")
	vsMin := flag.Float64("vsmin", 0, "minimum nonzero shear velocity [m/s]")
	fdOrder := flag.Int("fd-order", 6, "spatial operator order (2..12, even)")
	errClass := flag.Int("error-class", 0, "operator error class: 0 Taylor, 1-4 Holberg 0.1/0.5/1.0/3.0%")
	flag.Parse()

	if *nx <= 0 || *ny <= 0 || *dh <= 0 || *vpMax <= 0 {
		fmt.Fprintln(os.Stderr, "usage: gridcheck --nx N --ny N --dh M --vpmax V [--vsmax V] [--vpmin V] [--vsmin V] [--nprocx N] [--nprocy N] [--fd-order N] [--error-class N]")
		os.Exit(2)
	}

	class := stability.ErrorClass(*errClass)
	halfLength := stability.HalfLengthFromOrder(*fdOrder)
	failed := false

	dt, err := stability.MaxStableDT(class, halfLength, *dh, *vpMax, *vsMax)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stability: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("operator:      %s, half-length %d\n", class, halfLength)
	fmt.Printf("stable dt:     %g s\n", dt)

	if *vpMin > 0 || *vsMin > 0 {
		minVP, minVS := *vpMin, *vsMin
		if minVP == 0 {
			minVP = minVS
		}
		if minVS == 0 {
			minVS = minVP
		}
		fmax, err := stability.MaxSourceFrequency(class, halfLength, *dh, minVP, minVS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dispersion: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("fmax:          %.3f Hz\n", fmax)
	}

	if err := decomp.Validate(*nx, *ny, *procsX, *procsY); err != nil {
		fmt.Printf("decomposition: FAIL (%v)\n", err)
		failed = true
	} else {
		fmt.Printf("decomposition: ok (%dx%d over %dx%d processes)\n", *nx, *ny, *procsX, *procsY)
	}

	if failed {
		os.Exit(1)
	}
}

// #endregion main
