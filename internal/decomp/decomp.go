// Package decomp validates that the computational grid can be evenly
// partitioned across the solver's 2-D process grid. The check runs before
// any file is written so a bad decomposition never reaches the expensive
// parallel launch.
package decomp

import "fmt"

// #region error

// Error reports a grid axis that cannot be evenly divided across its
// process-grid dimension.
type Error struct {
	Axis  string // "X" or "Y"
	Size  int    // grid points along the axis
	Procs int    // processes along the axis
}

func (e *Error) Error() string {
	if e.Procs < 1 {
		return fmt.Sprintf("domain decomposition: NPROC%s = %d must be at least 1", e.Axis, e.Procs)
	}
	return fmt.Sprintf("domain decomposition: N%s %% NPROC%s != 0 (%d %% %d = %d)",
		e.Axis, e.Axis, e.Size, e.Procs, e.Size%e.Procs)
}

// #endregion error

// #region validate

// Validate checks both grid axes against the process grid. It returns a
// *Error naming the first failing axis, or nil when the decomposition is
// legal.
func Validate(nx, ny, procsX, procsY int) error {
	if err := checkAxis("X", nx, procsX); err != nil {
		return err
	}
	return checkAxis("Y", ny, procsY)
}

func checkAxis(axis string, size, procs int) error {
	if procs < 1 {
		return &Error{Axis: axis, Size: size, Procs: procs}
	}
	if size%procs != 0 {
		return &Error{Axis: axis, Size: size, Procs: procs}
	}
	return nil
}

// #endregion validate
