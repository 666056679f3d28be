package decomp

import (
	"errors"
	"testing"
)

func TestValidateMarmousiDemo(t *testing.T) {
	// 500 % 5 == 0 and 174 % 3 == 0: the demo decomposition is legal.
	if err := Validate(500, 174, 5, 3); err != nil {
		t.Fatalf("expected valid decomposition, got %v", err)
	}
}

func TestValidateFailsOnXAxis(t *testing.T) {
	err := Validate(501, 174, 5, 3)
	if err == nil {
		t.Fatal("expected decomposition error")
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *decomp.Error, got %T", err)
	}
	if de.Axis != "X" {
		t.Fatalf("expected X axis failure, got %s", de.Axis)
	}
	if de.Size != 501 || de.Procs != 5 {
		t.Fatalf("unexpected error fields: %+v", de)
	}
}

func TestValidateFailsOnYAxis(t *testing.T) {
	err := Validate(500, 175, 5, 3)
	if err == nil {
		t.Fatal("expected decomposition error")
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *decomp.Error, got %T", err)
	}
	if de.Axis != "Y" {
		t.Fatalf("expected Y axis failure, got %s", de.Axis)
	}
}

func TestValidateAxesIndependent(t *testing.T) {
	// X reported first when both axes fail.
	err := Validate(501, 175, 5, 3)
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *decomp.Error, got %T", err)
	}
	if de.Axis != "X" {
		t.Fatalf("expected X axis reported first, got %s", de.Axis)
	}
}

func TestValidateRejectsZeroProcs(t *testing.T) {
	if err := Validate(500, 174, 0, 3); err == nil {
		t.Fatal("expected error for zero NPROCX")
	}
	if err := Validate(500, 174, 5, 0); err == nil {
		t.Fatal("expected error for zero NPROCY")
	}
}

func TestValidateSingleProcess(t *testing.T) {
	if err := Validate(499, 173, 1, 1); err != nil {
		t.Fatalf("single-process run must always decompose: %v", err)
	}
}
