package npy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrite1DReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coords.npy")
	in := []float64{800, 820, 840.5, 8780}

	if err := Write1D(path, in); err != nil {
		t.Fatalf("Write1D: %v", err)
	}
	shape, out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(shape) != 1 || shape[0] != len(in) {
		t.Fatalf("expected shape (%d,), got %v", len(in), shape)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("element %d: got %g, want %g", i, out[i], in[i])
		}
	}
}

func TestWriteMultiDim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.npy")
	data := []float64{1, 2, 3, 4, 5, 6}

	if err := Write(path, []int{2, 3}, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	shape, out, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 3 {
		t.Fatalf("expected shape (2, 3), got %v", shape)
	}
	if out[5] != 6 {
		t.Fatalf("C-order readback broken: got %g at flat index 5", out[5])
	}
}

func TestWriteShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.npy")
	if err := Write(path, []int{4}, []float64{1, 2}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestHeaderAlignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aligned.npy")
	if err := Write1D(path, []float64{1}); err != nil {
		t.Fatalf("Write1D: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	dataStart := len(raw) - 8
	if dataStart%64 != 0 {
		t.Fatalf("data offset %d not 64-byte aligned", dataStart)
	}
	if raw[dataStart-1] != '\n' {
		t.Fatal("header must terminate with newline")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.npy")
	if err := os.WriteFile(path, []byte("not an array"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := Read(path); err == nil {
		t.Fatal("expected bad magic error")
	}
}
