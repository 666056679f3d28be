// Package npy reads and writes NPY v1.0 array files. The launcher uses the
// format for two things: coordinate caches written next to the solver's own
// descriptor files, and combined velocity-model import. Only C-order
// little-endian float32/float64 arrays are supported.
package npy

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// #region header

var magic = []byte("\x93NUMPY\x01\x00")

func buildHeader(descr string, shape []int) []byte {
	dims := make([]string, len(shape))
	for i, n := range shape {
		dims[i] = strconv.Itoa(n)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)

	// Pad with spaces so magic+len+header is 64-byte aligned, ending in \n.
	total := len(magic) + 2 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := make([]byte, 0, len(magic)+2+len(header))
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	return buf
}

// #endregion header

// #region write

// Write stores data as a C-order little-endian float64 array of the given
// shape.
func Write(path string, shape []int, data []float64) error {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("npy write %s: shape %v holds %d elements, data has %d", path, shape, n, len(data))
	}

	buf := buildHeader("<f8", shape)
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return os.WriteFile(path, buf, 0o644)
}

// Write1D stores a vector; the common case for coordinate caches.
func Write1D(path string, data []float64) error {
	return Write(path, []int{len(data)}, data)
}

// #endregion write

// #region read

// Read loads an NPY file, returning its shape and the flattened C-order
// data as float64 regardless of the stored precision.
func Read(path string) ([]int, []float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read npy %s: %w", path, err)
	}
	if len(raw) < len(magic)+2 || string(raw[:6]) != "\x93NUMPY" {
		return nil, nil, fmt.Errorf("read npy %s: bad magic", path)
	}
	if raw[6] != 1 {
		return nil, nil, fmt.Errorf("read npy %s: unsupported version %d.%d", path, raw[6], raw[7])
	}

	headerLen := int(binary.LittleEndian.Uint16(raw[8:10]))
	if len(raw) < 10+headerLen {
		return nil, nil, fmt.Errorf("read npy %s: truncated header", path)
	}
	header := string(raw[10 : 10+headerLen])
	body := raw[10+headerLen:]

	descr, err := headerField(header, "descr")
	if err != nil {
		return nil, nil, fmt.Errorf("read npy %s: %w", path, err)
	}
	if order, err := headerField(header, "fortran_order"); err != nil || order != "False" {
		return nil, nil, fmt.Errorf("read npy %s: only C-order arrays supported", path)
	}
	shape, err := headerShape(header)
	if err != nil {
		return nil, nil, fmt.Errorf("read npy %s: %w", path, err)
	}

	n := 1
	for _, d := range shape {
		n *= d
	}

	data := make([]float64, n)
	switch descr {
	case "<f8":
		if len(body) < n*8 {
			return nil, nil, fmt.Errorf("read npy %s: truncated data", path)
		}
		for i := range data {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[i*8:]))
		}
	case "<f4":
		if len(body) < n*4 {
			return nil, nil, fmt.Errorf("read npy %s: truncated data", path)
		}
		for i := range data {
			data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:])))
		}
	default:
		return nil, nil, fmt.Errorf("read npy %s: unsupported dtype %q", path, descr)
	}
	return shape, data, nil
}

func headerField(header, key string) (string, error) {
	marker := "'" + key + "':"
	i := strings.Index(header, marker)
	if i < 0 {
		return "", fmt.Errorf("header field %q missing", key)
	}
	rest := strings.TrimLeft(header[i+len(marker):], " ")
	if strings.HasPrefix(rest, "'") {
		end := strings.Index(rest[1:], "'")
		if end < 0 {
			return "", fmt.Errorf("header field %q malformed", key)
		}
		return rest[1 : 1+end], nil
	}
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		return "", fmt.Errorf("header field %q malformed", key)
	}
	return strings.TrimSpace(rest[:end]), nil
}

func headerShape(header string) ([]int, error) {
	i := strings.Index(header, "'shape':")
	if i < 0 {
		return nil, fmt.Errorf("header field %q missing", "shape")
	}
	open := strings.Index(header[i:], "(")
	end := strings.Index(header[i:], ")")
	if open < 0 || end < 0 || end < open {
		return nil, fmt.Errorf("header field %q malformed", "shape")
	}
	inner := header[i+open+1 : i+end]
	var shape []int
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("header shape dimension %q: %w", part, err)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

// #endregion read
