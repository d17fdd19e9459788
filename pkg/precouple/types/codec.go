package types

import (
	"encoding/binary"
	"io"
	"math"
)

// wireOrder is the native byte order assumed for every participant in a
// coupled run. Heterogeneous-endianness interop is an explicit
// non-goal; this package picks one order and sticks to
// it rather than negotiating.
var wireOrder = binary.LittleEndian

// WriteInt writes a two's-complement 32-bit int, raw, no length prefix.
func WriteInt(w io.Writer, v int32) error {
	var buf [4]byte
	wireOrder.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadInt reads a two's-complement 32-bit int.
func ReadInt(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(wireOrder.Uint32(buf[:])), nil
}

// WriteBool writes a single byte, 1 for true, 0 for false.
func WriteBool(w io.Writer, v bool) error {
	var b [1]byte
	if v {
		b[0] = 1
	}
	_, err := w.Write(b[:])
	return err
}

// ReadBool reads a single byte written by WriteBool.
func ReadBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// WriteDouble writes a raw IEEE-754 double, no length prefix.
func WriteDouble(w io.Writer, v float64) error {
	var buf [8]byte
	wireOrder.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadDouble reads a raw IEEE-754 double.
func ReadDouble(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(wireOrder.Uint64(buf[:])), nil
}

// WriteString writes a length-prefixed UTF-8 string: an int32 byte
// count followed by the raw bytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString reads a length-prefixed string written by WriteString.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadInt(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteDoubleArray writes an explicit int32 length prefix followed by
// that many raw doubles.
func WriteDoubleArray(w io.Writer, vals []float64) error {
	if err := WriteInt(w, int32(len(vals))); err != nil {
		return err
	}
	for _, v := range vals {
		if err := WriteDouble(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadDoubleArray reads an array written by WriteDoubleArray.
func ReadDoubleArray(r io.Reader) ([]float64, error) {
	n, err := ReadInt(r)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		v, err := ReadDouble(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteIntArray writes an explicit int32 length prefix followed by that
// many raw ints.
func WriteIntArray(w io.Writer, vals []int32) error {
	if err := WriteInt(w, int32(len(vals))); err != nil {
		return err
	}
	for _, v := range vals {
		if err := WriteInt(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadIntArray reads an array written by WriteIntArray.
func ReadIntArray(r io.Reader) ([]int32, error) {
	n, err := ReadInt(r)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		v, err := ReadInt(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
