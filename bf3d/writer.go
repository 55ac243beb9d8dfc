package bf3d

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/binzume/bf3dconv/geom"
)

// Writer emits little-endian BF3D primitives and framed chunks.
// The first write error is kept and all later writes are skipped; it is
// returned by WriteChunk and Err.
type Writer struct {
	w         io.Writer
	transform *Transform
	n         int64
	err       error
	buf       [4]byte
}

func NewWriter(w io.Writer, transform *Transform) *Writer {
	if transform == nil {
		transform = DefaultTransform()
	}
	return &Writer{w: w, transform: transform}
}

func (w *Writer) Err() error {
	return w.err
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 {
	return w.n
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	w.err = err
}

func (w *Writer) WriteInt32(v int32) {
	binary.LittleEndian.PutUint32(w.buf[:], uint32(v))
	w.write(w.buf[:4])
}

func (w *Writer) WriteFloat32(v float32) {
	binary.LittleEndian.PutUint32(w.buf[:], math.Float32bits(v))
	w.write(w.buf[:4])
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// WriteString writes the UTF-8 bytes of s and a terminating zero.
func (w *Writer) WriteString(s string) {
	w.write([]byte(s))
	w.WriteUint8(0)
}

// WriteVector writes the transformed point as three floats.
func (w *Writer) WriteVector(v *geom.Vector3) {
	t := w.transform.Point(v)
	w.WriteFloat32(t.X)
	w.WriteFloat32(t.Y)
	w.WriteFloat32(t.Z)
}

// WriteQuaternion writes four floats in stored order, untransformed.
func (w *Writer) WriteQuaternion(q [4]float32) {
	for _, f := range q {
		w.WriteFloat32(f)
	}
}

// WriteMatrix writes T·m·T⁻¹ row by row.
func (w *Writer) WriteMatrix(m *geom.Matrix4) {
	t := w.transform.Matrix(m)
	for i := 0; i < 4; i++ {
		w.WriteQuaternion(t.Row(i))
	}
}

// WriteChunk writes the chunk header followed by its payload.
func (w *Writer) WriteChunk(c Chunk) error {
	size := ChunkSize(c)
	w.WriteInt32(int32(c.ChunkType()))
	w.WriteInt32(int32(size))
	start := w.n
	c.encodeFields(w)
	if w.err == nil && w.n-start != int64(size) {
		w.err = &SizeMismatchError{Type: c.ChunkType(), Declared: size, Written: w.n - start}
	}
	return w.err
}

func (w *Writer) putInt32(v int32) { w.WriteInt32(v) }
func (w *Writer) putFloat32(v float32) { w.WriteFloat32(v) }
func (w *Writer) putUint8(v uint8) { w.WriteUint8(v) }
func (w *Writer) putString(s string) { w.WriteString(s) }
func (w *Writer) putVector(v *geom.Vector3) { w.WriteVector(v) }
func (w *Writer) putQuaternion(q [4]float32) { w.WriteQuaternion(q) }
func (w *Writer) putMatrix(m *geom.Matrix4) { w.WriteMatrix(m) }
func (w *Writer) putChunk(c Chunk) { w.WriteChunk(c) }
