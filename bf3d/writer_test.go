package bf3d

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/binzume/bf3dconv/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloats(t *testing.T, b []byte) []float32 {
	t.Helper()
	require.Zero(t, len(b)%4)
	fs := make([]float32, len(b)/4)
	for i := range fs {
		fs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return fs
}

func TestWriterPrimitives(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	w.WriteInt32(-2)
	w.WriteFloat32(1)
	w.WriteUint8(0x81)
	require.NoError(t, w.Err())

	assert.Equal(t, []byte{
		0xfe, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x80, 0x3f,
		0x81,
	}, buf.Bytes())
	assert.EqualValues(t, 9, w.Len())
}

func TestWriteStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "ROOTTRANSFORM", "骨", "a b"} {
		var buf bytes.Buffer
		w := NewWriter(&buf, nil)
		w.WriteString(s)
		require.NoError(t, w.Err())

		b := buf.Bytes()
		require.Equal(t, len(s)+1, len(b), s)
		assert.Equal(t, byte(0), b[len(b)-1])
		end := bytes.IndexByte(b, 0)
		assert.Equal(t, s, string(b[:end]))

		var sz sizer
		sz.putString(s)
		assert.Equal(t, len(b), sz.n)
	}
}

func TestWriteVectorTransformed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultTransform())
	w.WriteVector(geom.NewVector3(1, 2, 3))
	require.NoError(t, w.Err())

	assert.InDeltaSlice(t, []float32{1, 3, -2}, readFloats(t, buf.Bytes()), 1e-6)
}

func TestWriteQuaternionRaw(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultTransform())
	w.WriteQuaternion([4]float32{0.5, 1, 2, 3})
	require.NoError(t, w.Err())

	assert.Equal(t, []float32{0.5, 1, 2, 3}, readFloats(t, buf.Bytes()))
}

func TestWriteMatrix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultTransform())
	w.WriteMatrix(geom.NewMatrix4())
	require.NoError(t, w.Err())
	require.Equal(t, 64, buf.Len())
	assert.InDeltaSlice(t, []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, readFloats(t, buf.Bytes()), 1e-6)

	// translation (1, 2, 3) in Z-up space ends up as (1, 3, -2) in the last column
	buf.Reset()
	w = NewWriter(&buf, DefaultTransform())
	w.WriteMatrix(geom.NewTranslateMatrix4(1, 2, 3))
	require.NoError(t, w.Err())
	assert.InDeltaSlice(t, []float32{
		1, 0, 0, 1,
		0, 1, 0, 3,
		0, 0, 1, -2,
		0, 0, 0, 1,
	}, readFloats(t, buf.Bytes()), 1e-6)
}

type limitWriter struct {
	limit int
	buf   bytes.Buffer
}

var errDiskFull = errors.New("disk full")

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.buf.Len()+len(p) > l.limit {
		n := l.limit - l.buf.Len()
		l.buf.Write(p[:n])
		return n, errDiskFull
	}
	return l.buf.Write(p)
}

func TestWriterStickyError(t *testing.T) {
	lw := &limitWriter{limit: 6}
	w := NewWriter(lw, nil)
	w.WriteInt32(1)
	w.WriteInt32(2)
	w.WriteInt32(3)
	w.WriteString("abc")

	assert.ErrorIs(t, w.Err(), errDiskFull)
	assert.EqualValues(t, 6, w.Len())
	assert.Equal(t, 6, lw.buf.Len())

	err := w.WriteChunk(&Box{})
	assert.ErrorIs(t, err, errDiskFull)
	assert.EqualValues(t, 6, w.Len())
}

// mismatchChunk declares one int32 but writes two.
type mismatchChunk struct{}

func (mismatchChunk) ChunkType() ChunkType { return ChunkType(999) }

func (mismatchChunk) encodeFields(e fieldEncoder) {
	e.putInt32(1)
	if _, ok := e.(*sizer); !ok {
		e.putInt32(2)
	}
}

func TestWriteChunkSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	err := w.WriteChunk(mismatchChunk{})

	var mismatch *SizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, ChunkType(999), mismatch.Type)
	assert.Equal(t, 4, mismatch.Declared)
	assert.EqualValues(t, 8, mismatch.Written)
	assert.Contains(t, err.Error(), "ChunkType(999)")

	// later chunks are not written
	n := w.Len()
	assert.Error(t, w.WriteChunk(&Box{}))
	assert.Equal(t, n, w.Len())
}
