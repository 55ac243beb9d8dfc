package mmd

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

type vmdBuilder struct {
	t   *testing.T
	buf bytes.Buffer
}

func (b *vmdBuilder) str(s string, size int) {
	enc, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	require.NoError(b.t, err)
	require.LessOrEqual(b.t, len(enc), size)
	field := make([]byte, size)
	copy(field, enc)
	b.buf.Write(field)
}

func (b *vmdBuilder) put(v interface{}) {
	require.NoError(b.t, binary.Write(&b.buf, binary.LittleEndian, v))
}

func (b *vmdBuilder) bone(name string, frame uint32, pos Vector3, rot Vector4) {
	b.str(name, 15)
	b.put(frame)
	b.put(pos)
	b.put(rot)
	b.put([64]byte{})
}

func newVMD(t *testing.T) *vmdBuilder {
	b := &vmdBuilder{t: t}
	b.str(vmdSignatureV2, 30)
	b.str("初音ミク", 20)
	return b
}

func TestParseVMD(t *testing.T) {
	b := newVMD(t)
	b.put(uint32(3))
	b.bone("センター", 10, Vector3{X: 1, Y: 2, Z: 3}, Vector4{W: 1})
	b.bone("センター", 0, Vector3{}, Vector4{W: 1})
	b.bone("頭", 5, Vector3{}, Vector4{X: 0.6, W: 0.8})
	b.put(uint32(1))
	b.str("まばたき", 15)
	b.put(uint32(7))
	b.put(float32(0.5))

	anim, err := NewVMDParser(&b.buf).Parse()
	require.NoError(t, err)
	assert.Equal(t, "初音ミク", anim.Name)
	require.Len(t, anim.Bone, 3)
	assert.Equal(t, "センター", anim.Bone[0].Target)
	require.Len(t, anim.Morph, 1)
	assert.Equal(t, &AnimationMorphSample{Target: "まばたき", Frame: 7, Value: 0.5}, anim.Morph[0])

	channels := anim.GetBoneChannels()
	require.Len(t, channels, 2)
	center := channels["センター"]
	assert.Equal(t, []uint32{0, 10}, center.Frames)
	assert.Equal(t, Vector3{X: 1, Y: 2, Z: 3}, *center.Positions[1])
	assert.True(t, center.Rotations[0].IsIdentityRotation())
	assert.False(t, channels["頭"].Rotations[0].IsIdentityRotation())

	morphs := anim.GetMorphChannels()
	assert.Equal(t, []float32{0.5}, morphs["まばたき"].Weights)
}

func TestParseVMDWithoutMorphs(t *testing.T) {
	b := newVMD(t)
	b.put(uint32(1))
	b.bone("頭", 0, Vector3{}, Vector4{W: 1})

	anim, err := NewVMDParser(&b.buf).Parse()
	require.NoError(t, err)
	assert.Len(t, anim.Bone, 1)
	assert.Empty(t, anim.Morph)
}

func TestParseVMDErrors(t *testing.T) {
	_, err := NewVMDParser(bytes.NewReader([]byte("Vocaloid"))).Parse()
	assert.Error(t, err)

	b := &vmdBuilder{t: t}
	b.str("Not a motion", 30)
	b.str("", 20)
	_, err = NewVMDParser(&b.buf).Parse()
	assert.Error(t, err)

	b = newVMD(t)
	b.put(uint32(2))
	b.bone("頭", 0, Vector3{}, Vector4{W: 1})
	_, err = NewVMDParser(&b.buf).Parse()
	assert.Error(t, err)
}
