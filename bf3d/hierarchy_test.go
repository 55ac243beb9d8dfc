package bf3d

import (
	"testing"

	"github.com/binzume/bf3dconv/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHierarchy(t *testing.T) {
	h := NewHierarchy("Armature")
	require.Len(t, h.Pivots, 1)
	root := h.Pivots[0]
	assert.Equal(t, RootPivotName, root.Name)
	assert.EqualValues(t, -1, root.Parent)
	assert.True(t, root.IsBone)
	assert.Equal(t, *geom.NewMatrix4(), root.Matrix)
}

func TestAddPivotParentsPrecede(t *testing.T) {
	h := sampleHierarchy()
	for i, p := range h.Pivots {
		if i == 0 {
			assert.EqualValues(t, -1, p.Parent)
			continue
		}
		assert.GreaterOrEqual(t, p.Parent, int32(0))
		assert.Less(t, int(p.Parent), i)
	}

	idx, err := h.AddPivot(&Pivot{Name: "Head", Parent: 2, IsBone: true})
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	_, err = h.AddPivot(&Pivot{Name: "Late", Parent: 5})
	assert.Error(t, err)
	_, err = h.AddPivot(&Pivot{Name: "Orphan", Parent: -1})
	assert.Error(t, err)
	assert.Len(t, h.Pivots, 5)

	_, err = (&Hierarchy{}).AddPivot(&Pivot{Name: "Hips"})
	assert.Error(t, err)
}

func TestPivotIndex(t *testing.T) {
	h := sampleHierarchy()
	assert.Equal(t, 0, h.PivotIndex(RootPivotName))
	assert.Equal(t, 2, h.PivotIndex("Spine"))
	assert.Equal(t, -1, h.PivotIndex("Tail"))
}

func TestHierarchyHeaderDerivesPivotCount(t *testing.T) {
	h := sampleHierarchy()
	_, payload, _ := splitChunk(t, encodeChunk(t, h))
	typ, header, rest := splitChunk(t, payload)
	require.Equal(t, ChunkHierarchyHeader, typ)
	assert.Equal(t, "Armature\x00", string(header[:9]))
	assert.Equal(t, []byte{4, 0, 0, 0}, header[9:13])

	typ, pivots, rest := splitChunk(t, rest)
	assert.Equal(t, ChunkPivots, typ)
	assert.Empty(t, rest)
	// first record is the root pivot with parent -1 and the bone flag set
	n := len(RootPivotName) + 1
	assert.Equal(t, RootPivotName+"\x00", string(pivots[:n]))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 1}, pivots[n:n+5])
}

func TestMeshValidate(t *testing.T) {
	m := triangleMesh("tri")
	assert.NoError(t, m.Validate())

	m.Faces = append(m.Faces, Face{0, 2, 3})
	assert.Error(t, m.Validate())

	m = triangleMesh("tri")
	m.UVs = m.UVs[:2]
	assert.Error(t, m.Validate())

	m = triangleMesh("tri")
	m.Normals = nil
	assert.Error(t, m.Validate())
	assert.NoError(t, m.ValidateFaces())

	m.Faces = []Face{{0, 1, 5}}
	assert.Error(t, m.ValidateFaces())
	m.Faces = []Face{{-1, 1, 2}}
	assert.Error(t, m.ValidateFaces())
}

func TestChannelTypes(t *testing.T) {
	assert.Equal(t, ChannelPositionY, NewChannelType(1, false))
	assert.Equal(t, ChannelOrientationW, NewChannelType(0, true))
	assert.Equal(t, ChannelOrientationZ, NewChannelType(3, true))
	assert.True(t, ChannelOrientationX.IsOrientation())
	assert.False(t, ChannelPositionZ.IsOrientation())
	assert.True(t, MeshSkinTwoSided.IsSkin())
	assert.False(t, MeshTwoSided.IsSkin())
}

func TestParseExtrapolation(t *testing.T) {
	for mode, expected := range map[string]Extrapolation{
		"CONSTANT":    ExtrapolationConstant,
		"STEP":        ExtrapolationConstant,
		"BEZIER":      ExtrapolationBezier,
		"BEIZIER":     ExtrapolationBezier,
		"CUBICSPLINE": ExtrapolationBezier,
		"LINEAR":      ExtrapolationLinear,
		"":            ExtrapolationLinear,
		"SMOOTH":      ExtrapolationLinear,
	} {
		assert.Equal(t, expected, ParseExtrapolation(mode), mode)
	}
}
