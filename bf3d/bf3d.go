// Package bf3d encodes scenes into the chunked BF3D binary container.
package bf3d

import (
	"strings"

	"github.com/binzume/bf3dconv/geom"
	"github.com/pkg/errors"
)

// FormatTag is written once at the start of every stream, outside any chunk.
const FormatTag = "BF3D"

// RootPivotName is the name of the synthetic pivot 0 of every hierarchy.
const RootPivotName = "ROOTTRANSFORM"

type MeshType uint8

const (
	MeshNormal          MeshType = 0
	MeshTwoSided        MeshType = 1
	MeshCameraOriented  MeshType = 2
	MeshSkin            MeshType = 128
	MeshSkinTwoSided    MeshType = 129
	meshTypeSkinnedFlag MeshType = 128
)

func (t MeshType) IsSkin() bool {
	return t&meshTypeSkinnedFlag != 0
}

type Extrapolation int32

const (
	ExtrapolationLinear   Extrapolation = 0
	ExtrapolationConstant Extrapolation = 1
	ExtrapolationBezier   Extrapolation = 2
)

// ParseExtrapolation maps an authoring-tool curve mode name to its numeric
// value. Unknown names map to ExtrapolationLinear.
func ParseExtrapolation(mode string) Extrapolation {
	switch strings.ToUpper(mode) {
	case "CONSTANT", "STEP":
		return ExtrapolationConstant
	case "BEZIER", "BEIZIER", "CUBICSPLINE":
		return ExtrapolationBezier
	}
	return ExtrapolationLinear
}

type ChannelType int32

const (
	ChannelPositionX ChannelType = 0
	ChannelPositionY ChannelType = 1
	ChannelPositionZ ChannelType = 2

	// orientation components are stored w-first
	ChannelOrientationW ChannelType = 4
	ChannelOrientationX ChannelType = 5
	ChannelOrientationY ChannelType = 6
	ChannelOrientationZ ChannelType = 7

	orientationOffset = 4
)

// NewChannelType returns the channel type of component index i of a position
// (0..2) or orientation (0..3, w first) curve.
func NewChannelType(component int, orientation bool) ChannelType {
	if orientation {
		return ChannelType(component + orientationOffset)
	}
	return ChannelType(component)
}

func (t ChannelType) IsOrientation() bool {
	return t >= orientationOffset
}

type Box struct {
	Center  geom.Vector3
	Extents geom.Vector3
}

type Face [3]int32

type VertexInfluence struct {
	Bone        int32
	Weight      float32
	ExtraBone   int32
	ExtraWeight float32
}

type MeshHeader struct {
	Type        MeshType
	Name        string
	MaterialID  int32
	ParentPivot int32
}

type Mesh struct {
	Header     MeshHeader
	Vertices   []geom.Vector3
	Normals    []geom.Vector3
	Faces      []Face
	UVs        []geom.Vector2
	Influences []VertexInfluence
}

// Validate checks that the per-vertex sequences line up and faces reference
// existing vertices.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	if len(m.Normals) != n {
		return errors.Errorf("mesh %q: %d normals for %d vertices", m.Header.Name, len(m.Normals), n)
	}
	if len(m.UVs) != n {
		return errors.Errorf("mesh %q: %d uv coords for %d vertices", m.Header.Name, len(m.UVs), n)
	}
	return m.ValidateFaces()
}

// ValidateFaces checks that faces reference existing vertices.
func (m *Mesh) ValidateFaces() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || int(v) >= n {
				return errors.Errorf("mesh %q: face %d references vertex %d of %d", m.Header.Name, i, v, n)
			}
		}
	}
	return nil
}

type Model struct {
	HierarchyName string
	BoundingBox   *Box
	Meshes        []*Mesh
}

type HierarchyHeader struct {
	Name   string
	Center geom.Vector3
}

type Pivot struct {
	Name   string
	Parent int32
	IsBone bool
	Matrix geom.Matrix4
}

type Hierarchy struct {
	Header HierarchyHeader
	Pivots []*Pivot
}

// NewHierarchy returns a hierarchy holding only the root pivot.
func NewHierarchy(name string) *Hierarchy {
	return &Hierarchy{
		Header: HierarchyHeader{Name: name},
		Pivots: []*Pivot{{
			Name:   RootPivotName,
			Parent: -1,
			IsBone: true,
			Matrix: *geom.NewMatrix4(),
		}},
	}
}

// AddPivot appends p and returns its index. The parent must already exist.
func (h *Hierarchy) AddPivot(p *Pivot) (int, error) {
	if len(h.Pivots) == 0 {
		return 0, errors.Errorf("pivot %q: hierarchy has no root pivot", p.Name)
	}
	if p.Parent < 0 || int(p.Parent) >= len(h.Pivots) {
		return 0, errors.Errorf("pivot %q: parent %d must precede index %d", p.Name, p.Parent, len(h.Pivots))
	}
	h.Pivots = append(h.Pivots, p)
	return len(h.Pivots) - 1, nil
}

// PivotIndex returns the index of the first pivot with the given name, or -1.
func (h *Hierarchy) PivotIndex(name string) int {
	for i, p := range h.Pivots {
		if p.Name == name {
			return i
		}
	}
	return -1
}

type AnimationHeader struct {
	Name          string
	HierarchyName string
	FrameRate     int32
	NumFrames     int32
	FirstFrame    int32
	LastFrame     int32
}

type Key struct {
	Frame int32
	Value float32
}

type Channel struct {
	Pivot         int32
	Extrapolation Extrapolation
	Type          ChannelType
	Keys          []Key
}

type Animation struct {
	Header   AnimationHeader
	Channels []*Channel
}
