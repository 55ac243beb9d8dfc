package bf3d

import (
	"github.com/binzume/bf3dconv/geom"
)

func triangleMesh(name string) *Mesh {
	return &Mesh{
		Header: MeshHeader{Type: MeshNormal, Name: name, ParentPivot: 0},
		Vertices: []geom.Vector3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Normals: []geom.Vector3{
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
		},
		Faces: []Face{{0, 1, 2}},
		UVs: []geom.Vector2{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 0, Y: 1},
		},
	}
}

func skinnedMesh(name string) *Mesh {
	m := triangleMesh(name)
	m.Header.Type = MeshSkin
	m.Influences = []VertexInfluence{
		{Bone: 1, Weight: 1},
		{Bone: 1, Weight: 0.5, ExtraBone: 2, ExtraWeight: 0.5},
		{Bone: 2, Weight: 1},
	}
	return m
}

func sampleHierarchy() *Hierarchy {
	h := NewHierarchy("Armature")
	h.AddPivot(&Pivot{Name: "Hips", Parent: 0, IsBone: true, Matrix: *geom.NewTranslateMatrix4(0, 0, 1)})
	h.AddPivot(&Pivot{Name: "Spine", Parent: 1, IsBone: true, Matrix: *geom.NewTranslateMatrix4(0, 0, 0.5)})
	h.AddPivot(&Pivot{Name: "Prop", Parent: 0, Matrix: *geom.NewMatrix4()})
	return h
}

func sampleAnimation() *Animation {
	return &Animation{
		Header: AnimationHeader{
			Name:          "Walk",
			HierarchyName: "Armature",
			FrameRate:     30,
			NumFrames:     20,
			FirstFrame:    0,
			LastFrame:     20,
		},
		Channels: []*Channel{
			{Pivot: 1, Type: ChannelPositionZ, Keys: []Key{{0, 1}, {10, 1.2}, {20, 1}}},
			{Pivot: 2, Extrapolation: ExtrapolationConstant, Type: ChannelOrientationW, Keys: []Key{{0, 1}}},
			{Pivot: 2, Type: ChannelOrientationX},
		},
	}
}
