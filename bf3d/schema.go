package bf3d

import (
	"github.com/binzume/bf3dconv/geom"
)

// Entity is a chunk that can be the single top-level entity of a file.
type Entity interface {
	Chunk
	topLevel()
}

func (*Model) topLevel() {}
func (*Hierarchy) topLevel() {}
func (*Animation) topLevel() {}

type rootChunk struct {
	name string
}

func (c rootChunk) ChunkType() ChunkType { return ChunkRoot }

func (c rootChunk) encodeFields(e fieldEncoder) {
	e.putString(c.name)
}

// Model

func (m *Model) ChunkType() ChunkType { return ChunkModel }

func (m *Model) encodeFields(e fieldEncoder) {
	e.putString(m.HierarchyName)
	// Box and meshes are framed children; their headers count toward the model size.
	if m.BoundingBox != nil {
		e.putChunk(m.BoundingBox)
	}
	for _, mesh := range m.Meshes {
		e.putChunk(mesh)
	}
}

func (b *Box) ChunkType() ChunkType { return ChunkBox }

func (b *Box) encodeFields(e fieldEncoder) {
	e.putVector(&b.Center)
	e.putVector(&b.Extents)
}

// Mesh

func (m *Mesh) ChunkType() ChunkType { return ChunkMesh }

func (m *Mesh) encodeFields(e fieldEncoder) {
	e.putChunk(meshHeaderChunk{m})
	e.putChunk(vertexChunk(m.Vertices))
	e.putChunk(normalChunk(m.Normals))
	e.putChunk(faceChunk(m.Faces))
	e.putChunk(uvChunk(m.UVs))
	if len(m.Influences) > 0 {
		e.putChunk(influenceChunk(m.Influences))
	}
}

type meshHeaderChunk struct {
	mesh *Mesh
}

func (c meshHeaderChunk) ChunkType() ChunkType { return ChunkMeshHeader }

func (c meshHeaderChunk) encodeFields(e fieldEncoder) {
	h := &c.mesh.Header
	e.putUint8(uint8(h.Type))
	e.putString(h.Name)
	e.putInt32(h.MaterialID)
	e.putInt32(h.ParentPivot)
	e.putInt32(int32(len(c.mesh.Faces)))
	e.putInt32(int32(len(c.mesh.Vertices)))
}

type vertexChunk []geom.Vector3

func (c vertexChunk) ChunkType() ChunkType { return ChunkVertices }

func (c vertexChunk) encodeFields(e fieldEncoder) {
	for i := range c {
		e.putVector(&c[i])
	}
}

type normalChunk []geom.Vector3

func (c normalChunk) ChunkType() ChunkType { return ChunkNormals }

func (c normalChunk) encodeFields(e fieldEncoder) {
	for i := range c {
		e.putVector(&c[i])
	}
}

type faceChunk []Face

func (c faceChunk) ChunkType() ChunkType { return ChunkFaces }

func (c faceChunk) encodeFields(e fieldEncoder) {
	for _, f := range c {
		e.putInt32(f[0])
		e.putInt32(f[1])
		e.putInt32(f[2])
	}
}

type uvChunk []geom.Vector2

func (c uvChunk) ChunkType() ChunkType { return ChunkUVs }

func (c uvChunk) encodeFields(e fieldEncoder) {
	for _, uv := range c {
		e.putFloat32(uv.X)
		e.putFloat32(uv.Y)
	}
}

type influenceChunk []VertexInfluence

func (c influenceChunk) ChunkType() ChunkType { return ChunkVertexInfluences }

// Only the primary influence goes on the wire.
func (c influenceChunk) encodeFields(e fieldEncoder) {
	for _, inf := range c {
		e.putInt32(inf.Bone)
		e.putInt32(weightPercent(inf.Weight))
	}
}

// weightPercent truncates toward zero.
func weightPercent(w float32) int32 {
	return int32(w * 100)
}

// Hierarchy

func (h *Hierarchy) ChunkType() ChunkType { return ChunkHierarchy }

func (h *Hierarchy) encodeFields(e fieldEncoder) {
	e.putChunk(hierarchyHeaderChunk{h})
	e.putChunk(pivotsChunk(h.Pivots))
}

type hierarchyHeaderChunk struct {
	hierarchy *Hierarchy
}

func (c hierarchyHeaderChunk) ChunkType() ChunkType { return ChunkHierarchyHeader }

func (c hierarchyHeaderChunk) encodeFields(e fieldEncoder) {
	h := &c.hierarchy.Header
	e.putString(h.Name)
	e.putInt32(int32(len(c.hierarchy.Pivots)))
	e.putVector(&h.Center)
}

type pivotsChunk []*Pivot

func (c pivotsChunk) ChunkType() ChunkType { return ChunkPivots }

func (c pivotsChunk) encodeFields(e fieldEncoder) {
	for _, p := range c {
		e.putString(p.Name)
		e.putInt32(p.Parent)
		if p.IsBone {
			e.putUint8(1)
		} else {
			e.putUint8(0)
		}
		e.putMatrix(&p.Matrix)
	}
}

// Animation

func (a *Animation) ChunkType() ChunkType { return ChunkAnimation }

func (a *Animation) encodeFields(e fieldEncoder) {
	e.putChunk(animationHeaderChunk{&a.Header})
	for _, ch := range a.Channels {
		e.putChunk(ch)
	}
}

type animationHeaderChunk struct {
	header *AnimationHeader
}

func (c animationHeaderChunk) ChunkType() ChunkType { return ChunkAnimationHeader }

func (c animationHeaderChunk) encodeFields(e fieldEncoder) {
	h := c.header
	e.putString(h.Name)
	e.putString(h.HierarchyName)
	e.putInt32(h.FrameRate)
	e.putInt32(h.NumFrames)
	e.putInt32(h.FirstFrame)
	e.putInt32(h.LastFrame)
}

func (c *Channel) ChunkType() ChunkType { return ChunkChannel }

func (c *Channel) encodeFields(e fieldEncoder) {
	e.putInt32(c.Pivot)
	e.putInt32(int32(c.Extrapolation))
	e.putInt32(int32(c.Type))
	for _, k := range c.Keys {
		e.putInt32(k.Frame)
		e.putFloat32(k.Value)
	}
}
