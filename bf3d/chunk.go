package bf3d

import (
	"fmt"

	"github.com/binzume/bf3dconv/geom"
)

type ChunkType int32

const (
	ChunkRoot             ChunkType = 0
	ChunkModel            ChunkType = 128
	ChunkMesh             ChunkType = 129
	ChunkMeshHeader       ChunkType = 130
	ChunkVertices         ChunkType = 131
	ChunkNormals          ChunkType = 132
	ChunkFaces            ChunkType = 133
	ChunkUVs              ChunkType = 134
	ChunkVertexInfluences ChunkType = 135
	ChunkBox              ChunkType = 192
	ChunkHierarchy        ChunkType = 256
	ChunkHierarchyHeader  ChunkType = 257
	ChunkPivots           ChunkType = 258
	ChunkAnimation        ChunkType = 512
	ChunkAnimationHeader  ChunkType = 513
	ChunkChannel          ChunkType = 514
)

var chunkNames = map[ChunkType]string{
	ChunkRoot:             "Root",
	ChunkModel:            "Model",
	ChunkMesh:             "Mesh",
	ChunkMeshHeader:       "MeshHeader",
	ChunkVertices:         "Vertices",
	ChunkNormals:          "Normals",
	ChunkFaces:            "Faces",
	ChunkUVs:              "UVs",
	ChunkVertexInfluences: "VertexInfluences",
	ChunkBox:              "Box",
	ChunkHierarchy:        "Hierarchy",
	ChunkHierarchyHeader:  "HierarchyHeader",
	ChunkPivots:           "Pivots",
	ChunkAnimation:        "Animation",
	ChunkAnimationHeader:  "AnimationHeader",
	ChunkChannel:          "Channel",
}

func (t ChunkType) String() string {
	if n, ok := chunkNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ChunkType(%d)", int32(t))
}

// HeaderSize is the size of the type and size fields preceding every payload.
const HeaderSize = 8

// Chunk is a framed block. Its payload is described once by encodeFields,
// which drives both size computation and byte emission.
type Chunk interface {
	ChunkType() ChunkType
	encodeFields(e fieldEncoder)
}

type fieldEncoder interface {
	putInt32(v int32)
	putFloat32(v float32)
	putUint8(v uint8)
	putString(s string)
	putVector(v *geom.Vector3)
	putQuaternion(q [4]float32)
	putMatrix(m *geom.Matrix4)
	putChunk(c Chunk)
}

// sizer counts payload bytes without writing anything.
type sizer struct {
	n int
}

func (s *sizer) putInt32(int32) { s.n += 4 }
func (s *sizer) putFloat32(float32) { s.n += 4 }
func (s *sizer) putUint8(uint8) { s.n++ }
func (s *sizer) putString(v string) { s.n += len(v) + 1 }
func (s *sizer) putVector(*geom.Vector3) { s.n += 12 }
func (s *sizer) putQuaternion([4]float32) { s.n += 16 }
func (s *sizer) putMatrix(*geom.Matrix4) { s.n += 64 }
func (s *sizer) putChunk(c Chunk) { s.n += HeaderSize + ChunkSize(c) }

// ChunkSize returns the payload size of c, excluding its own header.
func ChunkSize(c Chunk) int {
	var s sizer
	c.encodeFields(&s)
	return s.n
}

// SizeMismatchError reports a chunk whose emitted payload differs from its
// declared size.
type SizeMismatchError struct {
	Type     ChunkType
	Declared int
	Written  int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("bf3d: %v chunk declared %d bytes but wrote %d", e.Type, e.Declared, e.Written)
}
