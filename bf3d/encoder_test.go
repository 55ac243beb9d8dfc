package bf3d

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEncodeTriangleModel(t *testing.T) {
	model := &Model{Meshes: []*Mesh{triangleMesh("Triangle")}}

	var buf bytes.Buffer
	require.NoError(t, NewEncoder().Encode(&buf, "", model))
	b := buf.Bytes()

	require.Equal(t, FormatTag, string(b[:4]))
	typ, payload, rest := splitChunk(t, b[4:])
	assert.Equal(t, ChunkRoot, typ)
	assert.Equal(t, []byte{0}, payload)

	typ, payload, rest = splitChunk(t, rest)
	assert.Equal(t, ChunkModel, typ)
	assert.Empty(t, rest)

	meshHeader := 17 + len("Triangle") + 1
	mesh := HeaderSize + meshHeader +
		HeaderSize + 36 + // vertices
		HeaderSize + 36 + // normals
		HeaderSize + 12 + // faces
		HeaderSize + 24 // uvs
	assert.Equal(t, 1+HeaderSize+mesh, len(payload))
	assert.Equal(t, 4+HeaderSize+1+HeaderSize+1+HeaderSize+mesh, len(b))
	assert.Equal(t, len(b), EncodedLen("", model))
}

func TestEncodeNothing(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewEncoder().Encode(&buf, "x", nil))
	assert.Zero(t, buf.Len())
}

func TestEncodeWriteError(t *testing.T) {
	lw := &limitWriter{limit: 10}
	err := NewEncoder().Encode(lw, "scene", sampleHierarchy())
	assert.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, err.Error(), "root chunk")
}

func TestEncodeLogsChunk(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	enc := NewEncoder(WithLogger(zap.New(core)), WithTransform(IdentityTransform()))

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, "walk", sampleAnimation()))
	entries := logs.FilterMessage("chunk written").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Animation", entries[0].ContextMap()["type"])
	assert.EqualValues(t, buf.Len(), entries[0].ContextMap()["total"])
}

func TestSceneNames(t *testing.T) {
	assert.Equal(t, "hero", SceneName("/tmp/out/hero.w3d"))
	assert.Equal(t, "hero", SceneName("hero"))
	assert.Equal(t, filepath.Join("/tmp/out", "Armature.w3d"), HierarchyPath("/tmp/out/hero.w3d", "Armature"))
	assert.Equal(t, "/tmp/out/hero.w3d", HierarchyPath("/tmp/out/hero.w3d", ""))
	assert.Equal(t, filepath.Join("/tmp/out", "Armature.w3d"), HierarchyPath("/tmp/out/hero.w3d", "../../etc/Armature"))
	assert.Equal(t, "/tmp/out/hero.w3d", HierarchyPath("/tmp/out/hero.w3d", ".."))
	assert.Equal(t, "/tmp/out/hero.w3d", HierarchyPath("/tmp/out/hero.w3d", "/"))
}

func TestParseMode(t *testing.T) {
	for s, expected := range map[string]Mode{
		"model":     ModeModel,
		"M":         ModeModel,
		"hierarchy": ModeHierarchy,
		"skeleton":  ModeHierarchy,
		"animation": ModeAnimation,
		"a":         ModeAnimation,
	} {
		m, err := ParseMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, m)
	}
	_, err := ParseMode("texture")
	assert.Error(t, err)
	assert.Equal(t, "hierarchy", ModeHierarchy.String())
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	sc := &Scene{
		SkeletonName: "Armature",
		Model:        &Model{HierarchyName: "Armature", Meshes: []*Mesh{skinnedMesh("body")}},
		Hierarchy:    sampleHierarchy(),
		Animation:    sampleAnimation(),
	}
	enc := NewEncoder()
	path := filepath.Join(dir, "hero.w3d")

	t.Run("model", func(t *testing.T) {
		out, err := enc.ExportFile(path, ModeModel, sc)
		require.NoError(t, err)
		assert.Equal(t, path, out)
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Len(t, b, EncodedLen("hero", sc.Model))

		_, payload, _ := splitChunk(t, b[4:])
		assert.Equal(t, "hero\x00", string(payload))
	})

	t.Run("hierarchy", func(t *testing.T) {
		out, err := enc.ExportFile(path, ModeHierarchy, sc)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Armature.w3d"), out)
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		_, payload, rest := splitChunk(t, b[4:])
		assert.Equal(t, "Armature\x00", string(payload))
		typ, _, _ := splitChunk(t, rest)
		assert.Equal(t, ChunkHierarchy, typ)
	})

	t.Run("animation", func(t *testing.T) {
		out, err := enc.ExportFile(path, ModeAnimation, sc)
		require.NoError(t, err)
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		_, _, rest := splitChunk(t, b[4:])
		typ, _, _ := splitChunk(t, rest)
		assert.Equal(t, ChunkAnimation, typ)
	})

	t.Run("missing entity", func(t *testing.T) {
		_, err := enc.ExportFile(filepath.Join(dir, "empty.w3d"), ModeAnimation, &Scene{})
		assert.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "empty.w3d"))
	})

	t.Run("unnamed skeleton", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		enc := NewEncoder(WithLogger(zap.New(core)))
		out, err := enc.ExportFile(filepath.Join(dir, "prop.w3d"), ModeHierarchy, &Scene{Hierarchy: NewHierarchy("")})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "prop.w3d"), out)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unwritable path", func(t *testing.T) {
		_, err := enc.ExportFile(filepath.Join(dir, "missing", "hero.w3d"), ModeModel, sc)
		assert.Error(t, err)
	})
}
