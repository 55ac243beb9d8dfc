package converter

import (
	"fmt"
	"math"
	"sort"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/binzume/bf3dconv/geom"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

const DefaultBoundingBoxName = "BOUNDINGBOX"

type GLTFToBF3DOption struct {
	// Transform is the encoder transform. glTF data is mapped through its
	// inverse so that the encoder writes it back unchanged.
	Transform       *bf3d.Transform
	FrameRate       int
	AnimationName   string
	BoundingBoxName string
	FlipV           bool
	Logger          *zap.Logger
	Reporter        bf3d.Reporter
}

type gltfToBF3D struct {
	*GLTFToBF3DOption
	inv *bf3d.Transform
}

func NewGLTFToBF3DConverter(options *GLTFToBF3DOption) *gltfToBF3D {
	if options == nil {
		options = &GLTFToBF3DOption{}
	}
	if options.Transform == nil {
		options.Transform = bf3d.DefaultTransform()
	}
	if options.FrameRate == 0 {
		options.FrameRate = 30
	}
	if options.BoundingBoxName == "" {
		options.BoundingBoxName = DefaultBoundingBoxName
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &gltfToBF3D{
		GLTFToBF3DOption: options,
		inv:              options.Transform.Inverse(),
	}
}

// gltfScene holds the state of a single conversion.
type gltfScene struct {
	*gltfToBF3D
	src    *gltf.Document
	report bf3d.Reporter

	parents   []int
	worlds    []*geom.Matrix4
	skin      *gltf.Skin
	nodePivot map[uint32]int32
	pivotNode []int
}

func (c *gltfToBF3D) Convert(src *gltf.Document) (*bf3d.Scene, error) {
	s := &gltfScene{
		gltfToBF3D: c,
		src:        src,
		nodePivot:  map[uint32]int32{},
		pivotNode:  []int{-1},
	}
	s.report = func(w bf3d.Warning) {
		c.Logger.Warn(w.Message, zap.Stringer("kind", w.Kind), zap.String("subject", w.Subject))
		if c.Reporter != nil {
			c.Reporter(w)
		}
	}
	if err := checkReferences(src); err != nil {
		return nil, errors.Wrap(err, "gltf")
	}
	s.buildParents()

	sc := &bf3d.Scene{}
	sc.SkeletonName = s.selectSkeleton()
	sc.Hierarchy = bf3d.NewHierarchy(sc.SkeletonName)
	if err := s.convertJoints(sc.Hierarchy); err != nil {
		return nil, err
	}

	model, err := s.convertModel(sc.Hierarchy)
	if err != nil {
		return nil, err
	}
	model.HierarchyName = sc.SkeletonName
	sc.Model = model

	if anim := s.selectAnimation(); anim != nil {
		a, err := s.convertAnimation(anim)
		if err != nil {
			return nil, err
		}
		a.Header.HierarchyName = sc.SkeletonName
		sc.Animation = a
	}
	c.Logger.Debug("converted glTF document",
		zap.String("skeleton", sc.SkeletonName),
		zap.Int("pivots", len(sc.Hierarchy.Pivots)),
		zap.Int("meshes", len(sc.Model.Meshes)))
	return sc, nil
}

func (s *gltfScene) buildParents() {
	s.parents = make([]int, len(s.src.Nodes))
	for i := range s.parents {
		s.parents[i] = -1
	}
	for i, n := range s.src.Nodes {
		for _, child := range n.Children {
			if int(child) < len(s.parents) {
				s.parents[child] = i
			}
		}
	}
	s.worlds = make([]*geom.Matrix4, len(s.src.Nodes))
}

// checkReferences verifies the node, mesh and skin indices followed while
// walking the scene.
func checkReferences(doc *gltf.Document) error {
	nodes := len(doc.Nodes)
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) >= nodes {
				return errors.Errorf("node %d: child %d of %d nodes", i, c, nodes)
			}
		}
		if n.Mesh != nil && int(*n.Mesh) >= len(doc.Meshes) {
			return errors.Errorf("node %d: mesh %d of %d", i, *n.Mesh, len(doc.Meshes))
		}
		if n.Skin != nil && int(*n.Skin) >= len(doc.Skins) {
			return errors.Errorf("node %d: skin %d of %d", i, *n.Skin, len(doc.Skins))
		}
	}
	for i, skin := range doc.Skins {
		for _, j := range skin.Joints {
			if int(j) >= nodes {
				return errors.Errorf("skin %d: joint %d of %d nodes", i, j, nodes)
			}
		}
		if skin.Skeleton != nil && int(*skin.Skeleton) >= nodes {
			return errors.Errorf("skin %d: skeleton %d of %d nodes", i, *skin.Skeleton, nodes)
		}
	}
	return nil
}

func (s *gltfScene) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(s.src.Accessors) {
		return nil, errors.Errorf("accessor %d of %d", idx, len(s.src.Accessors))
	}
	return s.src.Accessors[idx], nil
}

func (s *gltfScene) material(idx uint32) (*gltf.Material, error) {
	if int(idx) >= len(s.src.Materials) {
		return nil, errors.Errorf("material %d of %d", idx, len(s.src.Materials))
	}
	return s.src.Materials[idx], nil
}

func localMatrix(n *gltf.Node) *geom.Matrix4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return geom.NewMatrix4FromSlice(m[:])
	}
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return geom.NewTRSMatrix4(
		geom.NewVector3FromArray(n.Translation),
		geom.NewQuaternionFromArray(r),
		geom.NewVector3FromArray(s))
}

func (s *gltfScene) world(node int) *geom.Matrix4 {
	if node < 0 {
		return geom.NewMatrix4()
	}
	if s.worlds[node] == nil {
		s.worlds[node] = s.world(s.parents[node]).Mul(localMatrix(s.src.Nodes[node]))
	}
	return s.worlds[node]
}

func jointsEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *gltfScene) nodeName(node int) string {
	if node < len(s.src.Nodes) && s.src.Nodes[node].Name != "" {
		return s.src.Nodes[node].Name
	}
	return fmt.Sprintf("node%d", node)
}

// selectSkeleton picks the single skin of the document and returns its name.
func (s *gltfScene) selectSkeleton() string {
	var skins []*gltf.Skin
	for _, skin := range s.src.Skins {
		dup := false
		for _, other := range skins {
			dup = dup || jointsEqual(skin.Joints, other.Joints)
		}
		if !dup && len(skin.Joints) > 0 {
			skins = append(skins, skin)
		}
	}
	if len(skins) == 0 {
		s.report.Report(bf3d.WarnMissingSkeleton, "scene", "no skin found, hierarchy holds mesh pivots only")
		return ""
	}
	if len(skins) > 1 {
		s.report.Report(bf3d.WarnMultipleSkeletons, "scene", "%d skeletons found, only one is supported; no bones exported", len(skins))
		return ""
	}
	s.skin = skins[0]
	if s.skin.Name != "" {
		return s.skin.Name
	}
	if s.skin.Skeleton != nil {
		return s.nodeName(int(*s.skin.Skeleton))
	}
	joints := map[uint32]bool{}
	for _, j := range s.skin.Joints {
		joints[j] = true
	}
	for _, j := range s.skin.Joints {
		if p := s.parents[j]; p < 0 || !joints[uint32(p)] {
			return s.nodeName(int(j))
		}
	}
	return s.nodeName(int(s.skin.Joints[0]))
}

// parentPivot returns the pivot of the nearest ancestor of node that has one.
func (s *gltfScene) parentPivot(node int) int32 {
	for p := s.parents[node]; p >= 0; p = s.parents[p] {
		if idx, ok := s.nodePivot[uint32(p)]; ok {
			return idx
		}
	}
	return 0
}

func (s *gltfScene) addPivot(h *bf3d.Hierarchy, node int, isBone bool) (int32, error) {
	parent := s.parentPivot(node)
	local := s.world(node)
	if pn := s.pivotNode[parent]; pn >= 0 {
		local = s.world(pn).Inverse().Mul(local)
	}
	idx, err := h.AddPivot(&bf3d.Pivot{
		Name:   s.nodeName(node),
		Parent: parent,
		IsBone: isBone,
		Matrix: *s.inv.Matrix(local),
	})
	if err != nil {
		return 0, err
	}
	s.nodePivot[uint32(node)] = int32(idx)
	s.pivotNode = append(s.pivotNode, node)
	return int32(idx), nil
}

// walk visits nodes parent first.
func (s *gltfScene) walk(f func(node int) error) error {
	var visit func(node int) error
	visit = func(node int) error {
		if err := f(node); err != nil {
			return err
		}
		for _, child := range s.src.Nodes[node].Children {
			if err := visit(int(child)); err != nil {
				return err
			}
		}
		return nil
	}
	for i, p := range s.parents {
		if p < 0 {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *gltfScene) convertJoints(h *bf3d.Hierarchy) error {
	if s.skin == nil {
		return nil
	}
	joints := map[int]bool{}
	for _, j := range s.skin.Joints {
		joints[int(j)] = true
	}
	return s.walk(func(node int) error {
		if !joints[node] {
			return nil
		}
		_, err := s.addPivot(h, node, true)
		return err
	})
}

func (s *gltfScene) isSkinned(n *gltf.Node) bool {
	return n.Skin != nil && s.skin != nil && jointsEqual(s.src.Skins[*n.Skin].Joints, s.skin.Joints)
}

func (s *gltfScene) convertModel(h *bf3d.Hierarchy) (*bf3d.Model, error) {
	model := &bf3d.Model{}
	err := s.walk(func(node int) error {
		n := s.src.Nodes[node]
		if n.Mesh == nil {
			return nil
		}
		if n.Name == s.BoundingBoxName {
			box, err := s.convertBox(node)
			if err != nil {
				return err
			}
			model.BoundingBox = box
			return nil
		}

		var parent int32
		var skin *gltf.Skin
		if s.isSkinned(n) {
			skin = s.src.Skins[*n.Skin]
		} else {
			p, err := s.addPivot(h, node, false)
			if err != nil {
				return err
			}
			parent = p
		}
		meshes, err := s.convertMesh(s.nodeName(node), s.src.Meshes[*n.Mesh], skin)
		if err != nil {
			return errors.Wrapf(err, "mesh %s", s.nodeName(node))
		}
		for _, m := range meshes {
			m.Header.ParentPivot = parent
		}
		model.Meshes = append(model.Meshes, meshes...)
		return nil
	})
	return model, err
}

func (s *gltfScene) convertBox(node int) (*bf3d.Box, error) {
	lo := geom.NewVector3(math.MaxFloat32, math.MaxFloat32, math.MaxFloat32)
	hi := geom.NewVector3(-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32)
	for _, p := range s.src.Meshes[*s.src.Nodes[node].Mesh].Primitives {
		a, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		acr, err := s.accessor(a)
		if err != nil {
			return nil, errors.Wrap(err, "bounding box")
		}
		pos, err := modeler.ReadPosition(s.src, acr, [][3]float32{})
		if err != nil {
			return nil, errors.Wrap(err, "bounding box")
		}
		for _, v := range pos {
			lo = lo.Min(geom.NewVector3FromArray(v))
			hi = hi.Max(geom.NewVector3FromArray(v))
		}
	}
	if lo.X > hi.X {
		lo, hi = &geom.Vector3{}, &geom.Vector3{}
	}
	center := s.world(node).ApplyTo(&geom.Vector3{})
	return &bf3d.Box{
		Center:  *s.inv.Point(center),
		Extents: *s.inv.Point(hi.Sub(lo)),
	}, nil
}

// triangles returns the triangle list of a primitive. ok is false for modes
// that do not describe triangles.
func triangles(mode gltf.PrimitiveMode, indices []uint32) (faces []bf3d.Face, ok bool) {
	switch mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, bf3d.Face{int32(indices[i]), int32(indices[i+1]), int32(indices[i+2])})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				faces = append(faces, bf3d.Face{int32(indices[i]), int32(indices[i+1]), int32(indices[i+2])})
			} else {
				faces = append(faces, bf3d.Face{int32(indices[i+1]), int32(indices[i]), int32(indices[i+2])})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, bf3d.Face{int32(indices[0]), int32(indices[i]), int32(indices[i+1])})
		}
	default:
		return nil, false
	}
	return faces, true
}

func computeNormals(verts []geom.Vector3, faces []bf3d.Face) []geom.Vector3 {
	normals := make([]geom.Vector3, len(verts))
	for _, f := range faces {
		a, b, c := &verts[f[0]], &verts[f[1]], &verts[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range f {
			normals[v] = *normals[v].Add(n)
		}
	}
	for i := range normals {
		normals[i] = *normals[i].Normalize()
	}
	return normals
}

func (s *gltfScene) convertMesh(name string, m *gltf.Mesh, skin *gltf.Skin) ([]*bf3d.Mesh, error) {
	var meshes []*bf3d.Mesh
	for pi, p := range m.Primitives {
		meshName := name
		if pi > 0 {
			meshName = fmt.Sprintf("%s.%d", name, pi)
		}
		a, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		acr, err := s.accessor(a)
		if err != nil {
			return nil, err
		}
		pos, err := modeler.ReadPosition(s.src, acr, [][3]float32{})
		if err != nil {
			return nil, err
		}

		var indices []uint32
		if p.Indices != nil {
			acr, err := s.accessor(*p.Indices)
			if err != nil {
				return nil, err
			}
			indices, err = modeler.ReadIndices(s.src, acr, []uint32{})
			if err != nil {
				return nil, err
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		faces, ok := triangles(p.Mode, indices)
		if !ok {
			s.report.Report(bf3d.WarnUnsupportedPrimitive, meshName, "primitive mode %d is not triangles, skipped", p.Mode)
			continue
		}

		mesh := &bf3d.Mesh{
			Header: bf3d.MeshHeader{Name: meshName},
			Faces:  faces,
		}
		var glVerts []geom.Vector3
		for _, v := range pos {
			glVerts = append(glVerts, *geom.NewVector3FromArray(v))
			mesh.Vertices = append(mesh.Vertices, *s.inv.Point(geom.NewVector3FromArray(v)))
		}
		if err := mesh.ValidateFaces(); err != nil {
			return nil, err
		}

		if a, ok := p.Attributes["NORMAL"]; ok {
			acr, err := s.accessor(a)
			if err != nil {
				return nil, err
			}
			normals, err := modeler.ReadNormal(s.src, acr, [][3]float32{})
			if err != nil {
				return nil, err
			}
			for _, n := range normals {
				mesh.Normals = append(mesh.Normals, *s.inv.Point(geom.NewVector3FromArray(n)))
			}
		} else {
			for _, n := range computeNormals(glVerts, faces) {
				mesh.Normals = append(mesh.Normals, *s.inv.Point(&n))
			}
		}

		mesh.UVs = make([]geom.Vector2, len(pos))
		if a, ok := p.Attributes["TEXCOORD_0"]; ok {
			acr, err := s.accessor(a)
			if err != nil {
				return nil, err
			}
			uvs, err := modeler.ReadTextureCoord(s.src, acr, [][2]float32{})
			if err != nil {
				return nil, err
			}
			for i := 0; i < len(uvs) && i < len(mesh.UVs); i++ {
				mesh.UVs[i] = geom.Vector2{X: uvs[i][0], Y: uvs[i][1]}
				if s.FlipV {
					mesh.UVs[i].Y = 1 - uvs[i][1]
				}
			}
		}

		doubleSided := false
		if p.Material != nil {
			mat, err := s.material(*p.Material)
			if err != nil {
				return nil, err
			}
			mesh.Header.MaterialID = int32(*p.Material)
			doubleSided = mat.DoubleSided
		}
		switch {
		case skin != nil && doubleSided:
			mesh.Header.Type = bf3d.MeshSkinTwoSided
		case skin != nil:
			mesh.Header.Type = bf3d.MeshSkin
		case doubleSided:
			mesh.Header.Type = bf3d.MeshTwoSided
		default:
			mesh.Header.Type = bf3d.MeshNormal
		}

		if skin != nil {
			weights, err := s.readWeights(p, skin)
			if err != nil {
				return nil, err
			}
			mesh.Influences = bf3d.BuildInfluences(meshName, weights, s.report)
			if dropped := countDropped(weights); dropped > 0 {
				s.Logger.Info("vertices without influence record",
					zap.String("mesh", meshName),
					zap.Int("dropped", dropped),
					zap.Int("vertices", len(mesh.Vertices)),
					zap.Float64("ratio", float64(dropped)/float64(len(mesh.Vertices))))
			}
		}
		if err := mesh.Validate(); err != nil {
			return nil, err
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// countDropped returns the number of vertices with more weights than an
// influence record holds.
func countDropped(weights [][]bf3d.BoneWeight) int {
	n := 0
	for _, ws := range weights {
		if len(ws) > bf3d.MaxInfluences {
			n++
		}
	}
	return n
}

// readWeights returns the non-zero bone weights of each vertex, heaviest first.
func (s *gltfScene) readWeights(p *gltf.Primitive, skin *gltf.Skin) ([][]bf3d.BoneWeight, error) {
	ja, ok1 := p.Attributes["JOINTS_0"]
	wa, ok2 := p.Attributes["WEIGHTS_0"]
	if !ok1 || !ok2 {
		return nil, nil
	}
	jacr, err := s.accessor(ja)
	if err != nil {
		return nil, err
	}
	wacr, err := s.accessor(wa)
	if err != nil {
		return nil, err
	}
	joints, err := modeler.ReadJoints(s.src, jacr, [][4]uint16{})
	if err != nil {
		return nil, err
	}
	weights, err := modeler.ReadWeights(s.src, wacr, [][4]float32{})
	if err != nil {
		return nil, err
	}
	result := make([][]bf3d.BoneWeight, len(joints))
	for v := range joints {
		if v >= len(weights) {
			break
		}
		for k, w := range weights[v] {
			if w <= 0 {
				continue
			}
			j := int(joints[v][k])
			if j >= len(skin.Joints) {
				return nil, errors.Errorf("vertex %d references joint %d of %d", v, j, len(skin.Joints))
			}
			result[v] = append(result[v], bf3d.BoneWeight{Bone: s.nodePivot[skin.Joints[j]], Weight: w})
		}
		sort.SliceStable(result[v], func(a, b int) bool {
			return result[v][a].Weight > result[v][b].Weight
		})
	}
	return result, nil
}
