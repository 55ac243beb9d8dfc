package bf3d

import (
	"github.com/binzume/bf3dconv/geom"
)

// Transform is a change of basis applied to everything spatial on the wire.
// Points are mapped with T·p and matrices with T·M·T⁻¹.
type Transform struct {
	m   geom.Matrix4
	inv geom.Matrix4
}

// NewTransform builds the conversion from the source axes to the target axes.
func NewTransform(fromForward, fromUp, toForward, toUp geom.Axis) (*Transform, error) {
	m, err := geom.NewAxisConversionMatrix4(fromForward, fromUp, toForward, toUp)
	if err != nil {
		return nil, err
	}
	return &Transform{m: *m, inv: *m.Inverse()}, nil
}

// DefaultTransform converts the Z-up authoring space (forward +Y) to the Y-up
// runtime space (forward -Z): (x, y, z) -> (x, z, -y).
func DefaultTransform() *Transform {
	t, err := NewTransform(geom.AxisY, geom.AxisZ, geom.AxisNegZ, geom.AxisY)
	if err != nil {
		panic(err)
	}
	return t
}

func IdentityTransform() *Transform {
	return &Transform{m: *geom.NewMatrix4(), inv: *geom.NewMatrix4()}
}

// Inverse returns the transform mapping target space back to source space.
func (t *Transform) Inverse() *Transform {
	return &Transform{m: t.inv, inv: t.m}
}

func (t *Transform) Basis() *geom.Matrix4 {
	return t.m.Clone()
}

func (t *Transform) Point(v *geom.Vector3) *geom.Vector3 {
	return t.m.ApplyTo(v)
}

func (t *Transform) Matrix(m *geom.Matrix4) *geom.Matrix4 {
	return t.m.Mul(m).Mul(&t.inv)
}
