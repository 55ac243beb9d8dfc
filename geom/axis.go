package geom

import (
	"fmt"
	"strings"
)

// Axis is a signed coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisNegX
	AxisNegY
	AxisNegZ
)

var axisNames = [...]string{"X", "Y", "Z", "-X", "-Y", "-Z"}

func (a Axis) String() string {
	if a < AxisX || a > AxisNegZ {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis accepts "X", "-Y", "z" etc.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range axisNames {
		if s == n {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("invalid axis %q", s)
}

// Vector returns the unit vector of the axis.
func (a Axis) Vector() *Vector3 {
	v := &Vector3{}
	switch a % 3 {
	case 0:
		v.X = 1
	case 1:
		v.Y = 1
	case 2:
		v.Z = 1
	}
	if a >= AxisNegX {
		v = v.Scale(-1)
	}
	return v
}

func (a Axis) base() Axis {
	return a % 3
}

// NewAxisConversionMatrix4 returns the rotation that maps the source basis
// (forward, up) onto the target basis (forward, up). The third axis of each
// basis is forward x up, so both sides stay right-handed.
func NewAxisConversionMatrix4(fromForward, fromUp, toForward, toUp Axis) (*Matrix4, error) {
	if fromForward.base() == fromUp.base() {
		return nil, fmt.Errorf("source forward %v and up %v share an axis", fromForward, fromUp)
	}
	if toForward.base() == toUp.base() {
		return nil, fmt.Errorf("target forward %v and up %v share an axis", toForward, toUp)
	}
	src := basisMatrix4(fromForward.Vector(), fromUp.Vector())
	dst := basisMatrix4(toForward.Vector(), toUp.Vector())
	// src is orthonormal, so its inverse is its transpose.
	return dst.Mul(src.Transposed()), nil
}

// basisMatrix4 has columns (right, forward, up).
func basisMatrix4(forward, up *Vector3) *Matrix4 {
	right := forward.Cross(up)
	return &Matrix4{
		right.X, right.Y, right.Z, 0,
		forward.X, forward.Y, forward.Z, 0,
		up.X, up.Y, up.Z, 0,
		0, 0, 0, 1,
	}
}
