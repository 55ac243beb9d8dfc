package geom

import (
	"testing"
)

func TestParseAxis(t *testing.T) {
	for s, want := range map[string]Axis{"X": AxisX, "y": AxisY, " Z ": AxisZ, "-x": AxisNegX, "-Y": AxisNegY, "-Z": AxisNegZ} {
		a, err := ParseAxis(s)
		if err != nil || a != want {
			t.Error("ParseAxis: ", s, a, err)
		}
		if a.String() != want.String() {
			t.Error("String: ", a)
		}
	}
	if _, err := ParseAxis("W"); err == nil {
		t.Error("ParseAxis should fail for W")
	}
}

func TestAxisConversionZUpToYUp(t *testing.T) {
	const eps = 0.000001

	mat, err := NewAxisConversionMatrix4(AxisY, AxisZ, AxisNegZ, AxisY)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []struct{ in, out *Vector3 }{
		{NewVector3(1, 0, 0), NewVector3(1, 0, 0)},
		{NewVector3(0, 1, 0), NewVector3(0, 0, -1)},
		{NewVector3(0, 0, 1), NewVector3(0, 1, 0)},
		{NewVector3(1, 2, 3), NewVector3(1, 3, -2)},
	} {
		if v := mat.ApplyTo(c.in); v.Sub(c.out).Len() > eps {
			t.Error("convert: ", c.in, v, c.out)
		}
	}

	if Abs(mat.Det()-1) > eps {
		t.Error("conversion is not a rotation: ", mat.Det())
	}
}

func TestAxisConversionIdentity(t *testing.T) {
	mat, err := NewAxisConversionMatrix4(AxisNegZ, AxisY, AxisNegZ, AxisY)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.ApproxEquals(NewMatrix4(), 0.000001) {
		t.Error("same basis should give identity: ", mat)
	}
}

func TestAxisConversionInvalid(t *testing.T) {
	if _, err := NewAxisConversionMatrix4(AxisY, AxisNegY, AxisNegZ, AxisY); err == nil {
		t.Error("parallel source axes should fail")
	}
	if _, err := NewAxisConversionMatrix4(AxisY, AxisZ, AxisZ, AxisNegZ); err == nil {
		t.Error("parallel target axes should fail")
	}
}
