package math

import (
	gomath "math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPointTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 3, 4)
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{2, 3, 4}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(5, 5, 5)
	got := m.TransformDirection(Vec3{0, 1, 0})
	want := Vec3{0, 1, 0}
	if got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestRotateYQuarterTurn(t *testing.T) {
	m := RotateY(gomath.Pi / 2)
	got := m.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	if got.Distance(want) > 1e-9 {
		t.Errorf("RotateY(pi/2) * (1,0,0) = %v, want %v", got, want)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateZ(0.7)).Mul(Scale(2, 2, 2))
	inv := m.Inverse()

	p := Vec3{4, -5, 6}
	back := inv.TransformPoint(m.TransformPoint(p))
	if back.Distance(p) > 1e-9 {
		t.Errorf("Inverse round trip: got %v, want %v", back, p)
	}
}

func TestInverseSingularReturnsIdentity(t *testing.T) {
	m := Scale(0, 0, 0)
	if got := m.Inverse(); !got.IsIdentity(1e-12) {
		t.Errorf("Inverse of singular matrix = %v, want identity", got)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// Under scale (2, 1, 1) a normal (1, 0, 0) must stay along X
	// and renormalize to unit length.
	m := Scale(2, 1, 1)
	n := m.NormalMatrix().TransformDirection(Vec3{1, 0, 0}).Normalize()
	want := Vec3{1, 0, 0}
	if n.Distance(want) > 1e-9 {
		t.Errorf("NormalMatrix: got %v, want %v", n, want)
	}
}

func TestOrthoMapsCorners(t *testing.T) {
	m := Ortho(-1, 1, -1, 1, -1, 1)
	got := m.TransformPoint(Vec3{1, 1, 0})
	want := Vec3{1, 1, 0}
	if got.Distance(want) > 1e-9 {
		t.Errorf("Ortho corner: got %v, want %v", got, want)
	}
}
