package math

import (
	gomath "math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.W != 1 || q.X != 0 || q.Y != 0 || q.Z != 0 {
		t.Errorf("QuatIdentity() = %v", q)
	}
	if !q.IsIdentity(1e-12) {
		t.Error("identity quaternion not reported as identity")
	}
}

func TestQuatFromAxisAngleRotates(t *testing.T) {
	// 90 degrees around Z maps +X to +Y.
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, gomath.Pi/2)
	got := q.ToMat4().TransformPoint(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	if got.Distance(want) > 1e-9 {
		t.Errorf("rotate +X by 90deg about Z: got %v, want %v", got, want)
	}
}

func TestQuatMulComposes(t *testing.T) {
	// Two quarter turns around Z equal a half turn.
	quarter := QuatFromAxisAngle(Vec3{0, 0, 1}, gomath.Pi/2)
	half := quarter.Mul(quarter)
	got := half.ToMat4().TransformPoint(Vec3{1, 0, 0})
	want := Vec3{-1, 0, 0}
	if got.Distance(want) > 1e-9 {
		t.Errorf("half turn: got %v, want %v", got, want)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 2, Y: 0, Z: 0, W: 2}.Normalize()
	length := gomath.Sqrt(q.Dot(q))
	if gomath.Abs(length-1) > 1e-12 {
		t.Errorf("normalized length = %v, want 1", length)
	}
}

func TestQuatNegatedIsSameRotation(t *testing.T) {
	q := Quat{X: 0, Y: 0, Z: 0, W: -1}
	if !q.IsIdentity(1e-12) {
		t.Error("-identity quaternion should still be the identity rotation")
	}
}
