package common

import (
	"math"
	"testing"
)

func TestVec3(t *testing.T) {
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"len_3_4_0", Vec3{X: 3, Y: 4}.Len(), 5},
		{"dist_sq", Vec3{X: 1, Y: 2, Z: 3}.DistSq(Vec3{X: 1, Y: 0, Z: 0}), 13},
		{"lerp_half", Lerp(2, 4, 0.5), 3},
		{"lerp_vec_z", LerpVec3(Vec3{}, Vec3{Z: 10}, 0.25).Z, 2.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if math.Abs(c.got-c.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", c.want, c.got)
			}
		})
	}
}

func TestVec3Finite(t *testing.T) {
	if !(Vec3{X: 1, Y: -2, Z: 3}).Finite() {
		t.Fatalf("expected finite vector")
	}
	if (Vec3{X: math.NaN()}).Finite() {
		t.Fatalf("NaN should not be finite")
	}
	if (Vec3{Z: math.Inf(1)}).Finite() {
		t.Fatalf("Inf should not be finite")
	}
}
