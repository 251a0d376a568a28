package linear

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-4

func near(a, b float32) bool { return math32.Abs(a-b) < eps }

func nearV3(a, b V3) bool { return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2]) }

func TestMulIdentity(t *testing.T) {
	var i, m, out M4
	i.I()
	m.Compose(V3{1, 2, 3}, V3{0.3, -0.2, 1.1}, V3{2, 2, 2})
	out.Mul(&i, &m)
	if out != m {
		t.Fatalf("I ⋅ m = %v, want %v", out, m)
	}
	out.Mul(&m, &i)
	if out != m {
		t.Fatalf("m ⋅ I = %v, want %v", out, m)
	}
}

func TestEuler(t *testing.T) {
	half := math32.Pi / 2
	tests := []struct {
		name  string
		euler V3
		in    V3
		want  V3
	}{
		{"none", V3{}, V3{1, 2, 3}, V3{1, 2, 3}},
		{"x_quarter", V3{half, 0, 0}, V3{0, 1, 0}, V3{0, 0, 1}},
		{"y_quarter", V3{0, half, 0}, V3{0, 0, 1}, V3{1, 0, 0}},
		{"z_quarter", V3{0, 0, half}, V3{1, 0, 0}, V3{0, 1, 0}},
		{"full_turn_wraps", V3{2 * math32.Pi, 2 * math32.Pi, 0}, V3{1, 2, 3}, V3{1, 2, 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m M4
			m.Euler(tc.euler[0], tc.euler[1], tc.euler[2])
			if got := m.Dir(tc.in); !nearV3(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	var m M4
	m.Compose(V3{0, 1, 0}, V3{}, V3{10, 0.02, 10})
	if got := m.Point(V3{0.5, 0.5, 0.5}); !nearV3(got, V3{5, 1.01, 5}) {
		t.Fatalf("got %v", got)
	}
}

func TestLookAt(t *testing.T) {
	t.Run("along_z", func(t *testing.T) {
		var m M4
		m.LookAt(V3{0, 0, 5}, V3{}, V3{0, 1, 0})
		if got := m.Point(V3{}); !nearV3(got, V3{0, 0, -5}) {
			t.Fatalf("origin in view space = %v", got)
		}
		if got := m.Point(V3{1, 0, 0}); !nearV3(got, V3{1, 0, -5}) {
			t.Fatalf("+x in view space = %v", got)
		}
	})

	t.Run("up_parallel_to_view", func(t *testing.T) {
		var m M4
		m.LookAt(V3{0, 7, 0}, V3{}, V3{0, 1, 0})
		got := m.Point(V3{})
		for _, c := range got {
			if math32.IsNaN(c) || math32.IsInf(c, 0) {
				t.Fatalf("degenerate basis produced %v", got)
			}
		}
		// The forward axis is nudged by 1e-4 to break the tie with up.
		if !nearV3(got, V3{0, -7e-4, -7}) {
			t.Fatalf("origin in view space = %v, want (0,-7e-4,-7)", got)
		}
	})
}

func TestPerspective(t *testing.T) {
	var p M4
	p.Perspective(Radians(90), 1, 0.1, 1000)

	c := p.MulV4(V4{0, 0, -5, 1})
	if !near(c[0]/c[3], 0) || !near(c[1]/c[3], 0) {
		t.Fatalf("center projected to %v", c)
	}
	c = p.MulV4(V4{1, 0, -1, 1})
	if !near(c[0]/c[3], 1) {
		t.Fatalf("edge projected to ndc x=%v, want 1", c[0]/c[3])
	}
}

func TestZoomedFov(t *testing.T) {
	fov := Radians(75)
	if got := ZoomedFov(fov, 1); !near(got, fov) {
		t.Fatalf("zoom 1 changed fov: %v", got)
	}
	if got := ZoomedFov(fov, 0); !near(got, fov) {
		t.Fatalf("zoom 0 should be treated as 1, got %v", got)
	}
	if got := ZoomedFov(fov, 2); got >= fov {
		t.Fatalf("zoom 2 should narrow fov, got %v >= %v", got, fov)
	}
}
