package linear

import "github.com/chewxy/math32"

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var t M4
	for i := range t {
		for j := range t {
			for k := range t {
				t[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = t
}

// MulV4 returns m ⋅ v.
func (m *M4) MulV4(v V4) (u V4) {
	for i := range m {
		for j := range u {
			u[j] += m[i][j] * v[i]
		}
	}
	return
}

// Point transforms the point p (w = 1) by m, ignoring any projective
// component.
func (m *M4) Point(p V3) V3 {
	u := m.MulV4(V4{p[0], p[1], p[2], 1})
	return V3{u[0], u[1], u[2]}
}

// Dir transforms the direction d (w = 0) by m.
func (m *M4) Dir(d V3) V3 {
	u := m.MulV4(V4{d[0], d[1], d[2], 0})
	return V3{u[0], u[1], u[2]}
}

// Euler sets m to the rotation produced by applying x, then y, then z
// radians in intrinsic XYZ order (Rx ⋅ Ry ⋅ Rz).
func (m *M4) Euler(x, y, z float32) {
	a, b := math32.Cos(x), math32.Sin(x)
	c, d := math32.Cos(y), math32.Sin(y)
	e, f := math32.Cos(z), math32.Sin(z)
	ae, af, be, bf := a*e, a*f, b*e, b*f
	*m = M4{
		{c * e, af + be*d, bf - ae*d, 0},
		{-c * f, ae - bf*d, be + af*d, 0},
		{d, -b * c, a * c, 0},
		{0, 0, 0, 1},
	}
}

// Compose sets m to translate ⋅ rotate(euler) ⋅ scale.
func (m *M4) Compose(pos, euler, scale V3) {
	m.Euler(euler[0], euler[1], euler[2])
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] *= scale[i]
		}
	}
	m[3] = V4{pos[0], pos[1], pos[2], 1}
}

// LookAt sets m to a view matrix for a camera at eye looking toward target.
// When up is parallel to the view direction the forward axis is nudged so
// that the basis stays well defined.
func (m *M4) LookAt(eye, target, up V3) {
	z := SubV3(eye, target)
	if DotV3(z, z) == 0 {
		z[2] = 1
	}
	z = NormV3(z)
	x := Cross(up, z)
	if DotV3(x, x) == 0 {
		if math32.Abs(up[2]) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = NormV3(z)
		x = Cross(up, z)
	}
	x = NormV3(x)
	y := Cross(z, x)
	*m = M4{
		{x[0], y[0], z[0], 0},
		{x[1], y[1], z[1], 0},
		{x[2], y[2], z[2], 0},
		{-DotV3(x, eye), -DotV3(y, eye), -DotV3(z, eye), 1},
	}
}

// Perspective sets m to a right-handed perspective projection mapping view
// space (looking down -Z) to clip space. fovY is in radians.
func (m *M4) Perspective(fovY, aspect, near, far float32) {
	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)
	*m = M4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) * nf, -1},
		{0, 0, 2 * far * near * nf, 0},
	}
}

// ZoomedFov returns the vertical field of view after applying zoom, which
// narrows the view the way a camera lens zoom does. zoom <= 0 is treated as 1.
func ZoomedFov(fovY, zoom float32) float32 {
	if zoom <= 0 {
		zoom = 1
	}
	return 2 * math32.Atan(math32.Tan(fovY/2)/zoom)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 { return deg * math32.Pi / 180 }
