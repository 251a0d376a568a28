// Package linear implements the small amount of float32 linear algebra the
// scene renderer needs.
package linear

import "github.com/chewxy/math32"

// V3 is a 3-component vector of float32.
type V3 [3]float32

// V4 is a 4-component vector of float32.
type V4 [4]float32

// AddV3 returns v + w.
func AddV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = v[i] + w[i]
	}
	return
}

// SubV3 returns v - w.
func SubV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = v[i] - w[i]
	}
	return
}

// ScaleV3 returns s ⋅ v.
func ScaleV3(s float32, v V3) (u V3) {
	for i := range u {
		u[i] = s * v[i]
	}
	return
}

// DotV3 returns v · w.
func DotV3(v, w V3) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// LenV3 returns the length of v.
func LenV3(v V3) float32 { return math32.Sqrt(DotV3(v, v)) }

// NormV3 returns v normalized. The zero vector is returned unchanged.
func NormV3(v V3) V3 {
	l := LenV3(v)
	if l == 0 {
		return v
	}
	return ScaleV3(1/l, v)
}

// Cross returns v × w.
func Cross(v, w V3) (u V3) {
	u[0] = v[1]*w[2] - v[2]*w[1]
	u[1] = v[2]*w[0] - v[0]*w[2]
	u[2] = v[0]*w[1] - v[1]*w[0]
	return
}

// LerpV3 interpolates between v and w by t.
func LerpV3(v, w V3, t float32) (u V3) {
	for i := range u {
		u[i] = v[i] + t*(w[i]-v[i])
	}
	return
}

// Vec3 converts float64 components to a V3.
func Vec3(x, y, z float64) V3 { return V3{float32(x), float32(y), float32(z)} }
