package component

// Vec3 is a float64 triple used for positions, Euler angles and sizes.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func Vec3From(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

type Transform struct {
	Position Vec3
	// Rotation holds Euler angles in radians, applied in XYZ order. It is
	// never normalised.
	Rotation Vec3
	// Scale components of zero are treated as 1.
	Scale Vec3
}

var TransformComponent = NewComponentKind[Transform]("transform")
