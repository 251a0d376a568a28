package component

import "image/color"

type Camera struct {
	Target Vec3
	Up     Vec3
	// FovY is the vertical field of view in degrees.
	FovY       float64
	Near       float64
	Far        float64
	Zoom       float64
	ClearColor color.RGBA
}

var CameraComponent = NewComponentKind[Camera]("camera")
