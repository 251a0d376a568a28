package component

import "image/color"

type AmbientLight struct {
	Color     color.RGBA
	Intensity float64
}

var AmbientLightComponent = NewComponentKind[AmbientLight]("ambient_light")

// PointLight emits from the entity's transform position. A Distance of zero
// disables attenuation.
type PointLight struct {
	Color     color.RGBA
	Intensity float64
	Distance  float64
	Decay     float64
}

var PointLightComponent = NewComponentKind[PointLight]("point_light")
