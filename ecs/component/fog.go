package component

import "image/color"

// Fog blends geometry toward Color between Near and Far view depth.
type Fog struct {
	Color color.RGBA
	Near  float64
	Far   float64
}

var FogComponent = NewComponentKind[Fog]("fog")
