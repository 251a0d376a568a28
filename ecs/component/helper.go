package component

import "image/color"

type GridHelper struct {
	Size        float64
	Divisions   int
	CenterColor color.RGBA
	GridColor   color.RGBA
}

var GridHelperComponent = NewComponentKind[GridHelper]("grid_helper")

type AxesHelper struct {
	Size float64
}

var AxesHelperComponent = NewComponentKind[AxesHelper]("axes_helper")
