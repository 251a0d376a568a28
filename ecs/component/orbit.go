package component

// OrbitControls lets the pointer rotate and dolly a camera around its
// target.
type OrbitControls struct {
	Enabled     bool
	RotateSpeed float64
	ZoomSpeed   float64
	MinDistance float64
	MaxDistance float64
}

var OrbitControlsComponent = NewComponentKind[OrbitControls]("orbit_controls")

// OrbitInput is the pointer motion sampled for the current tick. The orbit
// system consumes and clears it.
type OrbitInput struct {
	// DragX and DragY are the drag delta as a fraction of the screen height.
	DragX float64
	DragY float64
	Wheel float64
}

var OrbitInputComponent = NewComponentKind[OrbitInput]("orbit_input")
