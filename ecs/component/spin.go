package component

// Spin adds Rate to the transform rotation on every tick.
type Spin struct {
	Rate Vec3
}

var SpinComponent = NewComponentKind[Spin]("spin")
