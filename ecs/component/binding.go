package component

// Property names a node attribute that a control can drive.
type Property string

const (
	PropertyPositionX Property = "position.x"
	PropertyPositionY Property = "position.y"
	PropertyPositionZ Property = "position.z"
	PropertyPosition  Property = "position"
	PropertySize      Property = "size"
	PropertyIntensity Property = "intensity"
)

// Valid reports whether p is one of the known properties.
func (p Property) Valid() bool {
	switch p {
	case PropertyPositionX, PropertyPositionY, PropertyPositionZ, PropertyPosition, PropertySize, PropertyIntensity:
		return true
	}
	return false
}

// Vector reports whether p takes a three-component control.
func (p Property) Vector() bool {
	return p == PropertyPosition || p == PropertySize
}

type ControlBinding struct {
	Control  string
	Property Property
}

type ControlBindings struct {
	Bindings []ControlBinding
}

var ControlBindingsComponent = NewComponentKind[ControlBindings]("control_bindings")
