package component

type Name struct {
	Value string
}

var NameComponent = NewComponentKind[Name]("name")
