package component

// Script attaches a tengo behaviour, resolved through prefabs.LoadScript.
type Script struct {
	Path string
}

var ScriptComponent = NewComponentKind[Script]("script")
