package component

import "image/color"

// Mesh is an axis-aligned box centred on the entity's transform.
type Mesh struct {
	Size  Vec3
	Color color.RGBA
	// Segments caps how many strips a face is cut into along each edge; 0
	// lets the renderer pick from the face size.
	Segments int
}

var MeshComponent = NewComponentKind[Mesh]("mesh")
