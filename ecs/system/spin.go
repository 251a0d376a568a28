package system

import (
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
)

// SpinSystem advances the rotation of every spinning node by its rate. The
// angles grow without bound.
type SpinSystem struct{}

func NewSpinSystem() *SpinSystem {
	return &SpinSystem{}
}

func (s *SpinSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.TransformComponent, component.SpinComponent, func(_ ecs.Entity, t *component.Transform, spin *component.Spin) {
		t.Rotation.X += spin.Rate.X
		t.Rotation.Y += spin.Rate.Y
		t.Rotation.Z += spin.Rate.Z
	})
}
