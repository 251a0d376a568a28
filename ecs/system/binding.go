package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
)

var errNoTarget = errors.New("node has no such property")

// BindingSystem copies control values onto the node properties bound to
// them. Clamping is the store's job; values are applied as read.
type BindingSystem struct {
	store    *controls.Store
	reported map[string]bool
}

func NewBindingSystem(store *controls.Store) *BindingSystem {
	return &BindingSystem{store: store, reported: map[string]bool{}}
}

func (b *BindingSystem) Update(w *ecs.World) {
	if b == nil || b.store == nil {
		return
	}
	ecs.ForEach(w, component.ControlBindingsComponent, func(e ecs.Entity, cb *component.ControlBindings) {
		for _, binding := range cb.Bindings {
			err := b.apply(w, e, binding)
			if err == nil || errors.Is(err, errNoTarget) {
				continue
			}
			key := fmt.Sprintf("%s/%s/%s", e, binding.Control, binding.Property)
			if !b.reported[key] {
				b.reported[key] = true
				log.Printf("binding: entity=%s %s -> %s: %v", e, binding.Control, binding.Property, err)
			}
		}
	})
}

func (b *BindingSystem) apply(w *ecs.World, e ecs.Entity, binding component.ControlBinding) error {
	switch binding.Property {
	case component.PropertyPositionX, component.PropertyPositionY, component.PropertyPositionZ:
		v, err := b.store.Float(binding.Control)
		if err != nil {
			return err
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return errNoTarget
		}
		switch binding.Property {
		case component.PropertyPositionX:
			t.Position.X = v
		case component.PropertyPositionY:
			t.Position.Y = v
		default:
			t.Position.Z = v
		}
	case component.PropertyPosition:
		v, err := b.store.Vec3(binding.Control)
		if err != nil {
			return err
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return errNoTarget
		}
		t.Position = component.Vec3From(v)
	case component.PropertySize:
		v, err := b.store.Vec3(binding.Control)
		if err != nil {
			return err
		}
		m, ok := ecs.Get(w, e, component.MeshComponent)
		if !ok {
			return errNoTarget
		}
		m.Size = component.Vec3From(v)
	case component.PropertyIntensity:
		v, err := b.store.Float(binding.Control)
		if err != nil {
			return err
		}
		if l, ok := ecs.Get(w, e, component.AmbientLightComponent); ok {
			l.Intensity = v
			return nil
		}
		if l, ok := ecs.Get(w, e, component.PointLightComponent); ok {
			l.Intensity = v
			return nil
		}
		return errNoTarget
	default:
		return fmt.Errorf("unknown property %q", binding.Property)
	}
	return nil
}
