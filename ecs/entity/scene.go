package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/prefabs"
)

const (
	CubeName  = "cube"
	PlaneName = "plane"
)

var ErrMissingNode = errors.New("entity: scene is missing a required node")

// Scene holds the handles of a mounted scene.
type Scene struct {
	Name    string
	Camera  ecs.Entity
	Ambient ecs.Entity
	Point   ecs.Entity
	Cube    ecs.Entity
	Plane   ecs.Entity
	// Fog, Grid and Axes are the zero Entity when the scene omits them.
	Fog  ecs.Entity
	Grid ecs.Entity
	Axes ecs.Entity

	Meshes   map[string]ecs.Entity
	entities []ecs.Entity
}

// BuildScene mounts spec into w and registers its controls on store.
// Controls the scene no longer declares are removed from the store; the ones
// it keeps retain their current values. Nothing is mutated when the scene is
// rejected.
func BuildScene(w *ecs.World, store *controls.Store, spec *prefabs.SceneSpec) (*Scene, error) {
	if w == nil || store == nil || spec == nil {
		return nil, fmt.Errorf("entity: build scene: nil argument")
	}
	if err := checkScene(spec); err != nil {
		return nil, err
	}

	keep := map[string]bool{}
	for _, c := range spec.Controls {
		if err := store.Define(c.Control()); err != nil {
			return nil, fmt.Errorf("entity: define control %s: %w", c.Name, err)
		}
		keep[c.Name] = true
	}
	for _, c := range store.Snapshot() {
		if !keep[c.Name] {
			store.Undefine(c.Name)
		}
	}

	s := &Scene{Name: spec.Name, Meshes: map[string]ecs.Entity{}}
	if err := s.build(w, spec); err != nil {
		s.Unmount(w)
		return nil, err
	}
	return s, nil
}

func checkScene(spec *prefabs.SceneSpec) error {
	names := map[string]bool{}
	for _, m := range spec.Meshes {
		names[m.Name] = true
	}
	for _, required := range []string{CubeName, PlaneName} {
		if !names[required] {
			return fmt.Errorf("%w: mesh %q", ErrMissingNode, required)
		}
	}
	for _, c := range spec.Controls {
		if err := c.Control().Validate(); err != nil {
			return fmt.Errorf("entity: control %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *Scene) build(w *ecs.World, spec *prefabs.SceneSpec) error {
	var err error
	if s.Camera, err = s.newCamera(w, spec); err != nil {
		return err
	}
	if s.Ambient, err = s.newAmbientLight(w, spec.AmbientLight); err != nil {
		return err
	}
	if s.Point, err = s.newPointLight(w, spec.PointLight); err != nil {
		return err
	}
	if spec.Fog != nil {
		if s.Fog, err = s.newFog(w, *spec.Fog); err != nil {
			return err
		}
	}
	if spec.GridHelper != nil {
		if s.Grid, err = s.newGrid(w, *spec.GridHelper); err != nil {
			return err
		}
	}
	if spec.AxesHelper != nil {
		if s.Axes, err = s.newAxes(w, *spec.AxesHelper); err != nil {
			return err
		}
	}
	for _, m := range spec.Meshes {
		e, err := s.newMesh(w, m)
		if err != nil {
			return err
		}
		s.Meshes[m.Name] = e
	}
	s.Cube = s.Meshes[CubeName]
	s.Plane = s.Meshes[PlaneName]
	return nil
}

// Unmount destroys every entity the scene created.
func (s *Scene) Unmount(w *ecs.World) {
	if s == nil {
		return
	}
	for _, e := range s.entities {
		ecs.DestroyEntity(w, e)
	}
	s.entities = nil
}

// Entities returns the scene's entities in creation order.
func (s *Scene) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), s.entities...)
}

func (s *Scene) create(w *ecs.World, name string) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	s.entities = append(s.entities, e)
	if err := ecs.Add(w, e, component.NameComponent, &component.Name{Value: name}); err != nil {
		return e, fmt.Errorf("entity: %s: add name: %w", name, err)
	}
	return e, nil
}

func addBindings(w *ecs.World, e ecs.Entity, owner string, specs []prefabs.BindingSpec) error {
	if len(specs) == 0 {
		return nil
	}
	bindings := &component.ControlBindings{}
	for _, b := range specs {
		bindings.Bindings = append(bindings.Bindings, b.Binding())
	}
	if err := ecs.Add(w, e, component.ControlBindingsComponent, bindings); err != nil {
		return fmt.Errorf("entity: %s: add bindings: %w", owner, err)
	}
	return nil
}

func (s *Scene) newCamera(w *ecs.World, spec *prefabs.SceneSpec) (ecs.Entity, error) {
	cam := spec.Camera
	e, err := s.create(w, "camera")
	if err != nil {
		return e, err
	}

	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{
		Position: component.Vec3From(cam.Position),
		Scale:    component.Vec3{X: 1, Y: 1, Z: 1},
	}); err != nil {
		return e, fmt.Errorf("entity: camera: add transform: %w", err)
	}

	up := [3]float64{0, 1, 0}
	if cam.Up != nil {
		up = *cam.Up
	}
	if err := ecs.Add(w, e, component.CameraComponent, &component.Camera{
		Target:     component.Vec3From(cam.Target),
		Up:         component.Vec3From(up),
		FovY:       cam.Fov,
		Near:       cam.Near,
		Far:        cam.Far,
		Zoom:       cam.Zoom,
		ClearColor: spec.ClearColor.RGBA,
	}); err != nil {
		return e, fmt.Errorf("entity: camera: add camera: %w", err)
	}

	if o := cam.Orbit; o != nil {
		if err := ecs.Add(w, e, component.OrbitControlsComponent, &component.OrbitControls{
			Enabled:     !o.Disabled,
			RotateSpeed: o.RotateSpeed,
			ZoomSpeed:   o.ZoomSpeed,
			MinDistance: o.MinDistance,
			MaxDistance: o.MaxDistance,
		}); err != nil {
			return e, fmt.Errorf("entity: camera: add orbit controls: %w", err)
		}
		if err := ecs.Add(w, e, component.OrbitInputComponent, &component.OrbitInput{}); err != nil {
			return e, fmt.Errorf("entity: camera: add orbit input: %w", err)
		}
	}

	return e, addBindings(w, e, "camera", cam.Bindings)
}

func (s *Scene) newAmbientLight(w *ecs.World, spec prefabs.AmbientLightSpec) (ecs.Entity, error) {
	e, err := s.create(w, "ambient_light")
	if err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.AmbientLightComponent, &component.AmbientLight{
		Color:     spec.Color.RGBA,
		Intensity: spec.Intensity,
	}); err != nil {
		return e, fmt.Errorf("entity: ambient light: %w", err)
	}
	return e, addBindings(w, e, "ambient_light", spec.Bindings)
}

func (s *Scene) newPointLight(w *ecs.World, spec prefabs.PointLightSpec) (ecs.Entity, error) {
	e, err := s.create(w, "point_light")
	if err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{
		Position: component.Vec3From(spec.Position),
	}); err != nil {
		return e, fmt.Errorf("entity: point light: add transform: %w", err)
	}
	decay := 2.0
	if spec.Decay != nil {
		decay = *spec.Decay
	}
	if err := ecs.Add(w, e, component.PointLightComponent, &component.PointLight{
		Color:     spec.Color.RGBA,
		Intensity: spec.Intensity,
		Distance:  spec.Distance,
		Decay:     decay,
	}); err != nil {
		return e, fmt.Errorf("entity: point light: %w", err)
	}
	return e, addBindings(w, e, "point_light", spec.Bindings)
}

func (s *Scene) newFog(w *ecs.World, spec prefabs.FogSpec) (ecs.Entity, error) {
	e, err := s.create(w, "fog")
	if err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.FogComponent, &component.Fog{
		Color: spec.Color.RGBA,
		Near:  spec.Near,
		Far:   spec.Far,
	}); err != nil {
		return e, fmt.Errorf("entity: fog: %w", err)
	}
	return e, nil
}

func (s *Scene) newGrid(w *ecs.World, spec prefabs.GridHelperSpec) (ecs.Entity, error) {
	e, err := s.create(w, "grid_helper")
	if err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{}); err != nil {
		return e, fmt.Errorf("entity: grid helper: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.GridHelperComponent, &component.GridHelper{
		Size:        spec.Size,
		Divisions:   spec.Divisions,
		CenterColor: spec.CenterColor.RGBA,
		GridColor:   spec.GridColor.RGBA,
	}); err != nil {
		return e, fmt.Errorf("entity: grid helper: %w", err)
	}
	return e, nil
}

func (s *Scene) newAxes(w *ecs.World, spec prefabs.AxesHelperSpec) (ecs.Entity, error) {
	e, err := s.create(w, "axes_helper")
	if err != nil {
		return e, err
	}
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{}); err != nil {
		return e, fmt.Errorf("entity: axes helper: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.AxesHelperComponent, &component.AxesHelper{Size: spec.Size}); err != nil {
		return e, fmt.Errorf("entity: axes helper: %w", err)
	}
	return e, nil
}

func (s *Scene) newMesh(w *ecs.World, spec prefabs.MeshSpec) (ecs.Entity, error) {
	e, err := s.create(w, spec.Name)
	if err != nil {
		return e, err
	}

	scale := [3]float64{1, 1, 1}
	if spec.Scale != nil {
		scale = *spec.Scale
	}
	if err := ecs.Add(w, e, component.TransformComponent, &component.Transform{
		Position: component.Vec3From(spec.Position),
		Rotation: component.Vec3From(spec.Rotation),
		Scale:    component.Vec3From(scale),
	}); err != nil {
		return e, fmt.Errorf("entity: mesh %s: add transform: %w", spec.Name, err)
	}
	if err := ecs.Add(w, e, component.MeshComponent, &component.Mesh{
		Size:     component.Vec3From(spec.Size),
		Color:    spec.Color.RGBA,
		Segments: spec.Segments,
	}); err != nil {
		return e, fmt.Errorf("entity: mesh %s: add mesh: %w", spec.Name, err)
	}

	if spec.Spin != nil {
		if err := ecs.Add(w, e, component.SpinComponent, &component.Spin{Rate: component.Vec3From(*spec.Spin)}); err != nil {
			return e, fmt.Errorf("entity: mesh %s: add spin: %w", spec.Name, err)
		}
	}
	if spec.Script != "" {
		if err := ecs.Add(w, e, component.ScriptComponent, &component.Script{Path: spec.Script}); err != nil {
			return e, fmt.Errorf("entity: mesh %s: add script: %w", spec.Name, err)
		}
	}

	return e, addBindings(w, e, "mesh "+spec.Name, spec.Bindings)
}
