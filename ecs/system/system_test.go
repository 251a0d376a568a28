package system

import (
	"errors"
	"math"
	"testing"

	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/ecs/entity"
	"github.com/milk9111/cubescene/prefabs"
)

type mounted struct {
	world    *ecs.World
	store    *controls.Store
	scene    *entity.Scene
	pipeline *Pipeline
}

func mountDefault(t *testing.T) *mounted {
	t.Helper()
	spec, err := prefabs.LoadSceneSpec(prefabs.DefaultScene)
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}
	m := &mounted{world: ecs.NewWorld(), store: controls.NewStore()}
	if m.scene, err = entity.BuildScene(m.world, m.store, spec); err != nil {
		t.Fatalf("build scene: %v", err)
	}
	m.pipeline = NewPipeline(m.store, 1.0/60)
	return m
}

func (m *mounted) tick(n int) {
	for i := 0; i < n; i++ {
		m.pipeline.Update(m.world)
	}
}

func (m *mounted) transform(t *testing.T, e ecs.Entity) *component.Transform {
	t.Helper()
	tr, ok := ecs.Get(m.world, e, component.TransformComponent)
	if !ok {
		t.Fatalf("entity %s has no transform", e)
	}
	return tr
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCubeRotation(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		want   float64
	}{
		{"none", 0, 0},
		{"one", 1, 0.01},
		{"ten", 10, 0.1},
		{"hundred", 100, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mountDefault(t)
			m.tick(tc.frames)
			rot := m.transform(t, m.scene.Cube).Rotation
			if !closeTo(rot.X, tc.want) || !closeTo(rot.Y, tc.want) || rot.Z != 0 {
				t.Fatalf("rotation after %d frames = %+v, want %v on x and y", tc.frames, rot, tc.want)
			}
		})
	}
}

func TestCameraFollowsZoom(t *testing.T) {
	tests := []struct {
		name string
		set  *float64
		want float64
	}{
		{"default", nil, 7},
		{"min", ptr(4.0), 4},
		{"max", ptr(7.0), 7},
		{"mid", ptr(5.5), 5.5},
		{"below_clamped", ptr(1.0), 4},
		{"above_clamped", ptr(12.0), 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mountDefault(t)
			if tc.set != nil {
				if err := m.store.SetFloat("zoom", *tc.set); err != nil {
					t.Fatal(err)
				}
			}
			m.tick(1)
			pos := m.transform(t, m.scene.Camera).Position
			if pos.Y != tc.want || pos.X != 0 || pos.Z != 0 {
				t.Fatalf("camera position %+v, want y=%v", pos, tc.want)
			}
		})
	}
}

func TestPlaneAndAmbientBindings(t *testing.T) {
	m := mountDefault(t)
	m.tick(1)

	plane, _ := ecs.Get(m.world, m.scene.Plane, component.MeshComponent)
	if plane.Size != (component.Vec3{X: 10, Y: 0.02, Z: 10}) {
		t.Fatalf("default plane size %+v", plane.Size)
	}
	amb, _ := ecs.Get(m.world, m.scene.Ambient, component.AmbientLightComponent)
	if amb.Intensity != 1 {
		t.Fatalf("default ambient %v", amb.Intensity)
	}

	_ = m.store.SetVec3("planeSize", [3]float64{4, 1, 6})
	_ = m.store.SetFloat("ambientLightIntensity", 5)
	m.tick(1)
	if plane.Size != (component.Vec3{X: 4, Y: 1, Z: 6}) {
		t.Fatalf("plane size %+v", plane.Size)
	}
	if amb.Intensity != 2 {
		t.Fatalf("ambient intensity %v, want clamped 2", amb.Intensity)
	}
}

func TestBindingMissingTargetIsSkipped(t *testing.T) {
	w := ecs.NewWorld()
	store := controls.NewStore()
	_ = store.Define(controls.Control{Name: "zoom", Min: 4, Max: 7, Default: [3]float64{7}})

	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.ControlBindingsComponent, &component.ControlBindings{Bindings: []component.ControlBinding{
		{Control: "zoom", Property: component.PropertyPositionY},
		{Control: "missing", Property: component.PropertyIntensity},
	}})

	b := NewBindingSystem(store)
	b.Update(w)
	b.Update(w)
	if len(b.reported) != 1 {
		t.Fatalf("expected the unknown control reported once, got %v", b.reported)
	}
}

func TestOrbitThenBinding(t *testing.T) {
	m := mountDefault(t)
	_ = m.store.SetFloat("zoom", 5)

	in, _ := ecs.Get(m.world, m.scene.Camera, component.OrbitInputComponent)
	in.DragY = -0.05
	m.tick(1)

	pos := m.transform(t, m.scene.Camera).Position
	if pos.Y != 5 {
		t.Fatalf("camera y = %v after orbit, want zoom 5", pos.Y)
	}
	if math.Abs(pos.Z) < 1 {
		t.Fatalf("orbit did not move the camera: %+v", pos)
	}
	if *in != (component.OrbitInput{}) {
		t.Fatalf("orbit input not consumed: %+v", *in)
	}

	before := pos
	m.tick(1)
	if after := m.transform(t, m.scene.Camera).Position; after != before {
		t.Fatalf("idle tick moved camera from %+v to %+v", before, after)
	}
}

func TestOrbitMath(t *testing.T) {
	ctl := component.OrbitControls{Enabled: true, RotateSpeed: 1, ZoomSpeed: 1, MinDistance: 2, MaxDistance: 10}
	start := component.Vec3{Z: 5}

	t.Run("keeps_radius", func(t *testing.T) {
		p := orbit(start, component.Vec3{}, ctl, component.OrbitInput{DragX: 0.25})
		r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
		if !closeTo(r, 5) || math.Abs(p.X+5) > 1e-6 {
			t.Fatalf("quarter azimuth turn gave %+v", p)
		}
	})
	t.Run("dolly_clamped", func(t *testing.T) {
		p := orbit(start, component.Vec3{}, ctl, component.OrbitInput{Wheel: 1000})
		if r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z); !closeTo(r, 2) {
			t.Fatalf("radius %v, want min distance 2", r)
		}
		p = orbit(start, component.Vec3{}, ctl, component.OrbitInput{Wheel: -1000})
		if r := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z); !closeTo(r, 10) {
			t.Fatalf("radius %v, want max distance 10", r)
		}
	})
	t.Run("polar_clamped", func(t *testing.T) {
		p := orbit(start, component.Vec3{}, ctl, component.OrbitInput{DragY: 10})
		if p.Y > 5 || math.IsNaN(p.X) || math.IsNaN(p.Z) {
			t.Fatalf("polar clamp gave %+v", p)
		}
	})
}

func scriptWorld(t *testing.T, src string) (*ecs.World, ecs.Entity, *ScriptSystem) {
	t.Helper()
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent, &component.Transform{Position: component.Vec3{Y: 1}})
	_ = ecs.Add(w, e, component.ScriptComponent, &component.Script{Path: "test.tengo"})
	s := NewScriptSystem(0.5)
	s.load = func(string) ([]byte, error) { return []byte(src), nil }
	return w, e, s
}

func TestScriptSystem(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want component.Transform
	}{
		{
			name: "rotation",
			src:  `update := func(node, dt) { return {rotation: [node.rotation[0] + dt, 0, 0]} }`,
			want: component.Transform{Position: component.Vec3{Y: 1}, Rotation: component.Vec3{X: 1}},
		},
		{
			name: "int_elements",
			src:  `update := func(node, dt) { return {position: [1, 2, 3]} }`,
			want: component.Transform{Position: component.Vec3{X: 1, Y: 2, Z: 3}},
		},
		{
			name: "runtime_error_leaves_node",
			src:  `update := func(node, dt) { z := 0; return 1 / z }`,
			want: component.Transform{Position: component.Vec3{Y: 1}},
		},
		{
			name: "divide_by_zero_in_result_leaves_node",
			src:  `update := func(node, dt) { n := 0; return {position: [1 / n, 0, 0]} }`,
			want: component.Transform{Position: component.Vec3{Y: 1}},
		},
		{
			name: "bad_field_leaves_node",
			src:  `update := func(node, dt) { return {position: [1, 2]} }`,
			want: component.Transform{Position: component.Vec3{Y: 1}},
		},
		{
			name: "compile_error_leaves_node",
			src:  `update := func(node, dt) { return`,
			want: component.Transform{Position: component.Vec3{Y: 1}},
		},
		{
			name: "undefined_result_ignored",
			src:  `update := func(node, dt) {}`,
			want: component.Transform{Position: component.Vec3{Y: 1}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, e, s := scriptWorld(t, tc.src)
			s.Update(w)
			s.Update(w)
			got, _ := ecs.Get(w, e, component.TransformComponent)
			if *got != tc.want {
				t.Fatalf("transform %+v, want %+v", *got, tc.want)
			}
		})
	}
}

func TestScriptInvalidateAndCleanup(t *testing.T) {
	w, e, s := scriptWorld(t, `update := func(node, dt) { return {position: [0, node.origin[1] + node.time, 0]} }`)
	s.Update(w)
	s.Update(w)
	got, _ := ecs.Get(w, e, component.TransformComponent)
	if got.Position.Y != 1.5 {
		t.Fatalf("y = %v, want origin 1 + time 0.5", got.Position.Y)
	}

	s.load = func(string) ([]byte, error) { return []byte(`update := func(node, dt) { return {scale: [2, 2, 2]} }`), nil }
	s.Invalidate("prefabs/scripts/test.tengo")
	s.Update(w)
	if got.Scale != (component.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("reloaded script not applied: %+v", got.Scale)
	}

	ecs.DestroyEntity(w, e)
	s.Update(w)
	if len(s.runtimes) != 0 {
		t.Fatalf("runtime kept for destroyed entity")
	}
}

func TestScriptRuntimeErrorKeepsNode(t *testing.T) {
	w, e, s := scriptWorld(t, `update := func(node, dt) { z := 0; return 1 / z }`)
	for i := 0; i < 3; i++ {
		s.Update(w)
	}
	if rt := s.runtimes[e]; rt == nil {
		t.Fatalf("runtime dropped after a failing run")
	}
	got, _ := ecs.Get(w, e, component.TransformComponent)
	if got.Position != (component.Vec3{Y: 1}) {
		t.Fatalf("failing script moved the node to %+v", got.Position)
	}
}

func TestScriptLoadError(t *testing.T) {
	w, e, s := scriptWorld(t, "")
	s.load = func(string) ([]byte, error) { return nil, errors.New("boom") }
	s.Update(w)
	s.Update(w)
	if rt := s.runtimes[e]; rt == nil || !rt.failed {
		t.Fatalf("failed load should be remembered")
	}
}

func TestBobScript(t *testing.T) {
	w, e, s := scriptWorld(t, "")
	s.load = prefabs.LoadScript
	_ = ecs.Add(w, e, component.ScriptComponent, &component.Script{Path: "bob.tengo"})
	s.Update(w)
	got, _ := ecs.Get(w, e, component.TransformComponent)
	if !closeTo(got.Position.Y, 1) {
		t.Fatalf("bob at time 0 should sit at its origin, got %v", got.Position.Y)
	}
	s.Update(w)
	if closeTo(got.Position.Y, 1) {
		t.Fatalf("bob did not move")
	}
}

func ptr[T any](v T) *T { return &v }
