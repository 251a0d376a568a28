package system

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/prefabs"
)

// Scripts define `update(node, dt)` and return a map with any of the
// position, rotation and scale arrays. The node map carries the current
// transform, the position at first run (origin), the node name and the
// seconds since the script started (time).
const scriptDispatch = `
__result := update(__node, __dt)
`

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	origin   component.Vec3
	time     float64
	failed   bool
}

// ScriptSystem runs tengo behaviours attached to nodes. A script that fails
// to compile is reported once and skipped until Invalidate is called; a
// script that fails at runtime leaves the node unchanged for that tick.
type ScriptSystem struct {
	dt       float64
	load     func(path string) ([]byte, error)
	runtimes map[ecs.Entity]*scriptRuntime
}

func NewScriptSystem(dt float64) *ScriptSystem {
	if dt <= 0 {
		dt = 1.0 / 60
	}
	return &ScriptSystem{dt: dt, load: prefabs.LoadScript, runtimes: map[ecs.Entity]*scriptRuntime{}}
}

// Invalidate drops compiled scripts so they are reloaded on the next tick.
// An empty path drops all of them.
func (s *ScriptSystem) Invalidate(path string) {
	for e, rt := range s.runtimes {
		if path == "" || sameScript(rt.path, path) {
			delete(s.runtimes, e)
		}
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s == nil {
		return
	}
	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) {
			delete(s.runtimes, e)
		}
	}

	ecs.ForEach2(w, component.TransformComponent, component.ScriptComponent, func(e ecs.Entity, t *component.Transform, sc *component.Script) {
		rt, err := s.runtime(e, sc.Path, t.Position)
		if err != nil {
			log.Printf("script: entity=%s load %s: %v", e, sc.Path, err)
			return
		}
		if rt.failed {
			return
		}

		name := ""
		if n, ok := ecs.Get(w, e, component.NameComponent); ok {
			name = n.Value
		}
		result, err := rt.run(name, t, s.dt)
		rt.time += s.dt
		if err != nil {
			log.Printf("script: entity=%s %s: %v", e, sc.Path, err)
			return
		}
		if err := applyScriptResult(t, result); err != nil {
			log.Printf("script: entity=%s %s: %v", e, sc.Path, err)
		}
	})
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string, origin component.Vec3) (*scriptRuntime, error) {
	if rt, ok := s.runtimes[e]; ok && rt.path == path {
		return rt, nil
	}

	rt := &scriptRuntime{path: path, origin: origin}
	s.runtimes[e] = rt

	src, err := s.load(path)
	if err != nil {
		rt.failed = true
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__node", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		rt.failed = true
		return nil, err
	}
	rt.compiled = compiled
	return rt, nil
}

func (rt *scriptRuntime) run(name string, t *component.Transform, dt float64) (tengo.Object, error) {
	node := &tengo.Map{Value: map[string]tengo.Object{
		"name":     &tengo.String{Value: name},
		"position": vec3Object(t.Position),
		"rotation": vec3Object(t.Rotation),
		"scale":    vec3Object(t.Scale),
		"origin":   vec3Object(rt.origin),
		"time":     &tengo.Float{Value: rt.time},
	}}
	if err := rt.compiled.Set("__node", node); err != nil {
		return nil, err
	}
	if err := rt.compiled.Set("__dt", dt); err != nil {
		return nil, err
	}
	// RunContext turns VM panics, such as integer division by zero, into errors.
	if err := rt.compiled.RunContext(context.Background()); err != nil {
		return nil, err
	}
	return rt.compiled.Get("__result").Object(), nil
}

func applyScriptResult(t *component.Transform, result tengo.Object) error {
	var fields map[string]tengo.Object
	switch r := result.(type) {
	case *tengo.Map:
		fields = r.Value
	case *tengo.ImmutableMap:
		fields = r.Value
	case *tengo.Undefined, nil:
		return nil
	default:
		return fmt.Errorf("update returned %s, want map", result.TypeName())
	}

	// Decode everything first so a bad field leaves the transform untouched.
	next := *t
	targets := map[string]*component.Vec3{
		"position": &next.Position,
		"rotation": &next.Rotation,
		"scale":    &next.Scale,
	}
	for key, obj := range fields {
		dst, ok := targets[key]
		if !ok {
			continue
		}
		v, err := objectVec3(obj)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
	}
	*t = next
	return nil
}

func vec3Object(v component.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X},
		&tengo.Float{Value: v.Y},
		&tengo.Float{Value: v.Z},
	}}
}

func objectVec3(obj tengo.Object) (component.Vec3, error) {
	var elems []tengo.Object
	switch a := obj.(type) {
	case *tengo.Array:
		elems = a.Value
	case *tengo.ImmutableArray:
		elems = a.Value
	default:
		return component.Vec3{}, fmt.Errorf("got %s, want array", obj.TypeName())
	}
	if len(elems) != 3 {
		return component.Vec3{}, fmt.Errorf("got %d elements, want 3", len(elems))
	}
	var out [3]float64
	for i, el := range elems {
		f, ok := tengo.ToFloat64(el)
		if !ok {
			return component.Vec3{}, fmt.Errorf("element %d is %s", i, el.TypeName())
		}
		out[i] = f
	}
	return component.Vec3From(out), nil
}

func sameScript(a, b string) bool {
	base := func(p string) string {
		p = strings.ReplaceAll(p, "\\", "/")
		if i := strings.LastIndex(p, "/"); i >= 0 {
			p = p[i+1:]
		}
		return p
	}
	return base(a) == base(b)
}
