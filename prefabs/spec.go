package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"

	"github.com/milk9111/cubescene/common"
	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs/component"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

// DefaultScene is the embedded scene description.
const DefaultScene = "scene.yaml"

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type SceneSpec struct {
	Name         string           `yaml:"name"`
	ClearColor   YAMLColor        `yaml:"clear_color"`
	Camera       CameraSpec       `yaml:"camera"`
	Fog          *FogSpec         `yaml:"fog"`
	AmbientLight AmbientLightSpec `yaml:"ambient_light"`
	PointLight   PointLightSpec   `yaml:"point_light"`
	GridHelper   *GridHelperSpec  `yaml:"grid_helper"`
	AxesHelper   *AxesHelperSpec  `yaml:"axes_helper"`
	Meshes       []MeshSpec       `yaml:"meshes"`
	Controls     []ControlSpec    `yaml:"controls"`
}

// LoadSceneSpec loads, defaults and validates a scene description.
func LoadSceneSpec(filename string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.prepare(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// ParseSceneSpec is LoadSceneSpec for in-memory YAML.
func ParseSceneSpec(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	if err := spec.prepare(); err != nil {
		return nil, fmt.Errorf("prefabs: scene: %w", err)
	}
	return &spec, nil
}

type CameraSpec struct {
	Position [3]float64    `yaml:"position"`
	Target   [3]float64    `yaml:"target"`
	Up       *[3]float64   `yaml:"up"`
	Fov      float64       `yaml:"fov"`
	Near     float64       `yaml:"near"`
	Far      float64       `yaml:"far"`
	Zoom     float64       `yaml:"zoom"`
	Orbit    *OrbitSpec    `yaml:"orbit"`
	Bindings []BindingSpec `yaml:"bindings"`
}

type OrbitSpec struct {
	Disabled    bool    `yaml:"disabled"`
	RotateSpeed float64 `yaml:"rotate_speed"`
	ZoomSpeed   float64 `yaml:"zoom_speed"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

type FogSpec struct {
	Color YAMLColor `yaml:"color"`
	Near  float64   `yaml:"near"`
	Far   float64   `yaml:"far"`
}

type AmbientLightSpec struct {
	Color     YAMLColor     `yaml:"color"`
	Intensity float64       `yaml:"intensity"`
	Bindings  []BindingSpec `yaml:"bindings"`
}

type PointLightSpec struct {
	Color     YAMLColor     `yaml:"color"`
	Intensity float64       `yaml:"intensity"`
	Position  [3]float64    `yaml:"position"`
	Distance  float64       `yaml:"distance"`
	Decay     *float64      `yaml:"decay"`
	Bindings  []BindingSpec `yaml:"bindings"`
}

type GridHelperSpec struct {
	Size        float64   `yaml:"size"`
	Divisions   int       `yaml:"divisions"`
	CenterColor YAMLColor `yaml:"center_color"`
	GridColor   YAMLColor `yaml:"grid_color"`
}

type AxesHelperSpec struct {
	Size float64 `yaml:"size"`
}

type MeshSpec struct {
	Name     string        `yaml:"name"`
	Position [3]float64    `yaml:"position"`
	Rotation [3]float64    `yaml:"rotation"`
	Scale    *[3]float64   `yaml:"scale"`
	Size     [3]float64    `yaml:"size"`
	Color    YAMLColor     `yaml:"color"`
	Segments int           `yaml:"segments"`
	Spin     *[3]float64   `yaml:"spin"`
	Script   string        `yaml:"script"`
	Bindings []BindingSpec `yaml:"bindings"`
}

type BindingSpec struct {
	Control  string `yaml:"control"`
	Property string `yaml:"property"`
}

func (b BindingSpec) Binding() component.ControlBinding {
	return component.ControlBinding{Control: b.Control, Property: component.Property(b.Property)}
}

type ControlSpec struct {
	Name   string    `yaml:"name"`
	Folder string    `yaml:"folder"`
	Min    float64   `yaml:"min"`
	Max    float64   `yaml:"max"`
	Step   float64   `yaml:"step"`
	Value  ValueSpec `yaml:"value"`
}

// Control converts c into a store definition.
func (c ControlSpec) Control() controls.Control {
	out := controls.Control{
		Name:   c.Name,
		Folder: c.Folder,
		Kind:   controls.KindFloat,
		Min:    c.Min,
		Max:    c.Max,
		Step:   c.Step,
	}
	if len(c.Value) == 3 {
		out.Kind = controls.KindVec3
	}
	copy(out.Default[:], c.Value)
	return out
}

// ValueSpec accepts either a scalar or a three element sequence.
type ValueSpec []float64

func (v *ValueSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		f, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: control value %q: %w", value.Line, value.Value, err)
		}
		*v = ValueSpec{f}
		return nil
	case yaml.SequenceNode:
		var vals []float64
		if err := value.Decode(&vals); err != nil {
			return err
		}
		if len(vals) != 3 {
			return fmt.Errorf("line %d: control value needs 3 elements, got %d", value.Line, len(vals))
		}
		*v = vals
		return nil
	default:
		return fmt.Errorf("line %d: control value must be a number or a list", value.Line)
	}
}

// YAMLColor decodes hex or named colors.
type YAMLColor struct {
	color.RGBA
	Set bool
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a string", value.Line)
	}
	rgba, err := common.ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	c.RGBA = rgba
	c.Set = true
	return nil
}

func (c YAMLColor) Or(def color.RGBA) color.RGBA {
	if !c.Set {
		return def
	}
	return c.RGBA
}

var white = color.RGBA{0xff, 0xff, 0xff, 0xff}

func (s *SceneSpec) prepare() error {
	s.applyDefaults()
	return s.Validate()
}

func (s *SceneSpec) applyDefaults() {
	if !s.ClearColor.Set {
		s.ClearColor = YAMLColor{RGBA: color.RGBA{0xcc, 0xcc, 0xcc, 0xff}, Set: true}
	}

	cam := &s.Camera
	if cam.Up == nil {
		cam.Up = &[3]float64{0, 1, 0}
	}
	if cam.Fov == 0 {
		cam.Fov = 75
	}
	if cam.Near == 0 {
		cam.Near = 0.1
	}
	if cam.Far == 0 {
		cam.Far = 1000
	}
	if cam.Zoom == 0 {
		cam.Zoom = 1
	}
	if cam.Orbit != nil {
		if cam.Orbit.RotateSpeed == 0 {
			cam.Orbit.RotateSpeed = 1
		}
		if cam.Orbit.ZoomSpeed == 0 {
			cam.Orbit.ZoomSpeed = 1
		}
		if cam.Orbit.MaxDistance == 0 {
			cam.Orbit.MaxDistance = cam.Far
		}
	}

	if !s.AmbientLight.Color.Set {
		s.AmbientLight.Color = YAMLColor{RGBA: white, Set: true}
	}
	if !s.PointLight.Color.Set {
		s.PointLight.Color = YAMLColor{RGBA: white, Set: true}
	}
	if s.PointLight.Decay == nil {
		decay := 2.0
		s.PointLight.Decay = &decay
	}

	if g := s.GridHelper; g != nil {
		if g.Size == 0 {
			g.Size = 10
		}
		if g.Divisions == 0 {
			g.Divisions = 10
		}
		if !g.CenterColor.Set {
			g.CenterColor = YAMLColor{RGBA: color.RGBA{0x44, 0x44, 0x44, 0xff}, Set: true}
		}
		if !g.GridColor.Set {
			g.GridColor = YAMLColor{RGBA: color.RGBA{0x88, 0x88, 0x88, 0xff}, Set: true}
		}
	}
	if a := s.AxesHelper; a != nil && a.Size == 0 {
		a.Size = 1
	}

	for i := range s.Meshes {
		m := &s.Meshes[i]
		if m.Scale == nil {
			m.Scale = &[3]float64{1, 1, 1}
		}
		if !m.Color.Set {
			m.Color = YAMLColor{RGBA: white, Set: true}
		}
	}
}

// Validate checks the invariants the scene builder relies on.
func (s *SceneSpec) Validate() error {
	cam := s.Camera
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("%w: camera clip planes near=%v far=%v", ErrInvalidSpec, cam.Near, cam.Far)
	}
	if cam.Fov <= 0 || cam.Fov >= 180 {
		return fmt.Errorf("%w: camera fov %v", ErrInvalidSpec, cam.Fov)
	}
	if cam.Zoom <= 0 {
		return fmt.Errorf("%w: camera zoom %v", ErrInvalidSpec, cam.Zoom)
	}
	if o := cam.Orbit; o != nil && (o.MinDistance < 0 || o.MaxDistance < o.MinDistance) {
		return fmt.Errorf("%w: orbit distance range [%v, %v]", ErrInvalidSpec, o.MinDistance, o.MaxDistance)
	}
	if f := s.Fog; f != nil && f.Far <= f.Near {
		return fmt.Errorf("%w: fog near=%v far=%v", ErrInvalidSpec, f.Near, f.Far)
	}
	if s.AmbientLight.Intensity < 0 || s.PointLight.Intensity < 0 {
		return fmt.Errorf("%w: negative light intensity", ErrInvalidSpec)
	}
	if s.PointLight.Distance < 0 {
		return fmt.Errorf("%w: negative point light distance", ErrInvalidSpec)
	}
	if g := s.GridHelper; g != nil && (g.Size <= 0 || g.Divisions <= 0) {
		return fmt.Errorf("%w: grid helper size=%v divisions=%d", ErrInvalidSpec, g.Size, g.Divisions)
	}

	kinds := map[string]controls.Kind{}
	for _, c := range s.Controls {
		if c.Name == "" {
			return fmt.Errorf("%w: control without name", ErrInvalidSpec)
		}
		if _, dup := kinds[c.Name]; dup {
			return fmt.Errorf("%w: duplicate control %q", ErrInvalidSpec, c.Name)
		}
		if len(c.Value) == 0 {
			return fmt.Errorf("%w: control %q has no value", ErrInvalidSpec, c.Name)
		}
		kinds[c.Name] = c.Control().Kind
	}

	checkBindings := func(owner string, bindings []BindingSpec) error {
		for _, b := range bindings {
			p := component.Property(b.Property)
			if !p.Valid() {
				return fmt.Errorf("%w: %s binds unknown property %q", ErrInvalidSpec, owner, b.Property)
			}
			kind, ok := kinds[b.Control]
			if !ok {
				return fmt.Errorf("%w: %s binds undefined control %q", ErrInvalidSpec, owner, b.Control)
			}
			if p.Vector() != (kind == controls.KindVec3) {
				return fmt.Errorf("%w: %s binds %s control %q to %s", ErrInvalidSpec, owner, kind, b.Control, b.Property)
			}
		}
		return nil
	}
	if err := checkBindings("camera", cam.Bindings); err != nil {
		return err
	}
	if err := checkBindings("ambient_light", s.AmbientLight.Bindings); err != nil {
		return err
	}
	if err := checkBindings("point_light", s.PointLight.Bindings); err != nil {
		return err
	}

	names := map[string]bool{}
	for _, m := range s.Meshes {
		if m.Name == "" {
			return fmt.Errorf("%w: mesh without name", ErrInvalidSpec)
		}
		if names[m.Name] {
			return fmt.Errorf("%w: duplicate mesh %q", ErrInvalidSpec, m.Name)
		}
		names[m.Name] = true
		for _, d := range m.Size {
			if d < 0 {
				return fmt.Errorf("%w: mesh %q has negative size", ErrInvalidSpec, m.Name)
			}
		}
		if err := checkBindings("mesh "+m.Name, m.Bindings); err != nil {
			return err
		}
	}
	return nil
}
