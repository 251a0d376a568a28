// Package controls holds the live tunable values edited from the debug
// panel and read by the scene systems on every tick.
//
// A Store is not safe for concurrent use. The panel callbacks and the systems
// both run on the game goroutine.
package controls

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/milk9111/cubescene/common"
)

var (
	ErrUnknownControl = errors.New("controls: unknown control")
	ErrInvalidRange   = errors.New("controls: invalid range")
	ErrKindMismatch   = errors.New("controls: kind mismatch")
)

type Kind int

const (
	KindFloat Kind = iota
	KindVec3
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVec3:
		return "vec3"
	default:
		return "unknown"
	}
}

// Dims is the number of components a value of this kind has.
func (k Kind) Dims() int {
	if k == KindVec3 {
		return 3
	}
	return 1
}

// Control describes one tunable. Float controls always have bounds. Vector
// controls are unbounded unless Min < Max, in which case every component is
// clamped to the same range.
type Control struct {
	Name    string
	Folder  string
	Kind    Kind
	Min     float64
	Max     float64
	Step    float64
	Default [3]float64
	Value   [3]float64
}

// Bounded reports whether values are clamped.
func (c Control) Bounded() bool {
	return c.Kind == KindFloat || c.Min < c.Max
}

func (c Control) clamp(v float64) float64 {
	if !c.Bounded() {
		return v
	}
	return common.Clamp(v, c.Min, c.Max)
}

// Validate checks the range and default without touching a store.
func (c Control) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRange)
	}
	if c.Kind != KindFloat && c.Kind != KindVec3 {
		return fmt.Errorf("%w: %s has unknown kind %d", ErrInvalidRange, c.Name, c.Kind)
	}
	if c.Min > c.Max {
		return fmt.Errorf("%w: %s min %v > max %v", ErrInvalidRange, c.Name, c.Min, c.Max)
	}
	for i := 0; i < c.Kind.Dims(); i++ {
		d := c.Default[i]
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: %s default is not finite", ErrInvalidRange, c.Name)
		}
		if c.Bounded() && (d < c.Min || d > c.Max) {
			return fmt.Errorf("%w: %s default %v outside [%v, %v]", ErrInvalidRange, c.Name, d, c.Min, c.Max)
		}
	}
	return nil
}

// Store maps control names to their current values.
type Store struct {
	controls map[string]*Control
	order    []string
	onChange []func(name string)
}

func NewStore() *Store {
	return &Store{controls: make(map[string]*Control)}
}

// Define registers c. Redefining an existing control of the same kind keeps
// its current value, clamped into the new range, so a scene reload does not
// lose the user's edits.
func (s *Store) Define(c Control) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for i := c.Kind.Dims(); i < 3; i++ {
		c.Default[i] = 0
	}

	if existing, ok := s.controls[c.Name]; ok {
		value := c.Default
		if existing.Kind == c.Kind {
			for i := 0; i < c.Kind.Dims(); i++ {
				value[i] = c.clamp(existing.Value[i])
			}
		}
		c.Value = value
		*existing = c
		s.notify(c.Name)
		return nil
	}

	c.Value = c.Default
	s.controls[c.Name] = &c
	s.order = append(s.order, c.Name)
	return nil
}

// Undefine removes name, reporting whether it existed.
func (s *Store) Undefine(name string) bool {
	if _, ok := s.controls[name]; !ok {
		return false
	}
	delete(s.controls, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) lookup(name string, kind Kind) (*Control, error) {
	c, ok := s.controls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: %q is %s, not %s", ErrKindMismatch, name, c.Kind, kind)
	}
	return c, nil
}

func (s *Store) Float(name string) (float64, error) {
	c, err := s.lookup(name, KindFloat)
	if err != nil {
		return 0, err
	}
	return c.Value[0], nil
}

func (s *Store) Vec3(name string) ([3]float64, error) {
	c, err := s.lookup(name, KindVec3)
	if err != nil {
		return [3]float64{}, err
	}
	return c.Value, nil
}

// SetFloat stores v clamped to the control's range.
func (s *Store) SetFloat(name string, v float64) error {
	c, err := s.lookup(name, KindFloat)
	if err != nil {
		return err
	}
	if err := checkFinite(name, v); err != nil {
		return err
	}
	c.Value[0] = c.clamp(v)
	s.notify(name)
	return nil
}

func (s *Store) SetVec3(name string, v [3]float64) error {
	c, err := s.lookup(name, KindVec3)
	if err != nil {
		return err
	}
	if err := checkFinite(name, v[:]...); err != nil {
		return err
	}
	for i := range v {
		c.Value[i] = c.clamp(v[i])
	}
	s.notify(name)
	return nil
}

// SetComponent stores one component of any control. Index 0 is the only
// valid index for float controls.
func (s *Store) SetComponent(name string, index int, v float64) error {
	c, ok := s.controls[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	if index < 0 || index >= c.Kind.Dims() {
		return fmt.Errorf("%w: %q has no component %d", ErrKindMismatch, name, index)
	}
	if err := checkFinite(name, v); err != nil {
		return err
	}
	c.Value[index] = c.clamp(v)
	s.notify(name)
	return nil
}

// checkFinite rejects NaN and infinities; clamping cannot order NaN.
func checkFinite(name string, vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s value %v is not finite", ErrInvalidRange, name, v)
		}
	}
	return nil
}

// Reset restores every control to its default.
func (s *Store) Reset() {
	for _, name := range s.order {
		s.controls[name].Value = s.controls[name].Default
		s.notify(name)
	}
}

// Get returns a copy of the named control.
func (s *Store) Get(name string) (Control, bool) {
	c, ok := s.controls[name]
	if !ok {
		return Control{}, false
	}
	return *c, true
}

// Snapshot returns copies of every control in definition order.
func (s *Store) Snapshot() []Control {
	out := make([]Control, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.controls[name])
	}
	return out
}

// Folders returns the distinct folder names, with the root folder ("")
// first and the rest sorted.
func (s *Store) Folders() []string {
	seen := map[string]bool{}
	var named []string
	root := false
	for _, name := range s.order {
		f := s.controls[name].Folder
		if f == "" {
			root = true
			continue
		}
		if !seen[f] {
			seen[f] = true
			named = append(named, f)
		}
	}
	sort.Strings(named)
	if root {
		return append([]string{""}, named...)
	}
	return named
}

// OnChange registers fn to run after any value changes.
func (s *Store) OnChange(fn func(name string)) {
	if fn != nil {
		s.onChange = append(s.onChange, fn)
	}
}

func (s *Store) notify(name string) {
	for _, fn := range s.onChange {
		fn(name)
	}
}
