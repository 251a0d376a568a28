package system

import (
	"math"

	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
)

const (
	orbitPolarEpsilon = 1e-6
	// orbitDollyBase is the radius factor applied per wheel notch at zoom
	// speed 1.
	orbitDollyBase = 0.95
)

// OrbitSystem rotates cameras around their target from the sampled pointer
// input and dollies them with the wheel. It consumes the input every tick.
type OrbitSystem struct{}

func NewOrbitSystem() *OrbitSystem {
	return &OrbitSystem{}
}

func (o *OrbitSystem) Update(w *ecs.World) {
	ecs.ForEach3(w, component.TransformComponent, component.CameraComponent, component.OrbitControlsComponent,
		func(e ecs.Entity, t *component.Transform, cam *component.Camera, ctl *component.OrbitControls) {
			in, ok := ecs.Get(w, e, component.OrbitInputComponent)
			if !ok {
				return
			}
			input := *in
			*in = component.OrbitInput{}
			if !ctl.Enabled || (input.DragX == 0 && input.DragY == 0 && input.Wheel == 0) {
				return
			}
			t.Position = orbit(t.Position, cam.Target, *ctl, input)
		})
}

// orbit moves pos on the sphere around target. A camera sitting exactly on
// the polar axis keeps its azimuth at zero.
func orbit(pos, target component.Vec3, ctl component.OrbitControls, in component.OrbitInput) component.Vec3 {
	dx, dy, dz := pos.X-target.X, pos.Y-target.Y, pos.Z-target.Z
	radius := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if radius == 0 {
		return pos
	}
	theta := math.Atan2(dx, dz)
	phi := math.Acos(clampUnit(dy / radius))

	theta -= 2 * math.Pi * in.DragX * ctl.RotateSpeed
	phi -= 2 * math.Pi * in.DragY * ctl.RotateSpeed
	phi = math.Max(orbitPolarEpsilon, math.Min(math.Pi-orbitPolarEpsilon, phi))

	if in.Wheel != 0 {
		radius *= math.Pow(orbitDollyBase, in.Wheel*ctl.ZoomSpeed)
	}
	if ctl.MaxDistance > ctl.MinDistance {
		radius = math.Max(ctl.MinDistance, math.Min(ctl.MaxDistance, radius))
	}

	sinPhi := math.Sin(phi)
	return component.Vec3{
		X: target.X + radius*sinPhi*math.Sin(theta),
		Y: target.Y + radius*math.Cos(phi),
		Z: target.Z + radius*sinPhi*math.Cos(theta),
	}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
