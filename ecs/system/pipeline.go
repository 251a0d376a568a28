package system

import (
	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
)

// Pipeline is the per-tick system set. Orbit runs before the bindings so a
// bound camera axis always ends the tick at its control value.
type Pipeline struct {
	Scheduler *ecs.Scheduler
	Orbit     *OrbitSystem
	Script    *ScriptSystem
	Spin      *SpinSystem
	Binding   *BindingSystem
}

func NewPipeline(store *controls.Store, dt float64) *Pipeline {
	p := &Pipeline{
		Orbit:   NewOrbitSystem(),
		Script:  NewScriptSystem(dt),
		Spin:    NewSpinSystem(),
		Binding: NewBindingSystem(store),
	}
	p.Scheduler = ecs.NewScheduler(p.Orbit, p.Script, p.Spin, p.Binding)
	return p
}

func (p *Pipeline) Update(w *ecs.World) {
	p.Scheduler.Update(w)
}
