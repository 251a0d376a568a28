package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/cubescene/common"
	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/ecs/entity"
	"github.com/milk9111/cubescene/ecs/system"
	"github.com/milk9111/cubescene/prefabs"
)

type Game struct {
	configPath string
	showStats  bool

	world    *ecs.World
	store    *controls.Store
	spec     *prefabs.SceneSpec
	scene    *entity.Scene
	pipeline *system.Pipeline
	renderer *system.RenderSystem
	panel    *ControlPanel
	watcher  *prefabs.Watcher

	dragging         bool
	lastX, lastY     int
	screenW, screenH float64
}

func NewGame(configPath string, watch, showStats bool) (*Game, error) {
	spec, err := prefabs.LoadSceneSpec(configPath)
	if err != nil {
		return nil, err
	}

	g := &Game{
		configPath: configPath,
		showStats:  showStats,
		world:      ecs.NewWorld(),
		store:      controls.NewStore(),
		renderer:   system.NewRenderSystem(),
		screenW:    common.BaseWidth,
		screenH:    common.BaseHeight,
	}
	g.pipeline = system.NewPipeline(g.store, 1/float64(ebiten.TPS()))
	g.store.OnChange(func(string) {
		if g.panel != nil {
			g.panel.Invalidate()
		}
	})

	if err := g.mount(spec); err != nil {
		return nil, err
	}

	if watch {
		dirs := watchDirs(configPath)
		w, err := prefabs.NewWatcher(dirs...)
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			log.Printf("watching %v", dirs)
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) mount(spec *prefabs.SceneSpec) error {
	scene, err := entity.BuildScene(g.world, g.store, spec)
	if err != nil {
		return err
	}
	g.spec = spec
	g.scene = scene
	g.panel = NewControlPanel(g.store)
	return nil
}

// reload swaps in the scene from disk. The old scene stays mounted when the
// new one fails to load.
func (g *Game) reload() {
	spec, err := prefabs.LoadSceneSpec(g.configPath)
	if err != nil {
		log.Printf("reload %s: %v", g.configPath, err)
		return
	}

	g.scene.Unmount(g.world)
	if err := g.mount(spec); err != nil {
		log.Printf("reload %s: %v", g.configPath, err)
		if err := g.mount(g.spec); err != nil {
			log.Printf("restore previous scene: %v", err)
		}
		return
	}
	g.pipeline.Script.Invalidate("")
	log.Printf("reloaded %s", g.configPath)
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("watch: %v", err)
		}
	default:
	}

	sceneChanged := false
	for _, c := range g.watcher.Drain() {
		switch c.Kind {
		case prefabs.SceneChanged:
			sceneChanged = true
		case prefabs.ScriptChanged:
			g.pipeline.Script.Invalidate(c.Path)
		}
	}
	if sceneChanged {
		g.reload()
	}
}

// sampleInput turns pointer drag and wheel into orbit input for the camera.
// The panel swallows input while hovered.
func (g *Game) sampleInput() {
	in, ok := ecs.Get(g.world, g.scene.Camera, component.OrbitInputComponent)
	if !ok {
		return
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && !ebuiinput.UIHovered {
		g.dragging = true
		g.lastX, g.lastY = x, y
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = false
	}
	if g.dragging {
		in.DragX += float64(x-g.lastX) / g.screenH
		in.DragY += float64(y-g.lastY) / g.screenH
		g.lastX, g.lastY = x, y
	}

	if !ebuiinput.UIHovered {
		_, wy := ebiten.Wheel()
		in.Wheel += wy
	}
}

func (g *Game) Update() error {
	g.panel.Update()
	g.drainWatcher()
	g.sampleInput()
	g.pipeline.Update(g.world)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(g.world, screen)
	g.panel.UI.Draw(screen)

	if g.showStats {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  TPS: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.screenW, g.screenH = outsideWidth, outsideHeight
	}
	return g.screenW, g.screenH
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func watchDirs(configPath string) []string {
	candidates := []string{"prefabs", filepath.Join("prefabs", "scripts")}
	if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
		candidates = append(candidates, filepath.Dir(configPath))
	}

	seen := map[string]bool{}
	var dirs []string
	for _, dir := range candidates {
		abs, err := filepath.Abs(dir)
		if err != nil || seen[abs] {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	}
	return dirs
}
