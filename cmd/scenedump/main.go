// Command scenedump mounts a scene without a window, advances it a number of
// ticks and prints the resulting node state as YAML.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/cubescene/common"
	"github.com/milk9111/cubescene/controls"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/ecs/entity"
	"github.com/milk9111/cubescene/ecs/system"
	"github.com/milk9111/cubescene/prefabs"
	"gopkg.in/yaml.v3"
)

type options struct {
	configPath string
	frames     int
	zoom       float64
	ambient    float64
	render     bool
	width      int
	height     int
}

type dump struct {
	Scene            string        `yaml:"scene"`
	Frames           int           `yaml:"frames"`
	CubeRotation     [3]float64    `yaml:"cube_rotation,flow"`
	CameraPosition   [3]float64    `yaml:"camera_position,flow"`
	PlaneSize        [3]float64    `yaml:"plane_size,flow"`
	AmbientIntensity float64       `yaml:"ambient_intensity"`
	Controls         []controlDump `yaml:"controls"`
	Render           *renderDump   `yaml:"render,omitempty"`
}

type controlDump struct {
	Name   string    `yaml:"name"`
	Folder string    `yaml:"folder,omitempty"`
	Value  []float64 `yaml:"value,flow"`
}

type renderDump struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Triangles int `yaml:"triangles"`
	Lines     int `yaml:"lines"`
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", prefabs.DefaultScene, "scene description (path on disk or name under prefabs/)")
	flag.IntVar(&opts.frames, "frames", 100, "ticks to advance")
	flag.Float64Var(&opts.zoom, "zoom", 0, "set the zoom control before ticking (0 keeps the default)")
	flag.Float64Var(&opts.ambient, "ambient", -1, "set ambientLightIntensity before ticking (negative keeps the default)")
	flag.BoolVar(&opts.render, "render", false, "also build one frame and report primitive counts")
	flag.IntVar(&opts.width, "w", common.BaseWidth, "render width")
	flag.IntVar(&opts.height, "h", common.BaseHeight, "render height")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(opts options, out io.Writer) error {
	d, err := simulate(opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("scenedump: encode: %w", err)
	}
	return enc.Close()
}

func simulate(opts options) (*dump, error) {
	if opts.frames < 0 {
		return nil, fmt.Errorf("scenedump: negative frame count %d", opts.frames)
	}
	spec, err := prefabs.LoadSceneSpec(opts.configPath)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	store := controls.NewStore()
	scene, err := entity.BuildScene(w, store, spec)
	if err != nil {
		return nil, err
	}

	if opts.zoom != 0 {
		if err := store.SetFloat("zoom", opts.zoom); err != nil {
			return nil, fmt.Errorf("scenedump: %w", err)
		}
	}
	if opts.ambient >= 0 {
		if err := store.SetFloat("ambientLightIntensity", opts.ambient); err != nil {
			return nil, fmt.Errorf("scenedump: %w", err)
		}
	}

	pipeline := system.NewPipeline(store, 1.0/60)
	for i := 0; i < opts.frames; i++ {
		pipeline.Update(w)
	}

	d := &dump{Scene: scene.Name, Frames: opts.frames}
	if t, ok := ecs.Get(w, scene.Cube, component.TransformComponent); ok {
		d.CubeRotation = t.Rotation.Array()
	}
	if t, ok := ecs.Get(w, scene.Camera, component.TransformComponent); ok {
		d.CameraPosition = t.Position.Array()
	}
	if m, ok := ecs.Get(w, scene.Plane, component.MeshComponent); ok {
		d.PlaneSize = m.Size.Array()
	}
	if l, ok := ecs.Get(w, scene.Ambient, component.AmbientLightComponent); ok {
		d.AmbientIntensity = l.Intensity
	}
	for _, c := range store.Snapshot() {
		d.Controls = append(d.Controls, controlDump{
			Name:   c.Name,
			Folder: c.Folder,
			Value:  append([]float64(nil), c.Value[:c.Kind.Dims()]...),
		})
	}

	if opts.render {
		list, ok := system.BuildRenderList(w, opts.width, opts.height)
		if !ok {
			return nil, fmt.Errorf("scenedump: nothing to render at %dx%d", opts.width, opts.height)
		}
		r := &renderDump{Width: opts.width, Height: opts.height}
		for _, p := range list.Primitives {
			if p.Line {
				r.Lines++
			} else {
				r.Triangles++
			}
		}
		d.Render = r
	}
	return d, nil
}
