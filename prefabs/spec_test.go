package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/milk9111/cubescene/controls"
)

func TestLoadDefaultScene(t *testing.T) {
	spec, err := LoadSceneSpec(DefaultScene)
	if err != nil {
		t.Fatalf("load default scene: %v", err)
	}

	if spec.ClearColor.RGBA != (color.RGBA{0xcc, 0xcc, 0xcc, 0xff}) {
		t.Fatalf("clear color = %v", spec.ClearColor.RGBA)
	}
	cam := spec.Camera
	if cam.Position != [3]float64{0, 7, 0} || cam.Fov != 75 || cam.Near != 0.1 || cam.Far != 1000 || cam.Zoom != 1 {
		t.Fatalf("unexpected camera %+v", cam)
	}
	if cam.Up == nil || *cam.Up != [3]float64{0, 1, 0} {
		t.Fatalf("camera up not defaulted: %v", cam.Up)
	}
	if spec.Fog == nil || spec.Fog.Color.RGBA != (color.RGBA{0xff, 0x69, 0xb4, 0xff}) || spec.Fog.Near != 1 || spec.Fog.Far != 10 {
		t.Fatalf("unexpected fog %+v", spec.Fog)
	}
	if spec.PointLight.Position != [3]float64{0, 7, 0} || spec.PointLight.Intensity != 1 {
		t.Fatalf("unexpected point light %+v", spec.PointLight)
	}

	meshes := map[string]MeshSpec{}
	for _, m := range spec.Meshes {
		meshes[m.Name] = m
	}
	cube, ok := meshes["cube"]
	if !ok || cube.Size != [3]float64{1, 1, 1} || cube.Color.RGBA != (color.RGBA{0x03, 0x91, 0xba, 0xff}) {
		t.Fatalf("unexpected cube %+v", cube)
	}
	if cube.Spin == nil || *cube.Spin != [3]float64{0.01, 0.01, 0} {
		t.Fatalf("cube spin = %v", cube.Spin)
	}
	plane, ok := meshes["plane"]
	if !ok || plane.Color.RGBA != (color.RGBA{0x99, 0x11, 0x22, 0xff}) {
		t.Fatalf("unexpected plane %+v", plane)
	}

	byName := map[string]controls.Control{}
	for _, c := range spec.Controls {
		byName[c.Name] = c.Control()
	}
	zoom := byName["zoom"]
	if zoom.Kind != controls.KindFloat || zoom.Min != 4 || zoom.Max != 7 || zoom.Default[0] != 7 || zoom.Folder != "Camera Settings" {
		t.Fatalf("unexpected zoom control %+v", zoom)
	}
	size := byName["planeSize"]
	if size.Kind != controls.KindVec3 || size.Default != [3]float64{10, 0.02, 10} {
		t.Fatalf("unexpected planeSize control %+v", size)
	}
	amb := byName["ambientLightIntensity"]
	if amb.Min != 0 || amb.Max != 2 || amb.Default[0] != 1 {
		t.Fatalf("unexpected ambient control %+v", amb)
	}
}

func TestParseSceneSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad_clip_planes",
			yaml: "camera: {near: 5, far: 1}\n",
			want: "clip planes",
		},
		{
			name: "duplicate_mesh",
			yaml: "meshes:\n  - {name: cube}\n  - {name: cube}\n",
			want: "duplicate mesh",
		},
		{
			name: "undefined_control",
			yaml: "camera:\n  bindings: [{control: zoom, property: position.y}]\n",
			want: "undefined control",
		},
		{
			name: "kind_mismatch",
			yaml: "controls: [{name: zoom, min: 4, max: 7, value: 7}]\n" +
				"meshes:\n  - name: plane\n    bindings: [{control: zoom, property: size}]\n",
			want: "binds float control",
		},
		{
			name: "unknown_property",
			yaml: "controls: [{name: zoom, min: 4, max: 7, value: 7}]\n" +
				"camera:\n  bindings: [{control: zoom, property: rotation.q}]\n",
			want: "unknown property",
		},
		{
			name: "inverted_fog",
			yaml: "fog: {color: hotpink, near: 10, far: 1}\n",
			want: "fog",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSceneSpec([]byte(tc.yaml))
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseSceneSpecDecodeErrors(t *testing.T) {
	for _, doc := range []string{
		"clear_color: notacolor\n",
		"controls: [{name: v, value: [1, 2]}]\n",
		"controls: [{name: v, value: {a: 1}}]\n",
	} {
		if _, err := ParseSceneSpec([]byte(doc)); err == nil {
			t.Fatalf("expected decode error for %q", doc)
		}
	}
}

func TestDefaultsFilled(t *testing.T) {
	spec, err := ParseSceneSpec([]byte("grid_helper: {}\naxes_helper: {}\nmeshes: [{name: box}]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if spec.GridHelper.Size != 10 || spec.GridHelper.Divisions != 10 {
		t.Fatalf("grid defaults %+v", spec.GridHelper)
	}
	if spec.AxesHelper.Size != 1 {
		t.Fatalf("axes default %v", spec.AxesHelper.Size)
	}
	if *spec.Meshes[0].Scale != [3]float64{1, 1, 1} || spec.Meshes[0].Color.RGBA != white {
		t.Fatalf("mesh defaults %+v", spec.Meshes[0])
	}
	if spec.PointLight.Decay == nil || *spec.PointLight.Decay != 2 {
		t.Fatalf("decay default %v", spec.PointLight.Decay)
	}
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"bob.tengo", "scripts/bob.tengo", "prefabs/scripts/bob.tengo"} {
		data, err := LoadScript(name)
		if err != nil {
			t.Fatalf("LoadScript(%q): %v", name, err)
		}
		if !strings.Contains(string(data), "update") {
			t.Fatalf("LoadScript(%q) returned unexpected source", name)
		}
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestSceneScriptExample(t *testing.T) {
	data, err := Load(DefaultScene)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Uncomment the scripted mesh example.
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# - name:") || strings.HasPrefix(trimmed, "#   ") {
			line = strings.Replace(line, "# ", "", 1)
		}
		lines = append(lines, line)
	}

	spec, err := ParseSceneSpec([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("parse scene with the script example: %v", err)
	}
	var script string
	for _, m := range spec.Meshes {
		if m.Script != "" {
			script = m.Script
		}
	}
	if script == "" {
		t.Fatalf("no scripted mesh in the uncommented example")
	}
	if _, err := LoadScript(script); err != nil {
		t.Fatalf("LoadScript(%q): %v", script, err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		event  fsnotify.Event
		ok     bool
		expect ChangeKind
	}{
		{"yaml_write", fsnotify.Event{Name: "scene.yaml", Op: fsnotify.Write}, true, SceneChanged},
		{"yml_create", fsnotify.Event{Name: "x.YML", Op: fsnotify.Create}, true, SceneChanged},
		{"script_rename", fsnotify.Event{Name: "scripts/bob.tengo", Op: fsnotify.Rename}, true, ScriptChanged},
		{"chmod_ignored", fsnotify.Event{Name: "scene.yaml", Op: fsnotify.Chmod}, false, 0},
		{"other_file", fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := classify(tc.event)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && (c.Kind != tc.expect || c.Path != tc.event.Name) {
				t.Fatalf("unexpected change %+v", c)
			}
		})
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("name: edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Events:
		if c.Path != path || c.Kind != SceneChanged {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported for %s", path)
	}
}

func TestWatcherReportsLastOfSeveralWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "scene.yaml")
	// The writes span several debounce windows but never pause for a whole one.
	bodies := []string{"na", "name", "name: ", "name: wh", "name: whole", "name: whole\n"}
	for _, body := range bodies {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(debounce / 2)
	}

	select {
	case c := <-w.Events:
		if c.Path != path || c.Kind != SceneChanged {
			t.Fatalf("unexpected change %+v", c)
		}
		data, err := os.ReadFile(c.Path)
		if err != nil || string(data) != "name: whole\n" {
			t.Fatalf("change reported before the last write: %q, %v", data, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported for %s", path)
	}

	select {
	case c := <-w.Events:
		t.Fatalf("burst reported twice, extra %+v", c)
	case <-time.After(3 * debounce):
	}
}
