package system

import (
	"image/color"
	"sort"

	"github.com/chewxy/math32"
	"github.com/milk9111/cubescene/common"
	"github.com/milk9111/cubescene/ecs"
	"github.com/milk9111/cubescene/ecs/component"
	"github.com/milk9111/cubescene/linear"
)

const maxFaceSegments = 16

// Primitive is a screen-space triangle or line segment ready to paint.
type Primitive struct {
	Points [3][2]float32
	// Line primitives use the first two points.
	Line  bool
	Color color.RGBA
	// Depth is the view distance of the primitive's centre, used for
	// back-to-front ordering.
	Depth float32
}

// RenderList is everything one frame paints, farthest primitive first.
type RenderList struct {
	Clear      color.RGBA
	Primitives []Primitive
}

type view struct {
	eye    linear.V3
	view   linear.M4
	proj   linear.M4
	near   float32
	far    float32
	width  float32
	height float32
}

type lighting struct {
	ambient [3]float32
	points  []pointLight
	fog     *component.Fog
}

type pointLight struct {
	pos       linear.V3
	color     [3]float32
	intensity float32
	distance  float32
	decay     float32
}

// BuildRenderList projects the world through its first camera. It reports
// false when there is no camera or the target size is empty. The world is
// only read.
func BuildRenderList(w *ecs.World, width, height int) (RenderList, bool) {
	if w == nil || width <= 0 || height <= 0 {
		return RenderList{}, false
	}
	camEntity, cam, ok := ecs.First(w, component.CameraComponent)
	if !ok {
		return RenderList{}, false
	}
	camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent)
	if !ok {
		return RenderList{}, false
	}

	v := newView(camTransform, cam, width, height)
	lights := collectLights(w)
	list := RenderList{Clear: cam.ClearColor}

	ecs.ForEach2(w, component.TransformComponent, component.MeshComponent, func(_ ecs.Entity, t *component.Transform, m *component.Mesh) {
		list.Primitives = v.appendMesh(list.Primitives, t, m, &lights)
	})
	ecs.ForEach2(w, component.TransformComponent, component.GridHelperComponent, func(_ ecs.Entity, t *component.Transform, g *component.GridHelper) {
		list.Primitives = v.appendGrid(list.Primitives, t, g, &lights)
	})
	ecs.ForEach2(w, component.TransformComponent, component.AxesHelperComponent, func(_ ecs.Entity, t *component.Transform, a *component.AxesHelper) {
		list.Primitives = v.appendAxes(list.Primitives, t, a, &lights)
	})

	sort.SliceStable(list.Primitives, func(i, j int) bool {
		return list.Primitives[i].Depth > list.Primitives[j].Depth
	})
	return list, true
}

func newView(t *component.Transform, cam *component.Camera, width, height int) *view {
	up := linear.Vec3(cam.Up.X, cam.Up.Y, cam.Up.Z)
	if up == (linear.V3{}) {
		up = linear.V3{0, 1, 0}
	}
	v := &view{
		eye:    linear.Vec3(t.Position.X, t.Position.Y, t.Position.Z),
		near:   float32(cam.Near),
		far:    float32(cam.Far),
		width:  float32(width),
		height: float32(height),
	}
	v.view.LookAt(v.eye, linear.Vec3(cam.Target.X, cam.Target.Y, cam.Target.Z), up)
	fov := linear.ZoomedFov(linear.Radians(float32(cam.FovY)), float32(cam.Zoom))
	v.proj.Perspective(fov, v.width/v.height, v.near, v.far)
	return v
}

func collectLights(w *ecs.World) lighting {
	var l lighting
	ecs.ForEach(w, component.AmbientLightComponent, func(_ ecs.Entity, a *component.AmbientLight) {
		c := colorVec(a.Color)
		for i := range l.ambient {
			l.ambient[i] += c[i] * float32(a.Intensity)
		}
	})
	ecs.ForEach2(w, component.TransformComponent, component.PointLightComponent, func(_ ecs.Entity, t *component.Transform, p *component.PointLight) {
		l.points = append(l.points, pointLight{
			pos:       linear.Vec3(t.Position.X, t.Position.Y, t.Position.Z),
			color:     colorVec(p.Color),
			intensity: float32(p.Intensity),
			distance:  float32(p.Distance),
			decay:     float32(p.Decay),
		})
	})
	if _, fog, ok := ecs.First(w, component.FogComponent); ok {
		l.fog = fog
	}
	return l
}

// model builds the transform of a unit box or helper scaled by extent.
func model(t *component.Transform, extent linear.V3) linear.M4 {
	scale := linear.Vec3(orOne(t.Scale.X), orOne(t.Scale.Y), orOne(t.Scale.Z))
	for i := range scale {
		scale[i] *= extent[i]
	}
	var m linear.M4
	m.Compose(
		linear.Vec3(t.Position.X, t.Position.Y, t.Position.Z),
		linear.Vec3(t.Rotation.X, t.Rotation.Y, t.Rotation.Z),
		scale,
	)
	return m
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func (v *view) appendMesh(out []Primitive, t *component.Transform, mesh *component.Mesh, l *lighting) []Primitive {
	size := linear.Vec3(mesh.Size.X, mesh.Size.Y, mesh.Size.Z)
	m := model(t, size)
	scale := linear.Vec3(orOne(t.Scale.X)*mesh.Size.X, orOne(t.Scale.Y)*mesh.Size.Y, orOne(t.Scale.Z)*mesh.Size.Z)
	base := colorVec(mesh.Color)

	for axis := 0; axis < 3; axis++ {
		u, w := (axis+1)%3, (axis+2)%3
		segments := mesh.Segments
		if segments <= 0 {
			extent := math32.Max(math32.Abs(scale[u]), math32.Abs(scale[w]))
			segments = int(math32.Ceil(extent))
		}
		segments = max(1, min(segments, maxFaceSegments))

		for _, sign := range [2]float32{-1, 1} {
			var normal linear.V3
			normal[axis] = sign
			faceNormal := m.Dir(normal)

			corner := func(i, j int) linear.V3 {
				var p linear.V3
				p[axis] = 0.5 * sign
				p[u] = float32(i)/float32(segments) - 0.5
				p[w] = float32(j)/float32(segments) - 0.5
				return m.Point(p)
			}
			for i := 0; i < segments; i++ {
				for j := 0; j < segments; j++ {
					p00, p10, p11, p01 := corner(i, j), corner(i+1, j), corner(i+1, j+1), corner(i, j+1)
					out = v.appendTriangle(out, [3]linear.V3{p00, p10, p11}, faceNormal, base, l)
					out = v.appendTriangle(out, [3]linear.V3{p00, p11, p01}, faceNormal, base, l)
				}
			}
		}
	}
	return out
}

// appendTriangle culls, lights, fogs, clips and projects one world-space
// triangle.
func (v *view) appendTriangle(out []Primitive, tri [3]linear.V3, faceNormal linear.V3, base [3]float32, l *lighting) []Primitive {
	n := linear.Cross(linear.SubV3(tri[1], tri[0]), linear.SubV3(tri[2], tri[0]))
	if linear.LenV3(n) == 0 {
		return out
	}
	if linear.DotV3(n, faceNormal) < 0 {
		n = linear.ScaleV3(-1, n)
	}
	if linear.DotV3(n, linear.SubV3(v.eye, tri[0])) <= 0 {
		return out
	}
	n = linear.NormV3(n)

	center := linear.ScaleV3(1.0/3, linear.AddV3(linear.AddV3(tri[0], tri[1]), tri[2]))
	shade := l.shade(base, center, n)

	var viewTri [3]linear.V3
	for i, p := range tri {
		viewTri[i] = v.view.Point(p)
	}
	depth := -v.view.Point(center)[2]
	if viewTri[0][2] < -v.far && viewTri[1][2] < -v.far && viewTri[2][2] < -v.far {
		return out
	}
	clr := l.fogged(shade, depth)

	poly := clipNear(viewTri[:], v.near)
	if len(poly) < 3 {
		return out
	}
	screen := make([][2]float32, len(poly))
	for i, p := range poly {
		screen[i] = v.project(p)
	}
	for i := 2; i < len(screen); i++ {
		out = append(out, Primitive{
			Points: [3][2]float32{screen[0], screen[i-1], screen[i]},
			Color:  clr,
			Depth:  depth,
		})
	}
	return out
}

func (v *view) appendLine(out []Primitive, a, b linear.V3, clr color.RGBA, l *lighting) []Primitive {
	va, vb := v.view.Point(a), v.view.Point(b)
	mid := linear.LerpV3(va, vb, 0.5)
	seg := clipNear([]linear.V3{va, vb}, v.near)
	if len(seg) != 2 {
		return out
	}
	depth := -mid[2]
	return append(out, Primitive{
		Points: [3][2]float32{v.project(seg[0]), v.project(seg[1])},
		Line:   true,
		Color:  l.fogged(colorVec(clr), depth),
		Depth:  depth,
	})
}

// appendGrid draws (divisions+1) lines along each horizontal axis. Lines are
// cut at every crossing so they sort against the meshes they pass through.
func (v *view) appendGrid(out []Primitive, t *component.Transform, g *component.GridHelper, l *lighting) []Primitive {
	if g.Divisions <= 0 || g.Size <= 0 {
		return out
	}
	m := model(t, linear.V3{1, 1, 1})
	half := float32(g.Size) / 2
	step := float32(g.Size) / float32(g.Divisions)
	center := g.Divisions / 2

	for i := 0; i <= g.Divisions; i++ {
		k := -half + float32(i)*step
		clr := g.GridColor
		if i == center {
			clr = g.CenterColor
		}
		for s := 0; s < g.Divisions; s++ {
			a, b := -half+float32(s)*step, -half+float32(s+1)*step
			out = v.appendLine(out, m.Point(linear.V3{a, 0, k}), m.Point(linear.V3{b, 0, k}), clr, l)
			out = v.appendLine(out, m.Point(linear.V3{k, 0, a}), m.Point(linear.V3{k, 0, b}), clr, l)
		}
	}
	return out
}

var axisColors = [3]color.RGBA{
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
}

func (v *view) appendAxes(out []Primitive, t *component.Transform, a *component.AxesHelper, l *lighting) []Primitive {
	if a.Size <= 0 {
		return out
	}
	m := model(t, linear.V3{1, 1, 1})
	origin := m.Point(linear.V3{})
	for axis, clr := range axisColors {
		var tip linear.V3
		tip[axis] = float32(a.Size)
		out = v.appendLine(out, origin, m.Point(tip), clr, l)
	}
	return out
}

func (v *view) project(p linear.V3) [2]float32 {
	c := v.proj.MulV4(linear.V4{p[0], p[1], p[2], 1})
	x, y := c[0]/c[3], c[1]/c[3]
	return [2]float32{(x + 1) * 0.5 * v.width, (1 - y) * 0.5 * v.height}
}

// clipNear keeps the part of a view-space polygon (or segment) in front of
// the near plane z = -near.
func clipNear(poly []linear.V3, near float32) []linear.V3 {
	inside := func(p linear.V3) bool { return p[2] <= -near }
	intersect := func(a, b linear.V3) linear.V3 {
		t := (-near - a[2]) / (b[2] - a[2])
		return linear.LerpV3(a, b, t)
	}

	if len(poly) == 2 {
		a, b := poly[0], poly[1]
		switch {
		case inside(a) && inside(b):
			return poly
		case inside(a):
			return []linear.V3{a, intersect(a, b)}
		case inside(b):
			return []linear.V3{intersect(a, b), b}
		}
		return nil
	}

	out := make([]linear.V3, 0, len(poly)+1)
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		switch {
		case inside(cur) && inside(prev):
			out = append(out, cur)
		case inside(cur):
			out = append(out, intersect(prev, cur), cur)
		case inside(prev):
			out = append(out, intersect(prev, cur))
		}
	}
	return out
}

// shade is Lambert lighting: ambient plus every point light's diffuse term.
func (l *lighting) shade(base [3]float32, p, n linear.V3) [3]float32 {
	light := l.ambient
	for _, pl := range l.points {
		dir := linear.SubV3(pl.pos, p)
		d := linear.LenV3(dir)
		if d == 0 {
			continue
		}
		ndl := linear.DotV3(n, linear.ScaleV3(1/d, dir))
		if ndl <= 0 {
			continue
		}
		k := ndl * pl.intensity * attenuation(d, pl.distance, pl.decay)
		for i := range light {
			light[i] += pl.color[i] * k
		}
	}
	var out [3]float32
	for i := range out {
		out[i] = math32.Min(1, base[i]*light[i])
	}
	return out
}

func attenuation(d, distance, decay float32) float32 {
	if distance <= 0 {
		return 1
	}
	return math32.Pow(math32.Max(0, math32.Min(1, 1-d/distance)), decay)
}

func (l *lighting) fogged(c [3]float32, depth float32) color.RGBA {
	if l.fog != nil {
		f := common.Smoothstep(float32(l.fog.Near), float32(l.fog.Far), depth)
		fc := colorVec(l.fog.Color)
		for i := range c {
			c[i] = common.Lerp(c[i], fc[i], f)
		}
	}
	return color.RGBA{R: unit8(c[0]), G: unit8(c[1]), B: unit8(c[2]), A: 0xff}
}

func colorVec(c color.RGBA) [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func unit8(v float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, v)) * 255))
}
