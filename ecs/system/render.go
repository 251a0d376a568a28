package system

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/cubescene/ecs"
)

const (
	lineWidth = 1
	// Indices are uint16.
	maxBatchVertices = 1 << 15
)

// RenderSystem paints the world through its camera. Draw never mutates the
// world, so drawing twice without a tick produces the same frame.
type RenderSystem struct {
	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || screen == nil {
		return
	}
	b := screen.Bounds()
	list, ok := BuildRenderList(w, b.Dx(), b.Dy())
	if !ok {
		return
	}
	screen.Fill(list.Clear)
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	// Consecutive triangles share one draw call; a line ends the batch so
	// the back-to-front order holds.
	for _, p := range list.Primitives {
		if p.Line {
			r.flush(screen)
			vector.StrokeLine(screen, p.Points[0][0], p.Points[0][1], p.Points[1][0], p.Points[1][1], lineWidth, p.Color, true)
			continue
		}
		if len(r.vertices)+3 > maxBatchVertices {
			r.flush(screen)
		}
		cr, cg, cb := float32(p.Color.R)/255, float32(p.Color.G)/255, float32(p.Color.B)/255
		base := uint16(len(r.vertices))
		for _, pt := range p.Points {
			r.vertices = append(r.vertices, ebiten.Vertex{
				DstX:   pt[0],
				DstY:   pt[1],
				SrcX:   1,
				SrcY:   1,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: 1,
			})
		}
		r.indices = append(r.indices, base, base+1, base+2)
	}
	r.flush(screen)
}

func (r *RenderSystem) flush(screen *ebiten.Image) {
	if len(r.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(r.vertices, r.indices, r.white, op)
	r.vertices = r.vertices[:0]
	r.indices = r.indices[:0]
}
