package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/cubescene/controls"
	"golang.org/x/image/font/basicfont"
)

const panelWidth = 280

var (
	panelTextColor  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	folderTextColor = color.NRGBA{R: 0x9a, G: 0xc8, B: 0xff, A: 0xff}
)

var axisSuffix = [3]string{".x", ".y", ".z"}

// sliderRow ties one slider to one component of a control.
type sliderRow struct {
	name   string
	index  int
	title  string
	slider *widget.Slider
	label  *widget.Text
}

// ControlPanel is the debug panel: a labelled slider per control component,
// grouped by folder, and a Reset button.
type ControlPanel struct {
	UI    *ebitenui.UI
	store *controls.Store
	rows  []*sliderRow
	dirty bool
}

func NewControlPanel(store *controls.Store) *ControlPanel {
	p := &ControlPanel{store: store}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x18, G: 0x1c, B: 0x20, A: 220})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 255})
	trackImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x3a, G: 0x3f, B: 0x44, A: 255})
	handleImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x7b, B: 0xff, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)

	stretch := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})
	snapshot := p.store.Snapshot()
	for _, folder := range p.store.Folders() {
		if folder != "" {
			panel.AddChild(widget.NewText(
				widget.TextOpts.Text(folder, &face, folderTextColor),
				widget.TextOpts.WidgetOpts(stretch),
			))
		}
		for _, c := range snapshot {
			if c.Folder != folder {
				continue
			}
			for i := 0; i < c.Kind.Dims(); i++ {
				row := &sliderRow{name: c.Name, index: i, title: c.Name}
				if c.Kind == controls.KindVec3 {
					row.title += axisSuffix[i]
				}
				row.label = widget.NewText(
					widget.TextOpts.Text(rowLabel(row.title, c.Value[i]), &face, panelTextColor),
					widget.TextOpts.WidgetOpts(stretch),
				)
				row.slider = widget.NewSlider(
					widget.SliderOpts.Direction(widget.DirectionHorizontal),
					widget.SliderOpts.MinMax(0, c.MaxTicks()),
					widget.SliderOpts.InitialCurrent(c.Ticks(c.Value[i])),
					widget.SliderOpts.Images(
						&widget.SliderTrackImage{Idle: trackImg, Hover: trackImg},
						&widget.ButtonImage{Idle: handleImg, Hover: handleImg, Pressed: handleImg},
					),
					widget.SliderOpts.FixedHandleSize(8),
					widget.SliderOpts.WidgetOpts(stretch, widget.WidgetOpts.MinSize(panelWidth-24, 12)),
					widget.SliderOpts.ChangedHandler(p.sliderChanged(row)),
				)
				p.rows = append(p.rows, row)
				panel.AddChild(row.label)
				panel.AddChild(row.slider)
			}
		}
	}

	panel.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
		widget.ButtonOpts.Text("Reset", &face, &widget.ButtonTextColor{Idle: panelTextColor}),
		widget.ButtonOpts.WidgetOpts(stretch),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			p.store.Reset()
		}),
	))

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(&widget.Insets{Top: 8, Right: 8}),
		)),
	)
	root.AddChild(panel)

	p.UI = &ebitenui.UI{Container: root}
	return p
}

func (p *ControlPanel) sliderChanged(row *sliderRow) widget.SliderChangedHandlerFunc {
	return func(args *widget.SliderChangedEventArgs) {
		c, ok := p.store.Get(row.name)
		if !ok || row.index >= c.Kind.Dims() {
			return
		}
		// Programmatic moves from Sync land on the stored value already.
		if args.Current == c.Ticks(c.Value[row.index]) {
			return
		}
		_ = p.store.SetComponent(row.name, row.index, c.FromTicks(args.Current))
	}
}

// Sync moves sliders and labels to the stored values. Edits that do not come
// from the panel, such as Reset or a scene reload, show up this way.
func (p *ControlPanel) Sync() {
	for _, row := range p.rows {
		c, ok := p.store.Get(row.name)
		if !ok || row.index >= c.Kind.Dims() {
			continue
		}
		v := c.Value[row.index]
		if t := c.Ticks(v); row.slider.Current != t {
			row.slider.Current = t
		}
		row.label.Label = rowLabel(row.title, v)
	}
}

// Invalidate marks the panel stale; the next Update syncs it.
func (p *ControlPanel) Invalidate() {
	p.dirty = true
}

func (p *ControlPanel) Update() {
	p.UI.Update()
	if p.dirty {
		p.dirty = false
		p.Sync()
	}
}

func rowLabel(title string, v float64) string {
	return fmt.Sprintf("%s  %.2f", title, v)
}
