// Native PNG rendering of linkage frames.
// Draws at 4x and downsamples for smoother output.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/linkage-toolkit/pkg/geom"
	"github.com/ha1tch/linkage-toolkit/pkg/linkage"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width       int
	Height      int
	Padding     int
	PointRadius int  // marker radius in output pixels
	FontSize    int  // label size in points
	Labels      bool // draw point ids
	Title       string
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:       800,
		Height:      600,
		Padding:     40,
		PointRadius: 5,
		FontSize:    12,
		Labels:      true,
	}
}

const supersample = 4

// renderContext holds rendering parameters including scale
type renderContext struct {
	img       *image.RGBA
	scale     float64 // multiplier for line thickness, marker size
	lineWidth float64
	face      font.Face
}

func newRenderContext(img *image.RGBA, scale, fontSize int) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone, // supersampled instead
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return &renderContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: float64(scale) * 2,
		face:      face,
	}, nil
}

// PNG renders a frame into an image. Create one per frame with NewPNG,
// draw into it, then Encode.
type PNG struct {
	opts PNGOptions
	view View // canvas -> supersampled pixels
	ctx  *renderContext
}

var _ Renderer = (*PNG)(nil)

// NewPNG prepares a white canvas whose view fits scene.
func NewPNG(opts PNGOptions, scene []geom.Point) (*PNG, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	w, h := opts.Width*supersample, opts.Height*supersample
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(ColorBackground), image.Point{}, draw.Src)

	ctx, err := newRenderContext(img, supersample, opts.FontSize)
	if err != nil {
		return nil, err
	}

	titleSpace := 0
	if opts.Title != "" {
		titleSpace = opts.FontSize * 3
	}
	view := Fit(scene, opts.Width, opts.Height-titleSpace, opts.Padding)
	view.Scale *= supersample
	view.Offset = geom.Pt(view.Offset.X*supersample, (view.Offset.Y+float64(titleSpace))*supersample)

	p := &PNG{opts: opts, view: view, ctx: ctx}
	if opts.Title != "" {
		drawTextCentered(ctx, w/2, opts.FontSize*2*supersample, opts.Title, ColorBar)
	}
	return p, nil
}

// Encode downsamples the frame and writes it as PNG.
func (p *PNG) Encode(w io.Writer) error {
	final := image.NewRGBA(image.Rect(0, 0, p.opts.Width, p.opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), p.ctx.img, p.ctx.img.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func (p *PNG) DrawLinkage(positions map[string]geom.Point, topo linkage.Topology) {
	for _, e := range topo.Edges() {
		a, okA := positions[e[0]]
		b, okB := positions[e[1]]
		if !okA || !okB {
			continue
		}
		x1, y1 := p.view.Apply(a)
		x2, y2 := p.view.Apply(b)
		drawLine(p.ctx, x1, y1, x2, y2, ColorBar)
	}
	r := float64(p.opts.PointRadius) * p.ctx.scale
	for _, id := range topo.Points {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		x, y := p.view.Apply(pos)
		c := PointColor(id, topo)
		if topo.IsGround(id) {
			fillRect(p.ctx, x-r, y-r, 2*r, 2*r, c)
		} else {
			drawCircle(p.ctx, x, y, r, c, c)
		}
		if p.opts.Labels {
			drawTextCentered(p.ctx, int(x), int(y-2.5*r), id, ColorBar)
		}
	}
}

func (p *PNG) DrawLines(pts []geom.Point, opts LineOptions) {
	lc := colorOr(opts.LineColor, ColorBar)
	for i := 1; i < len(pts); i++ {
		x1, y1 := p.view.Apply(pts[i-1])
		x2, y2 := p.view.Apply(pts[i])
		drawLine(p.ctx, x1, y1, x2, y2, lc)
	}
	if opts.DrawPoints {
		pc := colorOr(opts.PointColor, lc)
		r := float64(p.opts.PointRadius) * p.ctx.scale / 2
		for _, pt := range pts {
			x, y := p.view.Apply(pt)
			drawCircle(p.ctx, x, y, r, pc, pc)
		}
	}
}

func (p *PNG) DrawPoint(pt geom.Point, opts PointOptions) {
	r := float64(p.opts.PointRadius) * p.ctx.scale
	if opts.Radius > 0 {
		r = opts.Radius * p.view.Scale
	}
	c := colorOr(opts.Color, ColorSelected)
	x, y := p.view.Apply(pt)
	drawCircle(p.ctx, x, y, r, color.Transparent, c)
}

func colorOr(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

// drawCircle draws a circle outline and optional fill.
func drawCircle(ctx *renderContext, cx, cy, r float64, fill, stroke color.Color) {
	img := ctx.img
	if fill != color.Transparent {
		for dy := -r; dy <= r; dy++ {
			xExtent := math.Sqrt(math.Max(0, r*r-dy*dy))
			for dx := -xExtent; dx <= xExtent; dx++ {
				img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}
	thickness := ctx.lineWidth
	for angle := 0.0; angle < 2*math.Pi; angle += 0.01 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		for t := -thickness / 2; t <= thickness/2; t += 0.5 {
			img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), stroke)
		}
	}
}

func fillRect(ctx *renderContext, x, y, w, h float64, c color.Color) {
	for dy := 0.0; dy <= h; dy++ {
		for dx := 0.0; dx <= w; dx++ {
			ctx.img.Set(int(x+dx), int(y+dy), c)
		}
	}
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	halfThick := ctx.lineWidth / 2

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawTextCentered draws text centred horizontally on x with its baseline
// just below y.
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	width := font.MeasureString(ctx.face, text).Ceil()
	ascent := ctx.face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + int(float64(ascent)*0.35)),
		},
	}
	d.DrawString(text)
}
