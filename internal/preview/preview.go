// Package preview renders a static overview PNG of a camera plan: focus
// regions, the viewport each shot frames, and the camera center's path
// between shots with easing-spaced samples. It exists for debugging and
// tuning; the exported YAML plan is the real product.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"smartzoom/internal/geom"
	"smartzoom/internal/pipeline"
	"smartzoom/internal/shot"
	"smartzoom/internal/system"
	"smartzoom/internal/transition"
)

// Default output size. The capture's unit square is stretched onto the
// canvas, so proportions are only faithful for 16:9 recordings; for an
// overview that is good enough.
const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// pathSamples is the number of eased positions drawn per transition.
// Sample spacing visualizes camera speed: tight clusters mean settling.
const pathSamples = 24

var (
	colorBackground = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	colorFrame      = color.RGBA{R: 70, G: 70, B: 80, A: 255}
	colorRegion     = color.RGBA{R: 90, G: 110, B: 160, A: 255}
	colorPath       = color.RGBA{R: 230, G: 200, B: 90, A: 255}
	colorLabel      = color.RGBA{R: 220, G: 220, B: 225, A: 255}

	viewportColors = map[shot.Type]color.RGBA{
		shot.TypeWide:    {R: 110, G: 160, B: 110, A: 255},
		shot.TypeMedium:  {R: 110, G: 170, B: 200, A: 255},
		shot.TypeCloseUp: {R: 220, G: 130, B: 100, A: 255},
	}
)

// Options controls the output size. Zero values pick the defaults.
type Options struct {
	Width  int
	Height int
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render draws the plan overview. The scene is rasterized at twice the
// output size and scaled down, which keeps the thin strokes smooth.
func Render(res *pipeline.Result, opts Options) *image.RGBA {
	opts = opts.normalized()

	big := system.GetCanvas(opts.Width*2, opts.Height*2)
	defer system.PutCanvas(big)

	m := newMapper(opts.Width*2, opts.Height*2)
	draw.Draw(big, big.Bounds(), &image.Uniform{C: colorBackground}, image.Point{}, draw.Src)
	fx0, fy0, fx1, fy1 := m.rect(geom.Rect{X: 0, Y: 0, W: 1, H: 1})
	strokeRect(big, fx0, fy0, fx1, fy1, 2, colorFrame)

	for _, sc := range res.Scenes {
		for _, reg := range sc.Regions {
			rx0, ry0, rx1, ry1 := m.rect(reg.Rect)
			strokeRect(big, rx0, ry0, rx1, ry1, 2, colorRegion)
		}
	}

	for _, sh := range res.Shots {
		viewport := geom.RectAround(sh.Center, 1/sh.Zoom, 1/sh.Zoom)
		c, ok := viewportColors[sh.Type]
		if !ok {
			c = colorFrame
		}
		vx0, vy0, vx1, vy1 := m.rect(viewport)
		strokeRect(big, vx0, vy0, vx1, vy1, 3, c)
		x, y := m.point(sh.Center)
		fillDot(big, x, y, 4, c)
	}

	drawCameraPath(big, m, res.Shots, res.Transitions)

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), draw.Src, nil)

	// Labels go on the final canvas so the font stays readable.
	lm := newMapper(opts.Width, opts.Height)
	for _, sh := range res.Shots {
		viewport := geom.RectAround(sh.Center, 1/sh.Zoom, 1/sh.Zoom)
		x0, y0, _, _ := lm.rect(viewport)
		drawLabel(out, x0+3, y0+12, fmt.Sprintf("%d %.1fx", sh.SceneIndex, sh.Zoom))
	}

	return out
}

// WritePNG renders the overview and writes it to path.
func WritePNG(res *pipeline.Result, path string, opts Options) error {
	img := Render(res, opts)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

func drawCameraPath(img *image.RGBA, m mapper, shots []shot.Shot, plans []transition.Plan) {
	for i, tr := range plans {
		if i+1 >= len(shots) {
			break
		}
		if _, cut := tr.Style.(transition.Cut); cut {
			continue
		}
		src := shots[i].Center
		dst := shots[i+1].Center
		for k := 0; k <= pathSamples; k++ {
			t := tr.Easing.Evaluate(float64(k) / pathSamples)
			p := geom.Point{
				X: geom.Lerp(src.X, dst.X, t),
				Y: geom.Lerp(src.Y, dst.Y, t),
			}
			x, y := m.point(p)
			fillDot(img, x, y, 2, colorPath)
		}
	}
}

// mapper places the capture's unit square onto a canvas with a margin.
type mapper struct {
	x0, y0 float64
	sx, sy float64
}

func newMapper(w, h int) mapper {
	margin := 0.04 * float64(min(w, h))
	return mapper{
		x0: margin,
		y0: margin,
		sx: float64(w) - 2*margin,
		sy: float64(h) - 2*margin,
	}
}

func (m mapper) point(p geom.Point) (int, int) {
	return int(m.x0 + p.X*m.sx + 0.5), int(m.y0 + p.Y*m.sy + 0.5)
}

func (m mapper) rect(r geom.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = m.point(geom.Point{X: r.X, Y: r.Y})
	x1, y1 = m.point(geom.Point{X: r.X + r.W, Y: r.Y + r.H})
	return x0, y0, x1, y1
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	b := img.Bounds()
	x0, y0 = max(x0, b.Min.X), max(y0, b.Min.Y)
	x1, y1 = min(x1, b.Max.X), min(y1, b.Max.Y)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, t int, c color.RGBA) {
	fillRect(img, x0, y0, x1, y0+t, c)
	fillRect(img, x0, y1-t, x1, y1, c)
	fillRect(img, x0, y0, x0+t, y1, c)
	fillRect(img, x1-t, y0, x1, y1, c)
}

func fillDot(img *image.RGBA, x, y, r int, c color.RGBA) {
	fillRect(img, x-r, y-r, x+r, y+r, c)
}

func drawLabel(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorLabel),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
