package slidezone

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// PreviewOptions configures preview rendering.
type PreviewOptions struct {
	// MaxWidth and MaxHeight bound the canvas in pixels. The slide is shrunk
	// to fit, never enlarged. Default: 1280x720.
	MaxWidth  int
	MaxHeight int

	BackgroundColor color.RGBA
	BorderColor     color.RGBA
	ZoneColor       color.RGBA
	IssueColor      color.RGBA

	BorderWidth int
	ZoneWidth   int
	IssueWidth  int

	// Labels draws the slide number and each issue's percentage.
	Labels bool
	// LabelSize is the label font size in points. Default: 12.
	LabelSize float64
	// FontDirs specifies additional directories to search for label fonts.
	FontDirs []string
	// FontCache allows sharing one FontCache across renders. If nil and
	// Labels is set, a new FontCache is created using FontDirs.
	FontCache *FontCache
}

// DefaultPreviewOptions returns default preview options.
func DefaultPreviewOptions() *PreviewOptions {
	return &PreviewOptions{
		MaxWidth:        1280,
		MaxHeight:       720,
		BackgroundColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		BorderColor:     color.RGBA{R: 200, G: 200, B: 200, A: 255},
		ZoneColor:       color.RGBA{R: 220, G: 20, B: 60, A: 255},
		IssueColor:      color.RGBA{R: 255, G: 215, B: 0, A: 255},
		BorderWidth:     1,
		ZoneWidth:       3,
		IssueWidth:      2,
		LabelSize:       12,
	}
}

// PreviewScale returns the factor that fits a slide into maxWidth x maxHeight
// pixels. It is never greater than 1.
func PreviewScale(slideWidth, slideHeight float64, maxWidth, maxHeight int) float64 {
	if slideWidth <= 0 || slideHeight <= 0 {
		return 0
	}
	return math.Min(math.Min(float64(maxWidth)/slideWidth, float64(maxHeight)/slideHeight), 1)
}

// CanvasSize returns the preview canvas size in pixels and the scale used.
func CanvasSize(slideWidth, slideHeight float64, maxWidth, maxHeight int) (width, height int, scale float64) {
	scale = PreviewScale(slideWidth, slideHeight, maxWidth, maxHeight)
	return int(math.Round(slideWidth * scale)), int(math.Round(slideHeight * scale)), scale
}

// RenderPreview draws one slide's exclusion zone and overlapped text blocks
// onto a scaled canvas. Text blocks that are not overlapped are not drawn.
func RenderPreview(a *Analysis, result SlideAnalysisResult, opts *PreviewOptions) (*image.RGBA, error) {
	if opts == nil {
		opts = DefaultPreviewOptions()
	}
	w, h, scale := CanvasSize(a.SlideWidth, a.SlideHeight, opts.MaxWidth, opts.MaxHeight)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("slide %d: empty canvas (%dx%d)", result.SlideNumber, w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{opts.BackgroundColor}, image.Point{}, draw.Src)

	r := &previewRenderer{
		img:   img,
		scale: scale,
		pad:   max(opts.BorderWidth, opts.ZoneWidth, opts.IssueWidth, 0) + 1,
	}
	r.drawRect(img.Bounds(), opts.BorderColor, opts.BorderWidth)
	r.drawRect(r.toPixels(a.VideoZone), opts.ZoneColor, opts.ZoneWidth)
	for _, issue := range result.Issues {
		r.drawRect(r.toPixels(issue.TextBlock.Rectangle), opts.IssueColor, opts.IssueWidth)
	}

	if opts.Labels {
		fc := opts.FontCache
		if fc == nil {
			fc = NewFontCache(opts.FontDirs...)
		}
		size := opts.LabelSize
		if size <= 0 {
			size = 12
		}
		face := fc.LabelFace(size)
		r.drawLabel(fmt.Sprintf("Slide %d", result.SlideNumber), face, opts.ZoneColor, image.Pt(opts.BorderWidth+4, opts.BorderWidth+2))
		for _, issue := range result.Issues {
			box := r.toPixels(issue.TextBlock.Rectangle)
			r.drawLabel(fmt.Sprintf("%.2f%%", issue.IntersectionPercent), face, opts.ZoneColor, box.Min.Add(image.Pt(opts.IssueWidth+2, opts.IssueWidth)))
		}
	}
	return img, nil
}

// --- renderer ---

type previewRenderer struct {
	img   *image.RGBA
	scale float64
	// pad is how far off the canvas a pixel coordinate may lie. It keeps
	// inward strokes of off-canvas edges off the canvas.
	pad int
}

// toPixel scales emu to a pixel coordinate clamped to
// [-pad, limit+pad]. NaN maps to 0.
func (r *previewRenderer) toPixel(emu float64, limit int) int {
	v := math.Round(emu * r.scale)
	switch {
	case math.IsNaN(v):
		return 0
	case v < float64(-r.pad):
		return -r.pad
	case v > float64(limit+r.pad):
		return limit + r.pad
	}
	return int(v)
}

// toPixels maps an EMU rectangle to canvas pixels. Negative sizes collapse
// to an empty rectangle, and so do non-numeric ones.
func (r *previewRenderer) toPixels(rect Rectangle) image.Rectangle {
	w, h := math.Max(0, rect.Width), math.Max(0, rect.Height)
	if math.IsNaN(rect.X) || math.IsNaN(rect.Y) || math.IsNaN(w) || math.IsNaN(h) {
		return image.Rectangle{}
	}
	b := r.img.Bounds()
	x0, y0 := r.toPixel(rect.X, b.Dx()), r.toPixel(rect.Y, b.Dy())
	x1 := r.toPixel(rect.X+w, b.Dx())
	y1 := r.toPixel(rect.Y+h, b.Dy())
	return image.Rect(x0, y0, x1, y1)
}

// drawRect strokes rect inward with the given line width. Only the part of
// each edge that lies on the canvas is visited.
func (r *previewRenderer) drawRect(rect image.Rectangle, c color.RGBA, width int) {
	if rect.Empty() {
		return
	}
	b := r.img.Bounds()
	width = min(width, max(rect.Dx(), rect.Dy()))
	xs, xe := max(rect.Min.X, b.Min.X), min(rect.Max.X, b.Max.X)
	ys, ye := max(rect.Min.Y, b.Min.Y), min(rect.Max.Y, b.Max.Y)
	for i := 0; i < width; i++ {
		for x := xs; x < xe; x++ {
			r.setPixel(x, rect.Min.Y+i, c)
			r.setPixel(x, rect.Max.Y-1-i, c)
		}
		for y := ys; y < ye; y++ {
			r.setPixel(rect.Min.X+i, y, c)
			r.setPixel(rect.Max.X-1-i, y, c)
		}
	}
}

func (r *previewRenderer) setPixel(x, y int, c color.RGBA) {
	if image.Pt(x, y).In(r.img.Bounds()) {
		r.img.SetRGBA(x, y, c)
	}
}

// drawLabel draws text with its top-left corner at pt.
func (r *previewRenderer) drawLabel(text string, face font.Face, c color.RGBA, pt image.Point) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  &image.Uniform{c},
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
