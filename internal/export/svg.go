package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/san-kum/polycryst/internal/viz"
)

const (
	background = "#0a0a0a"
	foreground = "#d98c5f"
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per lit pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.PixelSize()
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", foreground)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PoleFigureSVG draws the stereographic projections of poles inside a unit
// circle of the given pixel size.
func PoleFigureSVG(poles []tensor.Vec3, size int, title string) string {
	s := float64(size)
	margin := s * 0.08
	r := s/2 - margin
	c := s / 2

	var sb strings.Builder
	header(&sb, s, s)
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"#666666\"/>\n", c, c, r)
	fmt.Fprintf(&sb, "<path stroke=\"#333333\" d=\"M%.1f,%.1f H%.1f M%.1f,%.1f V%.1f\"/>\n", c-r, c, c+r, c, c-r, c+r)
	if title != "" {
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"#dddddd\" font-family=\"monospace\" font-size=\"%.0f\">%s</text>\n",
			margin/2, margin*0.8, margin*0.6, title)
	}

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", foreground)
	dot := math.Max(1, s/250)
	for _, p := range poles {
		x, y := orientation.Stereographic(p)
		fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.1f\"/>\n", c+x*r, c-y*r, dot)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type Point struct{ X, Y float64 }

// CurveToSVG draws a polyline through points scaled to fill the image.
func CurveToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
