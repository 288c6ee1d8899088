package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/npillmayer/foundry"
	"github.com/npillmayer/foundry/otquery"
	"github.com/npillmayer/foundry/outline"
	"golang.org/x/image/vector"
)

// proof renders glyphs in a grid, one cell of 1.25 em per glyph, with the
// baseline at 0.25 em from the bottom of a cell.
type proof struct {
	PPEM       int
	Columns    int
	ShowBBoxes bool
}

var bboxColor = color.RGBA{255, 0, 0, 255}

// Render draws the named glyphs of a font and writes the image as PNG.
func (p proof) Render(w io.Writer, f *foundry.Font, glyphs []string) error {
	if p.PPEM <= 0 {
		return errors.New("pixels per em must be > 0")
	}
	if len(glyphs) == 0 {
		return errors.New("no glyphs to render")
	}
	head, err := f.Head()
	if err != nil {
		return err
	}
	upem := float64(head.UnitsPerEm())
	if upem <= 0 {
		return errors.New("invalid units-per-em")
	}
	cols := max(1, min(p.Columns, len(glyphs)))
	rows := (len(glyphs) + cols - 1) / cols
	cell := p.PPEM * 5 / 4
	width, height := cols*cell, rows*cell

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	otf := f.Container()
	scale := float64(p.PPEM) / upem
	for i, name := range glyphs {
		gid, ok := otquery.GlyphIndexByName(otf, name)
		if !ok {
			return fmt.Errorf("glyph %q: %w", name, foundry.ErrMissingGlyph)
		}
		path, err := outline.GlyphPath(otf, gid)
		if err != nil {
			return fmt.Errorf("glyph %q: %w", name, err)
		}
		x0 := float64((i%cols)*cell + (cell-p.PPEM)/2)
		y0 := float64((i/cols+1)*cell - p.PPEM/4)
		path.Draw(rasterPather{r: rast, scale: scale, x0: x0, y0: y0})
		if p.ShowBBoxes {
			b, err := f.GlyphBounds(name)
			if err != nil {
				return err
			}
			drawRectOutline(img,
				int(x0+b.XMin*scale), int(y0-b.YMax*scale),
				int(x0+b.XMax*scale)+1, int(y0-b.YMin*scale)+1, bboxColor)
		}
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}

// rasterPather places outlines in font units onto a rasterizer. Image Y grows
// downward.
type rasterPather struct {
	r      *vector.Rasterizer
	scale  float64
	x0, y0 float64 // origin of the glyph in image coordinates
}

func (p rasterPather) pt(x, y float64) (float32, float32) {
	return float32(p.x0 + x*p.scale), float32(p.y0 - y*p.scale)
}

func (p rasterPather) MoveTo(x, y float64) {
	p.r.MoveTo(p.pt(x, y))
}

func (p rasterPather) LineTo(x, y float64) {
	p.r.LineTo(p.pt(x, y))
}

func (p rasterPather) CubeTo(x1, y1, x2, y2, x, y float64) {
	ax, ay := p.pt(x1, y1)
	bx, by := p.pt(x2, y2)
	cx, cy := p.pt(x, y)
	p.r.CubeTo(ax, ay, bx, by, cx, cy)
}

func (p rasterPather) ClosePath() {
	p.r.ClosePath()
}

func drawRectOutline(img *image.RGBA, minX int, minY int, maxX int, maxY int, c color.RGBA) {
	if img == nil {
		return
	}
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
