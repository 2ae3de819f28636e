package flourish

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// ellipseSegments is the number of rim vertices used to tessellate ellipses
// and gradients.
const ellipseSegments = 48

// --- White pixel source (no sync.Once: drawing is single-threaded) ---

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

// ensureWhiteSubImage returns the center pixel of a 3x3 white image. Using
// the center keeps linear filtering from sampling transparent edges.
func ensureWhiteSubImage() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(ColorWhite)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// fallbackFace draws glyphs when no font source is set. It is 13px tall.
var fallbackFace text.Face

func ensureFallbackFace() text.Face {
	if fallbackFace == nil {
		fallbackFace = text.NewGoXFace(basicfont.Face7x13)
	}
	return fallbackFace
}

// LoadFontSource parses TrueType/OpenType data for use with
// ImageSurface.SetFontSource.
func LoadFontSource(ttfData []byte) (*text.GoTextFaceSource, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("flourish: failed to parse font data: %w", err)
	}
	return source, nil
}

// ImageSurface is a Surface backed by an offscreen ebiten.Image.
type ImageSurface struct {
	img    *ebiten.Image
	w, h   int
	source *text.GoTextFaceSource

	verts []ebiten.Vertex
	inds  []uint16
}

// NewImageSurface allocates a w x h surface.
func NewImageSurface(w, h int) *ImageSurface {
	w, h = max(w, 1), max(h, 1)
	return &ImageSurface{img: ebiten.NewImage(w, h), w: w, h: h}
}

// Image returns the backing image for compositing.
func (s *ImageSurface) Image() *ebiten.Image {
	return s.img
}

// SetFontSource sets the font glyphs are drawn with. Nil restores the
// built-in bitmap face.
func (s *ImageSurface) SetFontSource(source *text.GoTextFaceSource) {
	s.source = source
}

// Resize reallocates the backing image when the dimensions change. Content
// is discarded; loops repaint it on their next tick.
func (s *ImageSurface) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == s.w && h == s.h {
		return
	}
	s.img.Deallocate()
	s.img = ebiten.NewImage(w, h)
	s.w, s.h = w, h
}

// Dispose releases the backing image. The surface must not be drawn on
// afterwards.
func (s *ImageSurface) Dispose() {
	if s.img != nil {
		s.img.Deallocate()
	}
}

func (s *ImageSurface) Size() (w, h float64) {
	return float64(s.w), float64(s.h)
}

func (s *ImageSurface) Clear() {
	s.img.Clear()
}

func (s *ImageSurface) FillRect(r Rect, c Color) {
	vector.DrawFilledRect(s.img, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c, true)
}

func (s *ImageSurface) StrokeRect(r Rect, c Color, width float64) {
	vector.StrokeRect(s.img, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), float32(width), c, true)
}

func (s *ImageSurface) FillEllipse(cx, cy, rx, ry float64, c Color) {
	if rx == ry {
		vector.DrawFilledCircle(s.img, float32(cx), float32(cy), float32(rx), c, true)
		return
	}
	s.drawFan(cx, cy, rx, ry, c, c)
}

func (s *ImageSurface) StrokeEllipse(cx, cy, rx, ry float64, c Color, width float64) {
	if rx == ry {
		vector.StrokeCircle(s.img, float32(cx), float32(cy), float32(rx), float32(width), c, true)
		return
	}
	var path vector.Path
	for i := 0; i < ellipseSegments; i++ {
		a := float64(i) / ellipseSegments * math.Pi * 2
		x := float32(cx + math.Cos(a)*rx)
		y := float32(cy + math.Sin(a)*ry)
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()

	s.verts, s.inds = path.AppendVerticesAndIndicesForStroke(s.verts[:0], s.inds[:0], &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
	})
	s.tint(s.verts, c)
	s.drawTriangles()
}

// FillGlyph draws glyph with the font source if one is set. Without one,
// glyphs the bitmap face covers are drawn with it and anything else, such
// as the default bird emoji, is drawn as a stroked wing silhouette.
func (s *ImageSurface) FillGlyph(glyph string, x, y, size float64, c Color) {
	var face text.Face
	scale := 1.0
	switch {
	case s.source != nil:
		face = &text.GoTextFace{Source: s.source, Size: size}
	case bitmapCovers(glyph):
		face = ensureFallbackFace()
		scale = size / 13
	default:
		s.strokeWings(x, y, size, c)
		return
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(0, -face.Metrics().HAscent)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.img, glyph, face, op)
}

// bitmapCovers reports whether the built-in bitmap face has a glyph for
// every rune of glyph.
func bitmapCovers(glyph string) bool {
	if glyph == "" {
		return false
	}
	for _, r := range glyph {
		if _, ok := basicfont.Face7x13.GlyphAdvance(r); !ok {
			return false
		}
	}
	return true
}

// strokeWings draws a gull-wing "m" shape spanning size pixels with its
// baseline at y, standing in for glyphs no available face can draw.
func (s *ImageSurface) strokeWings(x, y, size float64, c Color) {
	top := y - size*0.6
	mid := y - size*0.3
	var path vector.Path
	path.MoveTo(float32(x), float32(mid))
	path.QuadTo(float32(x+size*0.25), float32(top), float32(x+size*0.5), float32(mid))
	path.QuadTo(float32(x+size*0.75), float32(top), float32(x+size), float32(mid))

	s.verts, s.inds = path.AppendVerticesAndIndicesForStroke(s.verts[:0], s.inds[:0], &vector.StrokeOptions{
		Width:    float32(max(size/10, 1)),
		LineCap:  vector.LineCapRound,
		LineJoin: vector.LineJoinRound,
	})
	s.tint(s.verts, c)
	s.drawTriangles()
}

func (s *ImageSurface) FillRadialGradient(cx, cy, radius float64, inner, outer Color) {
	s.drawFan(cx, cy, radius, radius, inner, outer)
}

// drawFan fills an ellipse as a triangle fan whose center vertex has the
// center color and whose rim vertices have the rim color. The GPU
// interpolates between them, which yields a linear radial gradient.
func (s *ImageSurface) drawFan(cx, cy, rx, ry float64, center, rim Color) {
	s.verts = s.verts[:0]
	s.inds = s.inds[:0]

	s.verts = append(s.verts, vertex(cx, cy, center))
	for i := 0; i < ellipseSegments; i++ {
		a := float64(i) / ellipseSegments * math.Pi * 2
		s.verts = append(s.verts, vertex(cx+math.Cos(a)*rx, cy+math.Sin(a)*ry, rim))
	}
	for i := 1; i <= ellipseSegments; i++ {
		next := i%ellipseSegments + 1
		s.inds = append(s.inds, 0, uint16(i), uint16(next))
	}
	s.drawTriangles()
}

func (s *ImageSurface) drawTriangles() {
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = true
	s.img.DrawTriangles(s.verts, s.inds, ensureWhiteSubImage(), &op)
}

// tint sets premultiplied vertex colors and points every vertex at the
// white source pixel.
func (s *ImageSurface) tint(verts []ebiten.Vertex, c Color) {
	for i := range verts {
		v := &verts[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR = float32(c.R * c.A)
		v.ColorG = float32(c.G * c.A)
		v.ColorB = float32(c.B * c.A)
		v.ColorA = float32(c.A)
	}
}

func vertex(x, y float64, c Color) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(c.R * c.A),
		ColorG: float32(c.G * c.A),
		ColorB: float32(c.B * c.A),
		ColorA: float32(c.A),
	}
}

// --- Containers and host ---

type namedOverlay struct {
	name    string
	surface *ImageSurface
}

// ImageContainer is a Container whose overlays are offscreen images the size
// of the container, composited in attach order.
type ImageContainer struct {
	w, h     int
	overlays []namedOverlay
}

// NewImageContainer creates an empty w x h container.
func NewImageContainer(w, h int) *ImageContainer {
	return &ImageContainer{w: w, h: h}
}

func (c *ImageContainer) AttachOverlay(name string) (Surface, bool) {
	for _, o := range c.overlays {
		if o.name == name {
			return o.surface, false
		}
	}
	s := NewImageSurface(c.w, c.h)
	c.overlays = append(c.overlays, namedOverlay{name: name, surface: s})
	return s, true
}

func (c *ImageContainer) DetachOverlay(name string) {
	for i, o := range c.overlays {
		if o.name == name {
			o.surface.Dispose()
			c.overlays = append(c.overlays[:i], c.overlays[i+1:]...)
			return
		}
	}
}

// Overlay returns the attached overlay with the given name, or nil.
func (c *ImageContainer) Overlay(name string) *ImageSurface {
	for _, o := range c.overlays {
		if o.name == name {
			return o.surface
		}
	}
	return nil
}

// Resize refreshes the container and every overlay to the new dimensions.
func (c *ImageContainer) Resize(w, h int) {
	c.w, c.h = w, h
	for _, o := range c.overlays {
		o.surface.Resize(w, h)
	}
}

type hostEntry struct {
	ref       string
	bounds    image.Rectangle
	surface   *ImageSurface
	container *ImageContainer
}

// ImageHost resolves references to ImageSurfaces and ImageContainers placed
// on the screen, and composites them in the order they were added.
type ImageHost struct {
	entries []*hostEntry
}

// NewImageHost creates an empty host.
func NewImageHost() *ImageHost {
	return &ImageHost{}
}

func (h *ImageHost) find(ref string) *hostEntry {
	for _, e := range h.entries {
		if e.ref == ref {
			return e
		}
	}
	return nil
}

// AddSurface places a new surface at bounds under ref, replacing any
// existing entry with that ref.
func (h *ImageHost) AddSurface(ref string, bounds image.Rectangle) *ImageSurface {
	h.Remove(ref)
	s := NewImageSurface(bounds.Dx(), bounds.Dy())
	h.entries = append(h.entries, &hostEntry{ref: ref, bounds: bounds, surface: s})
	return s
}

// AddContainer places a new container at bounds under ref, replacing any
// existing entry with that ref.
func (h *ImageHost) AddContainer(ref string, bounds image.Rectangle) *ImageContainer {
	h.Remove(ref)
	c := NewImageContainer(bounds.Dx(), bounds.Dy())
	h.entries = append(h.entries, &hostEntry{ref: ref, bounds: bounds, container: c})
	return c
}

// Remove drops the entry under ref. Loops still holding its surface keep
// drawing offscreen until stopped.
func (h *ImageHost) Remove(ref string) {
	for i, e := range h.entries {
		if e.ref == ref {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return
		}
	}
}

// SetBounds moves and resizes the entry under ref, as after a layout change.
func (h *ImageHost) SetBounds(ref string, bounds image.Rectangle) {
	e := h.find(ref)
	if e == nil {
		return
	}
	e.bounds = bounds
	if e.surface != nil {
		e.surface.Resize(bounds.Dx(), bounds.Dy())
	}
	if e.container != nil {
		e.container.Resize(bounds.Dx(), bounds.Dy())
	}
}

func (h *ImageHost) Surface(ref string) (Surface, bool) {
	e := h.find(ref)
	if e == nil || e.surface == nil {
		return nil, false
	}
	return e.surface, true
}

func (h *ImageHost) Container(ref string) (Container, bool) {
	e := h.find(ref)
	if e == nil || e.container == nil {
		return nil, false
	}
	return e.container, true
}

// Draw composites every surface and overlay onto screen at its bounds.
func (h *ImageHost) Draw(screen *ebiten.Image) {
	for _, e := range h.entries {
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(float64(e.bounds.Min.X), float64(e.bounds.Min.Y))
		if e.surface != nil {
			screen.DrawImage(e.surface.Image(), &op)
		}
		if e.container != nil {
			for _, o := range e.container.overlays {
				screen.DrawImage(o.surface.Image(), &op)
			}
		}
	}
}
