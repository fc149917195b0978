package scene

import (
	"image"
	"image/color"

	"cogentcore.org/core/math32"
)

// Side selects which faces of a surface are drawn.
type Side uint8

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material is a physically-inspired surface description. Unlit materials
// ignore the light rig and draw their color (or map) as is.
type Material struct {
	Color          color.NRGBA
	Roughness      float32
	Metalness      float32
	Sheen          float32
	SheenRoughness float32
	SheenColor     color.NRGBA
	Side           Side
	Opacity        float32
	Unlit          bool

	// Version increases every time the fabric is re-prepared.
	Version uint64
}

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// FabricMaterial is the cotton look shared by every garment part.
func FabricMaterial(c color.NRGBA, version uint64) Material {
	c.A = 255
	return Material{
		Color:          c,
		Roughness:      .85,
		Metalness:      .05,
		Sheen:          1,
		SheenRoughness: .5,
		SheenColor:     LerpColor(c, white, .2),
		Side:           DoubleSide,
		Opacity:        1,
		Version:        version,
	}
}

// ShadowMaterial is the dark disc inside the collar, seen from above only.
func ShadowMaterial() Material {
	return Material{
		Color:   color.NRGBA{A: 255},
		Side:    BackSide,
		Opacity: .6,
		Unlit:   true,
	}
}

// LerpColor mixes a toward b by t in [0,1].
func LerpColor(a, b color.NRGBA, t float32) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math32.Round(math32.Lerp(float32(x), float32(y), t)))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Decal is the printed graphic on the torso front. The projector placement
// is fixed; only the texture changes.
type Decal struct {
	Position math32.Vector3
	Scale    math32.Vector3
	Texture  *image.NRGBA
	Source   string
	Opacity  float32
}

var (
	DecalPosition = math32.Vec3(0, .15, .21)
	DecalScale    = math32.Vec3(.45, .45, 1)
)

// NewDecal binds tex to the torso front. A nil texture yields an invisible
// decal rather than an error.
func NewDecal(tex *image.NRGBA, source string) Decal {
	d := Decal{Position: DecalPosition, Scale: DecalScale, Texture: tex, Source: source}
	if tex != nil && !tex.Rect.Empty() {
		d.Opacity = 1
	}
	return d
}

// Visible reports whether the decal contributes to a frame.
func (d Decal) Visible() bool { return d.Opacity > 0 && d.Texture != nil }

// sample returns the texel at uv (v up) with nearest filtering. Outside the
// unit square the decal is transparent.
func (d Decal) sample(u, v float32) color.NRGBA {
	if u < 0 || u > 1 || v < 0 || v > 1 || d.Texture == nil {
		return color.NRGBA{}
	}
	b := d.Texture.Rect
	x := b.Min.X + int(u*float32(b.Dx()-1)+.5)
	y := b.Min.Y + int((1-v)*float32(b.Dy()-1)+.5)
	return d.Texture.NRGBAAt(x, y)
}

// Appearance is everything a color or decal change swaps in, prepared off
// the frame loop and published whole.
type Appearance struct {
	Fabric Material
	Decal  Decal
}
