package scene

import (
	"image/color"

	"cogentcore.org/core/math32"
)

type AmbientLight struct {
	Intensity float32
}

type PointLight struct {
	Position   math32.Vector3
	Intensity  float32
	CastShadow bool
}

// SpotLight aims at the origin. Angle is the cone half-angle in radians;
// Penumbra is the fraction of the cone that fades out.
type SpotLight struct {
	Position  math32.Vector3
	Angle     float32
	Penumbra  float32
	Intensity float32
}

// ContactShadow is the soft blob on the floor under the garment.
type ContactShadow struct {
	Y       float32
	Opacity float32
	Scale   float32
	Blur    float32
	Far     float32
	Color   color.NRGBA
}

// Environment is an image-based fill light preset.
type Environment struct {
	Preset    string
	Intensity float32
	Sky       color.NRGBA
	Ground    color.NRGBA
}

// Rig is the fixed lighting of the preview.
type Rig struct {
	Ambient     AmbientLight
	Point       PointLight
	Spot        SpotLight
	Shadow      ContactShadow
	Environment Environment
}

var environments = map[string]Environment{
	"city":   {Preset: "city", Intensity: .35, Sky: color.NRGBA{R: 196, G: 208, B: 224, A: 255}, Ground: color.NRGBA{R: 92, G: 84, B: 78, A: 255}},
	"studio": {Preset: "studio", Intensity: .3, Sky: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, Ground: color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
}

// EnvironmentPreset returns a named preset, falling back to "city".
func EnvironmentPreset(name string) Environment {
	if e, ok := environments[name]; ok {
		return e
	}
	return environments["city"]
}

func DefaultRig() Rig {
	return Rig{
		Ambient: AmbientLight{Intensity: .4},
		Point:   PointLight{Position: math32.Vec3(5, 5, 5), Intensity: 1.5, CastShadow: true},
		Spot:    SpotLight{Position: math32.Vec3(-5, 5, 5), Angle: .2, Penumbra: 1, Intensity: 1},
		Shadow: ContactShadow{
			Y: -1.8, Opacity: .4, Scale: 12, Blur: 2, Far: 4,
			Color: color.NRGBA{A: 255},
		},
		Environment: EnvironmentPreset("city"),
	}
}

// shade lights a fabric point. n is the world normal, view points from the
// surface toward the eye.
func (r Rig) shade(m Material, p, n, view math32.Vector3) color.NRGBA {
	if m.Side == DoubleSide && n.Dot(view) < 0 {
		n = n.MulScalar(-1)
	}
	diffuse := r.Ambient.Intensity

	hemi := (n.Y + 1) / 2
	env := r.Environment
	envR := math32.Lerp(float32(env.Ground.R), float32(env.Sky.R), hemi) / 255
	envG := math32.Lerp(float32(env.Ground.G), float32(env.Sky.G), hemi) / 255
	envB := math32.Lerp(float32(env.Ground.B), float32(env.Sky.B), hemi) / 255

	toPoint := r.Point.Position.Sub(p).Normal()
	diffuse += r.Point.Intensity * math32.Max(0, n.Dot(toPoint)) * .6

	toSpot := r.Spot.Position.Sub(p).Normal()
	axis := r.Spot.Position.MulScalar(-1).Normal()
	cosTheta := toSpot.MulScalar(-1).Dot(axis)
	outer := math32.Cos(r.Spot.Angle)
	inner := math32.Cos(r.Spot.Angle * (1 - r.Spot.Penumbra))
	cone := smoothstep(outer, inner, cosTheta)
	diffuse += r.Spot.Intensity * cone * math32.Max(0, n.Dot(toSpot)) * .6

	diffuse *= 1 - m.Metalness

	// specular lobe narrows as the fabric gets smoother
	half := toPoint.Add(view).Normal()
	gloss := (1 - m.Roughness) * (1 - m.Roughness)
	spec := gloss * math32.Pow(math32.Max(0, n.Dot(half)), 2/math32.Max(gloss, .01)) * r.Point.Intensity

	ndv := math32.Clamp(n.Dot(view), 0, 1)
	rim := m.Sheen * math32.Pow(1-ndv, 1/math32.Max(m.SheenRoughness, .05)) * .5

	channel := func(base, sheen uint8, envc float32) uint8 {
		b := float32(base) / 255
		v := b*diffuse + b*envc*env.Intensity + float32(sheen)/255*rim + spec
		return uint8(math32.Clamp(v, 0, 1)*255 + .5)
	}
	return color.NRGBA{
		R: channel(m.Color.R, m.SheenColor.R, envR),
		G: channel(m.Color.G, m.SheenColor.G, envG),
		B: channel(m.Color.B, m.SheenColor.B, envB),
		A: uint8(math32.Clamp(m.Opacity, 0, 1)*255 + .5),
	}
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := math32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
