package scene

import (
	"time"

	"cogentcore.org/core/math32"
)

// Surface says which material a part is drawn with.
type Surface uint8

const (
	SurfaceFabric Surface = iota
	SurfaceShadow
)

// Part is one mesh of the garment, placed by Local relative to the group.
type Part struct {
	Name     string
	Geometry *Geometry
	Local    Chain
	Surface  Surface
}

// Garment is the procedural t-shirt. Its geometry is built once; color and
// decal changes only swap the Appearance.
type Garment struct {
	Parts []Part
	Decal *Geometry
	Scale float32
}

const GarmentScale = 2.8

var (
	torsoTop, torsoBottom, torsoHeight = float32(.38), float32(.42), float32(1.2)
	sleeveTop, sleeveBottom, sleeveLen = float32(.18), float32(.15), float32(.5)
)

// NewGarment builds the t-shirt: torso, two angled sleeves, collar and the
// collar's inner shadow.
func NewGarment() *Garment {
	torso := Cylinder(torsoTop, torsoBottom, torsoHeight, 32)
	sleeve := Cylinder(sleeveTop, sleeveBottom, sleeveLen, 32)
	flatTorso := Identity().Scaled(1.1, 1, .5)
	flatSleeve := Identity().Scaled(1, 1, .5)
	left := At(-.45, .4, 0).Rotated(0, 0, math32.Pi/4)
	right := At(.45, .4, 0).Rotated(0, 0, -math32.Pi/4)

	return &Garment{
		Scale: GarmentScale,
		Parts: []Part{
			{Name: "torso", Geometry: torso, Local: Chain{Identity()}},
			{Name: "torso-body", Geometry: torso, Local: Chain{flatTorso}},
			{Name: "sleeve-left", Geometry: sleeve, Local: Chain{left}},
			{Name: "sleeve-left-body", Geometry: sleeve, Local: Chain{flatSleeve, left}},
			{Name: "sleeve-right", Geometry: sleeve, Local: Chain{right}},
			{Name: "sleeve-right-body", Geometry: sleeve, Local: Chain{flatSleeve, right}},
			{Name: "collar", Geometry: Torus(.18, .04, 16, 100), Local: Chain{At(0, .58, 0).Rotated(math32.Pi/2, 0, 0)}},
			{Name: "collar-shadow", Geometry: Circle(.16, 32), Local: Chain{At(0, .57, 0).Rotated(math32.Pi/2, 0, 0)}, Surface: SurfaceShadow},
		},
		Decal: ProjectOnCylinder(torsoTop, torsoBottom, torsoHeight, DecalPosition, DecalScale, 16),
	}
}

// VertexCount sums the vertices drawn for the garment, decal included.
func (g *Garment) VertexCount() int {
	n := g.Decal.VertexCount()
	for _, p := range g.Parts {
		n += p.Geometry.VertexCount()
	}
	return n
}

// Pose is the animated placement of the garment group and its float wrapper.
type Pose struct {
	Group Transform
	Float Transform
}

// Chain returns the world path for a part chain.
func (p Pose) Chain(local Chain) Chain {
	return local.Then(p.Group, p.Float)
}

// Float wrapper parameters.
const (
	FloatSpeed             = 2
	FloatRotationIntensity = .1
	FloatIntensity         = .2
)

// Animate returns the idle sway at elapsed time t. It depends on time only,
// never on camera input.
func Animate(t time.Duration, scale float32) Pose {
	s := float32(t.Seconds())

	group := Identity().Scaled(scale, scale, scale)
	group.Position.Y = math32.Sin(s*.8) * .03
	group.Rotation.Y = math32.Sin(s*.5) * .05

	ft := s / 4 * FloatSpeed
	wrap := Identity()
	wrap.Rotation = math32.Vec3(
		math32.Cos(ft)/8*FloatRotationIntensity,
		math32.Sin(ft)/8*FloatRotationIntensity,
		math32.Sin(ft)/20*FloatRotationIntensity,
	)
	wrap.Position.Y = math32.Sin(ft) / 10 * FloatIntensity

	return Pose{Group: group, Float: wrap}
}
