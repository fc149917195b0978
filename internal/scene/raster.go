package scene

import (
	"image"
	"image/color"

	"cogentcore.org/core/math32"
)

// rgba is a straight-alpha color in [0,1].
type rgba struct{ r, g, b, a float32 }

func fromNRGBA(c color.NRGBA) rgba {
	return rgba{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// screenVertex is a vertex after projection, carrying the attributes the
// fragment stage interpolates.
type screenVertex struct {
	x, y  float32
	iz    float32 // 1 / view depth
	col   rgba
	uv    math32.Vector2
	world math32.Vector3
}

type view struct {
	eye, right, up, fwd math32.Vector3
	fx, fy, near       float32
	w, h               float32
}

func newView(c Camera, w, h int) view {
	fwd := c.Target.Sub(c.Position).Normal()
	right := fwd.Cross(c.Up).Normal()
	up := right.Cross(fwd)
	fy := 1 / math32.Tan(math32.DegToRad(c.FOV)/2)
	aspect := float32(w) / float32(h)
	return view{
		eye: c.Position, right: right, up: up, fwd: fwd,
		fx: fy / aspect, fy: fy, near: c.Near,
		w: float32(w), h: float32(h),
	}
}

func (v view) project(p math32.Vector3) (x, y, z float32, ok bool) {
	d := p.Sub(v.eye)
	z = d.Dot(v.fwd)
	if z < v.near {
		return 0, 0, 0, false
	}
	ndcX := v.fx * d.Dot(v.right) / z
	ndcY := v.fy * d.Dot(v.up) / z
	return (ndcX + 1) / 2 * v.w, (1 - ndcY) / 2 * v.h, z, true
}

type raster struct {
	img   *image.NRGBA
	depth []float32
	w, h  int
}

type blendMode uint8

const (
	opaque blendMode = iota
	over
)

// fill rasterises one triangle with barycentric coverage. frag returns the
// fragment color from perspective-correct weights.
func (r *raster) fill(tri [3]screenVertex, mode blendMode, bias float32, frag func(w [3]float32) rgba) {
	a, b, c := tri[0], tri[1], tri[2]
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 {
		return
	}
	minX := clampInt(int(math32.Floor(min3(a.x, b.x, c.x))), 0, r.w-1)
	maxX := clampInt(int(math32.Ceil(max3(a.x, b.x, c.x))), 0, r.w-1)
	minY := clampInt(int(math32.Floor(min3(a.y, b.y, c.y))), 0, r.h-1)
	maxY := clampInt(int(math32.Ceil(max3(a.y, b.y, c.y))), 0, r.h-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float32(x)+.5, float32(y)+.5
			w0 := edge(b.x, b.y, c.x, c.y, px, py) / area
			w1 := edge(c.x, c.y, a.x, a.y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			iz := w0*a.iz + w1*b.iz + w2*c.iz
			i := y*r.w + x
			if iz*(1+bias) < r.depth[i] {
				continue
			}
			// perspective-correct weights
			pw := [3]float32{w0 * a.iz / iz, w1 * b.iz / iz, w2 * c.iz / iz}
			src := frag(pw)
			if src.a <= 0 {
				continue
			}
			if mode == opaque {
				r.depth[i] = iz
				r.set(x, y, src)
				continue
			}
			r.blend(x, y, src)
		}
	}
}

func (r *raster) set(x, y int, c rgba) {
	r.img.SetNRGBA(x, y, toNRGBA(c))
}

func (r *raster) blend(x, y int, s rgba) {
	d := fromNRGBA(r.img.NRGBAAt(x, y))
	outA := s.a + d.a*(1-s.a)
	if outA <= 0 {
		return
	}
	mix := func(sc, dc float32) float32 { return (sc*s.a + dc*d.a*(1-s.a)) / outA }
	r.set(x, y, rgba{mix(s.r, d.r), mix(s.g, d.g), mix(s.b, d.b), outA})
}

func toNRGBA(c rgba) color.NRGBA {
	q := func(v float32) uint8 { return uint8(math32.Clamp(v, 0, 1)*255 + .5) }
	return color.NRGBA{R: q(c.r), G: q(c.g), B: q(c.b), A: q(c.a)}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }

func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// worldVertex is a vertex placed in the world for one frame.
type worldVertex struct {
	pos, normal math32.Vector3
	uv          math32.Vector2
}

func place(g *Geometry, chain Chain) []worldVertex {
	out := make([]worldVertex, len(g.Vertices))
	for i, v := range g.Vertices {
		out[i] = worldVertex{pos: chain.Point(v.Pos), normal: chain.Direction(v.Normal), uv: v.UV}
	}
	return out
}

// facing reports whether the triangle's front face points at the eye.
func facing(a, b, c, eye math32.Vector3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	return n.Dot(eye.Sub(a)) > 0
}

func visible(side Side, front bool) bool {
	switch side {
	case FrontSide:
		return front
	case BackSide:
		return !front
	default:
		return true
	}
}

// Render rasterises f into a w×h image with a transparent background.
func Render(f *Frame, w, h int) (*image.NRGBA, error) {
	if f == nil || f.Garment == nil || f.Appearance == nil {
		return nil, ErrClosed
	}
	if w <= 0 || h <= 0 || w > 4096 || h > 4096 {
		return nil, ErrInvalidSize
	}
	r := &raster{img: image.NewNRGBA(image.Rect(0, 0, w, h)), depth: make([]float32, w*h), w: w, h: h}
	v := newView(f.Camera, w, h)
	g := f.Garment
	app := f.Appearance

	type placed struct {
		part  Part
		verts []worldVertex
	}
	parts := make([]placed, 0, len(g.Parts))
	bounds := math32.B3Empty()
	for _, p := range g.Parts {
		verts := place(p.Geometry, f.Pose.Chain(p.Local))
		if p.Surface == SurfaceFabric {
			for _, wv := range verts {
				bounds.ExpandByPoint(wv.pos)
			}
		}
		parts = append(parts, placed{part: p, verts: verts})
	}

	drawContactShadow(r, v, f.Rig.Shadow, bounds)

	for _, p := range parts {
		if p.part.Surface != SurfaceFabric {
			continue
		}
		drawLit(r, v, f.Rig, app.Fabric, p.part.Geometry, p.verts)
	}

	if app.Decal.Visible() {
		torso := f.Pose.Chain(g.Parts[0].Local)
		drawDecal(r, v, app.Decal, g.Decal, place(g.Decal, torso))
	}

	shadow := ShadowMaterial()
	for _, p := range parts {
		if p.part.Surface != SurfaceShadow {
			continue
		}
		drawUnlit(r, v, shadow, p.part.Geometry, p.verts)
	}
	return r.img, nil
}

func triangles(g *Geometry, verts []worldVertex, side Side, eye math32.Vector3, each func(a, b, c worldVertex)) {
	for t := 0; t+2 < len(g.Indices); t += 3 {
		a, b, c := verts[g.Indices[t]], verts[g.Indices[t+1]], verts[g.Indices[t+2]]
		if !visible(side, facing(a.pos, b.pos, c.pos, eye)) {
			continue
		}
		each(a, b, c)
	}
}

func (v view) screen(wv worldVertex, col rgba) (screenVertex, bool) {
	x, y, z, ok := v.project(wv.pos)
	if !ok {
		return screenVertex{}, false
	}
	return screenVertex{x: x, y: y, iz: 1 / z, col: col, uv: wv.uv, world: wv.pos}, true
}

func (v view) screenTri(a, b, c worldVertex, ca, cb, cc rgba) ([3]screenVertex, bool) {
	sa, okA := v.screen(a, ca)
	sb, okB := v.screen(b, cb)
	sc, okC := v.screen(c, cc)
	return [3]screenVertex{sa, sb, sc}, okA && okB && okC
}

// drawLit shades per vertex and interpolates across the face.
func drawLit(r *raster, v view, rig Rig, m Material, g *Geometry, verts []worldVertex) {
	lit := make([]rgba, len(verts))
	for i, wv := range verts {
		lit[i] = fromNRGBA(rig.shade(m, wv.pos, wv.normal, v.eye.Sub(wv.pos).Normal()))
	}
	for t := 0; t+2 < len(g.Indices); t += 3 {
		ia, ib, ic := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		a, b, c := verts[ia], verts[ib], verts[ic]
		if !visible(m.Side, facing(a.pos, b.pos, c.pos, v.eye)) {
			continue
		}
		tri, ok := v.screenTri(a, b, c, lit[ia], lit[ib], lit[ic])
		if !ok {
			continue
		}
		r.fill(tri, opaque, 0, func(w [3]float32) rgba {
			return rgba{
				w[0]*tri[0].col.r + w[1]*tri[1].col.r + w[2]*tri[2].col.r,
				w[0]*tri[0].col.g + w[1]*tri[1].col.g + w[2]*tri[2].col.g,
				w[0]*tri[0].col.b + w[1]*tri[1].col.b + w[2]*tri[2].col.b,
				1,
			}
		})
	}
}

func drawUnlit(r *raster, v view, m Material, g *Geometry, verts []worldVertex) {
	col := fromNRGBA(m.Color)
	col.a = m.Opacity
	triangles(g, verts, m.Side, v.eye, func(a, b, c worldVertex) {
		tri, ok := v.screenTri(a, b, c, col, col, col)
		if !ok {
			return
		}
		r.fill(tri, over, 1e-4, func([3]float32) rgba { return col })
	})
}

// decalBias keeps the print in front of the fabric it lies on.
const decalBias = 2e-3

func drawDecal(r *raster, v view, d Decal, g *Geometry, verts []worldVertex) {
	triangles(g, verts, FrontSide, v.eye, func(a, b, c worldVertex) {
		tri, ok := v.screenTri(a, b, c, rgba{}, rgba{}, rgba{})
		if !ok {
			return
		}
		r.fill(tri, over, decalBias, func(w [3]float32) rgba {
			u := w[0]*tri[0].uv.X + w[1]*tri[1].uv.X + w[2]*tri[2].uv.X
			vv := w[0]*tri[0].uv.Y + w[1]*tri[1].uv.Y + w[2]*tri[2].uv.Y
			c := fromNRGBA(d.sample(u, vv))
			c.a *= d.Opacity
			return c
		})
	})
}

// drawContactShadow darkens the floor under the garment, fading with the
// footprint edge and with the garment's height above the floor.
func drawContactShadow(r *raster, v view, s ContactShadow, garment math32.Box3) {
	if s.Opacity <= 0 || garment.IsEmpty() {
		return
	}
	height := garment.Min.Y - s.Y
	lift := 1 - math32.Clamp(height/s.Far, 0, 1)
	if lift <= 0 {
		return
	}
	center := garment.Center()
	size := garment.Size()
	ex, ez := math32.Max(size.X/2, .01), math32.Max(size.Z/2, .01)
	soft := 1 + s.Blur*.15

	floor := Plane(s.Scale, s.Scale)
	verts := place(floor, Chain{At(0, s.Y, 0)})
	base := fromNRGBA(s.Color)
	triangles(floor, verts, DoubleSide, v.eye, func(a, b, c worldVertex) {
		tri, ok := v.screenTri(a, b, c, base, base, base)
		if !ok {
			return
		}
		r.fill(tri, over, 0, func(w [3]float32) rgba {
			var p math32.Vector3
			for i := range tri {
				p = p.Add(tri[i].world.MulScalar(w[i]))
			}
			dx, dz := (p.X-center.X)/ex, (p.Z-center.Z)/ez
			d := math32.Sqrt(dx*dx + dz*dz)
			out := base
			out.a = s.Opacity * lift * (1 - smoothstep(.6, soft, d))
			return out
		})
	})
}
