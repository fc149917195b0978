package scene

import (
	"cogentcore.org/core/math32"
)

// Vertex is one mesh vertex in the part's local space.
type Vertex struct {
	Pos    math32.Vector3
	Normal math32.Vector3
	UV     math32.Vector2
}

// Geometry is an indexed triangle mesh. It is built once per preview and
// never modified afterwards, so frames may share it freely.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   math32.Box3
}

func newGeometry() *Geometry {
	return &Geometry{Bounds: math32.B3Empty()}
}

func (g *Geometry) add(v Vertex) uint32 {
	g.Vertices = append(g.Vertices, v)
	g.Bounds.ExpandByPoint(v.Pos)
	return uint32(len(g.Vertices) - 1)
}

func (g *Geometry) tri(a, b, c uint32) {
	g.Indices = append(g.Indices, a, b, c)
}

// VertexCount is the number of vertices.
func (g *Geometry) VertexCount() int { return len(g.Vertices) }

// TriangleCount is the number of triangles.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Cylinder builds a closed truncated cone along Y, centred on the origin,
// with one height segment.
func Cylinder(topRad, botRad, height float32, radialSegs int) *Geometry {
	if radialSegs < 3 {
		radialSegs = 3
	}
	g := newGeometry()
	half := height / 2
	slope := (botRad - topRad) / height

	rows := [2][]uint32{}
	for y := 0; y <= 1; y++ {
		v := float32(y)
		radius := v*(botRad-topRad) + topRad
		for x := 0; x <= radialSegs; x++ {
			u := float32(x) / float32(radialSegs)
			theta := u * 2 * math32.Pi
			sin, cos := math32.Sin(theta), math32.Cos(theta)
			rows[y] = append(rows[y], g.add(Vertex{
				Pos:    math32.Vec3(radius*sin, -v*height+half, radius*cos),
				Normal: math32.Vec3(sin, slope, cos).Normal(),
				UV:     math32.Vec2(u, 1-v),
			}))
		}
	}
	for x := 0; x < radialSegs; x++ {
		a, b := rows[0][x], rows[1][x]
		c, d := rows[1][x+1], rows[0][x+1]
		g.tri(a, b, d)
		g.tri(b, c, d)
	}

	addCap := func(top bool) {
		radius, y, sign := botRad, -half, float32(-1)
		if top {
			radius, y, sign = topRad, half, 1
		}
		if radius <= 0 {
			return
		}
		center := g.add(Vertex{Pos: math32.Vec3(0, y, 0), Normal: math32.Vec3(0, sign, 0), UV: math32.Vec2(.5, .5)})
		start := uint32(len(g.Vertices))
		for x := 0; x <= radialSegs; x++ {
			theta := float32(x) / float32(radialSegs) * 2 * math32.Pi
			sin, cos := math32.Sin(theta), math32.Cos(theta)
			g.add(Vertex{
				Pos:    math32.Vec3(radius*sin, y, radius*cos),
				Normal: math32.Vec3(0, sign, 0),
				UV:     math32.Vec2(cos*.5+.5, sin*.5*sign+.5),
			})
		}
		for x := uint32(0); x < uint32(radialSegs); x++ {
			if top {
				g.tri(start+x, start+x+1, center)
			} else {
				g.tri(start+x+1, start+x, center)
			}
		}
	}
	addCap(true)
	addCap(false)
	return g
}

// Torus builds a ring in the XY plane. radialSegs runs around the tube's
// cross section, tubularSegs around the ring.
func Torus(radius, tube float32, radialSegs, tubularSegs int) *Geometry {
	g := newGeometry()
	for j := 0; j <= radialSegs; j++ {
		for i := 0; i <= tubularSegs; i++ {
			u := float32(i) / float32(tubularSegs) * 2 * math32.Pi
			v := float32(j) / float32(radialSegs) * 2 * math32.Pi

			center := math32.Vec3(radius*math32.Cos(u), radius*math32.Sin(u), 0)
			pt := math32.Vec3(
				(radius+tube*math32.Cos(v))*math32.Cos(u),
				(radius+tube*math32.Cos(v))*math32.Sin(u),
				tube*math32.Sin(v),
			)
			g.add(Vertex{
				Pos:    pt,
				Normal: pt.Sub(center).Normal(),
				UV:     math32.Vec2(float32(i)/float32(tubularSegs), float32(j)/float32(radialSegs)),
			})
		}
	}
	stride := uint32(tubularSegs + 1)
	for j := uint32(1); j <= uint32(radialSegs); j++ {
		for i := uint32(1); i <= uint32(tubularSegs); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			g.tri(a, b, d)
			g.tri(b, c, d)
		}
	}
	return g
}

// Circle builds a disc in the XY plane facing +Z.
func Circle(radius float32, segs int) *Geometry {
	g := newGeometry()
	center := g.add(Vertex{Pos: math32.Vec3(0, 0, 0), Normal: math32.Vec3(0, 0, 1), UV: math32.Vec2(.5, .5)})
	for s := 0; s <= segs; s++ {
		theta := float32(s) / float32(segs) * 2 * math32.Pi
		cos, sin := math32.Cos(theta), math32.Sin(theta)
		g.add(Vertex{
			Pos:    math32.Vec3(radius*cos, radius*sin, 0),
			Normal: math32.Vec3(0, 0, 1),
			UV:     math32.Vec2((cos+1)/2, (sin+1)/2),
		})
	}
	for s := uint32(1); s <= uint32(segs); s++ {
		g.tri(s, s+1, center)
	}
	return g
}

// Plane builds a w×d quad in the XZ plane facing +Y.
func Plane(w, d float32) *Geometry {
	g := newGeometry()
	hw, hd := w/2, d/2
	up := math32.Vec3(0, 1, 0)
	p0 := g.add(Vertex{Pos: math32.Vec3(-hw, 0, -hd), Normal: up, UV: math32.Vec2(0, 1)})
	p1 := g.add(Vertex{Pos: math32.Vec3(-hw, 0, hd), Normal: up, UV: math32.Vec2(0, 0)})
	p2 := g.add(Vertex{Pos: math32.Vec3(hw, 0, hd), Normal: up, UV: math32.Vec2(1, 0)})
	p3 := g.add(Vertex{Pos: math32.Vec3(hw, 0, -hd), Normal: up, UV: math32.Vec2(1, 1)})
	g.tri(p0, p1, p2)
	g.tri(p0, p2, p3)
	return g
}

// ProjectOnCylinder builds a decal patch: a grid over the projector's XY
// footprint pushed along +Z onto the front of a Cylinder(topRad, botRad,
// height) surface. UVs span the footprint, so swapping the image never
// touches the geometry.
func ProjectOnCylinder(topRad, botRad, height float32, pos, scale math32.Vector3, segs int) *Geometry {
	g := newGeometry()
	half := height / 2
	slope := (botRad - topRad) / height
	zMin, zMax := pos.Z-scale.Z/2, pos.Z+scale.Z/2

	idx := make([]int64, (segs+1)*(segs+1))
	for gy := 0; gy <= segs; gy++ {
		for gx := 0; gx <= segs; gx++ {
			u, v := float32(gx)/float32(segs), float32(gy)/float32(segs)
			x := pos.X + (u-.5)*scale.X
			y := pos.Y + (v-.5)*scale.Y
			idx[gy*(segs+1)+gx] = -1
			if y < -half || y > half {
				continue
			}
			r := botRad + (y+half)/height*(topRad-botRad)
			if math32.Abs(x) >= r {
				continue
			}
			z := math32.Sqrt(r*r - x*x)
			if z < zMin || z > zMax {
				continue
			}
			i := g.add(Vertex{
				Pos:    math32.Vec3(x, y, z),
				Normal: math32.Vec3(x/r, slope, z/r).Normal(),
				UV:     math32.Vec2(u, v),
			})
			idx[gy*(segs+1)+gx] = int64(i)
		}
	}
	for gy := 0; gy < segs; gy++ {
		for gx := 0; gx < segs; gx++ {
			a := idx[gy*(segs+1)+gx]
			b := idx[gy*(segs+1)+gx+1]
			c := idx[(gy+1)*(segs+1)+gx+1]
			d := idx[(gy+1)*(segs+1)+gx]
			if a < 0 || b < 0 || c < 0 || d < 0 {
				continue
			}
			g.tri(uint32(a), uint32(b), uint32(c))
			g.tri(uint32(a), uint32(c), uint32(d))
		}
	}
	return g
}
