package scene

import "cogentcore.org/core/math32"

// Transform places a node relative to its parent: scale, then Euler rotation
// (XYZ order, radians), then translation.
type Transform struct {
	Position math32.Vector3
	Rotation math32.Vector3
	Scale    math32.Vector3
}

// Identity is the no-op transform.
func Identity() Transform {
	return Transform{Scale: math32.Vec3(1, 1, 1)}
}

func At(x, y, z float32) Transform {
	t := Identity()
	t.Position = math32.Vec3(x, y, z)
	return t
}

func (t Transform) Rotated(x, y, z float32) Transform {
	t.Rotation = math32.Vec3(x, y, z)
	return t
}

func (t Transform) Scaled(x, y, z float32) Transform {
	t.Scale = math32.Vec3(x, y, z)
	return t
}

// rotate applies Rz, then Ry, then Rx, matching an XYZ Euler matrix Rx·Ry·Rz.
func rotate(v, e math32.Vector3) math32.Vector3 {
	if e.Z != 0 {
		s, c := math32.Sin(e.Z), math32.Cos(e.Z)
		v = math32.Vec3(v.X*c-v.Y*s, v.X*s+v.Y*c, v.Z)
	}
	if e.Y != 0 {
		s, c := math32.Sin(e.Y), math32.Cos(e.Y)
		v = math32.Vec3(v.X*c+v.Z*s, v.Y, -v.X*s+v.Z*c)
	}
	if e.X != 0 {
		s, c := math32.Sin(e.X), math32.Cos(e.X)
		v = math32.Vec3(v.X, v.Y*c-v.Z*s, v.Y*s+v.Z*c)
	}
	return v
}

// Point maps a point from child to parent space.
func (t Transform) Point(p math32.Vector3) math32.Vector3 {
	return rotate(p.Mul(t.Scale), t.Rotation).Add(t.Position)
}

// Direction maps a normal from child to parent space (inverse-transpose of
// the scale, renormalised).
func (t Transform) Direction(n math32.Vector3) math32.Vector3 {
	inv := math32.Vec3(safeInv(t.Scale.X), safeInv(t.Scale.Y), safeInv(t.Scale.Z))
	return rotate(n.Mul(inv), t.Rotation).Normal()
}

func safeInv(s float32) float32 {
	if s == 0 {
		return 0
	}
	return 1 / s
}

// Chain is a path from a part to the world, innermost transform first.
type Chain []Transform

func (c Chain) Point(p math32.Vector3) math32.Vector3 {
	for _, t := range c {
		p = t.Point(p)
	}
	return p
}

func (c Chain) Direction(n math32.Vector3) math32.Vector3 {
	for _, t := range c {
		n = t.Direction(n)
	}
	return n
}

// Then returns c followed by the outer transforms.
func (c Chain) Then(outer ...Transform) Chain {
	out := make(Chain, 0, len(c)+len(outer))
	out = append(out, c...)
	return append(out, outer...)
}
