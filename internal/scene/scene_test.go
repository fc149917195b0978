package scene

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 255, A: 255}

func solid(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTestRenderer(t *testing.T, damping bool) *Renderer {
	t.Helper()
	r := NewRenderer(Options{Width: 120, Height: 140, Damping: damping}, white, nil, "")
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestGeometryCounts(t *testing.T) {
	cyl := Cylinder(.38, .42, 1.2, 32)
	assert.Equal(t, 2*33+2*(1+33), cyl.VertexCount())
	assert.Equal(t, 32*2+32*2, cyl.TriangleCount())

	tor := Torus(.18, .04, 16, 100)
	assert.Equal(t, 17*101, tor.VertexCount())
	assert.Equal(t, 16*100*2, tor.TriangleCount())

	disc := Circle(.16, 32)
	assert.Equal(t, 34, disc.VertexCount())

	size := cyl.Bounds.Size()
	assert.InDelta(t, 1.2, size.Y, 1e-5)
	assert.InDelta(t, .84, size.X, 1e-3)
}

func TestDecalPatchSitsOnTorsoFront(t *testing.T) {
	g := ProjectOnCylinder(.38, .42, 1.2, DecalPosition, DecalScale, 16)
	require.Equal(t, 17*17, g.VertexCount())
	for _, v := range g.Vertices {
		assert.Greater(t, v.Pos.Z, float32(.3))
		assert.GreaterOrEqual(t, v.UV.X, float32(0))
		assert.LessOrEqual(t, v.UV.Y, float32(1))
	}
}

func TestTransformRotatesXYZ(t *testing.T) {
	up := At(0, .57, 0).Rotated(math32.Pi/2, 0, 0).Direction(math32.Vec3(0, 0, 1))
	assert.InDelta(t, -1, up.Y, 1e-5)

	p := At(.45, .4, 0).Rotated(0, 0, -math32.Pi/4).Point(math32.Vec3(0, .25, 0))
	assert.InDelta(t, .45+.25*math32.Sin(math32.Pi/4), p.X, 1e-5)

	flat := Identity().Scaled(1.1, 1, .5).Point(math32.Vec3(1, 1, 1))
	assert.Equal(t, math32.Vec3(1.1, 1, .5), flat)
}

func TestFabricMaterial(t *testing.T) {
	m := FabricMaterial(color.NRGBA{R: 0x1d, G: 0x35, B: 0x57, A: 255}, 3)
	assert.Equal(t, float32(.85), m.Roughness)
	assert.Equal(t, float32(.05), m.Metalness)
	assert.Equal(t, DoubleSide, m.Side)
	assert.Equal(t, LerpColor(m.Color, white, .2), m.SheenColor)
	assert.Greater(t, m.SheenColor.R, m.Color.R)
	assert.Equal(t, uint64(3), m.Version)
}

func TestMissingDecalIsInvisible(t *testing.T) {
	r := newTestRenderer(t, true)
	f := r.step(time.Second)
	require.NotNil(t, f.Appearance)
	assert.Zero(t, f.Appearance.Decal.Opacity)
	assert.False(t, f.Appearance.Decal.Visible())
	assert.Equal(t, DecalPosition, f.Appearance.Decal.Position)
}

func TestColorChangeKeepsGeometry(t *testing.T) {
	r := newTestRenderer(t, true)
	before := r.step(0)
	count := before.Garment.VertexCount()

	require.NoError(t, r.SetColor(red))
	after := r.step(16 * time.Millisecond)

	assert.Same(t, before.Garment, after.Garment)
	assert.Equal(t, count, after.Garment.VertexCount())
	assert.Equal(t, red, after.Appearance.Fabric.Color)
	assert.Greater(t, after.Appearance.Fabric.Version, before.Appearance.Fabric.Version)
	assert.Equal(t, white, before.Appearance.Fabric.Color, "published frames never change")
}

func TestDecalSwap(t *testing.T) {
	r := newTestRenderer(t, true)
	require.NoError(t, r.SetDecal(solid(red, 4, 4), "stamp.png"))
	f := r.step(0)
	assert.True(t, f.Appearance.Decal.Visible())
	assert.Equal(t, "stamp.png", f.Appearance.Decal.Source)

	require.NoError(t, r.SetDecal(nil, "broken.png"))
	f = r.step(0)
	assert.Zero(t, f.Appearance.Decal.Opacity)
}

func TestZoomClampsToMaxDistance(t *testing.T) {
	o := NewOrbit(DefaultOrbitOptions(false))
	for i := 0; i < 200; i++ {
		o.Zoom(100)
		o.Update()
	}
	assert.Equal(t, float32(7), o.State().Distance)

	for i := 0; i < 200; i++ {
		o.Zoom(-100)
		o.Update()
	}
	assert.Equal(t, float32(3), o.State().Distance)
}

func TestZoomThroughRendererQueue(t *testing.T) {
	r := newTestRenderer(t, true)
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Zoom(1))
		r.step(0)
	}
	assert.Equal(t, float32(7), r.Frame().Orbit.Distance)
}

func TestPolarStaysInBounds(t *testing.T) {
	for _, damping := range []bool{false, true} {
		o := NewOrbit(DefaultOrbitOptions(damping))
		for i := 0; i < 50; i++ {
			o.Rotate(0, -5000, 560)
			o.Update()
		}
		assert.InDelta(t, math32.Pi/1.5, o.State().Polar, 1e-6)
		for i := 0; i < 600; i++ {
			o.Rotate(0, 5000, 560)
			o.Update()
		}
		assert.InDelta(t, math32.Pi/3, o.State().Polar, 1e-6)
	}
}

func TestNonFiniteDeltasAreDropped(t *testing.T) {
	r := newTestRenderer(t, true)
	require.NoError(t, r.Rotate(math32.NaN(), 0))
	require.NoError(t, r.Rotate(0, math32.Inf(1)))
	require.NoError(t, r.Zoom(math32.NaN()))
	r.step(0)
	for i := 0; i < 300; i++ {
		require.NoError(t, r.Rotate(5, 1))
		r.step(0)
	}
	s := r.Frame().Orbit
	for _, v := range []float32{s.Azimuth, s.Polar, s.Distance} {
		assert.False(t, math32.IsNaN(v) || math32.IsInf(v, 0), "orbit %+v", s)
	}
	assert.GreaterOrEqual(t, s.Polar, float32(math32.Pi/3))
	assert.LessOrEqual(t, s.Polar, float32(math32.Pi/1.5))
}

func TestDampingSettles(t *testing.T) {
	o := NewOrbit(DefaultOrbitOptions(true))
	o.Rotate(100000, 100000, 560)
	frames := 0
	for !o.Settled() {
		o.Update()
		frames++
		require.LessOrEqual(t, frames, MaxSettleFrames)
	}

	rest := o.State()
	for i := 0; i < 100; i++ {
		assert.False(t, o.Update(), "no drift at rest")
	}
	assert.Equal(t, rest, o.State())
}

func TestUndampedAppliesImmediately(t *testing.T) {
	o := NewOrbit(DefaultOrbitOptions(false))
	o.Rotate(56, 0, 560)
	o.Update()
	assert.InDelta(t, -2*math32.Pi*.1, o.State().Azimuth, 1e-5)
	assert.True(t, o.Settled())
	assert.False(t, o.Update())
}

func TestPanIsIgnored(t *testing.T) {
	r := newTestRenderer(t, false)
	before := r.step(0)
	require.NoError(t, r.Pan(300, 300))
	after := r.step(0)
	assert.Equal(t, before.Orbit, after.Orbit)
	assert.Equal(t, math32.Vec3(0, 0, 0), after.Camera.Target)
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	r := NewRenderer(Options{Width: 100, Height: 100, QueueSize: 1}, white, nil, "")
	defer r.Close()
	require.NoError(t, r.Rotate(10, 0))
	require.NoError(t, r.Rotate(20, 0))
	require.NoError(t, r.Rotate(30, 0))
	f := r.step(0)
	want := -2 * math32.Pi * (10 + 30) / 100
	assert.InDelta(t, want, f.Orbit.Azimuth, 1e-5)
}

func TestResizeUpdatesAspect(t *testing.T) {
	r := newTestRenderer(t, true)
	require.NoError(t, r.Resize(800, 400))
	f := r.step(0)
	assert.Equal(t, float32(2), f.Camera.Aspect)
	assert.ErrorIs(t, r.Resize(0, 10), ErrInvalidSize)
}

func TestAnimationIsBounded(t *testing.T) {
	for s := 0; s < 120; s++ {
		p := Animate(time.Duration(s)*250*time.Millisecond, GarmentScale)
		assert.LessOrEqual(t, math32.Abs(p.Group.Position.Y), float32(.03))
		assert.LessOrEqual(t, math32.Abs(p.Group.Rotation.Y), float32(.05))
		assert.LessOrEqual(t, math32.Abs(p.Float.Position.Y), float32(.02)+1e-6)
	}
}

func TestRunAndCloseDoNotLeak(t *testing.T) {
	r := NewRenderer(Options{FPS: 240, Width: 64, Height: 64}, white, nil, "")
	errc := make(chan error, 1)
	go func() { errc <- r.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		f := r.Frame()
		return f != nil && f.Seq > 3
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop still running after Close")
	}
	assert.Nil(t, r.Frame())
	assert.ErrorIs(t, r.Rotate(1, 1), ErrClosed)
	assert.ErrorIs(t, r.SetColor(red), ErrClosed)
	assert.ErrorIs(t, r.Run(context.Background()), ErrClosed)
}

func TestRunStopsWithContext(t *testing.T) {
	r := NewRenderer(Options{FPS: 120}, white, nil, "")
	defer r.Close()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	<-r.Done()
}

func TestRenderDrawsGarmentAndDecal(t *testing.T) {
	r := newTestRenderer(t, true)
	// wide enough that the sleeves never reach the corners
	plain, err := Render(r.step(0), 400, 140)
	require.NoError(t, err)
	center := plain.NRGBAAt(200, 70)
	assert.Equal(t, uint8(255), center.A)
	assert.Zero(t, plain.NRGBAAt(0, 0).A, "background stays transparent")

	require.NoError(t, r.SetDecal(solid(red, 8, 8), "red"))
	printed, err := Render(r.step(0), 400, 140)
	require.NoError(t, err)
	got := printed.NRGBAAt(200, 70)
	assert.Equal(t, uint8(255), got.R)
	assert.Less(t, got.G, uint8(10))
}

func TestRenderAfterCloseFails(t *testing.T) {
	r := NewRenderer(Options{}, white, nil, "")
	require.NoError(t, r.Close())
	_, err := Render(r.Frame(), 10, 10)
	assert.ErrorIs(t, err, ErrClosed)
}
