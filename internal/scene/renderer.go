// Package scene is the 3D garment preview: a procedural t-shirt, its fabric
// and decal, an orbit camera and the frame loop that animates them. Frames
// are immutable snapshots that can be rasterised to an image at any time.
package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrClosed      = errors.New("scene: renderer closed")
	ErrRunning     = errors.New("scene: renderer already running")
	ErrInvalidSize = errors.New("scene: invalid viewport size")
)

const (
	DefaultFPS       = 60
	defaultQueueSize = 64
)

type Options struct {
	FPS       int
	Width     int
	Height    int
	Damping   bool
	QueueSize int
	Rig       *Rig
}

type inputKind uint8

const (
	inputRotate inputKind = iota
	inputZoom
)

type input struct {
	kind   inputKind
	dx, dy float32
}

// Frame is one published state of the preview. It is never modified after
// publication.
type Frame struct {
	Seq        uint64
	Elapsed    time.Duration
	Orbit      OrbitState
	Camera     Camera
	Pose       Pose
	Appearance *Appearance
	Garment    *Garment
	Rig        Rig
	Width      int
	Height     int
}

// Renderer owns one preview. The frame loop is the only writer of the
// camera and the garment pose; other goroutines talk to it through the
// input queue and the prepared appearance.
type Renderer struct {
	opts    Options
	rig     Rig
	garment *Garment
	orbit   *Orbit
	seq     uint64

	input      chan input
	overflow   atomic.Pointer[input]
	appearance atomic.Pointer[Appearance]
	frame      atomic.Pointer[Frame]
	size       atomic.Uint64
	version    atomic.Uint64
	prepMu     sync.Mutex

	mu      sync.Mutex
	running bool
	closed  bool
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewRenderer builds the garment in color c with an optional decal texture
// and publishes the first frame. Call Run to animate it and Close to release it.
func NewRenderer(opts Options, c color.NRGBA, decal *image.NRGBA, decalSource string) *Renderer {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 480, 560
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	rig := DefaultRig()
	if opts.Rig != nil {
		rig = *opts.Rig
	}
	r := &Renderer{
		opts:    opts,
		rig:     rig,
		garment: NewGarment(),
		orbit:   NewOrbit(DefaultOrbitOptions(opts.Damping)),
		input:   make(chan input, opts.QueueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.size.Store(packSize(opts.Width, opts.Height))
	r.appearance.Store(&Appearance{
		Fabric: FabricMaterial(c, r.version.Add(1)),
		Decal:  NewDecal(decal, decalSource),
	})
	r.step(0)
	return r
}

// Run drives the frame loop until ctx is done or the renderer is closed.
func (r *Renderer) Run(ctx context.Context) error {
	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return ErrClosed
	case r.running:
		r.mu.Unlock()
		return ErrRunning
	}
	r.running = true
	r.mu.Unlock()
	defer close(r.done)

	ticker := time.NewTicker(time.Second / time.Duration(r.opts.FPS))
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.quit:
			return nil
		case now := <-ticker.C:
			r.step(now.Sub(start))
		}
	}
}

// step advances one frame. It never blocks.
func (r *Renderer) step(elapsed time.Duration) *Frame {
	w, h := unpackSize(r.size.Load())
	for drained := false; !drained; {
		select {
		case in := <-r.input:
			r.apply(in, h)
		default:
			drained = true
		}
	}
	if in := r.overflow.Swap(nil); in != nil {
		r.apply(*in, h)
	}
	r.orbit.Update()

	r.seq++
	state := r.orbit.State()
	f := &Frame{
		Seq:        r.seq,
		Elapsed:    elapsed,
		Orbit:      state,
		Camera:     CameraFor(state, float32(w)/float32(h)),
		Pose:       Animate(elapsed, r.garment.Scale),
		Appearance: r.appearance.Load(),
		Garment:    r.garment,
		Rig:        r.rig,
		Width:      w,
		Height:     h,
	}
	r.frame.Store(f)
	return f
}

func (r *Renderer) apply(in input, height int) {
	switch in.kind {
	case inputRotate:
		r.orbit.Rotate(in.dx, in.dy, float32(height))
	case inputZoom:
		r.orbit.Zoom(in.dy)
	}
}

func (r *Renderer) enqueue(in input) error {
	if r.isClosed() {
		return ErrClosed
	}
	select {
	case r.input <- in:
	default:
		r.overflow.Store(&in)
	}
	return nil
}

// Rotate queues a pointer drag in pixels.
func (r *Renderer) Rotate(dx, dy float32) error {
	return r.enqueue(input{kind: inputRotate, dx: dx, dy: dy})
}

// Zoom queues one wheel step.
func (r *Renderer) Zoom(deltaY float32) error {
	return r.enqueue(input{kind: inputZoom, dy: deltaY})
}

// Pan is accepted for pointer parity and dropped; the target stays at the origin.
func (r *Renderer) Pan(dx, dy float32) error {
	if r.isClosed() {
		return ErrClosed
	}
	return nil
}

// SetColor prepares a new fabric off the loop; the next frame picks it up.
func (r *Renderer) SetColor(c color.NRGBA) error {
	return r.prepare(func(a *Appearance) {
		a.Fabric = FabricMaterial(c, r.version.Add(1))
	})
}

// SetDecal swaps the decal texture. A nil texture hides the decal.
func (r *Renderer) SetDecal(tex *image.NRGBA, source string) error {
	return r.prepare(func(a *Appearance) {
		a.Decal = NewDecal(tex, source)
	})
}

func (r *Renderer) prepare(change func(*Appearance)) error {
	r.prepMu.Lock()
	defer r.prepMu.Unlock()
	if r.isClosed() {
		return ErrClosed
	}
	cur := r.appearance.Load()
	if cur == nil {
		return ErrClosed
	}
	next := *cur
	change(&next)
	r.appearance.Store(&next)
	return nil
}

// Resize changes the viewport; the projection follows on the next frame.
func (r *Renderer) Resize(w, h int) error {
	if w <= 0 || h <= 0 || w > 4096 || h > 4096 {
		return ErrInvalidSize
	}
	if r.isClosed() {
		return ErrClosed
	}
	r.size.Store(packSize(w, h))
	return nil
}

// Frame returns the latest published frame, or nil once closed.
func (r *Renderer) Frame() *Frame { return r.frame.Load() }

// Appearance returns the prepared appearance the next frame will use.
func (r *Renderer) Appearance() *Appearance { return r.appearance.Load() }

// Close stops the loop, waits for it and drops the geometry and texture.
// It is safe to call more than once.
func (r *Renderer) Close() error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		wasRunning := r.running
		r.mu.Unlock()

		close(r.quit)
		if wasRunning {
			<-r.done
		}
		r.prepMu.Lock()
		r.appearance.Store(nil)
		r.prepMu.Unlock()
		r.frame.Store(nil)
		r.garment = nil
	})
	return nil
}

// Done is closed when a started loop has exited.
func (r *Renderer) Done() <-chan struct{} { return r.done }

func (r *Renderer) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func packSize(w, h int) uint64 { return uint64(uint32(w))<<32 | uint64(uint32(h)) }

func unpackSize(v uint64) (int, int) { return int(v >> 32), int(uint32(v)) }
