package scene

import "cogentcore.org/core/math32"

const (
	// SnapEpsilon is the residual rotation (radians) below which damping stops.
	SnapEpsilon = 1e-4
	// DampingFactor is the share of the pending rotation applied per frame.
	DampingFactor = .05
	// MaxSettleFrames bounds how long damped motion lasts after input stops.
	// A full-turn residual decays below SnapEpsilon in about 216 frames.
	MaxSettleFrames = 240

	maxResidual = 2 * math32.Pi
)

type OrbitLimits struct {
	MinPolar, MaxPolar       float32
	MinDistance, MaxDistance float32
}

type OrbitOptions struct {
	Limits      OrbitLimits
	Damping     bool
	RotateSpeed float32
	ZoomSpeed   float32
}

func DefaultOrbitOptions(damping bool) OrbitOptions {
	return OrbitOptions{
		Limits: OrbitLimits{
			MinPolar: math32.Pi / 3, MaxPolar: math32.Pi / 1.5,
			MinDistance: 3, MaxDistance: 7,
		},
		Damping:     damping,
		RotateSpeed: 1,
		ZoomSpeed:   1,
	}
}

// OrbitState is the camera's spherical position around the origin.
type OrbitState struct {
	Azimuth  float32
	Polar    float32
	Distance float32
}

// InitialOrbit looks at the origin from +Z.
func InitialOrbit() OrbitState {
	return OrbitState{Azimuth: 0, Polar: math32.Pi / 2, Distance: 4.5}
}

// Position converts the spherical state to a world position.
func (s OrbitState) Position() math32.Vector3 {
	sinPhi := math32.Sin(s.Polar)
	return math32.Vec3(
		s.Distance*sinPhi*math32.Sin(s.Azimuth),
		s.Distance*math32.Cos(s.Polar),
		s.Distance*sinPhi*math32.Cos(s.Azimuth),
	)
}

// Orbit turns pointer and wheel deltas into a bounded camera pose. It is
// owned by the frame loop and not safe for concurrent use.
type Orbit struct {
	opts  OrbitOptions
	state OrbitState

	dTheta, dPhi float32
	scale        float32
}

func NewOrbit(opts OrbitOptions) *Orbit {
	o := &Orbit{opts: opts, state: InitialOrbit(), scale: 1}
	o.state.Polar = math32.Clamp(o.state.Polar, opts.Limits.MinPolar, opts.Limits.MaxPolar)
	o.state.Distance = math32.Clamp(o.state.Distance, opts.Limits.MinDistance, opts.Limits.MaxDistance)
	return o
}

func (o *Orbit) State() OrbitState { return o.state }

// Rotate records a pointer drag of (dx, dy) pixels on a viewport of the
// given height.
func (o *Orbit) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 || !finite(dx) || !finite(dy) {
		return
	}
	o.dTheta -= 2 * math32.Pi * dx / viewportHeight * o.opts.RotateSpeed
	o.dPhi -= 2 * math32.Pi * dy / viewportHeight * o.opts.RotateSpeed
	o.dTheta = math32.Clamp(o.dTheta, -maxResidual, maxResidual)
	o.dPhi = math32.Clamp(o.dPhi, -maxResidual, maxResidual)
}

// Zoom records one wheel step; negative deltaY moves closer.
func (o *Orbit) Zoom(deltaY float32) {
	if !finite(deltaY) {
		return
	}
	step := math32.Pow(.95, o.opts.ZoomSpeed)
	switch {
	case deltaY < 0:
		o.scale *= step
	case deltaY > 0:
		o.scale /= step
	}
}

// Settled reports that no rotation is pending.
func (o *Orbit) Settled() bool { return o.dTheta == 0 && o.dPhi == 0 && o.scale == 1 }

// Update applies pending input and reports whether the pose changed.
func (o *Orbit) Update() bool {
	prev := o.state
	lim := o.opts.Limits

	if o.opts.Damping {
		o.state.Azimuth += o.dTheta * DampingFactor
		o.state.Polar += o.dPhi * DampingFactor
	} else {
		o.state.Azimuth += o.dTheta
		o.state.Polar += o.dPhi
	}
	o.state.Polar = math32.Clamp(o.state.Polar, lim.MinPolar, lim.MaxPolar)
	o.state.Distance = math32.Clamp(o.state.Distance*o.scale, lim.MinDistance, lim.MaxDistance)
	o.state.Azimuth = wrapAngle(o.state.Azimuth)

	if o.opts.Damping {
		o.dTheta = snap(o.dTheta * (1 - DampingFactor))
		o.dPhi = snap(o.dPhi * (1 - DampingFactor))
	} else {
		o.dTheta, o.dPhi = 0, 0
	}
	o.scale = 1
	return o.state != prev
}

func finite(v float32) bool { return !math32.IsNaN(v) && !math32.IsInf(v, 0) }

func snap(d float32) float32 {
	if math32.Abs(d) < SnapEpsilon {
		return 0
	}
	return d
}

func wrapAngle(a float32) float32 {
	for a > math32.Pi {
		a -= 2 * math32.Pi
	}
	for a < -math32.Pi {
		a += 2 * math32.Pi
	}
	return a
}

// Camera is a perspective camera aimed at Target.
type Camera struct {
	Position math32.Vector3
	Target   math32.Vector3
	Up       math32.Vector3
	FOV      float32 // vertical, degrees
	Aspect   float32
	Near     float32
	Far      float32
}

const CameraFOV = 40

// CameraFor places a camera at the orbit pose.
func CameraFor(s OrbitState, aspect float32) Camera {
	return Camera{
		Position: s.Position(),
		Target:   math32.Vec3(0, 0, 0),
		Up:       math32.Vec3(0, 1, 0),
		FOV:      CameraFOV,
		Aspect:   aspect,
		Near:     .1,
		Far:      1000,
	}
}
