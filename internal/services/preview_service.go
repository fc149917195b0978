package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cogentcore.org/core/math32"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"ramdom/internal/assets"
	"ramdom/internal/domain"
	applog "ramdom/internal/log"
	"ramdom/internal/scene"
)

var (
	ErrPreviewNotFound = errors.New("preview: not found")
	ErrPreviewClosed   = errors.New("preview: service shut down")
	ErrBadInput        = errors.New("preview: unknown input")
)

const defaultMaxFrame = 1024

type PreviewOptions struct {
	FPS          int
	Width        int
	Height       int
	IdleTimeout  time.Duration
	Damping      bool
	MaxFrameSize int
}

// InputKind names a pointer event forwarded from the browser.
type InputKind string

const (
	InputRotate InputKind = "rotate"
	InputZoom   InputKind = "zoom"
	InputPan    InputKind = "pan"
	InputResize InputKind = "resize"
)

type Input struct {
	Kind InputKind `json:"kind" form:"kind"`
	DX   float32   `json:"dx" form:"dx"`
	DY   float32   `json:"dy" form:"dy"`
	W    int       `json:"w" form:"w"`
	H    int       `json:"h" form:"h"`
}

// FrameImage is one rasterised frame, PNG-encoded.
type FrameImage struct {
	PNG  []byte
	ETag string
	Seq  uint64
}

type preview struct {
	id       string
	sid      string
	product  string
	r        *scene.Renderer
	lastSeen atomic.Int64
}

func (p *preview) touch(t time.Time) { p.lastSeen.Store(t.UnixNano()) }

// PreviewService owns the 3D previews: at most one per browser session, each
// with its own frame loop. Opening a preview replaces the session's previous
// one; idle previews are reaped.
type PreviewService struct {
	opts   PreviewOptions
	loader *assets.Loader
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	active atomic.Int64

	mu     sync.Mutex
	closed bool
	byID   map[string]*preview
	bySID  map[string]string
}

func NewPreviewService(opts PreviewOptions, loader *assets.Loader) *PreviewService {
	if opts.MaxFrameSize <= 0 {
		opts.MaxFrameSize = defaultMaxFrame
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &PreviewService{
		opts:   opts,
		loader: loader,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		byID:   map[string]*preview{},
		bySID:  map[string]string{},
	}
	if opts.IdleTimeout > 0 {
		s.wg.Add(1)
		go s.reap()
	}
	return s
}

// Open starts a preview of p for the session and returns its id. The decal
// is fetched in the background; until it arrives the garment shows no print.
func (s *PreviewService) Open(sid string, p domain.Product) (string, error) {
	c, err := domain.ParseHex(p.BaseColor)
	if err != nil {
		return "", fmt.Errorf("preview %s: %w", p.ID, err)
	}
	r := scene.NewRenderer(scene.Options{
		FPS:     s.opts.FPS,
		Width:   s.opts.Width,
		Height:  s.opts.Height,
		Damping: s.opts.Damping,
	}, c, nil, "")
	pv := &preview{id: uuid.NewString(), sid: sid, product: p.ID, r: r}
	pv.touch(s.now())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = r.Close()
		return "", ErrPreviewClosed
	}
	prev := s.byID[s.bySID[sid]]
	delete(s.byID, s.bySID[sid])
	s.byID[pv.id] = pv
	s.bySID[sid] = pv.id
	s.active.Add(1)
	s.wg.Add(1)
	go s.run(pv)
	if p.Decal != "" && s.loader != nil {
		s.wg.Add(1)
		go s.loadDecal(pv, p.Decal)
	}
	s.mu.Unlock()

	if prev != nil {
		s.release(prev, "replaced")
	}
	applog.Event("preview.open", map[string]any{"preview": pv.id, "sid": sid, "product": p.ID})
	return pv.id, nil
}

func (s *PreviewService) run(pv *preview) {
	defer s.wg.Done()
	defer s.active.Add(-1)
	err := pv.r.Run(s.ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, scene.ErrClosed) {
		applog.Fail("preview.loop", err, map[string]any{"preview": pv.id})
	}
}

func (s *PreviewService) loadDecal(pv *preview, ref string) {
	defer s.wg.Done()
	tex := s.loader.LoadOrNil(s.ctx, ref)
	if err := pv.r.SetDecal(tex, ref); err != nil && !errors.Is(err, scene.ErrClosed) {
		applog.Fail("preview.decal", err, map[string]any{"preview": pv.id})
	}
}

func (s *PreviewService) lookup(sid, id string) (*preview, error) {
	s.mu.Lock()
	pv, ok := s.byID[id]
	s.mu.Unlock()
	if !ok || pv.sid != sid {
		return nil, ErrPreviewNotFound
	}
	pv.touch(s.now())
	return pv, nil
}

// Input forwards one pointer event to the preview's frame loop.
func (s *PreviewService) Input(sid, id string, in Input) error {
	if !finiteDelta(in.DX) || !finiteDelta(in.DY) {
		return fmt.Errorf("%w: non-finite delta", ErrBadInput)
	}
	pv, err := s.lookup(sid, id)
	if err != nil {
		return err
	}
	switch in.Kind {
	case InputRotate:
		err = pv.r.Rotate(in.DX, in.DY)
	case InputZoom:
		err = pv.r.Zoom(in.DY)
	case InputPan:
		err = pv.r.Pan(in.DX, in.DY)
	case InputResize:
		err = pv.r.Resize(in.W, in.H)
	default:
		return fmt.Errorf("%w: %q", ErrBadInput, in.Kind)
	}
	return notFoundIfClosed(err)
}

// SetColor recolors the garment and returns the color as it will be shown.
func (s *PreviewService) SetColor(sid, id, hexColor string) (domain.Color, error) {
	pv, err := s.lookup(sid, id)
	if err != nil {
		return domain.Color{}, err
	}
	c, err := domain.ResolveColor(hexColor)
	if err != nil {
		return domain.Color{}, err
	}
	rgba, _ := domain.ParseHex(c.Hex)
	return c, notFoundIfClosed(pv.r.SetColor(rgba))
}

// Frame rasterises the latest frame at w×h, or at the viewport size when
// either is zero.
func (s *PreviewService) Frame(sid, id string, w, h int) (FrameImage, error) {
	pv, err := s.lookup(sid, id)
	if err != nil {
		return FrameImage{}, err
	}
	f := pv.r.Frame()
	if f == nil {
		return FrameImage{}, ErrPreviewNotFound
	}
	if w <= 0 || h <= 0 {
		w, h = f.Width, f.Height
	}
	w, h = min(w, s.opts.MaxFrameSize), min(h, s.opts.MaxFrameSize)

	img, err := scene.Render(f, w, h)
	if err != nil {
		return FrameImage{}, notFoundIfClosed(err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return FrameImage{}, fmt.Errorf("encode frame: %w", err)
	}
	sum := blake2b.Sum256(buf.Bytes())
	return FrameImage{
		PNG:  buf.Bytes(),
		ETag: `"` + hex.EncodeToString(sum[:16]) + `"`,
		Seq:  f.Seq,
	}, nil
}

// Close releases one preview. Closing an unknown preview is not an error.
func (s *PreviewService) Close(sid, id string) error {
	s.mu.Lock()
	pv, ok := s.byID[id]
	if !ok || pv.sid != sid {
		s.mu.Unlock()
		return nil
	}
	s.forget(pv)
	s.mu.Unlock()
	s.release(pv, "closed")
	return nil
}

// CloseSession releases whatever preview the session has open.
func (s *PreviewService) CloseSession(sid string) {
	s.mu.Lock()
	pv, ok := s.byID[s.bySID[sid]]
	if ok {
		s.forget(pv)
	}
	s.mu.Unlock()
	if ok {
		s.release(pv, "navigated")
	}
}

// forget drops pv from the indexes; mu must be held.
func (s *PreviewService) forget(pv *preview) {
	delete(s.byID, pv.id)
	if s.bySID[pv.sid] == pv.id {
		delete(s.bySID, pv.sid)
	}
}

func (s *PreviewService) release(pv *preview, reason string) {
	_ = pv.r.Close()
	applog.Event("preview.close", map[string]any{"preview": pv.id, "sid": pv.sid, "reason": reason})
}

// Active is the number of frame loops still running.
func (s *PreviewService) Active() int { return int(s.active.Load()) }

// Open previews, running or not.
func (s *PreviewService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *PreviewService) reap() {
	defer s.wg.Done()
	idle := s.opts.IdleTimeout
	t := time.NewTicker(max(idle/2, 10*time.Millisecond))
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			cutoff := s.now().Add(-idle).UnixNano()
			var stale []*preview
			s.mu.Lock()
			for _, pv := range s.byID {
				if pv.lastSeen.Load() < cutoff {
					s.forget(pv)
					stale = append(stale, pv)
				}
			}
			s.mu.Unlock()
			for _, pv := range stale {
				s.release(pv, "idle")
			}
		}
	}
}

// Shutdown closes every preview and waits for all loops and loads to exit.
func (s *PreviewService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	all := make([]*preview, 0, len(s.byID))
	for _, pv := range s.byID {
		all = append(all, pv)
	}
	clear(s.byID)
	clear(s.bySID)
	s.mu.Unlock()

	s.cancel()
	for _, pv := range all {
		s.release(pv, "shutdown")
	}
	s.wg.Wait()
}

func finiteDelta(v float32) bool { return !math32.IsNaN(v) && !math32.IsInf(v, 0) }

func notFoundIfClosed(err error) error {
	if errors.Is(err, scene.ErrClosed) {
		return ErrPreviewNotFound
	}
	return err
}
