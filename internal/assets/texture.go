// Package assets fetches and decodes decal textures for the preview. Loads
// run outside the frame loop; a failed load is reported to the caller, who
// shows the garment without a print.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	applog "ramdom/internal/log"
)

var (
	ErrEmptyRef    = errors.New("assets: empty texture reference")
	ErrBadStatus   = errors.New("assets: unexpected status")
	ErrOutsideRoot = errors.New("assets: path outside asset root")
)

const (
	defaultMaxSize  = 512
	defaultMaxBytes = 8 << 20
	cacheEntries    = 64
)

type Options struct {
	Timeout  time.Duration
	MaxSize  int    // longest side after fitting
	MaxBytes int64  // download cap
	Root     string // base directory for local references
	Client   *http.Client
}

// Loader decodes textures from http(s) URLs or local files, sharing
// concurrent loads of the same reference and caching successes.
type Loader struct {
	opts    Options
	client  *http.Client
	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker[*image.NRGBA]

	mu    sync.RWMutex
	cache map[string]*image.NRGBA
}

func NewLoader(opts Options) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Loader{
		opts:   opts,
		client: client,
		cache:  map[string]*image.NRGBA{},
		breaker: gobreaker.NewCircuitBreaker[*image.NRGBA](gobreaker.Settings{
			Name:        "texture-remote",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				applog.Event("texture.breaker", map[string]any{"name": name, "from": from.String(), "to": to.String()})
			},
		}),
	}
}

// Load returns the decoded texture for ref.
func (l *Loader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyRef
	}
	l.mu.RLock()
	img, ok := l.cache[ref]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := l.group.Do(ref, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.Timeout)
		defer cancel()
		if isRemote(ref) {
			return l.breaker.Execute(func() (*image.NRGBA, error) { return l.fetch(ctx, ref) })
		}
		return l.open(ref)
	})
	if err != nil {
		return nil, err
	}
	img = v.(*image.NRGBA)

	l.mu.Lock()
	if len(l.cache) >= cacheEntries {
		clear(l.cache)
	}
	l.cache[ref] = img
	l.mu.Unlock()
	return img, nil
}

// LoadOrNil is Load for the preview: failures are logged and yield nil,
// which the renderer shows as a garment without a print.
func (l *Loader) LoadOrNil(ctx context.Context, ref string) *image.NRGBA {
	if strings.TrimSpace(ref) == "" {
		return nil
	}
	img, err := l.Load(ctx, ref)
	if err != nil {
		applog.Fail("texture.load", err, map[string]any{"ref": ref})
		return nil
	}
	return img
}

func (l *Loader) fetch(ctx context.Context, url string) (*image.NRGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("texture request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("texture fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}
	return l.decode(io.LimitReader(resp.Body, l.opts.MaxBytes))
}

func (l *Loader) open(ref string) (*image.NRGBA, error) {
	path := filepath.Clean(ref)
	if l.opts.Root != "" {
		path = filepath.Join(l.opts.Root, filepath.Clean("/"+ref))
		if rel, err := filepath.Rel(l.opts.Root, path); err != nil || strings.HasPrefix(rel, "..") {
			return nil, ErrOutsideRoot
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture open: %w", err)
	}
	defer f.Close()
	return l.decode(f)
}

func (l *Loader) decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("texture decode: %w", err)
	}
	return imaging.Fit(img, l.opts.MaxSize, l.opts.MaxSize, imaging.Lanczos), nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
