// Package session holds the state of one QR editor and serializes its
// render passes.
//
// Every change bumps a generation counter and cancels the pass that is still
// running for the previous generation. A pass renders into a private scratch
// surface and only commits it if its generation is still the newest, so a
// slow stale pass can never overwrite the result of a newer one.
package session

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cristianadrielbraun/qrcreator/internal/export"
	"github.com/cristianadrielbraun/qrcreator/internal/logo"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

// ErrStale is returned by a pass that was superseded before it could commit.
var ErrStale = errors.New("render superseded by a newer change")

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	Form       Form           `json:"form"`
	Options    render.Options `json:"-"`
	HasLogo    bool           `json:"hasLogo"`
	Generation uint64         `json:"generation"`
	Renders    int            `json:"renders"`
	Error      string         `json:"error,omitempty"`
}

// Session is the configuration state holder for one editor.
type Session struct {
	id           string
	pipeline     *render.Pipeline
	maxLogoBytes int64
	now          func() time.Time

	mu       sync.Mutex
	form     Form
	opts     render.Options
	logo     image.Image
	gen      uint64
	cancel   context.CancelFunc
	// surface was painted with drawn, which lags opts after a failed pass.
	surface  *render.Surface
	drawn    render.Options
	renders  int
	lastErr  string
	lastSeen time.Time
}

// New returns a session in the default state. Nothing is drawn until the
// first change or Regenerate.
func New(id string, p *render.Pipeline, maxLogoBytes int64) *Session {
	form := DefaultForm()
	s := &Session{
		id:           id,
		pipeline:     p,
		maxLogoBytes: maxLogoBytes,
		now:          time.Now,
		form:         form,
		opts:         form.Options(),
	}
	s.surface = render.NewSurface(s.opts.Width)
	s.drawn = s.opts
	s.lastSeen = s.now()
	return s
}

// ID identifies the session in the store.
func (s *Session) ID() string { return s.id }

// Update replaces the form and re-renders.
func (s *Session) Update(ctx context.Context, f Form) (Snapshot, error) {
	return s.apply(ctx, func() {
		s.form = f.Normalize()
		s.opts = s.form.Options()
	})
}

// SetLogo decodes data and re-renders with it. Decoding finishes before the
// dependent pass starts; a decode failure leaves the current logo in place.
func (s *Session) SetLogo(ctx context.Context, data []byte) (Snapshot, error) {
	img, err := logo.Decode(data, s.maxLogoBytes)
	if err != nil {
		return s.fail(err), err
	}
	return s.apply(ctx, func() { s.logo = img })
}

// SetLogoDataURL is SetLogo for a data:image/...;base64 URL.
func (s *Session) SetLogoDataURL(ctx context.Context, url string) (Snapshot, error) {
	img, err := logo.DecodeDataURL(url, s.maxLogoBytes)
	if err != nil {
		return s.fail(err), err
	}
	return s.apply(ctx, func() { s.logo = img })
}

// ClearLogo removes the logo and re-renders.
func (s *Session) ClearLogo(ctx context.Context) (Snapshot, error) {
	return s.apply(ctx, func() { s.logo = nil })
}

// Reset restores defaults with an empty text and no logo.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	return s.apply(ctx, func() {
		s.form = DefaultForm()
		s.form.Text = ""
		s.opts = s.form.Options()
		s.logo = nil
	})
}

// Regenerate re-renders the current state.
func (s *Session) Regenerate(ctx context.Context) (Snapshot, error) {
	return s.apply(ctx, func() {})
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Preview returns a copy of the committed surface.
func (s *Session) Preview() *image.RGBA {
	s.mu.Lock()
	surface := s.surface
	s.mu.Unlock()
	return surface.Copy()
}

// Export writes the current design in format f. Raster formats serialize the
// committed surface with the options it was painted with; SVG is regenerated
// from the form.
func (s *Session) Export(w io.Writer, f export.Format) error {
	s.mu.Lock()
	text, opts, drawn, renders, surface := s.form.Text, s.opts, s.drawn, s.renders, s.surface
	s.lastSeen = s.now()
	s.mu.Unlock()

	switch f {
	case export.SVG:
		data, err := export.Vector(s.pipeline, text, opts)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return errors.Join(export.ErrExport, err)
		}
		return nil
	case export.PNG, export.JPEG:
		if renders == 0 {
			return errors.Join(export.ErrExport, errors.New("nothing has been rendered yet"))
		}
		if f == export.JPEG {
			return export.WriteJPEG(w, surface.Copy(), drawn.Light)
		}
		return export.WritePNG(w, surface.Copy(), drawn.Light)
	}
	return errors.Join(export.ErrExport, errors.New("unsupported format "+string(f)))
}

// LastSeen is the time the session was last looked up, changed or exported.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// Close cancels any pass still in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) apply(ctx context.Context, mutate func()) (Snapshot, error) {
	s.mu.Lock()
	mutate()
	if s.cancel != nil {
		s.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.lastSeen = s.now()
	text, opts, img := s.form.Text, s.opts, s.logo
	s.mu.Unlock()
	defer cancel()

	scratch := render.NewSurface(opts.Width)
	err := s.pipeline.Paint(rctx, scratch, text, opts, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.snapshotLocked(), ErrStale
	}
	s.cancel = nil

	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.lastErr = Message(err)
		}
		return s.snapshotLocked(), err
	}

	s.surface.Replace(scratch)
	s.drawn = opts
	s.renders++
	s.lastErr = ""
	return s.snapshotLocked(), nil
}

func (s *Session) fail(err error) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = Message(err)
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Form:       s.form,
		Options:    s.opts,
		HasLogo:    s.logo != nil,
		Generation: s.gen,
		Renders:    s.renders,
		Error:      s.lastErr,
	}
}

// Message flattens err into a single display line.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
