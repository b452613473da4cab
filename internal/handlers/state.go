package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/internal/export"
	"github.com/cristianadrielbraun/qrcreator/internal/logo"
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
	"github.com/cristianadrielbraun/qrcreator/internal/session"
	"github.com/cristianadrielbraun/qrcreator/web/components"
	"github.com/cristianadrielbraun/qrcreator/web/pages"
)

type optionsView struct {
	Width  int    `json:"width"`
	Margin int    `json:"margin"`
	Level  string `json:"ecLevel"`
	Dark   string `json:"fg"`
	Light  string `json:"bg"`
}

type stateView struct {
	Form       session.Form `json:"form"`
	Options    optionsView  `json:"options"`
	HasLogo    bool         `json:"hasLogo"`
	Generation uint64       `json:"generation"`
	Renders    int          `json:"renders"`
	Error      string       `json:"error,omitempty"`
}

func newStateView(snap session.Snapshot) stateView {
	return stateView{
		Form: snap.Form,
		Options: optionsView{
			Width:  snap.Options.Width,
			Margin: snap.Options.Margin,
			Level:  snap.Options.Level.String(),
			Dark:   render.FormatColor(snap.Options.Dark),
			Light:  render.FormatColor(snap.Options.Light),
		},
		HasLogo:    snap.HasLogo,
		Generation: snap.Generation,
		Renders:    snap.Renders,
		Error:      snap.Error,
	}
}

// statusFor maps a session error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrStale):
		return http.StatusConflict
	case errors.Is(err, qr.ErrEncoding), errors.Is(err, logo.ErrDecode), errors.Is(err, export.ErrExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) respond(c *gin.Context, snap session.Snapshot, err error) {
	view := newStateView(snap)
	if err != nil {
		_ = c.Error(err)
		if view.Error == "" && !errors.Is(err, session.ErrStale) {
			view.Error = session.Message(err)
		}
	}
	c.JSON(statusFor(err), view)
}

// HomePage renders the editor for the caller's session.
func (h *Handler) HomePage(c *gin.Context) {
	snap := h.session(c).Snapshot()

	levels := make([]components.Option, 0, len(qr.Levels()))
	for _, l := range qr.Levels() {
		levels = append(levels, components.Option{Value: l.String(), Label: l.Label(), Selected: l == snap.Options.Level})
	}

	props := pages.HomeProps{
		Text:       snap.Form.Text,
		Size:       components.Range{Min: render.MinWidth, Max: render.MaxWidth, Step: render.WidthStep, Value: snap.Options.Width},
		Margin:     components.Range{Min: render.MinMargin, Max: render.MaxMargin, Step: render.MarginStep, Value: snap.Options.Margin},
		Levels:     levels,
		Foreground: pickerColor(snap.Form.Foreground),
		Background: pickerColor(snap.Form.Background),
		HasLogo:    snap.HasLogo,
		Generation: snap.Generation,
		Renders:    snap.Renders,
		Error:      snap.Error,
		Formats: []components.Option{
			{Value: string(export.PNG), Label: "PNG"},
			{Value: string(export.SVG), Label: "SVG"},
		},
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(props).Render(c.Request.Context(), c.Writer); err != nil {
		h.log.Error("render home page", zap.Error(err))
	}
}

// pickerColor drops the alpha channel, which color inputs cannot show.
func pickerColor(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

// UpdateState applies the posted form, as JSON or form fields.
func (h *Handler) UpdateState(c *gin.Context) {
	var f session.Form
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return
	}
	snap, err := h.session(c).Update(c.Request.Context(), f)
	h.respond(c, snap, err)
}

// UploadLogo accepts a multipart "logo" file or a "dataUrl" form field.
func (h *Handler) UploadLogo(c *gin.Context) {
	s := h.session(c)
	ctx := c.Request.Context()

	if fh, err := c.FormFile("logo"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open logo upload"})
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, h.maxLogoBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read logo upload"})
			return
		}
		snap, err := s.SetLogo(ctx, data)
		h.respond(c, snap, err)
		return
	}

	if url := c.PostForm("dataUrl"); url != "" {
		snap, err := s.SetLogoDataURL(ctx, url)
		h.respond(c, snap, err)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
}

// ClearLogo removes the logo.
func (h *Handler) ClearLogo(c *gin.Context) {
	snap, err := h.session(c).ClearLogo(c.Request.Context())
	h.respond(c, snap, err)
}

// Reset restores the default state with an empty text.
func (h *Handler) Reset(c *gin.Context) {
	snap, err := h.session(c).Reset(c.Request.Context())
	h.respond(c, snap, err)
}

// Regenerate re-renders the current state.
func (h *Handler) Regenerate(c *gin.Context) {
	snap, err := h.session(c).Regenerate(c.Request.Context())
	h.respond(c, snap, err)
}

// Preview serves the committed surface as PNG, transparency included.
func (h *Handler) Preview(c *gin.Context) {
	s := h.session(c)
	snap := s.Snapshot()

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Preview()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode preview"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("X-QR-Generation", strconv.FormatUint(snap.Generation, 10))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Export downloads the current design as png, svg or jpg.
func (h *Handler) Export(c *gin.Context) {
	f, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.session(c).Export(&buf, f); err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": session.Message(err)})
		return
	}

	name := export.Filename(h.now(), f)
	h.log.Debug("export", zap.String("file", name), zap.Int("bytes", buf.Len()))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}
