package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/internal/logo"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
	"github.com/cristianadrielbraun/qrcreator/internal/session"
	"github.com/cristianadrielbraun/qrcreator/web"
)

// SessionCookie carries the editor session id.
const SessionCookie = "qr_session"

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	store        *session.Store
	pipeline     *render.Pipeline
	log          *zap.Logger
	maxLogoBytes int64
	now          func() time.Time
}

// New returns a Handler. A nil logger discards output and maxLogoBytes <= 0
// selects the default upload cap.
func New(store *session.Store, p *render.Pipeline, log *zap.Logger, maxLogoBytes int64) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogoBytes <= 0 {
		maxLogoBytes = logo.DefaultMaxBytes
	}
	return &Handler{
		store:        store,
		pipeline:     p,
		log:          log,
		maxLogoBytes: maxLogoBytes,
		now:          time.Now,
	}
}

// Routes registers the page, static assets and API on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.StaticFS("/web/static", web.Static())
	r.GET("/", h.HomePage)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/state", h.UpdateState)
		api.POST("/logo", h.UploadLogo)
		api.DELETE("/logo", h.ClearLogo)
		api.POST("/reset", h.Reset)
		api.POST("/regenerate", h.Regenerate)
		api.GET("/preview.png", h.Preview)
		api.GET("/export/:format", h.Export)
		api.POST("/htmx/toast", h.GenericToast)
	}
}

// session resolves the caller's session, issuing a cookie for new ones.
func (h *Handler) session(c *gin.Context) *session.Session {
	id, _ := c.Cookie(SessionCookie)
	s, created := h.store.Get(c.Request.Context(), id)
	if created {
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(SessionCookie, s.ID(), 0, "/", "", false, true)
	}
	return s
}
