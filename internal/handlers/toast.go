package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/web/components"
)

// GenericToast returns a Toast component rendered as HTML for the page to
// insert.
func (h *Handler) GenericToast(c *gin.Context) {
	variant := components.ParseVariant(c.PostForm("variant"))

	duration := 2000
	if variant == components.VariantError {
		duration = 5000
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	err := components.Toast(components.ToastProps{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Variant:     variant,
		Duration:    duration,
		Dismissible: c.PostForm("dismissible") == "on",
	}).Render(c.Request.Context(), c.Writer)
	if err != nil {
		h.log.Error("render toast", zap.Error(err))
	}
}
