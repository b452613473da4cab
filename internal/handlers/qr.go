package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/internal/export"
	"github.com/cristianadrielbraun/qrcreator/internal/session"
)

// normalizeHTTPURL turns the url query parameter of the stateless endpoint
// into the text to encode. Bare hosts get https://; other schemes are refused.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errors.New("URL parameter is required")
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > 4096 {
		return "", errors.New("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", errors.New("URL must include a valid host")
	}
	return u.String(), nil
}

// queryInt reads an integer query parameter, returning def when it is absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// QRCodeHandler renders a one-off QR code from query parameters without
// touching any session. "text" is encoded verbatim; "url" is validated and
// normalized to an http(s) URL first.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	text, hasText := c.GetQuery("text")
	if !hasText {
		rawURL := strings.TrimSpace(c.Query("url"))
		if rawURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text or url parameter is required"})
			return
		}
		normalized, err := normalizeHTTPURL(rawURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		text = normalized
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", "png"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := session.DefaultForm()
	size, err := queryInt(c, "size", d.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	margin, err := queryInt(c, "margin", d.Margin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := session.Form{
		Text:       text,
		Size:       size,
		Margin:     margin,
		Level:      c.DefaultQuery("ecLevel", c.DefaultQuery("level", d.Level)),
		Foreground: c.DefaultQuery("fg", d.Foreground),
		Background: c.DefaultQuery("bg", d.Background),
	}.Normalize()
	opts := form.Options()

	h.log.Debug("qr request",
		zap.String("format", string(format)),
		zap.Int("size", opts.Width),
		zap.Int("margin", opts.Margin),
		zap.Stringer("level", opts.Level))

	var buf bytes.Buffer
	switch format {
	case export.SVG:
		data, err := export.Vector(h.pipeline, form.Text, opts)
		if err != nil {
			h.fail(c, err)
			return
		}
		buf.Write(data)
	default:
		surface, err := h.pipeline.Render(c.Request.Context(), form.Text, opts, nil)
		if err != nil {
			h.fail(c, err)
			return
		}
		if format == export.JPEG {
			err = export.WriteJPEG(&buf, surface.Copy(), opts.Light)
		} else {
			err = export.WritePNG(&buf, surface.Copy(), opts.Light)
		}
		if err != nil {
			h.fail(c, err)
			return
		}
	}

	c.Header("X-QR-Debug", fmt.Sprintf("format=%s;size=%d;margin=%d;level=%s", format, opts.Width, opts.Margin, opts.Level))
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(h.now(), format)))
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": session.Message(err)})
}
