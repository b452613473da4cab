package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcreator/internal/render"
	"github.com/cristianadrielbraun/qrcreator/internal/session"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := render.New(nil)
	h := New(session.NewStore(p, 0, time.Minute, nil), p, nil, 0)
	h.now = func() time.Time { return time.UnixMilli(1700000000123) }

	r := gin.New()
	h.Routes(r)
	return &client{t: t, router: r}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postJSON(path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) uploadLogo(data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(c.t, err)
	_, err = fw.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func stateOf(t *testing.T, w *httptest.ResponseRecorder) stateView {
	t.Helper()
	var v stateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func decodePNG(t *testing.T, data []byte) (image.Image, string) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return img, res.GetText()
}

func redLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHomePageIssuesSessionCookie(t *testing.T) {
	c := newClient(t)

	w := c.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "QR Code Generator")
	assert.Contains(t, w.Body.String(), "https://example.com")
	assert.Contains(t, w.Body.String(), `Renders: <span id="renders">1</span>`)

	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)
	first := c.cookie.Value

	w = c.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, c.cookie.Value)
	assert.Empty(t, w.Result().Cookies(), "known session keeps its cookie")
}

func TestStaticAssets(t *testing.T) {
	c := newClient(t)

	w := c.get("/web/static/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/state")
	assert.Contains(t, w.Body.String(), "renders.textContent = state.renders")

	assert.Equal(t, http.StatusOK, c.get("/web/static/styles.css").Code)
	assert.Equal(t, http.StatusNotFound, c.get("/web/static/missing.js").Code)
}

func TestUpdateStateAndPreview(t *testing.T) {
	c := newClient(t)

	w := c.postJSON("/api/state", session.Form{Text: "hello gin", Size: 400, Margin: 2, Level: "Q", Foreground: "#000000", Background: "#ffffff"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	v := stateOf(t, w)
	assert.Equal(t, 400, v.Options.Width)
	assert.Equal(t, "Q", v.Options.Level)
	assert.Equal(t, 2, v.Renders, "initial render plus update")
	assert.Empty(t, v.Error)

	w = c.get("/api/preview.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "2", w.Header().Get("X-QR-Generation"))

	img, text := decodePNG(t, w.Body.Bytes())
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, "hello gin", text)
}

func TestUpdateStateFormEncoded(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/api/state", url.Values{"text": {"form body"}, "size": {"5000"}, "margin": {"0"}, "ecLevel": {"L"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	v := stateOf(t, w)
	assert.Equal(t, 1024, v.Options.Width)
	assert.Equal(t, 0, v.Options.Margin)
	assert.Equal(t, "form body", v.Form.Text)
}

func TestUpdateStateErrors(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(`{"size":"big"}`))
	req.Header.Set("Content-Type", "application/json")
	w := c.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.postJSON("/api/state", session.Form{Text: strings.Repeat("x", 3000), Level: "H"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	v := stateOf(t, w)
	assert.Contains(t, v.Error, "failed to encode QR code")
	assert.Equal(t, 1, v.Renders)
}

func TestLogoLifecycle(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusOK, c.postJSON("/api/state", session.Form{Text: "https://example.com", Level: "H"}).Code)

	w := c.uploadLogo(redLogo(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, stateOf(t, w).HasLogo)

	img, text := decodePNG(t, c.get("/api/preview.png").Body.Bytes())
	assert.Equal(t, "https://example.com", text)
	r, g, b, _ := img.At(160, 160).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})

	w = c.uploadLogo([]byte("plain text, not an image"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	v := stateOf(t, w)
	assert.True(t, v.HasLogo, "previous logo stays")
	assert.Contains(t, v.Error, "failed to read logo file")

	w = c.do(httptest.NewRequest(http.MethodDelete, "/api/logo", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, stateOf(t, w).HasLogo)
}

func TestLogoDataURL(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/api/logo", url.Values{"dataUrl": {"data:image/png;base64," + base64.StdEncoding.EncodeToString(redLogo(t))}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, stateOf(t, w).HasLogo)

	w = c.postForm("/api/logo", url.Values{"dataUrl": {"data:text/plain;base64,aGk="}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = c.postForm("/api/logo", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetAndRegenerate(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusOK, c.postJSON("/api/state", session.Form{Text: "abc", Size: 640}).Code)
	require.Equal(t, http.StatusOK, c.uploadLogo(redLogo(t)).Code)

	w := c.postForm("/api/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := stateOf(t, w)
	assert.Empty(t, v.Form.Text)
	assert.Equal(t, 320, v.Options.Width)
	assert.False(t, v.HasLogo)

	w = c.postForm("/api/regenerate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, v.Renders+1, stateOf(t, w).Renders)
}

func TestExport(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusOK, c.postJSON("/api/state", session.Form{Text: "export me"}).Code)

	w := c.get("/api/export/png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-1700000000123.png"`, w.Header().Get("Content-Disposition"))
	_, text := decodePNG(t, w.Body.Bytes())
	assert.Equal(t, "export me", text)

	w = c.get("/api/export/svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-1700000000123.svg"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), `viewBox="0 0 `)

	w = c.get("/api/export/jpeg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-1700000000123.jpg"`, w.Header().Get("Content-Disposition"))

	assert.Equal(t, http.StatusBadRequest, c.get("/api/export/gif").Code)
}

func TestStatelessQR(t *testing.T) {
	c := newClient(t)

	w := c.get("/api/qr?text=one+shot&size=256&margin=1&ecLevel=H")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "format=png;size=256;margin=1;level=H", w.Header().Get("X-QR-Debug"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	img, text := decodePNG(t, w.Body.Bytes())
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, "one shot", text)
	assert.Nil(t, c.cookie, "stateless endpoint needs no session")

	w = c.get("/api/qr?url=example.com/path&download=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="qr-1700000000123.png"`, w.Header().Get("Content-Disposition"))
	_, text = decodePNG(t, w.Body.Bytes())
	assert.Equal(t, "https://example.com/path", text)

	w = c.get("/api/qr?text=vector&format=svg&bg=transparent")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), `fill="#ffffff"`)

	for _, bad := range []string{
		"/api/qr",
		"/api/qr?url=ftp://example.com",
		"/api/qr?text=x&size=big",
		"/api/qr?text=x&margin=wide",
		"/api/qr?text=x&format=gif",
	} {
		assert.Equal(t, http.StatusBadRequest, c.get(bad).Code, bad)
	}

	w = c.get("/api/qr?text=" + strings.Repeat("x", 500) + "&size=120&margin=20&ecLevel=H")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "too small")
}

func TestGenericToast(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/api/htmx/toast", url.Values{"title": {"Oops"}, "description": {"bad <input>"}, "variant": {"destructive"}, "dismissible": {"on"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "Oops")
	assert.Contains(t, body, "bad &lt;input&gt;")
	assert.Contains(t, body, `data-duration="5000"`)
	assert.Contains(t, body, "data-toast-dismiss")
}

func TestNormalizeHTTPURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  http://example.com/a?b=c ", want: "http://example.com/a?b=c"},
		{in: "", wantErr: true},
		{in: "mailto://someone", wantErr: true},
		{in: "ftp://example.com/file", wantErr: true},
		{in: "https://", wantErr: true},
		{in: "https://example.com/" + strings.Repeat("a", 4096), wantErr: true},
	}
	for _, tt := range tests {
		got, err := normalizeHTTPURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
