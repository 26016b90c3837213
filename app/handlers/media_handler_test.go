package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirphl/masuk10/app/dto"
	businessflow "github.com/amirphl/masuk10/business_flow"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// noisyPNG does not compress, so its encoded size stays close to w*h*4 bytes.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.UintN(256))
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newMediaApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	testDB := testingutil.MustSetupTestDB(t)
	dir := t.TempDir()
	flow := businessflow.NewMediaFlow(repository.NewMediaRepository(testDB.DB), dir, 64*1024, zap.NewNop())
	h := NewMediaHandler(flow, zap.NewNop())

	app := fiber.New()
	g := app.Group("/admin/media", withActor(3, utils.RoleEditor))
	g.Post("/upload", h.Upload)
	g.Get("/", h.List)
	g.Delete("/:id", h.Delete)
	g.Get("/:id/preview", h.Preview)
	return app, dir
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/admin/media/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestMediaHandler_UploadListPreviewDelete(t *testing.T) {
	app, dir := newMediaApp(t)

	resp, err := app.Test(uploadRequest(t, "my banner.png", testPNG(t, 32, 32)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	media := decodeData[dto.MediaDTO](t, decodeEnvelope(t, resp))
	assert.Equal(t, "my banner.png", media.OriginalFilename)
	assert.Regexp(t, `^\d+-my_banner\.png$`, media.Filename)
	assert.Equal(t, "/uploads/"+media.Filename, media.URL)
	assert.Equal(t, "image/png", media.MimeType)
	require.NotNil(t, media.UploadedBy)
	assert.Equal(t, uint(3), *media.UploadedBy)
	assert.FileExists(t, filepath.Join(dir, media.Filename))

	resp = doRequest(t, app, http.MethodGet, "/admin/media?search=BANNER", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeData[dto.ListMediaResponse](t, decodeEnvelope(t, resp))
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 20, list.Limit)

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/admin/media/%d/preview", media.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/media/%d", media.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, err = os.Stat(filepath.Join(dir, media.Filename))
	assert.True(t, os.IsNotExist(err))

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/media/%d", media.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MEDIA_NOT_FOUND", decodeEnvelope(t, resp).Error.Code)
}

func TestMediaHandler_UploadErrors(t *testing.T) {
	app, _ := newMediaApp(t)

	tests := []struct {
		name     string
		filename string
		content  []byte
		status   int
		code     string
	}{
		{"missing file", "", nil, fiber.StatusBadRequest, "FILE_REQUIRED"},
		{"wrong extension", "notes.txt", []byte("hello"), fiber.StatusBadRequest, "INVALID_FILE_TYPE"},
		{"content mismatch", "fake.png", []byte("GIF89a not really a png"), fiber.StatusBadRequest, "INVALID_FILE_TYPE"},
		{"too large", "huge.png", noisyPNG(t, 256, 256), fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(uploadRequest(t, tt.filename, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeEnvelope(t, resp).Error.Code)
		})
	}
}
