package picture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))

	return buf.Bytes()
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, nil)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/a.png", true},
		{"http://localhost:8080/a", true},
		{"/home/user/a.png", false},
		{"C:\\pictures\\a.png", false},
		{"file:///tmp/a.png", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsURL(tt.input), tt.input)
	}
}

func TestService_DownloadAndResize(t *testing.T) {
	body := testImage(t, 300, 200, encodeJPEG)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	svc := NewService(fs)
	ctx := context.Background()

	tmp, err := svc.TempDir()
	require.NoError(t, err)

	src := tmp + "/e.png"
	require.NoError(t, svc.Download(ctx, srv.URL+"/avatar", src))

	got, err := afero.ReadFile(fs, src)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	exists, err := afero.Exists(fs, src+".part")
	require.NoError(t, err)
	assert.False(t, exists)

	dest := "/data/pictures/p1.png"
	require.NoError(t, svc.Resize(ctx, src, dest, Size, Size))

	f, err := fs.Open(dest)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())
}

func TestService_DownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	svc := NewService(fs, WithHTTPClient(srv.Client()))

	err := svc.Download(context.Background(), srv.URL, "/data/a.png")
	require.ErrorIs(t, err, ErrBadStatus)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)

	exists, _ := afero.Exists(fs, "/data/a.png")
	assert.False(t, exists)
}

func TestService_ResizeLocalPNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/in.png", testImage(t, 64, 64, encodePNG), 0644))

	svc := NewService(fs)
	require.NoError(t, svc.Resize(context.Background(), "/src/in.png", "/out/p.png", Size, Size))

	data, err := afero.ReadFile(fs, "/out/p.png")
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Size, cfg.Width)
	assert.Equal(t, Size, cfg.Height)
}

func TestService_ResizeInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/bad.png", []byte("not an image"), 0644))

	svc := NewService(fs)

	require.Error(t, svc.Resize(context.Background(), "/src/bad.png", "/out/p.png", Size, Size))
	require.Error(t, svc.Resize(context.Background(), "/src/missing.png", "/out/p.png", Size, Size))

	exists, _ := afero.Exists(fs, "/out/p.png")
	assert.False(t, exists)
}
