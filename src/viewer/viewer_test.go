package viewer

import (
	"bytes"
	"encoding/binary"
	"image"
	stdpng "image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"git.handmade.network/hmn/pngview/src/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempPNG(t *testing.T) string {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Pix = []byte{
		0xFF, 0x00, 0x00, 0xFF,
		0x00, 0xFF, 0x00, 0x80,
	}
	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, src))

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestViewerServesPageAndImage(t *testing.T) {
	v := NewViewer(writeTempPNG(t))
	v.Reload()
	server := httptest.NewServer(v.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page bytes.Buffer
	page.ReadFrom(resp.Body)
	assert.Contains(t, page.String(), "/image.bmp")

	resp, err = http.Get(server.URL + "/image.bmp")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/bmp", resp.Header.Get("Content-Type"))

	var bmp bytes.Buffer
	bmp.ReadFrom(resp.Body)
	data := bmp.Bytes()
	require.Greater(t, len(data), 54)
	assert.Equal(t, byte('B'), data[0])
	assert.Equal(t, byte('M'), data[1])
	// First pixel after the 54 header bytes, in BGRA: pure red.
	assert.Equal(t, []byte{0x00, 0x00, 0xFF, 0xFF}, data[54:58])
}

func TestViewerReportsDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png at all"), 0644))

	v := NewViewer(path)
	v.Reload()
	server := httptest.NewServer(v.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var page bytes.Buffer
	page.ReadFrom(resp.Body)
	assert.Contains(t, page.String(), "bad signature")

	resp, err = http.Get(server.URL + "/image.bmp")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWriteDib(t *testing.T) {
	img, err := png.DecodeFile(writeTempPNG(t), png.WithByteOrder(png.OrderBGRA))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeDib(&buf, img))
	data := buf.Bytes()

	require.Equal(t, 54+len(img.Pix), len(data))
	assert.Equal(t, uint32(54), binary.LittleEndian.Uint32(data[10:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[18:]))
	// Negative height marks a top-down DIB.
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(data[22:])))
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16(data[28:]))
}

func TestWriteDibRequiresBgra(t *testing.T) {
	img, err := png.DecodeFile(writeTempPNG(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, writeDib(&buf, img))
}
