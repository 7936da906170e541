package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
)

// --- Mocks ---

type mockPromptSynthesizer struct {
	mu       sync.Mutex
	result   string
	err      error
	received []string
}

func (m *mockPromptSynthesizer) Synthesize(ctx context.Context, passphrase string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, passphrase)
	return m.result, m.err
}

type imageCall struct {
	prompt         string
	negativePrompt string
}

type mockImageSynthesizer struct {
	mu       sync.Mutex
	ref      domain.ImageReference
	err      error
	received []imageCall
}

func (m *mockImageSynthesizer) GenerateImage(ctx context.Context, prompt, negativePrompt string) (domain.ImageReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, imageCall{prompt: prompt, negativePrompt: negativePrompt})
	return m.ref, m.err
}

// mockHTTPClient は adapters.HTTPClient を実装するのだ。
type mockHTTPClient struct {
	data []byte
	err  error
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return m.data, m.err
}

// --- Helpers ---

func testImage(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	return img, format
}

func samePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wr, wg, wb, wa := want.At(x, y).RGBA()
			gr, gg, gb, ga := got.At(x, y).RGBA()
			// YCbCr からの変換は丸め方で 1 ずれることがある。
			require.InDelta(t, wr>>8, gr>>8, 1, "R (%d,%d)", x, y)
			require.InDelta(t, wg>>8, gg>>8, 1, "G (%d,%d)", x, y)
			require.InDelta(t, wb>>8, gb>>8, 1, "B (%d,%d)", x, y)
			require.Equal(t, wa>>8, ga>>8, "A (%d,%d)", x, y)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
