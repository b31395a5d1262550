package native

import (
	"bytes"
	"hash/crc32"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgscrub/core"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// addJPEGSegment injects a marker segment right after SOI.
func addJPEGSegment(data []byte, marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	seg = append(seg, payload...)
	out := append([]byte(nil), data[:2]...)
	out = append(out, seg...)
	out = append(out, data[2:]...)
	return out
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestJPEGStripRemovesMetadata(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	data := encodeJPEG(t, img)
	data = addJPEGSegment(data, 0xFE, []byte("MARKER_COMMENT_PAYLOAD"))
	data = addJPEGSegment(data, 0xE1, append([]byte("Exif\x00\x00"), []byte("MARKER_EXIF_PAYLOAD")...))

	path := writeFixture(t, "upload.jpg", data)
	s := JPEG{Quality: 90, MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "MARKER_EXIF_PAYLOAD")
	assert.NotContains(t, string(out), "MARKER_COMMENT_PAYLOAD")

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), decoded.Bounds())
}

func TestJPEGStripIdempotent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	path := writeFixture(t, "twice.jpg", encodeJPEG(t, img))

	s := JPEG{Quality: 90, MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), decoded.Bounds())
}

func TestJPEGStripCorruptInput(t *testing.T) {
	garbage := []byte("\xff\xd8definitely not a scan")
	path := writeFixture(t, "corrupt.jpg", garbage)

	s := JPEG{Quality: 90, MaxPixels: 1 << 30}
	require.Error(t, s.Strip(path))

	// Failed decode must leave the original untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
}

func TestJPEGStripPixelLimit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	path := writeFixture(t, "big.jpg", encodeJPEG(t, img))

	s := JPEG{Quality: 90, MaxPixels: 16}
	err := s.Strip(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTooLarge)
}

func TestPNGStripPreservesAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(60 * x), G: 20, B: uint8(60 * y), A: uint8(64 * x)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := writeFixture(t, "alpha.png", buf.Bytes())
	s := PNG{MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := img.NRGBAAt(x, y)
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			assert.Equal(t, want, got, "pixel %d,%d", x, y)
		}
	}
}

func TestPNGStripDropsTextChunks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	// Splice a tEXt chunk after IHDR (signature 8 + IHDR 25 = 33 bytes).
	payload := []byte("Software\x00MARKER_TEXT_PAYLOAD")
	chunk := make([]byte, 0, len(payload)+12)
	chunk = append(chunk, byte(len(payload)>>24), byte(len(payload)>>16), byte(len(payload)>>8), byte(len(payload)))
	chunk = append(chunk, "tEXt"...)
	chunk = append(chunk, payload...)
	crc := crc32.NewIEEE()
	crc.Write([]byte("tEXt"))
	crc.Write(payload)
	sum := crc.Sum32()
	chunk = append(chunk, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
	data := append([]byte(nil), buf.Bytes()[:33]...)
	data = append(data, chunk...)
	data = append(data, buf.Bytes()[33:]...)

	path := writeFixture(t, "texty.png", data)
	s := PNG{MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "MARKER_TEXT_PAYLOAD")
	_, err = png.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestPNGStripStableOutput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := writeFixture(t, "stable.png", buf.Bytes())
	s := PNG{MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Strip(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPNGStripCorruptInput(t *testing.T) {
	garbage := append([]byte("\x89PNG\r\n\x1a\n"), []byte("nothing to see here")...)
	path := writeFixture(t, "corrupt.png", garbage)

	s := PNG{MaxPixels: 1 << 30}
	require.Error(t, s.Strip(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
}

func newAnimatedGIF(t *testing.T, frames int) []byte {
	t.Helper()
	g := &gif.GIF{LoopCount: 2}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 8, 8), palette.Plan9)
		frame.SetColorIndex(i, i, uint8(i+1))
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

// addGIFComment splices a comment extension in front of the trailer.
func addGIFComment(t *testing.T, data []byte, comment string) []byte {
	t.Helper()
	require.Equal(t, byte(0x3B), data[len(data)-1], "gif must end with trailer")
	out := append([]byte(nil), data[:len(data)-1]...)
	out = append(out, 0x21, 0xFE, byte(len(comment)))
	out = append(out, comment...)
	out = append(out, 0x00, 0x3B)
	return out
}

func TestGIFStripPreservesAnimation(t *testing.T) {
	data := addGIFComment(t, newAnimatedGIF(t, 3), "MARKER_GIF_COMMENT")
	path := writeFixture(t, "anim.gif", data)

	s := GIF{MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "MARKER_GIF_COMMENT")

	g, err := gif.DecodeAll(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, 2, g.LoopCount)
}

func TestGIFStripCorruptInput(t *testing.T) {
	garbage := []byte("GIF89a\x08\x00\x08\x00 truncated")
	path := writeFixture(t, "corrupt.gif", garbage)

	s := GIF{MaxPixels: 1 << 30}
	require.Error(t, s.Strip(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
}

func TestWebPStripDropsMetadataChunks(t *testing.T) {
	vp8x := make([]byte, 10)
	vp8x[0] = core.VP8XFlagEXIF | core.VP8XFlagXMP | core.VP8XFlagICC | core.VP8XFlagAnim
	vp8x[4], vp8x[7] = 7, 7 // 8x8 canvas
	data := core.EncodeWebP([]core.RIFFChunk{
		{ID: "VP8X", Data: vp8x},
		{ID: "ICCP", Data: []byte("MARKER_ICC_PAYLOAD")},
		{ID: "ANIM", Data: make([]byte, 6)},
		{ID: "ANMF", Data: make([]byte, 24)},
		{ID: "EXIF", Data: []byte("MARKER_EXIF_PAYLOAD")},
		{ID: "XMP ", Data: []byte("MARKER_XMP_PAYLOAD")},
	})

	path := writeFixture(t, "anim.webp", data)
	s := WebP{MaxPixels: 1 << 30}
	require.NoError(t, s.Strip(path))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "MARKER_EXIF_PAYLOAD")
	assert.NotContains(t, string(out), "MARKER_XMP_PAYLOAD")
	assert.NotContains(t, string(out), "MARKER_ICC_PAYLOAD")

	chunks, err := core.ParseWebP(out)
	require.NoError(t, err)
	require.Equal(t, "VP8X", chunks[0].ID)
	flags := chunks[0].Data[0]
	assert.Zero(t, flags&(core.VP8XFlagEXIF|core.VP8XFlagXMP|core.VP8XFlagICC))
	assert.NotZero(t, flags&core.VP8XFlagAnim, "animation flag must survive")

	for _, c := range chunks {
		assert.NotContains(t, []string{"EXIF", "XMP ", "ICCP"}, c.ID)
	}
}

func TestWebPStripCorruptInput(t *testing.T) {
	garbage := []byte("RIFF\x20\x00\x00\x00WEBPEXIF\xff\xff\xff\xfftruncated")
	path := writeFixture(t, "corrupt.webp", garbage)

	s := WebP{MaxPixels: 1 << 30}
	require.Error(t, s.Strip(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
}

func TestStrippersTable(t *testing.T) {
	table := Strippers(core.DefaultOptions())
	for _, mime := range []string{core.MimeJPEG, core.MimePNG, core.MimeGIF, core.MimeWebP} {
		assert.Contains(t, table, mime)
	}
	assert.NotContains(t, table, core.MimeBMP, "bmp has no native stripper")
}
