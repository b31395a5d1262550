package fallback

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP with the sniffing decoder

	"imgscrub/core"
)

// genericFormats maps MIME types to the encoder used to rewrite them. WebP
// is absent: imaging has no WebP encoder, so WebP inputs are left to the
// external tool.
var genericFormats = map[string]imaging.Format{
	core.MimeJPEG: imaging.JPEG,
	core.MimePNG:  imaging.PNG,
	core.MimeGIF:  imaging.GIF,
	core.MimeBMP:  imaging.BMP,
	core.MimeTIFF: imaging.TIFF,
}

// Generic re-decodes the raw bytes with a format-sniffing decoder and
// re-encodes with the same parameters the native strippers use. The lenient
// decode path catches files the stricter native codecs reject, and it is
// the only strip path for BMP and TIFF.
type Generic struct {
	opts core.Options
}

func NewGeneric(opts core.Options) *Generic { return &Generic{opts: opts} }

func (g *Generic) Name() string { return "generic-codec" }

func (g *Generic) Available(mime string) bool {
	_, ok := genericFormats[mime]
	return ok
}

func (g *Generic) Strip(path, mime string) error {
	format, ok := genericFormats[mime]
	if !ok {
		return fmt.Errorf("%w: no generic encoder for %s", core.ErrUnsupported, mime)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image header: %w", err)
	}
	if g.opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > g.opts.MaxPixels {
		return fmt.Errorf("%w: %dx%d", core.ErrTooLarge, cfg.Width, cfg.Height)
	}

	if mime == core.MimeGIF {
		return stripGIF(path, data)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	var buf bytes.Buffer
	err = imaging.Encode(&buf, img, format,
		imaging.JPEGQuality(g.opts.JPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", mime, err)
	}
	return core.ReplaceFile(path, buf.Bytes())
}

// stripGIF re-encodes every frame. imaging.Decode keeps only the first
// frame, which would flatten an animation while reporting success.
func stripGIF(path string, data []byte) error {
	img, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding gif: %w", err)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, img); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return core.ReplaceFile(path, buf.Bytes())
}
