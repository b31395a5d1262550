package native

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"imgscrub/core"
)

// PNG re-encodes a PNG at maximum compression. The decoded raster keeps its
// original color model, so alpha values round-trip exactly.
type PNG struct {
	MaxPixels int64
}

func (s PNG) Strip(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading png: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding png header: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, s.MaxPixels); err != nil {
		return err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding png: %w", err)
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return core.ReplaceFile(path, buf.Bytes())
}
