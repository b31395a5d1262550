package native

import (
	"bytes"
	"fmt"
	"image/gif"
	"os"

	"imgscrub/core"
)

// GIF decodes every frame and re-encodes the lot, so animated uploads keep
// their frames, delays and loop count. Comment and application extensions
// are not carried over by the encoder.
type GIF struct {
	MaxPixels int64
}

func (s GIF) Strip(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading gif: %w", err)
	}
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding gif header: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, s.MaxPixels); err != nil {
		return err
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding gif: %w", err)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return core.ReplaceFile(path, buf.Bytes())
}
