package native

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"

	"imgscrub/core"
)

// JPEG re-encodes a JPEG at a fixed quality.
type JPEG struct {
	Quality   int
	MaxPixels int64
}

func (s JPEG) Strip(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading jpeg: %w", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding jpeg header: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, s.MaxPixels); err != nil {
		return err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding jpeg: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.Quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return core.ReplaceFile(path, buf.Bytes())
}
