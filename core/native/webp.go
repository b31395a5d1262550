package native

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/image/webp"

	"imgscrub/core"
)

// webpMetaChunks are the RIFF chunks dropped on strip.
var webpMetaChunks = map[string]bool{
	"EXIF": true,
	"XMP ": true,
	"ICCP": true,
}

// WebP rewrites the RIFF container without metadata chunks and clears the
// corresponding VP8X feature flags. The pixel payload chunks are carried
// over untouched, so alpha and animation survive by construction.
type WebP struct {
	MaxPixels int64
}

func (s WebP) Strip(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading webp: %w", err)
	}

	cfg, cfgErr := webp.DecodeConfig(bytes.NewReader(data))
	if cfgErr == nil {
		if err := checkPixels(cfg.Width, cfg.Height, s.MaxPixels); err != nil {
			return err
		}
	}

	chunks, err := core.ParseWebP(data)
	if err != nil {
		return fmt.Errorf("parsing webp container: %w", err)
	}

	animated := false
	kept := make([]core.RIFFChunk, 0, len(chunks))
	for _, c := range chunks {
		if webpMetaChunks[c.ID] {
			continue
		}
		if c.ID == "VP8X" && len(c.Data) >= 1 {
			c.Data = append([]byte(nil), c.Data...)
			c.Data[0] &^= core.VP8XFlagICC | core.VP8XFlagEXIF | core.VP8XFlagXMP
			animated = c.Data[0]&core.VP8XFlagAnim != 0
		}
		kept = append(kept, c)
	}

	out := core.EncodeWebP(kept)
	// The runtime codec cannot decode animated WebP frames; still images
	// are validated before the original is replaced.
	if !animated && cfgErr == nil {
		if _, err := webp.Decode(bytes.NewReader(out)); err != nil {
			return fmt.Errorf("stripped webp failed to decode: %w", err)
		}
	}
	return core.ReplaceFile(path, out)
}
