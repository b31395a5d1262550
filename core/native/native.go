// Package native implements the per-format metadata strippers. JPEG, PNG
// and GIF go through a full decode and re-encode: the encoder emits only
// the segments it knows to write, which drops EXIF, IPTC, XMP and text or
// comment chunks. WebP is rewritten at the container level because no
// in-process WebP encoder is available.
package native

import (
	"fmt"

	"imgscrub/core"
)

// Strippers builds the compiled-in stripper set keyed by MIME type. This is
// the registration table the dispatcher is constructed with.
func Strippers(opts core.Options) map[string]core.Stripper {
	return map[string]core.Stripper{
		core.MimeJPEG: JPEG{Quality: opts.JPEGQuality, MaxPixels: opts.MaxPixels},
		core.MimePNG:  PNG{MaxPixels: opts.MaxPixels},
		core.MimeGIF:  GIF{MaxPixels: opts.MaxPixels},
		core.MimeWebP: WebP{MaxPixels: opts.MaxPixels},
	}
}

func checkPixels(w, h int, max int64) error {
	if max > 0 && int64(w)*int64(h) > max {
		return fmt.Errorf("%w: %dx%d", core.ErrTooLarge, w, h)
	}
	return nil
}
