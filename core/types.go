// Package core defines the shared types, the content sniffer, and the
// dispatcher that routes uploaded images through the metadata strippers.
package core

import "errors"

// Outcome is the per-file result of a strip attempt.
type Outcome int

const (
	// OutcomeSkipped means the file is not an image the scrubber recognises.
	OutcomeSkipped Outcome = iota
	// OutcomeSuccess means the file was rewritten with metadata removed.
	OutcomeSuccess
	// OutcomeFailed means every strategy failed; the original file is intact.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Recognised image MIME types.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWebP = "image/webp"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"

	// MimeUnknown marks files the sniffer does not recognise as images.
	MimeUnknown = ""
)

// Stripper removes metadata from a single file, replacing it in place.
type Stripper interface {
	Strip(path string) error
}

// Strategy is a fallback stripping strategy, tried when no native Stripper
// is registered for a MIME type or when the native one failed.
type Strategy interface {
	Name() string
	Available(mime string) bool
	Strip(path, mime string) error
}

// Options carries the encode parameters shared by the native strippers and
// the fallback chain. The host constructs it once at bootstrap.
type Options struct {
	// JPEGQuality is the re-encode quality for JPEG output (1-100).
	JPEGQuality int
	// WebPQuality is the re-encode quality for WebP output on codec paths
	// that re-encode (1-100).
	WebPQuality int
	// MaxPixels caps width*height of a decoded frame. Inputs above the cap
	// fail instead of decoding.
	MaxPixels int64
	// AllowExec permits the external-tool fallback to spawn processes.
	AllowExec bool
}

// DefaultOptions returns the encode parameters used at upload time.
func DefaultOptions() Options {
	return Options{
		JPEGQuality: 90,
		WebPQuality: 80,
		MaxPixels:   100_000_000,
		AllowExec:   true,
	}
}

var (
	// ErrTooLarge is returned when a decode would exceed Options.MaxPixels.
	ErrTooLarge = errors.New("decoded image exceeds pixel limit")
	// ErrUnsupported is returned when a format parses but the runtime lacks
	// a codec feature needed to rewrite it.
	ErrUnsupported = errors.New("unsupported image variant")
)
