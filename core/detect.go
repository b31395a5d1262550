package core

import "github.com/gabriel-vasile/mimetype"

// sniffOrder lists the image types the scrubber recognises. Detection is
// content-based; the file extension is never consulted.
var sniffOrder = []string{MimeJPEG, MimePNG, MimeGIF, MimeWebP, MimeBMP, MimeTIFF}

// Sniff determines the true MIME type of the file at path from its bytes.
// Unreadable or non-image files yield MimeUnknown; Sniff never fails.
func Sniff(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return MimeUnknown
	}
	for _, m := range sniffOrder {
		if mt.Is(m) {
			return m
		}
	}
	return MimeUnknown
}
