package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Field is a single residual metadata entry found in an image.
type Field struct {
	Key      string
	Value    string
	Category string
}

// Report lists the embedded metadata still present in an image file.
type Report struct {
	Path   string
	Mime   string
	Fields []Field
}

// Inspect enumerates the embedded metadata of the image at path. It is the
// read-only companion to stripping: run it before a strip to see what will
// be removed, or after to confirm nothing survived.
func Inspect(path string) (*Report, error) {
	mime := Sniff(path)
	if mime == MimeUnknown {
		return nil, fmt.Errorf("%s: not a recognised image", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := &Report{Path: path, Mime: mime}
	switch mime {
	case MimeJPEG:
		r.exifFields(data)
		r.jpegSegmentFields(data)
	case MimeTIFF:
		r.exifFields(data)
	case MimePNG:
		if err := r.pngFields(data); err != nil {
			return nil, err
		}
	case MimeWebP:
		if err := r.webpFields(data); err != nil {
			return nil, err
		}
	case MimeGIF:
		r.gifFields(data)
	}
	return r, nil
}

// ─── EXIF ────────────────────────────────────────────────────────────────────

func (r *Report) exifFields(data []byte) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	x.Walk(fieldWalker{r: r})
}

type fieldWalker struct{ r *Report }

func (w fieldWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	val := tag.String()
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.r.Fields = append(w.r.Fields, Field{Key: string(name), Value: val, Category: "EXIF"})
	return nil
}

// ─── JPEG segments ───────────────────────────────────────────────────────────

var (
	xmpPrefix  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	iptcPrefix = []byte("Photoshop 3.0\x00")
)

// jpegSegmentFields walks the APPn and COM segments before the scan data
// and records XMP, IPTC and comment payloads the EXIF walk does not cover.
func (r *Report) jpegSegmentFields(data []byte) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			return
		}
		i += 2
		if marker >= 0xD0 && marker <= 0xD7 {
			continue // standalone markers carry no payload
		}
		segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			return
		}
		seg := data[i : i+segLen]
		switch {
		case marker == 0xE1 && bytes.HasPrefix(seg, xmpPrefix):
			r.Fields = append(r.Fields, Field{Key: "XMP", Value: fmt.Sprintf("%d bytes", len(seg)), Category: "XMP"})
		case marker == 0xED && bytes.HasPrefix(seg, iptcPrefix):
			r.Fields = append(r.Fields, Field{Key: "IPTC", Value: fmt.Sprintf("%d bytes", len(seg)), Category: "IPTC"})
		case marker == 0xFE:
			r.Fields = append(r.Fields, Field{Key: "Comment", Value: string(seg), Category: "COM"})
		}
		i += segLen
	}
}

// ─── PNG ─────────────────────────────────────────────────────────────────────

func (r *Report) pngFields(data []byte) error {
	chunks, err := ReadPNGChunks(bytes.NewReader(data))
	if err != nil {
		return err
	}

	for _, c := range chunks {
		switch c.Type {
		case "tEXt":
			// keyword\0value
			null := bytes.IndexByte(c.Data, 0)
			if null > 0 {
				val := ""
				if null+1 < len(c.Data) {
					val = string(c.Data[null+1:])
				}
				r.Fields = append(r.Fields, Field{Key: string(c.Data[:null]), Value: val, Category: "PNG tEXt"})
			}
		case "zTXt":
			null := bytes.IndexByte(c.Data, 0)
			if null > 0 {
				r.Fields = append(r.Fields, Field{Key: string(c.Data[:null]), Value: "(compressed)", Category: "PNG zTXt"})
			}
		case "iTXt":
			// keyword\0flag\0method\0language\0translated\0text
			null := bytes.IndexByte(c.Data, 0)
			if null > 0 {
				key := string(c.Data[:null])
				val := ""
				// Truncated chunks still yield the keyword.
				if null+3 <= len(c.Data) {
					rest := c.Data[null+3:]
					for i := 0; i < 2 && rest != nil; i++ {
						n := bytes.IndexByte(rest, 0)
						if n < 0 {
							rest = nil
							break
						}
						rest = rest[n+1:]
					}
					if rest != nil {
						val = string(rest)
					}
				}
				r.Fields = append(r.Fields, Field{Key: key, Value: val, Category: "PNG iTXt"})
			}
		case "eXIf":
			r.exifFields(c.Data)
		case "tIME":
			if len(c.Data) == 7 {
				year := binary.BigEndian.Uint16(c.Data[0:2])
				r.Fields = append(r.Fields, Field{
					Key:      "LastModified",
					Value:    fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, c.Data[2], c.Data[3], c.Data[4], c.Data[5], c.Data[6]),
					Category: "PNG tIME",
				})
			}
		}
	}
	return nil
}

// ─── WebP ────────────────────────────────────────────────────────────────────

func (r *Report) webpFields(data []byte) error {
	chunks, err := ParseWebP(data)
	if err != nil {
		return err
	}

	for _, c := range chunks {
		switch c.ID {
		case "EXIF":
			// The chunk payload is raw TIFF data.
			r.exifFields(c.Data)
		case "XMP ":
			if utf8.Valid(c.Data) {
				r.Fields = append(r.Fields, Field{Key: "XMP", Value: fmt.Sprintf("%d bytes", len(c.Data)), Category: "XMP"})
			}
		case "ICCP":
			r.Fields = append(r.Fields, Field{Key: "ICCProfile", Value: fmt.Sprintf("%d bytes", len(c.Data)), Category: "WebP"})
		}
	}
	return nil
}

// ─── GIF ─────────────────────────────────────────────────────────────────────

// gifFields scans for comment extension blocks (0x21 0xFE).
func (r *Report) gifFields(data []byte) {
	if len(data) < 13 {
		return
	}
	i := 13 // header + logical screen descriptor
	if data[10]&0x80 != 0 {
		i += 3 * (1 << (int(data[10]&0x07) + 1)) // global color table
	}

	commentCount := 0
	for i < len(data)-1 {
		if data[i] == 0x3B { // trailer
			break
		}
		if data[i] == 0x21 && data[i+1] == 0xFE {
			i += 2
			var comment []byte
			for i < len(data) {
				blockSize := int(data[i])
				i++
				if blockSize == 0 || i+blockSize > len(data) {
					break
				}
				comment = append(comment, data[i:i+blockSize]...)
				i += blockSize
			}
			if len(comment) > 0 {
				commentCount++
				r.Fields = append(r.Fields, Field{
					Key:      fmt.Sprintf("Comment_%d", commentCount),
					Value:    string(comment),
					Category: "GIF Comment",
				})
			}
			continue
		}
		i++
	}
}
