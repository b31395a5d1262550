package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RIFFChunk is a single chunk in a WebP RIFF container.
type RIFFChunk struct {
	ID   string
	Data []byte
}

// VP8X feature flag bits.
const (
	VP8XFlagICC   = 0x20
	VP8XFlagAlpha = 0x10
	VP8XFlagEXIF  = 0x08
	VP8XFlagXMP   = 0x04
	VP8XFlagAnim  = 0x02
)

// ParseWebP splits a WebP file into its RIFF chunks. Chunk data is copied,
// so the input slice may be discarded afterwards.
func ParseWebP(data []byte) ([]RIFFChunk, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		return nil, fmt.Errorf("not a WebP RIFF container")
	}
	var chunks []RIFFChunk
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if size < 0 || offset+size > len(data) {
			return nil, fmt.Errorf("truncated WebP chunk %q", id)
		}
		chunks = append(chunks, RIFFChunk{ID: id, Data: append([]byte(nil), data[offset:offset+size]...)})
		offset += size
		if size%2 != 0 {
			offset++ // padding byte
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty WebP container")
	}
	return chunks, nil
}

// EncodeWebP reassembles chunks into a WebP file with a correct RIFF size
// header and chunk padding.
func EncodeWebP(chunks []RIFFChunk) []byte {
	var body bytes.Buffer
	for _, c := range chunks {
		body.WriteString(c.ID)
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(c.Data)))
		body.Write(size[:])
		body.Write(c.Data)
		if len(c.Data)%2 != 0 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	var total [4]byte
	binary.LittleEndian.PutUint32(total[:], uint32(body.Len()+4))
	out.Write(total[:])
	out.WriteString("WEBP")
	out.Write(body.Bytes())
	return out.Bytes()
}
