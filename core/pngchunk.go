package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// PNGChunk is a single chunk in a PNG file.
type PNGChunk struct {
	Type string
	Data []byte
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// ReadPNGChunks parses all chunks up to and including IEND. CRCs are read
// but not verified; this is an inventory pass, not a decoder.
func ReadPNGChunks(r io.Reader) ([]PNGChunk, error) {
	sig := make([]byte, 8)
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, fmt.Errorf("not a valid PNG")
	}

	var chunks []PNGChunk
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(hdr[0:4])
		typ := string(hdr[4:8])
		// CopyN grows the buffer as bytes actually arrive, so a chunk header
		// claiming a huge length fails at EOF instead of allocating it up
		// front.
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, r, int64(length)); err != nil {
			break
		}
		data := buf.Bytes()
		var crc [4]byte
		io.ReadFull(r, crc[:])

		chunks = append(chunks, PNGChunk{Type: typ, Data: data})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}
