package core

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPNGChunks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	chunks, err := ReadPNGChunks(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "IHDR", chunks[0].Type)
	assert.Equal(t, "IEND", chunks[len(chunks)-1].Type)
}

func TestReadPNGChunksLyingLength(t *testing.T) {
	// A chunk header declaring far more data than the input holds must not
	// be allocated up front; the truncated chunk is simply dropped.
	data := append([]byte(nil), pngSignature...)
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], 0xFFFFFFF0)
	copy(hdr[4:8], "tEXt")
	data = append(data, hdr[:]...)
	data = append(data, "short"...)

	chunks, err := ReadPNGChunks(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestReadPNGChunksBadSignature(t *testing.T) {
	_, err := ReadPNGChunks(bytes.NewReader([]byte("definitely not a png")))
	assert.Error(t, err)
}
