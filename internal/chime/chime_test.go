package chime

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func TestToneLength(t *testing.T) {
	pcm := Tone(440, 100*time.Millisecond, 0.5)
	assert.Len(t, pcm, SampleRate/10*2)
}

func TestToneFadesAndSilence(t *testing.T) {
	pcm := Tone(440, 50*time.Millisecond, 1)
	first := int16(binary.LittleEndian.Uint16(pcm[0:2]))
	last := int16(binary.LittleEndian.Uint16(pcm[len(pcm)-2:]))
	assert.Equal(t, int16(0), first)
	assert.Equal(t, int16(0), last)

	silent := Tone(0, 10*time.Millisecond, 0)
	assert.Equal(t, make([]byte, len(silent)), silent)
}

func TestChimeIsNotEmpty(t *testing.T) {
	pcm := Chime()
	require.NotEmpty(t, pcm)
	assert.Equal(t, 0, len(pcm)%2, "PCM must be whole 16-bit samples")
}

// wavHeader describes the fmt chunk written by wavWith.
type wavHeader struct {
	format   uint16
	channels uint16
	rate     uint32
	bits     uint16
}

func playable() wavHeader {
	return wavHeader{format: pcmFormat, channels: ChannelCount, rate: SampleRate, bits: BitDepth}
}

func wav(data []byte, extra ...[]byte) []byte {
	return wavWith(playable(), data, extra...)
}

func wavWith(h wavHeader, data []byte, extra ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	blockAlign := h.channels * h.bits / 8
	binary.Write(&b, binary.LittleEndian, h.format)
	binary.Write(&b, binary.LittleEndian, h.channels)
	binary.Write(&b, binary.LittleEndian, h.rate)
	binary.Write(&b, binary.LittleEndian, h.rate*uint32(blockAlign))
	binary.Write(&b, binary.LittleEndian, blockAlign)
	binary.Write(&b, binary.LittleEndian, h.bits)
	for _, e := range extra {
		b.Write(e)
	}
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestExtractPCM(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	got, err := extractPCM(wav(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// An odd-sized chunk before data is padded to a word boundary.
	odd := []byte("LIST")
	odd = binary.LittleEndian.AppendUint32(odd, 3)
	odd = append(odd, 'a', 'b', 'c', 0)
	got, err = extractPCM(wav(payload, odd))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = extractPCM([]byte("short"))
	assert.Error(t, err)

	bad := wav(payload)
	copy(bad[0:4], "RIFX")
	_, err = extractPCM(bad)
	assert.Error(t, err)
}

func TestExtractPCMRejectsOtherFormats(t *testing.T) {
	payload := make([]byte, 16)

	tests := []struct {
		name   string
		modify func(*wavHeader)
	}{
		{"stereo", func(h *wavHeader) { h.channels = 2 }},
		{"8-bit", func(h *wavHeader) { h.bits = 8 }},
		{"44.1kHz", func(h *wavHeader) { h.rate = 44100 }},
		{"float", func(h *wavHeader) { h.format = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := playable()
			tt.modify(&h)
			_, err := extractPCM(wavWith(h, payload))
			assert.ErrorIs(t, err, ErrWAVFormat)
		})
	}
}

func TestExtractPCMNeedsFmtChunk(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString("WAVE")
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(32))
	b.Write(make([]byte, 32))

	_, err := extractPCM(b.Bytes())
	assert.ErrorIs(t, err, ErrWAVFormat)
}

func TestNoOpRing(t *testing.T) {
	assert.NoError(t, NewNoOp(logger.Discard()).Ring(context.Background()))
}
