// Package chime plays a short audible alert when a stage timer fires.
package chime

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Audio parameters for generated tones and accepted WAV files.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Compile-time interface checks.
var (
	_ domain.Alarm = (*Player)(nil)
	_ domain.Alarm = (*NoOp)(nil)
)

// Player rings through the system audio device via oto.
type Player struct {
	ctx *oto.Context
	log *logger.Logger
	pcm []byte

	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// Option configures the player.
type Option func(*Player) error

// WithWAVFile replaces the generated chime with a 16-bit mono WAV at
// SampleRate.
func WithWAVFile(path string) Option {
	return func(p *Player) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read chime %s: %w", path, err)
		}
		pcm, err := extractPCM(data)
		if err != nil {
			return fmt.Errorf("chime %s: %w", path, err)
		}
		p.pcm = pcm
		return nil
	}
}

// NewPlayer initializes the audio context. Returns an error if the audio
// device is unavailable.
func NewPlayer(log *logger.Logger, opts ...Option) (*Player, error) {
	p := &Player{log: log, pcm: Chime()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}
	<-readyChan
	p.ctx = ctx

	log.Debug("chime player initialized (rate=%d, channels=%d, %d bytes)", SampleRate, ChannelCount, len(p.pcm))
	return p, nil
}

// Ring plays the chime. Blocks until playback finishes or ctx is done.
func (p *Player) Ring(ctx context.Context) error {
	player := p.ctx.NewPlayer(bytes.NewReader(p.pcm))

	p.mu.Lock()
	if p.active != nil {
		// Already ringing; one chime at a time.
		p.mu.Unlock()
		return player.Close()
	}
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("chime: playing %d bytes of PCM", len(p.pcm))

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
		case <-ticker.C:
		}
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the chime if one is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("chime: interrupted")
	}
}

// NoOp is an alarm that only logs. Used when audio is off or unavailable.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent alarm.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Ring logs and returns.
func (n *NoOp) Ring(ctx context.Context) error {
	n.log.Debug("chime no-op: ring")
	return nil
}

// Stop does nothing.
func (n *NoOp) Stop() {}

// Chime returns the default two-note alert as 16-bit little-endian PCM.
func Chime() []byte {
	var b bytes.Buffer
	b.Write(Tone(880, 180*time.Millisecond, 0.4))
	b.Write(Tone(0, 60*time.Millisecond, 0))
	b.Write(Tone(1320, 260*time.Millisecond, 0.4))
	return b.Bytes()
}

// Tone renders a sine wave at freq Hz for d with a short linear fade at
// both ends. A zero freq renders silence.
func Tone(freq float64, d time.Duration, volume float64) []byte {
	n := int(d.Seconds() * SampleRate)
	fade := SampleRate / 200 // 5ms
	if fade*2 > n {
		fade = n / 2
	}

	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		env := 1.0
		switch {
		case i < fade:
			env = float64(i) / float64(fade)
		case i >= n-fade:
			env = float64(n-1-i) / float64(fade)
		}
		v := volume * env * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// ErrWAVFormat is returned for WAV files the player cannot play as-is.
var ErrWAVFormat = errors.New("unsupported wav format")

// pcmFormat is the WAVE_FORMAT_PCM tag in a fmt chunk.
const pcmFormat = 1

// extractPCM strips the WAV/RIFF header and returns raw PCM data. The fmt
// chunk must describe uncompressed PCM matching SampleRate, ChannelCount
// and BitDepth.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	sawFmt := false
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		start := pos + 8

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 || start+16 > len(wav) {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrWAVFormat)
			}
			if err := checkFormat(wav[start : start+16]); err != nil {
				return nil, err
			}
			sawFmt = true
		case "data":
			if !sawFmt {
				return nil, fmt.Errorf("%w: data before fmt chunk", ErrWAVFormat)
			}
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			return wav[start:end], nil
		}

		pos = start + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}
	return nil, errors.New("data chunk not found in WAV")
}

func checkFormat(f []byte) error {
	audioFormat := binary.LittleEndian.Uint16(f[0:2])
	channels := binary.LittleEndian.Uint16(f[2:4])
	rate := binary.LittleEndian.Uint32(f[4:8])
	bits := binary.LittleEndian.Uint16(f[14:16])

	switch {
	case audioFormat != pcmFormat:
		return fmt.Errorf("%w: encoding %d, want PCM", ErrWAVFormat, audioFormat)
	case channels != ChannelCount:
		return fmt.Errorf("%w: %d channels, want %d", ErrWAVFormat, channels, ChannelCount)
	case rate != SampleRate:
		return fmt.Errorf("%w: %d Hz, want %d", ErrWAVFormat, rate, SampleRate)
	case bits != BitDepth:
		return fmt.Errorf("%w: %d-bit, want %d", ErrWAVFormat, bits, BitDepth)
	}
	return nil
}
