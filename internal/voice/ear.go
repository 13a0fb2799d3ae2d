// Package voice provides hands-free command input through a local
// Whisper model.
package voice

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// DefaultWakeWords are matched case-insensitively anywhere in a clip.
var DefaultWakeWords = []string{
	"hey barista",
	"hey, barista",
	"okay barista",
	"otto brew",
	"ottobrew",
}

// recordFunc records for d and returns the raw transcription.
type recordFunc func(ctx context.Context, d time.Duration) string

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each active-listening chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithDormantDuration sets how long each wake-word listen lasts.
func WithDormantDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.dormantDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithWakeWords overrides the default wake phrases.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wakeWords = words }
}

// WithListenTimeout sets how long the ear stays in listening mode
// before giving up.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.listenTimeout = d }
}

// Ear is wake-word-triggered speech input.
//
// While dormant it records short clips and drops everything that lacks a
// wake word. A wake word followed by a command in the same clip sends the
// command at once; a bare wake word switches to listening, which collects
// chunks until silence or timeout and sends them joined.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger
	record     recordFunc

	wakeWords       []string
	recordDuration  time.Duration
	dormantDuration time.Duration
	listenTimeout   time.Duration

	textCh chan string
}

// NewEar creates a listener backed by the whisper-cli binary and a GGML
// model.
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:      whisperBin,
		modelPath:       modelPath,
		tempDir:         ".ottobrew-stt",
		log:             log,
		wakeWords:       DefaultWakeWords,
		recordDuration:  2 * time.Second,
		dormantDuration: 3 * time.Second,
		listenTimeout:   10 * time.Second,
		textCh:          make(chan string, 8),
	}
	e.record = e.recordChunk
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}
	return e
}

// C returns the channel that receives recognised commands.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Run loops until ctx is cancelled. Call it in a goroutine.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("ear started (dormant=%s, active=%s, wake=%v)",
		e.dormantDuration, e.recordDuration, e.wakeWords)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("ear stopped")
			return
		default:
		}

		if cmd, wake := e.listenDormant(ctx); wake {
			if cmd == "" {
				cmd = e.listen(ctx)
			}
			e.send(ctx, cmd)
		}
	}
}

// listenDormant records one dormant clip. It reports whether a wake word was
// heard and any command that followed it in the same clip.
func (e *Ear) listenDormant(ctx context.Context) (string, bool) {
	text := cleanTranscription(e.record(ctx, e.dormantDuration))
	if text == "" {
		return "", false
	}
	e.log.Debug("dormant: heard %q", text)

	rest, ok := e.stripWakeWord(text)
	if !ok {
		return "", false
	}
	e.log.Info("wake word detected in %q", text)
	return cleanTranscription(rest), true
}

// listen collects chunks until silence or timeout and returns them joined.
func (e *Ear) listen(ctx context.Context) string {
	e.log.Debug("listening...")

	// Tolerate more silence before the first word than after it.
	const graceEmpty, postSpeechEmpty = 3, 1

	deadline := time.Now().Add(e.listenTimeout)
	var parts []string
	empty := 0
	for time.Now().Before(deadline) && ctx.Err() == nil {
		chunk := cleanTranscription(e.record(ctx, e.recordDuration))
		if chunk == "" {
			empty++
			limit := graceEmpty
			if len(parts) > 0 {
				limit = postSpeechEmpty
			}
			if empty >= limit {
				break
			}
			continue
		}
		empty = 0
		if rest := e.removeWakeWords(chunk); rest != "" {
			parts = append(parts, rest)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (e *Ear) send(ctx context.Context, cmd string) {
	if cmd == "" {
		e.log.Debug("wake word without a command")
		return
	}
	e.log.Info("heard command %q", cmd)
	select {
	case e.textCh <- cmd:
	case <-ctx.Done():
	}
}

// stripWakeWord returns the text after the first wake word found and
// whether one was found at all.
func (e *Ear) stripWakeWord(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range e.wakeWords {
		idx := strings.Index(lower, strings.ToLower(w))
		if idx < 0 {
			continue
		}
		rest := text[idx+len(w):]
		return strings.TrimLeft(rest, " ,.!?\n\r\t"), true
	}
	return "", false
}

// removeWakeWords drops repeated wake words from a listening chunk.
func (e *Ear) removeWakeWords(text string) string {
	lower := strings.ToLower(text)
	for _, w := range e.wakeWords {
		lower = strings.ReplaceAll(lower, strings.ToLower(w), "")
	}
	return strings.Trim(lower, " ,.!?")
}

// recordChunk runs one whisper recording cycle.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) string {
	var (
		result string
		wg     sync.WaitGroup
	)
	wg.Add(1)
	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(e.whisperBin, e.modelPath, e.tempDir, "wav", callback, verbose)
	if err != nil {
		e.log.Error("transcriber init failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		e.log.Error("recording start failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	t.Stop()
	wg.Wait()

	if ctx.Err() != nil {
		return ""
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
