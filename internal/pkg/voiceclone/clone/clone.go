// Package clone ties the pieces together: it resolves the voice reference,
// cleans the text, calls the synthesis backend and writes the result. The
// CLI, the interactive mode and the web UI all go through the same path.
package clone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/engine"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/lang"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/preprocess"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/store"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/voices"
)

type Cloner struct {
	engine    engine.Engine
	voices    *voices.Store
	history   *store.Store // optional
	outputDir string
}

// Request names a voice profile (or a .wav path inside the voices root) and
// the text to render. OutputPath is optional; when set it must stay inside
// the outputs directory.
type Request struct {
	Text       string
	Voice      string
	Language   string
	Speed      float32
	OutputPath string
	Origin     string
}

type Result struct {
	OutputPath  string
	DurationSec float64
	SizeBytes   int64
}

func New(eng engine.Engine, voiceStore *voices.Store, history *store.Store, outputDir string) *Cloner {
	return &Cloner{
		engine:    eng,
		voices:    voiceStore,
		history:   history,
		outputDir: outputDir,
	}
}

func (c *Cloner) Voices() *voices.Store {
	return c.voices
}

func (c *Cloner) OutputDir() string {
	return c.outputDir
}

func (c *Cloner) Synthesize(ctx context.Context, req Request) (*Result, error) {
	text := preprocess.Clean(req.Text)
	if err := preprocess.Validate(text); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = lang.Default
	}
	if !lang.IsSupported(language) {
		return nil, fmt.Errorf("unsupported language %q (supported: %v)", language, lang.Codes)
	}

	refPath, err := c.voices.Resolve(req.Voice)
	if err != nil {
		return nil, err
	}

	outPath := req.OutputPath
	if outPath != "" {
		outPath, err = voices.ContainedPath(c.outputDir, outPath)
		if err != nil {
			return nil, err
		}
	} else {
		ts := time.Now().Format("20060102_150405")
		outPath = filepath.Join(c.outputDir, "output_"+ts+".wav")
	}

	log.Info().
		Str("text", preview(text, 60)).
		Str("reference", filepath.Base(refPath)).
		Str("language", language).
		Msg("Generating speech")

	start := time.Now()
	result, err := c.engine.Synthesize(ctx, engine.Request{
		Text:          text,
		Language:      language,
		Speed:         req.Speed,
		ReferencePath: refPath,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	if err := result.SaveWAV(outPath); err != nil {
		return nil, fmt.Errorf("failed to save audio: %w", err)
	}

	var size int64
	if info, err := os.Stat(outPath); err == nil {
		size = info.Size()
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Float64("duration_sec", result.Duration()).
		Str("output", outPath).
		Msg("Audio generated")

	if c.history != nil {
		gen := &store.Generation{
			Text:        text,
			Voice:       req.Voice,
			Language:    language,
			OutputPath:  outPath,
			DurationSec: result.Duration(),
			Origin:      req.Origin,
		}
		if err := c.history.Record(gen); err != nil {
			log.Warn().Err(err).Msg("Failed to record generation history")
		}
	}

	return &Result{
		OutputPath:  outPath,
		DurationSec: result.Duration(),
		SizeBytes:   size,
	}, nil
}

// Duration of the reference clip, used by the web UI voice listing.
func ReferenceDuration(path string) float64 {
	a, err := audio.Load(path)
	if err != nil {
		return 0
	}
	return a.Duration()
}

// preview shortens text for log lines, cutting on rune boundaries.
func preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
