// Package prepare implements the reference-audio preparation pipeline:
// load, downmix, resample to the model rate, peak normalize, trim edge
// silence, export.
package prepare

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/voices"
)

const (
	// silenceThresholdDB is the dBFS level below which audio counts as
	// silence when trimming.
	silenceThresholdDB = -40

	// minSilence is the shortest quiet edge worth trimming.
	minSilence = 500 * time.Millisecond

	processedSuffix = ".processed.wav"
)

// File cleans a single recording and writes the result next to the input
// (or to outputPath when given). Returns the output path.
func File(inputPath, outputPath string) (string, error) {
	log.Info().Str("file", filepath.Base(inputPath)).Msg("Processing")

	a, err := audio.Load(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to load audio: %w", err)
	}
	originalDuration := a.Duration()

	if a.SampleRate != audio.SampleRate {
		log.Debug().
			Int("from", a.SampleRate).
			Int("to", audio.SampleRate).
			Msg("Converting sample rate")
		a = a.Resample(audio.SampleRate)
	}

	a = a.Normalize()

	trimmed := a.TrimSilence(silenceThresholdDB, minSilence)
	if a.Peak() < float32(math.Pow(10, silenceThresholdDB/20)) {
		log.Warn().Str("file", inputPath).Msg("No non-silent audio detected")
	}
	a = trimmed

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + processedSuffix
	}

	if err := a.SaveWAV(outputPath); err != nil {
		return "", fmt.Errorf("failed to save processed audio: %w", err)
	}

	log.Info().
		Str("file", filepath.Base(outputPath)).
		Float64("duration_before_sec", originalDuration).
		Float64("duration_after_sec", a.Duration()).
		Msg("Processed audio saved")

	return outputPath, nil
}

// Profile optionally cleans every raw sample of a profile, then combines
// them into the profile's reference file. Per-sample failures are warnings.
func Profile(store *voices.Store, name string, processAll bool) (string, error) {
	if processAll {
		dir := filepath.Join(store.Root(), name)
		samples, err := filepath.Glob(filepath.Join(dir, "sample_*.wav"))
		if err != nil || len(samples) == 0 {
			return "", fmt.Errorf("no samples found in %s", dir)
		}
		sort.Strings(samples)

		for _, sample := range samples {
			if strings.HasSuffix(sample, processedSuffix) {
				continue
			}
			if _, err := File(sample, ""); err != nil {
				log.Warn().Err(err).Str("file", sample).Msg("Skipping sample")
			}
		}
	}

	return store.Combine(name)
}
