// Package voices manages speaker profiles on disk. A profile is a directory
// under the voices root holding sample_*.wav recordings and, once combined,
// a combined.wav used as the default reference clip.
package voices

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
)

const (
	CombinedFileName = "combined.wav"
	samplePrefix     = "sample_"

	// sampleGap is the fixed pause inserted between samples when combining.
	sampleGap = 500 * time.Millisecond
)

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// Profile describes one speaker directory.
type Profile struct {
	Name         string
	Samples      []string
	CombinedPath string
	CombinedSize int64
}

// Ready reports whether the profile has a combined reference file.
func (p Profile) Ready() bool {
	return p.CombinedPath != ""
}

// ContainedPath resolves p and rejects anything outside the voices root.
// This is the guard against path traversal on user-supplied voice paths.
func (s *Store) ContainedPath(p string) (string, error) {
	return ContainedPath(s.root, p)
}

// ContainedPath resolves p and rejects anything that escapes root.
func ContainedPath(root, p string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: %s (must be within %s)", p, root)
	}
	return absPath, nil
}

// List returns all profiles that contain at least one .wav file, sorted by
// name. Hidden directories are skipped.
func (s *Store) List() ([]Profile, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read voices directory: %w", err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())

		wavs, err := filepath.Glob(filepath.Join(dir, "*.wav"))
		if err != nil || len(wavs) == 0 {
			continue
		}

		p := Profile{Name: entry.Name()}
		for _, w := range wavs {
			if strings.HasPrefix(filepath.Base(w), samplePrefix) {
				p.Samples = append(p.Samples, w)
			}
		}
		sort.Strings(p.Samples)

		combined := filepath.Join(dir, CombinedFileName)
		if info, err := os.Stat(combined); err == nil {
			p.CombinedPath = combined
			p.CombinedSize = info.Size()
		}

		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// Resolve maps a voice argument to a reference file. A direct .wav path is
// accepted if it sits inside the voices root; otherwise the argument is a
// profile name and combined.wav wins over loose samples.
func (s *Store) Resolve(voice string) (string, error) {
	if strings.EqualFold(filepath.Ext(voice), ".wav") {
		if _, err := os.Stat(voice); err == nil {
			return s.ContainedPath(voice)
		}
	}

	dir := filepath.Join(s.root, voice)

	combined := filepath.Join(dir, CombinedFileName)
	if _, err := os.Stat(combined); err == nil {
		return combined, nil
	}

	wavs, _ := filepath.Glob(filepath.Join(dir, "*.wav"))
	if len(wavs) > 0 {
		sort.Strings(wavs)
		return wavs[0], nil
	}

	return "", fmt.Errorf("voice profile %q not found", voice)
}

// Combine concatenates a profile's samples, in name order, with fixed
// silence gaps and writes combined.wav. Samples that fail to decode are
// skipped with a warning.
func (s *Store) Combine(name string) (string, error) {
	dir := filepath.Join(s.root, name)

	all, err := filepath.Glob(filepath.Join(dir, samplePrefix+"*.wav"))
	if err != nil || len(all) == 0 {
		return "", fmt.Errorf("no voice samples found in %s (expected %s*.wav)", dir, samplePrefix)
	}
	sort.Strings(all)

	// When a sample has a cleaned twin, use the twin and drop the raw take.
	have := make(map[string]bool, len(all))
	for _, s := range all {
		have[s] = true
	}
	samples := all[:0]
	for _, s := range all {
		if !strings.HasSuffix(s, ".processed.wav") &&
			have[strings.TrimSuffix(s, ".wav")+".processed.wav"] {
			continue
		}
		samples = append(samples, s)
	}

	var segments []*audio.Audio
	for i, sample := range samples {
		log.Info().
			Int("index", i+1).
			Int("total", len(samples)).
			Str("file", filepath.Base(sample)).
			Msg("Adding sample")

		seg, err := audio.Load(sample)
		if err != nil {
			log.Warn().Err(err).Str("file", sample).Msg("Skipping sample")
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("no usable samples in %s", dir)
	}

	combined := audio.Concat(segments, sampleGap, audio.SampleRate)

	outPath := filepath.Join(dir, CombinedFileName)
	if err := combined.SaveWAV(outPath); err != nil {
		return "", fmt.Errorf("failed to save combined audio: %w", err)
	}

	log.Info().
		Str("file", outPath).
		Float64("duration_sec", combined.Duration()).
		Int("samples", len(segments)).
		Msg("Combined audio saved")

	return outPath, nil
}

// NewSamplePath returns a timestamped path for a fresh recording, creating
// the profile directory if needed.
func (s *Store) NewSamplePath(name string) (string, error) {
	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}
	ts := time.Now().Format("20060102_150405")
	return filepath.Join(dir, samplePrefix+ts+".wav"), nil
}
