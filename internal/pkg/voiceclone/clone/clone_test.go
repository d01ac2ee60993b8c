package clone

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/engine"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/voices"
)

type fakeEngine struct {
	lastReq engine.Request
	err     error
}

func (f *fakeEngine) Synthesize(ctx context.Context, req engine.Request) (*audio.Audio, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	samples := make([]float32, 24000)
	for i := range samples {
		samples[i] = 0.2
	}
	return audio.New(samples, 24000), nil
}

func (f *fakeEngine) Info() engine.EngineInfo {
	return engine.EngineInfo{Name: "fake", SampleRate: 24000}
}

func (f *fakeEngine) Close() error { return nil }

func newTestCloner(t *testing.T) (*Cloner, *fakeEngine, string) {
	t.Helper()

	voicesRoot := t.TempDir()
	ref := filepath.Join(voicesRoot, "my_voice", "combined.wav")
	samples := make([]float32, audio.SampleRate)
	for i := range samples {
		samples[i] = 0.4
	}
	require.NoError(t, audio.New(samples, audio.SampleRate).SaveWAV(ref))

	outputDir := t.TempDir()
	eng := &fakeEngine{}
	return New(eng, voices.NewStore(voicesRoot), nil, outputDir), eng, outputDir
}

func TestSynthesize(t *testing.T) {
	cloner, eng, outputDir := newTestCloner(t)

	result, err := cloner.Synthesize(context.Background(), Request{
		Text:     "Hello   “world”",
		Voice:    "my_voice",
		Language: "en",
		Speed:    1.0,
		Origin:   "cli",
	})
	require.NoError(t, err)

	// Text was cleaned before hitting the backend.
	assert.Equal(t, `Hello "world"`, eng.lastReq.Text)
	assert.Equal(t, "en", eng.lastReq.Language)
	assert.Contains(t, eng.lastReq.ReferencePath, "combined.wav")

	assert.True(t, strings.HasPrefix(filepath.Base(result.OutputPath), "output_"))
	assert.Equal(t, outputDir, filepath.Dir(result.OutputPath))
	assert.InDelta(t, 1.0, result.DurationSec, 0.01)
	assert.Greater(t, result.SizeBytes, int64(0))
	assert.FileExists(t, result.OutputPath)
}

func TestSynthesizeDefaultsLanguage(t *testing.T) {
	cloner, eng, _ := newTestCloner(t)

	_, err := cloner.Synthesize(context.Background(), Request{
		Text:  "Hello",
		Voice: "my_voice",
		Speed: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "en", eng.lastReq.Language)
}

func TestSynthesizeValidation(t *testing.T) {
	cloner, _, outputDir := newTestCloner(t)
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		_, err := cloner.Synthesize(ctx, Request{Text: "   ", Voice: "my_voice", Speed: 1.0})
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := cloner.Synthesize(ctx, Request{Text: "hi", Voice: "my_voice", Language: "xx", Speed: 1.0})
		assert.ErrorContains(t, err, "unsupported language")
	})

	t.Run("unknown voice", func(t *testing.T) {
		_, err := cloner.Synthesize(ctx, Request{Text: "hi", Voice: "nobody", Speed: 1.0})
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("output escapes outputs dir", func(t *testing.T) {
		_, err := cloner.Synthesize(ctx, Request{
			Text:       "hi",
			Voice:      "my_voice",
			Speed:      1.0,
			OutputPath: filepath.Join(outputDir, "..", "escape.wav"),
		})
		assert.ErrorContains(t, err, "invalid path")
	})
}

func TestPreviewKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "short", preview("short", 60))

	got := preview(strings.Repeat("声", 80), 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("声", 60)+"...", got)
}

func TestSynthesizeExplicitOutput(t *testing.T) {
	cloner, _, outputDir := newTestCloner(t)

	want := filepath.Join(outputDir, "greeting.wav")
	result, err := cloner.Synthesize(context.Background(), Request{
		Text:       "hi there",
		Voice:      "my_voice",
		Speed:      1.0,
		OutputPath: want,
	})
	require.NoError(t, err)
	assert.Equal(t, want, result.OutputPath)
	assert.FileExists(t, want)
}
