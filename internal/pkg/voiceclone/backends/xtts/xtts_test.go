package xtts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/engine"
)

// writeRefWAV drops a short reference clip into a temp dir and returns its
// path.
func writeRefWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "combined.wav")
	samples := make([]float32, 2205)
	for i := range samples {
		samples[i] = 0.4
	}
	require.NoError(t, audio.New(samples, audio.SampleRate).SaveWAV(path))
	return path
}

// wavResponse returns raw WAV bytes for the fake server to hand back.
func wavResponse(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := make([]float32, 2400)
	for i := range samples {
		samples[i] = 0.25
	}
	require.NoError(t, audio.New(samples, 24000).SaveWAV(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestSynthesize(t *testing.T) {
	refPath := writeRefWAV(t)
	response := wavResponse(t)

	var gotText, gotLanguage, gotSpeed, gotFilename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, synthesizePath, r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotText = r.FormValue("text")
		gotLanguage = r.FormValue("language")
		gotSpeed = r.FormValue("speed")

		file, header, err := r.FormFile("speaker_wav")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename

		w.Header().Set("Content-Type", "audio/wav")
		w.Write(response)
	}))
	defer srv.Close()

	eng, err := NewEngine(engine.EngineConfig{ServerURL: srv.URL})
	require.NoError(t, err)
	defer eng.Close()

	result, err := eng.Synthesize(context.Background(), engine.Request{
		Text:          "Hello world",
		Language:      "en",
		Speed:         1.25,
		ReferencePath: refPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", gotText)
	assert.Equal(t, "en", gotLanguage)
	assert.Equal(t, "1.25", gotSpeed)
	assert.Equal(t, "combined.wav", gotFilename)

	assert.Equal(t, 24000, result.SampleRate)
	assert.NotEmpty(t, result.Samples)
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	eng, err := NewEngine(engine.EngineConfig{ServerURL: srv.URL})
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Synthesize(context.Background(), engine.Request{
		Text:          "Hello",
		Language:      "en",
		ReferencePath: writeRefWAV(t),
	})
	assert.ErrorContains(t, err, "model not loaded")
}

func TestSynthesizeMissingReference(t *testing.T) {
	eng, err := NewEngine(engine.EngineConfig{ServerURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Synthesize(context.Background(), engine.Request{
		Text:          "Hello",
		Language:      "en",
		ReferencePath: filepath.Join(t.TempDir(), "missing.wav"),
	})
	assert.ErrorContains(t, err, "reference audio")
}

func TestSynthesizeContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	eng, err := NewEngine(engine.EngineConfig{ServerURL: srv.URL})
	require.NoError(t, err)
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Synthesize(ctx, engine.Request{
		Text:          "Hello",
		Language:      "en",
		ReferencePath: writeRefWAV(t),
	})
	assert.Error(t, err)
}

func TestListSpeakers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, speakersPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["female_01","male_01"]`))
	}))
	defer srv.Close()

	eng, err := NewEngine(engine.EngineConfig{ServerURL: srv.URL})
	require.NoError(t, err)
	defer eng.Close()

	speakers, err := eng.(*Engine).ListSpeakers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"female_01", "male_01"}, speakers)
}

func TestInfo(t *testing.T) {
	eng, err := NewEngine(engine.EngineConfig{})
	require.NoError(t, err)
	defer eng.Close()

	info := eng.Info()
	assert.Equal(t, "xtts", info.Name)
	assert.Equal(t, 24000, info.SampleRate)
	assert.Contains(t, info.Languages, "en")
}
