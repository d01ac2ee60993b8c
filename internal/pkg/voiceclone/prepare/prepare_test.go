package prepare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/voices"
)

// writeRaw writes a 44.1 kHz take with 1s quiet edges around 1s of signal.
func writeRaw(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	rate := 44100
	samples := make([]float32, 3*rate)
	for i := rate; i < 2*rate; i++ {
		if i%2 == 0 {
			samples[i] = 0.3
		} else {
			samples[i] = -0.3
		}
	}
	require.NoError(t, audio.New(samples, rate).SaveWAV(path))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "take.wav")
	writeRaw(t, in)

	out, err := File(in, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "take.processed.wav"), out)

	processed, err := audio.LoadWAV(out)
	require.NoError(t, err)

	assert.Equal(t, audio.SampleRate, processed.SampleRate)
	// Quiet edges trimmed: ~1s of signal left from the 3s take.
	assert.InDelta(t, 1.0, processed.Duration(), 0.05)
	// Peak normalized close to full scale.
	assert.Greater(t, float64(processed.Peak()), 0.9)
}

func TestFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "take.wav")
	out := filepath.Join(dir, "clean.wav")
	writeRaw(t, in)

	got, err := File(in, out)
	require.NoError(t, err)
	assert.Equal(t, out, got)
	assert.FileExists(t, out)
}

func TestFileSilentInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "silent.wav")
	require.NoError(t, audio.New(make([]float32, 22050), 22050).SaveWAV(in))

	out, err := File(in, "")
	require.NoError(t, err)

	// Nothing to trim, exported unchanged in length.
	processed, err := audio.LoadWAV(out)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, processed.Duration(), 0.01)
}

func TestFileMissingInput(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.wav"), "")
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	root := t.TempDir()
	store := voices.NewStore(root)

	writeRaw(t, filepath.Join(root, "alice", "sample_001.wav"))
	writeRaw(t, filepath.Join(root, "alice", "sample_002.wav"))

	combined, err := Profile(store, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "alice", "combined.wav"), combined)

	// Cleaned twins were produced and used.
	assert.FileExists(t, filepath.Join(root, "alice", "sample_001.processed.wav"))

	a, err := audio.LoadWAV(combined)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate, a.SampleRate)
	// Two ~1s cleaned takes plus a 500ms gap.
	assert.InDelta(t, 2.5, a.Duration(), 0.2)
}

func TestProfileNoSamples(t *testing.T) {
	store := voices.NewStore(t.TempDir())
	_, err := Profile(store, "ghost", true)
	assert.Error(t, err)
}
