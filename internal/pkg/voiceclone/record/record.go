// Package record captures microphone audio by driving ffmpeg, writing
// samples straight to the profile directory in the model's native format.
package record

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
)

const (
	// MinDuration guards against recordings too short to condition on.
	MinDuration = 5 * time.Second

	// silentPeak is the amplitude under which a take is considered a dead
	// microphone rather than a quiet room.
	silentPeak = 0.001
)

type Options struct {
	Duration time.Duration
	Device   string // capture device name, empty for the platform default
	Output   string
}

// captureArgs returns the ffmpeg input flags for the host platform.
func captureArgs(device string) []string {
	switch runtime.GOOS {
	case "darwin":
		if device == "" {
			device = ":0"
		}
		return []string{"-f", "avfoundation", "-i", device}
	case "windows":
		if device == "" {
			device = "audio=Microphone"
		}
		return []string{"-f", "dshow", "-i", device}
	default:
		if device == "" {
			device = "default"
		}
		return []string{"-f", "alsa", "-i", device}
	}
}

// Record captures Duration of audio into Options.Output as 16-bit mono WAV
// at the model sample rate. A near-silent take is deleted and reported as
// an error.
func Record(ctx context.Context, opts Options) error {
	if opts.Duration < MinDuration {
		return fmt.Errorf("duration must be at least %s", MinDuration)
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, captureArgs(opts.Device)...)
	args = append(args,
		"-t", strconv.Itoa(int(opts.Duration.Seconds())),
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.NumChannels),
		"-c:a", "pcm_s16le",
		"-y",
		opts.Output,
	)

	log.Info().
		Dur("duration", opts.Duration).
		Int("sample_rate", audio.SampleRate).
		Str("output", opts.Output).
		Msg("Recording from microphone")

	errBuf := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = errBuf
	if err := cmd.Run(); err != nil {
		if errBuf.Len() > 0 {
			return fmt.Errorf("ffmpeg: %w\n%s", err, errBuf.Bytes())
		}
		return fmt.Errorf("ffmpeg: %w (is ffmpeg installed and the microphone connected?)", err)
	}

	a, err := audio.LoadWAV(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to read back recording: %w", err)
	}

	peak := a.Peak()
	if peak < silentPeak {
		os.Remove(opts.Output)
		return fmt.Errorf("recording appears to be silent (peak %.4f), check microphone settings", peak)
	}

	log.Info().
		Str("output", opts.Output).
		Float64("duration_sec", a.Duration()).
		Float32("peak", peak).
		Msg("Recording complete")

	return nil
}

// ListDevices prints ffmpeg's view of the capture devices. Output format is
// platform dependent, so it goes straight to the terminal.
func ListDevices(ctx context.Context) error {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-f", "avfoundation", "-list_devices", "true", "-i", ""}
	case "windows":
		args = []string{"-f", "dshow", "-list_devices", "true", "-i", "dummy"}
	default:
		args = []string{"-f", "alsa", "-sources", "alsa"}
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", append([]string{"-hide_banner"}, args...)...)
	cmd.Stdout = os.Stdout
	// ffmpeg prints device listings on stderr.
	cmd.Stderr = os.Stdout
	cmd.Run()
	return nil
}
