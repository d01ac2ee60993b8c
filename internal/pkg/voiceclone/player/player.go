// Package player gives best-effort local playback of generated audio.
package player

import (
	"context"
	"errors"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Play runs ffplay on the file and waits for it to finish. Playback is a
// convenience: a missing ffplay logs a hint and returns nil.
func Play(ctx context.Context, path string) error {
	if _, err := exec.LookPath("ffplay"); err != nil {
		log.Info().Str("file", path).Msg("ffplay not found, skipping playback (install ffmpeg to auto-play)")
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "error", path)
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		log.Warn().Err(err).Str("file", path).Msg("Playback failed")
	}
	return nil
}
