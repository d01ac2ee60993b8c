package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an MP3 file. go-mp3 always yields 16-bit stereo; the two
// channels are averaged down to mono.
func LoadMP3(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 file: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read mp3 stream: %w", err)
	}

	// 4 bytes per frame: left int16 + right int16, little endian.
	frames := len(raw) / 4
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = (float32(left) + float32(right)) / 2 / 32768
	}

	return &Audio{Samples: samples, SampleRate: dec.SampleRate()}, nil
}
