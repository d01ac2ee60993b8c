// Package engine defines the synthesis backend abstraction. Backends wrap a
// pretrained voice-cloning model (local process or remote server) and
// register themselves at init time.
package engine

import (
	"context"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
)

// Request is a single synthesis call. ReferencePath points at the speaker
// conditioning clip on local disk; the backend is responsible for getting it
// to the model.
type Request struct {
	Text          string
	Language      string
	Speed         float32
	ReferencePath string
}

type Engine interface {
	// Synthesize renders Text in the voice of the reference clip.
	Synthesize(ctx context.Context, req Request) (*audio.Audio, error)
	Info() EngineInfo
	Close() error
}

type EngineInfo struct {
	Name       string
	Languages  []string
	SampleRate int
}

// SpeakerLister is implemented by backends whose model server also carries
// its own stock speakers.
type SpeakerLister interface {
	ListSpeakers(ctx context.Context) ([]string, error)
}

// EngineConfig carries backend connection settings. Fields a backend does
// not need are ignored.
type EngineConfig struct {
	ServerURL string
	APIKey    string
	TimeoutMS int
	Backend   string
}
