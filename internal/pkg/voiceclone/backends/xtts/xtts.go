// Package xtts talks to an XTTS API server. The server owns the pretrained
// model; this backend uploads the reference clip with each request and gets
// WAV audio back.
package xtts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/audio"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/engine"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/lang"
)

const (
	// xttsSampleRate is the output rate of the XTTS-v2 vocoder.
	xttsSampleRate = 24000

	defaultServerURL = "http://127.0.0.1:8020"
	defaultTimeout   = 2 * time.Minute

	synthesizePath = "/tts_to_audio/"
	speakersPath   = "/speakers_list"
)

func init() {
	engine.Register("xtts", NewEngine)
}

type Engine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewEngine(cfg engine.EngineConfig) (engine.Engine, error) {
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	if _, err := url.Parse(serverURL); err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}

	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}

	return &Engine{
		baseURL: strings.TrimRight(serverURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (e *Engine) Synthesize(ctx context.Context, req engine.Request) (*audio.Audio, error) {
	ref, err := os.Open(req.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference audio: %w", err)
	}
	defer ref.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if err := mw.WriteField("text", req.Text); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if err := mw.WriteField("language", req.Language); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.Speed > 0 {
		if err := mw.WriteField("speed", strconv.FormatFloat(float64(req.Speed), 'f', 2, 32)); err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
	}

	part, err := mw.CreateFormFile("speaker_wav", filepath.Base(req.ReferencePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, ref); err != nil {
		return nil, fmt.Errorf("failed to read reference audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+synthesizePath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "audio/wav")
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	wavData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	result, err := audio.DecodeWAV(bytes.NewReader(wavData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio response: %w", err)
	}
	return result, nil
}

// ListSpeakers returns the stock speaker names the server ships with.
func (e *Engine) ListSpeakers(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+speakersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speakers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var speakers []string
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, fmt.Errorf("failed to decode speakers list: %w", err)
	}
	return speakers, nil
}

func (e *Engine) Info() engine.EngineInfo {
	return engine.EngineInfo{
		Name:       "xtts",
		Languages:  lang.Codes,
		SampleRate: xttsSampleRate,
	}
}

func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
