package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/clone"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/config"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/engine"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/lang"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/player"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/prepare"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/record"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/repl"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/server"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/store"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/voices"

	_ "github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/backends/xtts"
)

func main() {
	fmt.Fprintf(os.Stderr, "voiceclone %s\n", Version)

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadAndParse(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse configuration")
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	voiceStore := voices.NewStore(cfg.VoicesDir)

	switch {
	case cfg.ListDevices:
		record.ListDevices(ctx)
		return

	case cfg.ListVoices:
		printVoices(voiceStore)
		return

	case cfg.Input != "":
		if _, err := prepare.File(cfg.Input, cfg.Output); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare audio")
		}
		return

	case cfg.RecordSeconds > 0:
		runRecord(ctx, cfg, voiceStore)
		return

	case cfg.Prepare:
		if _, err := prepare.Profile(voiceStore, cfg.Voice, cfg.ProcessAll); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare voice profile")
		}
		log.Info().Str("voice", cfg.Voice).Msg("Voice profile ready for cloning")
		return

	case cfg.History:
		printHistory(cfg)
		return
	}

	// Everything below talks to the model server.
	history := openHistory(cfg)
	if history != nil {
		defer history.Close()
	}

	log.Info().Str("backend", cfg.Backend).Str("server", cfg.ServerURL).Msg("Connecting to synthesis backend...")
	eng, err := engine.New(cfg.Backend, engine.EngineConfig{
		ServerURL: cfg.ServerURL,
		APIKey:    cfg.APIKey,
		TimeoutMS: cfg.RequestTimeoutMS,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to load engine")
	}
	defer eng.Close()

	info := eng.Info()
	log.Debug().
		Str("engine", info.Name).
		Strs("languages", info.Languages).
		Int("sample_rate", info.SampleRate).
		Msg("Engine loaded")

	cloner := clone.New(eng, voiceStore, history, cfg.OutputDir)

	switch {
	case cfg.Serve:
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		if err := server.New(cloner, history).Run(addr, cfg.LogLevel == "debug"); err != nil {
			log.Fatal().Err(err).Msg("Browser UI stopped")
		}

	case cfg.Interactive:
		session, err := repl.New(cloner, cfg.Voice, cfg.Language, cfg.Speed, cfg.Play)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start interactive mode")
		}
		if err := session.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Interactive mode failed")
		}

	default:
		result, err := cloner.Synthesize(ctx, clone.Request{
			Text:       cfg.Text,
			Voice:      cfg.Voice,
			Language:   cfg.Language,
			Speed:      cfg.Speed,
			OutputPath: cfg.Output,
			Origin:     "cli",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate speech")
		}
		log.Info().
			Str("output", result.OutputPath).
			Float64("duration_sec", result.DurationSec).
			Int64("size_bytes", result.SizeBytes).
			Msg("Audio saved successfully")

		if cfg.Play {
			player.Play(ctx, result.OutputPath)
		}
	}
}

func runRecord(ctx context.Context, cfg *config.Config, voiceStore *voices.Store) {
	duration := time.Duration(cfg.RecordSeconds) * time.Second
	if duration > 10*time.Minute && !cfg.Yes {
		fmt.Fprintf(os.Stderr, "Recording for more than 10 minutes. Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			return
		}
	}

	path, err := voiceStore.NewSamplePath(cfg.Voice)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create voice profile")
	}

	err = record.Record(ctx, record.Options{
		Duration: duration,
		Device:   cfg.Device,
		Output:   path,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Recording failed")
	}

	log.Info().Msg("Next: clean and combine samples with --prepare, then synthesize")
}

func printVoices(voiceStore *voices.Store) {
	profiles, err := voiceStore.List()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list voices")
	}

	if len(profiles) == 0 {
		fmt.Println("No voice profiles found.")
		fmt.Println()
		fmt.Println("Create one with:")
		fmt.Println("  voiceclone --record 120")
		fmt.Println("  voiceclone --prepare")
		return
	}

	fmt.Println("Available voice profiles:")
	for _, p := range profiles {
		fmt.Printf("\n  %s\n", p.Name)
		if p.Ready() {
			fmt.Printf("    combined.wav (%.1f KB) - ready to use\n", float64(p.CombinedSize)/1024)
		}
		if n := len(p.Samples); n > 0 {
			fmt.Printf("    %d sample file(s)\n", n)
		}
	}
	fmt.Println()
	fmt.Printf("Supported languages: %s\n", strings.Join(lang.Names(), ", "))
}

func printHistory(cfg *config.Config) {
	history, err := store.Open(cfg.HistoryDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer history.Close()

	entries, err := history.Recent(cfg.HistoryLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read history")
	}
	if len(entries) == 0 {
		fmt.Println("No generations recorded yet.")
		return
	}

	for _, e := range entries {
		text := e.Text
		if runes := []rune(text); len(runes) > 50 {
			text = string(runes[:50]) + "..."
		}
		fmt.Printf("%s  [%s/%s]  %-6.1fs  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Voice, e.Language, e.DurationSec, text)
	}
}

func openHistory(cfg *config.Config) *store.Store {
	history, err := store.Open(cfg.HistoryDB)
	if err != nil {
		log.Warn().Err(err).Msg("History database unavailable, generations will not be recorded")
		return nil
	}
	return history
}

func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	return nil
}
