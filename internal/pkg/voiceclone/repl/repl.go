// Package repl implements the interactive text-to-speech session: type a
// line, hear it back in the cloned voice.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/clone"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/lang"
	"github.com/Abualmeez/voice-cloning/internal/pkg/voiceclone/player"
)

type REPL struct {
	cloner   *clone.Cloner
	rl       *readline.Instance
	voice    string
	language string
	speed    float32
	play     bool
	counter  int
}

func New(cloner *clone.Cloner, voice, language string, speed float32, play bool) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFilePath(),
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &REPL{
		cloner:   cloner,
		rl:       rl,
		voice:    voice,
		language: language,
		speed:    speed,
		play:     play,
		counter:  1,
	}, nil
}

func (r *REPL) Close() error {
	return r.rl.Close()
}

func (r *REPL) Run(ctx context.Context) error {
	defer r.Close()
	r.printWelcome()

	for {
		r.rl.SetPrompt(fmt.Sprintf("[%d] (%s) > ", r.counter, r.language))

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if done := r.handleLine(ctx, line); done {
			fmt.Println("Goodbye!")
			return nil
		}
	}
}

// handleLine runs one command or synthesis. Returns true when the session
// should end.
func (r *REPL) handleLine(ctx context.Context, line string) bool {
	name, arg := ParseCommand(line)

	switch name {
	case "quit", "exit", "q":
		return true

	case "help":
		r.printHelp()
		return false

	case "lang":
		if !lang.IsSupported(arg) {
			fmt.Printf("Unsupported language: %s\n", arg)
			fmt.Printf("Supported: %s\n", strings.Join(lang.Codes, ", "))
			return false
		}
		r.language = strings.ToLower(arg)
		fmt.Printf("Language changed to: %s\n", r.language)
		return false

	case "voice":
		if arg == "" {
			fmt.Printf("Current voice: %s\n", r.voice)
			return false
		}
		if _, err := r.cloner.Voices().Resolve(arg); err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		r.voice = arg
		fmt.Printf("Voice changed to: %s\n", r.voice)
		return false

	case "speed":
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil || v < 0.5 || v > 2.0 {
			fmt.Println("Speed must be a number between 0.5 and 2.0")
			return false
		}
		r.speed = float32(v)
		fmt.Printf("Speed changed to: %.2f\n", r.speed)
		return false

	case "play":
		switch arg {
		case "on":
			r.play = true
		case "off":
			r.play = false
		default:
			fmt.Println("Usage: play on|off")
			return false
		}
		fmt.Printf("Playback: %v\n", r.play)
		return false
	}

	r.synthesize(ctx, line)
	return false
}

func (r *REPL) synthesize(ctx context.Context, text string) {
	ts := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("interactive_%s_%03d.wav", ts, r.counter)

	result, err := r.cloner.Synthesize(ctx, clone.Request{
		Text:       text,
		Voice:      r.voice,
		Language:   r.language,
		Speed:      r.speed,
		OutputPath: filepath.Join(r.cloner.OutputDir(), name),
		Origin:     "interactive",
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Saved: %s (%.1fs)\n", filepath.Base(result.OutputPath), result.DurationSec)
	r.counter++

	if r.play {
		player.Play(ctx, result.OutputPath)
	}
}

// ParseCommand splits a line into a command word and its argument. Lines
// that are not commands come back with an empty name and are synthesized
// as-is.
func ParseCommand(line string) (name, arg string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}

	word := strings.ToLower(fields[0])
	switch word {
	case "quit", "exit", "q", "help":
		if len(fields) == 1 {
			return word, ""
		}
	case "lang", "voice", "speed", "play":
		if len(fields) == 2 {
			return word, fields[1]
		}
		if len(fields) == 1 && (word == "voice") {
			return word, ""
		}
	}
	return "", line
}

func (r *REPL) printWelcome() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Interactive Voice Cloning Mode")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	fmt.Println("Type text and press Enter to generate speech.")
	fmt.Println("Type 'help' for commands, 'quit' to leave.")
	fmt.Println()
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  <text>         Generate speech from text")
	fmt.Println("  lang <code>    Change language (e.g. 'lang es')")
	fmt.Println("  voice <name>   Change voice profile")
	fmt.Println("  speed <x>      Change speech speed (0.5-2.0)")
	fmt.Println("  play on|off    Toggle playback of generated audio")
	fmt.Println("  quit / exit    Leave interactive mode")
	fmt.Println()
	fmt.Printf("Supported languages: %s\n", strings.Join(lang.Codes, ", "))
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".config", "voiceclone")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
