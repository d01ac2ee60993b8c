package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Text     string  `mapstructure:"text"`
	Voice    string  `mapstructure:"voice"`
	Language string  `mapstructure:"language"`
	Speed    float32 `mapstructure:"speed"`
	Output   string  `mapstructure:"output"`

	Backend          string `mapstructure:"backend"`
	ServerURL        string `mapstructure:"server_url"`
	APIKey           string `mapstructure:"api_key"`
	RequestTimeoutMS int    `mapstructure:"request_timeout_ms"`

	VoicesDir string `mapstructure:"voices_dir"`
	OutputDir string `mapstructure:"output_dir"`
	HistoryDB string `mapstructure:"history_db"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Modes. At most one of these drives the run; plain synthesis is the
	// default when none is set.
	ListVoices    bool `mapstructure:"list_voices"`
	Interactive   bool `mapstructure:"interactive"`
	Prepare       bool `mapstructure:"prepare"`
	ProcessAll    bool `mapstructure:"process_all"`
	RecordSeconds int  `mapstructure:"record"`
	ListDevices   bool `mapstructure:"list_devices"`
	Serve         bool `mapstructure:"serve"`
	History       bool `mapstructure:"history"`

	Input        string `mapstructure:"input"`
	Device       string `mapstructure:"device"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	HistoryLimit int    `mapstructure:"history_limit"`
	Play         bool   `mapstructure:"play"`
	Yes          bool   `mapstructure:"yes"`
}

// HasMode reports whether a non-synthesis mode flag was selected.
func (c *Config) HasMode() bool {
	return c.ListVoices || c.Interactive || c.Prepare || c.RecordSeconds > 0 ||
		c.ListDevices || c.Serve || c.History || c.Input != ""
}

func LoadAndParse(args []string) (*Config, error) {
	// A .env next to the binary can hold the server URL and API key.
	_ = godotenv.Load()

	viper.SetDefault("voice", "my_voice")
	viper.SetDefault("language", "en")
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("backend", "xtts")
	viper.SetDefault("server_url", "http://127.0.0.1:8020")
	viper.SetDefault("voices_dir", "voices")
	viper.SetDefault("output_dir", "outputs")
	viper.SetDefault("history_db", filepath.Join("data", "history.db"))
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")
	viper.SetDefault("host", "127.0.0.1")
	viper.SetDefault("port", 7860)
	viper.SetDefault("history_limit", 20)

	flagSet := pflag.NewFlagSet("voiceclone", pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "c", "", "Path to config file")
	flagSet.StringP("text", "t", "", "Text to synthesize (use '-' to read from stdin)")
	flagSet.StringP("file", "f", "", "Read text from file")
	flagSet.StringP("voice", "v", "", "Voice profile name or path to a wav inside the voices directory")
	flagSet.StringP("language", "l", "", "Language code (see --list-voices for supported codes)")
	flagSet.Float32P("speed", "s", 1.0, "Speech speed (0.5-2.0)")
	flagSet.StringP("output", "o", "", "Output WAV file (must be within the outputs directory)")
	flagSet.String("backend", "", "Synthesis backend")
	flagSet.String("server-url", "", "Voice-cloning model server URL")
	flagSet.String("api-key", "", "Bearer token for the model server")
	flagSet.Int("request-timeout-ms", 0, "Model server request timeout in milliseconds")
	flagSet.String("voices-dir", "", "Directory holding voice profiles")
	flagSet.String("output-dir", "", "Directory for generated audio")
	flagSet.String("history-db", "", "Path to the generation history database")
	flagSet.String("log-level", "", "Log level (debug, info, warn, error)")
	flagSet.String("log-file", "", "Log file path")
	flagSet.Bool("list-voices", false, "List available voice profiles and exit")
	flagSet.BoolP("interactive", "i", false, "Interactive text-to-speech session")
	flagSet.Bool("prepare", false, "Clean and combine the voice profile's samples")
	flagSet.BoolP("process-all", "a", false, "With --prepare, clean every sample individually first")
	flagSet.String("input", "", "Prepare a single audio file and exit")
	flagSet.Int("record", 0, "Record N seconds from the microphone into the voice profile")
	flagSet.StringP("device", "d", "", "Audio capture device")
	flagSet.Bool("list-devices", false, "List audio capture devices and exit")
	flagSet.Bool("serve", false, "Start the browser UI")
	flagSet.String("host", "", "Host to bind the browser UI to")
	flagSet.IntP("port", "p", 0, "Port for the browser UI")
	flagSet.Bool("history", false, "Show recent generations and exit")
	flagSet.Int("history-limit", 0, "Number of history entries to show")
	flagSet.Bool("play", false, "Play generated audio with ffplay")
	flagSet.BoolP("yes", "y", false, "Assume yes on confirmation prompts")
	helpFlag := flagSet.BoolP("help", "h", false, "Show help message")

	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *helpFlag {
		fmt.Fprintf(os.Stderr, "Usage: voiceclone [options] [text]\n\nOptions:\n")
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	bindings := map[string]string{
		"text":               "text",
		"voice":              "voice",
		"language":           "language",
		"speed":              "speed",
		"output":             "output",
		"backend":            "backend",
		"server_url":         "server-url",
		"api_key":            "api-key",
		"request_timeout_ms": "request-timeout-ms",
		"voices_dir":         "voices-dir",
		"output_dir":         "output-dir",
		"history_db":         "history-db",
		"log_level":          "log-level",
		"log_file":           "log-file",
		"list_voices":        "list-voices",
		"interactive":        "interactive",
		"prepare":            "prepare",
		"process_all":        "process-all",
		"input":              "input",
		"record":             "record",
		"device":             "device",
		"list_devices":       "list-devices",
		"serve":              "serve",
		"host":               "host",
		"port":               "port",
		"history":            "history",
		"history_limit":      "history-limit",
		"play":               "play",
		"yes":                "yes",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flagSet.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
		viper.SetConfigType("toml")
	} else {
		viper.SetConfigName("voiceclone.cfg")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "voiceclone"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("VOICECLONE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	textFile, _ := flagSet.GetString("file")
	if textFile != "" {
		content, err := os.ReadFile(textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		cfg.Text = strings.TrimSpace(string(content))
	} else if cfg.Text == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		cfg.Text = strings.TrimSpace(string(content))
	} else if cfg.Text == "" {
		if rest := flagSet.Args(); len(rest) > 0 {
			cfg.Text = strings.Join(rest, " ")
		}
	}

	if cfg.Text == "" && !cfg.HasMode() {
		return nil, fmt.Errorf("text is required (use -t, -f, provide as argument, or pick a mode such as --interactive)")
	}

	if cfg.Speed < 0.5 || cfg.Speed > 2.0 {
		return nil, fmt.Errorf("speed must be between 0.5 and 2.0")
	}

	return &cfg, nil
}
