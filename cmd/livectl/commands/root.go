package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/live-console/internal/genailive"
	"github.com/eleven-am/live-console/internal/live"
	"github.com/eleven-am/live-console/internal/liveconfig"
)

const defaultModel = "gemini-2.0-flash-live-001"

var (
	apiKey     string
	backend    string
	project    string
	location   string
	model      string
	configFile string
	presetName string
	outputFile string
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "livectl",
	Short: "Live model session CLI",
	Long: `livectl opens live model sessions from the terminal.

Credentials come from flags or the LIVE_API_KEY / GEMINI_API_KEY environment
variables. Session settings come from a preset file (the same YAML format the
server reads from LIVE_CONFIG_FILE).

Examples:
  # Ask a question and save the spoken answer
  livectl chat "What is the weather like on Mars?" -o answer.wav

  # Stream a recording as realtime audio
  livectl stream question.wav -o answer.wav --preset assistant --config presets.yaml

  # Follow the log of a running console session
  livectl tail 1f0c6a52-6d1e-4c36-9f0e-3a1c1e3f8b42`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", envOr("LIVE_API_KEY", os.Getenv("GEMINI_API_KEY")), "API key for the Gemini backend")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", envOr("LIVE_BACKEND", genailive.BackendGemini), "backend: gemini or vertex")
	rootCmd.PersistentFlags().StringVar(&project, "project", os.Getenv("LIVE_PROJECT"), "Vertex AI project")
	rootCmd.PersistentFlags().StringVar(&location, "location", os.Getenv("LIVE_LOCATION"), "Vertex AI location")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", os.Getenv("LIVE_MODEL"), "model name (default from the preset file, else "+defaultModel+")")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("LIVE_CONFIG_FILE"), "session preset file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "", "preset name (default: the file's default preset)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "reply.wav", "WAV file for the received audio, empty to skip")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(presetsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printVerbose(w io.Writer, format string, args ...any) {
	if verbose {
		fmt.Fprintf(w, "[verbose] "+format+"\n", args...)
	}
}

func loadSession() (string, *live.SessionConfig, error) {
	file, err := liveconfig.Load(configFile)
	if err != nil {
		return "", nil, err
	}

	name := presetName
	if name == "" {
		name = file.Default
	}
	cfg, err := file.Preset(name)
	if err != nil {
		return "", nil, err
	}

	m := model
	if m == "" {
		m = file.Model
	}
	if m == "" {
		m = defaultModel
	}
	return m, cfg, nil
}

func newClient(ctx context.Context, logger *slog.Logger) (*live.Client, *live.SessionConfig, error) {
	m, cfg, err := loadSession()
	if err != nil {
		return nil, nil, err
	}

	tr, err := genailive.New(ctx, genailive.Config{
		APIKey:   apiKey,
		Backend:  backend,
		Project:  project,
		Location: location,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return live.NewClient(m, tr, live.WithLogger(logger)), cfg, nil
}
