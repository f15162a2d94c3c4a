package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	coordinator "github.com/koscakluka/ema-perspective/core"
	"github.com/koscakluka/ema-perspective/core/perspective"
)

// Config holds everything the perspective CLI reads from the environment.
type Config struct {
	APIKey             string
	RealtimeModel      string
	RealtimeURL        string
	RealtimeSessionURL string
	Voice              string
	TranscriptionModel string
	EnrichmentModel    string
	EnrichmentBaseURL  string
	LexiconPath        string
	Timings            coordinator.Timings
}

var durationVars = []struct {
	name string
	set  func(*coordinator.Timings, time.Duration)
}{
	{"MIN_HOLD", func(t *coordinator.Timings, d time.Duration) { t.MinHold = d }},
	{"COMMIT_TAIL", func(t *coordinator.Timings, d time.Duration) { t.CommitTail = d }},
	{"COMMIT_WINDOW", func(t *coordinator.Timings, d time.Duration) { t.CommitWindow = d }},
	{"REPLY_COOLDOWN", func(t *coordinator.Timings, d time.Duration) { t.ReplyCooldown = d }},
	{"OUTBOX_FLUSH_INTERVAL", func(t *coordinator.Timings, d time.Duration) { t.OutboxFlush = d }},
}

// Load reads envFile, if it exists, and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		APIKey:             os.Getenv("OPENAI_API_KEY"),
		RealtimeModel:      os.Getenv("REALTIME_MODEL"),
		RealtimeURL:        os.Getenv("REALTIME_URL"),
		RealtimeSessionURL: os.Getenv("REALTIME_SESSION_URL"),
		Voice:              getenv("REALTIME_VOICE", "alloy"),
		TranscriptionModel: getenv("TRANSCRIPTION_MODEL", "whisper-1"),
		EnrichmentModel:    os.Getenv("ENRICHMENT_MODEL"),
		EnrichmentBaseURL:  os.Getenv("ENRICHMENT_BASE_URL"),
		LexiconPath:        os.Getenv("PERSPECTIVE_LEXICON"),
	}

	for _, v := range durationVars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: expected a positive duration like 300ms", v.name, raw)
		}
		v.set(&cfg.Timings, d)
	}
	return cfg, nil
}

// Validate reports configuration that makes connecting impossible.
func (c Config) Validate() error {
	if c.APIKey == "" && c.RealtimeSessionURL == "" {
		return errors.New("OPENAI_API_KEY or REALTIME_SESSION_URL must be set")
	}
	return nil
}

// Matcher compiles the configured lexicon, or returns the built-in one.
func (c Config) Matcher() (*perspective.Matcher, error) {
	if c.LexiconPath == "" {
		return perspective.DefaultMatcher(), nil
	}
	lexicon, err := perspective.LoadLexicon(c.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	matcher, err := lexicon.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile lexicon: %w", err)
	}
	return matcher, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
