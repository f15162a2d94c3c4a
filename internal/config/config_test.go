package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "REALTIME_MODEL", "REALTIME_URL", "REALTIME_SESSION_URL",
		"REALTIME_VOICE", "TRANSCRIPTION_MODEL", "ENRICHMENT_MODEL", "ENRICHMENT_BASE_URL",
		"PERSPECTIVE_LEXICON", "MIN_HOLD", "COMMIT_TAIL", "COMMIT_WINDOW",
		"REPLY_COOLDOWN", "OUTBOX_FLUSH_INTERVAL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_DefaultsWithoutEnvFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("expected missing env file to be tolerated, got %v", err)
	}
	if cfg.Voice != "alloy" {
		t.Fatalf("expected default voice, got %q", cfg.Voice)
	}
	if cfg.TranscriptionModel != "whisper-1" {
		t.Fatalf("expected default transcription model, got %q", cfg.TranscriptionModel)
	}
	if cfg.Timings.MinHold != 0 {
		t.Fatalf("expected unset timings, got %v", cfg.Timings.MinHold)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to require a credential")
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-test\nREALTIME_VOICE=verse\nCOMMIT_TAIL=400ms\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("REALTIME_VOICE", "sage")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.APIKey != "sk-test" {
		t.Fatalf("expected API key from env file, got %q", cfg.APIKey)
	}
	if cfg.Voice != "sage" {
		t.Fatalf("expected process environment to win, got %q", cfg.Voice)
	}
	if cfg.Timings.CommitTail != 400*time.Millisecond {
		t.Fatalf("expected commit tail 400ms, got %v", cfg.Timings.CommitTail)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	testCases := []struct {
		name  string
		value string
	}{
		{name: "not a duration", value: "soon"},
		{name: "negative", value: "-1s"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REPLY_COOLDOWN", tc.value)

			if _, err := Load(""); err == nil {
				t.Fatalf("expected an error for %q", tc.value)
			}
		})
	}
}

func TestMatcher_LoadsLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := "confirm_phrases:\n  - '\\bship it\\b'\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write lexicon: %v", err)
	}

	matcher, err := Config{LexiconPath: path}.Matcher()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !matcher.IsConfirmation("ok, ship it") {
		t.Fatalf("expected custom confirmation phrase to match")
	}
	if matcher.IsConfirmation("go ahead") {
		t.Fatalf("expected custom phrases to replace the defaults")
	}
}

func TestMatcher_MissingLexicon(t *testing.T) {
	if _, err := (Config{LexiconPath: filepath.Join(t.TempDir(), "nope.yaml")}).Matcher(); err == nil {
		t.Fatalf("expected an error for a missing lexicon")
	}
}
