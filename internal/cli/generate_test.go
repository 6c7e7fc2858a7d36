package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "test-id")
	t.Setenv("REDDIT_CLIENT_SECRET", "test-secret")
	t.Setenv("REDDIT_USER_AGENT", "test-agent/0.1")
	t.Setenv("GROQ_API_KEY", "gsk-test")
}

func TestBuildConfig(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}

	if cfg.Reddit.ClientID != "test-id" || cfg.Reddit.ClientSecret != "test-secret" {
		t.Error("reddit credentials not picked up from environment")
	}
	if cfg.Reddit.UserAgent != "test-agent/0.1" {
		t.Errorf("unexpected user agent: %s", cfg.Reddit.UserAgent)
	}
	if cfg.LLM.APIKey != "gsk-test" {
		t.Error("GROQ_API_KEY not picked up from environment")
	}
}

func TestBuildConfig_MissingCredentials(t *testing.T) {
	vars := []string{"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USER_AGENT", "GROQ_API_KEY"}

	for _, missing := range vars {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := buildConfig()
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials when %s is unset, got %v", missing, err)
			}
		})
	}
}

// setFlag sets a root command flag as if passed on the command line and
// restores it when the test ends.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	f := rootCmd.Flags().Lookup(name)
	if f == nil {
		t.Fatalf("unknown flag %s", name)
	}
	prev := f.Value.String()
	if err := rootCmd.Flags().Set(name, value); err != nil {
		t.Fatalf("set flag %s: %v", name, err)
	}
	t.Cleanup(func() {
		_ = rootCmd.Flags().Set(name, prev)
		f.Changed = false
	})
}

func TestBuildConfig_PublicMode(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")
	t.Setenv("REDDIT_USER_AGENT", "test-agent/0.1")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	setFlag(t, "public", "true")

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("public mode must not require reddit credentials: %v", err)
	}
	if !cfg.Reddit.Public {
		t.Error("public flag not applied to config")
	}
}

func TestBuildConfig_ConfigFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `llm:
  model: mixtral-8x7b-32768
  temperature: 0.2
reddit:
  limit: 25
output:
  dir: research-personas
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	t.Cleanup(viper.Reset)

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}

	if cfg.LLM.Model != "mixtral-8x7b-32768" {
		t.Errorf("llm.model from file ignored, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("llm.temperature from file ignored, got %v", cfg.LLM.Temperature)
	}
	if cfg.Reddit.Limit != 25 {
		t.Errorf("reddit.limit from file ignored, got %d", cfg.Reddit.Limit)
	}
	if cfg.Output.Dir != "research-personas" {
		t.Errorf("output.dir from file ignored, got %s", cfg.Output.Dir)
	}
	// Keys the file does not set keep their defaults
	if cfg.LLM.Provider != "groq" {
		t.Errorf("unexpected provider %s", cfg.LLM.Provider)
	}
	if cfg.Reddit.Embed != 10 {
		t.Errorf("unexpected embed %d", cfg.Reddit.Embed)
	}
}

func TestBuildConfig_FlagOverridesConfigFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "reddit:\n  limit: 25\noutput:\n  dir: research-personas\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	t.Cleanup(viper.Reset)

	setFlag(t, "limit", "50")

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}

	if cfg.Reddit.Limit != 50 {
		t.Errorf("flag should override config file, got limit %d", cfg.Reddit.Limit)
	}
	// Flag left untouched still honors the file
	if cfg.Output.Dir != "research-personas" {
		t.Errorf("output.dir from file ignored, got %s", cfg.Output.Dir)
	}
}

func TestBuildConfig_UserAgentFlagOverride(t *testing.T) {
	setRequiredEnv(t)

	userAgent = "flag-agent/1.0"
	defer func() { userAgent = "" }()

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Reddit.UserAgent != "flag-agent/1.0" {
		t.Errorf("flag should override env, got %s", cfg.Reddit.UserAgent)
	}
}
