package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/paper-review/internal/config"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestLoadSecrets_FromEnvironment(t *testing.T) {
	t.Setenv(config.EnvOpenAIAPIKey, " sk-env ")
	t.Setenv(config.EnvGeminiAPIKey, "gm-env")
	t.Setenv(config.EnvGoogleCredsFile, "/etc/sa.json")

	secrets, err := config.LoadSecrets(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if secrets.OpenAIAPIKey != "sk-env" {
		t.Errorf("expected trimmed OpenAI key, got %q", secrets.OpenAIAPIKey)
	}
	if secrets.GeminiAPIKey != "gm-env" {
		t.Errorf("expected Gemini key, got %q", secrets.GeminiAPIKey)
	}
	if secrets.CredentialsFile != "/etc/sa.json" {
		t.Errorf("expected credentials file, got %q", secrets.CredentialsFile)
	}
}

func TestLoadSecrets_EnvFileFillsGaps(t *testing.T) {
	unsetEnv(t, config.EnvOpenAIAPIKey)
	unsetEnv(t, config.EnvGoogleCredsFile)
	t.Setenv(config.EnvGeminiAPIKey, "gm-env")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-file\nGEMINI_API_KEY=gm-file\nGOOGLE_APPLICATION_CREDENTIALS=sa.json\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	secrets, err := config.LoadSecrets(envFile)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if secrets.OpenAIAPIKey != "sk-file" {
		t.Errorf("expected key from .env, got %q", secrets.OpenAIAPIKey)
	}
	if secrets.GeminiAPIKey != "gm-env" {
		t.Errorf("expected environment to win over .env, got %q", secrets.GeminiAPIKey)
	}
	if secrets.CredentialsFile != "sa.json" {
		t.Errorf("expected credentials from .env, got %q", secrets.CredentialsFile)
	}
}

func TestSecrets_APIKey(t *testing.T) {
	secrets := config.Secrets{OpenAIAPIKey: "sk"}

	key, err := secrets.APIKey("OpenAI")
	if err != nil || key != "sk" {
		t.Errorf("expected sk, got %q (%v)", key, err)
	}

	if _, err := secrets.APIKey("gemini"); !errors.Is(err, config.ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret for unset gemini key, got %v", err)
	}
	if _, err := secrets.APIKey("mistral"); !errors.Is(err, config.ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret for unknown provider, got %v", err)
	}
}

func TestSecrets_ResolveCredentialsFile(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if _, err := (config.Secrets{}).ResolveCredentialsFile(cfg); !errors.Is(err, config.ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}

	path, err := (config.Secrets{CredentialsFile: "env.json"}).ResolveCredentialsFile(cfg)
	if err != nil || path != "env.json" {
		t.Errorf("expected env.json, got %q (%v)", path, err)
	}

	withFile, err := config.WithDefault().WithCredentialsFile("cfg.json").Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	path, err = (config.Secrets{CredentialsFile: "env.json"}).ResolveCredentialsFile(withFile)
	if err != nil || path != "cfg.json" {
		t.Errorf("expected configured file to win, got %q (%v)", path, err)
	}
}
