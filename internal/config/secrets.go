package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGoogleCredsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Secrets are never read from the JSON config file.
type Secrets struct {
	OpenAIAPIKey    string
	GeminiAPIKey    string
	CredentialsFile string
}

// LoadSecrets loads the given .env files, skipping the ones that do not
// exist, then reads the secrets from the environment. Variables already
// set in the environment win over .env entries.
func LoadSecrets(envFiles ...string) (Secrets, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return Secrets{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
		}
	}

	return Secrets{
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)),
		CredentialsFile: strings.TrimSpace(os.Getenv(EnvGoogleCredsFile)),
	}, nil
}

// APIKey returns the key for an LLM provider name.
func (s Secrets) APIKey(provider string) (string, error) {
	var key, env string
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		key, env = s.OpenAIAPIKey, EnvOpenAIAPIKey
	case "gemini":
		key, env = s.GeminiAPIKey, EnvGeminiAPIKey
	default:
		return "", fmt.Errorf("%w: no API key variable for provider %q", ErrMissingSecret, provider)
	}
	if key == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingSecret, env)
	}
	return key, nil
}

// ResolveCredentialsFile prefers the configured path over the environment.
func (s Secrets) ResolveCredentialsFile(cfg Config) (string, error) {
	if cfg.CredentialsFile() != "" {
		return cfg.CredentialsFile(), nil
	}
	if s.CredentialsFile != "" {
		return s.CredentialsFile, nil
	}
	return "", fmt.Errorf("%w: set credentialsFile or %s", ErrMissingSecret, EnvGoogleCredsFile)
}
