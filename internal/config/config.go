package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	//===============
	// Workspace
	//===============
	// Directory holding the response caches, relative to the working directory
	cacheDir string
	// Directory holding durable run records such as the spreadsheet ledger
	dataDir string
	// Root directory in which to store the weekly digests
	outputDir string

	//===============
	// Sources
	//===============
	// Daily papers listing; the day is passed as the date query parameter
	feedURL url.URL
	// Base of the per-paper social statistics pages
	statsBaseURL url.URL
	// Whether rows carry social statistics columns
	withStats bool

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time you enforce between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Model
	//===============
	llmProvider string
	// Empty means the provider default
	llmModel string

	//===============
	// Spreadsheet
	//===============
	// Service account JSON used for Sheets and Drive
	credentialsFile string
	// Whether a new spreadsheet is readable by anyone with the link
	share bool

	//===============
	// Observability
	//===============
	logLevel  string
	logFormat string
	// Prometheus textfile written at the end of a run. Empty disables it.
	metricsFile string

	// Whether the program will simulate what it would do without
	// publishing a spreadsheet or writing a digest
	dryRun bool
}

type configDTO struct {
	CacheDir               string        `json:"cacheDir,omitempty"`
	DataDir                string        `json:"dataDir,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty"`
	FeedURL                string        `json:"feedUrl,omitempty"`
	StatsBaseURL           string        `json:"statsBaseUrl,omitempty"`
	WithStats              bool          `json:"withStats,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	LLMProvider            string        `json:"llmProvider,omitempty"`
	LLMModel               string        `json:"llmModel,omitempty"`
	CredentialsFile        string        `json:"credentialsFile,omitempty"`
	Share                  *bool         `json:"share,omitempty"`
	LogLevel               string        `json:"logLevel,omitempty"`
	LogFormat              string        `json:"logFormat,omitempty"`
	MetricsFile            string        `json:"metricsFile,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault()

	if dto.CacheDir != "" {
		builder.WithCacheDir(dto.CacheDir)
	}
	if dto.DataDir != "" {
		builder.WithDataDir(dto.DataDir)
	}
	if dto.OutputDir != "" {
		builder.WithOutputDir(dto.OutputDir)
	}
	if dto.FeedURL != "" {
		u, err := url.Parse(dto.FeedURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: feedUrl: %s", ErrInvalidConfig, err.Error())
		}
		builder.WithFeedURL(*u)
	}
	if dto.StatsBaseURL != "" {
		u, err := url.Parse(dto.StatsBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: statsBaseUrl: %s", ErrInvalidConfig, err.Error())
		}
		builder.WithStatsBaseURL(*u)
	}
	if dto.BaseDelay != 0 {
		builder.WithBaseDelay(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Timeout != 0 {
		builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.LLMProvider != "" {
		builder.WithLLMProvider(dto.LLMProvider)
	}
	if dto.LLMModel != "" {
		builder.WithLLMModel(dto.LLMModel)
	}
	if dto.CredentialsFile != "" {
		builder.WithCredentialsFile(dto.CredentialsFile)
	}
	if dto.LogLevel != "" {
		builder.WithLogLevel(dto.LogLevel)
	}
	if dto.LogFormat != "" {
		builder.WithLogFormat(dto.LogFormat)
	}
	if dto.MetricsFile != "" {
		builder.WithMetricsFile(dto.MetricsFile)
	}
	// share defaults to true, so only an explicit value overrides it.
	if dto.Share != nil {
		builder.WithShare(*dto.Share)
	}
	builder.WithStats(dto.WithStats).WithDryRun(dto.DryRun)

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		cacheDir:  ".cache",
		dataDir:   ".data",
		outputDir: "output",
		feedURL: url.URL{
			Scheme: "https",
			Host:   "huggingface.co",
			Path:   "/papers",
		},
		statsBaseURL: url.URL{
			Scheme: "https",
			Host:   "www.emergentmind.com",
			Path:   "/papers/",
		},
		withStats:              false,
		baseDelay:              500 * time.Millisecond,
		jitter:                 250 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             5,
		backoffInitialDuration: 500 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		timeout:                30 * time.Second,
		userAgent:              "paper-review/1.0",
		llmProvider:            "openai",
		share:                  true,
		logLevel:               "info",
		logFormat:              LogFormatText,
		dryRun:                 false,
	}
	return &defaultConfig
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithDataDir(dir string) *Config {
	c.dataDir = dir
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithFeedURL(u url.URL) *Config {
	c.feedURL = u
	return c
}

func (c *Config) WithStatsBaseURL(u url.URL) *Config {
	c.statsBaseURL = u
	return c
}

func (c *Config) WithStats(enabled bool) *Config {
	c.withStats = enabled
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithLLMProvider(provider string) *Config {
	c.llmProvider = provider
	return c
}

func (c *Config) WithLLMModel(model string) *Config {
	c.llmModel = model
	return c
}

func (c *Config) WithCredentialsFile(path string) *Config {
	c.credentialsFile = path
	return c
}

func (c *Config) WithShare(share bool) *Config {
	c.share = share
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) WithMetricsFile(path string) *Config {
	c.metricsFile = path
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) Build() (Config, error) {
	if strings.TrimSpace(c.cacheDir) == "" {
		return Config{}, fmt.Errorf("%w: cacheDir cannot be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.dataDir) == "" {
		return Config{}, fmt.Errorf("%w: dataDir cannot be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.outputDir) == "" {
		return Config{}, fmt.Errorf("%w: outputDir cannot be empty", ErrInvalidConfig)
	}
	for name, u := range map[string]url.URL{"feedUrl": c.feedURL, "statsBaseUrl": c.statsBaseURL} {
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Config{}, fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", ErrInvalidConfig, name, u.String())
		}
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	if c.backoffMultiplier < 1 {
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be at least 1", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.baseDelay < 0 || c.jitter < 0 {
		return Config{}, fmt.Errorf("%w: baseDelay and jitter cannot be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.llmProvider) == "" {
		return Config{}, fmt.Errorf("%w: llmProvider cannot be empty", ErrInvalidConfig)
	}
	if c.logFormat != LogFormatText && c.logFormat != LogFormatJSON {
		return Config{}, fmt.Errorf("%w: logFormat must be %q or %q", ErrInvalidConfig, LogFormatText, LogFormatJSON)
	}

	c.llmProvider = strings.ToLower(strings.TrimSpace(c.llmProvider))
	return *c, nil
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) DataDir() string {
	return c.dataDir
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) FeedURL() url.URL {
	return c.feedURL
}

func (c Config) StatsBaseURL() url.URL {
	return c.statsBaseURL
}

func (c Config) StatsEnabled() bool {
	return c.withStats
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) LLMProvider() string {
	return c.llmProvider
}

func (c Config) LLMModel() string {
	return c.llmModel
}

func (c Config) CredentialsFile() string {
	return c.credentialsFile
}

func (c Config) Share() bool {
	return c.share
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}

func (c Config) MetricsFile() string {
	return c.metricsFile
}

func (c Config) DryRun() bool {
	return c.dryRun
}
