package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rohmanhakim/paper-review/internal/config"
	"github.com/rohmanhakim/paper-review/internal/fetcher"
	"github.com/rohmanhakim/paper-review/internal/llm"
	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/respcache"
	"github.com/rohmanhakim/paper-review/internal/sheet"
	"github.com/rohmanhakim/paper-review/internal/workspace"
	"github.com/rohmanhakim/paper-review/pkg/limiter"
	"github.com/rohmanhakim/paper-review/pkg/retry"
	"github.com/rohmanhakim/paper-review/pkg/timeutil"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Same as backoff.DefaultRandomizationFactor.
const retryRandomization = 0.5

// SpreadsheetPublisher is the slice of sheet.Publisher the commands use.
type SpreadsheetPublisher interface {
	Publish(ctx context.Context, title string, table sheet.Table) (string, error)
	Share(ctx context.Context, id string) error
	ReadRows(ctx context.Context, id string) ([]sheet.Row, error)
}

// ProviderFactory builds the LLM provider named by the config.
type ProviderFactory func(ctx context.Context, cfg config.Config, secrets config.Secrets) (llm.Provider, error)

// PublisherFactory builds the spreadsheet client.
type PublisherFactory func(ctx context.Context, cfg config.Config, secrets config.Secrets, sink metadata.MetadataSink) (SpreadsheetPublisher, error)

var (
	newProvider  ProviderFactory  = openProvider
	newPublisher PublisherFactory = openPublisher
)

func SetProviderFactoryForTest(f ProviderFactory) func() {
	prev := newProvider
	newProvider = f
	return func() { newProvider = prev }
}

func SetPublisherFactoryForTest(f PublisherFactory) func() {
	prev := newPublisher
	newPublisher = f
	return func() { newPublisher = prev }
}

// app is everything a command needs for one run.
type app struct {
	cfg        config.Config
	secrets    config.Secrets
	logger     *logrus.Logger
	metrics    *metadata.Metrics
	recorder   *metadata.Recorder
	caches     *respcache.Registry
	fetcher    fetcher.Fetcher
	retryParam retry.RetryParam
}

func newApp(cfg config.Config, logOut io.Writer) (*app, error) {
	secrets, err := config.LoadSecrets(envFile)
	if err != nil {
		return nil, err
	}

	logger := metadata.NewLogger(cfg.LogLevel(), cfg.LogFormat(), logOut)
	var metrics *metadata.Metrics
	if cfg.MetricsFile() != "" {
		metrics = metadata.NewMetrics()
	}
	recorder := metadata.NewRecorder(uuid.NewString(), logger, metrics)

	changed, err := workspace.Init(workspace.Layout{CacheDir: cfg.CacheDir(), DataDir: cfg.DataDir()})
	if err != nil {
		return nil, fmt.Errorf("init workspace: %w", err)
	}
	if changed {
		logger.WithField("cache_dir", cfg.CacheDir()).Info("added cache directory to .gitignore")
	}

	caches, err := respcache.OpenRegistry(cfg.CacheDir(), recorder)
	if err != nil {
		return nil, fmt.Errorf("open caches: %w", err)
	}

	backoffParam := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
	rateLimiter := limiter.NewHostRateLimiter(cfg.BaseDelay(), cfg.Jitter(), cfg.RandomSeed(), backoffParam)

	return &app{
		cfg:        cfg,
		secrets:    secrets,
		logger:     logger,
		metrics:    metrics,
		recorder:   recorder,
		caches:     caches,
		fetcher:    fetcher.NewHttpFetcher(recorder, nil, rateLimiter, cfg.Timeout()),
		retryParam: retry.NewRetryParam(cfg.MaxAttempt(), retryRandomization, backoffParam),
	}, nil
}

// close flushes the metrics textfile when one is configured.
func (a *app) close() {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile()); err != nil {
		a.logger.WithError(err).WithField("path", a.cfg.MetricsFile()).Warn("could not write metrics textfile")
	}
}

func openProvider(ctx context.Context, cfg config.Config, secrets config.Secrets) (llm.Provider, error) {
	// The configured model only applies to the selected provider.
	modelFor := func(name string) string {
		if name == cfg.LLMProvider() {
			return cfg.LLMModel()
		}
		return ""
	}

	var providers []llm.Provider
	if secrets.OpenAIAPIKey != "" {
		p, err := llm.NewOpenAIProvider(llm.OpenAIConfig{APIKey: secrets.OpenAIAPIKey, Model: modelFor(llm.ProviderOpenAI)})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if secrets.GeminiAPIKey != "" {
		p, err := llm.NewGeminiProvider(ctx, llm.GeminiConfig{APIKey: secrets.GeminiAPIKey, Model: modelFor(llm.ProviderGemini)})
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	registry, err := llm.NewRegistry(providers...)
	if err != nil {
		return nil, err
	}
	provider, err := registry.Resolve(cfg.LLMProvider())
	if err != nil {
		// A known provider without a key reports the missing variable.
		if _, keyErr := secrets.APIKey(cfg.LLMProvider()); keyErr != nil {
			return nil, keyErr
		}
		return nil, err
	}
	return provider, nil
}

func openPublisher(
	ctx context.Context,
	cfg config.Config,
	secrets config.Secrets,
	sink metadata.MetadataSink,
) (SpreadsheetPublisher, error) {
	credentials, err := secrets.ResolveCredentialsFile(cfg)
	if err != nil {
		return nil, err
	}
	publisher, err := sheet.NewPublisher(
		ctx,
		sink,
		sheet.DefaultLayout(),
		option.WithCredentialsFile(credentials),
		option.WithScopes(sheet.Scopes...),
	)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}
