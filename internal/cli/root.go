package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/paper-review/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	envFile         string
	cacheDir        string
	dataDir         string
	outputDir       string
	dryRun          bool
	userAgent       string
	timeout         time.Duration
	baseDelay       time.Duration
	jitter          time.Duration
	randomSeed      int64
	maxAttempt      int
	llmProvider     string
	llmModel        string
	logLevel        string
	logFormat       string
	metricsFile     string
	credentialsFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paper-review",
	Short: "Weekly paper review from the Hugging Face daily papers feed.",
	Long: `paper-review collects last week's Hugging Face daily papers, summarizes
them with an LLM and publishes a review spreadsheet. Once a curator has
picked papers in the spreadsheet, the digest command turns the picks into
a Markdown and HTML digest.

Every network and model response is cached on disk, so a rerun of the same
week replays from the cache.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// ExecuteArgs runs the command tree with args, writing to out and errOut.
// Flags are reset first so repeated calls do not leak values.
func ExecuteArgs(ctx context.Context, args []string, out io.Writer, errOut io.Writer) error {
	ResetFlags()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file holding API keys")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory of the response caches")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory of durable run records")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root output directory for digests")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "run without publishing a spreadsheet or writing a digest")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "maximum attempts per HTTP request")
	rootCmd.PersistentFlags().StringVar(&llmProvider, "llm-provider", "", "LLM provider: openai or gemini")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "model name (defaults to the provider default)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials-file", "", "service account JSON for Sheets and Drive")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus counters to this textfile at the end of a run")

	rootCmd.AddCommand(reviewCmd, digestCmd, cacheCmd, versionCmd)
}

// InitConfigWithError builds the config from the config file when one is
// given, otherwise from defaults overridden by flags.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}
	if dataDir != "" {
		configBuilder = configBuilder.WithDataDir(dataDir)
	}
	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}
	if llmProvider != "" {
		configBuilder = configBuilder.WithLLMProvider(llmProvider)
	}
	if llmModel != "" {
		configBuilder = configBuilder.WithLLMModel(llmModel)
	}
	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}
	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}
	if metricsFile != "" {
		configBuilder = configBuilder.WithMetricsFile(metricsFile)
	}
	if withStats {
		configBuilder = configBuilder.WithStats(true)
	}
	if noShare {
		configBuilder = configBuilder.WithShare(false)
	}
	if credentialsFile != "" {
		configBuilder = configBuilder.WithCredentialsFile(credentialsFile)
	}

	return configBuilder.Build()
}

func ResetFlags() {
	cfgFile = ""
	envFile = ".env"
	cacheDir = ""
	dataDir = ""
	outputDir = ""
	dryRun = false
	userAgent = ""
	timeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	llmProvider = ""
	llmModel = ""
	logLevel = ""
	logFormat = ""
	metricsFile = ""
	withStats = false
	noShare = false
	credentialsFile = ""
	today = ""
	week = ""
	spreadsheetID = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetLLMProviderForTest(provider string) {
	llmProvider = provider
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetWithStatsForTest(enabled bool) {
	withStats = enabled
}

func SetNoShareForTest(disabled bool) {
	noShare = disabled
}
