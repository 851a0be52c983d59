package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/pipeline"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "termgov",
	Short: "termgov - terminology classification and resolution",
	Long: `termgov governs UI terminology for a multi-tenant, multi-vertical product.

Given a raw UI term and a tenant context it decides whether the term already
has a canonical key, should become a new key at a specific place in the
vocabulary, or needs a human decision. Ambiguous terms go to a durable review
queue.

At render time it resolves translation keys through a specificity-ordered
fallback chain: subvertical, vertical, modules, then universal namespaces.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; SIGINT and SIGTERM cancel the command context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of termgov.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "termgov %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.termgov/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	pf.String("registry", "", "registry file (overrides paths.registry)")
	pf.String("translations", "", "translations root directory (overrides paths.translations)")
	pf.String("queue", "", "review queue file or database (overrides paths.review_queue)")
	pf.String("review-backend", "", "review queue backend: file or sqlite")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("output.json", pf.Lookup("json"))
	_ = viper.BindPFlag("paths.registry", pf.Lookup("registry"))
	_ = viper.BindPFlag("paths.translations", pf.Lookup("translations"))
	_ = viper.BindPFlag("paths.review_queue", pf.Lookup("queue"))
	_ = viper.BindPFlag("review.backend", pf.Lookup("review-backend"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".termgov"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TERMGOV_*, e.g. TERMGOV_PATHS_REGISTRY
	viper.SetEnvPrefix("TERMGOV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides reach Unmarshal
func setDefaults(cfg *model.Config) {
	c := cfg.Classifier
	viper.SetDefault("classifier.backend", c.Backend)
	viper.SetDefault("classifier.retrieval_threshold", c.RetrievalThreshold)
	viper.SetDefault("classifier.exact_match", c.ExactMatch)
	viper.SetDefault("classifier.high_similarity", c.HighSimilarity)
	viper.SetDefault("classifier.propose_threshold", c.ProposeThreshold)
	viper.SetDefault("classifier.no_candidates_confidence", c.NoCandidatesConfidence)
	viper.SetDefault("classifier.propose_confidence", c.ProposeConfidence)
	viper.SetDefault("classifier.max_candidates", c.MaxCandidates)
	viper.SetDefault("classifier.max_matched", c.MaxMatched)

	viper.SetDefault("paths.registry", cfg.Paths.Registry)
	viper.SetDefault("paths.translations", cfg.Paths.Translations)
	viper.SetDefault("paths.review_queue", cfg.Paths.ReviewQueue)

	viper.SetDefault("review.backend", cfg.Review.Backend)
	viper.SetDefault("review.reviewer", cfg.Review.Reviewer)
	viper.SetDefault("locale.default", cfg.Locale.Default)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
	viper.SetDefault("cache.cleanup_interval", cfg.Cache.CleanupInterval)

	viper.SetDefault("batch.workers", cfg.Batch.Workers)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.json", cfg.Output.JSON)
}

// loadConfig merges defaults, config file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Classifier.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger; --verbose enables debug records
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("output.verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// session is the per-invocation wiring shared by subcommands
type session struct {
	cfg      *model.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	close    func() error
}

// openSession loads config and builds the pipeline; withStore also opens the review queue
func openSession(cmd *cobra.Command, withStore bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr())

	s := &session{cfg: cfg, logger: logger, close: func() error { return nil }}
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if withStore {
		store, closer, err := pipeline.OpenStore(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open review queue: %w", err)
		}
		opts = append(opts, pipeline.WithStore(store))
		s.close = closer.Close
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		_ = s.close()
		return nil, err
	}
	s.pipeline = p
	return s, nil
}

// wantJSON reports whether output should be JSON
func (s *session) wantJSON() bool {
	return s.cfg.Output.JSON
}
