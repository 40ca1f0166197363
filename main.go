package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/jeopardy/internal/config"
	"github.com/robalobadob/jeopardy/internal/events"
	"github.com/robalobadob/jeopardy/internal/provider"
	"github.com/robalobadob/jeopardy/internal/sampler"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "jeopardy",
	Short:        "Jeopardy board server and terminal game",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		setupLogging(cfg)
		return nil
	},
	// Bare `jeopardy` serves, like `jeopardy serve`.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config/config.yaml if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setupLogging applies LOG_LEVEL and uses a console writer outside production.
func setupLogging(c *config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", c.LogLevel).Msg("unknown log level, keeping default")
	}
	if !c.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newSampler builds the configured clue provider and wraps it in a sampler.
func newSampler(c *config.Config, opts ...sampler.Option) (*sampler.Sampler, error) {
	var p sampler.Provider
	switch c.Provider.Kind {
	case config.ProviderJService:
		p = provider.NewJService(c.Provider.BaseURL, &http.Client{})
		log.Info().Str("url", c.Provider.BaseURL).Msg("using jservice provider")
	default:
		cat, err := provider.OpenCatalog(c.Provider.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		p = cat
		log.Info().Int("categories", cat.Len()).Msg("using catalog provider")
	}
	opts = append([]sampler.Option{
		sampler.WithCandidatePool(c.Provider.CandidatePool),
		sampler.WithCallTimeout(c.Provider.CallTimeout),
		sampler.WithRetry(c.Provider.Retries, c.Provider.RetryWait),
	}, opts...)
	return sampler.New(p, opts...), nil
}

// newPublisher connects to NATS when configured. Events are optional, so a
// failed connection falls back to discarding them.
func newPublisher(c *config.Config) events.Publisher {
	if c.NATSURL == "" {
		return &events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(c.NATSURL)
	if err != nil {
		log.Warn().Err(err).Msg("events disabled")
		return &events.NoopPublisher{}
	}
	log.Info().Str("url", c.NATSURL).Msg("publishing game events")
	return pub
}
