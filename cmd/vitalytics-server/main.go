package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vitalytics/vitalytics/internal/config"
	"github.com/vitalytics/vitalytics/internal/domain/analysis"
	"github.com/vitalytics/vitalytics/internal/domain/dataset"
	"github.com/vitalytics/vitalytics/internal/domain/metrics"
	"github.com/vitalytics/vitalytics/internal/domain/narrative"
	"github.com/vitalytics/vitalytics/internal/platform/groq"
	"github.com/vitalytics/vitalytics/internal/platform/middleware"
)

const version = "0.1.0"

var datasetFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitalytics-server",
		Short: "Patient vitals analytics API server",
	}
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "path to the population table (overrides DATASET_PATH)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(patientsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analytics API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PORT)")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <patient-id>",
		Short: "Run one analysis cycle for a patient and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			svc, err := buildService(cfg, logger)
			if err != nil {
				return err
			}

			res, err := svc.Analyze(context.Background(), args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func patientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List patient identifiers and display names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, _, err := setup()
			if err != nil {
				return err
			}
			store, err := dataset.Load(cfg.DatasetPath)
			if err != nil {
				return err
			}
			for _, ref := range store.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ref.ID, ref.DisplayName)
			}
			return nil
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Flag override must land before Load validates DATASET_PATH.
	if datasetFlag != "" {
		os.Setenv("DATASET_PATH", datasetFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logger, err
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	return cfg, logger, nil
}

// buildService wires the analysis flow once per process: dataset store,
// metrics engine and, when a credential is configured, the narrative path.
func buildService(cfg *config.Config, logger zerolog.Logger) (*analysis.Service, error) {
	store, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("source", cfg.DatasetPath).
		Int("rows", store.Len()).
		Msg("population table loaded")

	engine := metrics.NewEngine(store, logger)

	var narrator analysis.Narrator
	client, err := groq.New(groq.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		Temperature: cfg.GroqTemperature,
	}, logger)
	switch {
	case err == nil:
		narrator = narrative.NewService(client, logger)
	case errors.Is(err, groq.ErrMissingCredential):
		logger.Warn().Msg("GROQ_API_KEY not set, narrative generation disabled")
	default:
		return nil, err
	}

	return analysis.NewService(store, engine, narrator, logger), nil
}

func runServer(addrOverride string) error {
	cfg, logger, err := setup()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		return err
	}

	svc, err := buildService(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build analysis service")
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	api := e.Group("/api/v1")
	api.Use(middleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))

	handler := analysis.NewHandler(svc)
	handler.RegisterRoutes(api, middleware.RateLimit(cfg.NarrativeRatePerMinute))

	addr := ":" + cfg.Port
	if addrOverride != "" {
		addr = addrOverride
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()
	logger.Info().Str("addr", addr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
