package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/elsanchez/linkgrab/internal/clipboard"
	"github.com/elsanchez/linkgrab/internal/config"
	"github.com/elsanchez/linkgrab/internal/downloader"
	"github.com/elsanchez/linkgrab/internal/logging"
	"github.com/elsanchez/linkgrab/internal/repository/sqlite"
	"github.com/elsanchez/linkgrab/internal/resolver"
	"github.com/elsanchez/linkgrab/internal/tui/grab"
)

const (
	version = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "linkgrab",
		Short:         "Download videos from social media links",
		Long:          "Paste a TikTok, Instagram, YouTube, Facebook, X, Pinterest, Snapchat or LinkedIn link and save its video or audio.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}

	root.AddCommand(
		newResolveCmd(),
		newGetCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("linkgrab v%s\n", version)
			},
		},
	)

	return root
}

// app agrupa las piezas ya cableadas
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	resolver *resolver.Resolver
	engine   *downloader.Engine
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *app {
	// Resolver primario solo si hay credenciales
	var primary resolver.Lookuper
	if cfg.HasPrimaryResolver() {
		primary = resolver.NewClient(resolver.ClientConfig{
			Endpoint: cfg.ResolverEndpoint,
			APIKey:   cfg.RapidAPIKey,
			APIHost:  cfg.RapidAPIHost,
			Timeout:  cfg.RequestTimeout,
		}, logger)
	} else {
		logger.Warn("RAPIDAPI_KEY not set, every lookup will use the fallback")
	}

	// Fallback generativo: sin clave solo produce placeholders
	var gen resolver.Generator
	gemini, err := resolver.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case errors.Is(err, resolver.ErrNoGenerator):
		logger.Info("Gemini key not set, fallback returns placeholders")
	case err != nil:
		logger.WithError(err).Warn("Failed to create Gemini client, fallback returns placeholders")
	default:
		gen = gemini
	}

	r := resolver.New(primary, resolver.NewFallback(gen, logger), logger)

	engine := downloader.NewEngine(downloader.Config{
		OutputDir:  cfg.OutputDir,
		FilePrefix: cfg.FilePrefix,
	}, downloader.NewSession(), downloader.BrowserOpener{}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		resolver: r,
		engine:   engine,
	}
}

func runTUI(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// El TUI usa la terminal completa: los logs van a archivo
	logger, closer, err := logging.NewFileLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.WithField("version", version).Info("linkgrab starting")

	db, err := sqlite.NewDatabase()
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	defer db.Close()

	a := newApp(ctx, cfg, logger)
	model := grab.NewModel(a.resolver, a.engine, clipboard.NewReader(logger), db.HistoryRepo, logger)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
