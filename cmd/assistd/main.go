package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assistd/internal/backend"
	"assistd/internal/config"
	"assistd/internal/httpapi"
	"assistd/internal/queue"
	"assistd/internal/registry"
	"assistd/internal/runner"
	"assistd/internal/search"
	"assistd/internal/tabular"
	"assistd/internal/workflow"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func buildRootCmd() *cobra.Command {
	var (
		addr         string
		configPath   string
		backendURL   string
		backendKey   string
		backendModel string
		elasticAddrs string
		dataDir      string
		artifactsDir string
		catalogFile  string
		logLevel     string
	)

	root := &cobra.Command{
		Use:           "assistd",
		Short:         "Conversational assistant daemon for oilfield operations reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			// Flags (with env defaults) override the file.
			if addr != "" {
				cfg.Addr = addr
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}
			if backendKey != "" {
				cfg.BackendKey = backendKey
			}
			if backendModel != "" {
				cfg.BackendModel = backendModel
			}
			if elasticAddrs != "" {
				cfg.ElasticAddresses = splitCSV(elasticAddrs)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if artifactsDir != "" {
				cfg.ArtifactsDir = artifactsDir
			}
			if catalogFile != "" {
				cfg.CatalogFile = catalogFile
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := root.Flags()
	f.StringVar(&addr, "addr", envOr("ASSISTD_ADDR", ":8080"), "HTTP listen address")
	f.StringVar(&configPath, "config", envOr("ASSISTD_CONFIG", ""), "Path to a yaml/json/toml config file")
	f.StringVar(&backendURL, "backend-url", envOr("ASSISTD_BACKEND_URL", "http://127.0.0.1:8000"), "Base URL of the OpenAI-compatible generation backend")
	f.StringVar(&backendKey, "backend-key", envOr("ASSISTD_BACKEND_KEY", ""), "API key for the generation backend")
	f.StringVar(&backendModel, "backend-model", envOr("ASSISTD_BACKEND_MODEL", ""), "Model name sent to the generation backend")
	f.StringVar(&elasticAddrs, "elastic", envOr("ASSISTD_ELASTIC", ""), "Comma-separated Elasticsearch addresses")
	f.StringVar(&dataDir, "data-dir", envOr("ASSISTD_DATA_DIR", "data"), "Directory with spreadsheet report files")
	f.StringVar(&artifactsDir, "artifacts-dir", envOr("ASSISTD_ARTIFACTS_DIR", "artifacts"), "Directory for rendered plot artifacts")
	f.StringVar(&catalogFile, "catalog", envOr("ASSISTD_CATALOG", ""), "YAML report catalog file (builtin catalog when empty)")
	f.StringVar(&logLevel, "log-level", envOr("ASSISTD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")

	return root
}

func run(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	reg, err := registry.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}

	client := backend.NewClient(backend.ClientConfig{
		BaseURL:     cfg.BackendURL,
		APIKey:      cfg.BackendKey,
		Model:       cfg.BackendModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})

	var index search.Index
	var tableSource tabular.TableSource
	if len(cfg.ElasticAddresses) > 0 {
		es, err := search.NewElastic(search.ElasticConfig{
			Addresses:      cfg.ElasticAddresses,
			Username:       cfg.ElasticUsername,
			Password:       cfg.ElasticPassword,
			ReportsIndex:   orDefault(cfg.ReportsIndex, "reports"),
			DocsIndex:      orDefault(cfg.DocsIndex, "docs"),
			KnownReportIDs: reg.DocIDs(),
		})
		if err != nil {
			return err
		}
		index = es
		tableSource = es
	}

	codeRunner, err := runner.New(runner.Config{
		Python:       cfg.Python,
		ArtifactsDir: cfg.ArtifactsDir,
	})
	if err != nil {
		return err
	}

	q := queue.NewWithConfig(queue.Config{
		Executor:     backend.NewDispatcher(client),
		IdleTimeout:  secs(cfg.IdleTimeoutSec),
		PollInterval: secs(cfg.PollIntervalSec),
		ExecTimeout:  secs(cfg.ExecTimeoutSec),
		Retention:    secs(cfg.RetentionSec),
		Logger:       log.With().Str("component", "queue").Logger(),
	})
	defer q.Close()

	svc := workflow.New(workflow.Config{
		Queue:    q,
		Index:    index,
		Loader:   &tabular.Loader{Dir: cfg.DataDir, Source: tableSource},
		Runner:   codeRunner,
		Registry: reg,
		Logger:   log.With().Str("component", "workflow").Logger(),
	})

	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{"GET", "POST", "OPTIONS"},
			[]string{"Accept", "Content-Type", "X-Log-Level"})
	}

	// Warm the backend in the background; requests queue up meanwhile.
	go func() {
		if err := client.Warmup(baseCtx); err != nil {
			log.Warn().Err(err).Msg("generation backend warmup gave up")
		} else {
			log.Info().Msg("generation backend is reachable")
		}
	}()

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("assistd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	case <-ctx.Done():
	}
	cancelBase()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
