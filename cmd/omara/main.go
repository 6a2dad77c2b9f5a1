package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/omara/internal/api"
	"github.com/erazemk/omara/internal/classify"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/db"
	"github.com/erazemk/omara/internal/staging"
	"github.com/erazemk/omara/internal/store"
	"github.com/erazemk/omara/internal/stylist"
	"github.com/erazemk/omara/internal/wardrobe"
	"github.com/erazemk/omara/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("omara", flag.ContinueOnError)
	for _, name := range []string{"db", "d"} {
		fs.StringVar(&cfg.DBPath, name, cfg.DBPath, "")
	}
	for _, name := range []string{"addr", "a"} {
		fs.StringVar(&cfg.Addr, name, cfg.Addr, "")
	}
	for _, name := range []string{"user", "u"} {
		fs.StringVar(&cfg.Owner, name, cfg.Owner, "")
	}
	for _, name := range []string{"log", "l"} {
		fs.StringVar(&cfg.LogPath, name, cfg.LogPath, "")
	}
	for _, name := range []string{"wardrobe", "w"} {
		fs.StringVar(&cfg.Wardrobe, name, cfg.Wardrobe, "")
	}
	for _, name := range []string{"images", "i"} {
		fs.StringVar(&cfg.ImageDir, name, cfg.ImageDir, "")
	}

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: omara [flags]

Flags:
  -d, -db <path>          SQLite database for the account (default: omara.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        owner username on first run (default: Owner)
  -l, -log <path>         log file path (default: stdout/stderr only)
  -w, -wardrobe <path>    wardrobe JSON document (default: wardrobe.json)
  -i, -images <dir>       directory for item photos (default: wardrobe_images)
  -h, -help               show this help and exit

Model, background removal and weather settings are read from the
environment (OMARA_LLM_PROVIDER, GOOGLE_API_KEY, OPENAI_API_KEY,
REMOVEBG_API_KEY, OMARA_WEATHER_URL, ...).
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return err
	}

	password, err := ensureOwner(ctx, database, cfg.Owner)
	if err != nil {
		return err
	}
	if password != "" {
		printOwner(cfg.Owner, password)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	wardrobeStore := wardrobe.New(cfg.Wardrobe, cfg.ImageDir)
	uploads := staging.New(cfg.UploadDir)
	slog.Info("wardrobe ready", "document", cfg.Wardrobe, "items", len(wardrobeStore.Load()), "provider", cfg.LLMProvider)

	router := api.NewRouter(api.Deps{
		DB:         database,
		JWTSecret:  jwtSecret,
		Wardrobe:   wardrobeStore,
		Uploads:    uploads,
		Classifier: classify.New(gen),
		Stylist:    stylist.New(gen),
		Remover:    newRemover(cfg),
		Weather:    weather.NewClient(cfg.WeatherURL, cfg.HTTPTimeout),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Classification and feedback wait on the model.
		WriteTimeout: cfg.HTTPTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweep(gctx, uploads, database, cfg.UploadTTL, max(cfg.UploadTTL/2, time.Minute))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
