package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hazyhaar/souk-search/pkg/api"
	"github.com/hazyhaar/souk-search/pkg/catalog"
	"github.com/hazyhaar/souk-search/pkg/dict"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

type config struct {
	Addr          string `yaml:"addr"`
	DBPath        string `yaml:"db_path"`
	LexiconPath   string `yaml:"lexicon_path"`
	DefaultLimit  int    `yaml:"default_limit"`
	CategoryLimit int    `yaml:"category_limit"`
	LogLevel      string `yaml:"log_level"`
	WatchDB       bool   `yaml:"watch_db"`
	WatchDebounce int    `yaml:"watch_debounce_ms"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: souk <command>\n\nCommands:\n"+
		"  serve    Start the HTTP server\n"+
		"  mcp      Serve the MCP tools over stdio\n"+
		"  import   Load a seed file into the catalog database\n")
}

// app is what serve and mcp share: config, logger, lexicon and a loaded
// catalog.
type app struct {
	cfg     config
	logger  *slog.Logger
	store   *catalog.Store
	holder  *catalog.Holder
	backend *api.Backend
}

func setup(cfgPath string) *app {
	boot := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		boot.Error("load config", "error", err)
		os.Exit(1)
	}
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		boot.Info("no config file, using defaults", "path", cfgPath)
	}

	// Logs go to stderr so the MCP stdio transport keeps stdout to itself.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	lex, err := loadLexicon(cfg.LexiconPath)
	if err != nil {
		logger.Error("failed to load lexicon", "error", err)
		os.Exit(1)
	}
	logger.Info("lexicon loaded", "id", lex.Manifest.ID, "concepts", lex.Intents.Len(), "typos", lex.Typos.Len())

	store, err := catalog.OpenStore(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	holder := catalog.NewHolder(store, logger)
	if err := holder.Load(context.Background()); err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		holder:  holder,
		backend: api.NewBackend(lex, holder, api.Limits{Services: cfg.DefaultLimit, Categories: cfg.CategoryLimit}),
	}
}

// watchReload reloads the catalog on every SIGHUP until ctx ends, and on
// database writes when watch_db is set.
func (rt *app) watchReload(ctx context.Context) {
	if rt.cfg.WatchDB {
		go func() {
			debounce := time.Duration(rt.cfg.WatchDebounce) * time.Millisecond
			if err := catalog.Watch(ctx, rt.cfg.DBPath, rt.holder, debounce); err != nil {
				rt.logger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(sighup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sighup:
				rt.logger.Info("SIGHUP received, reloading catalog")
				if err := rt.holder.Reload(ctx); err != nil {
					rt.logger.Error("reload failed", "error", err)
				}
			}
		}
	}()
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	rt := setup(*cfgPath)
	defer rt.store.Close()

	srv := &http.Server{
		Addr:    rt.cfg.Addr,
		Handler: api.NewRouter(rt.backend, rt.logger),
	}

	// SIGHUP: hot reload catalog.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	rt.watchReload(ctx)

	go func() {
		rt.logger.Info("souk listening", "addr", rt.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	rt.logger.Info("shutting down")
	srv.Shutdown(context.Background())
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	rt := setup(*cfgPath)
	defer rt.store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	rt.watchReload(ctx)

	srv := server.NewMCPServer("souk-search", version, server.WithToolCapabilities(true))
	api.RegisterMCPTools(srv, rt.backend, rt.logger)

	rt.logger.Info("serving MCP over stdio")
	if err := server.ServeStdio(srv); err != nil {
		rt.logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func defaultConfig() config {
	return config{
		Addr:          ":8430",
		DBPath:        "catalog.db",
		DefaultLimit:  8,
		CategoryLimit: 3,
		LogLevel:      "info",
		WatchDebounce: 500,
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadLexicon(path string) (*dict.Lexicon, error) {
	if path == "" {
		return dict.DefaultLexicon(), nil
	}
	return dict.LoadLexicon(path)
}
