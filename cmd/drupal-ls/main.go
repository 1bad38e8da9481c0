// Package main implements the drupal-ls CLI: a Language Server Protocol
// server for Drupal PHP and YAML conventions (services, routes,
// permissions, hooks, translations), communicating over stdin/stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"drupalls/internal/config"
	"drupalls/internal/document"
	"drupalls/internal/indexer"
	"drupalls/internal/logging"
	"drupalls/internal/lspserver"
	"drupalls/internal/phpsymbols"
	"drupalls/internal/store"
	"drupalls/internal/yamlsymbols"
)

var (
	workspace    string
	configPath   string
	logLevel     string
	watchEnabled bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "drupal-ls",
	Short: "Language Server for Drupal PHP/YAML conventions",
	Long: `drupal-ls understands Drupal's module conventions - services,
routes, permissions, hook implementations, and translation strings -
across .php, .module, .theme, .install, and the *.yml declaration
files that wire them together.

Use the serve subcommand to index a workspace and serve LSP requests
over stdin/stdout.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if lvl, err := zapcore.ParseLevel(logLevel); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Index a workspace and serve LSP requests over stdin/stdout",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	serveCmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "Workspace root directory to index")
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to a drupalls config file (default: <workspace>/.drupalls/config.yml)")
	serveCmd.Flags().BoolVar(&watchEnabled, "watch", true, "Watch the workspace for file changes after the initial scan")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(ws, ".drupalls", "config.yml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.WorkspaceRoot = ws
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logging.Initialize(ws, cfg.ToLoggingConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
	}
	boot := logging.Get(logging.CategoryBoot)
	boot.Info("starting drupal-ls, workspace=%s", ws)

	st := store.New(map[document.FileKind]document.Extractor{
		document.FileKindPHP:  phpsymbols.NewExtractor(),
		document.FileKindYAML: yamlsymbols.NewExtractor(),
	})
	idx := indexer.New(ws, cfg.Scan, st)
	srv := lspserver.New(st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		boot.Info("received shutdown signal, stopping drupal-ls")
		cancel()
	}()

	watcher, err := srv.IndexWorkspace(ctx, idx, watchEnabled && cfg.Watch.Enabled)
	if err != nil {
		boot.Error("workspace scan failed: %v", err)
		return fmt.Errorf("workspace scan failed: %w", err)
	}
	if watcher != nil {
		defer watcher.Close()
	}

	boot.Info("drupal-ls ready, listening on stdin/stdout")
	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil {
		if err == context.Canceled {
			boot.Info("drupal-ls stopped gracefully")
			return nil
		}
		boot.Error("server error: %v", err)
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
