package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"panorama-rule-finder/internal/api"
	"panorama-rule-finder/internal/config"
	"panorama-rule-finder/internal/engine"
	"panorama-rule-finder/internal/model"
	"panorama-rule-finder/internal/parser"
)

var (
	configFile string
	dbDSN      string
	provider   string
	address    string
	matchMode  string
	outFile    string
	logLevel   string
	logFile    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "panorama-rule-finder",
		Short: "Find firewall rules referencing an IPv4 address",
		Long: `panorama-rule-finder resolves address objects and groups across the shared
	tier and every device-group of a Panorama policy document and reports each
	security rule whose source or destination references the searched address.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(setupLogger(logLevel, logFile))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newFindCmd() *cobra.Command {
	findCmd := &cobra.Command{
		Use:   "find",
		Short: "Scan a policy document once and write matches as CSV",
		RunE:  runFind,
	}

	findCmd.Flags().StringVar(&provider, "provider", "panorama", "Document provider: 'panorama' or 'mysql'")
	findCmd.Flags().StringVar(&configFile, "config", "", "Panorama XML export (for 'panorama' provider)")
	findCmd.Flags().StringVar(&dbDSN, "db", "", "Database connection string (for 'mysql' provider)")
	findCmd.Flags().StringVarP(&address, "address", "a", "", "Target IPv4 address or CIDR (required)")
	findCmd.Flags().StringVar(&matchMode, "mode", "overlap", "Matching mode: 'overlap', 'contained', or 'exact'")
	findCmd.Flags().StringVar(&outFile, "out", "", "Output CSV file (default: stdout)")

	findCmd.MarkFlagRequired("address")
	return findCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API (configured via environment)",
		RunE:  runServe,
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runFind(cmd *cobra.Command, args []string) error {
	slog.Info("Loading policy document", "provider", provider)
	startTime := time.Now()

	doc, err := loadDocument(provider, configFile, dbDSN)
	if err != nil {
		slog.Error("Failed to load policy document", "error", err)
		return err
	}
	slog.Info("Policy document loaded", "device_groups", len(doc.DeviceGroups))

	mode := engine.ParseMode(matchMode)
	records, err := engine.FindMatches(doc, address, mode)
	if err != nil {
		slog.Error("Scan failed", "error", err)
		return err
	}
	slog.Info("Scan complete",
		"target", address,
		"mode", mode,
		"matches", len(records),
		"duration", time.Since(startTime))

	out := os.Stdout
	if outFile != "" && outFile != "-" {
		f, err := os.Create(outFile)
		if err != nil {
			slog.Error("Failed to create output file", "path", outFile, "error", err)
			return err
		}
		defer f.Close()
		out = f
	}
	return writeRecords(out, records)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return err
	}

	var source api.SnapshotSource
	var cache *parser.SnapshotCache
	switch cfg.Policy.Provider {
	case "panorama":
		cache = parser.NewSnapshotCache(cfg.Policy.ConfigPath)
		source = cache
	case "mysql":
		dbProvider, err := parser.NewDBProvider(cfg.Database.DSN)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			return err
		}
		defer dbProvider.Close()
		source = parser.NewDBSource(dbProvider)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(source, cache, cfg.Policy.UploadDir),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Starting search API", "addr", cfg.Server.Addr(), "provider", cfg.Policy.Provider)
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		return err
	case sig := <-quit:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func loadDocument(provider, configPath, dbConnStr string) (*model.Document, error) {
	switch provider {
	case "panorama":
		if configPath == "" {
			return nil, fmt.Errorf("config file path must be provided for panorama provider")
		}
		return parser.LoadPanoramaFile(configPath)
	case "mysql":
		if dbConnStr == "" {
			return nil, fmt.Errorf("database connection string must be provided for mysql provider")
		}
		p, err := parser.NewDBProvider(dbConnStr)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.Load()
	default:
		return nil, fmt.Errorf("unknown document provider: %s", provider)
	}
}

func writeRecords(w io.Writer, records []model.MatchRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"scope", "rulebase", "rule", "side", "member", "resolved", "basis"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		record := []string{
			string(r.Scope),
			string(r.Rulebase),
			r.Rule,
			string(r.Side),
			r.Member,
			r.Resolved,
			string(r.Basis),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger isn't set up yet, so a failure here just falls back
		// to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}
