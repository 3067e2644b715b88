// Command fusionhub runs the fusion pipeline over a directory of record
// files: fundamental facts and market ticks are ingested batch by batch,
// the pipeline materializes both tracks, and the audit score plus table
// shapes are reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fusionhub/internal/config"
	"fusionhub/internal/domain"
	"fusionhub/internal/hub"
	"fusionhub/internal/infrastructure"
	"fusionhub/internal/loader"
)

const version = "1.0.0"

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	fundamentalDir := flag.String("fundamental", "", "directory of fundamental fact files (.csv/.xlsx)")
	marketDir := flag.String("market", "", "directory of market tick files (.csv/.xlsx)")
	tier := flag.String("tier", "tier2", "source tier for ingested batches (tier1|tier2|tier3)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging)
	ctx := context.Background()

	opts := []hub.Option{hub.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		telemetry, err := infrastructure.NewTelemetry(version)
		if err != nil {
			logger.Error("failed to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer telemetry.Shutdown(ctx)
		opts = append(opts, hub.WithMeter(telemetry.Meter))

		go func() {
			addr := ":" + cfg.Metrics.Port
			logger.Info("serving prometheus metrics", "addr", addr)
			if err := http.ListenAndServe(addr, telemetry.PrometheusHTTP); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	h, err := hub.New(hub.Config{
		CheckpointDir:      cfg.Pipeline.CheckpointDir,
		TxLogPath:          cfg.Pipeline.TxLogPath,
		DollarBarThreshold: cfg.Pipeline.DollarBarThreshold,
		FeatureWindow:      cfg.Pipeline.FeatureWindow,
		IdentityTolerance:  cfg.Pipeline.IdentityTolerance,
		SmoothingAlpha:     cfg.Pipeline.SmoothingAlpha,
	}, opts...)
	if err != nil {
		logger.Error("failed to create hub", "error", err)
		os.Exit(1)
	}

	sourceTier := domain.Tier(*tier)
	if err := ingestDir(ctx, h, *fundamentalDir, domain.Fundamental, sourceTier, logger); err != nil {
		logger.Error("fundamental ingestion failed", "error", err)
		os.Exit(1)
	}
	if err := ingestDir(ctx, h, *marketDir, domain.Market, sourceTier, logger); err != nil {
		logger.Error("market ingestion failed", "error", err)
		os.Exit(1)
	}

	if err := h.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("audit score: %.2f\n", h.AuditScore())
	for _, dom := range []domain.Domain{domain.Fundamental, domain.Market} {
		frame, err := h.Frame(dom)
		if err != nil {
			continue
		}
		fmt.Printf("%s: %d rows x %d columns\n", dom, frame.NumRows(), frame.NumCols())
	}
}

// ingestDir loads every record file under dir as one batch. A missing or
// empty directory is not an error; the corresponding track simply stays
// empty.
func ingestDir(ctx context.Context, h *hub.Hub, dir string, dom domain.Domain, tier domain.Tier, logger *slog.Logger) error {
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("input directory does not exist, skipping", "dir", dir, "domain", string(dom))
			return nil
		}
		return fmt.Errorf("read input dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var rows []map[string]any
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv":
			rows, err = loader.LoadCSV(path)
		case ".xlsx":
			rows, err = loader.LoadXLSX(path)
		default:
			continue
		}
		if err != nil {
			logger.Warn("skipping unreadable file", "file", path, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		if err := h.Ingest(ctx, hub.RowBatch(rows), dom, tier); err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		logger.Info("batch ingested", "file", path, "domain", string(dom), "rows", len(rows))
	}
	return nil
}
