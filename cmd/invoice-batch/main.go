package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/docufield/invoice-extract/internal/async"
	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/detect"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/export"
	"github.com/docufield/invoice-extract/internal/ingest"
	"github.com/docufield/invoice-extract/internal/llm"
	"github.com/docufield/invoice-extract/internal/llm/openai"
	"github.com/docufield/invoice-extract/internal/validate"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory of OCR output files to process (required)")
		out        = flag.String("out", "", "output XLSX path (defaults to <dir>/../invoices.xlsx)")
		exts       = flag.String("ext", "", "comma-separated extensions to include (default json,md,txt)")
		detectorID = flag.String("detector", "", "force a specific detector id")
		fallback   = flag.Bool("fallback", false, "try detectors in descending confidence until one succeeds")
		noValidate = flag.Bool("no-validate", false, "skip the validation pass")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; real env vars win either way
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var extractor llm.FieldExtractor
	if cfg.LLM.Enabled() {
		extractor = openai.NewClient(openai.Config{
			APIKey:          cfg.LLM.APIKey,
			BaseURL:         cfg.LLM.BaseURL,
			Model:           cfg.LLM.Model,
			Temperature:     cfg.LLM.Temperature,
			Timeout:         cfg.LLM.Timeout,
			LenientOptional: true,
		}, logger)
		logger.Info("llm extractor enabled", "model", cfg.LLM.Model)
	} else {
		logger.Warn("LLM API key not configured, llm fallback detector disabled")
	}

	validator := validate.NewValidator(cfg.Validator, logger)
	registry := detect.NewDefaultRegistry(cfg.Parser, validator, extractor, logger)

	var include []string
	if *exts != "" {
		include = strings.Split(*exts, ",")
	}
	files, stats, err := ingest.LoadDirectory(*dir, include)
	if err != nil {
		logger.Error("failed to load directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("directory loaded",
		"dir", *dir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"loaded", stats.Loaded,
		"failed", stats.Failed)
	if len(files) == 0 {
		printError("Error: no supported files found under %s\n", *dir)
		os.Exit(1)
	}

	ctx := context.Background()
	queue := async.NewExtractQueue(func(ctx context.Context, f entity.RawFile) (*detect.ParseResult, error) {
		set := []entity.RawFile{f}
		if *fallback {
			return registry.ParseWithFallback(ctx, set, !*noValidate)
		}
		return registry.Parse(ctx, set, detect.ParseOptions{
			ForcedID: *detectorID,
			Validate: !*noValidate,
		})
	}, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithProcessTimeout(cfg.Batch.Timeout),
	)

	for _, f := range files {
		_ = queue.Enqueue(ctx, async.Job{File: f})
	}
	// Drain without a whole-batch deadline: every job already runs under the
	// per-job process timeout, so the wait is bounded by jobs x timeout and a
	// large batch is never cut off mid-drain.
	queue.Shutdown(ctx)

	var invoices []entity.Invoice
	failures := 0
	invalid := 0
	for _, r := range queue.Results() {
		if r.Err != nil {
			failures++
			continue
		}
		for i, vr := range r.Parsed.Validation {
			if !vr.Valid {
				invalid++
				logger.Warn("invoice has validation errors",
					"file", r.File, "invoice", i, "errors", vr.Errors)
			}
		}
		invoices = append(invoices, r.Parsed.Invoices...)
	}

	xlsxBytes, err := export.InvoicesXLSX(invoices, logger)
	if err != nil {
		logger.Error("failed to build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch extraction complete",
		"files", len(files),
		"invoices", len(invoices),
		"failures", failures,
		"invalid", invalid,
		"output", *out)
}
