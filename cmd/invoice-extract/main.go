package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/detect"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/ingest"
	"github.com/docufield/invoice-extract/internal/llm"
	"github.com/docufield/invoice-extract/internal/llm/openai"
	"github.com/docufield/invoice-extract/internal/validate"
)

func main() {
	var (
		file       = flag.String("file", "", "input file to extract (json, md or txt)")
		detectorID = flag.String("detector", "", "force a specific detector id")
		fallback   = flag.Bool("fallback", false, "try detectors in descending confidence until one succeeds")
		noValidate = flag.Bool("no-validate", false, "skip the validation pass")
		list       = flag.Bool("list-detectors", false, "print registered detectors and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

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
	}

	validator := validate.NewValidator(cfg.Validator, logger)
	registry := detect.NewDefaultRegistry(cfg.Parser, validator, extractor, logger)

	if *list {
		printJSON(registry.ListDetectors())
		return
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		flag.Usage()
		os.Exit(1)
	}

	raw, err := ingest.LoadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if constants.MapExtToFormat(raw.Extension) == "" {
		fmt.Fprintf(os.Stderr, "Error: unsupported file type %q, supported formats: %s\n",
			raw.Extension, strings.Join(constants.SourceFormats, ", "))
		os.Exit(1)
	}

	ctx := context.Background()
	files := []entity.RawFile{raw}

	var res *detect.ParseResult
	if *fallback {
		res, err = registry.ParseWithFallback(ctx, files, !*noValidate)
	} else {
		res, err = registry.Parse(ctx, files, detect.ParseOptions{
			ForcedID: *detectorID,
			Validate: !*noValidate,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printJSON(res)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode output: %v\n", err)
		os.Exit(1)
	}
}
