package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leca/finance-conformance/internal/client"
	"github.com/leca/finance-conformance/internal/config"
	"github.com/leca/finance-conformance/internal/runner"
	"github.com/leca/finance-conformance/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("conformance", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the finance backend")
	fs.StringVar(&cfg.APIPrefix, "api-prefix", cfg.APIPrefix, "path prefix of the API")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.BoolVar(&cfg.FailFast, "fail-fast", cfg.FailFast, "stop at the first failing group")
	fs.StringVar(&cfg.ReportDir, "report-dir", cfg.ReportDir, "directory for run reports and transcripts")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	var transcript bytes.Buffer
	out := io.MultiWriter(stdout, &transcript)
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, nil)
	} else {
		handler = slog.NewTextHandler(out, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg, logger)
	report := runner.New(c, cfg, logger).RunAll(ctx)

	if report.Passed {
		fmt.Fprintln(out, "All backend API checks passed.")
	} else {
		fmt.Fprintf(out, "Backend API checks failed:\n%v\n", report.Err())
	}

	if cfg.ReportDir != "" {
		if err := saveArtefacts(storage.NewFileSystem(cfg.ReportDir), report, transcript.Bytes()); err != nil {
			logger.Error("failed to store run artefacts", "error", err)
		} else {
			logger.Info("stored run artefacts", "dir", cfg.ReportDir, "run_id", report.RunID)
		}
	}

	if !report.Passed {
		return 1
	}
	return 0
}

func saveArtefacts(store storage.Storage, report *runner.Report, transcript []byte) error {
	data, err := report.JSON()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := store.Store(report.RunID, "report.json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	if _, err := store.Store(report.RunID, "transcript.log", bytes.NewReader(transcript)); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}
