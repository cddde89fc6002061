package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/di"
	"github.com/mikey/phishing-detector/internal/ingest"
	"github.com/mikey/phishing-detector/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.DetectionService,
	emailFilter ports.EmailFilter,
	classifier core.Classifier,
) error {
	defer logger.Sync()

	defer func() {
		if closer, ok := classifier.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close classifier", zap.Error(err))
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.EMLFile != "" {
		return scanMessage(ctx, flags.EMLFile, emailFilter, logger)
	}
	return scanBatch(ctx, flags, service, logger)
}

// scanMessage analyzes one RFC 5322 message and prints the report
func scanMessage(ctx context.Context, path string, emailFilter ports.EmailFilter, logger *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open message file: %w", err)
	}
	defer file.Close()

	logger.Info("Reading email from file", zap.String("file", path))

	record, err := ingest.ParseMessage(file)
	if err != nil {
		return err
	}

	_, err = emailFilter.ProcessEmail(ctx, record)
	return err
}

// scanBatch analyzes a JSON array of email records and writes the batch report
func scanBatch(ctx context.Context, flags *di.CLIFlags, service *core.DetectionService, logger *zap.Logger) error {
	var (
		records []core.EmailRecord
		err     error
	)
	if flags.InputFile != "" {
		logger.Info("Loading email records", zap.String("file", flags.InputFile))
		records, err = ingest.LoadFile(flags.InputFile)
	} else {
		logger.Info("Loading email records from stdin")
		records, err = ingest.LoadRecords(os.Stdin)
	}
	if err != nil {
		return err
	}

	report := service.AnalyzeBatch(ctx, records)

	out := io.Writer(os.Stdout)
	if flags.OutputFile != "" {
		file, err := os.Create(flags.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := writeReport(out, report, flags.Pretty); err != nil {
		return err
	}
	if flags.OutputFile != "" {
		logger.Info("Batch report written", zap.String("file", flags.OutputFile))
	}

	printSummary(os.Stderr, report.Summary)
	return nil
}

func writeReport(w io.Writer, report *core.BatchReport, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, summary core.BatchSummary) {
	fmt.Fprintf(w, "\n=== Batch Summary ===\n")
	fmt.Fprintf(w, "Total emails: %d\n", summary.TotalEmails)
	fmt.Fprintf(w, "Analyzed successfully: %d\n", summary.AnalyzedSuccessfully)
	fmt.Fprintf(w, "Failed: %d\n", summary.Failed)
	fmt.Fprintf(w, "Phishing detected: %d (%.2f%%)\n", summary.PhishingDetected, summary.PhishingPercentage)
	fmt.Fprintf(w, "Legitimate: %d\n", summary.Legitimate)
	fmt.Fprintf(w, "\nThreat distribution:\n")
	for _, level := range core.Levels {
		fmt.Fprintf(w, "  %-8s %d\n", level.String()+":", summary.ThreatDistribution[level])
	}
}
