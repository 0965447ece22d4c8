// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgconv/internal/batch"
	"github.com/pdiddy/imgconv/internal/classify"
	"github.com/pdiddy/imgconv/internal/engine"
	"github.com/pdiddy/imgconv/internal/history"
	"github.com/pdiddy/imgconv/internal/poppler"
	"github.com/pdiddy/imgconv/pkg/types"
)

const defaultHistoryDir = ".imgconv"

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert files to a target format",
	Long: `Convert runs a batch over the given files. PDF sources split into one
image per page at the requested DPI; image sources with a PDF target merge
into a single timestamped PDF in input order; JPG and TIFF re-encode
one-to-one. Unsupported files are skipped with a reason, and a failure on
one file never aborts the rest of the batch.

DPI outside the 300-600 range is silently corrected to the nearest
boundary. Interrupting the run finishes the file in flight, keeps what was
already converted, and reports the remainder as cancelled.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format: pdf, jpg, or tiff (required)")
	convertCmd.Flags().Int("dpi", engine.DefaultDPI, "rasterization DPI for PDF sources (clamped to 300-600)")
	convertCmd.Flags().String("output-dir", "outputs", "directory for converted files")
	convertCmd.Flags().String("report", "", "write a YAML batch report to this path")
	convertCmd.Flags().String("history-dir", defaultHistoryDir, "directory for the batch history database")
	convertCmd.Flags().Bool("no-history", false, "do not record this batch in history")
	convertCmd.Flags().Bool("no-progress", false, "disable the terminal progress bar")
	convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more files to convert")
	}

	to, _ := cmd.Flags().GetString("to")
	target := types.Format(strings.ToLower(to))
	switch target {
	case types.FormatPDF, types.FormatJPG, types.FormatTIFF:
	default:
		return fmt.Errorf("unsupported target format %q (use pdf, jpg, or tiff)", to)
	}

	dpi, _ := cmd.Flags().GetInt("dpi")
	outputDir := stringSetting(cmd, "output-dir", "convert.output_dir")
	historyDir := stringSetting(cmd, "history-dir", "history.dir")
	reportPath, _ := cmd.Flags().GetString("report")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg := types.ConvertConfig{
		OutputDir:     outputDir,
		DPI:           dpi,
		JPEGQuality:   viper.GetInt("convert.jpeg_quality"),
		MaxFileSizeMB: viper.GetInt("convert.max_file_size_mb"),
	}

	// Validate up front so unsupported files surface as skips, not batch
	// failures.
	var jobs []types.ConversionJob
	var preSkipped []types.ConversionResult
	for _, path := range args {
		format, err := classify.Validate(path, cfg.MaxFileSizeMB)
		if err != nil {
			preSkipped = append(preSkipped, types.ConversionResult{
				SourcePath: path,
				Status:     types.StatusSkipped,
				Error:      err.Error(),
			})
			continue
		}
		jobs = append(jobs, types.ConversionJob{
			SourcePath:   path,
			SourceFormat: format,
			TargetFormat: target,
			DPI:          dpi,
			OutputDir:    outputDir,
		})
	}

	rasterizer, _ := poppler.Detect()
	eng := engine.New(rasterizer, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress, finished := startProgress(len(jobs), noProgress)

	started := time.Now()
	summary, err := batch.Run(ctx, eng, jobs, preSkipped, progress, os.Stdout)
	if progress != nil {
		close(progress)
		<-finished
	}
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := batch.WriteReport(reportPath, target, dpi, outputDir, summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if !noHistory {
		// A fresh context so a cancelled batch still gets recorded.
		recordHistory(context.Background(), historyDir, target, dpi, outputDir, started, summary)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", summary.Failed)
	}
	return nil
}

// startProgress launches a progress bar consumer fed by batch snapshots.
// It returns a nil channel when the bar is disabled.
func startProgress(total int, disabled bool) (chan types.ProgressSnapshot, chan struct{}) {
	if disabled || total == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	progress := make(chan types.ProgressSnapshot, total*2)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for snap := range progress {
			bar.Set(snap.Completed)
			if snap.CurrentFile != "" {
				bar.Describe(snap.CurrentFile)
			}
		}
		bar.Finish()
	}()
	return progress, finished
}

func recordHistory(ctx context.Context, dir string, target types.Format, dpi int, outputDir string, started time.Time, summary batch.Summary) {
	store, err := history.NewStore(types.HistoryConfig{Dir: dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	rec := history.BatchRecord{
		StartedAt:    started,
		FinishedAt:   time.Now(),
		TargetFormat: target,
		DPI:          dpi,
		OutputDir:    outputDir,
		Converted:    summary.Converted,
		Skipped:      summary.Skipped,
		Failed:       summary.Failed,
		Cancelled:    summary.Cancelled,
	}
	if _, err := store.Record(ctx, rec, summary.Results); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording batch history: %v\n", err)
	}
}

// stringSetting resolves a flag against the config file: an explicitly set
// flag wins, then the config key, then the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	value, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	return value
}
