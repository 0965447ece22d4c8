// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs an ordered list of conversion jobs on a single
// worker, reporting per-file status and progress snapshots. Cancellation
// is cooperative: the context is checked between jobs, never mid-file, so
// completed outputs are always retained.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/imgconv/internal/classify"
	"github.com/pdiddy/imgconv/pkg/types"
)

// Converter executes individual jobs and image-to-PDF merge groups.
// engine.Engine is the production implementation.
type Converter interface {
	ConvertFile(job types.ConversionJob) []types.ConversionResult
	MergeGroup(jobs []types.ConversionJob, outputDir string) []types.ConversionResult
	CheckRasterizer(jobs []types.ConversionJob) error
}

// Summary holds the outcome of a batch run.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
	Cancelled int
	Results   []types.ConversionResult
}

// Total returns the total number of results produced.
func (s Summary) Total() int {
	return s.Converted + s.Skipped + s.Failed + s.Cancelled
}

// HasFailures reports whether any file failed conversion.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Add appends results to the summary, updating the counters.
func (s *Summary) Add(results ...types.ConversionResult) {
	for _, r := range results {
		s.Results = append(s.Results, r)
		switch r.Status {
		case types.StatusConverted:
			s.Converted++
		case types.StatusSkipped:
			s.Skipped++
		case types.StatusFailed:
			s.Failed++
		case types.StatusCancelled:
			s.Cancelled++
		}
	}
}

// Run processes jobs sequentially. Jobs whose target is PDF are collapsed
// into one merge group executed as the final unit; everything else runs
// per file in input order. Per-file status lines go to w; progress
// snapshots are sent to progress without blocking (nil disables them).
// skipped carries results recorded before the batch, typically files that
// failed pre-validation; they are logged and counted in the summary.
//
// Run returns an error only for batch-fatal conditions: the output
// directory cannot be created, or PDF sources are present and the
// rasterization tool is missing. Per-file failures land in the Summary.
func Run(ctx context.Context, conv Converter, jobs []types.ConversionJob, skipped []types.ConversionResult, progress chan<- types.ProgressSnapshot, w io.Writer) (Summary, error) {
	var summary Summary
	for _, r := range skipped {
		summary.Add(r)
		logResults(w, filepath.Base(r.SourcePath), []types.ConversionResult{r})
	}
	if len(jobs) == 0 {
		if summary.Total() > 0 {
			printSummary(w, summary)
		}
		return summary, nil
	}

	if err := os.MkdirAll(jobs[0].OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("creating output directory: %w", err)
	}
	if err := conv.CheckRasterizer(jobs); err != nil {
		return summary, err
	}

	var mergeGroup []types.ConversionJob
	completed := 0
	total := len(jobs)
	cancelled := false

	emit := func(current, message string) {
		if progress == nil {
			return
		}
		snap := types.ProgressSnapshot{
			Total:       total,
			Completed:   completed,
			CurrentFile: current,
			Message:     message,
		}
		select {
		case progress <- snap:
		default:
		}
	}

	for _, job := range jobs {
		if !cancelled {
			select {
			case <-ctx.Done():
				cancelled = true
			default:
			}
		}
		name := filepath.Base(job.SourcePath)

		if cancelled {
			summary.Add(types.ConversionResult{
				SourcePath: job.SourcePath,
				Status:     types.StatusCancelled,
			})
			fmt.Fprintf(w, "cancelled: %s\n", name)
			completed++
			continue
		}

		if !classify.CanConvert(job.SourceFormat, job.TargetFormat) {
			reason := fmt.Sprintf("cannot convert %s to %s", job.SourceFormat, job.TargetFormat)
			summary.Add(types.ConversionResult{
				SourcePath: job.SourcePath,
				Status:     types.StatusSkipped,
				Error:      reason,
			})
			fmt.Fprintf(w, "skipped: %s (%s)\n", name, reason)
			completed++
			emit(name, "skipped")
			continue
		}

		// Image-to-PDF jobs merge into one output after the loop.
		if job.TargetFormat == types.FormatPDF {
			mergeGroup = append(mergeGroup, job)
			continue
		}

		emit(name, "converting")
		results := conv.ConvertFile(job)
		summary.Add(results...)
		logResults(w, name, results)
		completed++
		emit(name, "done")
	}

	if len(mergeGroup) > 0 {
		if !cancelled {
			select {
			case <-ctx.Done():
				cancelled = true
			default:
			}
		}
		if cancelled {
			for _, job := range mergeGroup {
				summary.Add(types.ConversionResult{
					SourcePath: job.SourcePath,
					Status:     types.StatusCancelled,
				})
				fmt.Fprintf(w, "cancelled: %s\n", filepath.Base(job.SourcePath))
			}
		} else {
			emit("", "merging")
			results := conv.MergeGroup(mergeGroup, mergeGroup[0].OutputDir)
			summary.Add(results...)
			for i := range results {
				logResults(w, filepath.Base(mergeGroup[i].SourcePath), results[i:i+1])
			}
		}
		completed = total
		emit("", "done")
	}

	printSummary(w, summary)
	return summary, nil
}

func printSummary(w io.Writer, summary Summary) {
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed, %d cancelled (total: %d)\n",
		summary.Converted, summary.Skipped, summary.Failed, summary.Cancelled, summary.Total())
}

func logResults(w io.Writer, name string, results []types.ConversionResult) {
	for _, r := range results {
		switch r.Status {
		case types.StatusConverted:
			fmt.Fprintf(w, "converted: %s -> %s\n", name, filepath.Base(r.OutputPath))
		case types.StatusFailed:
			fmt.Fprintf(w, "failed:  %s (%s)\n", name, r.Error)
		case types.StatusSkipped:
			fmt.Fprintf(w, "skipped: %s (%s)\n", name, r.Error)
		case types.StatusCancelled:
			fmt.Fprintf(w, "cancelled: %s\n", name)
		}
	}
}
