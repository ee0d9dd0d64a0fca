package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harliandi/imgshrink/internal/config"
	"github.com/harliandi/imgshrink/internal/converter"
	"github.com/harliandi/imgshrink/internal/discovery"
	"github.com/harliandi/imgshrink/internal/logging"
	"github.com/harliandi/imgshrink/internal/report"
	"github.com/harliandi/imgshrink/pkg/jpeg"
	"github.com/harliandi/imgshrink/pkg/metrics"
	"github.com/harliandi/imgshrink/pkg/quality"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func main() {
	code := report.ExitOK
	cmd := newRootCmd(config.Load(), os.Stdout, os.Stderr, &code)
	if err := cmd.Execute(); err != nil {
		os.Exit(report.ExitFailed)
	}
	os.Exit(code)
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "imgshrink",
		Short:        "Shrink an image to a JPEG under 1 MiB",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			*code = run(cfg, stdout, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&cfg.Dir, "dir", "d", cfg.Dir, "directory searched for input.<ext>")
	f.StringVarP(&cfg.Input, "input", "i", cfg.Input, "explicit input file; skips discovery")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output path (default <dir>/"+config.DefaultOutputName+")")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this file after the run")
	f.BoolVar(&cfg.NoProgress, "no-progress", cfg.NoProgress, "disable the encode progress bar")
	return cmd
}

// run performs one compression and returns the process exit code.
func run(cfg *config.Config, stdout, stderr io.Writer) int {
	runID := logging.Init(cfg.LogLevel, stderr)
	log.Debug().Str("backend", jpeg.Backend).Bool("optimized_huffman", jpeg.OptimizedHuffman).Msg("Encoder selected")

	report.Banner(stdout)

	inputPath := cfg.Input
	if inputPath == "" {
		found, err := discovery.FindInput(cfg.Dir)
		if err != nil {
			if errors.Is(err, discovery.ErrNoInput) {
				report.NoInput(stdout)
				return report.ExitNoInput
			}
			log.Error().Err(err).Msg("Input discovery failed")
			return report.ExitFailed
		}
		inputPath = found
	}

	info, err := os.Stat(inputPath)
	switch {
	case os.IsNotExist(err), err == nil && info.IsDir():
		report.NoInput(stdout)
		return report.ExitNoInput
	case err != nil:
		log.Error().Err(err).Str("input", inputPath).Msg("Cannot read input size")
		return report.ExitFailed
	}

	outputPath := cfg.Output
	if outputPath == "" {
		outputPath = filepath.Join(cfg.Dir, config.DefaultOutputName)
	}

	report.Found(stdout, filepath.Base(inputPath), quality.SizeMiB(int(info.Size())))

	opts := []converter.Option{converter.WithLogger(log.Logger)}
	var bar *progressbar.ProgressBar
	if !cfg.NoProgress {
		bar = newProgressBar(stderr)
		opts = append(opts, converter.WithObserver(func(a quality.Attempt) {
			bar.Describe(fmt.Sprintf("quality %d: %.2f MB", a.Quality, a.SizeMiB))
			_ = bar.Add(1)
		}))
	}

	res := converter.New(opts...).Compress(inputPath, outputPath)

	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}

	report.Outcome(stdout, res, outputPath)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("Failed to write metrics")
		}
	}

	code := report.ExitCode(res)
	log.Info().Str("run_id", runID).Str("outcome", res.Outcome()).Int("exit_code", code).Msg("Done")
	return code
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(quality.MaxIterations,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("encoding"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
	)
}
