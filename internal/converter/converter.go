// Package converter runs the single-image compression pipeline: read,
// decode, normalize, encode (once or via quality search) and persist.
package converter

import (
	"os"
	"path/filepath"
	"time"

	"github.com/harliandi/imgshrink/pkg/jpeg"
	"github.com/harliandi/imgshrink/pkg/metrics"
	"github.com/harliandi/imgshrink/pkg/normalize"
	"github.com/harliandi/imgshrink/pkg/quality"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SkipQuality is used for inputs already under the target size.
const SkipQuality = 95

// Compressor shrinks one image file below the target size.
type Compressor struct {
	encoder   quality.Encoder
	params    quality.Params
	logger    zerolog.Logger
	onAttempt func(quality.Attempt)
}

// Option configures a Compressor.
type Option func(*Compressor)

// WithEncoder replaces the JPEG encoder.
func WithEncoder(enc quality.Encoder) Option {
	return func(c *Compressor) { c.encoder = enc }
}

// WithParams replaces the quality search bounds.
func WithParams(p quality.Params) Option {
	return func(c *Compressor) { c.params = p }
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Compressor) { c.logger = l }
}

// WithObserver registers a callback invoked after every encode.
func WithObserver(fn func(quality.Attempt)) Option {
	return func(c *Compressor) { c.onAttempt = fn }
}

// New creates a Compressor using the JPEG encoder and default search bounds.
func New(opts ...Option) *Compressor {
	c := &Compressor{
		encoder: jpeg.Encoder{},
		params:  quality.DefaultParams(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// runStats collects what metrics need from one run.
type runStats struct {
	path        string
	inputBytes  int
	outputBytes int
	attempts    int
	quality     int
}

// Compress shrinks the image at inputPath and writes a JPEG to outputPath,
// replacing whatever is there. It never returns an error: every failure is
// reported as a Failed result.
func (c *Compressor) Compress(inputPath, outputPath string) Result {
	start := time.Now()
	var st runStats

	res := c.compress(inputPath, outputPath, &st)

	c.record(res, &st, time.Since(start))
	return res
}

func (c *Compressor) compress(inputPath, outputPath string, st *runStats) Result {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fail(KindIO, errors.Wrap(err, "read input"))
	}
	st.inputBytes = len(data)
	originalMiB := quality.SizeMiB(len(data))

	raw, err := Decode(data)
	if err != nil {
		return fail(KindDecode, err)
	}

	logger := c.logger.With().
		Str("input", filepath.Base(inputPath)).
		Str("format", raw.Format).
		Str("mode", raw.Mode.String()).
		Bool("alpha", raw.Mode.HasAlpha()).
		Float64("original_mib", originalMiB).
		Logger()

	if cameraMake, cameraModel := CameraInfo(data); cameraMake != "" || cameraModel != "" {
		logger.Debug().Str("make", cameraMake).Str("model", cameraModel).Msg("Camera metadata")
	}
	logger.Debug().Int("width", raw.Width()).Int("height", raw.Height()).Msg("Image decoded")

	img := normalize.Normalize(raw.Image, raw.Mode)

	if originalMiB < c.params.TargetSizeMiB {
		return c.reencode(img, outputPath, originalMiB, st, logger)
	}
	return c.search(img, outputPath, originalMiB, st, logger)
}

// reencode writes img once at SkipQuality so the output format is uniform.
func (c *Compressor) reencode(img *normalize.RGB, outputPath string, originalMiB float64, st *runStats, logger zerolog.Logger) Result {
	st.path = "skip"

	buf, err := c.encoder.Encode(img, SkipQuality)
	if err != nil {
		return fail(KindEncode, errors.Wrapf(err, "encode at quality %d", SkipQuality))
	}
	st.attempts = 1
	c.observe(logger, quality.Attempt{Number: 1, Quality: SkipQuality, SizeMiB: quality.SizeMiB(len(buf))})

	if err := writeFile(outputPath, buf); err != nil {
		return fail(KindIO, err)
	}
	st.outputBytes, st.quality = len(buf), SkipQuality

	return Skipped{
		OriginalSizeMiB: originalMiB,
		FinalSizeMiB:    quality.SizeMiB(len(buf)),
		Quality:         SkipQuality,
	}
}

func (c *Compressor) search(img *normalize.RGB, outputPath string, originalMiB float64, st *runStats, logger zerolog.Logger) Result {
	st.path = "search"

	s := &quality.Searcher{
		Encoder:   c.encoder,
		Params:    c.params,
		OnAttempt: func(a quality.Attempt) { c.observe(logger, a) },
	}
	outcome, err := s.Search(img)
	st.attempts = outcome.Attempts
	if err != nil {
		return fail(KindEncode, err)
	}
	if outcome.Reason == quality.BudgetExhausted {
		return ExhaustedBudget{OriginalSizeMiB: originalMiB}
	}

	cand := outcome.Candidate
	if err := writeFile(outputPath, cand.Data); err != nil {
		return fail(KindIO, err)
	}
	st.outputBytes, st.quality = len(cand.Data), cand.Quality

	if outcome.Reason == quality.ReachedMinQuality {
		return MinQualityReached{
			OriginalSizeMiB: originalMiB,
			FinalSizeMiB:    cand.SizeMiB(),
			Quality:         cand.Quality,
		}
	}
	return Compressed{
		OriginalSizeMiB: originalMiB,
		FinalSizeMiB:    cand.SizeMiB(),
		Quality:         cand.Quality,
	}
}

func (c *Compressor) observe(logger zerolog.Logger, a quality.Attempt) {
	logger.Debug().
		Int("attempt", a.Number).
		Int("quality", a.Quality).
		Float64("size_mib", a.SizeMiB).
		Msg("Encoded candidate")
	if c.onAttempt != nil {
		c.onAttempt(a)
	}
}

func (c *Compressor) record(res Result, st *runStats, elapsed time.Duration) {
	if f, ok := res.(Failed); ok {
		metrics.RecordFailure(f.Kind.String())
		c.logger.Error().Err(f.Err).Str("kind", f.Kind.String()).Dur("elapsed", elapsed).Msg("Compression failed")
		return
	}

	metrics.RecordCompression(res.Outcome(), st.path, elapsed.Seconds(), st.inputBytes, st.outputBytes, st.attempts, st.quality)
	c.logger.Info().
		Str("outcome", res.Outcome()).
		Int("attempts", st.attempts).
		Int("quality", st.quality).
		Int("input_bytes", st.inputBytes).
		Int("output_bytes", st.outputBytes).
		Dur("elapsed", elapsed).
		Msg("Compression finished")
}

// writeFile replaces path with data via a temporary file in the same
// directory, so a failed write never leaves a truncated output behind.
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write output")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod output")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replace output")
	}
	return nil
}
