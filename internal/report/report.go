// Package report turns compression results into operator-facing text and
// process exit codes.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harliandi/imgshrink/internal/converter"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitNoInput = 1
	ExitFailed  = 2
)

// Status labels printed in the footer.
const (
	StatusSkipped = "SKIPPED"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

const ruleWidth = 60

var rule = strings.Repeat("=", ruleWidth)

// ExitCode maps a result to the process exit code. ExhaustedBudget counts as
// a failure because nothing was written.
func ExitCode(res converter.Result) int {
	switch res.(type) {
	case converter.Skipped, converter.Compressed, converter.MinQualityReached:
		return ExitOK
	}
	return ExitFailed
}

// Status returns the footer label for res.
func Status(res converter.Result) string {
	switch res.(type) {
	case converter.Skipped:
		return StatusSkipped
	case converter.Compressed, converter.MinQualityReached:
		return StatusSuccess
	}
	return StatusFailed
}

// Message is the one-line summary of res.
func Message(res converter.Result) string {
	switch r := res.(type) {
	case converter.Skipped:
		return "File is already below 1 MB - compression skipped."
	case converter.Compressed:
		return fmt.Sprintf("Compressed: %.2f MB -> %.2f MB (%.1f%% reduction)",
			r.OriginalSizeMiB, r.FinalSizeMiB, reduction(r.OriginalSizeMiB, r.FinalSizeMiB))
	case converter.MinQualityReached:
		return fmt.Sprintf("Reduced to minimum quality: %.2f MB -> %.2f MB (%.1f%% reduction)",
			r.OriginalSizeMiB, r.FinalSizeMiB, reduction(r.OriginalSizeMiB, r.FinalSizeMiB))
	case converter.ExhaustedBudget:
		return "Image could not be compressed (maximum iterations reached)"
	case converter.Failed:
		return "Error: " + r.Description()
	}
	return fmt.Sprintf("Unknown result %T", res)
}

func reduction(original, final float64) float64 {
	if original <= 0 {
		return 0
	}
	return (original - final) / original * 100
}

// Banner prints the program header.
func Banner(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "IMAGE COMPRESSOR")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// Found prints the located input and its size.
func Found(w io.Writer, path string, sizeMiB float64) {
	fmt.Fprintf(w, "Input file found: %s\n", path)
	fmt.Fprintf(w, "Original size: %.2f MB\n", sizeMiB)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Processing...")
	fmt.Fprintln(w)
}

// NoInput explains which files the operator should provide.
func NoInput(w io.Writer) {
	fmt.Fprintln(w, "Error: input file not found.")
	fmt.Fprintln(w, "Please place 'input.jpg' or 'input.png' in the program folder.")
	fmt.Fprintln(w)
}

// Outcome prints the result body and status footer.
func Outcome(w io.Writer, res converter.Result, outputPath string) {
	fmt.Fprintln(w, Message(res))
	switch r := res.(type) {
	case converter.Compressed:
		fmt.Fprintf(w, "Quality setting: %d\n", r.Quality)
	case converter.MinQualityReached:
		fmt.Fprintf(w, "Quality setting: %d\n", r.Quality)
	}
	if ExitCode(res) == ExitOK {
		fmt.Fprintf(w, "Output saved: %s\n", outputPath)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "STATUS: %s\n", Status(res))
	fmt.Fprintln(w, rule)
}
