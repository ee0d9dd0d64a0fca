package converter

import "fmt"

// ErrorKind identifies the pipeline step that failed.
type ErrorKind int

const (
	// KindDecode covers unreadable, unsupported or out-of-bounds images.
	KindDecode ErrorKind = iota + 1
	// KindEncode covers encoder failures.
	KindEncode
	// KindIO covers reading the input and writing the output.
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Result is the outcome of one Compress call. It is implemented only by
// Skipped, Compressed, MinQualityReached, ExhaustedBudget and Failed.
type Result interface {
	// Outcome is a stable label for logs and metrics.
	Outcome() string
	isResult()
}

// Skipped means the input was already under the target and was re-encoded
// once at SkipQuality.
type Skipped struct {
	OriginalSizeMiB float64
	FinalSizeMiB    float64
	Quality         int
}

// Compressed means the search found a quality whose output fits the target.
type Compressed struct {
	OriginalSizeMiB float64
	FinalSizeMiB    float64
	Quality         int
}

// MinQualityReached means the search hit the quality floor. The output was
// written but may still exceed the target.
type MinQualityReached struct {
	OriginalSizeMiB float64
	FinalSizeMiB    float64
	Quality         int
}

// ExhaustedBudget means the search ran out of iterations. Nothing was written.
type ExhaustedBudget struct {
	OriginalSizeMiB float64
}

// Failed carries the step that failed and its error.
type Failed struct {
	Kind ErrorKind
	Err  error
}

// Description is a human readable summary of the failure.
func (f Failed) Description() string {
	return fmt.Sprintf("%s failed: %v", f.Kind, f.Err)
}

func (f Failed) Error() string { return f.Description() }

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (f Failed) Unwrap() error { return f.Err }

func (Skipped) Outcome() string           { return "skipped" }
func (Compressed) Outcome() string        { return "compressed" }
func (MinQualityReached) Outcome() string { return "min_quality" }
func (ExhaustedBudget) Outcome() string   { return "exhausted" }
func (Failed) Outcome() string            { return "failed" }

func (Skipped) isResult()           {}
func (Compressed) isResult()        {}
func (MinQualityReached) isResult() {}
func (ExhaustedBudget) isResult()   {}
func (Failed) isResult()            {}

func fail(kind ErrorKind, err error) Failed {
	return Failed{Kind: kind, Err: err}
}
