// Package quality searches for a JPEG quality setting whose output fits
// under a size target.
package quality

import (
	"image"

	"github.com/pkg/errors"
)

const (
	TargetSizeMiB = 1.0
	StartQuality  = 85
	MinQuality    = 20
	QualityStep   = 5
	MaxIterations = 20
)

// Encoder produces encoded bytes for an image at a given quality.
type Encoder interface {
	Encode(img image.Image, quality int) ([]byte, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(img image.Image, quality int) ([]byte, error)

func (f EncoderFunc) Encode(img image.Image, quality int) ([]byte, error) {
	return f(img, quality)
}

// Reason tells why a search stopped.
type Reason int

const (
	ReachedTarget Reason = iota
	ReachedMinQuality
	BudgetExhausted
)

func (r Reason) String() string {
	switch r {
	case ReachedTarget:
		return "reached_target"
	case ReachedMinQuality:
		return "reached_min_quality"
	case BudgetExhausted:
		return "budget_exhausted"
	}
	return "unknown"
}

// Params bounds the search.
type Params struct {
	TargetSizeMiB float64
	StartQuality  int
	MinQuality    int
	QualityStep   int
	MaxIterations int
}

// DefaultParams returns the fixed production settings.
func DefaultParams() Params {
	return Params{
		TargetSizeMiB: TargetSizeMiB,
		StartQuality:  StartQuality,
		MinQuality:    MinQuality,
		QualityStep:   QualityStep,
		MaxIterations: MaxIterations,
	}
}

// Candidate is one encoded output and the quality that produced it.
type Candidate struct {
	Data    []byte
	Quality int
}

// SizeMiB is the measured size of the encoded bytes.
func (c *Candidate) SizeMiB() float64 {
	return SizeMiB(len(c.Data))
}

// Attempt describes a single encode performed during a search.
type Attempt struct {
	Number  int
	Quality int
	SizeMiB float64
}

// Outcome is the result of a search. Candidate is nil when Reason is
// BudgetExhausted.
type Outcome struct {
	Candidate *Candidate
	Reason    Reason
	Attempts  int
}

// Searcher walks quality down from Params.StartQuality in fixed steps until
// the encoded size drops strictly below the target.
type Searcher struct {
	Encoder Encoder
	Params  Params
	// OnAttempt, if set, is called after every encode.
	OnAttempt func(Attempt)
}

// NewSearcher returns a Searcher using enc and DefaultParams.
func NewSearcher(enc Encoder) *Searcher {
	return &Searcher{Encoder: enc, Params: DefaultParams()}
}

// Search runs the quality descent on img. Only the latest candidate is kept
// between iterations. Encoder failures abort the search.
func (s *Searcher) Search(img image.Image) (Outcome, error) {
	p := s.Params
	q := p.StartQuality
	attempts := 0

	var cur *Candidate
	encode := func(q int) error {
		data, err := s.Encoder.Encode(img, q)
		if err != nil {
			return errors.Wrapf(err, "encode at quality %d", q)
		}
		attempts++
		cur = &Candidate{Data: data, Quality: q}
		if s.OnAttempt != nil {
			s.OnAttempt(Attempt{Number: attempts, Quality: q, SizeMiB: cur.SizeMiB()})
		}
		return nil
	}

	for i := 0; i < p.MaxIterations; i++ {
		if err := encode(q); err != nil {
			return Outcome{Attempts: attempts}, err
		}
		if cur.SizeMiB() < p.TargetSizeMiB {
			return Outcome{Candidate: cur, Reason: ReachedTarget, Attempts: attempts}, nil
		}

		q -= p.QualityStep
		if q < p.MinQuality {
			q = p.MinQuality
			// The encoder is deterministic, so the floor is only encoded
			// again if the descent stepped over it.
			if cur.Quality != q {
				if err := encode(q); err != nil {
					return Outcome{Attempts: attempts}, err
				}
			}
			return Outcome{Candidate: cur, Reason: ReachedMinQuality, Attempts: attempts}, nil
		}
	}

	return Outcome{Reason: BudgetExhausted, Attempts: attempts}, nil
}
