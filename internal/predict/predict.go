// SPDX-License-Identifier: Apache-2.0

package predict

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/oreflot/flotation-mcp/internal/record"
)

var (
	// ErrSchemaMismatch means the record reaching the predictor is not a
	// complete set of the 21 input fields.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidOutput means the predictor did not return two finite numbers.
	ErrInvalidOutput = errors.New("invalid prediction output")
)

// Predictor is the trained model. It receives the 21 input values in
// canonical order and returns the iron and silica concentrates.
type Predictor interface {
	Predict(ctx context.Context, features []float64) ([]float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, features []float64) ([]float64, error)

func (f PredictorFunc) Predict(ctx context.Context, features []float64) ([]float64, error) {
	return f(ctx, features)
}

// Concentrates is a successful prediction, rounded like the readings.
type Concentrates struct {
	Iron   float64 `json:"iron"`
	Silica float64 `json:"silica"`
}

// Apply returns a copy of rec with the derived fields set.
func (c Concentrates) Apply(rec record.RawRecord) record.RawRecord {
	out := make(record.RawRecord, len(rec)+2)
	for k, v := range rec {
		out[k] = v
	}
	out[record.IronConcentrate] = record.Format(c.Iron)
	out[record.SilicaConcentrate] = record.Format(c.Silica)
	return out
}

// ComputeConcentrates runs p once over a validated record. Records that are
// not exactly the 21 input fields are refused without calling p.
func ComputeConcentrates(ctx context.Context, p Predictor, rec record.ValidatedRecord) (Concentrates, error) {
	if len(rec) < record.InputCount {
		return Concentrates{}, fmt.Errorf("%w: got %d input fields, want %d", ErrSchemaMismatch, len(rec), record.InputCount)
	}
	features, err := rec.Vector()
	if err != nil {
		return Concentrates{}, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}

	out, err := p.Predict(ctx, features)
	if err != nil {
		return Concentrates{}, fmt.Errorf("prediction failed: %w", err)
	}
	if len(out) != 2 {
		return Concentrates{}, fmt.Errorf("%w: got %d values, want 2", ErrInvalidOutput, len(out))
	}
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Concentrates{}, fmt.Errorf("%w: %v is not finite", ErrInvalidOutput, out)
		}
	}

	return Concentrates{
		Iron:   record.Round(out[0]),
		Silica: record.Round(out[1]),
	}, nil
}
