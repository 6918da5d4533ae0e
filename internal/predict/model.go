// SPDX-License-Identifier: Apache-2.0

package predict

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"

	"github.com/oreflot/flotation-mcp/internal/record"
)

//go:embed model.yaml
var defaultModel []byte

//go:embed model.cue
var modelSchema string

// LinearModel is a serialized regression over standardized readings:
//
//	z[i]  = (x[i] - mean[i]) / scale[i]
//	y[t]  = intercept[t] + sum(coefficients[t][i] * z[i])
//
// for t in (iron, silica).
type LinearModel struct {
	Name         string      `yaml:"name"`
	Features     []string    `yaml:"features"`
	Targets      []string    `yaml:"targets"`
	Mean         []float64   `yaml:"mean"`
	Scale        []float64   `yaml:"scale"`
	Intercept    []float64   `yaml:"intercept"`
	Coefficients [][]float64 `yaml:"coefficients"`
}

var _ Predictor = (*LinearModel)(nil)

// DefaultModel returns the model shipped with the binary.
func DefaultModel() (*LinearModel, error) {
	return ParseModel(defaultModel)
}

// LoadModel reads and validates a model file.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %q: %w", path, err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", path, err)
	}
	return m, nil
}

// ParseModel decodes a YAML or JSON model document, checks it against the
// CUE schema and verifies that its features match the canonical input order.
func ParseModel(data []byte) (*LinearModel, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func validateSchema(doc map[string]interface{}) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(modelSchema).LookupPath(cue.ParsePath("#Model"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("invalid model schema: %w", err)
	}
	value := schema.Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("model does not match schema: %w", err)
	}
	return nil
}

func (m *LinearModel) check() error {
	names := record.InputNames()
	if len(m.Features) != len(names) {
		return fmt.Errorf("model has %d features, want %d", len(m.Features), len(names))
	}
	for i, name := range names {
		if m.Features[i] != name {
			return fmt.Errorf("model feature %d is %q, want %q", i, m.Features[i], name)
		}
	}
	if len(m.Mean) != len(names) || len(m.Scale) != len(names) {
		return fmt.Errorf("model scaling has %d means and %d scales, want %d", len(m.Mean), len(m.Scale), len(names))
	}
	for t, row := range m.Coefficients {
		if len(row) != len(names) {
			return fmt.Errorf("model target %q has %d coefficients, want %d", m.Targets[t], len(row), len(names))
		}
	}
	return nil
}

// Predict standardizes features with the stored statistics and evaluates
// both targets.
func (m *LinearModel) Predict(ctx context.Context, features []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(features) != len(m.Mean) {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrSchemaMismatch, len(features), len(m.Mean))
	}

	out := make([]float64, len(m.Intercept))
	copy(out, m.Intercept)
	for i, x := range features {
		z := (x - m.Mean[i]) / m.Scale[i]
		for t := range out {
			out[t] += m.Coefficients[t][i] * z
		}
	}
	return out, nil
}
