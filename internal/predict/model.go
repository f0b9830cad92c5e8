// Package predict trains and runs the toy sales regression: a linear model
// over a fixed feature set (country, state, postal code, category) with
// label-encoded categoricals, persisted together with its encoders as JSON.
package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Feature names, in model order.
const (
	FeatureCountry    = "Country"
	FeatureState      = "State"
	FeaturePostalCode = "Postal Code"
	FeatureCategory   = "Category"
)

var featureOrder = []string{FeatureCountry, FeatureState, FeaturePostalCode, FeatureCategory}

// Sample is one observation. Sales is the regression target and is ignored
// at predict time.
type Sample struct {
	Country    string
	State      string
	PostalCode float64
	Category   string
	Sales      float64
}

// Model is a fitted linear regression plus the encoders needed to turn a raw
// sample into its feature vector.
type Model struct {
	Features     []string                 `json:"features"`
	Coefficients []float64                `json:"coefficients"`
	Intercept    float64                  `json:"intercept"`
	Encoders     map[string]*LabelEncoder `json:"encoders"`
}

// TrainResult carries the fitted model and the held-out R² score.
type TrainResult struct {
	Model    *Model
	R2       float64
	TrainLen int
	TestLen  int
}

// Train fits encoders on the full dataset, splits 80/20 with a fixed shuffle
// seed and solves the least-squares problem on the training portion via QR.
func Train(samples []Sample) (*TrainResult, error) {
	if len(samples) < 10 {
		return nil, fmt.Errorf("need at least 10 samples to train, got %d", len(samples))
	}

	model := &Model{
		Features: append([]string(nil), featureOrder...),
		Encoders: make(map[string]*LabelEncoder),
	}
	for name, extract := range map[string]func(Sample) string{
		FeatureCountry:  func(s Sample) string { return s.Country },
		FeatureState:    func(s Sample) string { return s.State },
		FeatureCategory: func(s Sample) string { return s.Category },
	} {
		values := make([]string, len(samples))
		for i, s := range samples {
			values[i] = extract(s)
		}
		enc := NewLabelEncoder()
		enc.Fit(values)
		model.Encoders[name] = enc
	}

	shuffled := append([]Sample(nil), samples...)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	split := len(shuffled) * 8 / 10
	train, test := shuffled[:split], shuffled[split:]

	cols := len(featureOrder) + 1 // leading intercept column
	x := mat.NewDense(len(train), cols, nil)
	y := mat.NewDense(len(train), 1, nil)
	for i, s := range train {
		x.Set(i, 0, 1)
		for j, v := range model.vector(s) {
			x.Set(i, j+1, v)
		}
		y.Set(i, 0, s.Sales)
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	model.Intercept = beta.At(0, 0)
	model.Coefficients = make([]float64, len(featureOrder))
	for j := range model.Coefficients {
		model.Coefficients[j] = beta.At(j+1, 0)
	}

	return &TrainResult{
		Model:    model,
		R2:       model.rSquared(test),
		TrainLen: len(train),
		TestLen:  len(test),
	}, nil
}

// Predict returns the model output for a sample. Unknown categorical values
// encode as class 0; the caller decides whether to warn.
func (m *Model) Predict(s Sample) float64 {
	out := m.Intercept
	for j, v := range m.vector(s) {
		out += m.Coefficients[j] * v
	}
	return out
}

// UnknownLabels lists the categorical values of a sample that were not seen
// at fit time.
func (m *Model) UnknownLabels(s Sample) []string {
	var unknown []string
	for name, value := range map[string]string{
		FeatureCountry:  s.Country,
		FeatureState:    s.State,
		FeatureCategory: s.Category,
	} {
		if enc, ok := m.Encoders[name]; ok {
			if _, seen := enc.Transform(value); !seen {
				unknown = append(unknown, name+"="+value)
			}
		}
	}
	return unknown
}

func (m *Model) vector(s Sample) []float64 {
	encode := func(name, value string) float64 {
		class, _ := m.Encoders[name].Transform(value)
		return float64(class)
	}
	return []float64{
		encode(FeatureCountry, s.Country),
		encode(FeatureState, s.State),
		s.PostalCode,
		encode(FeatureCategory, s.Category),
	}
}

func (m *Model) rSquared(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var mean float64
	for _, s := range samples {
		mean += s.Sales
	}
	mean /= float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		pred := m.Predict(s)
		ssRes += (s.Sales - pred) * (s.Sales - pred)
		ssTot += (s.Sales - mean) * (s.Sales - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Save writes the model and its encoders as one JSON document.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	if len(m.Coefficients) != len(m.Features) {
		return nil, errors.New("model file is inconsistent: coefficient count does not match feature count")
	}
	return m, nil
}
