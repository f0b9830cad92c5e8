package predict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoderAssignsSortedClasses(t *testing.T) {
	enc := NewLabelEncoder()
	enc.Fit([]string{"Technology", "Furniture", "Office Supplies", "Furniture"})

	for value, want := range map[string]int{
		"Furniture":       0,
		"Office Supplies": 1,
		"Technology":      2,
	} {
		class, seen := enc.Transform(value)
		assert.True(t, seen, value)
		assert.Equal(t, want, class, value)
	}

	class, seen := enc.Transform("Appliances")
	assert.False(t, seen)
	assert.Zero(t, class)
}

// syntheticSamples builds a noiseless dataset where sales is an exact linear
// function of the encoded features, so training should recover it.
func syntheticSamples() []Sample {
	target := func(country, state, postal, category float64) float64 {
		return 10 + 2*country + 3*state + 0.5*postal + 4*category
	}
	countries := []string{"Austria", "Brazil"}     // classes 0, 1
	states := []string{"Adams", "Burke", "Clark"}  // classes 0, 1, 2
	categories := []string{"Furniture", "Gadgets"} // classes 0, 1

	var samples []Sample
	for ci, country := range countries {
		for si, state := range states {
			for gi, category := range categories {
				for _, postal := range []float64{100, 250} {
					samples = append(samples, Sample{
						Country:    country,
						State:      state,
						PostalCode: postal,
						Category:   category,
						Sales:      target(float64(ci), float64(si), postal, float64(gi)),
					})
				}
			}
		}
	}
	return samples
}

func TestTrainRecoversLinearRelation(t *testing.T) {
	result, err := Train(syntheticSamples())
	require.NoError(t, err)

	model := result.Model
	require.Equal(t, []string{"Country", "State", "Postal Code", "Category"}, model.Features)
	require.Len(t, model.Coefficients, 4)

	assert.InDelta(t, 10, model.Intercept, 1e-6)
	assert.InDelta(t, 2, model.Coefficients[0], 1e-6)
	assert.InDelta(t, 3, model.Coefficients[1], 1e-6)
	assert.InDelta(t, 0.5, model.Coefficients[2], 1e-6)
	assert.InDelta(t, 4, model.Coefficients[3], 1e-6)
	assert.InDelta(t, 1.0, result.R2, 1e-6)

	// Brazil=1, Clark=2, Gadgets=1.
	got := model.Predict(Sample{Country: "Brazil", State: "Clark", PostalCode: 180, Category: "Gadgets"})
	assert.InDelta(t, 10+2*1+3*2+0.5*180+4*1, got, 1e-6)
}

func TestTrainRejectsTinyDatasets(t *testing.T) {
	_, err := Train(syntheticSamples()[:5])
	require.Error(t, err)
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	result, err := Train(syntheticSamples())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, result.Model.Save(path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, result.Model.Features, loaded.Features)
	assert.Equal(t, result.Model.Coefficients, loaded.Coefficients)
	assert.Equal(t, result.Model.Intercept, loaded.Intercept)

	sample := Sample{Country: "Austria", State: "Burke", PostalCode: 120, Category: "Furniture"}
	assert.InDelta(t, result.Model.Predict(sample), loaded.Predict(sample), 1e-9)
}

func TestUnknownLabelsEncodeAsZero(t *testing.T) {
	result, err := Train(syntheticSamples())
	require.NoError(t, err)
	model := result.Model

	unknown := model.UnknownLabels(Sample{Country: "Zimbabwe", State: "Adams", Category: "Furniture"})
	require.Len(t, unknown, 1)
	assert.Equal(t, "Country=Zimbabwe", unknown[0])

	// An unknown country encodes as class 0, same as the first known one.
	known := model.Predict(Sample{Country: "Austria", State: "Adams", PostalCode: 50, Category: "Furniture"})
	got := model.Predict(Sample{Country: "Zimbabwe", State: "Adams", PostalCode: 50, Category: "Furniture"})
	assert.InDelta(t, known, got, 1e-9)
}

func TestLoadModelRejectsInconsistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"features":["Country"],"coefficients":[1,2],"intercept":0,"encoders":{}}`), 0o644))

	_, err := LoadModel(path)
	require.Error(t, err)
}
