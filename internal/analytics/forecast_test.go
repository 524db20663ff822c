package analytics

import (
	"errors"
	"math"
	"testing"
)

func TestPredictor_ExactLinearExtrapolation(t *testing.T) {
	p := NewPredictor()
	s := seriesOf(MetricFastingBloodSugar, []float64{10, 20, 30}, []int{0, 10, 20})

	pred, err := p.Predict(s, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pred.PredictedValue-40) > 1e-6 {
		t.Errorf("predicted %g, want 40", pred.PredictedValue)
	}
	if pred.FitQuality != 1.0 {
		t.Errorf("fit quality = %g, want 1.0", pred.FitQuality)
	}
	if pred.LowConfidence {
		t.Error("10-day horizon over a 20-day span should not be low confidence")
	}
	if pred.HorizonDays != 10 {
		t.Errorf("horizon = %d, want 10", pred.HorizonDays)
	}
}

func TestPredictor_InvalidHorizon(t *testing.T) {
	p := NewPredictor()
	s := seriesOf(MetricFastingBloodSugar, []float64{10, 20, 30}, []int{0, 10, 20})

	for _, days := range []int{0, -5, 366} {
		if _, err := p.Predict(s, days); !errors.Is(err, ErrInvalidHorizon) {
			t.Errorf("days_ahead=%d: expected ErrInvalidHorizon, got %v", days, err)
		}
	}
}

func TestPredictor_InsufficientData(t *testing.T) {
	p := NewPredictor()

	short := seriesOf(MetricHbA1c, []float64{5.5}, []int{0})
	if _, err := p.Predict(short, 30); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("1 sample: expected ErrInsufficientData, got %v", err)
	}

	two := seriesOf(MetricHbA1c, []float64{5.5, 5.7}, []int{0, 30})
	if _, err := p.Predict(two, 30); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("2 samples: expected ErrInsufficientData, got %v", err)
	}
}

func TestPredictor_LowConfidence(t *testing.T) {
	p := NewPredictor()

	// Horizon far past the observed span.
	s := seriesOf(MetricLDLCholesterol, []float64{100, 105, 111}, []int{0, 5, 10})
	pred, err := p.Predict(s, 90)
	if err != nil {
		t.Fatal(err)
	}
	if !pred.LowConfidence {
		t.Error("90 days past a 10-day span should be low confidence")
	}

	// Noisy series with a poor fit.
	noisy := seriesOf(MetricTriglycerides, []float64{100, 145, 95, 140, 92}, []int{0, 10, 20, 30, 40})
	pred, err = p.Predict(noisy, 10)
	if err != nil {
		t.Fatal(err)
	}
	if pred.FitQuality >= 0.5 {
		t.Fatalf("expected a poor fit, got R²=%g", pred.FitQuality)
	}
	if !pred.LowConfidence {
		t.Error("poor fit should be low confidence")
	}
}

func TestPredictor_ConstantSeriesPerfectFit(t *testing.T) {
	p := NewPredictor()
	s := seriesOf(MetricCreatinine, []float64{0.9, 0.9, 0.9}, []int{0, 15, 30})

	pred, err := p.Predict(s, 30)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pred.PredictedValue-0.9) > 1e-9 {
		t.Errorf("flat series should extrapolate flat, got %g", pred.PredictedValue)
	}
	if pred.FitQuality != 1.0 {
		t.Errorf("zero-variance series fits exactly, R² = %g", pred.FitQuality)
	}
}
