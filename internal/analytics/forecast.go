package analytics

import "fmt"

// Prediction is a linear extrapolation of a metric's series. It is always
// returned when the inputs are valid; callers must surface LowConfidence
// rather than silently trusting a poor fit.
type Prediction struct {
	Metric         Metric  `json:"metric_name"`
	HorizonDays    int     `json:"horizon_days"`
	PredictedValue float64 `json:"predicted_value"`
	FitQuality     float64 `json:"fit_quality"`
	LowConfidence  bool    `json:"low_confidence"`
}

// Predictor extrapolates future metric values with an OLS line over
// (day offset, value) pairs.
type Predictor struct {
	// MaxHorizonDays bounds days_ahead; beyond it the horizon is invalid.
	MaxHorizonDays int
	// SpanMultiple flags low confidence when the horizon extrapolates more
	// than this many times past the observed span.
	SpanMultiple float64
	// MinFitQuality flags low confidence below this R².
	MinFitQuality float64
}

// NewPredictor returns a predictor with the default limits: 365-day max
// horizon, low confidence past 3x the observed span or under R² 0.5.
func NewPredictor() *Predictor {
	return &Predictor{MaxHorizonDays: 365, SpanMultiple: 3, MinFitQuality: 0.5}
}

// Predict extrapolates the series daysAhead days past its last sample.
// The series needs at least three samples on distinct dates spanning a full
// day; shorter histories fail with ErrInsufficientData.
func (p *Predictor) Predict(s Series, daysAhead int) (Prediction, error) {
	if daysAhead <= 0 || daysAhead > p.MaxHorizonDays {
		return Prediction{}, fmt.Errorf("days_ahead must be in (0, %d], got %d: %w",
			p.MaxHorizonDays, daysAhead, ErrInvalidHorizon)
	}
	if s.Len() < 3 {
		return Prediction{}, fmt.Errorf("prediction for %q needs at least 3 samples, have %d: %w",
			s.Metric, s.Len(), ErrInsufficientData)
	}

	offsets := s.DayOffsets()
	span := offsets[len(offsets)-1]
	if span < 1 {
		return Prediction{}, fmt.Errorf("prediction for %q needs samples spanning at least one day: %w",
			s.Metric, ErrInsufficientData)
	}

	slope, intercept, ok := linearFit(offsets, s.Values())
	if !ok {
		return Prediction{}, fmt.Errorf("prediction for %q has a singular fit: %w",
			s.Metric, ErrInsufficientData)
	}

	fit := rSquared(offsets, s.Values(), slope, intercept)
	target := span + float64(daysAhead)

	return Prediction{
		Metric:         s.Metric,
		HorizonDays:    daysAhead,
		PredictedValue: slope*target + intercept,
		FitQuality:     fit,
		LowConfidence:  fit < p.MinFitQuality || float64(daysAhead) > p.SpanMultiple*span,
	}, nil
}
