package analytics

import (
	"fmt"

	"github.com/google/uuid"
)

// TrendDirection is the clinical reading of a metric's movement: DECLINING
// means the patient is getting worse, regardless of whether the number is
// going up or down.
type TrendDirection string

const (
	TrendImproving TrendDirection = "IMPROVING"
	TrendDeclining TrendDirection = "DECLINING"
	TrendStable    TrendDirection = "STABLE"
)

// RangeStatus classifies the latest value against the clinical normal range.
type RangeStatus string

const (
	RangeNormal     RangeStatus = "NORMAL"
	RangeBorderline RangeStatus = "BORDERLINE"
	RangeAbnormal   RangeStatus = "ABNORMAL"
)

// TrendResult is the derived trend for one (patient, metric) series. It is a
// pure function of the input series; nothing here is cached between calls.
type TrendResult struct {
	PatientID   uuid.UUID      `json:"patient_id"`
	Metric      Metric         `json:"metric_name"`
	Direction   TrendDirection `json:"direction"`
	Strength    float64        `json:"strength"`
	Mean        float64        `json:"mean"`
	Min         float64        `json:"min"`
	Max         float64        `json:"max"`
	ChangePct   float64        `json:"change_pct"`
	LatestValue float64        `json:"latest_value"`
	RangeStatus RangeStatus    `json:"range_status"`
	SampleCount int            `json:"sample_count"`
}

// TrendAnalyzer computes trend direction, strength, and range status.
type TrendAnalyzer struct {
	reg *Registry

	// DeadBand is the |strength| below which movement reads as STABLE.
	DeadBand float64
	// BorderlineMargin is the fraction of the range width beyond a bound
	// that still classifies as BORDERLINE rather than ABNORMAL.
	BorderlineMargin float64
}

// NewTrendAnalyzer returns an analyzer with the default dead-band (0.05) and
// borderline margin (10% of range width).
func NewTrendAnalyzer(reg *Registry) *TrendAnalyzer {
	return &TrendAnalyzer{reg: reg, DeadBand: 0.05, BorderlineMargin: 0.10}
}

// Analyze derives the trend for a series. Series shorter than two samples
// fail with ErrInsufficientData.
func (a *TrendAnalyzer) Analyze(s Series) (TrendResult, error) {
	if s.Len() < 2 {
		return TrendResult{}, fmt.Errorf("trend for %q needs at least 2 samples, have %d: %w",
			s.Metric, s.Len(), ErrInsufficientData)
	}
	nr, err := a.reg.Range(s.Metric)
	if err != nil {
		return TrendResult{}, err
	}

	values := s.Values()
	offsets := s.DayOffsets()
	mean, _ := meanStddev(values)
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	// Strength is the change the fitted line projects over the observed
	// window, relative to the width of the clinical normal range.
	var strength float64
	if slope, _, ok := linearFit(offsets, values); ok {
		span := offsets[len(offsets)-1]
		strength = clamp(slope*span/nr.Width(), -1, 1)
	}

	first, latest := values[0], s.Latest().Value
	var changePct float64
	if first != 0 {
		changePct = (latest - first) / abs(first)
	}

	status := a.rangeStatus(nr, latest)
	direction := a.direction(nr, strength, latest)

	return TrendResult{
		PatientID:   s.PatientID,
		Metric:      s.Metric,
		Direction:   direction,
		Strength:    strength,
		Mean:        mean,
		Min:         min,
		Max:         max,
		ChangePct:   changePct,
		LatestValue: latest,
		RangeStatus: status,
		SampleCount: s.Len(),
	}, nil
}

func (a *TrendAnalyzer) rangeStatus(nr NormalRange, v float64) RangeStatus {
	if nr.Contains(v) {
		return RangeNormal
	}
	margin := a.BorderlineMargin * nr.Width()
	if v >= nr.Low-margin && v <= nr.High+margin {
		return RangeBorderline
	}
	return RangeAbnormal
}

func (a *TrendAnalyzer) direction(nr NormalRange, strength, latest float64) TrendDirection {
	rising := strength > a.DeadBand
	falling := strength < -a.DeadBand

	switch nr.Directionality {
	case HigherIsWorse:
		if rising {
			return TrendDeclining
		}
		if falling {
			return TrendImproving
		}
	case LowerIsWorse:
		if rising {
			return TrendImproving
		}
		if falling {
			return TrendDeclining
		}
	case RangeCentered:
		// Only meaningful once the latest value has left the band: moving
		// further out is declining, moving back toward it is improving.
		if nr.Contains(latest) {
			return TrendStable
		}
		if latest > nr.High {
			if rising {
				return TrendDeclining
			}
			if falling {
				return TrendImproving
			}
		} else {
			if falling {
				return TrendDeclining
			}
			if rising {
				return TrendImproving
			}
		}
	}
	return TrendStable
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
