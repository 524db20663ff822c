package analytics

import (
	"fmt"

	"github.com/google/uuid"
)

// RiskLevel buckets a 0-100 composite score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskScore is the composite assessment for one disease category.
type RiskScore struct {
	PatientID           uuid.UUID    `json:"patient_id"`
	Category            RiskCategory `json:"category"`
	Score               float64      `json:"score"`
	Level               RiskLevel    `json:"level"`
	ContributingFactors []string     `json:"contributing_factors"`
	Recommendations     []string     `json:"recommendations"`
}

// RiskAssessor combines latest metric values into per-category risk scores.
type RiskAssessor struct {
	reg *Registry
}

// NewRiskAssessor returns an assessor backed by the registry's thresholds
// and weights.
func NewRiskAssessor(reg *Registry) *RiskAssessor {
	return &RiskAssessor{reg: reg}
}

// Assess scores every category for which at least one input metric is
// present in latest. Categories with no inputs at hand are omitted, not
// zero-scored. Output order follows RiskCategories for determinism.
func (a *RiskAssessor) Assess(patientID uuid.UUID, latest map[Metric]float64) []RiskScore {
	var scores []RiskScore
	for _, cat := range RiskCategories() {
		if score, ok := a.assessCategory(patientID, cat, latest); ok {
			scores = append(scores, score)
		}
	}
	return scores
}

func (a *RiskAssessor) assessCategory(patientID uuid.UUID, cat RiskCategory, latest map[Metric]float64) (RiskScore, bool) {
	var (
		weighted   float64
		weightSum  float64
		anyPresent bool
		factors    []string
	)
	for _, in := range a.reg.RiskInputs(cat) {
		value, ok := latest[in.Metric]
		if !ok {
			continue
		}
		anyPresent = true
		sub := subScore(in, value)
		if sub <= 0 {
			continue
		}
		weighted += in.Weight * sub
		weightSum += in.Weight
		factors = append(factors, contributingFactor(a.reg, in, value))
	}
	if !anyPresent {
		return RiskScore{}, false
	}

	var score float64
	if weightSum > 0 {
		score = clamp(weighted/weightSum, 0, 100)
	}
	level := levelFor(score)

	return RiskScore{
		PatientID:           patientID,
		Category:            cat,
		Score:               score,
		Level:               level,
		ContributingFactors: factors,
		Recommendations:     recommendationsFor(cat, level),
	}, true
}

// subScore maps a value onto 0-100: below the moderate threshold scores 0,
// the moderate band maps onto [25,50), and past the high threshold onto
// [50,100], saturating one band-width beyond it. Descending thresholds
// (HDL) mirror the comparison.
func subScore(in RiskInput, v float64) float64 {
	if in.High > in.Moderate {
		band := in.High - in.Moderate
		switch {
		case v < in.Moderate:
			return 0
		case v < in.High:
			return 25 + 25*(v-in.Moderate)/band
		default:
			return 50 + 50*minF(1, (v-in.High)/band)
		}
	}
	band := in.Moderate - in.High
	switch {
	case v > in.Moderate:
		return 0
	case v > in.High:
		return 25 + 25*(in.Moderate-v)/band
	default:
		return 50 + 50*minF(1, (in.High-v)/band)
	}
}

func contributingFactor(reg *Registry, in RiskInput, v float64) string {
	nr, _ := reg.Range(in.Metric)
	if in.High > in.Moderate {
		threshold := in.Moderate
		if v >= in.High {
			threshold = in.High
		}
		return fmt.Sprintf("%s of %.4g %s is above the %.4g %s threshold", in.Metric, v, nr.Unit, threshold, nr.Unit)
	}
	threshold := in.Moderate
	if v <= in.High {
		threshold = in.High
	}
	return fmt.Sprintf("%s of %.4g %s is below the %.4g %s threshold", in.Metric, v, nr.Unit, threshold, nr.Unit)
}

func levelFor(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskModerate
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

var riskRecommendations = map[RiskCategory]map[RiskLevel][]string{
	RiskDiabetes: {
		RiskLow:      {"Maintain a balanced diet and regular exercise"},
		RiskModerate: {"Follow a diabetic-friendly diet", "Maintain a regular exercise routine"},
		RiskHigh:     {"Consult a diabetologist for further evaluation", "Monitor blood sugar levels regularly"},
		RiskCritical: {"Consult an endocrinologist promptly", "Monitor blood sugar levels daily"},
	},
	RiskHypertension: {
		RiskLow:      {"Keep sodium intake moderate and stay active"},
		RiskModerate: {"Reduce sodium intake", "Maintain a healthy weight", "Exercise regularly"},
		RiskHigh:     {"Consult a cardiologist for blood pressure management", "Monitor blood pressure daily"},
		RiskCritical: {"Seek medical attention for blood pressure control", "Monitor blood pressure daily"},
	},
	RiskHeartDisease: {
		RiskLow:      {"Maintain a heart-healthy lifestyle"},
		RiskModerate: {"Follow a heart-healthy diet low in saturated fat", "Maintain a healthy weight", "Stay physically active"},
		RiskHigh:     {"Consult a cardiologist for a comprehensive heart health evaluation", "Follow a heart-healthy diet low in saturated fat"},
		RiskCritical: {"Consult a cardiologist promptly", "Follow a strict heart-healthy diet and exercise plan"},
	},
}

func recommendationsFor(cat RiskCategory, level RiskLevel) []string {
	recs := riskRecommendations[cat][level]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
