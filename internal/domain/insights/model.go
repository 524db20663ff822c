package insights

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthlens/healthlens/internal/analytics"
)

// StoredTrend maps to the health_trend table: one row per (patient, metric)
// from the latest analysis run.
type StoredTrend struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Metric      string    `db:"metric_name" json:"metric_name"`
	Direction   string    `db:"direction" json:"direction"`
	Strength    float64   `db:"strength" json:"strength"`
	Mean        float64   `db:"mean_value" json:"mean_value"`
	MinValue    float64   `db:"min_value" json:"min_value"`
	MaxValue    float64   `db:"max_value" json:"max_value"`
	ChangePct   float64   `db:"change_pct" json:"change_pct"`
	LatestValue float64   `db:"latest_value" json:"latest_value"`
	RangeStatus string    `db:"range_status" json:"range_status"`
	SampleCount int       `db:"sample_count" json:"sample_count"`
	ComputedAt  time.Time `db:"computed_at" json:"computed_at"`
}

// StoredRisk maps to the health_risk table: one row per (patient, category)
// from the latest analysis run.
type StoredRisk struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	Category            string    `db:"category" json:"category"`
	Score               float64   `db:"score" json:"score"`
	Level               string    `db:"level" json:"level"`
	ContributingFactors []string  `db:"contributing_factors" json:"contributing_factors"`
	Recommendations     []string  `db:"recommendations" json:"recommendations"`
	ComputedAt          time.Time `db:"computed_at" json:"computed_at"`
}

// StoredInsight maps to the health_insight table.
type StoredInsight struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Kind       string    `db:"kind" json:"kind"`
	Category   *string   `db:"category" json:"category,omitempty"`
	Metric     *string   `db:"metric_name" json:"metric_name,omitempty"`
	Severity   string    `db:"severity" json:"severity"`
	Message    string    `db:"message" json:"message"`
	Confidence float64   `db:"confidence" json:"confidence"`
	SourceRefs []string  `db:"source_refs" json:"source_refs"`
	Rank       int       `db:"rank" json:"rank"`
	ComputedAt time.Time `db:"computed_at" json:"computed_at"`
}

func trendFromResult(t analytics.TrendResult, computedAt time.Time) *StoredTrend {
	return &StoredTrend{
		ID:          uuid.New(),
		PatientID:   t.PatientID,
		Metric:      string(t.Metric),
		Direction:   string(t.Direction),
		Strength:    t.Strength,
		Mean:        t.Mean,
		MinValue:    t.Min,
		MaxValue:    t.Max,
		ChangePct:   t.ChangePct,
		LatestValue: t.LatestValue,
		RangeStatus: string(t.RangeStatus),
		SampleCount: t.SampleCount,
		ComputedAt:  computedAt,
	}
}

func riskFromScore(r analytics.RiskScore, computedAt time.Time) *StoredRisk {
	return &StoredRisk{
		ID:                  uuid.New(),
		PatientID:           r.PatientID,
		Category:            string(r.Category),
		Score:               r.Score,
		Level:               string(r.Level),
		ContributingFactors: r.ContributingFactors,
		Recommendations:     r.Recommendations,
		ComputedAt:          computedAt,
	}
}

func insightFromResult(in analytics.Insight, rank int, computedAt time.Time) *StoredInsight {
	si := &StoredInsight{
		ID:         uuid.New(),
		PatientID:  in.PatientID,
		Kind:       string(in.Kind),
		Severity:   string(in.Severity),
		Message:    in.Message,
		Confidence: in.Confidence,
		SourceRefs: in.SourceRefs,
		Rank:       rank,
		ComputedAt: computedAt,
	}
	if in.Category != "" {
		cat := string(in.Category)
		si.Category = &cat
	}
	if in.Metric != "" {
		m := string(in.Metric)
		si.Metric = &m
	}
	return si
}
