package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Severity ranks an insight for display and ordering.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// InsightKind is the source family an insight was derived from.
type InsightKind string

const (
	InsightTrend   InsightKind = "TREND"
	InsightAnomaly InsightKind = "ANOMALY"
	InsightRisk    InsightKind = "RISK"
)

// Insight is one ranked finding merged from the analysis results.
type Insight struct {
	PatientID  uuid.UUID    `json:"patient_id"`
	Kind       InsightKind  `json:"kind"`
	Category   RiskCategory `json:"category,omitempty"`
	Metric     Metric       `json:"metric_name,omitempty"`
	Severity   Severity     `json:"severity"`
	Message    string       `json:"message"`
	Confidence float64      `json:"confidence"`
	SourceRefs []string     `json:"source_refs"`
}

// InsightGenerator merges trends, anomalies, and risks into a deduplicated,
// deterministically ordered insight list. Pure: identical inputs yield an
// identical ordered result.
type InsightGenerator struct{}

// NewInsightGenerator returns a generator.
func NewInsightGenerator() *InsightGenerator { return &InsightGenerator{} }

// Generate builds the insight list. predictions (keyed by metric) raise or
// lower trend confidence via their fit quality; seriesLen feeds the
// saturating length-based confidence base.
func (g *InsightGenerator) Generate(
	patientID uuid.UUID,
	trends []TrendResult,
	anomalies []AnomalyFlag,
	risks []RiskScore,
	predictions map[Metric]Prediction,
	seriesLen map[Metric]int,
) []Insight {
	var insights []Insight

	for _, t := range trends {
		severity := SeverityInfo
		message := fmt.Sprintf("%s is %s (latest value %.4g)", t.Metric, describeDirection(t.Direction), t.LatestValue)
		if t.Direction == TrendDeclining && t.RangeStatus != RangeNormal {
			severity = SeverityWarning
			message = fmt.Sprintf("%s is worsening and outside the normal range (latest value %.4g)", t.Metric, t.LatestValue)
		}
		conf := lengthConfidence(seriesLen[t.Metric])
		refs := []string{fmt.Sprintf("trend:%s", t.Metric)}
		if p, ok := predictions[t.Metric]; ok {
			conf = (conf + p.FitQuality) / 2
			refs = append(refs, fmt.Sprintf("prediction:%s", t.Metric))
		}
		insights = append(insights, Insight{
			PatientID:  patientID,
			Kind:       InsightTrend,
			Metric:     t.Metric,
			Severity:   severity,
			Message:    message,
			Confidence: conf,
			SourceRefs: refs,
		})
	}

	for _, f := range anomalies {
		insights = append(insights, Insight{
			PatientID: patientID,
			Kind:      InsightAnomaly,
			Metric:    f.Sample.Metric,
			Severity:  SeverityWarning,
			Message: fmt.Sprintf("Anomalous %s reading of %.4g on %s", f.Sample.Metric,
				f.Sample.Value, f.Sample.Date.Format("2006-01-02")),
			Confidence: lengthConfidence(seriesLen[f.Sample.Metric]),
			SourceRefs: []string{fmt.Sprintf("anomaly:%s:%s", f.Sample.Metric, f.Sample.Date.Format("2006-01-02"))},
		})
	}

	for _, r := range risks {
		severity := SeverityInfo
		switch r.Level {
		case RiskCritical:
			severity = SeverityCritical
		case RiskHigh:
			severity = SeverityWarning
		}
		insights = append(insights, Insight{
			PatientID: patientID,
			Kind:      InsightRisk,
			Category:  r.Category,
			Severity:  severity,
			Message: fmt.Sprintf("%s risk is %s (score %.0f)", r.Category,
				r.Level, r.Score),
			Confidence: clamp(r.Score/100, 0, 1),
			SourceRefs: []string{fmt.Sprintf("risk:%s", r.Category)},
		})
	}

	insights = dedupe(insights)
	sort.SliceStable(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if ra, rb := severityRank(a.Severity), severityRank(b.Severity); ra != rb {
			return ra > rb
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Metric < b.Metric
	})
	return insights
}

// dedupe keeps the highest-severity insight per (kind, category, metric),
// breaking ties by confidence.
func dedupe(insights []Insight) []Insight {
	type key struct {
		kind     InsightKind
		category RiskCategory
		metric   Metric
	}
	best := make(map[key]int)
	var out []Insight
	for _, in := range insights {
		k := key{in.Kind, in.Category, in.Metric}
		if idx, ok := best[k]; ok {
			have := out[idx]
			if severityRank(in.Severity) > severityRank(have.Severity) ||
				(severityRank(in.Severity) == severityRank(have.Severity) && in.Confidence > have.Confidence) {
				out[idx] = in
			}
			continue
		}
		best[k] = len(out)
		out = append(out, in)
	}
	return out
}

// lengthConfidence saturates toward 1 as the series grows: 2 samples score
// 0.4, 7 samples 0.7, 27 samples 0.9.
func lengthConfidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / float64(n+3)
}

func describeDirection(d TrendDirection) string {
	switch d {
	case TrendImproving:
		return "improving"
	case TrendDeclining:
		return "worsening"
	default:
		return "stable"
	}
}
