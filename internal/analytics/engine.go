package analytics

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultInsightHorizonDays is the prediction horizon GenerateInsights uses
// when folding fit quality into trend confidence.
const DefaultInsightHorizonDays = 30

// Engine is the facade over the analysis components. It is stateless across
// calls: every operation is a pure function of the record snapshot passed in.
type Engine struct {
	reg       *Registry
	trends    *TrendAnalyzer
	anomalies *AnomalyDetector
	risks     *RiskAssessor
	predictor *Predictor
	insights  *InsightGenerator
	workers   int
}

// NewEngine validates the registry and wires the components.
func NewEngine(reg *Registry) (*Engine, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metric registry: %w", err)
	}
	return &Engine{
		reg:       reg,
		trends:    NewTrendAnalyzer(reg),
		anomalies: NewAnomalyDetector(reg),
		risks:     NewRiskAssessor(reg),
		predictor: NewPredictor(),
		insights:  NewInsightGenerator(),
		workers:   runtime.NumCPU(),
	}, nil
}

// Registry exposes the engine's metric configuration.
func (e *Engine) Registry() *Registry { return e.reg }

// AnalyzeTrends computes trends for every metric in the snapshot, or for a
// single metric when one is named. Metrics with too few samples are skipped
// in the batch case and do not fail their siblings; asking for a specific
// underpopulated metric surfaces ErrInsufficientData.
func (e *Engine) AnalyzeTrends(records []RawRecord, metric Metric) ([]TrendResult, error) {
	series, _ := BuildSeries(e.reg, records)

	if metric != "" {
		if _, ok := e.reg.Lookup(string(metric)); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
		}
		t, err := e.trends.Analyze(series[metric])
		if err != nil {
			return nil, err
		}
		return []TrendResult{t}, nil
	}

	metrics := sortedMetrics(series)
	results := make([]*TrendResult, len(metrics))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, m := range metrics {
		i, m := i, m
		g.Go(func() error {
			t, err := e.trends.Analyze(series[m])
			if err != nil {
				if errors.Is(err, ErrInsufficientData) {
					return nil
				}
				return err
			}
			results[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []TrendResult
	for _, t := range results {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

// DetectAnomalies flags abnormal samples across every metric in the
// snapshot, in metric order then date order.
func (e *Engine) DetectAnomalies(records []RawRecord) ([]AnomalyFlag, error) {
	series, _ := BuildSeries(e.reg, records)
	metrics := sortedMetrics(series)
	results := make([][]AnomalyFlag, len(metrics))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, m := range metrics {
		i, m := i, m
		g.Go(func() error {
			flags, err := e.anomalies.Detect(series[m])
			if err != nil {
				return err
			}
			results[i] = flags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []AnomalyFlag
	for _, flags := range results {
		out = append(out, flags...)
	}
	return out, nil
}

// AssessRisks scores each risk category from the latest sample of every
// metric in the snapshot.
func (e *Engine) AssessRisks(patientID uuid.UUID, records []RawRecord) []RiskScore {
	series, _ := BuildSeries(e.reg, records)
	latest := make(map[Metric]float64, len(series))
	for m, s := range series {
		if s.Len() > 0 {
			latest[m] = s.Latest().Value
		}
	}
	return e.risks.Assess(patientID, latest)
}

// Predict extrapolates one metric daysAhead days past its last sample.
func (e *Engine) Predict(records []RawRecord, metric Metric, daysAhead int) (Prediction, error) {
	if _, ok := e.reg.Lookup(string(metric)); !ok {
		return Prediction{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	series, _ := BuildSeries(e.reg, records)
	return e.predictor.Predict(series[metric], daysAhead)
}

// GenerateInsights runs the full pipeline over the snapshot and merges the
// results into the ranked insight list. Zero records yield an empty list.
func (e *Engine) GenerateInsights(patientID uuid.UUID, records []RawRecord) ([]Insight, error) {
	if len(records) == 0 {
		return []Insight{}, nil
	}

	trends, err := e.AnalyzeTrends(records, "")
	if err != nil {
		return nil, err
	}
	anomalies, err := e.DetectAnomalies(records)
	if err != nil {
		return nil, err
	}
	risks := e.AssessRisks(patientID, records)

	series, _ := BuildSeries(e.reg, records)
	seriesLen := make(map[Metric]int, len(series))
	predictions := make(map[Metric]Prediction)
	for m, s := range series {
		seriesLen[m] = s.Len()
		if p, err := e.predictor.Predict(s, DefaultInsightHorizonDays); err == nil {
			predictions[m] = p
		}
	}

	return e.insights.Generate(patientID, trends, anomalies, risks, predictions, seriesLen), nil
}

func sortedMetrics(series map[Metric]Series) []Metric {
	metrics := make([]Metric, 0, len(series))
	for m := range series {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })
	return metrics
}
