package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/healthlens/healthlens/internal/analytics"
	"github.com/healthlens/healthlens/internal/platform/db"
)

// SnapshotSource yields a patient's processed records for analysis.
type SnapshotSource interface {
	Snapshot(ctx context.Context, patientID uuid.UUID) ([]analytics.RawRecord, error)
}

// RefreshSummary reports what a Refresh run produced.
type RefreshSummary struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Trends     int       `json:"trends"`
	Risks      int       `json:"risks"`
	Insights   int       `json:"insights"`
	ComputedAt time.Time `json:"computed_at"`
}

// Service runs the analysis pipeline over a patient's records and persists
// the results. Reads serve the stored results of the latest run; predictions
// are computed on the fly.
type Service struct {
	repo   Repository
	source SnapshotSource
	engine *analytics.Engine
	log    zerolog.Logger
	inTx   func(ctx context.Context, fn func(context.Context) error) error

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService wires the analysis service. pool may be nil in tests; Replace
// calls then run outside a transaction.
func NewService(repo Repository, source SnapshotSource, engine *analytics.Engine, pool *pgxpool.Pool, log zerolog.Logger) *Service {
	inTx := func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	if pool != nil {
		inTx = func(ctx context.Context, fn func(context.Context) error) error {
			return db.InTx(ctx, pool, fn)
		}
	}
	return &Service{
		repo:   repo,
		source: source,
		engine: engine,
		log:    log,
		inTx:   inTx,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

// patientLock serializes refreshes per patient. Concurrent refreshes for
// different patients proceed in parallel.
func (s *Service) patientLock(patientID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[patientID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[patientID] = l
	}
	return l
}

// Refresh recomputes trends, risks, and insights from the patient's current
// record snapshot and atomically replaces the stored results.
func (s *Service) Refresh(ctx context.Context, patientID uuid.UUID) (*RefreshSummary, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	records, err := s.source.Snapshot(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load record snapshot: %w", err)
	}

	trends, err := s.engine.AnalyzeTrends(records, "")
	if err != nil {
		return nil, fmt.Errorf("analyze trends: %w", err)
	}
	risks := s.engine.AssessRisks(patientID, records)
	generated, err := s.engine.GenerateInsights(patientID, records)
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	computedAt := time.Now().UTC()
	storedTrends := make([]*StoredTrend, 0, len(trends))
	for _, t := range trends {
		storedTrends = append(storedTrends, trendFromResult(t, computedAt))
	}
	storedRisks := make([]*StoredRisk, 0, len(risks))
	for _, rk := range risks {
		storedRisks = append(storedRisks, riskFromScore(rk, computedAt))
	}
	storedInsights := make([]*StoredInsight, 0, len(generated))
	for i, in := range generated {
		storedInsights = append(storedInsights, insightFromResult(in, i, computedAt))
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.ReplaceTrends(ctx, patientID, storedTrends); err != nil {
			return err
		}
		if err := s.repo.ReplaceRisks(ctx, patientID, storedRisks); err != nil {
			return err
		}
		return s.repo.ReplaceInsights(ctx, patientID, storedInsights)
	})
	if err != nil {
		return nil, fmt.Errorf("store analysis results: %w", err)
	}

	s.log.Info().
		Str("patient_id", patientID.String()).
		Int("records", len(records)).
		Int("trends", len(storedTrends)).
		Int("risks", len(storedRisks)).
		Int("insights", len(storedInsights)).
		Msg("analysis refreshed")

	return &RefreshSummary{
		PatientID:  patientID,
		Trends:     len(storedTrends),
		Risks:      len(storedRisks),
		Insights:   len(storedInsights),
		ComputedAt: computedAt,
	}, nil
}

// Trends returns stored trends for the patient, optionally narrowed to one
// metric. The metric name is validated even when no results are stored.
func (s *Service) Trends(ctx context.Context, patientID uuid.UUID, metric string) ([]*StoredTrend, error) {
	if metric != "" {
		if _, ok := s.engine.Registry().Lookup(metric); !ok {
			return nil, fmt.Errorf("%w: %q", analytics.ErrUnknownMetric, metric)
		}
	}
	return s.repo.ListTrends(ctx, patientID, metric)
}

// Risks returns the stored risk scores for the patient.
func (s *Service) Risks(ctx context.Context, patientID uuid.UUID) ([]*StoredRisk, error) {
	return s.repo.ListRisks(ctx, patientID)
}

// Insights returns the stored ranked insights for the patient.
func (s *Service) Insights(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StoredInsight, int, error) {
	return s.repo.ListInsights(ctx, patientID, limit, offset)
}

// Predict extrapolates one metric from the patient's current snapshot. The
// result is not persisted: forecasts go stale the moment a record lands.
func (s *Service) Predict(ctx context.Context, patientID uuid.UUID, metric string, daysAhead int) (analytics.Prediction, error) {
	records, err := s.source.Snapshot(ctx, patientID)
	if err != nil {
		return analytics.Prediction{}, fmt.Errorf("load record snapshot: %w", err)
	}
	return s.engine.Predict(records, analytics.Metric(metric), daysAhead)
}
