package insights

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthlens/healthlens/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

// -- trends --

const trendCols = `id, patient_id, metric_name, direction, strength,
	mean_value, min_value, max_value, change_pct, latest_value,
	range_status, sample_count, computed_at`

func scanTrend(row pgx.Row) (*StoredTrend, error) {
	var t StoredTrend
	err := row.Scan(&t.ID, &t.PatientID, &t.Metric, &t.Direction, &t.Strength,
		&t.Mean, &t.MinValue, &t.MaxValue, &t.ChangePct, &t.LatestValue,
		&t.RangeStatus, &t.SampleCount, &t.ComputedAt)
	return &t, err
}

func (r *repoPG) ReplaceTrends(ctx context.Context, patientID uuid.UUID, trends []*StoredTrend) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM health_trend WHERE patient_id = $1`, patientID); err != nil {
		return err
	}
	for _, t := range trends {
		if _, err := conn.Exec(ctx, `
			INSERT INTO health_trend (id, patient_id, metric_name, direction, strength,
				mean_value, min_value, max_value, change_pct, latest_value,
				range_status, sample_count, computed_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			t.ID, t.PatientID, t.Metric, t.Direction, t.Strength,
			t.Mean, t.MinValue, t.MaxValue, t.ChangePct, t.LatestValue,
			t.RangeStatus, t.SampleCount, t.ComputedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListTrends(ctx context.Context, patientID uuid.UUID, metric string) ([]*StoredTrend, error) {
	query := `SELECT ` + trendCols + ` FROM health_trend WHERE patient_id = $1`
	args := []interface{}{patientID}
	if metric != "" {
		query += ` AND metric_name = $2`
		args = append(args, metric)
	}
	query += ` ORDER BY metric_name ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StoredTrend
	for rows.Next() {
		t, err := scanTrend(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// -- risks --

const riskCols = `id, patient_id, category, score, level,
	contributing_factors, recommendations, computed_at`

func scanRisk(row pgx.Row) (*StoredRisk, error) {
	var rk StoredRisk
	err := row.Scan(&rk.ID, &rk.PatientID, &rk.Category, &rk.Score, &rk.Level,
		&rk.ContributingFactors, &rk.Recommendations, &rk.ComputedAt)
	return &rk, err
}

func (r *repoPG) ReplaceRisks(ctx context.Context, patientID uuid.UUID, risks []*StoredRisk) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM health_risk WHERE patient_id = $1`, patientID); err != nil {
		return err
	}
	for _, rk := range risks {
		if _, err := conn.Exec(ctx, `
			INSERT INTO health_risk (id, patient_id, category, score, level,
				contributing_factors, recommendations, computed_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			rk.ID, rk.PatientID, rk.Category, rk.Score, rk.Level,
			rk.ContributingFactors, rk.Recommendations, rk.ComputedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListRisks(ctx context.Context, patientID uuid.UUID) ([]*StoredRisk, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+riskCols+` FROM health_risk
		WHERE patient_id = $1 ORDER BY category ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StoredRisk
	for rows.Next() {
		rk, err := scanRisk(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rk)
	}
	return items, rows.Err()
}

// -- insights --

const insightCols = `id, patient_id, kind, category, metric_name, severity,
	message, confidence, source_refs, rank, computed_at`

func scanInsight(row pgx.Row) (*StoredInsight, error) {
	var in StoredInsight
	err := row.Scan(&in.ID, &in.PatientID, &in.Kind, &in.Category, &in.Metric, &in.Severity,
		&in.Message, &in.Confidence, &in.SourceRefs, &in.Rank, &in.ComputedAt)
	return &in, err
}

func (r *repoPG) ReplaceInsights(ctx context.Context, patientID uuid.UUID, insights []*StoredInsight) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM health_insight WHERE patient_id = $1`, patientID); err != nil {
		return err
	}
	for _, in := range insights {
		if _, err := conn.Exec(ctx, `
			INSERT INTO health_insight (id, patient_id, kind, category, metric_name, severity,
				message, confidence, source_refs, rank, computed_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			in.ID, in.PatientID, in.Kind, in.Category, in.Metric, in.Severity,
			in.Message, in.Confidence, in.SourceRefs, in.Rank, in.ComputedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListInsights(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StoredInsight, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_insight WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+insightCols+` FROM health_insight
		WHERE patient_id = $1 ORDER BY rank ASC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StoredInsight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, in)
	}
	return items, total, rows.Err()
}
