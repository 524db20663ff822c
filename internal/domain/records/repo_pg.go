package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthlens/healthlens/internal/analytics"
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

const recordCols = `id, patient_id, record_date, category, description,
	extracted_values, status, processing_error, created_at, updated_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var rec HealthRecord
	var values []byte
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.RecordDate, &rec.Category, &rec.Description,
		&values, &rec.Status, &rec.ProcessingError, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &rec.ExtractedValues); err != nil {
			return nil, fmt.Errorf("decode extracted_values for %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *HealthRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ExtractedValues == nil {
		rec.ExtractedValues = map[string]analytics.RawValue{}
	}
	values, err := json.Marshal(rec.ExtractedValues)
	if err != nil {
		return fmt.Errorf("encode extracted_values: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO health_record (id, patient_id, record_date, category, description,
			extracted_values, status, processing_error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.PatientID, rec.RecordDate, rec.Category, rec.Description,
		values, rec.Status, rec.ProcessingError)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM health_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *HealthRecord) error {
	values, err := json.Marshal(rec.ExtractedValues)
	if err != nil {
		return fmt.Errorf("encode extracted_values: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE health_record SET record_date=$2, category=$3, description=$4,
			extracted_values=$5, status=$6, processing_error=$7, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.RecordDate, rec.Category, rec.Description,
		values, rec.Status, rec.ProcessingError)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM health_record WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM health_record
		WHERE patient_id = $1 ORDER BY record_date DESC, created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListProcessedByPatient(ctx context.Context, patientID uuid.UUID) ([]*HealthRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM health_record
		WHERE patient_id = $1 AND status = $2 ORDER BY record_date ASC, created_at ASC`,
		patientID, StatusProcessed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string, processingError *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_record SET status=$2, processing_error=$3, updated_at=NOW()
		WHERE id = $1`, id, status, processingError)
	return err
}
