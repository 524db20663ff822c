package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthlens/healthlens/internal/analytics"
)

// Record statuses. A record enters the store as pending, becomes processed
// once its extracted values are available to the analysis pipeline, and is
// marked error when extraction failed.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusError     = "error"
)

// Record categories.
const (
	CategoryLabReport    = "LAB_REPORT"
	CategoryVitals       = "VITALS"
	CategoryImaging      = "IMAGING"
	CategoryPrescription = "PRESCRIPTION"
	CategoryOther        = "OTHER"
)

// HealthRecord maps to the health_record table. ExtractedValues is stored as
// JSONB: metric label to {value, unit} pairs as they came off the source
// document, before unit normalization.
type HealthRecord struct {
	ID              uuid.UUID                      `db:"id" json:"id"`
	PatientID       uuid.UUID                      `db:"patient_id" json:"patient_id"`
	RecordDate      time.Time                      `db:"record_date" json:"record_date"`
	Category        string                         `db:"category" json:"category"`
	Description     *string                        `db:"description" json:"description,omitempty"`
	ExtractedValues map[string]analytics.RawValue  `db:"extracted_values" json:"extracted_values"`
	Status          string                         `db:"status" json:"status"`
	ProcessingError *string                        `db:"processing_error" json:"processing_error,omitempty"`
	CreatedAt       time.Time                      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time                      `db:"updated_at" json:"updated_at"`
}

// ToRaw converts the record into the shape the analysis engine consumes.
func (r *HealthRecord) ToRaw() analytics.RawRecord {
	return analytics.RawRecord{
		RecordID:   r.ID,
		PatientID:  r.PatientID,
		RecordDate: r.RecordDate,
		Category:   r.Category,
		Values:     r.ExtractedValues,
	}
}

// ToRawRecords converts the processed subset of records for analysis.
// Pending and errored records never feed the pipeline.
func ToRawRecords(records []*HealthRecord) []analytics.RawRecord {
	out := make([]analytics.RawRecord, 0, len(records))
	for _, r := range records {
		if r.Status != StatusProcessed {
			continue
		}
		out = append(out, r.ToRaw())
	}
	return out
}
