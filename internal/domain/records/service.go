package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthlens/healthlens/internal/analytics"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validCategories = map[string]bool{
	CategoryLabReport: true, CategoryVitals: true, CategoryImaging: true,
	CategoryPrescription: true, CategoryOther: true,
}

var validStatuses = map[string]bool{
	StatusPending: true, StatusProcessed: true, StatusError: true,
}

func (s *Service) Create(ctx context.Context, rec *HealthRecord) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.RecordDate.IsZero() {
		return fmt.Errorf("record_date is required")
	}
	if rec.RecordDate.After(time.Now().AddDate(0, 0, 1)) {
		return fmt.Errorf("record_date is in the future")
	}
	if rec.Category == "" {
		rec.Category = CategoryOther
	}
	if !validCategories[rec.Category] {
		return fmt.Errorf("invalid category: %s", rec.Category)
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if !validStatuses[rec.Status] {
		return fmt.Errorf("invalid status: %s", rec.Status)
	}
	// Records created with values in hand are immediately analyzable.
	if rec.Status == StatusPending && len(rec.ExtractedValues) > 0 {
		rec.Status = StatusProcessed
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, rec *HealthRecord) error {
	if rec.Category != "" && !validCategories[rec.Category] {
		return fmt.Errorf("invalid category: %s", rec.Category)
	}
	if rec.Status != "" && !validStatuses[rec.Status] {
		return fmt.Errorf("invalid status: %s", rec.Status)
	}
	return s.repo.Update(ctx, rec)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// MarkProcessed attaches extracted values to a pending record and makes it
// visible to the analysis pipeline.
func (s *Service) MarkProcessed(ctx context.Context, id uuid.UUID, values map[string]analytics.RawValue) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rec.ExtractedValues = values
	rec.Status = StatusProcessed
	rec.ProcessingError = nil
	return s.repo.Update(ctx, rec)
}

// MarkFailed records an extraction failure. Errored records are excluded
// from analysis until reprocessed.
func (s *Service) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.repo.SetStatus(ctx, id, StatusError, &reason)
}

// Snapshot returns the patient's processed records in the shape the
// analysis engine consumes, oldest first.
func (s *Service) Snapshot(ctx context.Context, patientID uuid.UUID) ([]analytics.RawRecord, error) {
	recs, err := s.repo.ListProcessedByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return ToRawRecords(recs), nil
}
