package records

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *HealthRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error)
	Update(ctx context.Context, r *HealthRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error)
	// ListProcessedByPatient returns every processed record for the patient,
	// oldest first. This is the analysis snapshot feed.
	ListProcessedByPatient(ctx context.Context, patientID uuid.UUID) ([]*HealthRecord, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, processingError *string) error
}
