package insights

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Replace* swap out the patient's stored results. Refresh runs all three
	// inside one transaction so readers never see a half-updated analysis.
	ReplaceTrends(ctx context.Context, patientID uuid.UUID, trends []*StoredTrend) error
	ReplaceRisks(ctx context.Context, patientID uuid.UUID, risks []*StoredRisk) error
	ReplaceInsights(ctx context.Context, patientID uuid.UUID, insights []*StoredInsight) error

	ListTrends(ctx context.Context, patientID uuid.UUID, metric string) ([]*StoredTrend, error)
	ListRisks(ctx context.Context, patientID uuid.UUID) ([]*StoredRisk, error)
	ListInsights(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StoredInsight, int, error)
}
