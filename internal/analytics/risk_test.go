package analytics

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func findScore(scores []RiskScore, cat RiskCategory) *RiskScore {
	for i := range scores {
		if scores[i].Category == cat {
			return &scores[i]
		}
	}
	return nil
}

func TestRiskAssessor_DiabeticHbA1c(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{MetricHbA1c: 6.8})

	diabetes := findScore(scores, RiskDiabetes)
	if diabetes == nil {
		t.Fatal("expected a DIABETES score")
	}
	if diabetes.Level != RiskHigh && diabetes.Level != RiskCritical {
		t.Errorf("level = %s, want HIGH or CRITICAL", diabetes.Level)
	}
	if len(diabetes.ContributingFactors) != 1 {
		t.Fatalf("expected one contributing factor, got %v", diabetes.ContributingFactors)
	}
	factor := diabetes.ContributingFactors[0]
	if !strings.Contains(factor, "6.8") || !strings.Contains(factor, "6.5") {
		t.Errorf("factor should cite value 6.8 and threshold 6.5: %q", factor)
	}
	if len(diabetes.Recommendations) == 0 {
		t.Error("expected recommendations for an elevated score")
	}
}

func TestRiskAssessor_PreDiabeticIsModerate(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{MetricHbA1c: 6.0, MetricFastingBloodSugar: 110})

	diabetes := findScore(scores, RiskDiabetes)
	if diabetes == nil {
		t.Fatal("expected a DIABETES score")
	}
	if diabetes.Level != RiskModerate {
		t.Errorf("level = %s (score %.1f), want MODERATE", diabetes.Level, diabetes.Score)
	}
	if len(diabetes.ContributingFactors) != 2 {
		t.Errorf("both metrics breach the moderate threshold, factors = %v", diabetes.ContributingFactors)
	}
}

func TestRiskAssessor_OmitsCategoriesWithoutInputs(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{MetricHbA1c: 5.2})

	if findScore(scores, RiskHypertension) != nil {
		t.Error("HYPERTENSION should be omitted without blood pressure readings")
	}
	if findScore(scores, RiskHeartDisease) != nil {
		t.Error("HEART_DISEASE should be omitted without lipid readings")
	}
	if len(scores) != 1 {
		t.Errorf("expected only DIABETES, got %d scores", len(scores))
	}
}

func TestRiskAssessor_HealthyInputsScoreZero(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{
		MetricSystolicBP:  112,
		MetricDiastolicBP: 72,
	})

	hyp := findScore(scores, RiskHypertension)
	if hyp == nil {
		t.Fatal("category with inputs present must be reported even when healthy")
	}
	if hyp.Score != 0 || hyp.Level != RiskLow {
		t.Errorf("healthy BP scored %.1f/%s, want 0/LOW", hyp.Score, hyp.Level)
	}
	if len(hyp.ContributingFactors) != 0 {
		t.Errorf("nothing breached, factors = %v", hyp.ContributingFactors)
	}
}

func TestRiskAssessor_HypertensiveCrisisIsCritical(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{
		MetricSystolicBP:  185,
		MetricDiastolicBP: 72,
	})

	hyp := findScore(scores, RiskHypertension)
	if hyp == nil {
		t.Fatal("expected a HYPERTENSION score")
	}
	// 185 saturates the systolic sub-score; the healthy diastolic reading
	// does not dilute it.
	if hyp.Level != RiskCritical {
		t.Errorf("level = %s (score %.1f), want CRITICAL", hyp.Level, hyp.Score)
	}
}

func TestRiskAssessor_LowHDLContributes(t *testing.T) {
	a := NewRiskAssessor(NewRegistry())
	scores := a.Assess(uuid.New(), map[Metric]float64{MetricHDLCholesterol: 28})

	heart := findScore(scores, RiskHeartDisease)
	if heart == nil {
		t.Fatal("expected a HEART_DISEASE score")
	}
	if heart.Score < 50 {
		t.Errorf("HDL of 28 is past the high threshold, score = %.1f", heart.Score)
	}
	if len(heart.ContributingFactors) != 1 || !strings.Contains(heart.ContributingFactors[0], "below") {
		t.Errorf("expected a below-threshold factor, got %v", heart.ContributingFactors)
	}
}
