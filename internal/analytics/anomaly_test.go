package analytics

import (
	"testing"
)

func TestAnomalyDetector_ConstantSeriesNoStatisticalFlags(t *testing.T) {
	d := NewAnomalyDetector(NewRegistry())
	s := seriesOf(MetricCreatinine, []float64{0.9, 0.9, 0.9, 0.9}, []int{0, 10, 20, 30})

	flags, err := d.Detect(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range flags {
		if f.HasReason(ReasonStatisticalOutlier) {
			t.Fatalf("constant series produced a statistical outlier: %+v", f)
		}
	}
	if len(flags) != 0 {
		t.Errorf("in-range constant series should produce no flags, got %d", len(flags))
	}
}

func TestAnomalyDetector_StatisticalOutlier(t *testing.T) {
	d := NewAnomalyDetector(NewRegistry())
	// One spike in an otherwise tight cluster. Population stddev ~23.9;
	// the 160 reading sits ~2.7 sigma out.
	s := seriesOf(MetricTriglycerides, []float64{95, 96, 94, 95, 97, 95, 160}, []int{0, 10, 20, 30, 40, 50, 60})

	flags, err := d.Detect(s)
	if err != nil {
		t.Fatal(err)
	}
	var spike *AnomalyFlag
	for i := range flags {
		if flags[i].Sample.Value == 160 {
			spike = &flags[i]
		}
	}
	if spike == nil {
		t.Fatal("spike was not flagged")
	}
	if !spike.HasReason(ReasonStatisticalOutlier) {
		t.Errorf("spike missing STATISTICAL_OUTLIER: %+v", spike)
	}
	if !spike.HasReason(ReasonOutOfClinicalRange) {
		t.Errorf("160 mg/dL is above the 150 limit, expected OUT_OF_CLINICAL_RANGE too")
	}
	if spike.ZScore < 2 {
		t.Errorf("z-score = %g, want > 2", spike.ZScore)
	}
}

func TestAnomalyDetector_ColdStartClinicalFlag(t *testing.T) {
	d := NewAnomalyDetector(NewRegistry())
	// A single very first sample can still be clinically out of range.
	s := seriesOf(MetricSystolicBP, []float64{168}, []int{0})

	flags, err := d.Detect(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 1 {
		t.Fatalf("expected 1 flag, got %d", len(flags))
	}
	if !flags[0].HasReason(ReasonOutOfClinicalRange) {
		t.Errorf("expected OUT_OF_CLINICAL_RANGE, got %v", flags[0].Reasons)
	}
	if flags[0].HasReason(ReasonStatisticalOutlier) {
		t.Error("single sample cannot be a statistical outlier")
	}
}

func TestAnomalyDetector_InRangeSeriesClean(t *testing.T) {
	d := NewAnomalyDetector(NewRegistry())
	s := seriesOf(MetricDiastolicBP, []float64{72, 74, 71, 75}, []int{0, 10, 20, 30})

	flags, err := d.Detect(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 0 {
		t.Errorf("healthy series produced flags: %+v", flags)
	}
}
