package analytics

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTrendAnalyzer_InsufficientData(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	_, err := a.Analyze(seriesOf(MetricHbA1c, []float64{5.5}, []int{0}))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrendAnalyzer_Deterministic(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	s := seriesOf(MetricLDLCholesterol, []float64{95, 104, 99, 118}, []int{0, 14, 30, 61})

	first, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}

func TestTrendAnalyzer_RisingHbA1cIsDecliningAbnormal(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	s := seriesOf(MetricHbA1c, []float64{5.5, 6.0, 6.8}, []int{0, 30, 60})

	tr, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direction != TrendDeclining {
		t.Errorf("direction = %s, want DECLINING", tr.Direction)
	}
	if tr.RangeStatus != RangeAbnormal {
		t.Errorf("range status = %s, want ABNORMAL", tr.RangeStatus)
	}
	if tr.Strength <= 0.05 {
		t.Errorf("strength = %g, want above dead-band", tr.Strength)
	}
	if tr.LatestValue != 6.8 || tr.Min != 5.5 || tr.Max != 6.8 {
		t.Errorf("summary stats wrong: %+v", tr)
	}
	wantChange := (6.8 - 5.5) / 5.5
	if math.Abs(tr.ChangePct-wantChange) > 1e-9 {
		t.Errorf("change_pct = %g, want %g", tr.ChangePct, wantChange)
	}
}

func TestTrendAnalyzer_FallingHDLIsDeclining(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	s := seriesOf(MetricHDLCholesterol, []float64{55, 48, 38}, []int{0, 45, 90})

	tr, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direction != TrendDeclining {
		t.Errorf("falling HDL should read DECLINING, got %s", tr.Direction)
	}
	if tr.Strength >= 0 {
		t.Errorf("strength should be negative for a falling series, got %g", tr.Strength)
	}
}

func TestTrendAnalyzer_RangeCentered(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())

	// Moving inside the band reads stable no matter the slope.
	inside := seriesOf(MetricHemoglobin, []float64{12.5, 14.0, 16.5}, []int{0, 30, 60})
	tr, err := a.Analyze(inside)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direction != TrendStable {
		t.Errorf("in-band hemoglobin should be STABLE, got %s", tr.Direction)
	}

	// Rising past the top of the band is moving away: declining.
	leaving := seriesOf(MetricHemoglobin, []float64{15.0, 17.0, 19.5}, []int{0, 30, 60})
	tr, err = a.Analyze(leaving)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direction != TrendDeclining {
		t.Errorf("hemoglobin leaving the band should be DECLINING, got %s", tr.Direction)
	}

	// Below the band but climbing back is improving.
	recovering := seriesOf(MetricHemoglobin, []float64{8.0, 9.5, 11.0}, []int{0, 30, 60})
	tr, err = a.Analyze(recovering)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Direction != TrendImproving {
		t.Errorf("hemoglobin recovering toward the band should be IMPROVING, got %s", tr.Direction)
	}
}

func TestTrendAnalyzer_BorderlineStatus(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	// HbA1c range 4.0-5.6, width 1.6, margin 0.16: 5.7 is borderline.
	s := seriesOf(MetricHbA1c, []float64{5.6, 5.7}, []int{0, 30})

	tr, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if tr.RangeStatus != RangeBorderline {
		t.Errorf("5.7 should be BORDERLINE, got %s", tr.RangeStatus)
	}
}

func TestTrendAnalyzer_ZeroFirstValue(t *testing.T) {
	a := NewTrendAnalyzer(NewRegistry())
	s := seriesOf(MetricTriglycerides, []float64{0, 120}, []int{0, 30})

	tr, err := a.Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if tr.ChangePct != 0 {
		t.Errorf("change_pct with first==0 should be 0, got %g", tr.ChangePct)
	}
}
