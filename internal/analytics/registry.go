package analytics

import (
	"fmt"
	"strings"
)

// Metric is a canonical, registry-known measurement name. Raw document labels
// are matched against these during ingestion; anything else is dropped.
type Metric string

const (
	MetricHbA1c             Metric = "HbA1c"
	MetricFastingBloodSugar Metric = "Fasting Blood Sugar"
	MetricSystolicBP        Metric = "Blood Pressure Systolic"
	MetricDiastolicBP       Metric = "Blood Pressure Diastolic"
	MetricTotalCholesterol  Metric = "Total Cholesterol"
	MetricHDLCholesterol    Metric = "HDL Cholesterol"
	MetricLDLCholesterol    Metric = "LDL Cholesterol"
	MetricTriglycerides     Metric = "Triglycerides"
	MetricHemoglobin        Metric = "Hemoglobin"
	MetricWBCCount          Metric = "WBC Count"
	MetricPlateletCount     Metric = "Platelet Count"
	MetricCreatinine        Metric = "Creatinine"
	MetricALT               Metric = "ALT"
	MetricAST               Metric = "AST"
)

// CanonicalMetrics lists every metric the registry must define.
func CanonicalMetrics() []Metric {
	return []Metric{
		MetricHbA1c, MetricFastingBloodSugar,
		MetricSystolicBP, MetricDiastolicBP,
		MetricTotalCholesterol, MetricHDLCholesterol, MetricLDLCholesterol,
		MetricTriglycerides,
		MetricHemoglobin, MetricWBCCount, MetricPlateletCount,
		MetricCreatinine, MetricALT, MetricAST,
	}
}

// Directionality states which way out of the normal range is clinically bad.
type Directionality string

const (
	HigherIsWorse Directionality = "higher-is-worse"
	LowerIsWorse  Directionality = "lower-is-worse"
	RangeCentered Directionality = "range-centered"
)

// RiskCategory is a composite disease-risk bucket.
type RiskCategory string

const (
	RiskDiabetes     RiskCategory = "DIABETES"
	RiskHypertension RiskCategory = "HYPERTENSION"
	RiskHeartDisease RiskCategory = "HEART_DISEASE"
)

// RiskCategories lists every category the assessor evaluates.
func RiskCategories() []RiskCategory {
	return []RiskCategory{RiskDiabetes, RiskHypertension, RiskHeartDisease}
}

// NormalRange is the clinical reference interval for a metric, in its
// canonical unit.
type NormalRange struct {
	Metric         Metric
	Low            float64
	High           float64
	Unit           string
	Directionality Directionality
}

// Width returns the span of the normal range.
func (nr NormalRange) Width() float64 { return nr.High - nr.Low }

// Contains reports whether v lies inside the range (inclusive).
func (nr NormalRange) Contains(v float64) bool { return v >= nr.Low && v <= nr.High }

// RiskInput is one weighted contributor to a risk category. Moderate and
// High are the clinical thresholds a value must cross to contribute; for
// lower-is-worse metrics (HDL) they descend instead of ascend.
type RiskInput struct {
	Metric   Metric
	Weight   float64
	Moderate float64
	High     float64
}

type conversionKey struct {
	metric Metric
	unit   string
}

// conversion maps a source unit onto the canonical unit: canonical = value*Factor + Offset.
type conversion struct {
	Factor float64
	Offset float64
}

// Registry is the static metric configuration: normal ranges, directionality,
// unit conversions, and risk-category inputs. It is built once at startup,
// validated, and never mutated afterwards.
type Registry struct {
	ranges      map[Metric]NormalRange
	risk        map[RiskCategory][]RiskInput
	conversions map[conversionKey]conversion
}

// NewRegistry builds the default registry. Adding a metric means adding a
// range entry (and optionally conversions / risk inputs) here; nothing else
// in the engine changes.
func NewRegistry() *Registry {
	r := &Registry{
		ranges:      make(map[Metric]NormalRange),
		risk:        make(map[RiskCategory][]RiskInput),
		conversions: make(map[conversionKey]conversion),
	}

	add := func(m Metric, low, high float64, unit string, d Directionality) {
		r.ranges[m] = NormalRange{Metric: m, Low: low, High: high, Unit: unit, Directionality: d}
	}

	add(MetricHbA1c, 4.0, 5.6, "%", HigherIsWorse)
	add(MetricFastingBloodSugar, 70, 100, "mg/dL", HigherIsWorse)
	add(MetricSystolicBP, 90, 120, "mmHg", HigherIsWorse)
	add(MetricDiastolicBP, 60, 80, "mmHg", HigherIsWorse)
	add(MetricTotalCholesterol, 0, 200, "mg/dL", HigherIsWorse)
	add(MetricHDLCholesterol, 40, 90, "mg/dL", LowerIsWorse)
	add(MetricLDLCholesterol, 0, 100, "mg/dL", HigherIsWorse)
	add(MetricTriglycerides, 0, 150, "mg/dL", HigherIsWorse)
	add(MetricHemoglobin, 12, 17.5, "g/dL", RangeCentered)
	add(MetricWBCCount, 4000, 11000, "/cumm", RangeCentered)
	add(MetricPlateletCount, 150000, 450000, "/cumm", RangeCentered)
	add(MetricCreatinine, 0.6, 1.2, "mg/dL", HigherIsWorse)
	add(MetricALT, 7, 56, "U/L", HigherIsWorse)
	add(MetricAST, 10, 40, "U/L", HigherIsWorse)

	r.risk[RiskDiabetes] = []RiskInput{
		{Metric: MetricHbA1c, Weight: 0.6, Moderate: 5.7, High: 6.5},
		{Metric: MetricFastingBloodSugar, Weight: 0.4, Moderate: 100, High: 126},
	}
	r.risk[RiskHypertension] = []RiskInput{
		{Metric: MetricSystolicBP, Weight: 0.5, Moderate: 130, High: 140},
		{Metric: MetricDiastolicBP, Weight: 0.5, Moderate: 80, High: 90},
	}
	r.risk[RiskHeartDisease] = []RiskInput{
		{Metric: MetricTotalCholesterol, Weight: 0.25, Moderate: 200, High: 240},
		{Metric: MetricLDLCholesterol, Weight: 0.35, Moderate: 130, High: 160},
		{Metric: MetricHDLCholesterol, Weight: 0.2, Moderate: 40, High: 30},
		{Metric: MetricTriglycerides, Weight: 0.2, Moderate: 150, High: 200},
	}

	conv := func(m Metric, unit string, factor, offset float64) {
		r.conversions[conversionKey{m, normalizeUnit(unit)}] = conversion{Factor: factor, Offset: offset}
	}

	// IFCC mmol/mol -> NGSP %
	conv(MetricHbA1c, "mmol/mol", 0.09148, 2.152)
	conv(MetricFastingBloodSugar, "mmol/L", 18.0182, 0)
	conv(MetricTotalCholesterol, "mmol/L", 38.67, 0)
	conv(MetricHDLCholesterol, "mmol/L", 38.67, 0)
	conv(MetricLDLCholesterol, "mmol/L", 38.67, 0)
	conv(MetricTriglycerides, "mmol/L", 88.57, 0)
	conv(MetricHemoglobin, "g/L", 0.1, 0)
	conv(MetricWBCCount, "10^3/uL", 1000, 0)
	conv(MetricPlateletCount, "10^3/uL", 1000, 0)
	conv(MetricPlateletCount, "lakh/cumm", 100000, 0)
	conv(MetricCreatinine, "umol/L", 1.0/88.42, 0)

	return r
}

// Validate checks the registry for completeness: every canonical metric has a
// sane range, and every risk input refers to a known metric with positive
// weight. Called once at startup so later lookups cannot silently miss.
func (r *Registry) Validate() error {
	for _, m := range CanonicalMetrics() {
		nr, ok := r.ranges[m]
		if !ok {
			return fmt.Errorf("registry missing normal range for %q", m)
		}
		if nr.Low >= nr.High {
			return fmt.Errorf("registry range for %q is inverted (%g >= %g)", m, nr.Low, nr.High)
		}
		if nr.Unit == "" {
			return fmt.Errorf("registry range for %q has no canonical unit", m)
		}
		switch nr.Directionality {
		case HigherIsWorse, LowerIsWorse, RangeCentered:
		default:
			return fmt.Errorf("registry range for %q has invalid directionality %q", m, nr.Directionality)
		}
	}
	for _, cat := range RiskCategories() {
		inputs := r.risk[cat]
		if len(inputs) == 0 {
			return fmt.Errorf("risk category %q has no inputs", cat)
		}
		for _, in := range inputs {
			if _, ok := r.ranges[in.Metric]; !ok {
				return fmt.Errorf("risk category %q references unknown metric %q", cat, in.Metric)
			}
			if in.Weight <= 0 {
				return fmt.Errorf("risk input %q/%q has non-positive weight", cat, in.Metric)
			}
			if in.Moderate == in.High {
				return fmt.Errorf("risk input %q/%q has degenerate thresholds", cat, in.Metric)
			}
		}
	}
	return nil
}

// Range returns the normal range for a metric.
func (r *Registry) Range(m Metric) (NormalRange, error) {
	nr, ok := r.ranges[m]
	if !ok {
		return NormalRange{}, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}
	return nr, nil
}

// Directionality returns the metric's directionality.
func (r *Registry) Directionality(m Metric) (Directionality, error) {
	nr, err := r.Range(m)
	if err != nil {
		return "", err
	}
	return nr.Directionality, nil
}

// RiskInputs returns the weighted input metrics for a category.
func (r *Registry) RiskInputs(cat RiskCategory) []RiskInput {
	return r.risk[cat]
}

// Lookup resolves a raw label to a canonical metric.
func (r *Registry) Lookup(name string) (Metric, bool) {
	m := Metric(name)
	_, ok := r.ranges[m]
	return m, ok
}

// Convert normalizes a value to the metric's canonical unit. An empty unit or
// the canonical unit itself passes through; otherwise a registered conversion
// is applied. Returns ErrUnsupportedUnit when no conversion is defined.
func (r *Registry) Convert(m Metric, value float64, unit string) (float64, error) {
	nr, err := r.Range(m)
	if err != nil {
		return 0, err
	}
	u := normalizeUnit(unit)
	if u == "" || u == normalizeUnit(nr.Unit) {
		return value, nil
	}
	c, ok := r.conversions[conversionKey{m, u}]
	if !ok {
		return 0, fmt.Errorf("%w: %q for %q", ErrUnsupportedUnit, unit, m)
	}
	return value*c.Factor + c.Offset, nil
}

func normalizeUnit(u string) string {
	u = strings.TrimSpace(strings.ToLower(u))
	u = strings.ReplaceAll(u, "μ", "u")
	u = strings.ReplaceAll(u, "µ", "u")
	return u
}
