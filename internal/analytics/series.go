package analytics

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RawValue is one extracted measurement as it arrives from the record store:
// a loosely-typed value plus the unit the document reported.
type RawValue struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// RawRecord is the input contract from the record-storage boundary. Values
// maps raw document labels to extracted measurements.
type RawRecord struct {
	RecordID   uuid.UUID
	PatientID  uuid.UUID
	RecordDate time.Time
	Category   string
	Values     map[string]RawValue
}

// Sample is a validated, canonical-unit measurement. Immutable once built.
type Sample struct {
	PatientID uuid.UUID
	RecordID  uuid.UUID
	Metric    Metric
	Date      time.Time
	Value     float64
	Unit      string
}

// Series is the ordered history of one (patient, metric) pair: ascending by
// date, one sample per day (last ingested wins).
type Series struct {
	PatientID uuid.UUID
	Metric    Metric
	Samples   []Sample
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Samples) }

// Latest returns the most recent sample. Callers must check Len first.
func (s Series) Latest() Sample { return s.Samples[len(s.Samples)-1] }

// Values returns the sample values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sm := range s.Samples {
		out[i] = sm.Value
	}
	return out
}

// DayOffsets returns each sample's age in days relative to the first sample.
func (s Series) DayOffsets() []float64 {
	out := make([]float64, len(s.Samples))
	if len(s.Samples) == 0 {
		return out
	}
	first := s.Samples[0].Date
	for i, sm := range s.Samples {
		out[i] = sm.Date.Sub(first).Hours() / 24
	}
	return out
}

// IngestStats counts what ingestion kept and dropped. Dropped samples are
// recoverable conditions, not failures; the boundary logs them.
type IngestStats struct {
	Accepted        int
	UnknownMetric   int
	Malformed       int
	UnsupportedUnit int
}

// BuildSeries turns raw records into per-metric series for one patient.
// Unknown metric labels, non-numeric values, and inconvertible units are
// skipped and counted. Two samples on the same calendar day for the same
// metric collapse to the later-ingested one.
func BuildSeries(reg *Registry, records []RawRecord) (map[Metric]Series, IngestStats) {
	var stats IngestStats
	type dayKey struct {
		metric Metric
		day    string
	}
	latest := make(map[dayKey]Sample)

	for _, rec := range records {
		for label, rv := range rec.Values {
			metric, ok := reg.Lookup(label)
			if !ok {
				stats.UnknownMetric++
				continue
			}
			raw, ok := numericValue(rv.Value)
			if !ok {
				stats.Malformed++
				continue
			}
			value, err := reg.Convert(metric, raw, rv.Unit)
			if err != nil {
				stats.UnsupportedUnit++
				continue
			}
			nr, _ := reg.Range(metric)
			day := rec.RecordDate.UTC().Truncate(24 * time.Hour)
			latest[dayKey{metric, day.Format("2006-01-02")}] = Sample{
				PatientID: rec.PatientID,
				RecordID:  rec.RecordID,
				Metric:    metric,
				Date:      day,
				Value:     value,
				Unit:      nr.Unit,
			}
			stats.Accepted++
		}
	}

	out := make(map[Metric]Series)
	for k, sample := range latest {
		s := out[k.metric]
		s.Metric = k.metric
		s.PatientID = sample.PatientID
		s.Samples = append(s.Samples, sample)
		out[k.metric] = s
	}
	for m, s := range out {
		sort.Slice(s.Samples, func(i, j int) bool { return s.Samples[i].Date.Before(s.Samples[j].Date) })
		out[m] = s
	}
	return out, stats
}

// numericValue coerces the loosely-typed extracted value into a float64.
// Numeric strings are accepted since OCR output often quotes numbers.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
