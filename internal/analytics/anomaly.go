package analytics

// AnomalyReason tags why a sample was flagged.
type AnomalyReason string

const (
	ReasonStatisticalOutlier AnomalyReason = "STATISTICAL_OUTLIER"
	ReasonOutOfClinicalRange AnomalyReason = "OUT_OF_CLINICAL_RANGE"
)

// AnomalyFlag marks one abnormal sample. A sample flagged for both reasons
// is reported once with both tags in Reasons.
type AnomalyFlag struct {
	Sample  Sample          `json:"sample"`
	ZScore  float64         `json:"z_score"`
	Reasons []AnomalyReason `json:"reasons"`
}

// HasReason reports whether the flag carries the given tag.
func (f AnomalyFlag) HasReason(r AnomalyReason) bool {
	for _, have := range f.Reasons {
		if have == r {
			return true
		}
	}
	return false
}

// AnomalyDetector flags statistically or clinically abnormal samples.
type AnomalyDetector struct {
	reg *Registry

	// ZThreshold is the |z| beyond which a sample is a statistical outlier.
	ZThreshold float64
}

// NewAnomalyDetector returns a detector with the default z threshold of 2.0.
func NewAnomalyDetector(reg *Registry) *AnomalyDetector {
	return &AnomalyDetector{reg: reg, ZThreshold: 2.0}
}

// Detect scans a series for anomalies. Statistical flags need at least two
// samples and a non-zero stddev; a constant series yields none. Clinical
// range flags apply to every sample, including a cold-start series of one.
// Flags come back in series (date) order.
func (d *AnomalyDetector) Detect(s Series) ([]AnomalyFlag, error) {
	if s.Len() == 0 {
		return nil, nil
	}
	nr, err := d.reg.Range(s.Metric)
	if err != nil {
		return nil, err
	}

	mean, stddev := meanStddev(s.Values())
	statistical := s.Len() >= 2 && stddev > 0

	var flags []AnomalyFlag
	for _, sample := range s.Samples {
		var reasons []AnomalyReason
		var z float64
		if statistical {
			z = (sample.Value - mean) / stddev
			if abs(z) > d.ZThreshold {
				reasons = append(reasons, ReasonStatisticalOutlier)
			}
		}
		if sample.Value < nr.Low || sample.Value > nr.High {
			reasons = append(reasons, ReasonOutOfClinicalRange)
		}
		if len(reasons) > 0 {
			flags = append(flags, AnomalyFlag{Sample: sample, ZScore: z, Reasons: reasons})
		}
	}
	return flags, nil
}
