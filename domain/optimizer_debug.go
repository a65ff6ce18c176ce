package domain

// DebugSelection exposes the score components behind one ranked variant.
type DebugSelection struct {
	VariantID     string  `json:"variant_id"`
	Impressions   int64   `json:"impressions"`
	Successes     int64   `json:"successes"`
	PredictedRate float64 `json:"predicted_rate"` // -1 when absent
	Alpha         float64 `json:"alpha"`          // effective posterior alpha
	Beta          float64 `json:"beta"`           // effective posterior beta
	PosteriorMean float64 `json:"posterior_mean"` // alpha / (alpha + beta)
	SampledScore  float64 `json:"sampled_score"`  // the Thompson draw
	Experienced   bool    `json:"experienced"`
}
