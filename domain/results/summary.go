package results

import (
	"github.com/montanaflynn/stats"
)

// BandCount is the count and share of one risk band
type BandCount struct {
	Band    RiskBand `json:"band"`
	Count   int      `json:"count"`
	Percent float64  `json:"percent"`
}

// Summary holds the dashboard-level statistics for one table. Percentages
// are computed over the table passed in; the caller decides whether that is
// the full table or a filtered subset.
type Summary struct {
	Total           int         `json:"total"`
	BandCounts      []BandCount `json:"band_counts"`
	HighRiskCount   int         `json:"high_risk_count"`
	HighRiskPct     float64     `json:"high_risk_pct"`
	PositiveCount   int         `json:"positive_count"`
	NegativeCount   int         `json:"negative_count"`
	MeanProbability float64     `json:"mean_probability"`
	MeanUncertainty float64     `json:"mean_uncertainty"`
	ImagesAvailable int         `json:"images_available"`
}

// Summarize computes summary statistics over the table. An empty table
// yields zeroed values, never NaN and never a panic.
func Summarize(table *CaseTable) Summary {
	s := Summary{BandCounts: make([]BandCount, 0, len(Bands)+1)}
	if table == nil || table.IsEmpty() {
		for _, b := range Bands {
			s.BandCounts = append(s.BandCounts, BandCount{Band: b})
		}
		return s
	}

	s.Total = table.Len()
	counts := make(map[RiskBand]int, len(Bands)+1)
	probs := make([]float64, 0, s.Total)
	uncerts := make([]float64, 0, s.Total)
	for _, r := range table.Records {
		counts[r.Band]++
		probs = append(probs, r.PCalibrated)
		uncerts = append(uncerts, r.UncertaintyStd)
		if r.YTrue == 1 {
			s.PositiveCount++
		} else {
			s.NegativeCount++
		}
		if r.HasImage {
			s.ImagesAvailable++
		}
	}

	total := float64(s.Total)
	for _, b := range Bands {
		s.BandCounts = append(s.BandCounts, BandCount{
			Band:    b,
			Count:   counts[b],
			Percent: float64(counts[b]) / total * 100,
		})
	}
	if n := counts[BandUnknown]; n > 0 {
		s.BandCounts = append(s.BandCounts, BandCount{
			Band:    BandUnknown,
			Count:   n,
			Percent: float64(n) / total * 100,
		})
	}

	s.HighRiskCount = counts[BandHigh]
	s.HighRiskPct = float64(s.HighRiskCount) / total * 100

	// stats.Mean errors only on empty input, which the guard above rules out
	if mean, err := stats.Mean(probs); err == nil {
		s.MeanProbability = mean
	}
	if mean, err := stats.Mean(uncerts); err == nil {
		s.MeanUncertainty = mean
	}
	return s
}
