package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// ConfidenceInterval is a two-sided Student's-t interval for one
// per-acre metric.
type ConfidenceInterval struct {
	Mean                 float64 `json:"mean"`
	StdError             float64 `json:"std_error"`
	Lower                float64 `json:"lower"`
	Upper                float64 `json:"upper"`
	ConfidenceLevel      float64 `json:"confidence_level"`
	SampleSize           int     `json:"sample_size"`
	SamplingErrorPercent float64 `json:"sampling_error_percent"`
}

// SamplingStatistics carries the confidence intervals for the four
// per-plot metrics.
type SamplingStatistics struct {
	TPA        ConfidenceInterval `json:"tpa"`
	BasalArea  ConfidenceInterval `json:"basal_area"`
	VolumeCuft ConfidenceInterval `json:"volume_cuft"`
	VolumeBdft ConfidenceInterval `json:"volume_bdft"`
}

// ComputeSamplingStatistics computes confidence intervals over the
// per-plot metric values at the given confidence level (e.g. 0.95).
// At least 2 plots are required to estimate between-plot variance.
func ComputeSamplingStatistics(
	inv *domain.ForestInventory,
	eq domain.VolumeEquation,
	confidence float64,
) (SamplingStatistics, error) {
	if inv.NumPlots() < 2 {
		return SamplingStatistics{}, &InsufficientDataError{
			Reason: "need at least 2 plots for statistical analysis",
		}
	}

	n := inv.NumPlots()
	tpa := make([]float64, 0, n)
	ba := make([]float64, 0, n)
	volCuft := make([]float64, 0, n)
	volBdft := make([]float64, 0, n)
	for i := range inv.Plots {
		p := &inv.Plots[i]
		tpa = append(tpa, p.TreesPerAcre())
		ba = append(ba, p.BasalAreaPerAcre())
		volCuft = append(volCuft, p.VolumeCuftPerAcre(eq))
		volBdft = append(volBdft, p.VolumeBdftPerAcre(eq))
	}

	var stats SamplingStatistics
	var err error
	if stats.TPA, err = computeCI(tpa, confidence); err != nil {
		return SamplingStatistics{}, err
	}
	if stats.BasalArea, err = computeCI(ba, confidence); err != nil {
		return SamplingStatistics{}, err
	}
	if stats.VolumeCuft, err = computeCI(volCuft, confidence); err != nil {
		return SamplingStatistics{}, err
	}
	if stats.VolumeBdft, err = computeCI(volBdft, confidence); err != nil {
		return SamplingStatistics{}, err
	}
	return stats, nil
}

// computeCI builds a two-sided confidence interval over a sample.
func computeCI(values []float64, confidence float64) (ConfidenceInterval, error) {
	n := len(values)
	if n < 2 {
		return ConfidenceInterval{}, &InsufficientDataError{
			Reason: "need at least 2 observations",
		}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sqDevSum float64
	for _, v := range values {
		d := v - mean
		sqDevSum += d * d
	}
	variance := sqDevSum / float64(n-1)
	stdError := math.Sqrt(variance / float64(n))

	tCritical, err := studentTQuantile(float64(n-1), confidence)
	if err != nil {
		return ConfidenceInterval{}, err
	}

	margin := tCritical * stdError
	var samplingErrorPercent float64
	if math.Abs(mean) > machineEpsilon {
		samplingErrorPercent = margin / mean * 100.0
	}

	return ConfidenceInterval{
		Mean:                 mean,
		StdError:             stdError,
		Lower:                mean - margin,
		Upper:                mean + margin,
		ConfidenceLevel:      confidence,
		SampleSize:           n,
		SamplingErrorPercent: samplingErrorPercent,
	}, nil
}

const machineEpsilon = 2.220446049250313e-16

// studentTQuantile evaluates the inverse CDF of the Student's-t
// distribution (location 0, scale 1) at the two-sided critical
// probability for the given confidence level.
func studentTQuantile(df, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, &AnalysisError{
			Reason: fmt.Sprintf("confidence level must be within (0, 1), got %g", confidence),
		}
	}
	if df <= 0 {
		return 0, &AnalysisError{
			Reason: fmt.Sprintf("degrees of freedom must be positive, got %g", df),
		}
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	alpha := 1.0 - confidence
	return dist.Quantile(1.0 - alpha/2.0), nil
}
