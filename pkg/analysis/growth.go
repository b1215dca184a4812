package analysis

import (
	"fmt"
	"math"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// GrowthModelKind selects one of the closed set of growth models. New
// models are a maintenance event, not a plugin point.
type GrowthModelKind string

const (
	// Exponential growth: V(t) = V0 * e^(r*t)
	GrowthExponential GrowthModelKind = "exponential"
	// Logistic growth toward a carrying capacity:
	// V(t) = K / (1 + ((K - V0)/V0) * e^(-r*t))
	GrowthLogistic GrowthModelKind = "logistic"
	// Linear growth: V(t) = V0 + r*t
	GrowthLinear GrowthModelKind = "linear"
)

// Calibration constants tying one basal-area unit of annual increment
// to approximate cubic and board foot growth in the linear model.
// Their values have no documented derivation; they are kept for
// compatibility with existing projections.
const (
	linearCuftPerIncrement = 10.0
	linearBdftPerIncrement = 50.0
)

// GrowthModel is a tagged choice among three models, each reading its
// own coefficient fields. Mortality and rate are always explicit.
type GrowthModel struct {
	Kind GrowthModelKind `json:"kind"`
	// Annual growth rate (exponential and logistic models)
	AnnualRate float64 `json:"annual_rate,omitempty"`
	// Basal area carrying capacity, sq ft/acre (logistic model)
	CarryingCapacity float64 `json:"carrying_capacity,omitempty"`
	// Annual basal area increment (linear model)
	AnnualIncrement float64 `json:"annual_increment,omitempty"`
	// Annual mortality: a proportion for exponential/logistic
	// (e.g. 0.005 = 0.5%/yr), absolute TPA/year for linear.
	MortalityRate float64 `json:"mortality_rate"`
}

// Exponential builds an exponential growth model.
func Exponential(annualRate, mortalityRate float64) GrowthModel {
	return GrowthModel{Kind: GrowthExponential, AnnualRate: annualRate, MortalityRate: mortalityRate}
}

// Logistic builds a logistic growth model with a basal area carrying
// capacity in sq ft/acre.
func Logistic(annualRate, carryingCapacity, mortalityRate float64) GrowthModel {
	return GrowthModel{
		Kind:             GrowthLogistic,
		AnnualRate:       annualRate,
		CarryingCapacity: carryingCapacity,
		MortalityRate:    mortalityRate,
	}
}

// Linear builds a linear growth model. MortalityRate is absolute
// TPA lost per year.
func Linear(annualIncrement, mortalityRate float64) GrowthModel {
	return GrowthModel{Kind: GrowthLinear, AnnualIncrement: annualIncrement, MortalityRate: mortalityRate}
}

// GrowthProjection is the projected stand state for one year.
type GrowthProjection struct {
	Year       int     `json:"year"`
	TPA        float64 `json:"tpa"`
	BasalArea  float64 `json:"basal_area"`
	VolumeCuft float64 `json:"volume_cuft"`
	VolumeBdft float64 `json:"volume_bdft"`
}

// ProjectGrowth advances the stand's mean metrics through time under
// the given model. The result always starts with the year-0 baseline
// and holds years+1 entries. All projected values are clamped to >= 0.
func ProjectGrowth(
	inv *domain.ForestInventory,
	eq domain.VolumeEquation,
	model GrowthModel,
	years int,
) ([]GrowthProjection, error) {
	if inv.NumPlots() == 0 {
		return nil, &InsufficientDataError{
			Reason: "no plots available for growth projection",
		}
	}
	if years < 0 {
		return nil, &AnalysisError{
			Reason: fmt.Sprintf("projection years must be non-negative, got %d", years),
		}
	}

	baseline := GrowthProjection{
		Year:       0,
		TPA:        inv.MeanTPA(),
		BasalArea:  inv.MeanBasalArea(),
		VolumeCuft: inv.MeanVolumeCuft(eq),
		VolumeBdft: inv.MeanVolumeBdft(eq),
	}

	projections := make([]GrowthProjection, 0, years+1)
	projections = append(projections, baseline)

	for year := 1; year <= years; year++ {
		t := float64(year)

		var p GrowthProjection
		switch model.Kind {
		case GrowthExponential:
			factor := math.Exp(model.AnnualRate * t)
			p = GrowthProjection{
				TPA:        baseline.TPA * math.Exp(-model.MortalityRate*t),
				BasalArea:  baseline.BasalArea * factor,
				VolumeCuft: baseline.VolumeCuft * factor,
				VolumeBdft: baseline.VolumeBdft * factor,
			}
		case GrowthLogistic:
			// Volume carrying capacities scale with the ratio of the
			// basal area capacity to the baseline basal area.
			baRatio := 1.0
			if baseline.BasalArea > 0 {
				baRatio = model.CarryingCapacity / baseline.BasalArea
			}
			p = GrowthProjection{
				TPA:        baseline.TPA * math.Exp(-model.MortalityRate*t),
				BasalArea:  logisticAt(baseline.BasalArea, model.CarryingCapacity, model.AnnualRate, t),
				VolumeCuft: logisticAt(baseline.VolumeCuft, baseline.VolumeCuft*baRatio, model.AnnualRate, t),
				VolumeBdft: logisticAt(baseline.VolumeBdft, baseline.VolumeBdft*baRatio, model.AnnualRate, t),
			}
		case GrowthLinear:
			p = GrowthProjection{
				TPA:        baseline.TPA - model.MortalityRate*t,
				BasalArea:  baseline.BasalArea + model.AnnualIncrement*t,
				VolumeCuft: baseline.VolumeCuft + model.AnnualIncrement*t*linearCuftPerIncrement,
				VolumeBdft: baseline.VolumeBdft + model.AnnualIncrement*t*linearBdftPerIncrement,
			}
		default:
			return nil, &AnalysisError{
				Reason: fmt.Sprintf("unknown growth model %q", model.Kind),
			}
		}

		p.Year = year
		p.TPA = math.Max(p.TPA, 0)
		p.BasalArea = math.Max(p.BasalArea, 0)
		p.VolumeCuft = math.Max(p.VolumeCuft, 0)
		p.VolumeBdft = math.Max(p.VolumeBdft, 0)
		projections = append(projections, p)
	}

	return projections, nil
}

func logisticAt(v0, k, rate, t float64) float64 {
	if v0 <= 0 {
		return 0
	}
	return k / (1.0 + ((k-v0)/v0)*math.Exp(-rate*t))
}
