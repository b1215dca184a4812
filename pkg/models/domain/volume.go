package domain

// VolumeEquation holds the coefficients used by the tree volume
// estimators. Swapping coefficients (e.g., regional or species-group
// fits) never requires touching the call sites.
//
// Cubic foot volume:          V = CuftB1 * DBH^2 * H
// Board foot volume (Scribner): V = BdftB1 * DBH^2 * H - BdftB2 * DBH
type VolumeEquation struct {
	CuftB1 float64 `json:"cuft_b1" mapstructure:"cuft_b1"`
	BdftB1 float64 `json:"bdft_b1" mapstructure:"bdft_b1"`
	BdftB2 float64 `json:"bdft_b2" mapstructure:"bdft_b2"`
	// Minimum DBH for board foot merchantability, inches.
	BdftMinDBH float64 `json:"bdft_min_dbh" mapstructure:"bdft_min_dbh"`
}

// DefaultVolumeEquation returns the general-purpose coefficient set.
// Species-specific coefficients would improve accuracy.
func DefaultVolumeEquation() VolumeEquation {
	return VolumeEquation{
		CuftB1:     0.002454,
		BdftB1:     0.01159,
		BdftB2:     4.0,
		BdftMinDBH: 6.0,
	}
}
