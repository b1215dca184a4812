package domain

import (
	"fmt"
	"strings"
)

// Species identifies a tree species by its common name and code.
// Two Species values are the same species when their codes match.
type Species struct {
	// Common name (e.g., "Douglas Fir")
	CommonName string `json:"common_name"`
	// Species code (e.g., "DF", "PSME")
	Code string `json:"code"`
}

func (s Species) String() string {
	return fmt.Sprintf("%s (%s)", s.CommonName, s.Code)
}

// TreeStatus records the condition of a tree at measurement time.
type TreeStatus string

const (
	StatusLive    TreeStatus = "Live"
	StatusDead    TreeStatus = "Dead"
	StatusCut     TreeStatus = "Cut"
	StatusMissing TreeStatus = "Missing"
)

// ParseTreeStatus parses a status string. Full names and one-letter
// codes are accepted, case-insensitively.
func ParseTreeStatus(s string) (TreeStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "l":
		return StatusLive, nil
	case "dead", "d":
		return StatusDead, nil
	case "cut", "c":
		return StatusCut, nil
	case "missing", "m":
		return StatusMissing, nil
	default:
		return "", fmt.Errorf("unknown tree status: %q", s)
	}
}

func (ts TreeStatus) String() string {
	return string(ts)
}
