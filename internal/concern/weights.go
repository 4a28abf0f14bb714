// Package concern scores windows with weighted indicators and maps the
// total to a DEFCON-style level (1 = highest concern, 5 = informational).
package concern

// Weights holds the points each indicator contributes. Passed explicitly so
// policy can come from configuration rather than package globals.
type Weights struct {
	OffScreen               int `yaml:"off-screen"`
	Shrunk                  int `yaml:"shrunk"`
	Dialog                  int `yaml:"dialog"`
	PartiallyOffScreen      int `yaml:"partially-off-screen"`
	Cloaked                 int `yaml:"cloaked"`
	ShellCloaked            int `yaml:"shell-cloaked"`
	TrustVerificationFailed int `yaml:"trust-verification-failed"`
}

// DefaultWeights returns the shipped scoring policy. Trust verification
// failure carries the single highest weight: something wearing a recognized
// name without the credentials to back it is maximally alarming.
func DefaultWeights() Weights {
	return Weights{
		OffScreen:               4,
		Shrunk:                  3,
		Dialog:                  2,
		PartiallyOffScreen:      2,
		Cloaked:                 1,
		ShellCloaked:            1,
		TrustVerificationFailed: 5,
	}
}

// LevelForScore maps a score to a concern level with an explicit step
// function. Level 0 means unflagged.
func LevelForScore(score int) int {
	switch {
	case score >= 5:
		return 1
	case score == 4:
		return 2
	case score == 3:
		return 3
	case score == 2:
		return 4
	case score == 1:
		return 5
	default:
		return 0
	}
}
