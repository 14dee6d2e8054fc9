package domain

// Default quality-gate thresholds applied when a configuration omits them.
// Complexity and Halstead limits are upper bounds; maintainability is a lower bound.
const (
	// DefaultMaxCyclomaticComplexity is the McCabe limit per function.
	// Values above 10 are commonly treated as hard to test.
	DefaultMaxCyclomaticComplexity = 10.0

	// DefaultMaxCognitiveComplexity is the per-function cognitive limit.
	DefaultMaxCognitiveComplexity = 15.0

	// DefaultMinMaintainabilityIndex is the lowest acceptable maintainability score (0-100).
	DefaultMinMaintainabilityIndex = 50.0

	DefaultMaxHalsteadVolume     = 1000.0
	DefaultMaxHalsteadDifficulty = 10.0
	DefaultMaxHalsteadEffort     = 10000.0
)
