// Package domain contains core domain types for the Bloomify service.
package domain

import (
	"strings"
)

// BloomLevel is one of the six cognitive levels of Bloom's Taxonomy.
type BloomLevel string

const (
	LevelRemember   BloomLevel = "REMEMBER"
	LevelUnderstand BloomLevel = "UNDERSTAND"
	LevelApply      BloomLevel = "APPLY"
	LevelAnalyze    BloomLevel = "ANALYZE"
	LevelEvaluate   BloomLevel = "EVALUATE"
	LevelCreate     BloomLevel = "CREATE"
)

// BloomLevels lists the levels from lowest to highest cognitive demand.
var BloomLevels = []BloomLevel{
	LevelRemember,
	LevelUnderstand,
	LevelApply,
	LevelAnalyze,
	LevelEvaluate,
	LevelCreate,
}

// Rank returns the 1-based position of the level, or 0 if unknown.
func (l BloomLevel) Rank() int {
	for i, level := range BloomLevels {
		if level == l {
			return i + 1
		}
	}
	return 0
}

// ParseBloomLevel finds the first Bloom level named in text.
// Matching is case-insensitive and tolerates surrounding words, so model
// replies like "Bloom's Taxonomy Level: Analyze" resolve to LevelAnalyze.
func ParseBloomLevel(text string) (BloomLevel, bool) {
	upper := strings.ToUpper(text)
	best := -1
	var found BloomLevel
	for _, level := range BloomLevels {
		idx := strings.Index(upper, string(level))
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = level
		}
	}
	// British spelling.
	if idx := strings.Index(upper, "ANALYSE"); idx >= 0 && (best < 0 || idx < best) {
		best = idx
		found = LevelAnalyze
	}
	return found, best >= 0
}
