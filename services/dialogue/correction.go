package dialogue

import "strings"

// CorrectionDetector classifies an utterance as a correction of previously
// collected fields rather than new information. The default is keyword-based
// and inherently fuzzy; it sits behind this interface so a learned classifier
// can replace it without touching the state machine's transition logic.
type CorrectionDetector interface {
	IsCorrection(text string) bool
}

// KeywordCorrectionDetector flags utterances containing a lexical correction
// marker.
type KeywordCorrectionDetector struct {
	markers []string
}

func NewKeywordCorrectionDetector() *KeywordCorrectionDetector {
	return &KeywordCorrectionDetector{
		markers: []string{
			"wait",
			"actually",
			"no i mean",
			"no, i mean",
			"instead",
			"let me correct that",
			"change that to",
			"scratch that",
		},
	}
}

func (d *KeywordCorrectionDetector) IsCorrection(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range d.markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
