package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordCorrectionDetector(t *testing.T) {
	d := NewKeywordCorrectionDetector()

	corrections := []string{
		"No, I mean Friday",
		"wait, make it an hour",
		"Actually let's do mornings",
		"change that to 3pm",
		"scratch that",
		"Tuesday instead",
	}
	for _, text := range corrections {
		assert.True(t, d.IsCorrection(text), "text: %q", text)
	}

	statements := []string{
		"Find me an hour next week",
		"yes",
		"Friday works",
		"book it",
	}
	for _, text := range statements {
		assert.False(t, d.IsCorrection(text), "text: %q", text)
	}
}
