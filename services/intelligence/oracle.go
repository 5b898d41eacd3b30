// File: services/intelligence/oracle.go
package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"convosched/models"
	"convosched/services/scheduling"
)

// ContentGenerator is the slice of the Gemini client the oracle needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiRankingOracle asks Gemini to reorder a short list of candidate slots
// and explain each pick. It is a best-effort refinement: any parse or
// transport problem is returned as an error and the caller keeps the
// rule-based order.
type GeminiRankingOracle struct {
	client ContentGenerator
}

func NewGeminiRankingOracle(client ContentGenerator) *GeminiRankingOracle {
	return &GeminiRankingOracle{client: client}
}

type oraclePick struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (o *GeminiRankingOracle) Rank(ctx context.Context, candidates []models.Candidate, cs models.ConstraintSet) ([]models.Candidate, error) {
	prompt := buildRankPrompt(candidates, cs)

	raw, err := o.client.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, scheduling.NewOracleUnavailableError(err.Error())
	}

	picks, err := parsePicks(raw)
	if err != nil {
		return nil, err
	}
	if len(picks) != len(candidates) {
		return nil, fmt.Errorf("oracle returned %d picks for %d candidates", len(picks), len(candidates))
	}

	seen := make(map[int]bool, len(picks))
	out := make([]models.Candidate, 0, len(candidates))
	for _, p := range picks {
		if p.Index < 0 || p.Index >= len(candidates) || seen[p.Index] {
			return nil, fmt.Errorf("oracle returned invalid candidate index %d", p.Index)
		}
		seen[p.Index] = true
		c := candidates[p.Index]
		if p.Reason != "" {
			c.Reason = p.Reason
		}
		out = append(out, c)
	}
	return out, nil
}

func buildRankPrompt(candidates []models.Candidate, cs models.ConstraintSet) string {
	var sb strings.Builder
	sb.WriteString("You are ranking meeting time candidates for a user.\n")
	if cs.Title != "" {
		sb.WriteString(fmt.Sprintf("The request is: %q.\n", cs.Title))
	}
	if cs.DurationMinutes > 0 {
		sb.WriteString(fmt.Sprintf("Requested duration: %d minutes.\n", cs.DurationMinutes))
	}
	sb.WriteString("Candidates:\n")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("  %d: %s (score %.1f, %d min buffer to adjacent events)\n",
			i, c.Slot.Label(), c.Score, c.BufferMinutes))
	}
	sb.WriteString("Reply with ONLY a JSON array ordering all candidates best-first, ")
	sb.WriteString(`like [{"index":0,"reason":"short reason"}]. No other text.`)
	return sb.String()
}

// parsePicks tolerates markdown code fences around the JSON body.
func parsePicks(raw string) ([]oraclePick, error) {
	body := strings.TrimSpace(raw)
	if i := strings.Index(body, "["); i >= 0 {
		if j := strings.LastIndex(body, "]"); j > i {
			body = body[i : j+1]
		}
	}
	var picks []oraclePick
	if err := json.Unmarshal([]byte(body), &picks); err != nil {
		return nil, fmt.Errorf("oracle reply was not valid JSON: %w", err)
	}
	return picks, nil
}
