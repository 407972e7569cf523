package enrich

import "fmt"

// Recommendation is a betting hint derived from event data.
type Recommendation struct {
	Type       string  `json:"type"`
	Team       string  `json:"team,omitempty"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// EventRecommendations derives betting hints for an event: an underdog hint
// when team A carries the higher odds, and a popularity hint for events with
// a score above 50.
func EventRecommendations(e Event, popularity float64) []Recommendation {
	var recs []Recommendation

	if e.TeamAOdds > e.TeamBOdds {
		recs = append(recs, Recommendation{
			Type:       "underdog",
			Team:       e.TeamA,
			Reason:     "Higher odds, potential for bigger win",
			Confidence: 0.7,
		})
	}

	if popularity > 50 {
		recs = append(recs, Recommendation{
			Type:       "popular",
			Reason:     "High user interest in this event",
			Confidence: 0.8,
		})
	}
	return recs
}

// Suggestion is an improvement hint attached to a bet preview.
type Suggestion struct {
	Type       string `json:"type"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// BetSuggestions derives stake and odds hints for a previewed bet.
func BetSuggestions(amount, odds float64) []Suggestion {
	var out []Suggestion

	if amount > 100 {
		out = append(out, Suggestion{
			Type:       "amount_reduction",
			Suggestion: formatAmountSuggestion(amount),
			Reason:     "Lower amount reduces potential loss while maintaining good returns",
		})
	}

	if odds > 2.5 {
		out = append(out, Suggestion{
			Type:       "odds_warning",
			Suggestion: "Consider the high odds - this indicates lower probability",
			Reason:     "Higher odds mean higher risk but also higher potential reward",
		})
	}
	return out
}

func formatAmountSuggestion(amount float64) string {
	return fmt.Sprintf("Consider betting $%.2f to reduce risk", amount*0.5)
}

// SocialMetrics derives the lightweight social signals shown on the event
// detail view.
func SocialMetrics(e Event, popularity float64) map[string]any {
	return map[string]any{
		"buzz_score": round2(popularity * 0.1),
		"sentiment":  "positive",
		"mentions":   e.TotalBetsCount * 2,
	}
}
