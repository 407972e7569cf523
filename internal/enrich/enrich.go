// Package enrich holds the pure derivation helpers the BFF layers on top of
// upstream responses: popularity scoring, risk classification, profit/loss
// arithmetic, and statistics reshaping. Every function is deterministic,
// side-effect free, and total — unknown or missing fields fall back to
// zero/neutral values instead of failing.
package enrich

import (
	"fmt"
	"math"
	"time"
)

// Event mirrors the upstream event record (camelCase wire names).
type Event struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	TeamA           string  `json:"teamA"`
	TeamB           string  `json:"teamB"`
	TeamAOdds       float64 `json:"teamAOdds"`
	TeamBOdds       float64 `json:"teamBOdds"`
	EventDate       string  `json:"eventDate"`
	Status          string  `json:"status"`
	TotalBetsCount  int     `json:"totalBetsCount"`
	TotalBetsAmount float64 `json:"totalBetsAmount"`
}

// Bet mirrors the upstream bet record.
type Bet struct {
	ID           int     `json:"id"`
	EventID      int     `json:"eventId"`
	EventName    string  `json:"eventName"`
	SelectedTeam string  `json:"selectedTeam"`
	Amount       float64 `json:"amount"`
	Odds         float64 `json:"odds"`
	PotentialWin float64 `json:"potentialWin"`
	Status       string  `json:"status"`
	EventDate    string  `json:"eventDate"`
	CreatedAt    string  `json:"createdAt"`
}

// BetStatistics mirrors the upstream per-user statistics record.
type BetStatistics struct {
	TotalBets           int     `json:"totalBets"`
	ActiveBets          int     `json:"activeBets"`
	WonBets             int     `json:"wonBets"`
	LostBets            int     `json:"lostBets"`
	TotalAmountBet      float64 `json:"totalAmountBet"`
	TotalWinnings       float64 `json:"totalWinnings"`
	CurrentPotentialWin float64 `json:"currentPotentialWin"`
	WinRate             float64 `json:"winRate"`
	AverageBetAmount    float64 `json:"averageBetAmount"`
}

// popularTeams get a fixed popularity bonus in the scoring below.
var popularTeams = map[string]bool{
	"Real Madrid":       true,
	"Barcelona":         true,
	"Manchester United": true,
	"Liverpool":         true,
}

// PopularityScore computes a weighted popularity score for an event:
// bet count (capped at 10 points), total staked amount (capped at 15),
// proximity of the event date (20 within a day, 10 within a week), and a
// flat 5 per well-known team. Rounded to two decimals.
func PopularityScore(e Event, now time.Time) float64 {
	score := math.Min(float64(e.TotalBetsCount)*0.1, 10.0)
	score += math.Min(e.TotalBetsAmount/1000, 15.0)

	if date, err := time.Parse(time.RFC3339, e.EventDate); err == nil {
		days := int(date.Sub(now).Hours() / 24)
		switch {
		case days <= 1:
			score += 20.0
		case days <= 7:
			score += 10.0
		}
	}

	if popularTeams[e.TeamA] {
		score += 5.0
	}
	if popularTeams[e.TeamB] {
		score += 5.0
	}
	return round2(score)
}

// Risk level thresholds: stake over 1000 or odds over 3 are high risk,
// odds over 2 medium, anything else low.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskLevel classifies a bet by stake amount and odds.
func RiskLevel(amount, odds float64) string {
	switch {
	case amount > 1000:
		return RiskHigh
	case odds > 3.0:
		return RiskHigh
	case odds > 2.0:
		return RiskMedium
	default:
		return RiskLow
	}
}

var riskDescriptions = map[string]string{
	RiskLow:    "This is a relatively safe bet with good chances of winning",
	RiskMedium: "This bet has moderate risk and potential reward",
	RiskHigh:   "This is a high-risk bet with potentially high rewards",
}

var riskRecommendations = map[string]string{
	RiskLow:    "Consider this bet if you prefer steady, consistent returns",
	RiskMedium: "Good balance of risk and reward - suitable for most bettors",
	RiskHigh:   "Only consider if you're comfortable with potentially losing your stake",
}

// RiskDescription returns the human description for a risk level.
func RiskDescription(level string) string {
	if d, ok := riskDescriptions[level]; ok {
		return d
	}
	return "Unknown risk level"
}

// RiskRecommendation returns the advice line for a risk level.
func RiskRecommendation(level string) string {
	if r, ok := riskRecommendations[level]; ok {
		return r
	}
	return "Please evaluate carefully"
}

// ProfitLoss computes the realized profit or loss of a bet: won bets net the
// potential win minus the stake, lost bets lose the stake, refunded bets are
// flat. Returns nil while the bet is still open.
func ProfitLoss(b Bet) *float64 {
	var v float64
	switch b.Status {
	case "won":
		v = b.PotentialWin - b.Amount
	case "lost":
		v = -b.Amount
	case "refunded":
		v = 0
	default:
		return nil
	}
	return &v
}

// IsWinning reports whether a bet has won; nil while undecided.
func IsWinning(b Bet) *bool {
	var v bool
	switch b.Status {
	case "won":
		v = true
	case "lost":
		v = false
	default:
		return nil
	}
	return &v
}

// PerformanceRating grades a user's betting record.
func PerformanceRating(s BetStatistics) string {
	switch {
	case s.TotalBets < 5:
		return "Beginner"
	case s.WinRate >= 70:
		return "Excellent"
	case s.WinRate >= 60:
		return "Good"
	case s.WinRate >= 50:
		return "Average"
	default:
		return "Needs Improvement"
	}
}

// RiskProfile classifies a user by average stake size.
func RiskProfile(s BetStatistics) string {
	switch {
	case s.TotalBets < 3:
		return "Unknown"
	case s.AverageBetAmount > 500:
		return "High Risk"
	case s.AverageBetAmount > 100:
		return "Medium Risk"
	default:
		return "Conservative"
	}
}

// UserStatistics is the reshaped, frontend-facing statistics payload.
type UserStatistics struct {
	TotalBets           int     `json:"total_bets"`
	ActiveBets          int     `json:"active_bets"`
	WonBets             int     `json:"won_bets"`
	LostBets            int     `json:"lost_bets"`
	TotalAmountBet      float64 `json:"total_amount_bet"`
	TotalWinnings       float64 `json:"total_winnings"`
	CurrentPotentialWin float64 `json:"current_potential_win"`
	WinRate             float64 `json:"win_rate"`
	AverageBetAmount    float64 `json:"average_bet_amount"`
	NetProfit           float64 `json:"net_profit"`
	PerformanceRating   string  `json:"performance_rating"`
	RiskProfile         string  `json:"risk_profile"`
}

// TransformBetStatistics reshapes upstream statistics and adds the derived
// net profit, performance rating, and risk profile fields.
func TransformBetStatistics(s BetStatistics) UserStatistics {
	return UserStatistics{
		TotalBets:           s.TotalBets,
		ActiveBets:          s.ActiveBets,
		WonBets:             s.WonBets,
		LostBets:            s.LostBets,
		TotalAmountBet:      s.TotalAmountBet,
		TotalWinnings:       s.TotalWinnings,
		CurrentPotentialWin: s.CurrentPotentialWin,
		WinRate:             s.WinRate,
		AverageBetAmount:    s.AverageBetAmount,
		NetProfit:           s.TotalWinnings - s.TotalAmountBet,
		PerformanceRating:   PerformanceRating(s),
		RiskProfile:         RiskProfile(s),
	}
}

// EventBettingStats mirrors the upstream per-event statistics record.
type EventBettingStats struct {
	TotalBets       int     `json:"totalBets"`
	TotalAmountBet  float64 `json:"totalAmountBet"`
	TeamAPercentage float64 `json:"teamAPercentage"`
	TeamBPercentage float64 `json:"teamBPercentage"`
}

// TransformEventStats reshapes event betting statistics and tags the trend.
func TransformEventStats(s EventBettingStats) map[string]any {
	trend := "stable"
	if s.TotalBets > 10 {
		trend = "increasing"
	}
	return map[string]any{
		"total_bets":        s.TotalBets,
		"total_amount":      s.TotalAmountBet,
		"team_a_percentage": s.TeamAPercentage,
		"team_b_percentage": s.TeamBPercentage,
		"betting_trend":     trend,
	}
}

// ProfileCompletion scores how complete a profile is: the required fields
// (email, fullName, balance) weigh 70%, the optional ones (phone, address,
// dateOfBirth) 30%. Returns a percentage with one decimal.
func ProfileCompletion(profile map[string]any) float64 {
	required := []string{"email", "fullName", "balance"}
	optional := []string{"phone", "address", "dateOfBirth"}

	var haveRequired, haveOptional int
	for _, f := range required {
		if present(profile[f]) {
			haveRequired++
		}
	}
	for _, f := range optional {
		if present(profile[f]) {
			haveOptional++
		}
	}

	score := float64(haveRequired) / float64(len(required)) * 0.7
	score += float64(haveOptional) / float64(len(optional)) * 0.3
	return math.Round(score*1000) / 10
}

// present mimics truthiness: nil, empty strings, zero numbers, and false all
// count as missing.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	default:
		return true
	}
}

// TimeRemaining humanizes the interval until an event starts. Empty string
// when the date is missing or unparseable.
func TimeRemaining(eventDate string, now time.Time) string {
	if eventDate == "" {
		return ""
	}
	date, err := time.Parse(time.RFC3339, eventDate)
	if err != nil {
		return ""
	}

	diff := date.Sub(now)
	switch {
	case diff < 0:
		return "Event started"
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%d days", int(diff.Hours()/24))
	case diff >= time.Hour:
		return fmt.Sprintf("%d hours", int(diff.Hours()))
	default:
		return fmt.Sprintf("%d minutes", int(diff.Minutes()))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
