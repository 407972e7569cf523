package enrich

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dateIn(d time.Duration) string {
	return testNow.Add(d).Format(time.RFC3339)
}

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  float64
	}{
		{
			"empty event far in the future",
			Event{EventDate: dateIn(30 * 24 * time.Hour)},
			0,
		},
		{
			"bet count capped at 10",
			Event{TotalBetsCount: 500, EventDate: dateIn(30 * 24 * time.Hour)},
			10,
		},
		{
			"amount capped at 15",
			Event{TotalBetsAmount: 100000, EventDate: dateIn(30 * 24 * time.Hour)},
			15,
		},
		{
			"event tomorrow",
			Event{EventDate: dateIn(20 * time.Hour)},
			20,
		},
		{
			"event within a week",
			Event{EventDate: dateIn(5 * 24 * time.Hour)},
			10,
		},
		{
			"two popular teams",
			Event{TeamA: "Real Madrid", TeamB: "Liverpool", EventDate: dateIn(30 * 24 * time.Hour)},
			10,
		},
		{
			"unparseable date contributes nothing",
			Event{EventDate: "soon", TotalBetsCount: 10},
			1,
		},
		{
			"combined",
			Event{
				TeamA:           "Barcelona",
				TeamB:           "Getafe",
				TotalBetsCount:  50,
				TotalBetsAmount: 5000,
				EventDate:       dateIn(20 * time.Hour),
			},
			5 + 5 + 20 + 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PopularityScore(tt.event, testNow); got != tt.want {
				t.Errorf("PopularityScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		amount, odds float64
		want         string
	}{
		{1500, 1.5, RiskHigh},
		{50, 3.5, RiskHigh},
		{50, 2.5, RiskMedium},
		{50, 1.8, RiskLow},
		{1000, 2.0, RiskLow},
		{1000.01, 1.1, RiskHigh},
	}
	for _, tt := range tests {
		if got := RiskLevel(tt.amount, tt.odds); got != tt.want {
			t.Errorf("RiskLevel(%v, %v) = %s, want %s", tt.amount, tt.odds, got, tt.want)
		}
	}

	if RiskDescription("bogus") != "Unknown risk level" {
		t.Error("unknown level must map to the neutral description")
	}
	if RiskRecommendation(RiskHigh) == "" {
		t.Error("known level must have a recommendation")
	}
}

func TestProfitLoss(t *testing.T) {
	won := Bet{Status: "won", Amount: 100, PotentialWin: 250}
	if got := ProfitLoss(won); got == nil || *got != 150 {
		t.Errorf("won bet: expected 150, got %v", got)
	}

	lost := Bet{Status: "lost", Amount: 100}
	if got := ProfitLoss(lost); got == nil || *got != -100 {
		t.Errorf("lost bet: expected -100, got %v", got)
	}

	refunded := Bet{Status: "refunded", Amount: 100}
	if got := ProfitLoss(refunded); got == nil || *got != 0 {
		t.Errorf("refunded bet: expected 0, got %v", got)
	}

	if got := ProfitLoss(Bet{Status: "active", Amount: 100}); got != nil {
		t.Errorf("active bet: expected nil, got %v", *got)
	}
}

func TestIsWinning(t *testing.T) {
	if got := IsWinning(Bet{Status: "won"}); got == nil || !*got {
		t.Error("won bet should report winning")
	}
	if got := IsWinning(Bet{Status: "lost"}); got == nil || *got {
		t.Error("lost bet should report not winning")
	}
	if got := IsWinning(Bet{Status: "active"}); got != nil {
		t.Error("undecided bet should report nil")
	}
}

func TestPerformanceRating(t *testing.T) {
	tests := []struct {
		totalBets int
		winRate   float64
		want      string
	}{
		{3, 100, "Beginner"},
		{10, 75, "Excellent"},
		{10, 65, "Good"},
		{10, 55, "Average"},
		{10, 40, "Needs Improvement"},
	}
	for _, tt := range tests {
		s := BetStatistics{TotalBets: tt.totalBets, WinRate: tt.winRate}
		if got := PerformanceRating(s); got != tt.want {
			t.Errorf("PerformanceRating(%d bets, %v%%) = %s, want %s", tt.totalBets, tt.winRate, got, tt.want)
		}
	}
}

func TestRiskProfile(t *testing.T) {
	tests := []struct {
		totalBets int
		avgBet    float64
		want      string
	}{
		{2, 1000, "Unknown"},
		{10, 600, "High Risk"},
		{10, 200, "Medium Risk"},
		{10, 50, "Conservative"},
	}
	for _, tt := range tests {
		s := BetStatistics{TotalBets: tt.totalBets, AverageBetAmount: tt.avgBet}
		if got := RiskProfile(s); got != tt.want {
			t.Errorf("RiskProfile(%d bets, avg %v) = %s, want %s", tt.totalBets, tt.avgBet, got, tt.want)
		}
	}
}

func TestTransformBetStatistics(t *testing.T) {
	s := BetStatistics{
		TotalBets:      20,
		WonBets:        14,
		WinRate:        70,
		TotalAmountBet: 2000,
		TotalWinnings:  3500,
	}
	got := TransformBetStatistics(s)
	if got.NetProfit != 1500 {
		t.Errorf("expected net profit 1500, got %v", got.NetProfit)
	}
	if got.PerformanceRating != "Excellent" {
		t.Errorf("expected Excellent, got %s", got.PerformanceRating)
	}
	if got.RiskProfile != "Conservative" {
		t.Errorf("expected Conservative, got %s", got.RiskProfile)
	}
}

func TestTransformEventStats(t *testing.T) {
	busy := TransformEventStats(EventBettingStats{TotalBets: 25})
	if busy["betting_trend"] != "increasing" {
		t.Errorf("expected increasing trend, got %v", busy["betting_trend"])
	}
	quiet := TransformEventStats(EventBettingStats{TotalBets: 5})
	if quiet["betting_trend"] != "stable" {
		t.Errorf("expected stable trend, got %v", quiet["betting_trend"])
	}
}

func TestProfileCompletion(t *testing.T) {
	full := map[string]any{
		"email": "a@b.c", "fullName": "Ann", "balance": 12.5,
		"phone": "123", "address": "Main St", "dateOfBirth": "1990-01-01",
	}
	if got := ProfileCompletion(full); got != 100 {
		t.Errorf("full profile: expected 100, got %v", got)
	}

	requiredOnly := map[string]any{"email": "a@b.c", "fullName": "Ann", "balance": 12.5}
	if got := ProfileCompletion(requiredOnly); got != 70 {
		t.Errorf("required only: expected 70, got %v", got)
	}

	if got := ProfileCompletion(map[string]any{}); got != 0 {
		t.Errorf("empty profile: expected 0, got %v", got)
	}

	// Empty strings and zero balances do not count as present.
	sparse := map[string]any{"email": "", "balance": float64(0), "phone": "123"}
	if got := ProfileCompletion(sparse); got != 10 {
		t.Errorf("sparse profile: expected 10, got %v", got)
	}
}

func TestTimeRemaining(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"missing", "", ""},
		{"unparseable", "tomorrow-ish", ""},
		{"started", dateIn(-time.Hour), "Event started"},
		{"days", dateIn(49 * time.Hour), "2 days"},
		{"hours", dateIn(5 * time.Hour), "5 hours"},
		{"minutes", dateIn(30 * time.Minute), "30 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeRemaining(tt.date, testNow); got != tt.want {
				t.Errorf("TimeRemaining(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestEventRecommendations(t *testing.T) {
	e := Event{TeamA: "Cadiz", TeamAOdds: 4.0, TeamB: "Real Madrid", TeamBOdds: 1.3}
	recs := EventRecommendations(e, 60)
	if len(recs) != 2 {
		t.Fatalf("expected underdog + popular recommendations, got %d", len(recs))
	}
	if recs[0].Type != "underdog" || recs[0].Team != "Cadiz" {
		t.Errorf("expected underdog hint for Cadiz, got %+v", recs[0])
	}
	if recs[1].Type != "popular" {
		t.Errorf("expected popular hint, got %+v", recs[1])
	}

	if recs := EventRecommendations(Event{TeamAOdds: 1.1, TeamBOdds: 2.0}, 10); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %d", len(recs))
	}
}

func TestBetSuggestions(t *testing.T) {
	both := BetSuggestions(200, 3.0)
	if len(both) != 2 {
		t.Fatalf("expected amount and odds suggestions, got %d", len(both))
	}
	if both[0].Suggestion != "Consider betting $100.00 to reduce risk" {
		t.Errorf("unexpected amount suggestion: %s", both[0].Suggestion)
	}

	if got := BetSuggestions(50, 1.5); len(got) != 0 {
		t.Errorf("expected no suggestions, got %d", len(got))
	}
}
