package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kurax-labs/betting-bff/internal/enrich"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/upstream"
)

// dashboardSources indexes the concurrent upstream calls behind the
// dashboard; results land in a fixed slot so completion order is irrelevant.
const (
	srcProfile = iota
	srcRecentBets
	srcStatistics
	srcEvents
	srcCount
)

// handleDashboard aggregates profile, recent bets, statistics, and available
// events into one response. The four upstream calls run concurrently. An
// authentication failure from any source aborts the whole response with 401;
// any other failure degrades that slice to an empty default.
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	start := time.Now()

	fetch := [srcCount]func(context.Context) (json.RawMessage, error){
		srcProfile: func(ctx context.Context) (json.RawMessage, error) {
			return s.app.Upstream.Profile(ctx, token)
		},
		srcRecentBets: func(ctx context.Context) (json.RawMessage, error) {
			return s.app.Upstream.UserBets(ctx, token, nil)
		},
		srcStatistics: func(ctx context.Context) (json.RawMessage, error) {
			return s.app.Upstream.UserBetStats(ctx, token)
		},
		srcEvents: func(ctx context.Context) (json.RawMessage, error) {
			return s.app.Upstream.Events(ctx)
		},
	}

	var (
		wg      sync.WaitGroup
		results [srcCount]json.RawMessage
		errs    [srcCount]error
	)
	for i, fn := range fetch {
		wg.Add(1)
		go func(i int, fn func(context.Context) (json.RawMessage, error)) {
			defer wg.Done()
			results[i], errs[i] = fn(r.Context())
		}(i, fn)
	}
	wg.Wait()

	elapsed := time.Since(start)

	// An expired token fails every personal source the same way; surface it
	// instead of an empty dashboard.
	for _, err := range errs {
		if upstream.IsUnauthorized(err) {
			writeError(w, r, http.StatusUnauthorized, "Invalid or expired authentication token")
			return
		}
	}

	degraded := 0
	for i, err := range errs {
		if err != nil {
			degraded++
			log.Warn("dashboard source degraded", "source", i, "error", err.Error())
		}
	}

	now := s.now()

	var profile map[string]any
	if errs[srcProfile] == nil {
		_ = json.Unmarshal(results[srcProfile], &profile)
	}
	if profile == nil {
		profile = map[string]any{}
	}

	var bets []enrich.Bet
	if errs[srcRecentBets] == nil {
		_ = json.Unmarshal(results[srcRecentBets], &bets)
	}
	if len(bets) > 5 {
		bets = bets[:5]
	}
	recentBets := make([]betView, 0, len(bets))
	for _, b := range bets {
		recentBets = append(recentBets, toBetView(b, now))
	}

	statistics := map[string]any{}
	var stats enrich.BetStatistics
	haveStats := false
	if errs[srcStatistics] == nil && json.Unmarshal(results[srcStatistics], &stats) == nil {
		haveStats = true
	}

	var events []enrich.Event
	if errs[srcEvents] == nil {
		_ = json.Unmarshal(results[srcEvents], &events)
	}
	if len(events) > 10 {
		events = events[:10]
	}
	availableEvents := make([]eventView, 0, len(events))
	for _, e := range events {
		availableEvents = append(availableEvents, toEventView(e, now))
	}

	dashboard := map[string]any{
		"user_profile":     profile,
		"recent_bets":      recentBets,
		"statistics":       statistics,
		"available_events": availableEvents,
		"recommendations":  []map[string]any{},
		"notifications":    dashboardNotifications(recentBets, haveStats, stats),
		"metadata": map[string]any{
			"generated_at":       now.UTC().Format(time.RFC3339),
			"processing_time_ms": float64(elapsed.Microseconds()) / 1000,
			"data_sources":       srcCount,
			"degraded_sources":   degraded,
		},
	}
	if haveStats {
		dashboard["statistics"] = enrich.TransformBetStatistics(stats)
		dashboard["recommendations"] = dashboardRecommendations(stats, events)
	}

	log.Info("dashboard generated", "duration_ms", elapsed.Milliseconds(), "degraded", degraded)

	writeData(w, http.StatusOK, "Dashboard generated successfully", dashboard)
}

// dashboardRecommendations derives personal hints from the user's record and
// the current event list.
func dashboardRecommendations(stats enrich.BetStatistics, events []enrich.Event) []map[string]any {
	recs := []map[string]any{}

	switch {
	case stats.WinRate > 70:
		recs = append(recs, map[string]any{
			"type":     "performance",
			"message":  "You're doing great! Consider exploring higher-value bets",
			"priority": "low",
		})
	case stats.WinRate < 40 && stats.TotalBets > 0:
		recs = append(recs, map[string]any{
			"type":     "performance",
			"message":  "Try smaller bets to improve your win rate",
			"priority": "high",
		})
	}

	if len(events) > 0 {
		popular := events[0]
		for _, e := range events[1:] {
			if e.TotalBetsCount > popular.TotalBetsCount {
				popular = e
			}
		}
		recs = append(recs, map[string]any{
			"type":     "event",
			"message":  fmt.Sprintf("Check out %s - lots of activity!", popular.Name),
			"priority": "medium",
			"event_id": popular.ID,
		})
	}
	return recs
}

// dashboardNotifications derives per-user alerts from the fetched slices.
func dashboardNotifications(recentBets []betView, haveStats bool, stats enrich.BetStatistics) []map[string]any {
	notes := []map[string]any{}

	if haveStats && stats.TotalBets < 5 {
		notes = append(notes, map[string]any{
			"type":     "welcome",
			"message":  "Welcome to sports betting! Start with small bets to learn the system",
			"priority": "info",
		})
	}

	active := 0
	for _, b := range recentBets {
		if b.Status == "active" || b.Status == "Active" {
			active++
		}
	}
	if active > 0 {
		notes = append(notes, map[string]any{
			"type":     "reminder",
			"message":  fmt.Sprintf("You have %d active bets - check their status!", active),
			"priority": "medium",
		})
	}
	return notes
}
