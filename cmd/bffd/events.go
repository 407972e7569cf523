package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kurax-labs/betting-bff/internal/enrich"
	"github.com/kurax-labs/betting-bff/internal/logging"
)

// eventView is the frontend-facing event shape: snake_case fields plus the
// derived popularity score and humanized countdown.
type eventView struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category,omitempty"`
	TeamA           string  `json:"team_a"`
	TeamB           string  `json:"team_b"`
	TeamAOdds       float64 `json:"team_a_odds"`
	TeamBOdds       float64 `json:"team_b_odds"`
	EventDate       string  `json:"event_date"`
	Status          string  `json:"status"`
	TotalBetsCount  int     `json:"total_bets_count"`
	TotalBetsAmount float64 `json:"total_bets_amount"`
	PopularityScore float64 `json:"popularity_score"`
	TimeUntilEvent  string  `json:"time_until_event,omitempty"`
	TrendingRank    int     `json:"trending_rank,omitempty"`
}

func toEventView(e enrich.Event, now time.Time) eventView {
	return eventView{
		ID:              e.ID,
		Name:            e.Name,
		Category:        e.Category,
		TeamA:           e.TeamA,
		TeamB:           e.TeamB,
		TeamAOdds:       e.TeamAOdds,
		TeamBOdds:       e.TeamBOdds,
		EventDate:       e.EventDate,
		Status:          e.Status,
		TotalBetsCount:  e.TotalBetsCount,
		TotalBetsAmount: e.TotalBetsAmount,
		PopularityScore: enrich.PopularityScore(e, now),
		TimeUntilEvent:  enrich.TimeRemaining(e.EventDate, now),
	}
}

// queryLimit parses the limit parameter with a default and a ceiling.
func queryLimit(r *http.Request, def, max int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	q := r.URL.Query()

	raw, err := s.app.Upstream.Events(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var events []enrich.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		writeError(w, r, http.StatusInternalServerError, "unexpected events payload from backend")
		return
	}

	now := s.now()
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e, now))
	}

	filtered := filterEvents(views, q.Get("category"), q.Get("team"), q.Get("date_from"), q.Get("date_to"))
	sortEvents(filtered)

	limit := queryLimit(r, 20, 100)
	final := filtered
	if len(final) > limit {
		final = final[:limit]
	}

	log.Info("events listed", "total", len(events), "returned", len(final))

	writeData(w, http.StatusOK, "Found "+strconv.Itoa(len(final))+" events", map[string]any{
		"events":         final,
		"total_count":    len(filtered),
		"filtered_count": len(final),
	})
}

// filterEvents applies the BFF-side filters the upstream API does not have:
// category, team substring, and event-date range.
func filterEvents(events []eventView, category, team, dateFrom, dateTo string) []eventView {
	out := events

	if category != "" {
		out = filterFunc(out, func(e eventView) bool {
			return strings.EqualFold(e.Category, category)
		})
	}
	if team != "" {
		needle := strings.ToLower(team)
		out = filterFunc(out, func(e eventView) bool {
			return strings.Contains(strings.ToLower(e.TeamA), needle) ||
				strings.Contains(strings.ToLower(e.TeamB), needle)
		})
	}
	if from, err := time.Parse(time.RFC3339, dateFrom); err == nil {
		out = filterFunc(out, func(e eventView) bool {
			d, err := time.Parse(time.RFC3339, e.EventDate)
			return err == nil && !d.Before(from)
		})
	}
	if to, err := time.Parse(time.RFC3339, dateTo); err == nil {
		out = filterFunc(out, func(e eventView) bool {
			d, err := time.Parse(time.RFC3339, e.EventDate)
			return err == nil && !d.After(to)
		})
	}
	return out
}

func filterFunc(events []eventView, keep func(eventView) bool) []eventView {
	out := events[:0:0]
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// sortEvents orders by popularity, then by total staked amount.
func sortEvents(events []eventView) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].PopularityScore != events[j].PopularityScore {
			return events[i].PopularityScore > events[j].PopularityScore
		}
		return events[i].TotalBetsAmount > events[j].TotalBetsAmount
	})
}

func (s *server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "event id must be an integer")
		return
	}

	raw, err := s.app.Upstream.EventByID(r.Context(), eventID)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var event enrich.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		writeError(w, r, http.StatusInternalServerError, "unexpected event payload from backend")
		return
	}

	now := s.now()
	view := toEventView(event, now)

	detail := map[string]any{
		"event":           view,
		"recommendations": enrich.EventRecommendations(event, view.PopularityScore),
		"social_metrics":  enrich.SocialMetrics(event, view.PopularityScore),
	}

	// Statistics are best-effort: a failed stats call degrades to absent
	// rather than failing the whole detail view.
	if r.URL.Query().Get("include_statistics") != "false" {
		if statsRaw, err := s.app.Upstream.EventStats(r.Context(), eventID); err == nil {
			var stats enrich.EventBettingStats
			if json.Unmarshal(statsRaw, &stats) == nil {
				detail["betting_statistics"] = enrich.TransformEventStats(stats)
			}
		} else {
			logging.FromContext(r.Context()).Warn("event stats unavailable",
				"event_id", eventID, "error", err.Error())
		}
	}

	writeData(w, http.StatusOK, "Event details retrieved successfully", detail)
}

func (s *server) handleTrendingEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := s.app.Upstream.Events(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var events []enrich.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		writeError(w, r, http.StatusInternalServerError, "unexpected events payload from backend")
		return
	}

	now := s.now()
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e, now))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].PopularityScore > views[j].PopularityScore
	})

	limit := queryLimit(r, 10, 50)
	if len(views) > limit {
		views = views[:limit]
	}
	for i := range views {
		views[i].TrendingRank = i + 1
	}

	writeData(w, http.StatusOK, "Found "+strconv.Itoa(len(views))+" popular events", map[string]any{
		"events":       views,
		"last_updated": now.UTC().Format(time.RFC3339),
	})
}
