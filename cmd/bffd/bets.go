package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kurax-labs/betting-bff/internal/audit"
	"github.com/kurax-labs/betting-bff/internal/enrich"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/metrics"
	"github.com/kurax-labs/betting-bff/internal/schemas"
	"github.com/kurax-labs/betting-bff/internal/upstream"
)

// betRequest is the inbound bet creation/preview payload.
type betRequest struct {
	EventID      int     `json:"event_id"`
	SelectedTeam string  `json:"selected_team"`
	Amount       float64 `json:"amount"`
}

// betView extends an upstream bet record with the BFF-derived fields.
type betView struct {
	enrich.Bet
	TimeRemaining string   `json:"time_remaining,omitempty"`
	ProfitLoss    *float64 `json:"profit_loss"`
	IsWinning     *bool    `json:"is_winning"`
}

func toBetView(b enrich.Bet, now time.Time) betView {
	return betView{
		Bet:           b,
		TimeRemaining: enrich.TimeRemaining(b.EventDate, now),
		ProfitLoss:    enrich.ProfitLoss(b),
		IsWinning:     enrich.IsWinning(b),
	}
}

// writeAudit records one money-moving attempt. Audit failures are logged and
// counted, never surfaced to the user.
func (s *server) writeAudit(r *http.Request, entry audit.Entry) {
	entry.CreatedAt = s.now().UTC()
	if err := s.app.Audit.Write(r.Context(), entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		logging.FromContext(r.Context()).Error("audit write failed",
			"transaction_id", entry.TransactionID, "error", err.Error())
	}
}

// decodeBetRequest validates and decodes the inbound bet payload. A nil
// return with handled=true means the response has already been written.
func decodeBetRequest(w http.ResponseWriter, r *http.Request) (betRequest, bool) {
	var req betRequest
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unable to read request body")
		return req, false
	}
	if errs := schemas.Validate(schemas.Bet, body); errs != nil {
		writeValidationError(w, r, errs)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

func (s *server) handleBetPreview(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	req, ok := decodeBetRequest(w, r)
	if !ok {
		return
	}

	payload := map[string]any{
		"eventId":      req.EventID,
		"selectedTeam": req.SelectedTeam,
		"amount":       req.Amount,
	}

	raw, err := s.app.Upstream.PreviewBet(r.Context(), payload, token)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var preview map[string]any
	if err := json.Unmarshal(raw, &preview); err != nil || preview == nil {
		preview = map[string]any{}
	}

	odds, _ := preview["currentOdds"].(float64)
	if odds == 0 {
		odds = 1.0
	}
	level := enrich.RiskLevel(req.Amount, odds)
	preview["risk_analysis"] = map[string]any{
		"level":          level,
		"description":    enrich.RiskDescription(level),
		"recommendation": enrich.RiskRecommendation(level),
	}
	preview["suggestions"] = enrich.BetSuggestions(req.Amount, odds)

	s.writeAudit(r, audit.Entry{
		TransactionID: audit.NewTransactionID(audit.OpPreviewBet),
		Operation:     audit.OpPreviewBet,
		Status:        audit.StatusSuccess,
		EventID:       req.EventID,
		SelectedTeam:  req.SelectedTeam,
		Amount:        req.Amount,
		TokenHash:     audit.HashToken(token),
	})

	writeData(w, http.StatusOK, "Bet preview generated successfully", preview)
}

func (s *server) handleCreateBet(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	transactionID := audit.NewTransactionID(audit.OpCreateBet)

	validationStart := time.Now()
	req, ok := decodeBetRequest(w, r)
	validationMS := float64(time.Since(validationStart).Microseconds()) / 1000
	if !ok {
		return
	}

	log.Info("creating bet",
		"transaction_id", transactionID,
		"event_id", req.EventID,
		"amount", req.Amount,
	)

	payload := map[string]any{
		"eventId":      req.EventID,
		"selectedTeam": req.SelectedTeam,
		"amount":       req.Amount,
	}

	backendStart := time.Now()
	raw, err := s.app.Upstream.CreateBet(r.Context(), payload, token)
	backendMS := float64(time.Since(backendStart).Microseconds()) / 1000

	if err != nil {
		log.Warn("bet creation failed", "transaction_id", transactionID, "error", err.Error())
		s.writeAudit(r, audit.Entry{
			TransactionID: transactionID,
			Operation:     audit.OpCreateBet,
			Status:        audit.StatusFailed,
			EventID:       req.EventID,
			SelectedTeam:  req.SelectedTeam,
			Amount:        req.Amount,
			ErrorMessage:  err.Error(),
			TokenHash:     audit.HashToken(token),
			ValidationMS:  validationMS,
			BackendMS:     backendMS,
		})
		writeUpstreamError(w, r, err)
		return
	}

	var bet enrich.Bet
	_ = json.Unmarshal(raw, &bet)

	s.writeAudit(r, audit.Entry{
		TransactionID: transactionID,
		Operation:     audit.OpCreateBet,
		Status:        audit.StatusSuccess,
		EventID:       req.EventID,
		SelectedTeam:  req.SelectedTeam,
		Amount:        req.Amount,
		BetID:         bet.ID,
		TokenHash:     audit.HashToken(token),
		ValidationMS:  validationMS,
		BackendMS:     backendMS,
	})

	log.Info("bet created", "transaction_id", transactionID, "bet_id", bet.ID)

	writeData(w, http.StatusCreated, "Bet created successfully", map[string]any{
		"bet":               toBetView(bet, s.now()),
		"transaction_id":    transactionID,
		"confirmation_code": fmt.Sprintf("BET%06d", bet.ID),
		"processing_time": map[string]any{
			"validation_ms": validationMS,
			"backend_ms":    backendMS,
			"total_ms":      validationMS + backendMS,
		},
	})
}

func (s *server) handleMyBets(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	q := r.URL.Query()

	// Translate the BFF filter names to the upstream ones.
	params := url.Values{}
	if v := q.Get("status"); v != "" {
		params.Set("status", v)
	}
	if v := q.Get("date_from"); v != "" {
		params.Set("fromDate", v)
	}
	if v := q.Get("date_to"); v != "" {
		params.Set("toDate", v)
	}

	raw, err := s.app.Upstream.UserBets(r.Context(), token, params)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var bets []enrich.Bet
	if err := json.Unmarshal(raw, &bets); err != nil {
		writeError(w, r, http.StatusInternalServerError, "unexpected bets payload from backend")
		return
	}

	now := s.now()
	views := make([]betView, 0, len(bets))
	for _, b := range bets {
		views = append(views, toBetView(b, now))
	}

	// The upstream API has no pagination, so the BFF pages the full list.
	page, pageSize := queryPage(r)
	total := len(views)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	paged := views[start:end]

	data := map[string]any{
		"bets": paged,
		"pagination": map[string]any{
			"current_page": page,
			"page_size":    pageSize,
			"total_items":  total,
			"total_pages":  (total + pageSize - 1) / pageSize,
			"has_next":     end < total,
			"has_previous": page > 1,
		},
	}

	if q.Get("include_statistics") != "false" {
		if statsRaw, err := s.app.Upstream.UserBetStats(r.Context(), token); err == nil {
			var stats enrich.BetStatistics
			if json.Unmarshal(statsRaw, &stats) == nil {
				data["statistics"] = enrich.TransformBetStatistics(stats)
			}
		} else if upstream.IsUnauthorized(err) {
			writeUpstreamError(w, r, err)
			return
		}
	}

	writeData(w, http.StatusOK, fmt.Sprintf("Retrieved %d bets", len(paged)), data)
}

func queryPage(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func (s *server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	raw, err := s.app.Upstream.UserBetStats(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	var stats enrich.BetStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		writeError(w, r, http.StatusInternalServerError, "unexpected statistics payload from backend")
		return
	}

	writeData(w, http.StatusOK, "Statistics retrieved successfully", enrich.TransformBetStatistics(stats))
}

func (s *server) handleCancelBet(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	betID, err := strconv.Atoi(chi.URLParam(r, "betID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bet id must be an integer")
		return
	}

	transactionID := audit.NewTransactionID(audit.OpCancelBet)
	log.Info("cancelling bet", "transaction_id", transactionID, "bet_id", betID)

	backendStart := time.Now()
	raw, err := s.app.Upstream.CancelBet(r.Context(), betID, token)
	backendMS := float64(time.Since(backendStart).Microseconds()) / 1000

	if err != nil {
		log.Warn("bet cancellation failed",
			"transaction_id", transactionID, "bet_id", betID, "error", err.Error())
		s.writeAudit(r, audit.Entry{
			TransactionID: transactionID,
			Operation:     audit.OpCancelBet,
			Status:        audit.StatusFailed,
			BetID:         betID,
			ErrorMessage:  err.Error(),
			TokenHash:     audit.HashToken(token),
			BackendMS:     backendMS,
		})
		writeUpstreamError(w, r, err)
		return
	}

	s.writeAudit(r, audit.Entry{
		TransactionID: transactionID,
		Operation:     audit.OpCancelBet,
		Status:        audit.StatusSuccess,
		BetID:         betID,
		TokenHash:     audit.HashToken(token),
		BackendMS:     backendMS,
	})

	log.Info("bet cancelled", "transaction_id", transactionID, "bet_id", betID)

	writeData(w, http.StatusOK, "Bet cancelled successfully", map[string]any{
		"result":         json.RawMessage(raw),
		"transaction_id": transactionID,
		"cancelled_at":   s.now().UTC().Format(time.RFC3339),
	})
}
