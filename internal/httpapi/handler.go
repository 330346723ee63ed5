package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crewops/workforce-service/internal/notify"
	"crewops/workforce-service/internal/payroll"
	"crewops/workforce-service/internal/roster"
	"crewops/workforce-service/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store        store.RequestStore
	roster       *roster.Cache
	notifier     notify.Notifier
	payroll      payroll.Options
	storeTimeout time.Duration
}

type Options struct {
	Roster       *roster.Cache
	Notifier     notify.Notifier
	Payroll      payroll.Options
	StoreTimeout time.Duration
}

func NewHandler(requestStore store.RequestStore, options Options) *Handler {
	timeout := options.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	notifier := options.Notifier
	if notifier == nil {
		notifier = notify.New(notify.Config{})
	}
	rosterCache := options.Roster
	if rosterCache == nil {
		rosterCache = roster.New(requestStore.ListTeamMembers, roster.Options{})
	}
	return &Handler{
		store:        requestStore,
		roster:       rosterCache,
		notifier:     notifier,
		payroll:      options.Payroll,
		storeTimeout: timeout,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/requests", h.handleListRequests)
	mux.HandleFunc("/api/requests/", h.handleRequestByID)
	mux.HandleFunc("/api/team-members", h.handleTeamMembers)
	mux.HandleFunc("/api/time-clock", h.handleTimeClock)
	mux.HandleFunc("/api/payroll/summary", h.handlePayrollSummary)
	mux.HandleFunc("/api/events", h.handleEvents)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))
	if statusFilter == "" {
		statusFilter = store.FilterAll
	}
	typeFilter := strings.TrimSpace(r.URL.Query().Get("type"))
	if typeFilter == "" {
		typeFilter = store.FilterAll
	}
	if !store.ValidStatusFilter(statusFilter) {
		writeError(w, http.StatusBadRequest, "invalid_request", "status must be one of all, pending, approved, denied")
		return
	}
	if !store.ValidTypeFilter(typeFilter) {
		writeError(w, http.StatusBadRequest, "invalid_request", "type must be one of all, time_off, shift, break")
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	requests, err := h.store.ListRequests(ctx)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, store.FilterRequests(requests, statusFilter, typeFilter))
}

func (h *Handler) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/requests/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetRequest(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "actions" && r.Method == http.MethodPost:
		requestID := parts[0]
		if !isValidUUID(requestID) {
			writeError(w, http.StatusBadRequest, "invalid_request", "request_id must be a UUID")
			return
		}
		switch parts[2] {
		case "approve":
			h.handleApprove(w, r, requestID)
		case "deny":
			h.handleDeny(w, r, requestID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request, requestID string) {
	if !isValidUUID(requestID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "request_id must be a UUID")
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	request, err := h.store.GetRequest(ctx, requestID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

type approveRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes"`
}

type denyRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Reason     string `json:"reason"`
}

type approveResponse struct {
	Request    interface{} `json:"request"`
	ClockEntry interface{} `json:"clock_entry,omitempty"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request, requestID string) {
	var req approveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ReviewerID = strings.TrimSpace(req.ReviewerID)
	if req.ReviewerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "reviewer_id is required")
		return
	}
	if !isValidUUID(req.ReviewerID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "reviewer_id must be a UUID")
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	request, entry, err := h.store.ApproveRequest(ctx, store.ApproveRequestInput{
		RequestID:  requestID,
		ReviewerID: req.ReviewerID,
		Notes:      req.Notes,
		ReviewedAt: time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	// Best-effort only: a failed notification never reverses the approval.
	if err := h.notifier.NotifyApproved(r.Context(), request.UserID, request.RequestType); err != nil {
		log.Printf("notify approved failed request=%s user=%s: %v", request.RequestID, request.UserID, err)
	}

	response := approveResponse{Request: request}
	if entry != nil {
		response.ClockEntry = entry
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request, requestID string) {
	var req denyRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ReviewerID = strings.TrimSpace(req.ReviewerID)
	if req.ReviewerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "reviewer_id is required")
		return
	}
	if !isValidUUID(req.ReviewerID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "reviewer_id must be a UUID")
		return
	}
	// A denial must carry a reason; nothing is mutated or sent without one.
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "reason is required")
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	request, err := h.store.DenyRequest(ctx, store.DenyRequestInput{
		RequestID:  requestID,
		ReviewerID: req.ReviewerID,
		Reason:     req.Reason,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	if err := h.notifier.NotifyDenied(r.Context(), request.UserID, request.RequestType, req.Reason); err != nil {
		log.Printf("notify denied failed request=%s user=%s: %v", request.RequestID, request.UserID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTeamMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	members, err := h.roster.ActiveMembers(ctx)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) handleTimeClock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID != "" && !isValidUUID(userID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id must be a UUID when provided")
		return
	}
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	entries, err := h.store.ListTimeClockEntries(ctx, userID, from, to)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handlePayrollSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	entries, err := h.store.ListTimeClockEntries(ctx, "", from, to)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, payroll.Summarize(entries, h.payroll))
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	afterRaw := strings.TrimSpace(r.URL.Query().Get("after"))
	var after time.Time
	if afterRaw != "" {
		parsed, err := time.Parse(time.RFC3339, afterRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "after must be RFC3339 timestamp")
			return
		}
		after = parsed
	}

	limit := 100
	if limitRaw := strings.TrimSpace(r.URL.Query().Get("limit")); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	ctx, cancel := h.storeContext(r.Context())
	defer cancel()
	events, err := h.store.ListOutboxEvents(ctx, after, limit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, h.storeTimeout)
}

func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var from, to time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "from must be RFC3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "to must be RFC3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		return http.StatusNotFound, "request_not_found", "request not found"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "request state does not allow this decision"
	case errors.Is(err, store.ErrClockEntryFailed):
		return http.StatusInternalServerError, "clock_entry_failed", "time clock entry could not be created; the approval was not applied"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "store call timed out"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
