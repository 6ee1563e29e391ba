package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preedep/MQUsageViewer/domain/usage"
)

// SearchRequest is the body for the search and summary endpoints.
// Datetimes are RFC 3339; both bounds are required.
type SearchRequest struct {
	FromDatetime   time.Time `json:"from_datetime"`
	ToDatetime     time.Time `json:"to_datetime"`
	MQFunctionName string    `json:"mq_function_name"`
	SystemName     string    `json:"system_name,omitempty"`
}

// RecordResponse is the external shape of one usage record.
type RecordResponse struct {
	DateTime    time.Time `json:"date_time"`
	Date        string    `json:"date"`
	Minute      string    `json:"minute"`
	SystemName  string    `json:"system_name"`
	MQFunction  string    `json:"mq_function"`
	WorkTotal   float64   `json:"work_total"`
	TransPerSec float64   `json:"trans_per_sec"`
}

// SummaryResponse is the external shape of one aggregated sample. It omits
// the per-record fields that have no meaning after summing across systems.
type SummaryResponse struct {
	DateTime    time.Time `json:"date_time"`
	TransPerSec float64   `json:"trans_per_sec"`
}

func newRecordResponse(r usage.Record) RecordResponse {
	return RecordResponse{
		DateTime:    r.Timestamp,
		Date:        r.Date,
		Minute:      r.Minute,
		SystemName:  r.SystemName,
		MQFunction:  r.MQFunction,
		WorkTotal:   r.WorkTotal,
		TransPerSec: r.TransPerSec,
	}
}

func newSummaryResponse(p usage.Point) SummaryResponse {
	return SummaryResponse{
		DateTime:    p.Timestamp,
		TransPerSec: p.TransPerSec,
	}
}

func newRecordResponses(records []usage.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, newRecordResponse(r))
	}
	return out
}

func newSummaryResponses(points []usage.Point) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(points))
	for _, p := range points {
		out = append(out, newSummaryResponse(p))
	}
	return out
}

// ListFunctions returns the distinct function names, cache-aside.
func (h *Handler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	functions, err := h.reference.Functions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	if functions == nil {
		functions = []string{}
	}
	writeSuccess(w, http.StatusOK, "Success", functions)
}

// ListSystems returns the distinct systems reporting under a function.
func (h *Handler) ListSystems(w http.ResponseWriter, r *http.Request) {
	function := chi.URLParam(r, "function")

	systems, err := h.reference.Systems(r.Context(), function)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	if systems == nil {
		systems = []string{}
	}
	writeSuccess(w, http.StatusOK, "Success", systems)
}

// Search returns raw usage records for a function within a window.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	records, err := h.search.Search(r.Context(), req.filter())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeSuccess(w, http.StatusOK, "Success", newRecordResponses(records))
}

// Summary returns per-timestamp TPS totals for a function.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	points, err := h.search.Summary(r.Context(), req.filter())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeSuccess(w, http.StatusOK, "Success", newSummaryResponses(points))
}

// AllSummary returns per-timestamp TPS totals across every function.
func (h *Handler) AllSummary(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FromDatetime.IsZero() || req.ToDatetime.IsZero() {
		writeError(w, http.StatusBadRequest, "from_datetime and to_datetime are required")
		return
	}

	points, err := h.search.AllSummary(r.Context(), req.FromDatetime, req.ToDatetime)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeSuccess(w, http.StatusOK, "Success", newSummaryResponses(points))
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (SearchRequest, bool) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if req.MQFunctionName == "" {
		writeError(w, http.StatusBadRequest, "mq_function_name is required")
		return req, false
	}
	if req.FromDatetime.IsZero() || req.ToDatetime.IsZero() {
		writeError(w, http.StatusBadRequest, "from_datetime and to_datetime are required")
		return req, false
	}
	return req, true
}

func (req SearchRequest) filter() usage.Filter {
	return usage.Filter{
		MQFunction: req.MQFunctionName,
		SystemName: req.SystemName,
		From:       req.FromDatetime,
		To:         req.ToDatetime,
	}
}
