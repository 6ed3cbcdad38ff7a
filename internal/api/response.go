package api

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/storage"
)

// LotsResponse is the body of the lot endpoints and of every stream event
type LotsResponse struct {
	Lots      []lot.Lot  `json:"lots"`
	Count     int        `json:"count"`
	UpdatedAt *time.Time `json:"updated_at"`
	Stale     bool       `json:"stale"`
	Error     string     `json:"error,omitempty"`
}

// LotResponse is the body of GET /v1/lots/{name}
type LotResponse struct {
	Lot       lot.Lot    `json:"lot"`
	UpdatedAt *time.Time `json:"updated_at"`
	Stale     bool       `json:"stale"`
	Error     string     `json:"error,omitempty"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status    string     `json:"status"`
	Breaker   string     `json:"breaker"`
	UpdatedAt *time.Time `json:"updated_at"`
	Version   uint64     `json:"version"`
	Error     string     `json:"error,omitempty"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// notReadyMessage is shown until the first refresh finishes
const notReadyMessage = "尚未取得車位資訊"

func newLotsResponse(st storage.State, lots []lot.Lot) LotsResponse {
	if lots == nil {
		lots = []lot.Lot{}
	}
	return LotsResponse{
		Lots:      lots,
		Count:     len(lots),
		UpdatedAt: updatedAt(st),
		Stale:     st.Stale(),
		Error:     st.Message,
	}
}

func updatedAt(st storage.State) *time.Time {
	if !st.Ready() {
		return nil
	}
	t := st.UpdatedAt
	return &t
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeErrorKind(w, r, status, msg, "")
}

func writeErrorKind(w http.ResponseWriter, r *http.Request, status int, msg, kind string) {
	writeJSON(w, r, status, ErrorResponse{
		Error:     msg,
		Kind:      kind,
		RequestID: chimiddleware.GetReqID(r.Context()),
	})
}
