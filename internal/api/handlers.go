package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nutcparking/parkspace/internal/filter"
	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/scraper"
	"github.com/nutcparking/parkspace/internal/storage"
)

type handler struct {
	store        *storage.Store
	refresher    Refresher
	breakerState func() string
	keepAlive    time.Duration
	logger       zerolog.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	st := h.store.Current()

	resp := HealthResponse{
		Status:    "ok",
		Breaker:   h.breakerState(),
		UpdatedAt: updatedAt(st),
		Version:   st.Version,
		Error:     st.Message,
	}
	status := http.StatusOK
	switch {
	case !st.Ready():
		resp.Status = "starting"
		status = http.StatusServiceUnavailable
	case st.Stale():
		resp.Status = "degraded"
	}

	writeJSON(w, r, status, resp)
}

// listLots handles GET /v1/lots?type=&name=&min_available=&known_capacity=&sort=
func (h *handler) listLots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	f, err := filter.FromQuery(query)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	order, ok := lot.ParseSortOrder(query.Get("sort"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid sort: must be one of document, available, name, type")
		return
	}

	st := h.store.Current()
	if !st.Ready() {
		resp := newLotsResponse(st, nil)
		if resp.Error == "" {
			resp.Error = notReadyMessage
		}
		writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, r, http.StatusOK, newLotsResponse(st, lot.Sorted(f.Apply(st.Lots), order)))
}

// getLot handles GET /v1/lots/{name}. An optional type parameter picks
// between a car lot and a motorcycle lot of the same name.
func (h *handler) getLot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.TrimSpace(name)

	st := h.store.Current()
	if !st.Ready() {
		msg := st.Message
		if msg == "" {
			msg = notReadyMessage
		}
		writeError(w, r, http.StatusServiceUnavailable, msg)
		return
	}

	lots := st.Lots
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ, err := lot.ParseType(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		lots = lot.OfType(lots, typ)
	}

	found, ok := lot.Find(lots, name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "lot not found: "+name)
		return
	}

	writeJSON(w, r, http.StatusOK, LotResponse{
		Lot:       found,
		UpdatedAt: updatedAt(st),
		Stale:     st.Stale(),
		Error:     st.Message,
	})
}

// refresh handles POST /v1/refresh. It fetches synchronously and returns
// the resulting snapshot.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	st, err := h.refresher.RefreshOnce(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Warn().Err(err).Msg("manual refresh failed")
		writeErrorKind(w, r, http.StatusBadGateway, scraper.UserMessage(err), scraper.Kind(err))
		return
	}

	writeJSON(w, r, http.StatusOK, newLotsResponse(st, st.Lots))
}
