package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nutcparking/parkspace/internal/filter"
	"github.com/nutcparking/parkspace/internal/lot"
	"github.com/nutcparking/parkspace/internal/storage"
)

// stream handles GET /v1/lots/stream as server-sent events. Every store
// update is pushed as a "snapshot" event carrying a LotsResponse; the
// filter parameters of /v1/lots apply. The current state, if any, is sent
// first; a state already sent is never repeated.
func (h *handler) stream(w http.ResponseWriter, r *http.Request) {
	f, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel := h.store.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var sent uint64
	if st := h.store.Current(); st.Version > 0 {
		if err := writeEvent(w, st, f); err != nil {
			return
		}
		flusher.Flush()
		sent = st.Version
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st, open := <-updates:
			if !open {
				return
			}
			if st.Version <= sent {
				continue
			}
			sent = st.Version
			if err := writeEvent(w, st, f); err != nil {
				h.logger.Debug().Err(err).Msg("stream write failed")
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, st storage.State, f *filter.Filter) error {
	var lots []lot.Lot
	if st.Ready() {
		lots = f.Apply(st.Lots)
	}
	data, err := json.Marshal(newLotsResponse(st, lots))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\nid: %d\ndata: %s\n\n", st.Version, data)
	return err
}
