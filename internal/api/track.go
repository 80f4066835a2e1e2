package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/biolink/internal/track"
	"github.com/dmitrymomot/biolink/pkg/clientip"
)

// trackResponse is the beacon acknowledgement. Ok is true whenever the
// body parsed; provider outcomes never surface here.
type trackResponse struct {
	Ok           bool   `json:"ok"`
	EventID      string `json:"event_id"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
}

func handleTrack(svc *track.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req track.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		// Beacons are often fired on page unload and the browser may
		// drop the connection immediately; dispatch must outlive it.
		ctx := context.WithoutCancel(r.Context())

		receipt := svc.Ingest(ctx, req, clientip.GetIP(r), r.UserAgent())

		log.InfoContext(r.Context(), "event tracked",
			slog.String("event_id", receipt.EventID),
			slog.Int("dispatched", len(receipt.Dispatched)),
			slog.Bool("deduplicated", receipt.Deduplicated))

		respondJSON(w, http.StatusOK, trackResponse{
			Ok:           true,
			EventID:      receipt.EventID,
			Deduplicated: receipt.Deduplicated,
		})
	}
}
