package outreach

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
)

// TrackStore is the subset of the store the tracking endpoints need.
type TrackStore interface {
	LatestSend(ctx context.Context, enrollmentID string) (*model.EmailSend, error)
	IncrementOpen(ctx context.Context, sendID string) error
	IncrementClick(ctx context.Context, sendID string) error
}

// onePixelGIF is a transparent 1x1 image served by the open pixel.
var onePixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackHandler serves the open pixel and click redirect. Both endpoints
// are fire-and-forget: tracking failures are logged, never surfaced to
// the mail client, so a broken tracker cannot break email rendering.
type TrackHandler struct {
	store       TrackStore
	fallbackURL string
}

func NewTrackHandler(store TrackStore, fallbackURL string) *TrackHandler {
	return &TrackHandler{store: store, fallbackURL: fallbackURL}
}

// resolveSend maps the eid query parameter (an enrollment id) to that
// enrollment's most recent send. Counter bumps land on the latest send,
// last-write-wins across steps.
func (h *TrackHandler) resolveSend(ctx context.Context, eid string) (string, error) {
	send, err := h.store.LatestSend(ctx, eid)
	if err != nil {
		return "", err
	}
	if send == nil {
		return "", eris.Errorf("outreach: enrollment %s has no sends", eid)
	}
	return send.ID, nil
}

// Open serves the tracking pixel and bumps the open counter on the
// enrollment's latest send. Always 200.
func (h *TrackHandler) Open(w http.ResponseWriter, r *http.Request) {
	if eid := r.URL.Query().Get("eid"); eid != "" {
		sendID, err := h.resolveSend(r.Context(), eid)
		if err == nil {
			err = h.store.IncrementOpen(r.Context(), sendID)
		}
		if err != nil {
			zap.L().Warn("outreach: open tracking failed",
				zap.String("enrollment_id", eid),
				zap.Error(err),
			)
		} else {
			metrics.TrackingEvents.WithLabelValues("open").Inc()
		}
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(onePixelGIF)
}

// Click bumps the click counter on the enrollment's latest send and
// redirects to the target URL. Always redirects, even when tracking
// fails or the target is missing.
func (h *TrackHandler) Click(w http.ResponseWriter, r *http.Request) {
	if eid := r.URL.Query().Get("eid"); eid != "" {
		sendID, err := h.resolveSend(r.Context(), eid)
		if err == nil {
			err = h.store.IncrementClick(r.Context(), sendID)
		}
		if err != nil {
			zap.L().Warn("outreach: click tracking failed",
				zap.String("enrollment_id", eid),
				zap.Error(err),
			)
		} else {
			metrics.TrackingEvents.WithLabelValues("click").Inc()
		}
	}

	target := r.URL.Query().Get("url")
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = h.fallbackURL
	}
	http.Redirect(w, r, target, http.StatusFound)
}
