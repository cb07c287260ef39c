package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/moodmap/internal/domain"
	"github.com/couchcryptid/moodmap/internal/submit"
	"github.com/couchcryptid/moodmap/internal/visual"
)

const maxBodyBytes = 1 << 16

type viewResponse struct {
	Snapshot   *domain.Snapshot `json:"snapshot"`
	View       visual.View      `json:"view"`
	LastError  string           `json:"last_error,omitempty"`
	AgeSeconds float64          `json:"age_seconds"`
}

type readingRequest struct {
	Mood int     `json:"mood"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func newViewResponse(snap *domain.Snapshot, lastErr error) viewResponse {
	resp := viewResponse{
		Snapshot:   snap,
		View:       visual.Render(*snap),
		AgeSeconds: domain.Now().Sub(snap.CreatedAt).Seconds(),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	return resp
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var vp domain.Viewport
	if err := decodeBody(w, r, &vp); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.viewport.Observe(vp); err != nil {
		if errors.Is(err, domain.ErrInvalidViewport) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ne, err := parseLatLng(r.URL.Query().Get("ne"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("ne: %w", err))
		return
	}
	sw, err := parseLatLng(r.URL.Query().Get("sw"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("sw: %w", err))
		return
	}

	snap, err := s.session.Refresh(r.Context(), domain.Viewport{NorthEast: ne, SouthWest: sw})
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, newViewResponse(snap, nil))
	case errors.Is(err, domain.ErrInvalidViewport):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrStaleCycle):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrSessionClosed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Warn("view refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.session.Snapshot()
	if !ok {
		resp := map[string]string{"error": "no snapshot published yet"}
		if err := s.session.LastError(); err != nil {
			resp["last_error"] = err.Error()
		}
		sharedobs.WriteJSON(w, http.StatusNotFound, resp)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newViewResponse(snap, s.session.LastError()))
}

func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.session.Submit(r.Context(), domain.Reading{
		Mood:     req.Mood,
		Location: domain.GeoPoint{Lat: req.Lat, Lng: req.Lng},
	})
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrInvalidReading):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrSessionClosed):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("reading submission failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, submitFailure(res, err))
	}
}

// submitFailure reports a failed submission. A non-empty record means the
// reading reached the index but the day could not be recorded.
func submitFailure(res submit.Result, err error) map[string]any {
	body := map[string]any{"error": err.Error()}
	if res.Record.Date != "" {
		body["record"] = res.Record
	}
	return body
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// parseLatLng reads "lat,lng".
func parseLatLng(s string) (domain.GeoPoint, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("want lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("latitude %q: %w", latStr, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("longitude %q: %w", lngStr, err)
	}
	return domain.GeoPoint{Lat: lat, Lng: lng}, nil
}
