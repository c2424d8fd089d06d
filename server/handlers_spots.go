package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// CreateSpotHandler stores a new parking-spot report.
func (s *Server) CreateSpotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON in request body")
			return
		}

		record, err := s.spots.Create(r.Context(), body.Latitude, body.Longitude)
		if err != nil {
			status := statusForServiceError(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Msg("spot create failed")
			}
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Parking spot added!",
			"id":      record.ID,
		})
	}
}

// GetSpotsHandler returns every stored spot report as a bare array.
func (s *Server) GetSpotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.spots.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("spot list failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// DeleteSpotHandler removes a spot by its path ID: 204 on success, 404 when
// the spot does not exist.
func (s *Server) DeleteSpotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "Missing path parameter: id")
			return
		}

		if err := s.spots.Delete(r.Context(), id); err != nil {
			status := statusForServiceError(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("id", id).Msg("spot delete failed")
			}
			writeError(w, status, err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
