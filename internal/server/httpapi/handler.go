package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// maxBatchBody caps the size of an uploaded check-in batch.
const maxBatchBody = 8 << 20

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listEntries returns every entry. gate_number and date are accepted but do
// not narrow the result: gate rules are enforced on the device.
func (s *HTTPServer) listEntries(w http.ResponseWriter, r *http.Request) {
	list, err := s.entries.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list entries", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load entries")
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	s.logger.Info(r.Context(), "entries served", "operator", claims.Subject,
		"gate_number", r.URL.Query().Get("gate_number"), "count", len(list))

	writeJSON(w, http.StatusOK, models.EntriesResponse{
		Success:     true,
		Count:       len(list),
		LastUpdated: s.clock.Now().UTC(),
		Entries:     list,
	})
}

func (s *HTTPServer) recordBatch(w http.ResponseWriter, r *http.Request) {
	var batch models.CheckInBatch

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody))
	if err := dec.Decode(&batch); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Batch too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid batch body: "+err.Error())
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.checkIns.RecordBatch(r.Context(), claims.Subject, batch.CheckIns))
}
