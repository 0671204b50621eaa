package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"panorama-rule-finder/internal/engine"
	"panorama-rule-finder/internal/model"
	"panorama-rule-finder/internal/parser"
)

// maxConfigUpload bounds uploaded config size.
const maxConfigUpload = 256 << 20

type handler struct {
	source    SnapshotSource
	cache     *parser.SnapshotCache
	uploadDir string
}

type matchResponse struct {
	SnapshotID string              `json:"snapshot_id"`
	Target     string              `json:"target"`
	Mode       engine.Mode         `json:"mode"`
	Count      int                 `json:"count"`
	Matches    []model.MatchRecord `json:"matches"`
}

type snapshotResponse struct {
	SnapshotID   string    `json:"snapshot_id"`
	LoadedAt     time.Time `json:"loaded_at"`
	DeviceGroups int       `json:"device_groups"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Matches runs a scan against the current snapshot.
// GET /api/v1/matches?address=10.0.0.5&mode=overlap
func (h *handler) Matches(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondError(w, http.StatusBadRequest, "missing address parameter")
		return
	}
	mode := engine.ParseMode(r.URL.Query().Get("mode"))

	snap, err := h.source.Get()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("policy snapshot unavailable: %v", err))
		return
	}

	records, err := engine.FindMatches(snap.Doc, address, mode)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	if records == nil {
		records = []model.MatchRecord{}
	}

	respondJSON(w, http.StatusOK, &matchResponse{
		SnapshotID: snap.ID,
		Target:     address,
		Mode:       mode,
		Count:      len(records),
		Matches:    records,
	})
}

// Snapshot reports the identity of the currently loaded document.
// GET /api/v1/snapshot
func (h *handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.Get()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("policy snapshot unavailable: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, &snapshotResponse{
		SnapshotID:   snap.ID,
		LoadedAt:     snap.LoadedAt,
		DeviceGroups: len(snap.Doc.DeviceGroups),
	})
}

// UploadConfig accepts a new Panorama export, validates it, writes it under
// the upload directory, and switches the cache over to it.
// POST /api/v1/config
func (h *handler) UploadConfig(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		respondError(w, http.StatusConflict, "config upload requires a file-backed provider")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigUpload))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "empty config upload")
		return
	}

	// Reject documents the parser cannot load before switching anything.
	if _, err := parser.ParsePanorama(bytes.NewReader(body)); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid config: %v", err))
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create upload directory")
		return
	}
	path := filepath.Join(h.uploadDir, fmt.Sprintf("panorama-%s.xml", uuid.New().String()))
	if err := os.WriteFile(path, body, 0644); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store config")
		return
	}

	h.cache.SetPath(path)
	snap, err := h.cache.Get()
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load uploaded config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, &snapshotResponse{
		SnapshotID:   snap.ID,
		LoadedAt:     snap.LoadedAt,
		DeviceGroups: len(snap.Doc.DeviceGroups),
	})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &apiError{Code: status, Message: message})
}
