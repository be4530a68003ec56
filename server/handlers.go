package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"PalmFM/logger"
	"PalmFM/model"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", logger.ErrorField(err))
		}
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// StateHandler returns the current observable playback state.
func (h *APIHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// TracksHandler returns the filtered library view. An optional query parameter
// updates the search filter; an optional folder parameter scopes to a folder.
func (h *APIHandler) TracksHandler(w http.ResponseWriter, r *http.Request) {
	if folder := r.URL.Query().Get("folder"); folder != "" {
		writeJSON(w, http.StatusOK, h.ctrl.TracksInFolder(folder))
		return
	}
	if query, ok := r.URL.Query()["query"]; ok && len(query) > 0 {
		h.ctrl.SetSearchQuery(query[0])
	}
	writeJSON(w, http.StatusOK, h.ctrl.VisibleTracks())
}

// TrackHandler returns one library track.
func (h *APIHandler) TrackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}
	track, ok := h.ctrl.TrackByID(id)
	if !ok {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// ClearLibraryHandler wipes the whole track library.
func (h *APIHandler) ClearLibraryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.ClearLibrary(); err != nil {
		logger.Error("Failed to clear library", logger.ErrorField(err))
		http.Error(w, "Failed to clear library", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMetadataHandler edits a track's override metadata. Blank fields clear
// the override.
func (h *APIHandler) UpdateMetadataHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Artist      string `json:"artist"`
		Album       string `json:"album"`
		ArtworkPath string `json:"artworkPath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.ctrl.UpdateSongMetadata(id, req.Title, req.Artist, req.Album, req.ArtworkPath)
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// ToggleFavoriteHandler flips a track's favorited state.
func (h *APIHandler) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}
	h.ctrl.ToggleFavorite(id)
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": h.ctrl.IsFavorite(id)})
}

// PlaylistsHandler lists or creates playlists.
func (h *APIHandler) PlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, h.ctrl.Snapshot().Playlists)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	playlist, err := h.ctrl.CreatePlaylist(req.Name)
	if err != nil {
		logger.Error("Failed to create playlist", logger.ErrorField(err))
		http.Error(w, "Failed to create playlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

// PlaylistTracksHandler lists a playlist's tracks or adds members.
func (h *APIHandler) PlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodGet {
		tracks, err := h.ctrl.PlaylistTracks(id)
		if err != nil {
			logger.Error("Failed to read playlist tracks", logger.ErrorField(err))
			http.Error(w, "Failed to read playlist", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tracks)
		return
	}

	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.ctrl.AddTracksToPlaylist(id, req.TrackIDs); err != nil {
		logger.Error("Failed to add playlist tracks", logger.ErrorField(err))
		http.Error(w, "Failed to add tracks", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlayHandler starts playback of a track within a queue. When no queue is
// given, the current filtered library view is the queue.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID int64   `json:"trackId"`
		Queue   []int64 `json:"queue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	track, ok := h.ctrl.TrackByID(req.TrackID)
	if !ok {
		// Unknown track ids are silently ignored, mirroring the controller's
		// not-found policy.
		writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
		return
	}

	queue := h.ctrl.VisibleTracks()
	if len(req.Queue) > 0 {
		queue = h.ctrl.TracksByIDs(req.Queue)
	}

	h.ctrl.PlayTrack(track, queue)
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// ShufflePlayHandler starts shuffled playback of a queue (default: the
// filtered library view).
func (h *APIHandler) ShufflePlayHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Queue []int64 `json:"queue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	queue := h.ctrl.VisibleTracks()
	if len(req.Queue) > 0 {
		queue = h.ctrl.TracksByIDs(req.Queue)
	}

	h.ctrl.ShufflePlay(queue)
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// ToggleHandler toggles play/pause.
func (h *APIHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.TogglePlayPause()
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// SeekHandler seeks to a fraction of the current track.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fraction float64 `json:"fraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.ctrl.SeekTo(req.Fraction)
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// NextHandler skips to the next track.
func (h *APIHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.SkipNext()
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// PreviousHandler skips to the previous track or restarts the current one.
func (h *APIHandler) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.SkipPrevious()
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// ToggleShuffleHandler toggles shuffle.
func (h *APIHandler) ToggleShuffleHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ToggleShuffle()
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// ToggleRepeatHandler cycles the repeat mode.
func (h *APIHandler) ToggleRepeatHandler(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ToggleRepeat()
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// SleepTimerHandler starts, replaces or disables the sleep timer.
func (h *APIHandler) SleepTimerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Minutes < 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.ctrl.UpdateSleepTimer(req.Minutes)
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// SettingsHandler reads or replaces the settings record.
func (h *APIHandler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, h.ctrl.Settings())
		return
	}

	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.ctrl.ApplySettingsChange(settings)
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

// DeviceTracksHandler lists the device index candidates for import.
func (h *APIHandler) DeviceTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.ctrl.GetDeviceTracks(r.Context())
	if err != nil {
		logger.Error("Device scan failed", logger.ErrorField(err))
		http.Error(w, "Device scan failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// ImportHandler scans the device and imports the selected tracks (or all of
// them when no ids are given).
func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	deviceTracks, err := h.ctrl.GetDeviceTracks(r.Context())
	if err != nil {
		logger.Error("Device scan failed", logger.ErrorField(err))
		http.Error(w, "Device scan failed", http.StatusInternalServerError)
		return
	}

	selected := deviceTracks
	if len(req.TrackIDs) > 0 {
		wanted := make(map[int64]bool, len(req.TrackIDs))
		for _, id := range req.TrackIDs {
			wanted[id] = true
		}
		selected = selected[:0]
		for _, t := range deviceTracks {
			if wanted[t.ID] {
				selected = append(selected, t)
			}
		}
	}

	inserted, err := h.ctrl.ImportTracks(selected)
	if err != nil {
		logger.Error("Import failed", logger.ErrorField(err))
		http.Error(w, "Import failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"imported": inserted})
}

// ReconcileHandler runs a device reconciliation pass.
func (h *APIHandler) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.ctrl.ReconcileWithDevice(r.Context())
	if err != nil {
		logger.Error("Reconciliation failed", logger.ErrorField(err))
		http.Error(w, "Reconciliation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
