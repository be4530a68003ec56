package server

import (
	"net/http"

	"PalmFM/config"
	"PalmFM/controller"
	"PalmFM/logger"

	"github.com/gorilla/mux"
)

// APIHandler carries the handler dependencies.
type APIHandler struct {
	ctrl *controller.Controller
}

// Server is the presentation boundary: REST intents in, state snapshots out.
type Server struct {
	addr   string
	router *mux.Router
}

// New builds the router.
func New(cfg *config.Config, ctrl *controller.Controller) *Server {
	h := &APIHandler{ctrl: ctrl}

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.StateHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks", h.TracksHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks", h.ClearLibraryHandler).Methods(http.MethodDelete)
	api.HandleFunc("/tracks/{id}", h.TrackHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tracks/{id}/metadata", h.UpdateMetadataHandler).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/tracks/{id}/favorite", h.ToggleFavoriteHandler).Methods(http.MethodPost, http.MethodOptions)

	api.HandleFunc("/playlists", h.PlaylistsHandler).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	api.HandleFunc("/playlists/{id}/tracks", h.PlaylistTracksHandler).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	api.HandleFunc("/play", h.PlayHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/shuffle-play", h.ShufflePlayHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/toggle", h.ToggleHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/seek", h.SeekHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/next", h.NextHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/previous", h.PreviousHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/shuffle", h.ToggleShuffleHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/repeat", h.ToggleRepeatHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sleep-timer", h.SleepTimerHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/settings", h.SettingsHandler).Methods(http.MethodGet, http.MethodPut, http.MethodOptions)

	api.HandleFunc("/device/tracks", h.DeviceTracksHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/import", h.ImportHandler).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/reconcile", h.ReconcileHandler).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/ws/state", h.StateStreamHandler)

	return &Server{addr: cfg.HTTPAddr, router: r}
}

// Start blocks serving HTTP.
func (s *Server) Start() error {
	logger.Info("API server listening", logger.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

// corsMiddleware mirrors the permissive CORS policy the UI expects.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
