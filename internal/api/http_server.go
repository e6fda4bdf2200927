// Package api exposes the query surface the calendar UI consumes over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cabanas/internal/backup"
	"cabanas/internal/calendar"
	"cabanas/internal/config"
	"cabanas/internal/models"
	"cabanas/internal/report"
	"cabanas/internal/service"
	"cabanas/internal/stats"
	"cabanas/internal/store"

	"github.com/rs/zerolog"
)

const maxRestoreBytes = 8 << 20

// HTTPServer serves the booking API for a single local UI. There is no auth
// layer; the rate limiter only guards against runaway clients.
type HTTPServer struct {
	cfg    config.HTTPConfig
	svc    *service.BookingService
	cabins []string
	server *http.Server
	logger zerolog.Logger
	now    func() time.Time
}

func NewHTTPServer(cfg config.HTTPConfig, svc *service.BookingService, cabins []string, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		cabins: cabins,
		logger: logger.With().Str("component", "http").Logger(),
		now:    time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/calendar", srv.handleCalendar)
	mux.HandleFunc("/api/v1/stats", srv.handleStats)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBooking)
	mux.HandleFunc("/api/v1/guests", srv.handleGuests)
	mux.HandleFunc("/api/v1/notes", srv.handleNotes)
	mux.HandleFunc("/api/v1/backup", srv.handleBackup)
	mux.HandleFunc("/api/v1/restore", srv.handleRestore)
	mux.HandleFunc("/api/v1/report", srv.handleReport)

	handler := srv.loggingMiddleware(newLimiter(cfg.RateLimit).wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month, err := s.monthParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cabins := s.cabins
	if filter := strings.TrimSpace(r.URL.Query().Get("cabin")); filter != "" && filter != "all" {
		if !s.knownCabin(filter) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown cabin: %s", filter))
			return
		}
		cabins = []string{filter}
	}

	projection := calendar.Project(year, month, cabins, s.svc.Store().All(), s.now())
	writeJSON(w, http.StatusOK, projection)
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month, err := s.monthParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, stats.Monthly(year, month, s.svc.Store().All()))
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if q := r.URL.Query().Get("q"); q != "" {
			writeJSON(w, http.StatusOK, map[string]any{"bookings": s.svc.Store().SearchByGuest(q)})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": s.svc.Store().All()})
	case http.MethodPost:
		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}
		booking, err := s.svc.Create(r.Context(), draft)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, ok := s.svc.Store().FindByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPut:
		draft, ok := decodeDraft(w, r)
		if !ok {
			return
		}
		booking, err := s.svc.Update(r.Context(), id, draft)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodDelete:
		if err := s.svc.Delete(r.Context(), id); err != nil {
			s.writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleGuests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	names := s.svc.Store().DistinctGuestNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"guests": names})
}

func (s *HTTPServer) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"notes": s.svc.Notes()})
	case http.MethodPut:
		var body struct {
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.svc.SetNotes(r.Context(), body.Notes); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save notes")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := s.svc.Backup()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build backup")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", s.svc.BackupFilename(s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRestoreBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if err := s.svc.Restore(r.Context(), data); err != nil {
		var parseErr *backup.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "restore failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month, err := s.monthParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := report.Monthly(year, month, s.svc.Store().All())
	if err != nil {
		if errors.Is(err, report.ErrNoBookings) {
			// Nothing to export is a distinct outcome, not an error.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(year, month)))
	w.WriteHeader(http.StatusOK)
	_ = f.Write(w)
}

// monthParams reads year/month query params, defaulting to the current month.
func (s *HTTPServer) monthParams(r *http.Request) (int, time.Month, error) {
	now := s.now()
	year, month := now.Year(), now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year: %s", raw)
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month: %s", raw)
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func (s *HTTPServer) knownCabin(name string) bool {
	for _, cabin := range s.cabins {
		if cabin == name {
			return true
		}
	}
	return false
}

func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error) {
	var validationErr *store.ValidationError
	var overlapErr *store.OverlapError
	var notFoundErr *store.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &overlapErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     overlapErr.Error(),
			"guest":     overlapErr.Conflict.GuestName,
			"check_in":  overlapErr.Conflict.CheckIn,
			"check_out": overlapErr.Conflict.CheckOut,
		})
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		s.logger.Error().Err(err).Msg("booking operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (models.BookingDraft, bool) {
	var draft models.BookingDraft
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return draft, false
	}
	return draft, true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
