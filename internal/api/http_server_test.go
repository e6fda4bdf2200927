package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cabanas/internal/config"
	"cabanas/internal/models"
	"cabanas/internal/service"
	"cabanas/internal/storage"
	"cabanas/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCabins = []string{"Cabaña 1", "Cabaña 2", "Cabaña 3"}

func setupServer(t *testing.T) *HTTPServer {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st := store.New(storage.NewMemory(), &logger)
	svc := service.NewBookingService(st, nil, nil, nil, &logger)
	require.NoError(t, svc.LoadOrSeed(context.Background()))

	cfg := config.HTTPConfig{Port: 0} // limiter disabled with zero RPS
	srv := NewHTTPServer(cfg, svc, testCabins, &logger)
	srv.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return srv
}

func doRequest(t *testing.T, srv *HTTPServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func createBooking(t *testing.T, srv *HTTPServer, guest, cabin, checkIn, checkOut string) models.Booking {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bookings", models.BookingDraft{
		GuestName:     guest,
		Cabin:         cabin,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PricePerNight: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var booking models.Booking
	decodeBody(t, rec, &booking)
	return booking
}

func TestCreateAndListBookings(t *testing.T) {
	srv := setupServer(t)

	booking := createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, 400.0, booking.TotalPrice)
	assert.Equal(t, models.StatusPending, booking.Status)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Bookings []models.Booking `json:"bookings"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, booking.ID, body.Bookings[0].ID)
}

func TestSearchBookings(t *testing.T) {
	srv := setupServer(t)
	createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")
	createBooking(t, srv, "Beto", "Cabaña 2", "2024-03-10", "2024-03-14")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings?q=ana", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Bookings []models.Booking `json:"bookings"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, "Ana López", body.Bookings[0].GuestName)
}

func TestCreateConflictReturns409(t *testing.T) {
	srv := setupServer(t)
	createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bookings", models.BookingDraft{
		GuestName: "Beto", Cabin: "Cabaña 1",
		CheckIn: "2024-03-12", CheckOut: "2024-03-16", PricePerNight: 100,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Ana López", body["guest"])
	assert.Equal(t, "2024-03-10", body["check_in"])
	assert.Equal(t, "2024-03-14", body["check_out"])
	assert.Contains(t, body["error"], "occupied")
}

func TestCreateValidationReturns400(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/bookings", models.BookingDraft{
		GuestName: "", Cabin: "Cabaña 1", CheckIn: "2024-03-10", CheckOut: "2024-03-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/bookings", map[string]any{
		"guest_name": "Ana", "cabin": "Cabaña 1",
		"check_in": "2024-03-10", "check_out": "2024-03-14", "surprise": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUpdateDeleteBooking(t *testing.T) {
	srv := setupServer(t)
	booking := createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings/"+booking.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPut, "/api/v1/bookings/"+booking.ID, models.BookingDraft{
		GuestName: "Ana López", Cabin: "Cabaña 1",
		CheckIn: "2024-03-10", CheckOut: "2024-03-16", PricePerNight: 100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Booking
	decodeBody(t, rec, &updated)
	assert.Equal(t, booking.ID, updated.ID)
	assert.Equal(t, "2024-03-16", updated.CheckOut)

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendar(t *testing.T) {
	srv := setupServer(t)
	createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-13")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/calendar?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var month struct {
		Year         int `json:"year"`
		Month        int `json:"month"`
		LeadingEmpty int `json:"leading_empty"`
		Days         []struct {
			Number  int  `json:"number"`
			IsToday bool `json:"is_today"`
			Slots   []struct {
				Cabin string `json:"cabin"`
				Kind  string `json:"kind"`
				Bar   string `json:"bar"`
			} `json:"slots"`
		} `json:"days"`
		Cabins []string `json:"cabins"`
	}
	decodeBody(t, rec, &month)
	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, 3, month.Month)
	assert.Equal(t, 5, month.LeadingEmpty)
	require.Len(t, month.Days, 31)
	assert.Equal(t, testCabins, month.Cabins)
	assert.True(t, month.Days[14].IsToday) // fixed clock: March 15th

	day10 := month.Days[9]
	require.Len(t, day10.Slots, len(testCabins))
	assert.Equal(t, "full", day10.Slots[0].Kind)
	assert.Equal(t, "start", day10.Slots[0].Bar)
	assert.Equal(t, "empty", day10.Slots[1].Kind)
}

func TestCalendarCabinFilter(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/calendar?year=2024&month=3&cabin="+
		strings.ReplaceAll("Cabaña 2", " ", "%20"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var month struct {
		Cabins []string `json:"cabins"`
	}
	decodeBody(t, rec, &month)
	assert.Equal(t, []string{"Cabaña 2"}, month.Cabins)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/calendar?cabin=Inventada", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// "all" keeps every cabin.
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/calendar?cabin=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &month)
	assert.Equal(t, testCabins, month.Cabins)
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var month struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	decodeBody(t, rec, &month)
	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, 3, month.Month)
}

func TestCalendarBadParams(t *testing.T) {
	srv := setupServer(t)

	for _, path := range []string{
		"/api/v1/calendar?year=abc",
		"/api/v1/calendar?month=13",
		"/api/v1/calendar?month=0",
	} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestStats(t *testing.T) {
	srv := setupServer(t)
	createBooking(t, srv, "Ana", "Cabaña 1", "2024-03-30", "2024-04-02")
	createBooking(t, srv, "Beto", "Cabaña 2", "2024-04-10", "2024-04-12")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/stats?year=2024&month=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.MonthStats
	decodeBody(t, rec, &got)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 500.0, got.Revenue) // 3 nights + 2 nights at 100
}

func TestGuests(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/guests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Guests []string `json:"guests"`
	}
	decodeBody(t, rec, &body)
	assert.Empty(t, body.Guests)

	createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")
	createBooking(t, srv, "Ana López", "Cabaña 2", "2024-03-10", "2024-03-14")

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/guests", nil)
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{"Ana López"}, body.Guests)
}

func TestNotes(t *testing.T) {
	srv := setupServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/api/v1/notes", map[string]string{"notes": "cortar leña"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "cortar leña", body["notes"])
}

func TestBackupAndRestore(t *testing.T) {
	srv := setupServer(t)
	booking := createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="backup_2024-03-15.json"`,
		rec.Header().Get("Content-Disposition"))
	backupData := rec.Body.Bytes()

	// Restore into a fresh server.
	other := setupServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/restore", bytes.NewReader(backupData))
	restoreRec := httptest.NewRecorder()
	other.Handler().ServeHTTP(restoreRec, req)
	require.Equal(t, http.StatusNoContent, restoreRec.Code, restoreRec.Body.String())

	rec = doRequest(t, other, http.MethodGet, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRestoreRejectsCorruptDocument(t *testing.T) {
	srv := setupServer(t)
	booking := createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/restore", strings.NewReader(`{"bookings": [`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Existing data survives the failed restore.
	check := doRequest(t, srv, http.MethodGet, "/api/v1/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusOK, check.Code)
}

func TestReport(t *testing.T) {
	srv := setupServer(t)

	// A month with no bookings exports nothing.
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/report?year=2024&month=3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	createBooking(t, srv, "Ana López", "Cabaña 1", "2024-03-10", "2024-03-14")

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/report?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="reporte_2024-03.xlsx"`,
		rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestMethodNotAllowed(t *testing.T) {
	srv := setupServer(t)

	for path, method := range map[string]string{
		"/api/v1/calendar": http.MethodPost,
		"/api/v1/stats":    http.MethodDelete,
		"/api/v1/guests":   http.MethodPut,
		"/api/v1/backup":   http.MethodPost,
		"/api/v1/restore":  http.MethodGet,
		"/api/v1/report":   http.MethodPut,
	} {
		rec := doRequest(t, srv, method, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code,
			fmt.Sprintf("%s %s", method, path))
	}
}
