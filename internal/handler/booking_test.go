package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
)

func newBookingTestHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewBookingHandler(
		repository.NewBookingRepo(db),
		repository.NewNotificationRepo(db),
		repository.NewUserRepo(db),
	)
	return h, mock
}

func bookingRequest(method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func expectLockedDate(mock sqlmock.Sqlmock, capacityMax uint32, booked uint32) {
	mock.ExpectQuery(`FROM tour_dates`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "tour_id", "starts_at", "status", "capacity_max", "price_override_cents"}).
			AddRow(5, 2, time.Now(), model.TourDateActive, capacityMax, nil))
	mock.ExpectQuery(`FROM tours`).WillReturnRows(
		sqlmock.NewRows([]string{"title", "slug", "price_adult_cents", "price_child_cents"}).
			AddRow("Escursione al Monte Bianco", "escursione-al-monte-bianco", 8900, 4500))
	mock.ExpectQuery(`SUM\(adults`).WillReturnRows(
		sqlmock.NewRows([]string{"booked"}).AddRow(booked))
}

// A participant count that wraps the 32-bit sum to zero must not slip
// past the availability check and book out the whole date.
func TestCreateBookingRejectsWrappedSeatCount(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	mock.ExpectBegin()
	expectLockedDate(mock, 20, 4)
	mock.ExpectRollback()

	body := `{"tourDateId":5,"adults":4294967295,"children":1,"paymentMethod":"ONSITE"}`
	c, rec := bookingRequest(http.MethodPost, "/api/bookings", body, 3, model.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough seats")
	assert.Contains(t, rec.Body.String(), `"available":16`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func bookingRow(adults, children uint32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "tour_date_id", "adults", "children", "total_cents",
		"payment_method", "payment_status", "notes", "qr_code", "checked_in",
		"checked_in_at", "created_at", "updated_at",
	}).AddRow(9, 3, 5, adults, children, 17800, model.PayOnsite, model.PaymentPending,
		nil, "qr-token", false, nil, now, now)
}

func TestUpdateBookingRejectsWrappedSeatCount(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings`).WillReturnRows(bookingRow(2, 0))
	expectLockedDate(mock, 20, 4)
	mock.ExpectRollback()

	body := `{"adults":4294967295,"children":1}`
	c, rec := bookingRequest(http.MethodPut, "/api/bookings/9", body, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough seats")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A participant edit against a vanished tour date is a 404, matching
// the create path, not a server error.
func TestUpdateBookingVanishedDate(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings`).WillReturnRows(bookingRow(2, 0))
	mock.ExpectQuery(`FROM tour_dates`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	body := `{"adults":3}`
	c, rec := bookingRequest(http.MethodPut, "/api/bookings/9", body, 1, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "tour date not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingFullDate(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	mock.ExpectBegin()
	expectLockedDate(mock, 20, 20)
	mock.ExpectRollback()

	body := `{"tourDateId":5,"adults":1,"paymentMethod":"ONSITE"}`
	c, rec := bookingRequest(http.MethodPost, "/api/bookings", body, 3, model.RoleCustomer)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
