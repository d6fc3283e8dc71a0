package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/queue"
	"github.com/lucavalca/tour-booking/internal/repository"
	queue_publisher "github.com/lucavalca/tour-booking/internal/service"
	"github.com/lucavalca/tour-booking/internal/utils"
)

// BookingHandler groups the repositories required to create, list and
// mutate bookings.  All methods assume that JWT authentication has
// already been performed by middleware.  The create and update paths
// run the capacity check and the write inside one transaction so that
// two concurrent requests against the same tour date cannot oversell
// it: both lock the tour_dates row, the second waits, re-aggregates
// and sees the first one's seats.
type BookingHandler struct {
	Bookings      *repository.BookingRepo
	Notifications *repository.NotificationRepo
	Users         *repository.UserRepo
}

// NewBookingHandler constructs a BookingHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, notifications *repository.NotificationRepo, users *repository.UserRepo) *BookingHandler {
	if bookings == nil || notifications == nil || users == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Notifications: notifications, Users: users}
}

type createBookingReq struct {
	TourDateID    uint64 `json:"tourDateId"`
	Adults        uint32 `json:"adults"`
	Children      uint32 `json:"children"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
}

type updateBookingReq struct {
	PaymentStatus *string `json:"paymentStatus"`
	Adults        *uint32 `json:"adults"`
	Children      *uint32 `json:"children"`
	Notes         *string `json:"notes"`
}

// Create handles POST /api/bookings.  It validates the request,
// transactionally checks remaining capacity, prices the booking from
// the date's effective prices, issues the QR token and records the
// admin notification in the same transaction.  After commit the
// booking.created event is published best-effort.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TourDateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tourDateId is required"})
	}
	if req.Adults < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "adults must be at least 1"})
	}
	method := strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
	if !model.ValidPaymentMethod(method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paymentMethod"})
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ld, err := h.Bookings.LockDateTx(ctx, tx, req.TourDateID)
	if err != nil {
		if errors.Is(err, repository.ErrTourDateNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour date not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour date"})
	}
	if ld.Status != model.TourDateActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "tour date is not bookable"})
	}
	booked, err := h.Bookings.BookedSeatsTx(ctx, tx, req.TourDateID, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	// 64-bit sum: the uint32 adults+children wraps for adversarial
	// counts and would slip under the availability check.
	requested := model.SeatCount(req.Adults, req.Children)
	available := model.AvailableSeats(ld.CapacityMax, booked)
	if requested > uint64(available) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "not enough seats",
			"available": available,
		})
	}

	qrToken, err := utils.NewQRToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate qr token"})
	}
	b := &model.Booking{
		UserID:        userID,
		TourDateID:    req.TourDateID,
		Adults:        req.Adults,
		Children:      req.Children,
		TotalCents:    model.TotalCents(req.Adults, req.Children, ld.EffectiveAdultCents, ld.ChildCents),
		PaymentMethod: method,
		PaymentStatus: model.PaymentPending,
		Notes:         strings.TrimSpace(req.Notes),
		QRCode:        qrToken,
	}
	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	payload, _ := json.Marshal(echo.Map{
		"booking_id": b.ID,
		"user_id":    userID,
		"tour_title": ld.TourTitle,
		"starts_at":  ld.StartsAt.UTC().Format(time.RFC3339),
		"seats":      requested,
	})
	if err := h.Notifications.CreateTx(ctx, tx, model.NotifyBookingCreated, string(payload)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best-effort event publication; the booking is already durable.
	go h.publishCreated(b, ld)

	return c.JSON(http.StatusCreated, echo.Map{
		"booking": echo.Map{
			"id":             b.ID,
			"tour_date_id":   b.TourDateID,
			"adults":         b.Adults,
			"children":       b.Children,
			"total_cents":    b.TotalCents,
			"payment_method": b.PaymentMethod,
			"payment_status": b.PaymentStatus,
			"notes":          b.Notes,
			"created_at":     b.CreatedAt,
		},
		"qrToken": b.QRCode,
	})
}

func (h *BookingHandler) publishCreated(b *model.Booking, ld *repository.LockedDate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	email := ""
	if u, err := h.Users.GetByID(ctx, b.UserID); err == nil {
		email = u.Email
	}
	_ = queue_publisher.PublishBookingCreated(ctx, queue.BookingCreatedEvent{
		BookingID:     b.ID,
		UserID:        b.UserID,
		UserEmail:     email,
		TourID:        ld.TourID,
		TourTitle:     ld.TourTitle,
		TourDateID:    ld.DateID,
		StartsAt:      ld.StartsAt.UTC().Format(time.RFC3339),
		Adults:        b.Adults,
		Children:      b.Children,
		TotalCents:    b.TotalCents,
		PaymentMethod: b.PaymentMethod,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// List handles GET /api/bookings.  Customers see their own bookings;
// admins see everything and may filter by userId and status.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	filter := repository.ListFilter{UserID: userID}
	if isAdmin(c) {
		filter.UserID = 0
		if s := strings.TrimSpace(c.QueryParam("userId")); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid userId"})
			}
			filter.UserID = n
		}
		if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
			if !model.ValidPaymentStatus(s) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
			}
			filter.Status = s
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Bookings.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Get handles GET /api/bookings/:id.  Customers may only read their
// own bookings; admins may read any.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	det, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !isAdmin(c) && det.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": det})
}

// Update handles PUT /api/bookings/:id.  Admins may set any payment
// status and edit participants or notes; participant edits re-run the
// capacity check (excluding this booking from the aggregate) and
// reprice at the date's current effective prices.  Customers may only
// cancel their own booking, which frees its seats for future
// availability computations.
func (h *BookingHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	admin := isAdmin(c)
	if !admin {
		// customers get exactly one move: cancel their own booking
		if req.Adults != nil || req.Children != nil || req.Notes != nil ||
			req.PaymentStatus == nil || strings.ToUpper(*req.PaymentStatus) != model.PaymentCancelled {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only cancellation is allowed"})
		}
	}
	if req.PaymentStatus != nil {
		s := strings.ToUpper(strings.TrimSpace(*req.PaymentStatus))
		if !model.ValidPaymentStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid paymentStatus"})
		}
		*req.PaymentStatus = s
	}

	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if !admin && b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	cancelled := false
	if req.PaymentStatus != nil {
		if *req.PaymentStatus == model.PaymentCancelled && b.PaymentStatus != model.PaymentCancelled {
			cancelled = true
		}
		b.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		b.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Adults != nil || req.Children != nil {
		if req.Adults != nil {
			b.Adults = *req.Adults
		}
		if req.Children != nil {
			b.Children = *req.Children
		}
		if b.Adults < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "adults must be at least 1"})
		}
		// re-check capacity and reprice against the locked date
		ld, err := h.Bookings.LockDateTx(ctx, tx, b.TourDateID)
		if err != nil {
			if errors.Is(err, repository.ErrTourDateNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "tour date not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour date"})
		}
		if b.PaymentStatus != model.PaymentCancelled {
			booked, err := h.Bookings.BookedSeatsTx(ctx, tx, b.TourDateID, b.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
			}
			if b.Seats() > uint64(model.AvailableSeats(ld.CapacityMax, booked)) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats"})
			}
		}
		b.TotalCents = model.TotalCents(b.Adults, b.Children, ld.EffectiveAdultCents, ld.ChildCents)
	}

	if err := h.Bookings.UpdateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if cancelled {
		payload, _ := json.Marshal(echo.Map{
			"booking_id": b.ID,
			"user_id":    b.UserID,
			"seats":      b.Seats(),
		})
		if err := h.Notifications.CreateTx(ctx, tx, model.NotifyBookingCancelled, string(payload)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	resp := echo.Map{
		"id":             b.ID,
		"payment_status": b.PaymentStatus,
		"adults":         b.Adults,
		"children":       b.Children,
		"total_cents":    b.TotalCents,
		"notes":          b.Notes,
	}
	if cancelled {
		resp["message"] = "booking cancelled, seats released"
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": resp})
}
