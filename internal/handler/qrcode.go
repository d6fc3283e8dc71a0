package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/repository"
)

// QRCodeHandler verifies booking QR tokens at the meeting point and
// optionally marks the booking as checked in.  Admin-only.
type QRCodeHandler struct {
	Bookings *repository.BookingRepo
}

func NewQRCodeHandler(bookings *repository.BookingRepo) *QRCodeHandler {
	if bookings == nil {
		panic("nil repository passed to NewQRCodeHandler")
	}
	return &QRCodeHandler{Bookings: bookings}
}

type verifyQRReq struct {
	Token   string `json:"token"`
	CheckIn bool   `json:"checkIn"`
}

// Verify handles POST /api/qrcode/verify.  Lookup is by the opaque QR
// token; an unknown token yields 404 without revealing whether any
// booking exists.  With checkIn=true the booking is atomically marked
// checked in; a second attempt reports alreadyCheckedIn instead of
// flipping the flag again.
func (h *QRCodeHandler) Verify(c echo.Context) error {
	var req verifyQRReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Bookings.GetDetailByQR(ctx, req.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid QR code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify token"})
	}

	alreadyCheckedIn := det.CheckedIn
	if req.CheckIn && !det.CheckedIn {
		n, err := h.Bookings.MarkCheckedIn(ctx, req.Token)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check in"})
		}
		if n == 0 {
			// raced with another scanner between lookup and update
			alreadyCheckedIn = true
		} else {
			det.CheckedIn = true
			now := time.Now().UTC()
			det.CheckedInAt = &now
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"booking":          det,
		"alreadyCheckedIn": alreadyCheckedIn,
	})
}
