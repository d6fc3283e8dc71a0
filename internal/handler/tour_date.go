package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/config"
	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
)

// TourDateHandler serves the public date listing (with derived
// availability) and the admin CRUD surface for tour dates.
type TourDateHandler struct {
	Cfg   config.Config
	Dates *repository.TourDateRepo
}

// NewTourDateHandler constructs a TourDateHandler.
func NewTourDateHandler(cfg config.Config, dates *repository.TourDateRepo) *TourDateHandler {
	if dates == nil {
		panic("nil repository passed to NewTourDateHandler")
	}
	return &TourDateHandler{Cfg: cfg, Dates: dates}
}

type tourDateReq struct {
	TourID             uint64  `json:"tourId"`
	DateStart          string  `json:"dateStart"`
	DateEnd            string  `json:"dateEnd"`
	Timezone           string  `json:"timezone"`
	CapacityMin        uint32  `json:"capacityMin"`
	CapacityMax        uint32  `json:"capacityMax"`
	PriceOverrideCents *uint32 `json:"priceOverrideCents"`
	Status             string  `json:"status"`
}

type tourDateResp struct {
	ID                 uint64     `json:"id"`
	TourID             uint64     `json:"tour_id"`
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at,omitempty"`
	Timezone           string     `json:"timezone"`
	CapacityMin        uint32     `json:"capacity_min"`
	CapacityMax        uint32     `json:"capacity_max"`
	PriceOverrideCents *uint32    `json:"price_override_cents,omitempty"`
	Status             string     `json:"status"`
	BookedSeats        uint32     `json:"bookedSeats"`
	AvailableSeats     uint32     `json:"availableSeats"`
}

// List handles GET /api/tour-dates?tourId=<id>.  Dates are ordered by
// start ascending and each is annotated with bookedSeats and
// availableSeats derived from non-cancelled bookings.
func (h *TourDateHandler) List(c echo.Context) error {
	var tourID uint64
	if s := strings.TrimSpace(c.QueryParam("tourId")); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tourId"})
		}
		tourID = n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	dates, err := h.Dates.ListByTour(ctx, tourID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour dates"})
	}
	items := make([]tourDateResp, 0, len(dates))
	for _, d := range dates {
		items = append(items, tourDateResp{
			ID: d.ID, TourID: d.TourID, StartsAt: d.StartsAt, EndsAt: d.EndsAt,
			Timezone: d.Timezone, CapacityMin: d.CapacityMin, CapacityMax: d.CapacityMax,
			PriceOverrideCents: d.PriceOverrideCents, Status: d.Status,
			BookedSeats: d.BookedSeats, AvailableSeats: d.AvailableSeats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"tourDates": items})
}

// Create handles POST /api/tour-dates (admin).  Defaults: timezone from
// config, status ACTIVE, capacityMin 1.
func (h *TourDateHandler) Create(c echo.Context) error {
	var req tourDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TourID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tourId is required"})
	}
	d, errMsg := h.dateFromReq(&req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Dates.Create(ctx, d); err != nil {
		if err == repository.ErrTourNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tour date failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"tourDate": tourDateResp{
		ID: d.ID, TourID: d.TourID, StartsAt: d.StartsAt, EndsAt: d.EndsAt,
		Timezone: d.Timezone, CapacityMin: d.CapacityMin, CapacityMax: d.CapacityMax,
		PriceOverrideCents: d.PriceOverrideCents, Status: d.Status,
		BookedSeats: 0, AvailableSeats: d.CapacityMax,
	}})
}

// Update handles PUT /api/tour-dates/:id (admin).
func (h *TourDateHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour date id"})
	}
	var req tourDateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	d, errMsg := h.dateFromReq(&req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	d.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Dates.Update(ctx, d); err != nil {
		if err == repository.ErrTourDateNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour date not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tour date failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/tour-dates/:id (admin).  Refused with 409
// while non-cancelled bookings reference the date.
func (h *TourDateHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour date id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Dates.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrTourDateNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour date not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "tour date has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete tour date failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// dateFromReq validates a request body and builds the model, applying
// the documented defaults.  Returns a non-empty message on validation
// failure.
func (h *TourDateHandler) dateFromReq(req *tourDateReq) (*model.TourDate, string) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DateStart))
	if err != nil {
		return nil, "dateStart must be RFC3339"
	}
	var ends *time.Time
	if s := strings.TrimSpace(req.DateEnd); s != "" {
		e, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, "dateEnd must be RFC3339"
		}
		if e.Before(start) {
			return nil, "dateEnd before dateStart"
		}
		eu := e.UTC()
		ends = &eu
	}
	if req.CapacityMax == 0 {
		return nil, "capacityMax is required"
	}
	capMin := req.CapacityMin
	if capMin == 0 {
		capMin = 1
	}
	if capMin > req.CapacityMax {
		return nil, "capacityMin exceeds capacityMax"
	}
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = h.Cfg.DefaultTimezone
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.TourDateActive
	}
	if status != model.TourDateActive && status != model.TourDateInactive {
		return nil, "invalid status"
	}
	return &model.TourDate{
		TourID:             req.TourID,
		StartsAt:           start.UTC(),
		EndsAt:             ends,
		Timezone:           tz,
		CapacityMin:        capMin,
		CapacityMax:        req.CapacityMax,
		PriceOverrideCents: req.PriceOverrideCents,
		Status:             status,
	}, ""
}
