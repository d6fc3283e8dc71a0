package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
	"github.com/lucavalca/tour-booking/internal/utils"
)

// TourHandler serves the public tour catalog and the admin CRUD
// surface for tours.  Public routes assume no authentication; admin
// routes assume JWT + RequireRole(ADMIN) middleware ran first.
type TourHandler struct {
	Tours *repository.TourRepo
}

// NewTourHandler constructs a TourHandler.  The repository must be non-nil.
func NewTourHandler(tours *repository.TourRepo) *TourHandler {
	if tours == nil {
		panic("nil repository passed to NewTourHandler")
	}
	return &TourHandler{Tours: tours}
}

// tourReq is the admin create/update body.  List fields accept either
// JSON arrays or a single comma-separated string, matching the data
// imported from the previous system.
type tourReq struct {
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	PriceAdultCents uint32      `json:"price_adult_cents"`
	PriceChildCents uint32      `json:"price_child_cents"`
	Language        string      `json:"language"`
	Itinerary       string      `json:"itinerary"`
	DurationValue   uint32      `json:"duration_value"`
	DurationUnit    string      `json:"duration_unit"`
	CoverImage      string      `json:"cover_image"`
	Images          stringList  `json:"images"`
	Includes        stringList  `json:"includes"`
	Excludes        stringList  `json:"excludes"`
	Terms           string      `json:"terms"`
	MaxSeats        uint32      `json:"max_seats"`
	Difficulty      string      `json:"difficulty"`
	GPXURL          *string     `json:"gpx_url"`
	Lat             *float64    `json:"lat"`
	Lng             *float64    `json:"lng"`
}

// stringList unmarshals from either a JSON array of strings or a
// single string ("a, b, c").  The leniency mirrors the fallback
// parsing the previous system applied to its text columns.
type stringList []string

func (s *stringList) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" || trimmed == "" {
		*s = []string{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		// single string, possibly comma separated
		unquoted, err := strconv.Unquote(trimmed)
		if err != nil {
			return err
		}
		*s = model.ParseStringList(unquoted)
		return nil
	}
	*s = model.ParseStringList(trimmed)
	return nil
}

type tourResp struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	PriceAdultCents uint32    `json:"price_adult_cents"`
	PriceChildCents uint32    `json:"price_child_cents"`
	Language        string    `json:"language"`
	Itinerary       string    `json:"itinerary"`
	DurationValue   uint32    `json:"duration_value"`
	DurationUnit    string    `json:"duration_unit"`
	CoverImage      string    `json:"cover_image"`
	Images          []string  `json:"images"`
	Includes        []string  `json:"includes"`
	Excludes        []string  `json:"excludes"`
	Terms           string    `json:"terms"`
	MaxSeats        uint32    `json:"max_seats"`
	Difficulty      string    `json:"difficulty"`
	GPXURL          *string   `json:"gpx_url,omitempty"`
	Lat             *float64  `json:"lat,omitempty"`
	Lng             *float64  `json:"lng,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toTourResp(t *model.Tour) tourResp {
	return tourResp{
		ID: t.ID, Title: t.Title, Slug: t.Slug, Description: t.Description,
		PriceAdultCents: t.PriceAdultCents, PriceChildCents: t.PriceChildCents,
		Language: t.Language, Itinerary: t.Itinerary,
		DurationValue: t.DurationValue, DurationUnit: t.DurationUnit,
		CoverImage: t.CoverImage, Images: t.Images, Includes: t.Includes, Excludes: t.Excludes,
		Terms: t.Terms, MaxSeats: t.MaxSeats, Difficulty: t.Difficulty,
		GPXURL: t.GPXURL, Lat: t.Lat, Lng: t.Lng, CreatedAt: t.CreatedAt,
	}
}

// List handles GET /api/tours.  Optional query parameters: q (matched
// against title and description) and language.
func (h *TourHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	tours, err := h.Tours.List(ctx, c.QueryParam("q"), c.QueryParam("language"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tours"})
	}
	items := make([]tourResp, 0, len(tours))
	for i := range tours {
		items = append(items, toTourResp(&tours[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": items})
}

// GetBySlug handles GET /api/tours/:slug.
func (h *TourHandler) GetBySlug(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	t, err := h.Tours.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrTourNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tour": toTourResp(t)})
}

// Create handles POST /api/tours (admin).  When no slug is supplied it
// is derived from the title; collisions are disambiguated with a
// numeric suffix.  An explicitly supplied colliding slug is a 409.
func (h *TourHandler) Create(c echo.Context) error {
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.PriceAdultCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_adult_cents is required"})
	}
	if req.MaxSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_seats is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slug := strings.TrimSpace(req.Slug)
	explicit := slug != ""
	if !explicit {
		slug = utils.Slugify(req.Title)
		if slug == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title yields empty slug"})
		}
		slug = utils.DisambiguateSlug(slug, func(candidate string) bool {
			exists, err := h.Tours.SlugExists(ctx, candidate, 0)
			return err == nil && exists
		})
	}

	t := reqToTour(&req, slug)
	if err := h.Tours.Create(ctx, t); err != nil {
		if err == repository.ErrSlugExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tour failed"})
	}
	created, err := h.Tours.GetByID(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tour failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"tour": toTourResp(created)})
}

// Update handles PUT /api/tours/:id (admin).
func (h *TourHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		// keep the current slug when none supplied
		existing, err := h.Tours.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrTourNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tour failed"})
		}
		slug = existing.Slug
	}

	t := reqToTour(&req, slug)
	t.ID = id
	if err := h.Tours.Update(ctx, t); err != nil {
		switch err {
		case repository.ErrTourNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		case repository.ErrSlugExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tour failed"})
	}
	updated, err := h.Tours.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tour failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tour": toTourResp(updated)})
}

// Delete handles DELETE /api/tours/:id (admin).  Refused with 409
// while non-cancelled bookings reference any of the tour's dates.
func (h *TourHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tours.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrTourNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "tour has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete tour failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func reqToTour(req *tourReq, slug string) *model.Tour {
	return &model.Tour{
		Title:           req.Title,
		Slug:            slug,
		Description:     req.Description,
		PriceAdultCents: req.PriceAdultCents,
		PriceChildCents: req.PriceChildCents,
		Language:        req.Language,
		Itinerary:       req.Itinerary,
		DurationValue:   req.DurationValue,
		DurationUnit:    req.DurationUnit,
		CoverImage:      req.CoverImage,
		Images:          req.Images,
		Includes:        req.Includes,
		Excludes:        req.Excludes,
		Terms:           req.Terms,
		MaxSeats:        req.MaxSeats,
		Difficulty:      req.Difficulty,
		GPXURL:          req.GPXURL,
		Lat:             req.Lat,
		Lng:             req.Lng,
	}
}
