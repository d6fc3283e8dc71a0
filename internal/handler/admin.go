package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/config"
	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
)

// AdminHandler serves the dashboard stats and user management
// endpoints.  Every route it backs sits behind RequireRole(ADMIN).
type AdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Stats *repository.StatsRepo
}

func NewAdminHandler(cfg config.Config, users *repository.UserRepo, stats *repository.StatsRepo) *AdminHandler {
	if users == nil || stats == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Users: users, Stats: stats}
}

// DashboardStats handles GET /api/admin/stats.
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	stats, err := h.Stats.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load stats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// ListUsers handles GET /api/admin/users.  Each user carries the count
// of bookings attached to it so the UI can warn before deletion.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		out = append(out, echo.Map{
			"id":             u.ID,
			"first_name":     u.FirstName,
			"last_name":      u.LastName,
			"email":          u.Email,
			"role":           u.Role,
			"bookings_count": u.BookingsCount,
			"created_at":     u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type createUserReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// CreateUser handles POST /api/admin/users.  Unlike the public
// registration endpoint the role is honoured, so admins can create
// other admins.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, email and password are required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleAdmin && role != model.RoleCustomer {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := h.Users.Create(ctx, req.FirstName, req.LastName, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": echo.Map{
		"id":    id,
		"email": req.Email,
		"role":  role,
	}})
}

// DeleteUser handles DELETE /api/admin/users/:id.  Users with bookings
// cannot be removed; admins cannot delete their own account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if self, err := getUserID(c); err == nil && self == id {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete your own account"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHasBookings) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user has bookings and cannot be deleted"})
		}
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
