package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/repository"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

// SessionHandler serves the public session catalogue and the admin
// scheduling operations.
type SessionHandler struct {
	Sessions *service.SessionService
	Repo     *repository.SessionRepo
}

// NewSessionHandler wires the session endpoints.
func NewSessionHandler(svc *service.SessionService, repo *repository.SessionRepo) *SessionHandler {
	return &SessionHandler{Sessions: svc, Repo: repo}
}

type createSessionReq struct {
	CourseID uint64    `json:"course_id"`
	StartsAt time.Time `json:"starts_at"`
	Capacity int       `json:"capacity"`
}

type setCapacityReq struct {
	Capacity int `json:"capacity"`
}

type sessionResp struct {
	ID             uint64    `json:"id"`
	CourseID       uint64    `json:"course_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Capacity       int       `json:"capacity"`
	AvailableSpots *int      `json:"available_spots"`
	IsCancelled    bool      `json:"is_cancelled"`
}

func toSessionResp(s *model.Session) sessionResp {
	return sessionResp{
		ID:             s.ID,
		CourseID:       s.CourseID,
		StartsAt:       s.StartsAt,
		EndsAt:         s.EndsAt,
		Capacity:       s.Capacity,
		AvailableSpots: s.AvailableSpots,
		IsCancelled:    s.IsCancelled,
	}
}

// List returns upcoming sessions with their course details (public,
// cached).
func (h *SessionHandler) List(c echo.Context) error {
	items, err := h.Repo.ListUpcoming(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []repository.SessionDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one session with its course details (public, cached).
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create schedules a session (admin).  The end time is derived from
// the course duration.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CourseID == 0 || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "course_id/starts_at required"})
	}
	s, err := h.Sessions.CreateSession(c.Request().Context(), service.CreateSessionInput{
		CourseID: req.CourseID,
		StartsAt: req.StartsAt.UTC(),
		Capacity: req.Capacity,
	})
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResp(s))
}

// SetCapacity resizes a session (admin).  Shrinking below the booked
// count is rejected.
func (h *SessionHandler) SetCapacity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	s, err := h.Sessions.SetSessionCapacity(c.Request().Context(), id, req.Capacity)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}

// Cancel cancels a session and cascades to its bookings (admin).
func (h *SessionHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Sessions.CancelSession(c.Request().Context(), id)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResp(s))
}
